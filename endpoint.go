package mpdc

import (
	"net"
	"os"
	"strconv"
	"strings"
)

// DefaultPort is the port MPD listens on when neither an explicit port nor
// MPD_PORT says otherwise.
const DefaultPort = 6600

// Endpoint names the network and address to dial, resolved from an explicit
// host/port pair with the same fallbacks the reference client uses: a host
// starting with "/" is a UNIX socket path, and MPD_HOST/MPD_PORT fill in
// whatever the caller left blank.
type Endpoint struct {
	Network string
	Address string
}

// ResolveEndpoint applies host/port defaults the way the MPD clients in the
// wild do: an empty host falls back to $MPD_HOST then "localhost"; a path
// beginning with "/" is treated as a UNIX socket; a zero port falls back to
// $MPD_PORT then DefaultPort.
func ResolveEndpoint(host string, port int) Endpoint {
	if host == "" {
		host = os.Getenv("MPD_HOST")
	}
	if host == "" {
		host = "localhost"
	}
	if strings.HasPrefix(host, "/") {
		return Endpoint{Network: "unix", Address: host}
	}
	if port == 0 {
		if p := os.Getenv("MPD_PORT"); p != "" {
			if parsed, err := strconv.Atoi(p); err == nil {
				port = parsed
			}
		}
	}
	if port == 0 {
		port = DefaultPort
	}
	return Endpoint{Network: "tcp", Address: net.JoinHostPort(host, strconv.Itoa(port))}
}
