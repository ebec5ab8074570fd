// Package mpdlog is the client's logging seam: connection lifecycle and
// protocol trace lines go through here the same way the teacher server
// wrote straight to the standard log package rather than a structured
// logging library.
package mpdlog

import "log"

// Printf logs a line prefixed the way every other log line in this module is.
func Printf(format string, args ...any) {
	log.Printf("mpdc: "+format, args...)
}
