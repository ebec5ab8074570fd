package mpdc

import (
	"bytes"
	"errors"
	"net"
)

// errWouldBlock is the internal retry signal a deadline-guarded read
// produces when it returns before a full line or binary chunk is
// available. It is always recovered by the pump loop and must never reach
// a caller.
var errWouldBlock = errors.New("mpdc: would block")

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// frameReader is a small hand-rolled buffered reader standing in for the
// GLib buffered input stream the reference client reads against: like that
// stream, it has to tolerate a read returning "not ready yet" mid-line or
// mid-chunk and resume from exactly where it left off on the next call.
// bufio.Reader cannot do this safely under a deadline-based WouldBlock
// scheme, because once it reports a timeout error it has already advanced
// its read cursor past whatever partial bytes arrived; frameReader keeps
// those bytes in its own buffer instead of handing them back with the
// error, so nothing is lost across a WouldBlock/retry boundary.
type frameReader struct {
	conn net.Conn
	buf  []byte

	// pendingNewline marks that a binary chunk was just fully drained and
	// the single "\n" the wire format guarantees after it still needs to
	// be consumed before the next line can be read. It lives here, not in
	// deserialize's local state, because it must survive an errWouldBlock
	// retry: deserialize is re-entered from scratch on each retry, but
	// this frameReader is reused for the life of the connection.
	pendingNewline bool
}

func newFrameReader(conn net.Conn) *frameReader {
	return &frameReader{conn: conn, buf: make([]byte, 0, 4096)}
}

// readLine returns the next newline-terminated line, without the
// terminator, or errWouldBlock if the deadline fires before one is fully
// buffered.
func (f *frameReader) readLine() (string, error) {
	for {
		if i := bytes.IndexByte(f.buf, '\n'); i >= 0 {
			line := string(bytes.TrimRight(f.buf[:i], "\r"))
			f.buf = f.buf[i+1:]
			return line, nil
		}
		chunk := make([]byte, 4096)
		n, err := f.conn.Read(chunk)
		if n > 0 {
			f.buf = append(f.buf, chunk[:n]...)
		}
		if err != nil {
			if isTimeout(err) {
				return "", errWouldBlock
			}
			return "", err
		}
	}
}

// readByte consumes and discards exactly one buffered/wire byte, or returns
// errWouldBlock if the deadline fires before one is available. It exists
// for the single "\n" that follows a binary chunk on the wire.
func (f *frameReader) readByte() error {
	for {
		if len(f.buf) > 0 {
			f.buf = f.buf[1:]
			return nil
		}
		chunk := make([]byte, 4096)
		n, err := f.conn.Read(chunk)
		if n > 0 {
			f.buf = append(f.buf, chunk[:n]...)
		}
		if err != nil {
			if isTimeout(err) {
				return errWouldBlock
			}
			return err
		}
	}
}

// readBinary returns up to want bytes, which may be fewer than want if
// that is all that is buffered or immediately available, or errWouldBlock
// if nothing is available before the deadline fires and nothing was
// already buffered.
func (f *frameReader) readBinary(want uint64) ([]byte, error) {
	if len(f.buf) > 0 {
		n := uint64(len(f.buf))
		if n > want {
			n = want
		}
		out := append([]byte(nil), f.buf[:n]...)
		f.buf = f.buf[n:]
		return out, nil
	}
	chunk := make([]byte, want)
	n, err := f.conn.Read(chunk)
	if n > 0 {
		return chunk[:n], nil
	}
	if err != nil {
		if isTimeout(err) {
			return nil, errWouldBlock
		}
		return nil, err
	}
	return nil, nil
}
