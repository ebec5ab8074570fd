package mpdc

import "strings"

// deserialize walks r, feeding acc one pair or binary chunk at a time,
// until the response terminates with "OK"/"list_OK" (nil returned), an
// "ACK ..." line (a *Error of KindProtocol returned), or the connection
// fails (a *Error of KindIO/KindInvalidData returned).
//
// It can be called again after errWouldBlock without losing progress:
// frameReader keeps unconsumed bytes buffered across calls, and
// Accumulator.RemainingBinary reports exactly how much binary data is
// still outstanding, so re-entering this loop resumes exactly where the
// previous call left off.
func deserialize(r *frameReader, v Version, acc Accumulator) error {
	for {
		for acc.RemainingBinary() > 0 {
			chunk, err := r.readBinary(acc.RemainingBinary())
			if err != nil {
				if err == errWouldBlock {
					return errWouldBlock
				}
				return &Error{Kind: KindIO, Err: err}
			}
			if len(chunk) == 0 {
				continue
			}
			if err := acc.FeedBinary(v, chunk); err != nil {
				return &Error{Kind: KindInvalidData, Message: err.Error()}
			}
			if acc.RemainingBinary() == 0 {
				r.pendingNewline = true
			}
		}
		if r.pendingNewline {
			// The binary chunk is followed by a single "\n" before the next
			// line resumes; readLine would otherwise see it as an empty
			// line and misreport a malformed pair.
			if err := r.readByte(); err != nil {
				if err == errWouldBlock {
					return errWouldBlock
				}
				return &Error{Kind: KindIO, Err: err}
			}
			r.pendingNewline = false
		}

		line, err := r.readLine()
		if err != nil {
			if err == errWouldBlock {
				return errWouldBlock
			}
			return &Error{Kind: KindIO, Err: err}
		}

		switch {
		case line == "OK" || line == "list_OK":
			return nil
		case strings.HasPrefix(line, "ACK"):
			return parseACK(line)
		default:
			key, value, ok := strings.Cut(line, ": ")
			if !ok {
				return &Error{Kind: KindInvalidData, Message: "malformed pair: " + line}
			}
			acc.FeedPair(v, key, value)
		}
	}
}
