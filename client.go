// Package mpdc is a client for the MPD (Music Player Daemon) text
// protocol, built around a single long-lived connection and an
// asynchronous request/response engine: callers enqueue commands from any
// goroutine, a single internal pump reads responses off the wire strictly
// in the order they were sent, and every response is delivered through an
// Accumulator the caller supplied when it enqueued the command.
package mpdc

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/famish99/mpdc/internal/mpdlog"
)

// DefaultTimeout bounds how long the engine waits for a response before
// failing the whole connection, unless overridden with SetTimeout or
// disabled (timeout <= 0 means wait forever).
const DefaultTimeout = 30 * time.Second

// pollInterval bounds how long a single blocking read is allowed to run
// before the pump re-checks its deadline; idlePollInterval is the
// equivalent for a task parked in "idle", which can legitimately sit
// unanswered for a long time and so polls far less aggressively.
const (
	pollInterval     = 500 * time.Millisecond
	idlePollInterval = 5 * time.Second
)

type connState int

const (
	stateHandshaking connState = iota
	stateConnected
	stateClosed
)

// Client is one MPD connection. All exported methods are safe to call from
// any number of goroutines concurrently; commands are still answered
// strictly in the order they were enqueued.
type Client struct {
	mu   sync.Mutex
	cond *sync.Cond

	conn    net.Conn
	fr      *frameReader
	state   connState
	version Version
	timeout time.Duration

	queue []*Task

	closeErr error
}

// Connect dials host:port (applying the same host/port fallbacks as
// ResolveEndpoint) and performs the MPD greeting handshake.
func Connect(host string, port int) (*Client, error) {
	return ConnectContext(context.Background(), host, port)
}

// ConnectContext is Connect with a context bounding the dial and handshake;
// it has no effect on the client once connected.
func ConnectContext(ctx context.Context, host string, port int) (*Client, error) {
	ep := ResolveEndpoint(host, port)

	var d net.Dialer
	conn, err := d.DialContext(ctx, ep.Network, ep.Address)
	if err != nil {
		return nil, &Error{Kind: KindIO, Err: err}
	}

	c := &Client{
		conn:    conn,
		fr:      newFrameReader(conn),
		state:   stateHandshaking,
		timeout: DefaultTimeout,
	}
	c.cond = sync.NewCond(&c.mu)

	if err := c.handshake(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	c.mu.Lock()
	c.state = stateConnected
	c.mu.Unlock()

	go c.pump()

	mpdlog.Printf("connected to %s %s, server version %s", ep.Network, ep.Address, c.version)
	return c, nil
}

func (c *Client) handshake(ctx context.Context) error {
	deadline := time.Now().Add(DefaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	c.conn.SetReadDeadline(deadline)
	defer c.conn.SetReadDeadline(time.Time{})

	line, err := c.fr.readLine()
	if err != nil {
		if err == errWouldBlock {
			err = context.DeadlineExceeded
		}
		return &Error{Kind: KindIO, Err: err}
	}
	v, err := parseGreeting(line)
	if err != nil {
		return err
	}
	c.version = v
	return nil
}

// Version reports the protocol version the server greeted with.
func (c *Client) Version() Version {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// SetTimeout changes how long a future command may wait for a response
// before the connection is declared dead. A value <= 0 disables the
// timeout entirely (the engine still honors per-call context deadlines).
func (c *Client) SetTimeout(d time.Duration) {
	c.mu.Lock()
	c.timeout = d
	c.mu.Unlock()
}

// SetKeepalive enables or disables TCP keepalive on the underlying
// connection, taking effect immediately; it is a no-op on UNIX sockets.
func (c *Client) SetKeepalive(enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	tc, ok := c.conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	return tc.SetKeepAlive(enabled)
}

// Do enqueues command and blocks until its response has been fully read
// into acc (acc may be nil to discard the response), the connection is
// closed, or ctx is done. acc must not be read after Do returns a
// KindCancelled error: the pump may still be writing into it briefly while
// it drains the response the cancelled caller is no longer waiting for.
func (c *Client) Do(ctx context.Context, command string, acc Accumulator) error {
	t := newTask(ctx, command, acc)
	c.enqueue(t)
	select {
	case o := <-t.done:
		return o.err
	case <-ctx.Done():
		c.cancelTask(t)
		return (<-t.done).err
	}
}

// Go enqueues command and returns immediately; the returned channel
// receives exactly one error (nil on success) once the response has been
// read, the connection closes, or ctx is done.
func (c *Client) Go(ctx context.Context, command string, acc Accumulator) <-chan error {
	t := newTask(ctx, command, acc)
	c.enqueue(t)
	out := make(chan error, 1)
	go func() {
		select {
		case o := <-t.done:
			out <- o.err
		case <-ctx.Done():
			c.cancelTask(t)
			out <- (<-t.done).err
		}
	}()
	return out
}

// Idle sends "idle [subsystems...]" and blocks until the server reports a
// change, Interrupt is called, or ctx is done, returning whichever
// subsystems changed (zero if the idle was interrupted with nothing
// pending). Passing zero subsystems watches every subsystem.
func (c *Client) Idle(ctx context.Context, subsystems Subsystem) (Subsystem, error) {
	cmd := "idle"
	if subsystems != 0 {
		cmd = "idle " + subsystems.String()
	}
	acc := NewIdleAccumulator()
	if err := c.Do(ctx, cmd, acc); err != nil {
		return 0, err
	}
	return acc.Changed, nil
}

// Interrupt ends a pending Idle call early by writing "noidle" directly to
// the connection; it is a no-op if no idle command is currently awaiting a
// response.
func (c *Client) Interrupt() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateConnected || len(c.queue) == 0 {
		return nil
	}
	if !isIdleTask(c.queue[0]) {
		return nil
	}
	if _, err := c.conn.Write([]byte("noidle\n")); err != nil {
		c.failAllLocked(&Error{Kind: KindIO, Err: err})
		return err
	}
	return nil
}

// Close fails every task still queued with a KindClosed error and closes
// the underlying connection. It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateClosed {
		return nil
	}
	c.failAllLocked(&Error{Kind: KindClosed})
	return nil
}

func isIdleTask(t *Task) bool {
	_, ok := t.acc.(*IdleAccumulator)
	return ok
}

// enqueue appends t to the queue and writes its command bytes immediately,
// per the engine's write-at-enqueue-time design: there is no separate
// output-ready stage to schedule, so a command that was ever written is
// always read to completion even if its caller later gives up on it. If the
// current tail of the queue is an idle command, "noidle" is written first so
// the server actually answers it instead of leaving t stuck behind a
// response that will never come on its own.
func (c *Client) enqueue(t *Task) {
	t.enqueuedAt = time.Now()

	c.mu.Lock()
	if c.state == stateClosed {
		err := c.closeErr
		c.mu.Unlock()
		t.done <- outcome{err: err}
		close(t.settled)
		return
	}

	if len(c.queue) > 0 && isIdleTask(c.queue[len(c.queue)-1]) {
		if _, err := c.conn.Write([]byte("noidle\n")); err != nil {
			c.failAllLocked(&Error{Kind: KindIO, Err: err})
			c.settleLocked(t, c.closeErr)
			c.mu.Unlock()
			return
		}
	}

	c.queue = append(c.queue, t)
	_, err := c.conn.Write(t.command)
	if err != nil {
		c.failAllLocked(&Error{Kind: KindIO, Err: err})
		c.mu.Unlock()
		return
	}
	c.cond.Signal()
	c.mu.Unlock()

	if t.ctx.Done() != nil {
		go c.watchCancellation(t)
	}
}

func (c *Client) watchCancellation(t *Task) {
	select {
	case <-t.ctx.Done():
		c.cancelTask(t)
	case <-t.settled:
	}
}

// cancelTask settles t with a KindCancelled error without disturbing FIFO
// order. A task that has not yet reached the head of the queue has its
// accumulator swapped for one that silently discards its response, since
// nothing is reading from it anymore; a task already at the head is left
// alone because the pump may be reading into it at this very moment, and
// it will notice t is already settled once it finishes.
func (c *Client) cancelTask(t *Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, qt := range c.queue {
		if qt != t {
			continue
		}
		if i != 0 {
			t.acc = discardAccumulator{}
		}
		c.settleLocked(t, &Error{Kind: KindCancelled})
		return
	}
}

// settleLocked delivers err to t exactly once. Callers must hold c.mu.
func (c *Client) settleLocked(t *Task, err error) {
	if t.settledDone {
		return
	}
	t.settledDone = true
	select {
	case t.done <- outcome{err: err}:
	default:
	}
	close(t.settled)
}

// completeHeadLocked removes t from the head of the queue, if it is still
// there, and settles it if a concurrent cancellation has not already done
// so. Callers must hold c.mu.
func (c *Client) completeHeadLocked(t *Task, err error) {
	if len(c.queue) > 0 && c.queue[0] == t {
		c.queue = c.queue[1:]
	}
	c.settleLocked(t, err)
}

// failAllLocked closes the connection and marks the client closed. Only the
// task at the head of the queue — the one whose response err actually
// describes — is settled with err; every other queued task, and every
// future submission via closeErr, is settled with KindClosed instead, since
// err is not about them. Callers must hold c.mu.
func (c *Client) failAllLocked(err error) {
	if len(c.queue) > 0 {
		c.settleLocked(c.queue[0], err)
		for _, t := range c.queue[1:] {
			c.settleLocked(t, &Error{Kind: KindClosed})
		}
	}
	c.queue = nil
	c.state = stateClosed
	c.closeErr = &Error{Kind: KindClosed}
	c.conn.Close()
	c.cond.Broadcast()
}

// pump is the engine's single reader: it is the only goroutine that ever
// calls deserialize, which is what lets every Accumulator method run
// without its own locking. It blocks waiting for work, then walks the head
// of the queue to completion (possibly across many WouldBlock retries)
// before moving to the next task.
func (c *Client) pump() {
	for {
		c.mu.Lock()
		for len(c.queue) == 0 && c.state == stateConnected {
			c.cond.Wait()
		}
		if c.state == stateClosed {
			c.mu.Unlock()
			return
		}
		head := c.queue[0]
		idling := len(c.queue) == 1 && isIdleTask(head)
		timeout := c.timeout
		c.mu.Unlock()

		var deadline time.Time
		if !idling && timeout > 0 {
			deadline = head.enqueuedAt.Add(timeout)
		}

		for {
			interval := pollInterval
			if idling {
				interval = idlePollInterval
			}
			readDeadline := time.Now().Add(interval)
			if !deadline.IsZero() && deadline.Before(readDeadline) {
				readDeadline = deadline
			}
			c.conn.SetReadDeadline(readDeadline)

			err := deserialize(c.fr, c.version, head.acc)
			if err == errWouldBlock {
				if !deadline.IsZero() && !time.Now().Before(deadline) {
					c.mu.Lock()
					c.failAllLocked(&Error{Kind: KindTimedOut})
					c.mu.Unlock()
					return
				}
				continue
			}

			c.mu.Lock()
			switch e := err.(type) {
			case nil:
				c.completeHeadLocked(head, nil)
			case *Error:
				if e.Kind == KindProtocol {
					c.completeHeadLocked(head, e)
				} else {
					c.failAllLocked(e)
					c.mu.Unlock()
					return
				}
			default:
				c.completeHeadLocked(head, err)
			}
			c.mu.Unlock()
			break
		}
	}
}
