package mpdc

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeServer accepts exactly one connection, sends the MPD greeting, and
// hands the caller a line-oriented view of it to script responses with.
type fakeServer struct {
	t     *testing.T
	conn  net.Conn
	r     *bufio.Reader
	ready chan struct{}
}

func newFakeServer(t *testing.T) (*fakeServer, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	fs := &fakeServer{t: t, ready: make(chan struct{})}

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		conn.Write([]byte("OK MPD 0.23.15\n"))
		fs.conn = conn
		fs.r = bufio.NewReader(conn)
		close(fs.ready)
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	return fs, port
}

func (fs *fakeServer) nextCommand() string {
	<-fs.ready
	line, err := fs.r.ReadString('\n')
	require.NoError(fs.t, err)
	return strings.TrimRight(line, "\r\n")
}

func (fs *fakeServer) reply(lines ...string) {
	<-fs.ready
	for _, l := range lines {
		fs.conn.Write([]byte(l + "\n"))
	}
}

func dialFake(t *testing.T, port int) *Client {
	t.Helper()
	c, err := ConnectContext(context.Background(), "127.0.0.1", port)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClientRunsCommandsInOrder(t *testing.T) {
	fs, port := newFakeServer(t)
	client := dialFake(t, port)

	go func() {
		require.Equal(t, "status", fs.nextCommand())
		fs.reply("volume: 50", "state: play", "OK")
		require.Equal(t, "currentsong", fs.nextCommand())
		fs.reply("file: a.flac", "OK")
	}()

	st := NewStatusAccumulator()
	require.NoError(t, client.Do(context.Background(), "status", st))
	require.Equal(t, 50, st.Volume)
	require.Equal(t, PlaybackPlay, st.State)

	song := NewSongAccumulator()
	require.NoError(t, client.Do(context.Background(), "currentsong", song))
	require.Equal(t, "a.flac", song.File)
}

func TestClientReturnsProtocolError(t *testing.T) {
	fs, port := newFakeServer(t)
	client := dialFake(t, port)

	go func() {
		require.Equal(t, "play", fs.nextCommand())
		fs.reply("ACK [50@0] {play} song doesn't exist")
	}()

	err := client.Do(context.Background(), "play", nil)
	require.Error(t, err)
	var mErr *Error
	require.ErrorAs(t, err, &mErr)
	require.Equal(t, KindProtocol, mErr.Kind)
	require.Equal(t, CodeDoesNotExist, mErr.Code)
}

func TestClientIdleInterrupt(t *testing.T) {
	fs, port := newFakeServer(t)
	client := dialFake(t, port)

	go func() {
		require.Equal(t, "idle player mixer", fs.nextCommand())
		require.Equal(t, "noidle", fs.nextCommand())
		fs.reply("OK")
	}()

	done := make(chan struct{})
	var changed Subsystem
	var idleErr error
	go func() {
		changed, idleErr = client.Idle(context.Background(), SubsystemPlayer|SubsystemMixer)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, client.Interrupt())
	<-done

	require.NoError(t, idleErr)
	require.Equal(t, Subsystem(0), changed)
}

func TestClientEnqueueInterjectsNoIdleBeforeNextCommand(t *testing.T) {
	fs, port := newFakeServer(t)
	client := dialFake(t, port)

	go func() {
		require.Equal(t, "idle", fs.nextCommand())
		require.Equal(t, "noidle", fs.nextCommand())
		fs.reply("changed: player", "OK")
		require.Equal(t, "status", fs.nextCommand())
		fs.reply("OK")
	}()

	idleDone := make(chan Subsystem, 1)
	go func() {
		changed, err := client.Idle(context.Background(), 0)
		require.NoError(t, err)
		idleDone <- changed
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, client.Do(context.Background(), "status", VoidAccumulator{}))
	require.Equal(t, SubsystemPlayer, <-idleDone)
}

func TestClientCancelledTaskDoesNotBlockQueue(t *testing.T) {
	fs, port := newFakeServer(t)
	client := dialFake(t, port)

	go func() {
		require.Equal(t, "status", fs.nextCommand())
		time.Sleep(50 * time.Millisecond)
		fs.reply("OK")
		require.Equal(t, "currentsong", fs.nextCommand())
		fs.reply("OK")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := client.Do(ctx, "status", VoidAccumulator{})
	require.Error(t, err)

	require.NoError(t, client.Do(context.Background(), "currentsong", VoidAccumulator{}))
}
