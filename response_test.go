package mpdc

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeserializeVoidOK(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	go func() {
		server.Write([]byte("OK\n"))
		server.Close()
	}()

	fr := newFrameReader(client)
	err := deserialize(fr, Version{}, VoidAccumulator{})
	assert.NoError(t, err)
}

func TestDeserializeFeedsPairs(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	go func() {
		server.Write([]byte("file: a.flac\nTitle: Hi\nOK\n"))
		server.Close()
	}()

	fr := newFrameReader(client)
	acc := NewSongAccumulator()
	require.NoError(t, deserialize(fr, Version{}, acc))
	assert.Equal(t, "a.flac", acc.File)
	assert.Equal(t, []string{"Hi"}, acc.Tags["title"])
}

func TestDeserializeACK(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	go func() {
		server.Write([]byte("ACK [50@0] {play} song doesn't exist\n"))
		server.Close()
	}()

	fr := newFrameReader(client)
	err := deserialize(fr, Version{}, VoidAccumulator{})
	require.Error(t, err)
	var mErr *Error
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, KindProtocol, mErr.Kind)
	assert.Equal(t, CodeDoesNotExist, mErr.Code)
}

func TestDeserializeMalformedPair(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	go func() {
		server.Write([]byte("not a pair\nOK\n"))
		server.Close()
	}()

	fr := newFrameReader(client)
	err := deserialize(fr, Version{}, VoidAccumulator{})
	require.Error(t, err)
	var mErr *Error
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, KindInvalidData, mErr.Kind)
}

func TestDeserializeBinaryChunk(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	go func() {
		server.Write([]byte("size: 7\nbinary: 7\n"))
		server.Write([]byte("ABCDEFG"))
		server.Write([]byte("\nOK\n"))
		server.Close()
	}()

	fr := newFrameReader(client)
	acc := NewBinarySinkAccumulator()
	require.NoError(t, deserialize(fr, Version{}, acc))
	assert.Equal(t, uint64(7), acc.Size)
	assert.Equal(t, []byte("ABCDEFG"), acc.Data)
	assert.Equal(t, uint64(0), acc.RemainingBinary())
}
