package mpdc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseACK(t *testing.T) {
	e := parseACK(`ACK [5@0] {play} song doesn't exist`)
	assert.Equal(t, KindProtocol, e.Kind)
	assert.Equal(t, CodeCommand, e.Code)
	assert.Equal(t, 0, e.CommandIndex)
	assert.Equal(t, "play", e.Command)
	assert.Equal(t, "song doesn't exist", e.Message)
}

func TestParseACKUnknownCode(t *testing.T) {
	e := parseACK(`ACK [999@2] {foo} bar`)
	assert.Equal(t, CodeUnknown, e.Code)
}

func TestParseACKMalformed(t *testing.T) {
	e := parseACK("ACK nope")
	assert.Equal(t, KindProtocol, e.Kind)
	assert.Equal(t, CodeUnknown, e.Code)
	assert.Equal(t, "ACK nope", e.Message)
}

func TestErrorIsMatchesKind(t *testing.T) {
	var err error = &Error{Kind: KindClosed}
	assert.ErrorIs(t, err, &Error{Kind: KindClosed})
	assert.NotErrorIs(t, err, &Error{Kind: KindIO})
}

func TestErrorIsMatchesProtocolCode(t *testing.T) {
	var err error = &Error{Kind: KindProtocol, Code: CodeDoesNotExist}
	assert.ErrorIs(t, err, &Error{Kind: KindProtocol, Code: CodeDoesNotExist})
	assert.NotErrorIs(t, err, &Error{Kind: KindProtocol, Code: CodeSystem})
}
