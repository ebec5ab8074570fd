package mpdc

import "fmt"

// Accumulator receives the parsed contents of one response as the
// deserializer walks it. FeedPair is called once per "key: value" line in
// arrival order; FeedBinary is called when a "binary: <n>" pair has
// announced pending raw bytes, once per chunk actually read off the wire.
// RemainingBinary reports how many of those bytes are still outstanding so
// the deserializer knows whether to keep draining binary data before it
// resumes reading lines.
type Accumulator interface {
	FeedPair(v Version, key, value string)
	FeedBinary(v Version, chunk []byte) error
	RemainingBinary() uint64
}

// baseAccumulator gives concrete accumulators a zero-value-safe embed: most
// responses carry no binary payload and most accumulators only care about a
// handful of keys, so embedding this and overriding FeedPair is enough.
type baseAccumulator struct{}

func (baseAccumulator) FeedPair(Version, string, string) {}

func (baseAccumulator) FeedBinary(v Version, chunk []byte) error {
	return fmt.Errorf("mpdc: accumulator does not accept binary data (%d bytes)", len(chunk))
}

func (baseAccumulator) RemainingBinary() uint64 { return 0 }

// VoidAccumulator discards every pair; it is the accumulator for commands
// whose only interesting outcome is success or failure, e.g. play, pause,
// stop, clear, noidle.
type VoidAccumulator struct{ baseAccumulator }

// discardAccumulator is the internal stand-in swapped into a task whose
// caller cancelled it after its bytes were already written to the wire: the
// response still has to be read off the connection to keep framing intact,
// but nothing about it is kept.
type discardAccumulator struct{ baseAccumulator }
