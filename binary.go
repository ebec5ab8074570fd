package mpdc

import "strconv"

// BinarySinkAccumulator collects a response that carries a trailing binary
// chunk announced by a "binary: <n>" pair, e.g. readpicture/albumart. Size,
// when present, is the total size of the underlying resource as opposed to
// the length of this particular chunk.
type BinarySinkAccumulator struct {
	baseAccumulator

	Size      uint64
	Data      []byte
	remaining uint64
}

// NewBinarySinkAccumulator returns a BinarySinkAccumulator ready to be fed.
func NewBinarySinkAccumulator() *BinarySinkAccumulator {
	return &BinarySinkAccumulator{}
}

func (b *BinarySinkAccumulator) FeedPair(v Version, key, value string) {
	switch key {
	case "size":
		b.Size, _ = strconv.ParseUint(value, 10, 64)
	case "binary":
		b.remaining, _ = strconv.ParseUint(value, 10, 64)
	}
}

func (b *BinarySinkAccumulator) FeedBinary(v Version, chunk []byte) error {
	b.Data = append(b.Data, chunk...)
	b.remaining -= uint64(len(chunk))
	return nil
}

func (b *BinarySinkAccumulator) RemainingBinary() uint64 {
	return b.remaining
}
