package mpdc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubsystemStringTableOrder(t *testing.T) {
	s := SubsystemPlayer | SubsystemMixer
	assert.Equal(t, "player mixer", s.String())
}

func TestSubsystemHas(t *testing.T) {
	s := SubsystemPlayer | SubsystemMixer
	assert.True(t, s.Has(SubsystemPlayer))
	assert.False(t, s.Has(SubsystemOutput))
}

func TestIdleAccumulatorOrsMultipleChanges(t *testing.T) {
	acc := NewIdleAccumulator()
	acc.FeedPair(Version{}, "changed", "player")
	acc.FeedPair(Version{}, "changed", "mixer")
	assert.Equal(t, SubsystemPlayer|SubsystemMixer, acc.Changed)
}

func TestIdleAccumulatorIgnoresUnknownSubsystem(t *testing.T) {
	acc := NewIdleAccumulator()
	acc.FeedPair(Version{}, "changed", "not_a_real_subsystem")
	assert.Equal(t, Subsystem(0), acc.Changed)
}
