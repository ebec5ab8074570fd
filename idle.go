package mpdc

import (
	"log"
	"strings"
)

// Subsystem is a bitmask over the subsystems MPD's idle command reports on.
// The bit order follows the server's own IDLE_STRINGS table so a raw
// uint16 round-trips to the same wire names.
type Subsystem uint16

const (
	SubsystemDatabase Subsystem = 1 << iota
	SubsystemUpdate
	SubsystemStoredPlaylist
	SubsystemPlaylist
	SubsystemPlayer
	SubsystemMixer
	SubsystemOutput
	SubsystemOptions
	SubsystemPartition
	SubsystemSticker
	SubsystemSubscription
	SubsystemMessage
	SubsystemNeighbor
	SubsystemMount

	SubsystemAll = SubsystemDatabase | SubsystemUpdate | SubsystemStoredPlaylist |
		SubsystemPlaylist | SubsystemPlayer | SubsystemMixer | SubsystemOutput |
		SubsystemOptions | SubsystemPartition | SubsystemSticker | SubsystemSubscription |
		SubsystemMessage | SubsystemNeighbor | SubsystemMount
)

var subsystemNames = [...]string{
	"database", "update", "stored_playlist", "playlist", "player", "mixer",
	"output", "options", "partition", "sticker", "subscription", "message",
	"neighbor", "mount",
}

func subsystemFromString(s string) Subsystem {
	for i, name := range subsystemNames {
		if name == s {
			return 1 << uint(i)
		}
	}
	return 0
}

// String renders the set as the space-separated list "idle" would take as
// arguments, in table order.
func (s Subsystem) String() string {
	var names []string
	for i, name := range subsystemNames {
		if s&(1<<uint(i)) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, " ")
}

// Has reports whether every subsystem in want is set in s.
func (s Subsystem) Has(want Subsystem) bool {
	return s&want == want
}

// IdleAccumulator collects the "changed: <subsystem>" pairs MPD sends in
// response to idle, ORing each into a single Subsystem mask.
type IdleAccumulator struct {
	baseAccumulator
	Changed Subsystem
}

// NewIdleAccumulator returns a ready-to-feed IdleAccumulator.
func NewIdleAccumulator() *IdleAccumulator {
	return &IdleAccumulator{}
}

func (a *IdleAccumulator) FeedPair(v Version, key, value string) {
	if key != "changed" {
		log.Printf("mpdc: idle: unexpected key %q", key)
		return
	}
	sub := subsystemFromString(value)
	if sub == 0 {
		log.Printf("mpdc: idle: unknown subsystem %q", value)
		return
	}
	a.Changed |= sub
}
