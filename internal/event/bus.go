// Package event implements the process-wide change broadcast backing the
// idle command.
//
// Subsystems post a category whenever their observable state changes;
// connections parked in idle subscribe with an interest mask and are
// woken exactly once per park, no matter how many posts arrived while
// they slept. Posts accumulated between the subscription and the wake
// are merged into a single union mask.
package event

import (
	"strings"
	"sync"
)

// Mask is a bitmask of change categories.
type Mask uint

// Change categories. Names are the exact strings emitted on
// "changed: <name>" lines, so they are part of the wire contract.
const (
	Database Mask = 1 << iota
	StoredPlaylist
	Playlist
	Player
	Mixer
	Output
	Options
	Update

	// All subscribes to every category; an idle request without
	// arguments maps to this.
	All = Database | StoredPlaylist | Playlist | Player | Mixer | Output | Options | Update
)

var categoryNames = []struct {
	bit  Mask
	name string
}{
	{Database, "database"},
	{StoredPlaylist, "stored_playlist"},
	{Playlist, "playlist"},
	{Player, "player"},
	{Mixer, "mixer"},
	{Output, "output"},
	{Options, "options"},
	{Update, "update"},
}

// Names expands a mask into category names in canonical order.
func (m Mask) Names() []string {
	var names []string
	for _, c := range categoryNames {
		if m&c.bit != 0 {
			names = append(names, c.name)
		}
	}
	return names
}

// ParseMask ORs together the categories named by args, matched
// case-insensitively. Unknown names are ignored. An empty argument list
// yields All.
func ParseMask(args []string) Mask {
	var m Mask
	for _, arg := range args {
		for _, c := range categoryNames {
			if strings.EqualFold(arg, c.name) {
				m |= c.bit
			}
		}
	}
	if m == 0 {
		m = All
	}
	return m
}

// Bus broadcasts changes to every subscribed waiter. The zero value is
// not usable; call NewBus.
type Bus struct {
	mu      sync.Mutex
	waiters map[*Waiter]struct{}
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{waiters: make(map[*Waiter]struct{})}
}

// Post records a change in the given categories. Every waiter whose
// interest intersects the mask accumulates the matched bits and is
// signalled; a waiter already signalled but not yet drained is not
// signalled again. Post never blocks.
func (b *Bus) Post(m Mask) {
	if m == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for w := range b.waiters {
		matched := m & w.interest
		if matched == 0 {
			continue
		}
		w.mu.Lock()
		w.pending |= matched
		w.mu.Unlock()
		select {
		case w.ch <- struct{}{}:
		default:
		}
	}
}

// Subscribe registers a waiter for the given interest mask. The caller
// must Close the waiter when done.
func (b *Bus) Subscribe(interest Mask) *Waiter {
	w := &Waiter{
		bus:      b,
		interest: interest,
		ch:       make(chan struct{}, 1),
	}
	b.mu.Lock()
	b.waiters[w] = struct{}{}
	b.mu.Unlock()
	return w
}

// Waiter is one parked subscription. It belongs to a single connection
// and is discarded after one wake or cancellation.
type Waiter struct {
	bus      *Bus
	interest Mask
	ch       chan struct{}

	mu      sync.Mutex
	pending Mask
}

// C returns the channel signalled when matching changes are pending.
func (w *Waiter) C() <-chan struct{} {
	return w.ch
}

// Take returns the union of matched categories posted so far and clears
// it. A subsequent Post will signal again.
func (w *Waiter) Take() Mask {
	w.mu.Lock()
	defer w.mu.Unlock()
	m := w.pending
	w.pending = 0
	return m
}

// Close unregisters the waiter from the bus.
func (w *Waiter) Close() {
	w.bus.mu.Lock()
	delete(w.bus.waiters, w)
	w.bus.mu.Unlock()
}
