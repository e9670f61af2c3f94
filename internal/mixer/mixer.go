// Package mixer implements the software volume control.
package mixer

import (
	"fmt"
	"sync"

	"github.com/quaverd/quaverd/internal/event"
)

// Volume is a 0..100 software mixer.
type Volume struct {
	mu    sync.Mutex
	level int
	bus   *event.Bus
}

// New creates a mixer at the given initial level.
func New(level int, bus *event.Bus) *Volume {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	return &Volume{level: level, bus: bus}
}

// Level returns the current volume.
func (v *Volume) Level() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.level
}

// Set sets an absolute volume level.
func (v *Volume) Set(level int) error {
	if level < 0 || level > 100 {
		return fmt.Errorf("volume %d out of range", level)
	}
	v.mu.Lock()
	changed := v.level != level
	v.level = level
	v.mu.Unlock()
	if changed {
		v.bus.Post(event.Mixer)
	}
	return nil
}

// Change applies a relative adjustment, clamped to the valid range.
func (v *Volume) Change(delta int) error {
	v.mu.Lock()
	level := v.level + delta
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	changed := v.level != level
	v.level = level
	v.mu.Unlock()
	if changed {
		v.bus.Post(event.Mixer)
	}
	return nil
}
