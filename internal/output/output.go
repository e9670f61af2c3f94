// Package output manages the named audio output devices and their
// enabled flags.
package output

import (
	"fmt"
	"sync"

	"github.com/quaverd/quaverd/internal/event"
)

// Device is one configured audio output.
type Device struct {
	ID      int
	Name    string
	Enabled bool
}

// Manager holds the output table. The set of devices is fixed at
// startup; only the enabled flags change at run time.
type Manager struct {
	mu      sync.Mutex
	devices []Device
	bus     *event.Bus
}

// NewManager creates a manager with one enabled device per name.
func NewManager(names []string, bus *event.Bus) *Manager {
	m := &Manager{bus: bus}
	for i, name := range names {
		m.devices = append(m.devices, Device{ID: i, Name: name, Enabled: true})
	}
	return m
}

// List returns a snapshot of all devices.
func (m *Manager) List() []Device {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Device, len(m.devices))
	copy(out, m.devices)
	return out
}

// Enable turns on the device with the given id.
func (m *Manager) Enable(id int) error {
	return m.set(id, true)
}

// Disable turns off the device with the given id.
func (m *Manager) Disable(id int) error {
	return m.set(id, false)
}

func (m *Manager) set(id int, enabled bool) error {
	m.mu.Lock()
	if id < 0 || id >= len(m.devices) {
		m.mu.Unlock()
		return fmt.Errorf("no output with id %d", id)
	}
	changed := m.devices[id].Enabled != enabled
	m.devices[id].Enabled = enabled
	m.mu.Unlock()
	if changed {
		m.bus.Post(event.Output)
	}
	return nil
}
