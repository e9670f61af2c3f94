// Package player implements the playback transport state machine:
// stop/play/pause, elapsed-time accounting, crossfade and the sticky
// decoder error slot. It models transport state only; decoding is the
// responsibility of whatever output chain is attached to the daemon.
package player

import (
	"sync"
	"time"

	"github.com/quaverd/quaverd/internal/event"
	"github.com/quaverd/quaverd/internal/song"
)

// State is the transport state.
type State int

const (
	StateStop State = iota
	StatePause
	StatePlay
)

// String returns the wire spelling used by the status command.
func (s State) String() string {
	switch s {
	case StatePlay:
		return "play"
	case StatePause:
		return "pause"
	}
	return "stop"
}

// Format describes the decoded audio stream.
type Format struct {
	SampleRate int
	Bits       int
	Channels   int
}

// Player is the transport. It tracks elapsed time with wall-clock
// accounting while playing; a real decoder would update bitrate and
// format as frames arrive.
type Player struct {
	mu      sync.Mutex
	state   State
	current song.Song
	base    int       // seconds of the current song consumed before start
	started time.Time // wall clock of the last transition into play

	crossfade int
	bitrate   int
	format    Format
	errMsg    string
	playtime  int // accumulated seconds across all songs

	bus *event.Bus
}

// New creates a stopped player.
func New(bus *event.Bus) *Player {
	return &Player{
		bitrate: 0,
		format:  Format{SampleRate: 44100, Bits: 16, Channels: 2},
		bus:     bus,
	}
}

// Play starts the given song from the beginning.
func (p *Player) Play(s song.Song) {
	p.mu.Lock()
	p.settleLocked()
	p.current = s
	p.state = StatePlay
	p.base = 0
	p.started = time.Now()
	p.bitrate = 128
	p.mu.Unlock()
	p.bus.Post(event.Player)
}

// Stop halts playback and rewinds.
func (p *Player) Stop() {
	p.mu.Lock()
	p.settleLocked()
	changed := p.state != StateStop
	p.state = StateStop
	p.base = 0
	p.bitrate = 0
	p.mu.Unlock()
	if changed {
		p.bus.Post(event.Player)
	}
}

// SetPause forces the paused flag; pausing while stopped is a no-op.
func (p *Player) SetPause(pause bool) {
	p.mu.Lock()
	switch {
	case p.state == StateStop:
		p.mu.Unlock()
		return
	case pause && p.state == StatePlay:
		p.base = p.elapsedLocked()
		p.settleLocked()
		p.state = StatePause
	case !pause && p.state == StatePause:
		p.started = time.Now()
		p.state = StatePlay
	default:
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	p.bus.Post(event.Player)
}

// Pause toggles between play and pause.
func (p *Player) Pause() {
	p.mu.Lock()
	paused := p.state == StatePause
	p.mu.Unlock()
	p.SetPause(!paused)
}

// Seek positions playback within the current song, clamped to its
// duration.
func (p *Player) Seek(seconds int) {
	p.mu.Lock()
	if p.state == StateStop {
		p.mu.Unlock()
		return
	}
	if p.current.Duration > 0 && seconds > p.current.Duration {
		seconds = p.current.Duration
	}
	p.base = seconds
	p.started = time.Now()
	p.mu.Unlock()
	p.bus.Post(event.Player)
}

// State returns the transport state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Elapsed returns whole seconds consumed of the current song.
func (p *Player) Elapsed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elapsedLocked()
}

// settleLocked folds the running play segment into the playtime total.
func (p *Player) settleLocked() {
	if p.state == StatePlay {
		p.playtime += int(time.Since(p.started).Seconds())
	}
}

// PlayTime returns the total seconds of audio played since startup.
func (p *Player) PlayTime() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.playtime
	if p.state == StatePlay {
		t += int(time.Since(p.started).Seconds())
	}
	return t
}

func (p *Player) elapsedLocked() int {
	e := p.base
	if p.state == StatePlay {
		e += int(time.Since(p.started).Seconds())
	}
	if p.current.Duration > 0 && e > p.current.Duration {
		e = p.current.Duration
	}
	return e
}

// Total returns the duration of the current song in seconds.
func (p *Player) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current.Duration
}

// Bitrate returns the current stream bitrate in kbps, 0 when stopped.
func (p *Player) Bitrate() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bitrate
}

// AudioFormat returns the current output format.
func (p *Player) AudioFormat() Format {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.format
}

// CrossFade returns the crossfade time in seconds.
func (p *Player) CrossFade() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.crossfade
}

// SetCrossFade sets the crossfade time in seconds.
func (p *Player) SetCrossFade(seconds int) {
	p.mu.Lock()
	changed := p.crossfade != seconds
	p.crossfade = seconds
	p.mu.Unlock()
	if changed {
		p.bus.Post(event.Options)
	}
}

// Error returns the sticky playback error message, empty when none.
func (p *Player) Error() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errMsg
}

// SetError records a playback error for the status command.
func (p *Player) SetError(msg string) {
	p.mu.Lock()
	p.errMsg = msg
	p.mu.Unlock()
	p.bus.Post(event.Player)
}

// ClearError clears the sticky error.
func (p *Player) ClearError() {
	p.mu.Lock()
	p.errMsg = ""
	p.mu.Unlock()
}
