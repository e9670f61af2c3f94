// Package playlist implements the play queue: an ordered list of songs
// with stable ids, a change version for incremental client sync, and
// the playback-order options (repeat, random, single, consume).
package playlist

import (
	"math/rand"
	"sync"

	"github.com/quaverd/quaverd/internal/event"
	"github.com/quaverd/quaverd/internal/song"
)

// DefaultMaxLength bounds the queue size; additions beyond it fail with
// ResultTooLarge.
const DefaultMaxLength = 16384

// Control is the slice of the player transport the queue drives.
type Control interface {
	Play(s song.Song)
	Stop()
	Seek(seconds int)
}

// Entry is one queue position as seen by clients.
type Entry struct {
	Pos  int
	ID   int
	Song song.Song
}

type entry struct {
	id      int
	song    song.Song
	version int64
}

// Queue is the in-memory play queue. All methods are safe for
// concurrent use, though in practice each connection goroutine calls in
// sequence.
type Queue struct {
	mu        sync.Mutex
	entries   []entry
	nextID    int
	version   int64
	current   int // position, -1 when nothing selected
	maxLength int

	repeat  bool
	random  bool
	single  bool
	consume bool

	player Control
	bus    *event.Bus
	rng    *rand.Rand
}

// New creates an empty queue driving the given player.
func New(player Control, bus *event.Bus, seed int64) *Queue {
	return &Queue{
		nextID:    1,
		version:   1,
		current:   -1,
		maxLength: DefaultMaxLength,
		player:    player,
		bus:       bus,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

func (q *Queue) bump() {
	q.version++
}

// Add appends a song and returns its id.
func (q *Queue) Add(s song.Song) (int, Result) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) >= q.maxLength {
		return 0, ResultTooLarge
	}
	q.bump()
	id := q.nextID
	q.nextID++
	q.entries = append(q.entries, entry{id: id, song: s, version: q.version})
	q.bus.Post(event.Playlist)
	return id, ResultSuccess
}

// Delete removes the song at pos.
func (q *Queue) Delete(pos int) Result {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.deleteLocked(pos)
}

// DeleteID removes the song with the given id.
func (q *Queue) DeleteID(id int) Result {
	q.mu.Lock()
	defer q.mu.Unlock()

	pos, ok := q.posForID(id)
	if !ok {
		return ResultNoSuchSong
	}
	return q.deleteLocked(pos)
}

func (q *Queue) deleteLocked(pos int) Result {
	if pos < 0 || pos >= len(q.entries) {
		return ResultBadRange
	}
	playing := pos == q.current
	q.entries = append(q.entries[:pos], q.entries[pos+1:]...)
	q.bump()
	for i := pos; i < len(q.entries); i++ {
		q.entries[i].version = q.version
	}
	switch {
	case playing:
		q.current = -1
		q.player.Stop()
	case pos < q.current:
		q.current--
	}
	q.bus.Post(event.Playlist)
	return ResultSuccess
}

// Clear removes every song and stops playback.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = nil
	q.current = -1
	q.bump()
	q.player.Stop()
	q.bus.Post(event.Playlist)
}

// Move moves the song at from to position to.
func (q *Queue) Move(from, to int) Result {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.moveLocked(from, to)
}

// MoveID moves the song with the given id to position to.
func (q *Queue) MoveID(id, to int) Result {
	q.mu.Lock()
	defer q.mu.Unlock()

	from, ok := q.posForID(id)
	if !ok {
		return ResultNoSuchSong
	}
	return q.moveLocked(from, to)
}

func (q *Queue) moveLocked(from, to int) Result {
	n := len(q.entries)
	if from < 0 || from >= n || to < 0 || to >= n {
		return ResultBadRange
	}
	if from == to {
		return ResultSuccess
	}
	moved := q.entries[from]
	q.entries = append(q.entries[:from], q.entries[from+1:]...)
	q.entries = append(q.entries[:to], append([]entry{moved}, q.entries[to:]...)...)
	q.bump()
	lo, hi := from, to
	if lo > hi {
		lo, hi = hi, lo
	}
	for i := lo; i <= hi; i++ {
		q.entries[i].version = q.version
	}
	q.current = q.adjustAfterMove(q.current, from, to)
	q.bus.Post(event.Playlist)
	return ResultSuccess
}

func (q *Queue) adjustAfterMove(cur, from, to int) int {
	switch {
	case cur == -1:
		return cur
	case cur == from:
		return to
	case from < cur && cur <= to:
		return cur - 1
	case to <= cur && cur < from:
		return cur + 1
	}
	return cur
}

// Swap exchanges the songs at the two positions.
func (q *Queue) Swap(a, b int) Result {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.swapLocked(a, b)
}

// SwapID exchanges the songs with the two ids.
func (q *Queue) SwapID(id1, id2 int) Result {
	q.mu.Lock()
	defer q.mu.Unlock()

	a, ok1 := q.posForID(id1)
	b, ok2 := q.posForID(id2)
	if !ok1 || !ok2 {
		return ResultNoSuchSong
	}
	return q.swapLocked(a, b)
}

func (q *Queue) swapLocked(a, b int) Result {
	n := len(q.entries)
	if a < 0 || a >= n || b < 0 || b >= n {
		return ResultBadRange
	}
	q.entries[a], q.entries[b] = q.entries[b], q.entries[a]
	q.bump()
	q.entries[a].version = q.version
	q.entries[b].version = q.version
	switch q.current {
	case a:
		q.current = b
	case b:
		q.current = a
	}
	q.bus.Post(event.Playlist)
	return ResultSuccess
}

// Shuffle randomizes the queue order.
func (q *Queue) Shuffle() {
	q.mu.Lock()
	defer q.mu.Unlock()

	var currentID int
	if q.current >= 0 {
		currentID = q.entries[q.current].id
	}
	q.rng.Shuffle(len(q.entries), func(i, j int) {
		q.entries[i], q.entries[j] = q.entries[j], q.entries[i]
	})
	q.bump()
	for i := range q.entries {
		q.entries[i].version = q.version
	}
	if currentID != 0 {
		q.current, _ = q.posForID(currentID)
	}
	q.bus.Post(event.Playlist)
}

// Play starts playback at pos. pos -1 means "whatever is current":
// resume the selected song, or the first song when nothing is selected.
func (q *Queue) Play(pos int) Result {
	q.mu.Lock()
	defer q.mu.Unlock()

	if pos == -1 {
		if len(q.entries) == 0 {
			return ResultSuccess
		}
		if q.current == -1 {
			q.current = 0
		}
		q.player.Play(q.entries[q.current].song)
		return ResultSuccess
	}
	if pos < 0 || pos >= len(q.entries) {
		return ResultBadRange
	}
	q.current = pos
	q.player.Play(q.entries[pos].song)
	return ResultSuccess
}

// PlayID starts playback of the song with the given id; -1 behaves like
// Play(-1).
func (q *Queue) PlayID(id int) Result {
	if id == -1 {
		return q.Play(-1)
	}
	q.mu.Lock()
	pos, ok := q.posForID(id)
	q.mu.Unlock()
	if !ok {
		return ResultNoSuchSong
	}
	return q.Play(pos)
}

// Stop halts playback, keeping the current selection.
func (q *Queue) Stop() {
	q.player.Stop()
}

// Next advances to the following song, honoring random, repeat, single
// and consume.
func (q *Queue) Next() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stepLocked(1)
}

// Previous steps back to the preceding song.
func (q *Queue) Previous() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stepLocked(-1)
}

func (q *Queue) stepLocked(dir int) {
	if q.current == -1 || len(q.entries) == 0 {
		return
	}

	played := q.current
	next := q.current + dir
	switch {
	case q.single:
		if q.repeat {
			next = q.current
		} else {
			next = len(q.entries) // fall off the end
		}
	case q.random && len(q.entries) > 1:
		next = q.rng.Intn(len(q.entries))
	}

	if q.consume && dir > 0 {
		q.deleteForConsume(played)
		if next > played {
			next--
		}
	}

	switch {
	case next >= len(q.entries):
		if q.repeat && len(q.entries) > 0 {
			next = 0
		} else {
			q.current = -1
			q.player.Stop()
			return
		}
	case next < 0:
		next = 0
	}

	q.current = next
	q.player.Play(q.entries[next].song)
}

// deleteForConsume removes the just-played entry without touching the
// player (the caller immediately starts the next song or stops).
func (q *Queue) deleteForConsume(pos int) {
	if pos < 0 || pos >= len(q.entries) {
		return
	}
	q.entries = append(q.entries[:pos], q.entries[pos+1:]...)
	q.bump()
	for i := pos; i < len(q.entries); i++ {
		q.entries[i].version = q.version
	}
	if pos < q.current {
		q.current--
	} else if pos == q.current {
		q.current = -1
	}
	q.bus.Post(event.Playlist)
}

// Seek positions playback at the given second of the song at pos,
// switching songs first when necessary.
func (q *Queue) Seek(pos, seconds int) Result {
	q.mu.Lock()
	defer q.mu.Unlock()

	if pos < 0 || pos >= len(q.entries) {
		return ResultBadRange
	}
	if seconds < 0 {
		return ResultBadRange
	}
	q.current = pos
	q.player.Play(q.entries[pos].song)
	q.player.Seek(seconds)
	return ResultSuccess
}

// SeekID is Seek addressed by song id.
func (q *Queue) SeekID(id, seconds int) Result {
	q.mu.Lock()
	pos, ok := q.posForID(id)
	q.mu.Unlock()
	if !ok {
		return ResultNoSuchSong
	}
	return q.Seek(pos, seconds)
}

func (q *Queue) posForID(id int) (int, bool) {
	for i := range q.entries {
		if q.entries[i].id == id {
			return i, true
		}
	}
	return 0, false
}

// Current returns the selected entry, if any.
func (q *Queue) Current() (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.current < 0 || q.current >= len(q.entries) {
		return Entry{}, false
	}
	e := q.entries[q.current]
	return Entry{Pos: q.current, ID: e.id, Song: e.song}, true
}

// Songs returns a snapshot of the queue in order.
func (q *Queue) Songs() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Entry, len(q.entries))
	for i, e := range q.entries {
		out[i] = Entry{Pos: i, ID: e.id, Song: e.song}
	}
	return out
}

// Song returns the entry at pos.
func (q *Queue) Song(pos int) (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if pos < 0 || pos >= len(q.entries) {
		return Entry{}, false
	}
	e := q.entries[pos]
	return Entry{Pos: pos, ID: e.id, Song: e.song}, true
}

// SongByID returns the entry with the given id.
func (q *Queue) SongByID(id int) (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	pos, ok := q.posForID(id)
	if !ok {
		return Entry{}, false
	}
	return Entry{Pos: pos, ID: q.entries[pos].id, Song: q.entries[pos].song}, true
}

// ChangesSince returns every entry modified at or after version v.
func (q *Queue) ChangesSince(v int64) []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []Entry
	for i, e := range q.entries {
		if e.version >= v {
			out = append(out, Entry{Pos: i, ID: e.id, Song: e.song})
		}
	}
	return out
}

// Len returns the queue length.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Version returns the queue change counter.
func (q *Queue) Version() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.version
}

// Repeat reports the repeat flag.
func (q *Queue) Repeat() bool { q.mu.Lock(); defer q.mu.Unlock(); return q.repeat }

// Random reports the random flag.
func (q *Queue) Random() bool { q.mu.Lock(); defer q.mu.Unlock(); return q.random }

// Single reports the single flag.
func (q *Queue) Single() bool { q.mu.Lock(); defer q.mu.Unlock(); return q.single }

// Consume reports the consume flag.
func (q *Queue) Consume() bool { q.mu.Lock(); defer q.mu.Unlock(); return q.consume }

// SetRepeat sets the repeat flag.
func (q *Queue) SetRepeat(v bool) { q.setOption(&q.repeat, v) }

// SetRandom sets the random flag.
func (q *Queue) SetRandom(v bool) { q.setOption(&q.random, v) }

// SetSingle sets the single flag.
func (q *Queue) SetSingle(v bool) { q.setOption(&q.single, v) }

// SetConsume sets the consume flag.
func (q *Queue) SetConsume(v bool) { q.setOption(&q.consume, v) }

func (q *Queue) setOption(flag *bool, v bool) {
	q.mu.Lock()
	changed := *flag != v
	*flag = v
	q.mu.Unlock()
	if changed {
		q.bus.Post(event.Options)
	}
}
