package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quaverd/quaverd/internal/event"
	"github.com/quaverd/quaverd/internal/library"
	"github.com/quaverd/quaverd/internal/mixer"
	"github.com/quaverd/quaverd/internal/output"
	"github.com/quaverd/quaverd/internal/permission"
	"github.com/quaverd/quaverd/internal/player"
	"github.com/quaverd/quaverd/internal/playlist"
	"github.com/quaverd/quaverd/internal/protocol"
	"github.com/quaverd/quaverd/internal/song"
	"github.com/quaverd/quaverd/internal/storedpl"
)

// fakeClient is an in-memory Client for handler assertions.
type fakeClient struct {
	out        strings.Builder
	perm       permission.Bits
	mask       event.Mask
	subscribed bool
	expired    bool
}

func (f *fakeClient) Writef(format string, args ...any) {
	fmt.Fprintf(&f.out, format, args...)
}
func (f *fakeClient) Permission() permission.Bits { return f.perm }
func (f *fakeClient) Grant(p permission.Bits)     { f.perm = p }
func (f *fakeClient) Subscribe(m event.Mask) {
	f.mask = m
	f.subscribed = true
}
func (f *fakeClient) Context() context.Context { return context.Background() }
func (f *fakeClient) Expired() bool            { return f.expired }

// fakeControl records transport calls made through the queue.
type fakeControl struct {
	played  []string
	stopped int
	seeked  []int
}

func (f *fakeControl) Play(s song.Song) { f.played = append(f.played, s.URI) }
func (f *fakeControl) Stop()            { f.stopped++ }
func (f *fakeControl) Seek(seconds int) { f.seeked = append(f.seeked, seconds) }

// fakeLibrary is an in-memory LibraryService.
type fakeLibrary struct {
	songs    map[string]song.Song
	job      int
	updating bool
	last     time.Time
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{songs: map[string]song.Song{
		"Kraftwerk/Autobahn/01 - Autobahn.ogg": {
			URI: "Kraftwerk/Autobahn/01 - Autobahn.ogg", Artist: "Kraftwerk",
			Album: "Autobahn", Title: "Autobahn", Track: 1, Duration: 1369,
		},
		"Kraftwerk/Autobahn/02 - Kometenmelodie 1.ogg": {
			URI: "Kraftwerk/Autobahn/02 - Kometenmelodie 1.ogg", Artist: "Kraftwerk",
			Album: "Autobahn", Title: "Kometenmelodie 1", Track: 2, Duration: 384,
		},
		"single.ogg": {URI: "single.ogg", Duration: 60},
	}}
}

func (f *fakeLibrary) sorted() []song.Song {
	uris := make([]string, 0, len(f.songs))
	for uri := range f.songs {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	out := make([]song.Song, 0, len(uris))
	for _, uri := range uris {
		out = append(out, f.songs[uri])
	}
	return out
}

func (f *fakeLibrary) UpdateJob() int {
	if f.updating {
		return f.job
	}
	return 0
}
func (f *fakeLibrary) LastUpdate() time.Time { return f.last }

func (f *fakeLibrary) Update(relPath string) (int, error) {
	if f.updating {
		return 0, library.ErrUpdateAlready
	}
	f.job++
	return f.job, nil
}

func (f *fakeLibrary) Get(ctx context.Context, uri string) (song.Song, bool, error) {
	s, found := f.songs[uri]
	return s, found, nil
}

func (f *fakeLibrary) SongsIn(ctx context.Context, relPath string) ([]song.Song, error) {
	if relPath == "" {
		return f.sorted(), nil
	}
	if s, found := f.songs[relPath]; found {
		return []song.Song{s}, nil
	}
	var out []song.Song
	for _, s := range f.sorted() {
		if strings.HasPrefix(s.URI, relPath+"/") {
			out = append(out, s)
		}
	}
	if out == nil {
		return nil, library.ErrNotFound
	}
	return out, nil
}

func (f *fakeLibrary) LsInfo(ctx context.Context, relPath string) ([]library.Entry, error) {
	return nil, nil
}
func (f *fakeLibrary) ListAll(ctx context.Context, relPath string) ([]library.Entry, error) {
	songs, err := f.SongsIn(ctx, relPath)
	if err != nil {
		return nil, err
	}
	out := make([]library.Entry, 0, len(songs))
	for _, s := range songs {
		out = append(out, library.Entry{Song: s})
	}
	return out, nil
}

func (f *fakeLibrary) Find(ctx context.Context, filters []library.TagFilter, exact bool) ([]song.Song, error) {
	var out []song.Song
	for _, s := range f.sorted() {
		if matchFilters(s, filters, exact) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeLibrary) ListUnique(ctx context.Context, tag string, filters []library.TagFilter) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, s := range f.sorted() {
		if !matchFilters(s, filters, true) {
			continue
		}
		var v string
		switch strings.ToLower(tag) {
		case "artist":
			v = s.Artist
		case "album":
			v = s.Album
		default:
			return nil, fmt.Errorf("%q is not known", tag)
		}
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeLibrary) Count(ctx context.Context, filters []library.TagFilter) (int, int, error) {
	songs, playtime := 0, 0
	for _, s := range f.sorted() {
		if matchFilters(s, filters, true) {
			songs++
			playtime += s.Duration
		}
	}
	return songs, playtime, nil
}

func (f *fakeLibrary) Stats(ctx context.Context) (library.Stats, error) {
	return library.Stats{Artists: 1, Albums: 2, Songs: len(f.songs), DBPlaytime: 1813}, nil
}

type env struct {
	dispatcher *Dispatcher
	deps       *Deps
	ctl        *fakeControl
	lib        *fakeLibrary
	bus        *event.Bus
}

func newTestEnv(t *testing.T) (*env, *fakeClient) {
	t.Helper()
	bus := event.NewBus()
	ctl := &fakeControl{}
	lib := newFakeLibrary()
	deps := &Deps{
		Queue:     playlist.New(ctl, bus, 1),
		Player:    player.New(bus),
		Mixer:     mixer.New(50, bus),
		Outputs:   output.NewManager([]string{"default"}, bus),
		Library:   lib,
		Stored:    storedpl.New(t.TempDir(), bus),
		Passwords: map[string]permission.Bits{"hunter2": permission.All},
		StartTime: time.Now(),
	}
	e := &env{
		dispatcher: NewDispatcher(NewRegistry(deps)),
		deps:       deps,
		ctl:        ctl,
		lib:        lib,
		bus:        bus,
	}
	return e, &fakeClient{perm: permission.All}
}

func requireAck(t *testing.T, out Outcome, code protocol.AckCode, tag, message string) {
	t.Helper()
	require.Equal(t, KindError, out.Kind)
	require.NotNil(t, out.Err)
	assert.Equal(t, code, out.Err.Code)
	assert.Equal(t, tag, out.Tag)
	assert.Equal(t, message, out.Err.Message)
}

func TestUnknownCommand(t *testing.T) {
	e, c := newTestEnv(t)

	out := e.dispatcher.Process(c, "frobnicate")
	requireAck(t, out, protocol.AckUnknown, "", "unknown command \"frobnicate\"")
	assert.Empty(t, c.out.String())
}

func TestEmptyLineIsSilent(t *testing.T) {
	e, c := newTestEnv(t)

	out := e.dispatcher.Process(c, "")
	assert.Equal(t, KindSilent, out.Kind)
	assert.Empty(t, c.out.String())
}

func TestMalformedQuoteTaggedEmpty(t *testing.T) {
	e, c := newTestEnv(t)

	out := e.dispatcher.Process(c, "play \"0")
	require.Equal(t, KindError, out.Kind)
	assert.Equal(t, protocol.AckArg, out.Err.Code)
	assert.Equal(t, "", out.Tag)
}

func TestPermissionDeniedBeforeSideEffects(t *testing.T) {
	e, c := newTestEnv(t)
	c.perm = permission.Read

	out := e.dispatcher.Process(c, "stop")
	requireAck(t, out, protocol.AckPermission, "stop",
		"you don't have permission for \"stop\"")
	assert.Zero(t, e.ctl.stopped)
}

func TestPermissionCheckedBeforeArity(t *testing.T) {
	e, c := newTestEnv(t)
	c.perm = permission.Read

	// seek wants two arguments and control permission; the permission
	// failure must win.
	out := e.dispatcher.Process(c, "seek 1")
	require.Equal(t, KindError, out.Kind)
	assert.Equal(t, protocol.AckPermission, out.Err.Code)
}

func TestWrongArgumentCount(t *testing.T) {
	e, c := newTestEnv(t)

	out := e.dispatcher.Process(c, "repeat")
	requireAck(t, out, protocol.AckArg, "repeat",
		"wrong number of arguments for \"repeat\"")

	out = e.dispatcher.Process(c, "repeat 1 2")
	require.Equal(t, KindError, out.Kind)
	assert.Equal(t, protocol.AckArg, out.Err.Code)

	// Commands with unequal bounds report which side was violated.
	out = e.dispatcher.Process(c, "count artist")
	requireAck(t, out, protocol.AckArg, "count",
		"too few arguments for \"count\"")

	out = e.dispatcher.Process(c, "listall a b")
	requireAck(t, out, protocol.AckArg, "listall",
		"too many arguments for \"listall\"")
}

func TestPauseArgument(t *testing.T) {
	e, c := newTestEnv(t)
	// The queue drives the fake transport in tests, so put the real
	// player into play state by hand.
	e.deps.Player.(*player.Player).Play(song.Song{URI: "single.ogg", Duration: 60})

	out := e.dispatcher.Process(c, "pause 2")
	requireAck(t, out, protocol.AckArg, "pause", "Boolean (0/1) expected: 2")

	out = e.dispatcher.Process(c, "pause 1")
	require.Equal(t, KindOK, out.Kind)
	assert.Equal(t, player.StatePause, e.deps.Player.State())

	out = e.dispatcher.Process(c, "pause")
	require.Equal(t, KindOK, out.Kind)
	assert.Equal(t, player.StatePlay, e.deps.Player.State())
}

func TestPlayArguments(t *testing.T) {
	e, c := newTestEnv(t)
	e.deps.Queue.Add(song.Song{URI: "single.ogg"})

	out := e.dispatcher.Process(c, "play x")
	requireAck(t, out, protocol.AckArg, "play", "need a positive integer")

	out = e.dispatcher.Process(c, "play 3")
	requireAck(t, out, protocol.AckArg, "play", "Bad song index")

	out = e.dispatcher.Process(c, "play")
	require.Equal(t, KindOK, out.Kind)
	require.Len(t, e.ctl.played, 1)
	assert.Equal(t, "single.ogg", e.ctl.played[0])
}

func TestPasswordGrants(t *testing.T) {
	e, c := newTestEnv(t)
	c.perm = permission.None

	out := e.dispatcher.Process(c, "status")
	require.Equal(t, KindError, out.Kind)
	assert.Equal(t, protocol.AckPermission, out.Err.Code)

	out = e.dispatcher.Process(c, "password wrong")
	requireAck(t, out, protocol.AckPassword, "password", "incorrect password")

	out = e.dispatcher.Process(c, "password hunter2")
	require.Equal(t, KindOK, out.Kind)

	out = e.dispatcher.Process(c, "status")
	assert.Equal(t, KindOK, out.Kind)
}

func TestIdleSubscribes(t *testing.T) {
	e, c := newTestEnv(t)

	out := e.dispatcher.Process(c, "idle player options")
	require.Equal(t, KindIdle, out.Kind)
	require.True(t, c.subscribed)
	assert.Equal(t, event.Player|event.Options, c.mask)

	c2 := &fakeClient{perm: permission.All}
	out = e.dispatcher.Process(c2, "idle")
	require.Equal(t, KindIdle, out.Kind)
	assert.Equal(t, event.All, c2.mask)
}

func TestKillAndClose(t *testing.T) {
	e, c := newTestEnv(t)

	out := e.dispatcher.Process(c, "kill")
	assert.Equal(t, KindKill, out.Kind)

	out = e.dispatcher.Process(c, "close")
	assert.Equal(t, KindClose, out.Kind)

	// Arity is unchecked for both.
	out = e.dispatcher.Process(c, "close now please")
	assert.Equal(t, KindClose, out.Kind)
}

func TestCommandsReflectGrantedBits(t *testing.T) {
	e, c := newTestEnv(t)
	c.perm = permission.Read

	out := e.dispatcher.Process(c, "commands")
	require.Equal(t, KindOK, out.Kind)
	allowed := c.out.String()
	assert.Contains(t, allowed, "command: status\n")
	assert.Contains(t, allowed, "command: ping\n")
	assert.NotContains(t, allowed, "command: stop\n")
	assert.NotContains(t, allowed, "command: kill\n")

	c2 := &fakeClient{perm: permission.Read}
	out = e.dispatcher.Process(c2, "notcommands")
	require.Equal(t, KindOK, out.Kind)
	denied := c2.out.String()
	assert.Contains(t, denied, "command: stop\n")
	assert.Contains(t, denied, "command: kill\n")
	assert.NotContains(t, denied, "command: status\n")
}

func TestProcessListStopsAtFirstError(t *testing.T) {
	e, c := newTestEnv(t)
	e.deps.Queue.Add(song.Song{URI: "single.ogg"})

	out := e.dispatcher.ProcessList(c, []string{"play 0", "frobnicate", "stop"}, false)
	require.Equal(t, KindError, out.Kind)
	assert.Equal(t, 1, out.Step)
	assert.Equal(t, protocol.AckUnknown, out.Err.Code)
	assert.Equal(t, "", out.Tag)

	// Step one ran, step three never did.
	assert.Len(t, e.ctl.played, 1)
	assert.Zero(t, e.ctl.stopped)
}

func TestProcessListVerboseMarkers(t *testing.T) {
	e, c := newTestEnv(t)

	out := e.dispatcher.ProcessList(c, []string{"ping", "ping"}, true)
	require.Equal(t, KindOK, out.Kind)
	assert.Equal(t, "list_OK\nlist_OK\n", c.out.String())

	c2 := &fakeClient{perm: permission.All}
	out = e.dispatcher.ProcessList(c2, []string{"ping", "ping"}, false)
	require.Equal(t, KindOK, out.Kind)
	assert.Empty(t, c2.out.String())
}

func TestStatusFields(t *testing.T) {
	e, c := newTestEnv(t)

	require.Equal(t, KindOK, e.dispatcher.Process(c, "status").Kind)
	stopped := c.out.String()
	assert.Contains(t, stopped, "volume: 50\n")
	assert.Contains(t, stopped, "repeat: 0\n")
	assert.Contains(t, stopped, "playlistlength: 0\n")
	assert.Contains(t, stopped, "state: stop\n")
	assert.NotContains(t, stopped, "bitrate:")
	assert.NotContains(t, stopped, "song:")

	e.deps.Queue.Add(song.Song{URI: "single.ogg", Duration: 60})
	e.dispatcher.Process(c, "play")
	// The queue drives the fake transport in tests, so mirror the state
	// change on the real player by hand.
	e.deps.Player.(*player.Player).Play(song.Song{URI: "single.ogg", Duration: 60})

	c2 := &fakeClient{perm: permission.All}
	require.Equal(t, KindOK, e.dispatcher.Process(c2, "status").Kind)
	playing := c2.out.String()
	assert.Contains(t, playing, "state: play\n")
	assert.Contains(t, playing, "song: 0\n")
	assert.Contains(t, playing, "songid: 0\n")
	assert.Contains(t, playing, "audio: 44100:16:2\n")
	assert.Contains(t, playing, "bitrate: 128\n")
}

func TestStatsFields(t *testing.T) {
	e, c := newTestEnv(t)

	require.Equal(t, KindOK, e.dispatcher.Process(c, "stats").Kind)
	got := c.out.String()
	assert.Contains(t, got, "artists: 1\n")
	assert.Contains(t, got, "albums: 2\n")
	assert.Contains(t, got, "songs: 3\n")
	assert.Contains(t, got, "db_playtime: 1813\n")
	assert.Contains(t, got, "db_update: 0\n")
}

func TestAddDirectoryAndMissing(t *testing.T) {
	e, c := newTestEnv(t)

	out := e.dispatcher.Process(c, "add nosuch")
	requireAck(t, out, protocol.AckNoExist, "add", "directory or file not found")

	out = e.dispatcher.Process(c, "add Kraftwerk")
	require.Equal(t, KindOK, out.Kind)
	assert.Equal(t, 2, e.deps.Queue.Len())

	out = e.dispatcher.Process(c, "add ftp://example.com/x.ogg")
	requireAck(t, out, protocol.AckNoExist, "add", "unsupported URI scheme")

	out = e.dispatcher.Process(c, "add http://example.com/stream")
	require.Equal(t, KindOK, out.Kind)
	assert.Equal(t, 3, e.deps.Queue.Len())
}

func TestAddIDReportsAssignedID(t *testing.T) {
	e, c := newTestEnv(t)

	out := e.dispatcher.Process(c, "addid single.ogg")
	require.Equal(t, KindOK, out.Kind)
	assert.Equal(t, "Id: 0\n", c.out.String())

	// A failing move must undo the addition.
	c2 := &fakeClient{perm: permission.All}
	out = e.dispatcher.Process(c2, "addid single.ogg 99")
	require.Equal(t, KindError, out.Kind)
	assert.Equal(t, 1, e.deps.Queue.Len())
}

func TestUpdateReportsJob(t *testing.T) {
	e, c := newTestEnv(t)

	out := e.dispatcher.Process(c, "update")
	require.Equal(t, KindOK, out.Kind)
	assert.Equal(t, "updating_db: 1\n", c.out.String())

	e.lib.updating = true
	out = e.dispatcher.Process(c, "update")
	requireAck(t, out, protocol.AckUpdateAlready, "update", "already updating")
}

func TestStoredPlaylistLifecycle(t *testing.T) {
	e, c := newTestEnv(t)
	e.dispatcher.Process(c, "add single.ogg")

	out := e.dispatcher.Process(c, "save mylist")
	require.Equal(t, KindOK, out.Kind)

	out = e.dispatcher.Process(c, "save mylist")
	requireAck(t, out, protocol.AckExist, "save", "Playlist already exists")

	c2 := &fakeClient{perm: permission.All}
	out = e.dispatcher.Process(c2, "listplaylist mylist")
	require.Equal(t, KindOK, out.Kind)
	assert.Equal(t, "file: single.ogg\n", c2.out.String())

	out = e.dispatcher.Process(c2, "rm mylist")
	require.Equal(t, KindOK, out.Kind)

	out = e.dispatcher.Process(c2, "rm mylist")
	requireAck(t, out, protocol.AckNoExist, "rm", "No such playlist")

	out = e.dispatcher.Process(c2, "save bad/name")
	require.Equal(t, KindError, out.Kind)
	assert.Equal(t, protocol.AckArg, out.Err.Code)
}

func TestVolumeCommands(t *testing.T) {
	e, c := newTestEnv(t)

	out := e.dispatcher.Process(c, "setvol 150")
	requireAck(t, out, protocol.AckSystem, "setvol", "problems setting volume")

	require.Equal(t, KindOK, e.dispatcher.Process(c, "setvol 70").Kind)
	assert.Equal(t, 70, e.deps.Mixer.Level())

	require.Equal(t, KindOK, e.dispatcher.Process(c, "volume -20").Kind)
	assert.Equal(t, 50, e.deps.Mixer.Level())

	out = e.dispatcher.Process(c, "setvol x")
	requireAck(t, out, protocol.AckArg, "setvol", "need an integer")
}

func TestOutputCommands(t *testing.T) {
	e, c := newTestEnv(t)

	require.Equal(t, KindOK, e.dispatcher.Process(c, "outputs").Kind)
	assert.Equal(t,
		"outputid: 0\noutputname: default\noutputenabled: 1\n",
		c.out.String())

	require.Equal(t, KindOK, e.dispatcher.Process(c, "disableoutput 0").Kind)
	assert.False(t, e.deps.Outputs.List()[0].Enabled)

	out := e.dispatcher.Process(c, "enableoutput 7")
	requireAck(t, out, protocol.AckNoExist, "enableoutput", "No such audio output")
}

func TestFindVersusSearch(t *testing.T) {
	e, c := newTestEnv(t)

	require.Equal(t, KindOK, e.dispatcher.Process(c, "find artist Kraftwerk").Kind)
	assert.Equal(t, 2, strings.Count(c.out.String(), "file: "))

	c2 := &fakeClient{perm: permission.All}
	require.Equal(t, KindOK, e.dispatcher.Process(c2, "search artist kraft").Kind)
	assert.Equal(t, 2, strings.Count(c2.out.String(), "file: "))

	c3 := &fakeClient{perm: permission.All}
	out := e.dispatcher.Process(c3, "find artist")
	requireAck(t, out, protocol.AckArg, "find", "incorrect arguments")
}

func TestListUniqueTags(t *testing.T) {
	e, c := newTestEnv(t)

	require.Equal(t, KindOK, e.dispatcher.Process(c, "list album artist Kraftwerk").Kind)
	assert.Equal(t, "Album: Autobahn\n", c.out.String())

	c2 := &fakeClient{perm: permission.All}
	out := e.dispatcher.Process(c2, "list any")
	requireAck(t, out, protocol.AckArg, "list", "\"any\" is not a valid return tag type")
}

func TestPlaylistChanges(t *testing.T) {
	e, c := newTestEnv(t)
	e.deps.Queue.Add(song.Song{URI: "a.ogg"})
	v := e.deps.Queue.Version()
	e.deps.Queue.Add(song.Song{URI: "b.ogg"})

	require.Equal(t, KindOK,
		e.dispatcher.Process(c, fmt.Sprintf("plchanges %d", v)).Kind)
	got := c.out.String()
	assert.Contains(t, got, "file: b.ogg\n")
	assert.NotContains(t, got, "file: a.ogg\n")

	c2 := &fakeClient{perm: permission.All}
	out := e.dispatcher.Process(c2, "plchanges -1")
	require.Equal(t, KindError, out.Kind)
	assert.Equal(t, protocol.AckArg, out.Err.Code)
}

func TestQuotedArguments(t *testing.T) {
	e, c := newTestEnv(t)

	out := e.dispatcher.Process(c, "find artist \"Kraftwerk\"")
	require.Equal(t, KindOK, out.Kind)
	assert.Equal(t, 2, strings.Count(c.out.String(), "file: "))
}
