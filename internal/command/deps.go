package command

import (
	"context"
	"time"

	"github.com/quaverd/quaverd/internal/library"
	"github.com/quaverd/quaverd/internal/output"
	"github.com/quaverd/quaverd/internal/permission"
	"github.com/quaverd/quaverd/internal/player"
	"github.com/quaverd/quaverd/internal/playlist"
	"github.com/quaverd/quaverd/internal/song"
	"github.com/quaverd/quaverd/internal/storedpl"
)

// QueueService is the play queue as the handlers drive it. Implemented
// by *playlist.Queue.
type QueueService interface {
	Add(s song.Song) (int, playlist.Result)
	Delete(pos int) playlist.Result
	DeleteID(id int) playlist.Result
	Clear()
	Move(from, to int) playlist.Result
	MoveID(id, to int) playlist.Result
	Swap(a, b int) playlist.Result
	SwapID(id1, id2 int) playlist.Result
	Shuffle()
	Play(pos int) playlist.Result
	PlayID(id int) playlist.Result
	Stop()
	Next()
	Previous()
	Seek(pos, seconds int) playlist.Result
	SeekID(id, seconds int) playlist.Result
	Current() (playlist.Entry, bool)
	Songs() []playlist.Entry
	Song(pos int) (playlist.Entry, bool)
	SongByID(id int) (playlist.Entry, bool)
	ChangesSince(v int64) []playlist.Entry
	Len() int
	Version() int64
	Repeat() bool
	SetRepeat(v bool)
	Random() bool
	SetRandom(v bool)
	Single() bool
	SetSingle(v bool)
	Consume() bool
	SetConsume(v bool)
}

// Transport is the playback state machine. Implemented by
// *player.Player.
type Transport interface {
	State() player.State
	SetPause(pause bool)
	Pause()
	Elapsed() int
	Total() int
	Bitrate() int
	AudioFormat() player.Format
	CrossFade() int
	SetCrossFade(seconds int)
	PlayTime() int
	Error() string
	ClearError()
}

// MixerService is the volume control. Implemented by *mixer.Volume.
type MixerService interface {
	Level() int
	Set(level int) error
	Change(delta int) error
}

// OutputService is the audio output table. Implemented by
// *output.Manager.
type OutputService interface {
	List() []output.Device
	Enable(id int) error
	Disable(id int) error
}

// LibraryService is the music database. Implemented by
// *library.Library.
type LibraryService interface {
	UpdateJob() int
	LastUpdate() time.Time
	Update(relPath string) (int, error)
	Get(ctx context.Context, uri string) (song.Song, bool, error)
	SongsIn(ctx context.Context, relPath string) ([]song.Song, error)
	LsInfo(ctx context.Context, relPath string) ([]library.Entry, error)
	ListAll(ctx context.Context, relPath string) ([]library.Entry, error)
	Find(ctx context.Context, filters []library.TagFilter, exact bool) ([]song.Song, error)
	ListUnique(ctx context.Context, tag string, filters []library.TagFilter) ([]string, error)
	Count(ctx context.Context, filters []library.TagFilter) (songs, playtime int, err error)
	Stats(ctx context.Context) (library.Stats, error)
}

// StoredService is the stored playlist store. Implemented by
// *storedpl.Store.
type StoredService interface {
	List() ([]storedpl.Info, error)
	Songs(name string) ([]string, playlist.Result, error)
	Save(name string, uris []string) (playlist.Result, error)
	Delete(name string) (playlist.Result, error)
	Rename(oldName, newName string) (playlist.Result, error)
	Clear(name string) (playlist.Result, error)
	Append(name, uri string) (playlist.Result, error)
	RemoveIndex(name string, pos int) (playlist.Result, error)
	MoveIndex(name string, from, to int) (playlist.Result, error)
}

// Deps bundles the collaborators the handlers act on.
type Deps struct {
	Queue   QueueService
	Player  Transport
	Mixer   MixerService
	Outputs OutputService
	Library LibraryService
	Stored  StoredService

	// Passwords maps each configured secret to the permission set it
	// grants.
	Passwords map[string]permission.Bits

	// StartTime anchors the uptime field of the stats command.
	StartTime time.Time
}
