// Package library implements the song database: a SQLite index over the
// music directory, filled by update jobs that walk the filesystem.
//
// Tag extraction is deliberately shallow (artist/album from the
// directory layout, title and track number from the file name); a full
// tag reader is an external collaborator and plugs in behind the same
// schema.
package library

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"

	"github.com/quaverd/quaverd/internal/event"
	"github.com/quaverd/quaverd/internal/song"
)

// ErrUpdateAlready is returned when an update job is already running.
var ErrUpdateAlready = errors.New("already updating")

// ErrNotFound is returned for lookups under a path the database does
// not contain.
var ErrNotFound = errors.New("directory or file not found")

var audioExtensions = map[string]bool{
	".aac":  true,
	".flac": true,
	".m4a":  true,
	".mp3":  true,
	".ogg":  true,
	".opus": true,
	".wav":  true,
}

const schema = `
CREATE TABLE IF NOT EXISTS songs (
	uri      TEXT PRIMARY KEY,
	artist   TEXT NOT NULL DEFAULT '',
	album    TEXT NOT NULL DEFAULT '',
	title    TEXT NOT NULL DEFAULT '',
	genre    TEXT NOT NULL DEFAULT '',
	track    INTEGER NOT NULL DEFAULT 0,
	duration INTEGER NOT NULL DEFAULT 0,
	mtime    INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS songs_artist ON songs(artist);
CREATE INDEX IF NOT EXISTS songs_album ON songs(album);
`

// Library is the SQLite-backed song index.
type Library struct {
	db       *sql.DB
	musicDir string
	bus      *event.Bus
	log      zerolog.Logger

	mu         sync.Mutex
	updating   int // running job id, 0 when idle
	nextJob    int
	lastUpdate time.Time

	wg sync.WaitGroup
}

// Open opens (creating if needed) the database at dbPath, indexing
// musicDir.
func Open(dbPath, musicDir string, bus *event.Bus, log zerolog.Logger) (*Library, error) {
	dsn := filepath.Clean(dbPath) + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open song database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create song schema: %w", err)
	}
	return &Library{
		db:       db,
		musicDir: musicDir,
		bus:      bus,
		log:      log,
	}, nil
}

// Close waits for a running update job and closes the database.
func (l *Library) Close() error {
	l.wg.Wait()
	return l.db.Close()
}

// UpdateJob returns the id of the running update job, 0 when idle.
func (l *Library) UpdateJob() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.updating
}

// LastUpdate returns the completion time of the most recent update job.
func (l *Library) LastUpdate() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastUpdate
}

// Update starts a background scan of the music directory, or of the
// given subdirectory when path is non-empty. Only one job runs at a
// time.
func (l *Library) Update(relPath string) (int, error) {
	clean := path.Clean("/" + relPath)[1:] // strips "..", leading "/"
	l.mu.Lock()
	if l.updating != 0 {
		l.mu.Unlock()
		return 0, ErrUpdateAlready
	}
	l.nextJob++
	job := l.nextJob
	l.updating = job
	l.mu.Unlock()

	l.wg.Add(1)
	go l.scan(job, clean)
	l.bus.Post(event.Update)
	return job, nil
}

func (l *Library) scan(job int, relPath string) {
	defer l.wg.Done()

	start := time.Now()
	count, err := l.walk(relPath)
	if err != nil {
		l.log.Error().Err(err).Int("job", job).Msg("library update failed")
	} else {
		l.log.Info().Int("job", job).Int("songs", count).
			Dur("elapsed", time.Since(start)).Msg("library update finished")
	}

	l.mu.Lock()
	l.updating = 0
	l.lastUpdate = time.Now()
	l.mu.Unlock()
	l.bus.Post(event.Database | event.Update)
}

func (l *Library) walk(relPath string) (int, error) {
	root := filepath.Join(l.musicDir, filepath.FromSlash(relPath))
	seen := make(map[string]bool)
	count := 0

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// A vanished subtree is not fatal to the scan.
			return nil
		}
		if d.IsDir() || !audioExtensions[strings.ToLower(filepath.Ext(p))] {
			return nil
		}
		rel, err := filepath.Rel(l.musicDir, p)
		if err != nil {
			return nil
		}
		uri := filepath.ToSlash(rel)
		info, err := d.Info()
		if err != nil {
			return nil
		}
		s := songFromPath(uri, info.ModTime())
		if err := l.upsert(s); err != nil {
			return err
		}
		seen[uri] = true
		count++
		return nil
	})
	if err != nil {
		return count, err
	}

	if err := l.prune(relPath, seen); err != nil {
		return count, err
	}
	return count, nil
}

// songFromPath derives tags from the path layout artist/album/title.ext.
func songFromPath(uri string, mtime time.Time) song.Song {
	s := song.Song{URI: uri, LastModified: mtime}

	parts := strings.Split(uri, "/")
	base := parts[len(parts)-1]
	base = strings.TrimSuffix(base, path.Ext(base))

	// Leading "NN - " or "NN." track prefix.
	if i := strings.IndexAny(base, ".-_ "); i > 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(base[:i])); err == nil {
			s.Track = n
			base = strings.TrimLeft(base[i:], ".-_ ")
		}
	}
	s.Title = base

	if len(parts) >= 3 {
		s.Artist = parts[len(parts)-3]
		s.Album = parts[len(parts)-2]
	} else if len(parts) == 2 {
		s.Artist = parts[0]
	}
	return s
}

func (l *Library) upsert(s song.Song) error {
	_, err := l.db.Exec(`
		INSERT INTO songs (uri, artist, album, title, genre, track, duration, mtime)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uri) DO UPDATE SET
			artist = excluded.artist,
			album = excluded.album,
			title = excluded.title,
			genre = excluded.genre,
			track = excluded.track,
			mtime = excluded.mtime`,
		s.URI, s.Artist, s.Album, s.Title, s.Genre, s.Track, s.Duration,
		s.LastModified.Unix())
	return err
}

// prune deletes rows under relPath whose files vanished.
func (l *Library) prune(relPath string, seen map[string]bool) error {
	rows, err := l.db.Query(`SELECT uri FROM songs WHERE uri LIKE ? ESCAPE '\'`,
		likePrefix(relPath))
	if err != nil {
		return err
	}
	var stale []string
	for rows.Next() {
		var uri string
		if err := rows.Scan(&uri); err != nil {
			rows.Close()
			return err
		}
		if !seen[uri] {
			stale = append(stale, uri)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, uri := range stale {
		if _, err := l.db.Exec(`DELETE FROM songs WHERE uri = ?`, uri); err != nil {
			return err
		}
	}
	return nil
}

// likePrefix builds a LIKE pattern matching everything under relPath,
// escaping LIKE metacharacters in the prefix.
func likePrefix(relPath string) string {
	if relPath == "" {
		return "%"
	}
	esc := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(relPath)
	return esc + "/%"
}
