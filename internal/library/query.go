package library

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/quaverd/quaverd/internal/song"
)

// TagFilter matches one tag against a value.
type TagFilter struct {
	Tag   string
	Value string
}

// Tag names accepted by find/search/list/count, lower-cased.
var tagColumns = map[string]string{
	"artist":   "artist",
	"album":    "album",
	"title":    "title",
	"genre":    "genre",
	"track":    "track",
	"filename": "uri",
	"file":     "uri",
}

// TagNames lists the queryable tags in display form.
func TagNames() []string {
	return []string{"Artist", "Album", "Title", "Track", "Genre", "Filename"}
}

// ParseFilters converts alternating tag/value arguments into filters.
// "any" is accepted as a wildcard tag.
func ParseFilters(args []string) ([]TagFilter, error) {
	if len(args) == 0 || len(args)%2 != 0 {
		return nil, fmt.Errorf("incorrect arguments")
	}
	var filters []TagFilter
	for i := 0; i < len(args); i += 2 {
		tag := strings.ToLower(args[i])
		if tag != "any" {
			if _, ok := tagColumns[tag]; !ok {
				return nil, fmt.Errorf("%q is not known", args[i])
			}
		}
		filters = append(filters, TagFilter{Tag: tag, Value: args[i+1]})
	}
	return filters, nil
}

// whereClause renders filters into SQL. exact selects equality matching;
// otherwise a case-insensitive substring match is used.
func whereClause(filters []TagFilter, exact bool) (string, []any) {
	var conds []string
	var args []any
	for _, f := range filters {
		if f.Tag == "any" {
			cols := []string{"artist", "album", "title", "uri"}
			var sub []string
			for _, col := range cols {
				sub = append(sub, matchCond(col, exact))
				args = append(args, f.Value)
			}
			conds = append(conds, "("+strings.Join(sub, " OR ")+")")
			continue
		}
		conds = append(conds, matchCond(tagColumns[f.Tag], exact))
		args = append(args, f.Value)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func matchCond(col string, exact bool) string {
	if exact {
		return col + " = ?"
	}
	return "instr(lower(" + col + "), lower(?)) > 0"
}

const songColumns = "uri, artist, album, title, genre, track, duration, mtime"

func scanSong(rows *sql.Rows) (song.Song, error) {
	var s song.Song
	var mtime int64
	err := rows.Scan(&s.URI, &s.Artist, &s.Album, &s.Title, &s.Genre,
		&s.Track, &s.Duration, &mtime)
	if err != nil {
		return song.Song{}, err
	}
	s.LastModified = time.Unix(mtime, 0)
	return s, nil
}

func (l *Library) querySongs(ctx context.Context, where string, args ...any) ([]song.Song, error) {
	rows, err := l.db.QueryContext(ctx,
		"SELECT "+songColumns+" FROM songs"+where+" ORDER BY uri", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var songs []song.Song
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, s)
	}
	return songs, rows.Err()
}

// Get looks up a single song by exact URI.
func (l *Library) Get(ctx context.Context, uri string) (song.Song, bool, error) {
	songs, err := l.querySongs(ctx, " WHERE uri = ?", uri)
	if err != nil || len(songs) == 0 {
		return song.Song{}, false, err
	}
	return songs[0], true, nil
}

// SongsIn returns the songs at relPath: the single song when relPath is
// a file URI, otherwise every song under the directory, recursively.
// ErrNotFound when the database holds nothing there.
func (l *Library) SongsIn(ctx context.Context, relPath string) ([]song.Song, error) {
	if relPath == "" {
		return l.querySongs(ctx, "")
	}
	if s, ok, err := l.Get(ctx, relPath); err != nil {
		return nil, err
	} else if ok {
		return []song.Song{s}, nil
	}
	songs, err := l.querySongs(ctx, ` WHERE uri LIKE ? ESCAPE '\'`, likePrefix(relPath))
	if err != nil {
		return nil, err
	}
	if len(songs) == 0 {
		return nil, ErrNotFound
	}
	return songs, nil
}

// Entry is one row of a directory listing.
type Entry struct {
	IsDir bool
	Path  string       // directory path, when IsDir
	Song  song.Song    // song record otherwise
}

// LsInfo returns the immediate children of relPath: subdirectories
// first, then songs, each in lexical order.
func (l *Library) LsInfo(ctx context.Context, relPath string) ([]Entry, error) {
	songs, err := l.SongsIn(ctx, relPath)
	if err != nil {
		return nil, err
	}
	return listEntries(relPath, songs, false), nil
}

// ListAll returns the full tree under relPath: every directory and song,
// depth-first.
func (l *Library) ListAll(ctx context.Context, relPath string) ([]Entry, error) {
	songs, err := l.SongsIn(ctx, relPath)
	if err != nil {
		return nil, err
	}
	return listEntries(relPath, songs, true), nil
}

// listEntries converts a flat song list into a directory view. With
// recurse set, all nesting levels appear; otherwise only the immediate
// children of prefix.
func listEntries(prefix string, songs []song.Song, recurse bool) []Entry {
	if prefix != "" {
		prefix += "/"
	}

	dirSet := make(map[string]bool)
	var entries []Entry
	for _, s := range songs {
		rest := strings.TrimPrefix(s.URI, prefix)
		parts := strings.Split(rest, "/")

		if len(parts) == 1 {
			entries = append(entries, Entry{Song: s})
			continue
		}
		limit := len(parts) - 1
		if !recurse {
			limit = 1
		}
		for i := 1; i <= limit; i++ {
			dirSet[prefix+strings.Join(parts[:i], "/")] = true
		}
		if recurse {
			entries = append(entries, Entry{Song: s})
		}
	}

	dirs := make([]string, 0, len(dirSet))
	for d := range dirSet {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	out := make([]Entry, 0, len(dirs)+len(entries))
	for _, d := range dirs {
		out = append(out, Entry{IsDir: true, Path: d})
	}
	return append(out, entries...)
}

// Find returns songs matching every filter, exactly or by substring.
func (l *Library) Find(ctx context.Context, filters []TagFilter, exact bool) ([]song.Song, error) {
	where, args := whereClause(filters, exact)
	return l.querySongs(ctx, where, args...)
}

// ListUnique returns the distinct non-empty values of one tag among the
// songs matched by the filters.
func (l *Library) ListUnique(ctx context.Context, tag string, filters []TagFilter) ([]string, error) {
	col, ok := tagColumns[strings.ToLower(tag)]
	if !ok {
		return nil, fmt.Errorf("%q is not known", tag)
	}
	where, args := whereClause(filters, true)
	rows, err := l.db.QueryContext(ctx,
		"SELECT DISTINCT "+col+" FROM songs"+where+" ORDER BY "+col, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// Count returns the number and total play time of the songs matched by
// the filters.
func (l *Library) Count(ctx context.Context, filters []TagFilter) (songs, playtime int, err error) {
	where, args := whereClause(filters, true)
	row := l.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(duration), 0) FROM songs"+where, args...)
	err = row.Scan(&songs, &playtime)
	return songs, playtime, err
}

// Stats summarizes the database for the stats command.
type Stats struct {
	Artists    int
	Albums     int
	Songs      int
	DBPlaytime int
}

// Stats computes database-wide statistics.
func (l *Library) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	row := l.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT artist), COUNT(DISTINCT album), COUNT(*),
		       COALESCE(SUM(duration), 0)
		FROM songs`)
	err := row.Scan(&st.Artists, &st.Albums, &st.Songs, &st.DBPlaytime)
	return st, err
}
