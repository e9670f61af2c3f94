// Package storedpl persists named playlists as .m3u files in the
// playlist directory.
//
// Operations report playlist.Result values so the protocol layer maps
// them onto the fixed ACK taxonomy; genuine I/O failures ride along as
// an error next to ResultErrno.
package storedpl

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/quaverd/quaverd/internal/event"
	"github.com/quaverd/quaverd/internal/playlist"
)

const fileSuffix = ".m3u"

// Info describes one stored playlist.
type Info struct {
	Name         string
	LastModified time.Time
}

// Store manages the playlist directory.
type Store struct {
	dir string
	bus *event.Bus
}

// New creates a store rooted at dir.
func New(dir string, bus *event.Bus) *Store {
	return &Store{dir: dir, bus: bus}
}

// validName rejects names that would escape the playlist directory or
// corrupt the m3u line format.
func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, "/\n\r")
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+fileSuffix)
}

// List returns every stored playlist, sorted by name.
func (s *Store) List() ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read playlist directory: %w", err)
	}

	var infos []Info
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), fileSuffix)
		if !ok || e.IsDir() {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		infos = append(infos, Info{Name: name, LastModified: fi.ModTime()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Songs returns the URIs stored in the named playlist.
func (s *Store) Songs(name string) ([]string, playlist.Result, error) {
	if !validName(name) {
		return nil, playlist.ResultBadName, nil
	}
	f, err := os.Open(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, playlist.ResultNoSuchList, nil
		}
		return nil, playlist.ResultErrno, err
	}
	defer f.Close()

	var uris []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		uris = append(uris, line)
	}
	if err := sc.Err(); err != nil {
		return nil, playlist.ResultErrno, err
	}
	return uris, playlist.ResultSuccess, nil
}

// Save writes a new playlist; an existing one is never overwritten.
func (s *Store) Save(name string, uris []string) (playlist.Result, error) {
	if !validName(name) {
		return playlist.ResultBadName, nil
	}
	if _, err := os.Stat(s.path(name)); err == nil {
		return playlist.ResultListExists, nil
	}
	if r, err := s.write(name, uris); r != playlist.ResultSuccess {
		return r, err
	}
	s.bus.Post(event.StoredPlaylist)
	return playlist.ResultSuccess, nil
}

func (s *Store) write(name string, uris []string) (playlist.Result, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return playlist.ResultErrno, err
	}
	var b strings.Builder
	for _, uri := range uris {
		b.WriteString(uri)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(s.path(name), []byte(b.String()), 0o644); err != nil {
		return playlist.ResultErrno, err
	}
	return playlist.ResultSuccess, nil
}

// Delete removes the named playlist.
func (s *Store) Delete(name string) (playlist.Result, error) {
	if !validName(name) {
		return playlist.ResultBadName, nil
	}
	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return playlist.ResultNoSuchList, nil
		}
		return playlist.ResultErrno, err
	}
	s.bus.Post(event.StoredPlaylist)
	return playlist.ResultSuccess, nil
}

// Rename moves a playlist to a new name.
func (s *Store) Rename(oldName, newName string) (playlist.Result, error) {
	if !validName(oldName) || !validName(newName) {
		return playlist.ResultBadName, nil
	}
	if _, err := os.Stat(s.path(oldName)); err != nil {
		if os.IsNotExist(err) {
			return playlist.ResultNoSuchList, nil
		}
		return playlist.ResultErrno, err
	}
	if _, err := os.Stat(s.path(newName)); err == nil {
		return playlist.ResultListExists, nil
	}
	if err := os.Rename(s.path(oldName), s.path(newName)); err != nil {
		return playlist.ResultErrno, err
	}
	s.bus.Post(event.StoredPlaylist)
	return playlist.ResultSuccess, nil
}

// Clear truncates the named playlist to zero entries.
func (s *Store) Clear(name string) (playlist.Result, error) {
	if !validName(name) {
		return playlist.ResultBadName, nil
	}
	if _, err := os.Stat(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return playlist.ResultNoSuchList, nil
		}
		return playlist.ResultErrno, err
	}
	if r, err := s.write(name, nil); r != playlist.ResultSuccess {
		return r, err
	}
	s.bus.Post(event.StoredPlaylist)
	return playlist.ResultSuccess, nil
}

// Append adds a URI to the named playlist, creating it when missing.
func (s *Store) Append(name, uri string) (playlist.Result, error) {
	uris, r, err := s.Songs(name)
	switch r {
	case playlist.ResultSuccess, playlist.ResultNoSuchList:
	default:
		return r, err
	}
	if r, err := s.write(name, append(uris, uri)); r != playlist.ResultSuccess {
		return r, err
	}
	s.bus.Post(event.StoredPlaylist)
	return playlist.ResultSuccess, nil
}

// RemoveIndex deletes the entry at pos from the named playlist.
func (s *Store) RemoveIndex(name string, pos int) (playlist.Result, error) {
	uris, r, err := s.Songs(name)
	if r != playlist.ResultSuccess {
		return r, err
	}
	if pos < 0 || pos >= len(uris) {
		return playlist.ResultBadRange, nil
	}
	uris = append(uris[:pos], uris[pos+1:]...)
	if r, err := s.write(name, uris); r != playlist.ResultSuccess {
		return r, err
	}
	s.bus.Post(event.StoredPlaylist)
	return playlist.ResultSuccess, nil
}

// MoveIndex moves the entry at from to position to.
func (s *Store) MoveIndex(name string, from, to int) (playlist.Result, error) {
	uris, r, err := s.Songs(name)
	if r != playlist.ResultSuccess {
		return r, err
	}
	n := len(uris)
	if from < 0 || from >= n || to < 0 || to >= n {
		return playlist.ResultBadRange, nil
	}
	moved := uris[from]
	uris = append(uris[:from], uris[from+1:]...)
	uris = append(uris[:to], append([]string{moved}, uris[to:]...)...)
	if r, err := s.write(name, uris); r != playlist.ResultSuccess {
		return r, err
	}
	s.bus.Post(event.StoredPlaylist)
	return playlist.ResultSuccess, nil
}
