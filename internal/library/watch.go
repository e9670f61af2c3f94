package library

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce batches bursts of filesystem events into one update job.
const watchDebounce = 2 * time.Second

// Watch monitors the music directory and triggers an update job after
// changes settle. It blocks until ctx is cancelled.
func (l *Library) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the whole tree; fsnotify is not recursive by itself.
	err = filepath.WalkDir(l.musicDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		return w.Add(p)
	})
	if err != nil {
		return err
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	arm := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(watchDebounce, func() {
			select {
			case fire <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op.Has(fsnotify.Create) {
				// A new directory needs its own watch.
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = w.Add(ev.Name)
				}
			}
			arm()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.log.Warn().Err(err).Msg("music directory watch error")
		case <-fire:
			if _, err := l.Update(""); err != nil && err != ErrUpdateAlready {
				l.log.Error().Err(err).Msg("auto update failed")
			}
		}
	}
}
