package command

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/adamavenir/scrollback/internal/core"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchProject calls onChange after database writes in dir settle for
// debounce. It returns when ctx is done or onChange fails.
func watchProject(ctx context.Context, dir string, debounce time.Duration, logger *zap.Logger, onChange func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	if debounce <= 0 {
		debounce = 150 * time.Millisecond
	}
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isDatabaseEvent(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		case <-fire:
			fire = nil
			if err := onChange(); err != nil {
				return err
			}
		}
	}
}

func isDatabaseEvent(event fsnotify.Event) bool {
	if !strings.HasPrefix(filepath.Base(event.Name), core.DBFile) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
