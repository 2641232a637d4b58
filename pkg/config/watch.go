package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watch reloads the scene file at path whenever it is written or replaced,
// sending each valid result on the returned channel. Invalid edits are
// logged and skipped. The channel is closed when ctx is done.
//
// The parent directory is watched rather than the file itself so that
// editors which save by renaming a temp file over the original keep working.
func Watch(ctx context.Context, path string, logger *log.Logger) (<-chan *Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	out := make(chan *Config)
	go func() {
		defer close(out)
		defer w.Close()

		for {
			select {
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(e.Name) != abs {
					continue
				}
				if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}

				cfg, err := Load(abs)
				if err != nil {
					if logger != nil {
						logger.Warn("config reload failed", "path", abs, "err", err)
					}
					continue
				}
				if logger != nil {
					logger.Info("config reloaded", "path", abs)
				}

				select {
				case out <- cfg:
				case <-ctx.Done():
					return
				}

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				if logger != nil {
					logger.Error("config watcher", "err", err)
				}

			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
