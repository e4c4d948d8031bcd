package authority

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// reloadDebounce coalesces the event bursts editors and atomic writers
// produce into a single reload.
const reloadDebounce = 300 * time.Millisecond

// fileWatcher reloads a credential file when it changes on disk.
type fileWatcher struct {
	fs   *fsnotify.Watcher
	stop chan struct{}
	done chan struct{}
}

// watchFile starts watching path and calls reload after each change. The
// watch is registered on the parent directory; a watch on the file itself
// would be lost when an editor replaces it by rename.
func watchFile(path string, logger *zap.Logger, reload func() error) (*fileWatcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fs.Add(filepath.Dir(path)); err != nil {
		_ = fs.Close()

		return nil, err
	}

	w := &fileWatcher{
		fs:   fs,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go w.run(path, logger, reload)

	return w, nil
}

func (w *fileWatcher) run(path string, logger *zap.Logger, reload func() error) {
	defer close(w.done)

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	target := filepath.Clean(path)

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != target {
				continue
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}

			debounce = time.AfterFunc(reloadDebounce, func() {
				if err := reload(); err != nil {
					logger.Warn("credential reload failed, keeping previous entries",
						zap.String("path", path),
						zap.Error(err))

					return
				}

				logger.Info("credentials reloaded", zap.String("path", path))
			})

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}

			logger.Warn("credential watcher error", zap.Error(err))

		case <-w.stop:
			return
		}
	}
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *fileWatcher) Close() error {
	close(w.stop)
	err := w.fs.Close()
	<-w.done

	return err
}
