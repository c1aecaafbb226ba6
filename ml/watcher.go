package ml

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchArtifact watches dir for a republished artifact and swaps a freshly
// loaded classifier into the store. Training publishes the metadata file
// last, so only events on that file trigger a reload. The returned function
// stops the watcher.
func WatchArtifact(dir string, store *Store, logger *zap.Logger) (func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != InfoFile {
					continue
				}
				if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
					continue
				}
				classifier, err := LoadClassifier(dir)
				if err != nil {
					logger.Warn("artifact reload failed",
						zap.String("dir", dir),
						zap.Error(err))
					continue
				}
				store.Replace(classifier)
				logger.Info("model artifact reloaded",
					zap.Strings("species_classes", classifier.Labels()),
					zap.Float64("accuracy", classifier.Accuracy()))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("artifact watcher error", zap.Error(err))
			}
		}
	}()

	return watcher.Close, nil
}
