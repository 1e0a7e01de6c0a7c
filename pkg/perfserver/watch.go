package perfserver

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// watchSource refreshes the history on every write to the source file until
// ctx is done. The parent directory is watched so the file may be created or
// recreated by the collector at any time.
func (s *Server) watchSource(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	source := filepath.Clean(s.cfg.SourcePath)
	if err := watcher.Add(filepath.Dir(source)); err != nil {
		return err
	}
	log.WithField("source", source).Info("watching source file")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("could not retrieve event")
			}
			if filepath.Clean(event.Name) != source || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			n, err := s.history.Refresh()
			if err != nil {
				log.Errorf("error refreshing from source: %v", err)
				continue
			}
			log.WithField("appended", n).Trace("refreshed from source")

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("could not retrieve error")
			}
			return err
		}
	}
}
