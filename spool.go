package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// SpoolWatcher ingests notification texts dropped as .txt files into a spool
// directory (phone-side forwarders that sync files instead of hitting the
// webhook). Handled files are renamed with a .done suffix.
type SpoolWatcher struct {
	dir      string
	ingestor *Ingestor
	log      zerolog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewSpoolWatcher(dir string, in *Ingestor, log zerolog.Logger) *SpoolWatcher {
	return &SpoolWatcher{dir: dir, ingestor: in, log: log.With().Str("source", "spool").Logger()}
}

// Start drains files already present, then watches for new ones. Create
// events are debounced so half-written files are not picked up.
func (s *SpoolWatcher) Start(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(s.dir); err != nil {
		w.Close()
		return err
	}
	ctx, s.cancel = context.WithCancel(ctx)

	if entries, err := os.ReadDir(s.dir); err == nil {
		for _, e := range entries {
			if !e.IsDir() && isSpoolFile(e.Name()) {
				s.process(ctx, e.Name())
			}
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer w.Close()
		pending := map[string]time.Time{}
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&fsnotify.Create == fsnotify.Create && isSpoolFile(filepath.Base(ev.Name)) {
					pending[filepath.Base(ev.Name)] = time.Now()
				}
			case <-ticker.C:
				now := time.Now()
				for name, t := range pending {
					if now.Sub(t) > 300*time.Millisecond { // file settled
						delete(pending, name)
						s.process(ctx, name)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.log.Error().Err(err).Msg("watch error")
			}
		}
	}()
	s.log.Info().Str("dir", s.dir).Msg("spool watcher started")
	return nil
}

func (s *SpoolWatcher) process(ctx context.Context, name string) {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		s.log.Error().Err(err).Str("file", name).Msg("read spool file failed")
		return
	}
	if _, err := s.ingestor.Ingest(ctx, string(data), time.Now()); err != nil {
		s.log.Error().Err(err).Str("file", name).Msg("ingest spool file failed")
		return
	}
	if err := os.Rename(path, path+".done"); err != nil {
		s.log.Error().Err(err).Str("file", name).Msg("archive spool file failed")
	}
}

func isSpoolFile(name string) bool {
	return strings.ToLower(filepath.Ext(name)) == ".txt"
}

// Stop cancels the watch loop and waits for it to exit.
func (s *SpoolWatcher) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}
