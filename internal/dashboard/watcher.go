package dashboard

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/adanbank/signal-sentinel/internal/logger"
	"github.com/adanbank/signal-sentinel/internal/store"
	"github.com/adanbank/signal-sentinel/internal/websocket"
)

const watchDebounce = 500 * time.Millisecond

// Watcher broadcasts a signal_new event whenever the review queue file
// changes. The enrichment stage replaces the file via rename, so the
// watch is on the containing directory.
type Watcher struct {
	review *store.Store
	hub    *websocket.Hub
	logger *logger.Logger
}

// NewWatcher creates a review-file watcher.
func NewWatcher(review *store.Store, hub *websocket.Hub, log *logger.Logger) *Watcher {
	return &Watcher{
		review: review,
		hub:    hub,
		logger: log.WithComponent("watcher"),
	}
}

// Run watches until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	dir := filepath.Dir(w.review.Path())
	if err := fw.Add(dir); err != nil {
		return err
	}
	target := filepath.Base(w.review.Path())

	w.logger.Info("watching review queue", zap.String("file", w.review.Path()))

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Debounce bursts from the temp-file + rename write.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			count, err := w.review.Count()
			if err != nil {
				w.logger.Error("failed to read review queue", zap.Error(err))
				continue
			}
			w.hub.Broadcast(websocket.NewEvent(websocket.EventSignalNew, map[string]int{
				"count": count,
			}))

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", zap.Error(err))
		}
	}
}
