// Package autosave periodically flushes a dirty vecdb.Database to disk and makes
// a best-effort final flush on shutdown, grounded on the poll-and-flush worker
// loop in internal/ingest.Worker and on the dirty-check-then-flush pattern of
// db.rs's autosave function.
package autosave

import (
	"context"
	"log/slog"
	"time"

	"github.com/prantlf/litevec/internal/vecdb"
)

// Flusher is the persistence side of an autosave loop. *persist.Persister
// satisfies it.
type Flusher interface {
	Flush(db *vecdb.Database) error
}

// Loop periodically flushes db through persister while it is dirty.
type Loop struct {
	db        *vecdb.Database
	persister Flusher
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a Loop. If interval is <= 0, it defaults to 10 seconds.
func New(db *vecdb.Database, persister Flusher, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Loop{
		db:        db,
		persister: persister,
		interval:  interval,
		logger:    slog.Default(),
	}
}

// Run ticks every interval until ctx is cancelled, flushing db whenever it is
// dirty. Each tick first takes a read lock to check IsDirty cheaply; only when
// that check is positive does it take the write lock, re-check (another flush
// may have run in between), and flush — so readers are never blocked by a tick
// that turns out to have nothing to do.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.tick()
		}
	}
}

func (l *Loop) tick() {
	l.db.RLock()
	dirty := l.db.IsDirty()
	l.db.RUnlock()
	if !dirty {
		return
	}

	l.db.Lock()
	defer l.db.Unlock()
	if !l.db.IsDirty() {
		return
	}
	if err := l.persister.Flush(l.db); err != nil {
		l.logger.Error("autosave flush failed", "error", err)
	}
}
