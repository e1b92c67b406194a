package autosave

import (
	"context"
	"log/slog"

	"github.com/prantlf/litevec/internal/vecdb"
)

// Coordinator performs a single best-effort final flush of db, used on shutdown
// so a SIGINT/SIGTERM doesn't drop the last interval's worth of writes —
// grounded on db.rs's Drop impl for Db, which flushes on scope exit if dirty.
type Coordinator struct {
	db        *vecdb.Database
	persister Flusher
	logger    *slog.Logger
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(db *vecdb.Database, persister Flusher) *Coordinator {
	return &Coordinator{db: db, persister: persister, logger: slog.Default()}
}

// Close flushes db if it is dirty. A flush error is logged and also returned to
// the caller.
func (c *Coordinator) Close(ctx context.Context) error {
	c.db.Lock()
	defer c.db.Unlock()

	if !c.db.IsDirty() {
		return nil
	}
	if err := c.persister.Flush(c.db); err != nil {
		c.logger.Error("final flush on shutdown failed", "error", err)
		return err
	}
	return nil
}
