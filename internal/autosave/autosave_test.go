package autosave

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prantlf/litevec/internal/vecdb"
)

type countingFlusher struct {
	calls int32
	err   error
}

func (f *countingFlusher) Flush(db *vecdb.Database) error {
	atomic.AddInt32(&f.calls, 1)
	db.Range(func(_ string, c *vecdb.Collection) {
		c.UnsetDirty()
	})
	return f.err
}

func TestLoop_FlushesWhileDirty(t *testing.T) {
	db := vecdb.New()
	db.Lock()
	_, _ = db.Create("docs", 2, vecdb.Euclidean)
	db.Unlock()

	flusher := &countingFlusher{}
	loop := New(db, flusher, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	loop.Run(ctx)

	if atomic.LoadInt32(&flusher.calls) == 0 {
		t.Error("expected at least one flush while the database was dirty")
	}
	db.RLock()
	dirty := db.IsDirty()
	db.RUnlock()
	if dirty {
		t.Error("database should be clean after the loop flushed it")
	}
}

func TestLoop_SkipsFlushWhenClean(t *testing.T) {
	db := vecdb.New()
	flusher := &countingFlusher{}
	loop := New(db, flusher, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	loop.Run(ctx)

	if atomic.LoadInt32(&flusher.calls) != 0 {
		t.Errorf("flush calls = %d, want 0 for an always-clean database", flusher.calls)
	}
}

func TestLoop_StopsOnContextCancel(t *testing.T) {
	db := vecdb.New()
	flusher := &countingFlusher{}
	loop := New(db, flusher, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestCoordinator_FlushesOnlyWhenDirty(t *testing.T) {
	db := vecdb.New()
	flusher := &countingFlusher{}
	coord := NewCoordinator(db, flusher)

	if err := coord.Close(context.Background()); err != nil {
		t.Fatalf("Close on clean database: %v", err)
	}
	if flusher.calls != 0 {
		t.Errorf("flush calls = %d, want 0 for a clean database", flusher.calls)
	}

	db.Lock()
	_, _ = db.Create("docs", 1, vecdb.Dot)
	db.Unlock()

	if err := coord.Close(context.Background()); err != nil {
		t.Fatalf("Close on dirty database: %v", err)
	}
	if flusher.calls != 1 {
		t.Errorf("flush calls = %d, want 1", flusher.calls)
	}
}

func TestCoordinator_PropagatesFlushError(t *testing.T) {
	db := vecdb.New()
	db.Lock()
	_, _ = db.Create("docs", 1, vecdb.Dot)
	db.Unlock()

	flusher := &countingFlusher{err: context.DeadlineExceeded}
	coord := NewCoordinator(db, flusher)

	if err := coord.Close(context.Background()); err == nil {
		t.Error("expected Close to propagate the flush error")
	}
}
