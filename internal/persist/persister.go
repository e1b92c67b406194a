package persist

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/prantlf/litevec/internal/vecdb"
)

// sentinelName marks a store directory as using the per-collection file layout
// introduced alongside this format; its absence in an existing store directory
// means the directory still holds the legacy single-file layout and needs
// migrating (§4.6 of SPEC_FULL.md, grounded on db.rs's load_from_store).
const sentinelName = "._collections"

// legacyName is the single file the pre-migration store kept its whole database
// serialized into.
const legacyName = "db"

// Persister owns a store directory on disk: one file per collection, named by
// URL-component-encoding the collection name, plus a process-exclusive lock file
// so two litevecd instances never flush the same directory concurrently.
type Persister struct {
	root string
	lock *flock.Flock
	log  *slog.Logger
}

// New returns a Persister rooted at dir. It does not touch the filesystem; call
// Open before Load or Flush.
func New(dir string, log *slog.Logger) *Persister {
	if log == nil {
		log = slog.Default()
	}
	return &Persister{
		root: dir,
		lock: flock.New(filepath.Join(dir, ".litevec.lock")),
		log:  log,
	}
}

// Open creates the store directory if needed and acquires the exclusive process
// lock, blocking until it is available.
func (p *Persister) Open() error {
	if err := os.MkdirAll(p.root, 0o755); err != nil {
		return fmt.Errorf("creating store directory %s: %w", p.root, err)
	}
	if err := p.lock.Lock(); err != nil {
		return fmt.Errorf("locking store directory %s: %w", p.root, err)
	}
	return nil
}

// Close releases the process lock on the store directory.
func (p *Persister) Close() error {
	return p.lock.Unlock()
}

func (p *Persister) collectionPath(name string) string {
	return filepath.Join(p.root, url.PathEscape(name))
}

func (p *Persister) sentinelPath() string {
	return filepath.Join(p.root, sentinelName)
}

func (p *Persister) legacyPath() string {
	return filepath.Join(p.root, legacyName)
}

// Load populates db from the store directory, in one of three ways:
//
//   - the directory doesn't exist yet: it is created, the sentinel is written,
//     and db is left empty (a brand new store);
//   - the sentinel is present: every file other than the sentinel, the lock file
//     and leftover .tmp files is decoded as a collection record and inserted;
//   - the sentinel is absent but the directory exists: the legacy single-file
//     layout is migrated (see migrateLegacy), then the sentinel is written.
//
// Callers must hold db's write lock for the duration of Load.
func (p *Persister) Load(db *vecdb.Database) error {
	info, err := os.Stat(p.root)
	if err != nil {
		if os.IsNotExist(err) {
			p.log.Debug("creating database store", "path", p.root)
			if err := os.MkdirAll(p.root, 0o755); err != nil {
				return fmt.Errorf("creating store directory %s: %w", p.root, err)
			}
			return p.writeSentinel()
		}
		return fmt.Errorf("stat %s: %w", p.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("store path %s is not a directory", p.root)
	}

	if _, err := os.Stat(p.sentinelPath()); err == nil {
		return p.loadCollections(db)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat sentinel %s: %w", p.sentinelPath(), err)
	}

	if err := p.migrateLegacy(db); err != nil {
		return err
	}
	return p.writeSentinel()
}

func (p *Persister) writeSentinel() error {
	f, err := os.Create(p.sentinelPath())
	if err != nil {
		return fmt.Errorf("writing sentinel %s: %w", p.sentinelPath(), err)
	}
	return f.Close()
}

func (p *Persister) loadCollections(db *vecdb.Database) error {
	entries, err := os.ReadDir(p.root)
	if err != nil {
		return fmt.Errorf("reading store directory %s: %w", p.root, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fileName := entry.Name()
		ext := filepath.Ext(fileName)
		if fileName == sentinelName || ext == ".lock" || ext == ".tmp" {
			continue
		}

		name, err := url.PathUnescape(fileName)
		if err != nil {
			return fmt.Errorf("decoding collection file name %q: %w", fileName, err)
		}
		p.log.Debug("loading collection from store", "name", name)

		binary, err := os.ReadFile(filepath.Join(p.root, fileName))
		if err != nil {
			return fmt.Errorf("reading collection file %q: %w", fileName, err)
		}
		c, err := decodeCollection(binary)
		if err != nil {
			return fmt.Errorf("decoding collection %q: %w", name, err)
		}
		db.SetCollection(name, c)
	}
	return nil
}

// migrateLegacy reads the old single-file store (if present) into db, marks every
// collection dirty, writes them all out under the new per-collection layout, and
// removes the legacy file — mirroring db.rs's convert_old_store. A
// missing legacy file is not an error: a directory that predates the sentinel but
// was never actually written to (e.g. created and then abandoned) is just empty.
func (p *Persister) migrateLegacy(db *vecdb.Database) error {
	binary, err := os.ReadFile(p.legacyPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading legacy store %s: %w", p.legacyPath(), err)
	}

	p.log.Debug("converting legacy database store")
	collections, err := decodeLegacyStore(binary)
	if err != nil {
		return fmt.Errorf("decoding legacy store: %w", err)
	}
	for name, c := range collections {
		c.SetDirty()
		db.SetCollection(name, c)
	}

	if err := p.flushDirty(db); err != nil {
		return fmt.Errorf("rewriting legacy collections under new layout: %w", err)
	}
	if err := os.Remove(p.legacyPath()); err != nil {
		return fmt.Errorf("removing legacy store %s: %w", p.legacyPath(), err)
	}
	return nil
}

// Flush processes every pending tombstone (removing that collection's file, one
// name at a time, so a failure midway leaves the rest retryable) and then writes
// every dirty collection, in that order — matching db.rs's save_to_store, which
// always deletes before it writes so a rename racing a delete can never resurrect
// a file under a name the caller just removed. Callers must hold db's write lock
// for the duration of Flush.
func (p *Persister) Flush(db *vecdb.Database) error {
	if err := p.flushTombstones(db); err != nil {
		return err
	}
	return p.flushDirty(db)
}

func (p *Persister) flushTombstones(db *vecdb.Database) error {
	for _, name := range db.Tombstones() {
		path := p.collectionPath(name)
		p.log.Debug("deleting collection from store", "name", name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("deleting collection file for %q: %w", name, err)
		}
		db.RemoveTombstone(name)
	}
	return nil
}

func (p *Persister) flushDirty(db *vecdb.Database) error {
	var flushErr error
	db.Range(func(name string, c *vecdb.Collection) {
		if flushErr != nil || !c.IsDirty() {
			return
		}
		p.log.Debug("saving collection to store", "name", name)
		if err := p.writeCollectionAtomic(name, c); err != nil {
			flushErr = fmt.Errorf("writing collection %q: %w", name, err)
			return
		}
		c.UnsetDirty()
	})
	return flushErr
}

// writeCollectionAtomic writes a collection record to a temp file in the store
// directory and renames it into place, so a crash mid-write never leaves a
// half-written collection file behind.
func (p *Persister) writeCollectionAtomic(name string, c *vecdb.Collection) error {
	path := p.collectionPath(name)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, encodeCollection(c), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
