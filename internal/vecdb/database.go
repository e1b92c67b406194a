package vecdb

import "sync"

// Database holds named collections plus the tombstone list of names deleted since
// the last flush (§3 of SPEC_FULL.md).
//
// Database does not lock itself around each operation: callers acquire RLock for
// read-only access and Lock for anything that mutates the collection map,
// tombstones, or an individual collection's embeddings — mirroring the Rust
// original's `Arc<RwLock<Db>>`, where the caller (an HTTP handler, the autosave
// loop, or the persister) holds the guard for the duration of its critical section
// and releases it before doing any I/O other than flush itself (§5).
type Database struct {
	mu          sync.RWMutex
	collections map[string]*Collection
	tombstones  []string
}

// New returns an empty Database.
func New() *Database {
	return &Database{collections: make(map[string]*Collection)}
}

// Lock acquires the database's write lock.
func (db *Database) Lock() { db.mu.Lock() }

// Unlock releases the database's write lock.
func (db *Database) Unlock() { db.mu.Unlock() }

// RLock acquires the database's read lock.
func (db *Database) RLock() { db.mu.RLock() }

// RUnlock releases the database's read lock.
func (db *Database) RUnlock() { db.mu.RUnlock() }

// Get returns the collection named name. Callers must hold at least RLock.
func (db *Database) Get(name string) (*Collection, error) {
	c, ok := db.collections[name]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

// List returns the names of live collections; tombstoned names are excluded.
// Order is unspecified. Callers must hold at least RLock.
func (db *Database) List() []string {
	names := make([]string, 0, len(db.collections))
	for name := range db.collections {
		names = append(names, name)
	}
	return names
}

// IsDirty reports whether the database has unflushed state: a pending tombstone,
// or any live collection whose dirty flag is set. Callers must hold at least RLock.
func (db *Database) IsDirty() bool {
	if len(db.tombstones) > 0 {
		return true
	}
	for _, c := range db.collections {
		if c.IsDirty() {
			return true
		}
	}
	return false
}

// Create inserts a fresh, dirty collection under name. It fails with
// ErrUniqueViolation if the name is already live. If name was previously
// tombstoned, the tombstone is cleared — the flush that follows will see a dirty
// collection to write instead of a pending delete. Callers must hold Lock.
func (db *Database) Create(name string, dimension int, distance Distance) (*Collection, error) {
	if _, exists := db.collections[name]; exists {
		return nil, ErrUniqueViolation
	}
	c := NewCollection(dimension, distance)
	db.collections[name] = c
	db.removeTombstone(name)
	return c, nil
}

// Rename moves the collection at old to new, tombstoning old and marking the
// collection dirty (it must be rewritten under its new file name). It fails with
// ErrUniqueViolation if new already exists, or ErrNotFound if old does not exist.
// Callers must hold Lock.
func (db *Database) Rename(old, new string) error {
	if _, exists := db.collections[new]; exists {
		return ErrUniqueViolation
	}
	c, exists := db.collections[old]
	if !exists {
		return ErrNotFound
	}
	delete(db.collections, old)
	db.addTombstone(old)

	c.SetDirty()
	db.collections[new] = c
	db.removeTombstone(new)
	return nil
}

// Delete removes the collection named name and tombstones it, so the next flush
// removes its on-disk file. It fails with ErrNotFound if name does not exist.
// Callers must hold Lock.
func (db *Database) Delete(name string) error {
	if _, exists := db.collections[name]; !exists {
		return ErrNotFound
	}
	delete(db.collections, name)
	db.addTombstone(name)
	return nil
}

// Tombstones returns the names deleted since the last flush. Callers must hold at
// least RLock.
func (db *Database) Tombstones() []string {
	out := make([]string, len(db.tombstones))
	copy(out, db.tombstones)
	return out
}

// RemoveTombstone removes a single name from the tombstone list, reporting whether
// it was present. Used by the persister to process tombstones atomically one name
// at a time (§7), so a flush failure partway through leaves the rest pending retry
// instead of losing them all at once. Callers must hold Lock.
func (db *Database) RemoveTombstone(name string) bool {
	return db.removeTombstone(name)
}

func (db *Database) addTombstone(name string) {
	db.tombstones = append(db.tombstones, name)
}

func (db *Database) removeTombstone(name string) bool {
	for i, t := range db.tombstones {
		if t == name {
			db.tombstones = append(db.tombstones[:i], db.tombstones[i+1:]...)
			return true
		}
	}
	return false
}

// SetCollection inserts or overwrites the collection stored under name without any
// of Create's uniqueness checking or tombstone bookkeeping. Used only by the
// persister while loading a database from disk, before any adapter can observe it.
// Callers must hold Lock.
func (db *Database) SetCollection(name string, c *Collection) {
	db.collections[name] = c
}

// Range calls fn with every live collection and its name, in unspecified order.
// It is the persister's iteration over (name, *Collection) pairs, kept apart from
// List, the HTTP-facing list of names.
func (db *Database) Range(fn func(name string, c *Collection)) {
	for name, c := range db.collections {
		fn(name, c)
	}
}
