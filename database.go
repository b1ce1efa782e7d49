package nedb

import "sync"

// Database manages a set of named Collections, each backed by its own
// Store and executor — collections never block one another (spec §5).
type Database struct {
	mu          sync.Mutex
	collections map[string]*Collection
	opts        Options
}

// NewDatabase constructs an empty Database. Every collection created
// through it inherits opts unless overridden per-collection.
func NewDatabase(opts Options) *Database {
	return &Database{
		collections: map[string]*Collection{},
		opts:        opts,
	}
}

// Collection returns the named collection, creating it with the
// Database's default Options on first access.
func (db *Database) Collection(name string) *Collection {
	db.mu.Lock()
	defer db.mu.Unlock()
	if c, ok := db.collections[name]; ok {
		return c
	}
	c := newCollection(NewStore(name, db.opts))
	db.collections[name] = c
	return c
}

// CollectionWithOptions creates (or returns, if already created) a
// collection with its own Options rather than the Database's defaults —
// useful for giving one collection a distinct Persister or TTL clock.
func (db *Database) CollectionWithOptions(name string, opts Options) *Collection {
	db.mu.Lock()
	defer db.mu.Unlock()
	if c, ok := db.collections[name]; ok {
		return c
	}
	c := newCollection(NewStore(name, opts))
	db.collections[name] = c
	return c
}

// DropCollection discards a collection and its in-memory contents.
func (db *Database) DropCollection(name string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.collections, name)
}

// CollectionNames lists every collection created so far.
func (db *Database) CollectionNames() []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	names := make([]string, 0, len(db.collections))
	for n := range db.collections {
		names = append(names, n)
	}
	return names
}
