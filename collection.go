package nedb

// Collection is the public handle to a named document collection (spec
// §4.5), wrapping a Store and exposing synchronous CRUD and query
// operations. Every mutating call is dispatched through the store's
// executor via runTask, so concurrent callers observe the same FIFO
// ordering and atomicity the executor provides internally (spec §4.4).
type Collection struct {
	store *Store
}

func newCollection(store *Store) *Collection {
	return &Collection{store: store}
}

// Name returns the collection's name.
func (c *Collection) Name() string { return c.store.name }

// getCandidates delegates to the backing store; it exists so Cursor can
// stay agnostic of Collection's internals beyond this and store.strCmp.
func (c *Collection) getCandidates(query Doc, allowStale bool) ([]*Doc, error) {
	return c.store.getCandidates(query, allowStale)
}

// Find returns a Cursor over every document matching query. A nil query
// matches everything.
func (c *Collection) Find(query Doc) *Cursor {
	return newCursor(c, query)
}

// FindId looks up a single document by _id.
func (c *Collection) FindId(id string) (Doc, error) {
	return newCursor(c, Doc{"_id": id}).One()
}

// Insert adds doc to the collection, assigning an _id if absent, and
// returns the stored (possibly _id-completed) document.
func (c *Collection) Insert(doc Doc) (Doc, error) {
	return runTask(c.store.executor, func() (Doc, error) {
		return c.store.insertSync(doc)
	})
}

// InsertBatch adds every doc atomically: if any one fails validation or
// a unique index, none are inserted (spec §7 batch-insert rollback).
func (c *Collection) InsertBatch(docs []Doc) ([]Doc, error) {
	return runTask(c.store.executor, func() ([]Doc, error) {
		inserted := make([]Doc, 0, len(docs))
		for _, doc := range docs {
			d, err := c.store.insertSync(doc)
			if err != nil {
				for _, done := range inserted {
					c.store.removeSync(Doc{"_id": done["_id"]}, false)
				}
				return nil, err
			}
			inserted = append(inserted, d)
		}
		return inserted, nil
	})
}

// UpdateResult reports how many documents an Update touched.
type UpdateResult struct {
	Matched int
	Docs    []Doc
}

// Update applies upd to documents matched by query. When multi is false
// at most one document is touched; when upsert is true and nothing
// matches, a new document is inserted instead.
func (c *Collection) Update(query, upd Doc, multi, upsert bool) (UpdateResult, error) {
	return runTask(c.store.executor, func() (UpdateResult, error) {
		n, docs, err := c.store.updateSync(query, upd, multi, upsert)
		if err != nil {
			return UpdateResult{}, err
		}
		return UpdateResult{Matched: n, Docs: docs}, nil
	})
}

// Remove deletes documents matched by query, honoring multi the same
// way Update does, and returns the number removed.
func (c *Collection) Remove(query Doc, multi bool) (int, error) {
	return runTask(c.store.executor, func() (int, error) {
		return c.store.removeSync(query, multi)
	})
}

// Count returns the number of documents matching query.
func (c *Collection) Count(query Doc) (int, error) {
	return c.Find(query).Count()
}

// EnsureIndex creates an index per opts, backfilling from existing
// documents.
func (c *Collection) EnsureIndex(opts IndexOptions) error {
	_, err := runTask(c.store.executor, func() (struct{}, error) {
		return struct{}{}, c.store.EnsureIndex(opts)
	})
	return err
}

// RemoveIndex destroys a previously created index.
func (c *Collection) RemoveIndex(fieldName string) error {
	_, err := runTask(c.store.executor, func() (struct{}, error) {
		return struct{}{}, c.store.RemoveIndex(fieldName)
	})
	return err
}
