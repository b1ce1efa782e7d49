package nedb

import (
	"sync"
	"time"

	"github.com/juju/errors"
	"go.uber.org/zap"
)

// IndexOptions configures EnsureIndex (spec §4.5/§6).
type IndexOptions struct {
	FieldName string
	Unique    bool
	Sparse    bool
	// ExpireAfterSeconds registers this index's field as a TTL field: a
	// zero value (the default) means no TTL behavior.
	ExpireAfterSeconds float64
}

// Options configures a Store at construction time.
type Options struct {
	// StringComparator overrides default lexicographic string ordering
	// (spec §6). Nil means use natural code-point order.
	StringComparator Comparator
	// Persister receives every committed mutation (spec §6). Nil installs
	// a no-op default so the store works with zero external wiring.
	Persister Persister
	// Logger receives structured diagnostics. Nil installs a no-op
	// logger so the library is silent unless a host application opts in.
	Logger *zap.Logger
	// TimestampProvider, when non-nil, enables createdAt/updatedAt
	// auto-injection (spec §4.5): Insert sets both fields when absent,
	// Update preserves createdAt and refreshes updatedAt. The clock
	// itself is supplied externally, consistent with timestamp
	// auto-injection being an out-of-scope external collaborator (spec
	// §1) — the store only contains the conditional wiring, not a clock.
	TimestampProvider func() time.Time
}

// Store is the collection facade (spec §4.5 / C5): it owns the index set
// and the executor, and composes the document model, index and cursor
// primitives into atomic CRUD operations.
type Store struct {
	name string

	mu         sync.Mutex
	indexes    map[string]*Index
	ttlIndexes map[string]ttlEntry

	executor   *Executor
	persister  Persister
	strCmp     Comparator
	logger     *zap.Logger
	tsProvider func() time.Time
}

// NewStore constructs a Store with an immortal unique, non-sparse _id
// index always present (spec §3).
func NewStore(name string, opts Options) *Store {
	persister := opts.Persister
	if persister == nil {
		persister = noopPersister{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = nopLogger()
	}
	s := &Store{
		name:       name,
		indexes:    map[string]*Index{},
		ttlIndexes: map[string]ttlEntry{},
		executor:   NewExecutor(),
		persister:  persister,
		strCmp:     opts.StringComparator,
		logger:     logger,
		tsProvider: opts.TimestampProvider,
	}
	s.indexes["_id"] = NewIndex("_id", true, false, s.strCmp)
	s.executor.ProcessBuffer()
	return s
}

// EnsureIndex creates an index. It is a no-op when an index on the same
// field already exists, even if that index has different options.
func (s *Store) EnsureIndex(opts IndexOptions) error {
	if opts.FieldName == "" {
		return ErrMissingField
	}
	s.mu.Lock()
	if _, exists := s.indexes[opts.FieldName]; exists {
		s.mu.Unlock()
		return nil
	}
	ix := NewIndex(opts.FieldName, opts.Unique, opts.Sparse, s.strCmp)
	for _, d := range s.indexes["_id"].GetAll() {
		if err := ix.Insert(d); err != nil {
			// Half-built index is discarded (spec §7): nothing to
			// remove from the outer map since it was never installed.
			s.mu.Unlock()
			return errors.Annotatef(err, "ensureIndex %q", opts.FieldName)
		}
	}
	s.indexes[opts.FieldName] = ix
	if opts.ExpireAfterSeconds > 0 {
		s.ttlIndexes[opts.FieldName] = ttlEntry{field: opts.FieldName, expireAfterSeconds: opts.ExpireAfterSeconds}
	}
	s.mu.Unlock()

	s.persister.PersistNewState([]Doc{{"$$indexCreated": Doc{
		"fieldName": opts.FieldName,
		"unique":    opts.Unique,
		"sparse":    opts.Sparse,
	}}}, func(error) {})
	return nil
}

// RemoveIndex destroys a non-_id index.
func (s *Store) RemoveIndex(fieldName string) error {
	if fieldName == "_id" {
		return errors.New("the _id index cannot be removed")
	}
	s.mu.Lock()
	delete(s.indexes, fieldName)
	delete(s.ttlIndexes, fieldName)
	s.mu.Unlock()

	s.persister.PersistNewState([]Doc{{"$$indexRemoved": fieldName}}, func(error) {})
	return nil
}

// scalarQueryValue reports whether v is one of the "direct equality"
// scalar kinds from spec §4.5 (null, boolean, number, string, timestamp).
func scalarQueryValue(v interface{}) bool {
	switch v.(type) {
	case nil, bool, string, time.Time:
		return true
	default:
		_, isNum := asFloat64(v)
		return isNum
	}
}

var logicalKeys = map[string]bool{"$or": true, "$and": true, "$nor": true, "$where": true}

// getCandidates picks at most one index to produce a candidate superset
// for query, in the priority order from spec §4.5: direct equality, $in,
// range, else the full _id index. When allowStale is false, documents
// whose TTL field has expired are filtered out and removed from every
// index inline, during this same scan (spec §5/§6), by calling removeSync
// directly. getCandidates runs both inside executor tasks (update, remove,
// bulk) and directly from Cursor reads; from inside a task, routing the
// removal through another runTask call would deadlock the executor.
func (s *Store) getCandidates(query Doc, allowStale bool) ([]*Doc, error) {
	s.mu.Lock()
	indexes := s.indexes
	ttls := s.ttlIndexes
	s.mu.Unlock()

	candidates := selectCandidates(indexes, query)

	if allowStale || len(ttls) == 0 {
		return candidates, nil
	}
	fresh := make([]*Doc, 0, len(candidates))
	for _, d := range candidates {
		expired := false
		for _, t := range ttls {
			if t.isExpired(*d) {
				expired = true
				break
			}
		}
		if expired {
			id, _ := (*d)["_id"].(string)
			s.logger.Debug("expiring document", zap.String("_id", id))
			s.removeSync(Doc{"_id": id}, false)
			continue
		}
		fresh = append(fresh, d)
	}
	return fresh, nil
}

// selectCandidates implements the index-probe priority order from spec
// §4.5: the first query field with a usable index wins, in the order
// direct equality, $in, range; otherwise every document is a candidate
// via the always-present _id index.
func selectCandidates(indexes map[string]*Index, query Doc) []*Doc {
	for k, v := range query {
		if logicalKeys[k] {
			continue
		}
		if ix, ok := indexes[k]; ok && scalarQueryValue(v) {
			return ix.GetMatching(v)
		}
	}
	for k, v := range query {
		if logicalKeys[k] {
			continue
		}
		ix, ok := indexes[k]
		if !ok {
			continue
		}
		sub, ok := asDoc(v)
		if !ok {
			continue
		}
		if inVal, ok := sub["$in"]; ok {
			return ix.GetMatching(inVal)
		}
	}
	for k, v := range query {
		if logicalKeys[k] {
			continue
		}
		ix, ok := indexes[k]
		if !ok {
			continue
		}
		sub, ok := asDoc(v)
		if !ok {
			continue
		}
		b := Bounds{}
		found := false
		if lt, ok := sub["$lt"]; ok {
			b.Lt, b.HasLt, found = lt, true, true
		}
		if lte, ok := sub["$lte"]; ok {
			b.Lte, b.HasLte, found = lte, true, true
		}
		if gt, ok := sub["$gt"]; ok {
			b.Gt, b.HasGt, found = gt, true, true
		}
		if gte, ok := sub["$gte"]; ok {
			b.Gte, b.HasGte, found = gte, true, true
		}
		if found {
			return ix.GetBetweenBounds(b)
		}
	}
	return indexes["_id"].GetAll()
}

func (s *Store) allIndexes() []*Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Index, 0, len(s.indexes))
	for _, ix := range s.indexes {
		out = append(out, ix)
	}
	return out
}
