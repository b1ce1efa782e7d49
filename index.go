package nedb

import (
	"github.com/google/btree"
)

// DocPair is an (old, new) document pair used by batch index updates
// (spec §4.2/§4.5).
type DocPair struct {
	Old *Doc
	New *Doc
}

// Bounds describes an inclusive/exclusive range query against an index
// (spec §4.2 getBetweenBounds).
type Bounds struct {
	Lt, Lte, Gt, Gte         interface{}
	HasLt, HasLte, HasGt, HasGte bool
}

// indexEntry is one distinct key's bucket within the tree: every live
// document sharing that key, keyed by _id so repeat inserts/removals of
// the same document are idempotent.
type indexEntry struct {
	key  interface{}
	docs map[string]*Doc
}

// Index is an ordered multimap keyed by a document field's value under the
// spec §3 total order, backed by github.com/google/btree (the idiomatic Go
// self-balancing ordered tree — see DESIGN.md for why this was chosen over
// a hand-rolled AVL node).
type Index struct {
	FieldName string
	Unique    bool
	Sparse    bool

	strCmp Comparator
	tree   *btree.BTreeG[*indexEntry]
}

// NewIndex constructs an index over fieldName.
func NewIndex(fieldName string, unique, sparse bool, strCmp Comparator) *Index {
	ix := &Index{FieldName: fieldName, Unique: unique, Sparse: sparse, strCmp: strCmp}
	ix.tree = btree.NewG(32, func(a, b *indexEntry) bool {
		return Compare(a.key, b.key, strCmp) < 0
	})
	return ix
}

func docID(doc *Doc) string {
	if doc == nil {
		return ""
	}
	id, _ := (*doc)["_id"].(string)
	return id
}

// keysFor computes the distinct keys doc projects into this index: zero
// keys when the field is undefined and the index is sparse, one key for a
// scalar value (including Undefined itself, when not sparse), or one key
// per distinct array element (deduplicated by canonicalKey, spec §4.2).
func (ix *Index) keysFor(doc *Doc) []interface{} {
	val := GetDotValue(*doc, ix.FieldName)
	if IsUndefined(val) {
		if ix.Sparse {
			return nil
		}
		return []interface{}{Undefined}
	}
	if arr, ok := asArray(val); ok {
		seen := make(map[string]bool, len(arr))
		keys := make([]interface{}, 0, len(arr))
		for _, el := range arr {
			tag := canonicalKey(el)
			if seen[tag] {
				continue
			}
			seen[tag] = true
			keys = append(keys, el)
		}
		return keys
	}
	return []interface{}{val}
}

// Insert adds doc to the index. On a failure partway through a multi-key
// (array-valued) insert, every entry this call added is removed before the
// error propagates (spec §4.2).
func (ix *Index) Insert(doc *Doc) error {
	keys := ix.keysFor(doc)
	inserted := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		if err := ix.insertOne(k, doc); err != nil {
			for _, ik := range inserted {
				ix.removeOne(ik, doc)
			}
			return err
		}
		inserted = append(inserted, k)
	}
	return nil
}

func (ix *Index) insertOne(key interface{}, doc *Doc) error {
	probe := &indexEntry{key: key}
	entry, ok := ix.tree.Get(probe)
	if !ok {
		entry = &indexEntry{key: key, docs: map[string]*Doc{docID(doc): doc}}
		ix.tree.ReplaceOrInsert(entry)
		return nil
	}
	id := docID(doc)
	if _, already := entry.docs[id]; already {
		entry.docs[id] = doc
		return nil
	}
	if ix.Unique && len(entry.docs) > 0 {
		return uniqueViolationf("duplicate value %v for unique index on %q", key, ix.FieldName)
	}
	entry.docs[id] = doc
	return nil
}

// Remove deletes doc from the index.
func (ix *Index) Remove(doc *Doc) {
	for _, k := range ix.keysFor(doc) {
		ix.removeOne(k, doc)
	}
}

func (ix *Index) removeOne(key interface{}, doc *Doc) {
	probe := &indexEntry{key: key}
	entry, ok := ix.tree.Get(probe)
	if !ok {
		return
	}
	delete(entry.docs, docID(doc))
	if len(entry.docs) == 0 {
		ix.tree.Delete(entry)
	}
}

// Update removes oldDoc and inserts newDoc; on insert failure it
// re-inserts oldDoc and propagates the error (spec §4.2).
func (ix *Index) Update(oldDoc, newDoc *Doc) error {
	ix.Remove(oldDoc)
	if err := ix.Insert(newDoc); err != nil {
		ix.Insert(oldDoc)
		return err
	}
	return nil
}

// UpdateBatch performs a two-phase batch update: every oldDoc is removed,
// then every newDoc is inserted. If insertion fails at position i, every
// newDoc inserted at positions < i is removed, every oldDoc is re-inserted,
// and the index is left bit-identical to its pre-call state (spec §4.2).
func (ix *Index) UpdateBatch(pairs []DocPair) error {
	for _, p := range pairs {
		ix.Remove(p.Old)
	}
	for i, p := range pairs {
		if err := ix.Insert(p.New); err != nil {
			for j := 0; j < i; j++ {
				ix.Remove(pairs[j].New)
			}
			for _, p2 := range pairs {
				ix.Insert(p2.Old)
			}
			return err
		}
	}
	return nil
}

// RevertUpdateBatch applies the inverse of a previously committed
// UpdateBatch, used to unwind a multi-index commit when a later index in
// the commit sequence fails (spec §4.2 revertUpdate).
func (ix *Index) RevertUpdateBatch(pairs []DocPair) {
	for _, p := range pairs {
		ix.Remove(p.New)
	}
	for _, p := range pairs {
		ix.Insert(p.Old)
	}
}

// GetMatching returns the documents keyed under value; if value is an
// array (as used by $in) it returns the deduplicated union across every
// element.
func (ix *Index) GetMatching(value interface{}) []*Doc {
	if arr, ok := asArray(value); ok {
		seen := map[string]*Doc{}
		for _, el := range arr {
			for _, d := range ix.getEq(el) {
				seen[docID(d)] = d
			}
		}
		out := make([]*Doc, 0, len(seen))
		for _, d := range seen {
			out = append(out, d)
		}
		return out
	}
	return ix.getEq(value)
}

func (ix *Index) getEq(value interface{}) []*Doc {
	entry, ok := ix.tree.Get(&indexEntry{key: value})
	if !ok {
		return nil
	}
	out := make([]*Doc, 0, len(entry.docs))
	for _, d := range entry.docs {
		out = append(out, d)
	}
	return out
}

// GetBetweenBounds performs an ordered range scan.
func (ix *Index) GetBetweenBounds(b Bounds) []*Doc {
	var out []*Doc
	ix.tree.Ascend(func(e *indexEntry) bool {
		if boundsContain(b, e.key, ix.strCmp) {
			for _, d := range e.docs {
				out = append(out, d)
			}
		}
		return true
	})
	return out
}

func boundsContain(b Bounds, key interface{}, cmp Comparator) bool {
	if b.HasLt && Compare(key, b.Lt, cmp) >= 0 {
		return false
	}
	if b.HasLte && Compare(key, b.Lte, cmp) > 0 {
		return false
	}
	if b.HasGt && Compare(key, b.Gt, cmp) <= 0 {
		return false
	}
	if b.HasGte && Compare(key, b.Gte, cmp) < 0 {
		return false
	}
	return true
}

// GetAll returns every indexed document in key order (duplicates removed
// when a document was expanded across multiple array-element keys).
func (ix *Index) GetAll() []*Doc {
	seen := map[string]bool{}
	var out []*Doc
	ix.tree.Ascend(func(e *indexEntry) bool {
		for id, d := range e.docs {
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, d)
		}
		return true
	})
	return out
}

// Len reports the number of distinct keys currently in the index.
func (ix *Index) Len() int {
	return ix.tree.Len()
}
