package nedb

import "sort"

// SortField is one (path, direction) pair of a Cursor's sort order.
// Direction is +1 (ascending) or -1 (descending).
type SortField struct {
	Path string
	Dir  int
}

// SortSpec is an ordered list of SortFields, applied in declaration order
// (spec §4.3) — a slice, not a map, so that declaration order survives.
type SortSpec []SortField

// Asc returns a SortField sorting path ascending.
func Asc(path string) SortField { return SortField{Path: path, Dir: 1} }

// Desc returns a SortField sorting path descending.
func Desc(path string) SortField { return SortField{Path: path, Dir: -1} }

// Cursor is a deferred query bound to a Collection, carrying optional
// skip/limit/sort/projection (spec §4.3).
type Cursor struct {
	coll       *Collection
	query      Doc
	skip       int
	limit      int
	sort       SortSpec
	projection Projection
	allowStale bool
}

func newCursor(c *Collection, query Doc) *Cursor {
	if query == nil {
		query = Doc{}
	}
	return &Cursor{coll: c, query: query}
}

// Skip sets the number of matches to skip before the first returned
// result.
func (c *Cursor) Skip(n int) *Cursor {
	c.skip = n
	return c
}

// Limit caps the number of returned results. 0 means unlimited.
func (c *Cursor) Limit(n int) *Cursor {
	c.limit = n
	return c
}

// Sort sets the sort order, applied in declaration order.
func (c *Cursor) Sort(spec SortSpec) *Cursor {
	c.sort = spec
	return c
}

// Select sets the result projection.
func (c *Cursor) Select(proj Projection) *Cursor {
	c.projection = proj
	return c
}

// exec runs the cursor to completion and returns every matching,
// projected document, honoring skip/limit/sort (spec §4.3's _exec).
func (c *Cursor) exec() ([]Doc, error) {
	candidates, err := c.coll.getCandidates(c.query, c.allowStale)
	if err != nil {
		return nil, err
	}

	strCmp := c.coll.store.strCmp

	if len(c.sort) == 0 {
		out := make([]Doc, 0, len(candidates))
		skipped := 0
		for _, cand := range candidates {
			if !Match(*cand, c.query, strCmp) {
				continue
			}
			if skipped < c.skip {
				skipped++
				continue
			}
			out = append(out, *cand)
			if c.limit > 0 && len(out) >= c.limit {
				break
			}
		}
		return c.project(out)
	}

	var matched []Doc
	for _, cand := range candidates {
		if Match(*cand, c.query, strCmp) {
			matched = append(matched, *cand)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		for _, sf := range c.sort {
			vi := GetDotValue(matched[i], sf.Path)
			vj := GetDotValue(matched[j], sf.Path)
			cmp := Compare(vi, vj, strCmp)
			if sf.Dir < 0 {
				cmp = -cmp
			}
			if cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})

	lo := c.skip
	if lo > len(matched) {
		lo = len(matched)
	}
	hi := len(matched)
	if c.limit > 0 && lo+c.limit < hi {
		hi = lo + c.limit
	}
	return c.project(matched[lo:hi])
}

func (c *Cursor) project(docs []Doc) ([]Doc, error) {
	if len(c.projection) == 0 {
		out := make([]Doc, len(docs))
		for i, d := range docs {
			cp, _ := DeepCopy(d).(Doc)
			out[i] = cp
		}
		return out, nil
	}
	out := make([]Doc, 0, len(docs))
	for _, d := range docs {
		pd, err := applyProjection(d, c.projection)
		if err != nil {
			return nil, err
		}
		out = append(out, pd)
	}
	return out, nil
}

// All runs the cursor and returns every matching document.
func (c *Cursor) All() ([]Doc, error) {
	return c.exec()
}

// One runs the cursor and returns its first result, or ErrNotFound.
func (c *Cursor) One() (Doc, error) {
	c.limit = 1
	docs, err := c.exec()
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return docs[0], nil
}

// Count runs the cursor and returns the number of matching documents
// (skip/limit/sort still apply, per a plain find().count() semantics).
func (c *Cursor) Count() (int, error) {
	docs, err := c.exec()
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}
