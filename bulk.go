package nedb

// BulkResult reports how many documents a Bulk.Run touched in total
// across every queued operation.
type BulkResult struct {
	Matched  int
	Modified int
}

// BulkErrorCase pairs a queued operation's index with the error it
// produced.
type BulkErrorCase struct {
	Index int
	Err   error
}

// BulkError collects every failure from an unordered Bulk.Run, or the
// single failure that stopped an ordered one.
type BulkError struct {
	Cases []BulkErrorCase
}

func (e *BulkError) Error() string {
	if len(e.Cases) == 0 {
		return "bulk error"
	}
	return e.Cases[0].Err.Error()
}

type bulkOpKind int

const (
	bulkInsert bulkOpKind = iota
	bulkUpdateOne
	bulkUpdateAll
	bulkUpsertOne
	bulkRemoveOne
	bulkRemoveAll
)

type bulkOp struct {
	kind     bulkOpKind
	doc      Doc
	selector Doc
	update   Doc
}

// Bulk queues a sequence of insert/update/remove operations to run as
// one batch (spec §7's need for coarse-grained batch semantics,
// generalized beyond insert-only to the full mgo-style bulk surface).
type Bulk struct {
	coll    *Collection
	ordered bool
	ops     []bulkOp
}

// Bulk starts a new ordered bulk builder against the collection.
func (c *Collection) Bulk() *Bulk {
	return &Bulk{coll: c, ordered: true}
}

// Unordered puts the bulk operation in unordered mode: a failing
// operation no longer aborts the remaining ones.
func (b *Bulk) Unordered() *Bulk {
	b.ordered = false
	return b
}

// Insert queues documents for insertion.
func (b *Bulk) Insert(docs ...Doc) *Bulk {
	for _, d := range docs {
		b.ops = append(b.ops, bulkOp{kind: bulkInsert, doc: d})
	}
	return b
}

// Update queues a selector/update pair touching at most one document.
func (b *Bulk) Update(selector, update Doc) *Bulk {
	b.ops = append(b.ops, bulkOp{kind: bulkUpdateOne, selector: selector, update: update})
	return b
}

// UpdateAll queues a selector/update pair touching every matching
// document.
func (b *Bulk) UpdateAll(selector, update Doc) *Bulk {
	b.ops = append(b.ops, bulkOp{kind: bulkUpdateAll, selector: selector, update: update})
	return b
}

// Upsert queues a selector/update pair that inserts when nothing
// matches.
func (b *Bulk) Upsert(selector, update Doc) *Bulk {
	b.ops = append(b.ops, bulkOp{kind: bulkUpsertOne, selector: selector, update: update})
	return b
}

// Remove queues a selector removing at most one matching document.
func (b *Bulk) Remove(selector Doc) *Bulk {
	b.ops = append(b.ops, bulkOp{kind: bulkRemoveOne, selector: selector})
	return b
}

// RemoveAll queues a selector removing every matching document.
func (b *Bulk) RemoveAll(selector Doc) *Bulk {
	b.ops = append(b.ops, bulkOp{kind: bulkRemoveAll, selector: selector})
	return b
}

// Run executes every queued operation as a single executor task, so the
// whole batch observes a consistent view and nothing else interleaves
// with it (spec §4.4/§5). Ordered mode stops at the first failing
// operation; unordered mode runs them all and reports every failure.
func (b *Bulk) Run() (*BulkResult, error) {
	return runTask(b.coll.store.executor, func() (*BulkResult, error) {
		result := &BulkResult{}
		var cases []BulkErrorCase

		for i, op := range b.ops {
			var opErr error
			switch op.kind {
			case bulkInsert:
				_, opErr = b.coll.store.insertSync(op.doc)
				if opErr == nil {
					result.Matched++
					result.Modified++
				}
			case bulkUpdateOne:
				n, _, err := b.coll.store.updateSync(op.selector, op.update, false, false)
				opErr = err
				result.Matched += n
				result.Modified += n
			case bulkUpdateAll:
				n, _, err := b.coll.store.updateSync(op.selector, op.update, true, false)
				opErr = err
				result.Matched += n
				result.Modified += n
			case bulkUpsertOne:
				n, _, err := b.coll.store.updateSync(op.selector, op.update, false, true)
				opErr = err
				result.Matched += n
				result.Modified += n
			case bulkRemoveOne:
				n, err := b.coll.store.removeSync(op.selector, false)
				opErr = err
				result.Matched += n
				result.Modified += n
			case bulkRemoveAll:
				n, err := b.coll.store.removeSync(op.selector, true)
				opErr = err
				result.Matched += n
				result.Modified += n
			}
			if opErr != nil {
				cases = append(cases, BulkErrorCase{Index: i, Err: opErr})
				if b.ordered {
					return result, &BulkError{Cases: cases}
				}
			}
		}

		if len(cases) > 0 {
			return result, &BulkError{Cases: cases}
		}
		return result, nil
	})
}
