package nedb

import (
	"time"

	"go.uber.org/zap"
)

// insertSync validates, assigns an _id when absent, stamps timestamps when
// configured, inserts into every index (rolling back on a unique
// violation), and persists the new document (spec §4.5 insert).
func (s *Store) insertSync(doc Doc) (Doc, error) {
	if err := CheckObject(doc); err != nil {
		return nil, err
	}
	d, _ := DeepCopy(doc).(Doc)
	if _, ok := d["_id"]; !ok {
		d["_id"] = newID()
	}
	if s.tsProvider != nil {
		t := s.tsProvider()
		if _, ok := d["createdAt"]; !ok {
			d["createdAt"] = t
		}
		if _, ok := d["updatedAt"]; !ok {
			d["updatedAt"] = t
		}
	}

	indexes := s.allIndexes()
	inserted := make([]*Index, 0, len(indexes))
	for _, ix := range indexes {
		if err := ix.Insert(&d); err != nil {
			for _, done := range inserted {
				done.Remove(&d)
			}
			s.logger.Debug("insert rejected", zap.String("field", ix.FieldName), zap.Error(err))
			return nil, err
		}
		inserted = append(inserted, ix)
	}

	s.persister.PersistNewState([]Doc{DeepCopy(d).(Doc)}, func(err error) {
		if err != nil {
			s.logger.Warn("persist failed", zap.Error(err))
		}
	})
	return d, nil
}

// updateSync applies upd to every document currently matched by query
// (spec §4.5 update). When multi is false only the first match is
// touched. When nothing matches and upsert is set, a fresh document is
// inserted: query's direct-value constraints with upd's modifiers applied,
// or, when upd is a replacement document, upd itself (keeping an _id the
// query names).
func (s *Store) updateSync(query, upd Doc, multi, upsert bool) (matched int, updated []Doc, err error) {
	candidates, err := s.getCandidates(query, false)
	if err != nil {
		return 0, nil, err
	}

	var targets []*Doc
	for _, c := range candidates {
		if Match(*c, query, s.strCmp) {
			targets = append(targets, c)
			if !multi {
				break
			}
		}
	}

	if len(targets) == 0 {
		if !upsert {
			return 0, nil, nil
		}
		base := upsertBase(query)
		merged, err := Modify(base, upd)
		if err != nil {
			return 0, nil, err
		}
		d, err := s.insertSync(merged)
		if err != nil {
			return 0, nil, err
		}
		return 1, []Doc{d}, nil
	}

	indexes := s.allIndexes()
	newPtrs := make([]*Doc, len(targets))
	newDocs := make([]Doc, len(targets))

	for i, old := range targets {
		nd, err := Modify(*old, upd)
		if err != nil {
			return 0, nil, err
		}
		if s.tsProvider != nil {
			if createdAt, ok := (*old)["createdAt"]; ok {
				nd["createdAt"] = createdAt
			}
			nd["updatedAt"] = s.tsProvider()
		}
		newDocs[i] = nd
		newPtrs[i] = &newDocs[i]
	}

	pairs := make([]DocPair, len(targets))
	for i, old := range targets {
		pairs[i] = DocPair{Old: old, New: newPtrs[i]}
	}

	for idx, ix := range indexes {
		if err := ix.UpdateBatch(pairs); err != nil {
			for j := 0; j < idx; j++ {
				indexes[j].RevertUpdateBatch(pairs)
			}
			return 0, nil, err
		}
	}

	records := make([]Doc, len(newDocs))
	for i, nd := range newDocs {
		records[i] = DeepCopy(nd).(Doc)
	}
	s.persister.PersistNewState(records, func(error) {})

	return len(newDocs), newDocs, nil
}

// upsertBase extracts the direct-value (non-operator) constraints out of an
// upsert query to seed the document that gets inserted (spec §4.5 upsert).
func upsertBase(query Doc) Doc {
	base := Doc{}
	for k, v := range query {
		if logicalKeys[k] {
			continue
		}
		if isOperatorDoc(v) {
			continue
		}
		base[k] = DeepCopy(v)
	}
	return base
}

// removeSync deletes the first document matched by query (every match
// when multi is true) from every index, and persists a tombstone per
// removed document (spec §4.5 remove).
func (s *Store) removeSync(query Doc, multi bool) (int, error) {
	candidates, err := s.getCandidates(query, true)
	if err != nil {
		return 0, err
	}

	var targets []*Doc
	for _, c := range candidates {
		if Match(*c, query, s.strCmp) {
			targets = append(targets, c)
			if !multi {
				break
			}
		}
	}
	if len(targets) == 0 {
		return 0, nil
	}

	for _, ix := range s.allIndexes() {
		for _, d := range targets {
			ix.Remove(d)
		}
	}

	records := make([]Doc, len(targets))
	for i, d := range targets {
		id := (*d)["_id"]
		records[i] = Doc{"$$deleted": true, "_id": id}
	}
	s.persister.PersistNewState(records, func(err error) {
		if err != nil {
			s.logger.Warn("persist failed", zap.Error(err))
		}
	})

	return len(targets), nil
}

// expireNow is exposed for tests that want deterministic TTL sweeps
// without waiting on wall-clock time.
func (s *Store) expireNow(at time.Time) {
	prev := now
	now = func() time.Time { return at }
	defer func() { now = prev }()
	_, _ = s.getCandidates(Doc{}, false)
}
