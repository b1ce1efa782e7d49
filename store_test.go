package nedb

import "testing"

func newTestCollection(t *testing.T) *Collection {
	t.Helper()
	db := NewDatabase(Options{})
	return db.Collection("widgets")
}

func TestInsertAssignsID(t *testing.T) {
	c := newTestCollection(t)
	d, err := c.Insert(Doc{"name": "sprocket"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d["_id"] == nil || d["_id"] == "" {
		t.Fatal("expected an assigned _id")
	}
}

func TestInsertRejectsInvalidKeys(t *testing.T) {
	c := newTestCollection(t)
	_, err := c.Insert(Doc{"a.b": 1})
	if err == nil {
		t.Fatal("expected error inserting a document with a dotted key")
	}
}

func TestFindIdRoundTrip(t *testing.T) {
	c := newTestCollection(t)
	d, err := c.Insert(Doc{"name": "sprocket"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := c.FindId(d["_id"].(string))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["name"] != "sprocket" {
		t.Fatalf("expected name sprocket, got %#v", got)
	}
}

func TestFindIdNotFound(t *testing.T) {
	c := newTestCollection(t)
	_, err := c.FindId("does-not-exist")
	if !IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEnsureIndexUniqueRejectsDuplicateInsert(t *testing.T) {
	c := newTestCollection(t)
	if err := c.EnsureIndex(IndexOptions{FieldName: "email", Unique: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Insert(Doc{"email": "a@x.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := c.Insert(Doc{"email": "a@x.com"})
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
	n, _ := c.Count(nil)
	if n != 1 {
		t.Fatalf("expected the rejected insert to leave exactly 1 document, got %d", n)
	}
}

func TestUpdateMultiAndSingle(t *testing.T) {
	c := newTestCollection(t)
	c.Insert(Doc{"kind": "a", "n": 1})
	c.Insert(Doc{"kind": "a", "n": 2})
	c.Insert(Doc{"kind": "b", "n": 3})

	res, err := c.Update(Doc{"kind": "a"}, Doc{"$set": Doc{"touched": true}}, true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Matched != 2 {
		t.Fatalf("expected 2 matched with multi=true, got %d", res.Matched)
	}

	res, err = c.Update(Doc{"kind": "b"}, Doc{"$set": Doc{"touched": true}}, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Matched != 1 {
		t.Fatalf("expected 1 matched, got %d", res.Matched)
	}
}

func TestUpsertInsertsWhenNothingMatches(t *testing.T) {
	c := newTestCollection(t)
	res, err := c.Update(Doc{"sku": "x1"}, Doc{"$set": Doc{"qty": 5}}, false, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Matched != 1 || len(res.Docs) != 1 {
		t.Fatalf("expected upsert to report 1 inserted doc, got %+v", res)
	}
	if res.Docs[0]["sku"] != "x1" || res.Docs[0]["qty"] != 5 {
		t.Fatalf("expected upserted doc to carry both selector and update fields, got %#v", res.Docs[0])
	}
}

func TestRemoveMulti(t *testing.T) {
	c := newTestCollection(t)
	c.Insert(Doc{"kind": "a"})
	c.Insert(Doc{"kind": "a"})
	c.Insert(Doc{"kind": "b"})

	n, err := c.Remove(Doc{"kind": "a"}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}
	left, _ := c.Count(nil)
	if left != 1 {
		t.Fatalf("expected 1 document left, got %d", left)
	}
}

func TestCursorSortSkipLimit(t *testing.T) {
	c := newTestCollection(t)
	for i := 0; i < 5; i++ {
		c.Insert(Doc{"n": i})
	}
	docs, err := c.Find(nil).Sort(SortSpec{Desc("n")}).Skip(1).Limit(2).All()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(docs))
	}
	if docs[0]["n"] != 3 || docs[1]["n"] != 2 {
		t.Fatalf("expected [3 2] after desc sort + skip(1) + limit(2), got %#v %#v", docs[0]["n"], docs[1]["n"])
	}
}

func TestCursorProjectionInclusionExcludesOthers(t *testing.T) {
	c := newTestCollection(t)
	c.Insert(Doc{"a": 1, "b": 2, "c": 3})
	docs, err := c.Find(nil).Select(Projection{"a": 1}).All()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := docs[0]
	if _, ok := d["b"]; ok {
		t.Fatal("expected inclusion projection to drop field b")
	}
	if d["a"] != 1 {
		t.Fatalf("expected field a kept, got %#v", d)
	}
	if _, ok := d["_id"]; !ok {
		t.Fatal("expected _id kept by default under inclusion projection")
	}
}

func TestCursorProjectionRejectsMixedMode(t *testing.T) {
	c := newTestCollection(t)
	c.Insert(Doc{"a": 1, "b": 2})
	_, err := c.Find(nil).Select(Projection{"a": 1, "b": 0}).All()
	if err == nil {
		t.Fatal("expected error mixing inclusion and exclusion")
	}
}

func TestBulkInsertAtomicRollback(t *testing.T) {
	c := newTestCollection(t)
	if err := c.EnsureIndex(IndexOptions{FieldName: "sku", Unique: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Insert(Doc{"sku": "dup"})

	_, err := c.InsertBatch([]Doc{
		{"sku": "new1"},
		{"sku": "dup"},
	})
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
	n, _ := c.Count(nil)
	if n != 1 {
		t.Fatalf("expected batch insert to roll back entirely, leaving 1 doc, got %d", n)
	}
}

func TestBulkRun(t *testing.T) {
	c := newTestCollection(t)
	b := c.Bulk()
	b.Insert(Doc{"n": 1}, Doc{"n": 2})
	b.UpdateAll(Doc{"n": 1}, Doc{"$set": Doc{"touched": true}})
	b.Remove(Doc{"n": 2})
	result, err := b.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Matched == 0 {
		t.Fatal("expected bulk run to report matches")
	}
	n, _ := c.Count(nil)
	if n != 1 {
		t.Fatalf("expected 1 document left after insert(2)+remove(1), got %d", n)
	}
}
