package nedb

import "testing"

func TestIndexInsertAndGetMatching(t *testing.T) {
	ix := NewIndex("age", false, false, nil)
	d1 := &Doc{"_id": "1", "age": 30}
	d2 := &Doc{"_id": "2", "age": 30}
	d3 := &Doc{"_id": "3", "age": 40}
	for _, d := range []*Doc{d1, d2, d3} {
		if err := ix.Insert(d); err != nil {
			t.Fatalf("unexpected insert error: %v", err)
		}
	}
	got := ix.GetMatching(30)
	if len(got) != 2 {
		t.Fatalf("expected 2 docs aged 30, got %d", len(got))
	}
}

func TestIndexUniqueViolationRollsBack(t *testing.T) {
	ix := NewIndex("email", true, false, nil)
	if err := ix.Insert(&Doc{"_id": "1", "email": "a@x.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := ix.Insert(&Doc{"_id": "2", "email": "a@x.com"})
	if err == nil {
		t.Fatal("expected unique violation")
	}
	if !IsUniqueViolation(err) {
		t.Fatalf("expected a unique-violation error, got %v", err)
	}
	if ix.Len() != 1 {
		t.Fatalf("expected tree to still hold 1 key, got %d", ix.Len())
	}
}

func TestIndexSparseSkipsMissingField(t *testing.T) {
	ix := NewIndex("ssn", true, true, nil)
	if err := ix.Insert(&Doc{"_id": "1"}); err != nil {
		t.Fatalf("unexpected error inserting doc missing the sparse field: %v", err)
	}
	if err := ix.Insert(&Doc{"_id": "2"}); err != nil {
		t.Fatalf("expected a second doc missing the sparse field to insert cleanly: %v", err)
	}
	if ix.Len() != 0 {
		t.Fatalf("expected sparse index to hold 0 keys for absent field, got %d", ix.Len())
	}
}

func TestIndexArrayValueIndexesEachElement(t *testing.T) {
	ix := NewIndex("tags", false, false, nil)
	if err := ix.Insert(&Doc{"_id": "1", "tags": Arr{"red", "blue"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ix.GetMatching("red")) != 1 {
		t.Fatal("expected doc indexed under \"red\"")
	}
	if len(ix.GetMatching("blue")) != 1 {
		t.Fatal("expected doc indexed under \"blue\"")
	}
}

func TestIndexGetBetweenBounds(t *testing.T) {
	ix := NewIndex("n", false, false, nil)
	for i := 0; i < 10; i++ {
		ix.Insert(&Doc{"_id": string(rune('a' + i)), "n": i})
	}
	got := ix.GetBetweenBounds(Bounds{Gte: 3, HasGte: true, Lt: 7, HasLt: true})
	if len(got) != 4 {
		t.Fatalf("expected 4 docs in [3,7), got %d", len(got))
	}
}

func TestIndexUpdateBatchRollsBackOnFailure(t *testing.T) {
	ix := NewIndex("code", true, false, nil)
	ix.Insert(&Doc{"_id": "1", "code": "A"})
	ix.Insert(&Doc{"_id": "2", "code": "B"})

	oldA := &Doc{"_id": "1", "code": "A"}
	newA := &Doc{"_id": "1", "code": "B"} // collides with doc 2
	err := ix.UpdateBatch([]DocPair{{Old: oldA, New: newA}})
	if err == nil {
		t.Fatal("expected unique violation on batch update")
	}
	if len(ix.GetMatching("A")) != 1 {
		t.Fatal("expected rollback to restore the original A-keyed doc")
	}
	if len(ix.GetMatching("B")) != 1 {
		t.Fatal("expected doc 2 to remain the sole B-keyed doc after rollback")
	}
}
