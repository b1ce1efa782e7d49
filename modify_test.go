package nedb

import "testing"

func TestModifyReplacement(t *testing.T) {
	old := Doc{"_id": "1", "a": 1}
	nd, err := Modify(old, Doc{"a": 2, "b": 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nd["_id"] != "1" {
		t.Fatal("replacement must preserve the old _id")
	}
	if nd["a"] != 2 || nd["b"] != 3 {
		t.Fatalf("unexpected replacement result: %#v", nd)
	}
	if _, ok := old["b"]; ok {
		t.Fatal("Modify must not mutate old")
	}
}

func TestModifyReplacementRejectsDifferentID(t *testing.T) {
	old := Doc{"_id": "1"}
	_, err := Modify(old, Doc{"_id": "2", "a": 1})
	if err == nil {
		t.Fatal("expected error replacing with a different _id")
	}
}

func TestModifySetAndInc(t *testing.T) {
	old := Doc{"a": 1, "count": 5}
	nd, err := Modify(old, Doc{"$set": Doc{"a": 9}, "$inc": Doc{"count": 3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nd["a"] != 9 {
		t.Fatalf("expected a=9, got %v", nd["a"])
	}
	if nd["count"] != 8.0 {
		t.Fatalf("expected count=8, got %v", nd["count"])
	}
}

func TestModifyIncRejectsNonNumeric(t *testing.T) {
	old := Doc{"a": "x"}
	_, err := Modify(old, Doc{"$inc": Doc{"a": 1}})
	if err == nil {
		t.Fatal("expected error incrementing a non-numeric field")
	}
}

func TestModifyMinMax(t *testing.T) {
	old := Doc{"lo": 5, "hi": 5}
	nd, err := Modify(old, Doc{"$min": Doc{"lo": 3}, "$max": Doc{"hi": 3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nd["lo"] != 3 {
		t.Fatalf("expected $min to lower lo to 3, got %v", nd["lo"])
	}
	if nd["hi"] != 5 {
		t.Fatalf("expected $max to leave hi at 5, got %v", nd["hi"])
	}
}

func TestModifyPushEachSliceSort(t *testing.T) {
	old := Doc{"scores": Arr{5.0, 1.0}}
	nd, err := Modify(old, Doc{"$push": Doc{
		"scores": Doc{
			"$each":  Arr{3.0, 4.0},
			"$sort":  Doc{"": -1.0},
			"$slice": 2.0,
		},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := asArray(nd["scores"])
	if len(got) != 2 || got[0] != 5.0 || got[1] != 4.0 {
		t.Fatalf("expected [5 4] after push/sort-desc/slice(2), got %#v", got)
	}
}

func TestModifyPop(t *testing.T) {
	old := Doc{"tags": Arr{"a", "b", "c"}}
	nd, err := Modify(old, Doc{"$pop": Doc{"tags": 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := asArray(nd["tags"])
	if len(got) != 2 || got[1] != "b" {
		t.Fatalf("expected last element popped, got %#v", got)
	}
}

func TestModifyAddToSetDedup(t *testing.T) {
	old := Doc{"tags": Arr{"a"}}
	nd, err := Modify(old, Doc{"$addToSet": Doc{"tags": Doc{"$each": Arr{"a", "b"}}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := asArray(nd["tags"])
	if len(got) != 2 {
		t.Fatalf("expected duplicate \"a\" skipped, got %#v", got)
	}
}

func TestModifyPull(t *testing.T) {
	old := Doc{"nums": Arr{1.0, 2.0, 3.0, 4.0}}
	nd, err := Modify(old, Doc{"$pull": Doc{"nums": Doc{"$gt": 2.0}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := asArray(nd["nums"])
	if len(got) != 2 || got[0] != 1.0 || got[1] != 2.0 {
		t.Fatalf("expected [1 2] after pulling > 2, got %#v", got)
	}
}
