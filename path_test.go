package nedb

import "testing"

func TestGetDotValueNested(t *testing.T) {
	doc := Doc{"a": Doc{"b": Doc{"c": 42}}}
	if v := GetDotValue(doc, "a.b.c"); v != 42 {
		t.Fatalf("expected 42, got %v", v)
	}
}

func TestGetDotValueMissingIsUndefined(t *testing.T) {
	doc := Doc{"a": 1}
	v := GetDotValue(doc, "a.b")
	if !IsUndefined(v) {
		t.Fatalf("expected Undefined, got %v", v)
	}
}

func TestGetDotValueArrayIndex(t *testing.T) {
	doc := Doc{"tags": Arr{"x", "y", "z"}}
	if v := GetDotValue(doc, "tags.1"); v != "y" {
		t.Fatalf("expected y, got %v", v)
	}
	if v := GetDotValue(doc, "tags.9"); !IsUndefined(v) {
		t.Fatalf("expected Undefined for out-of-range index, got %v", v)
	}
}

func TestGetDotValueMapsOverArrayOfObjects(t *testing.T) {
	doc := Doc{"items": Arr{Doc{"n": 1}, Doc{"n": 2}, Doc{"other": true}}}
	v := GetDotValue(doc, "items.n")
	arr, ok := asArray(v)
	if !ok {
		t.Fatalf("expected array result, got %#v", v)
	}
	if len(arr) != 2 || arr[0] != 1 || arr[1] != 2 {
		t.Fatalf("expected [1 2] skipping the element without n, got %#v", arr)
	}
}

func TestSetDotValueCreatesIntermediateStructures(t *testing.T) {
	doc := Doc{}
	setDotValue(doc, "a.b.c", 7)
	if GetDotValue(doc, "a.b.c") != 7 {
		t.Fatalf("expected 7 after setDotValue, got %v", GetDotValue(doc, "a.b.c"))
	}
}

func TestUnsetDotValueRemovesWithoutCreating(t *testing.T) {
	doc := Doc{"a": Doc{"b": 1, "c": 2}}
	unsetDotValue(doc, "a.b")
	if _, ok := doc["a"].(Doc)["b"]; ok {
		t.Fatal("expected a.b to be removed")
	}
	if doc["a"].(Doc)["c"] != 2 {
		t.Fatal("unsetDotValue must not disturb sibling fields")
	}

	unsetDotValue(doc, "x.y.z")
	if _, ok := doc["x"]; ok {
		t.Fatal("unsetting a path that was never set must not create intermediate structure")
	}
}
