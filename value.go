package nedb

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// typeBucket is the cross-type ordering bucket from spec §3:
// undefined < null < number < string < boolean < timestamp < array < object.
type typeBucket int

const (
	bucketUndefined typeBucket = iota
	bucketNull
	bucketNumber
	bucketString
	bucketBoolean
	bucketTimestamp
	bucketArray
	bucketObject
)

func bucketOf(v interface{}) typeBucket {
	switch vv := v.(type) {
	case undefinedType:
		return bucketUndefined
	case nil:
		return bucketNull
	case bool:
		return bucketBoolean
	case string:
		return bucketString
	case time.Time:
		return bucketTimestamp
	case Arr:
		return bucketArray
	case Doc:
		return bucketObject
	default:
		if _, ok := asFloat64(vv); ok {
			return bucketNumber
		}
		return bucketObject
	}
}

// asFloat64 normalizes any of Go's numeric kinds to a float64.
func asFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func asArray(v interface{}) (Arr, bool) {
	switch a := v.(type) {
	case Arr:
		return a, true
	default:
		return nil, false
	}
}

func asDoc(v interface{}) (Doc, bool) {
	switch d := v.(type) {
	case Doc:
		return d, true
	default:
		return nil, false
	}
}

// docKeys returns a document's keys in a stable, deterministic order. Go
// maps have no intrinsic order; spec §3 rule 5 treats an object's defining
// key order as significant for comparison, so we fall back to sorted key
// order, which is deterministic and total even though it discards true
// insertion order (neither Go's map type nor bson.M preserve one).
func docKeys(d Doc) []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Compare implements the total order over values from spec §3. It returns
// -1, 0 or 1. strCmp overrides string comparison when non-nil.
func Compare(a, b interface{}, strCmp Comparator) int {
	ba, bb := bucketOf(a), bucketOf(b)
	if ba != bb {
		if ba < bb {
			return -1
		}
		return 1
	}
	switch ba {
	case bucketUndefined, bucketNull:
		return 0
	case bucketNumber:
		fa, _ := asFloat64(a)
		fb, _ := asFloat64(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	case bucketString:
		sa, sb := a.(string), b.(string)
		if strCmp != nil {
			return strCmp(sa, sb)
		}
		return strings.Compare(sa, sb)
	case bucketBoolean:
		ba, bb := a.(bool), b.(bool)
		if ba == bb {
			return 0
		}
		if !ba {
			return -1
		}
		return 1
	case bucketTimestamp:
		ta, tb := a.(time.Time), b.(time.Time)
		switch {
		case ta.Before(tb):
			return -1
		case ta.After(tb):
			return 1
		default:
			return 0
		}
	case bucketArray:
		aa, _ := asArray(a)
		ab, _ := asArray(b)
		n := len(aa)
		if len(ab) < n {
			n = len(ab)
		}
		for i := 0; i < n; i++ {
			if c := Compare(aa[i], ab[i], strCmp); c != 0 {
				return c
			}
		}
		switch {
		case len(aa) < len(ab):
			return -1
		case len(aa) > len(ab):
			return 1
		default:
			return 0
		}
	case bucketObject:
		da, _ := asDoc(a)
		db, _ := asDoc(b)
		ka, kb := docKeys(da), docKeys(db)
		n := len(ka)
		if len(kb) < n {
			n = len(kb)
		}
		for i := 0; i < n; i++ {
			if c := strings.Compare(ka[i], kb[i]); c != 0 {
				return c
			}
			if c := Compare(da[ka[i]], db[kb[i]], strCmp); c != 0 {
				return c
			}
		}
		switch {
		case len(ka) < len(kb):
			return -1
		case len(ka) > len(kb):
			return 1
		default:
			return 0
		}
	}
	return 0
}

// Less reports whether a sorts strictly before b under Compare.
func Less(a, b interface{}, strCmp Comparator) bool {
	return Compare(a, b, strCmp) < 0
}

// Equal implements the structural equality rule from spec §3: same type
// bucket, recursively equal contents, NaN != NaN, timestamps equal iff same
// instant.
func Equal(a, b interface{}) bool {
	ba, bb := bucketOf(a), bucketOf(b)
	if ba != bb {
		return false
	}
	switch ba {
	case bucketUndefined, bucketNull:
		return true
	case bucketNumber:
		fa, _ := asFloat64(a)
		fb, _ := asFloat64(b)
		if math.IsNaN(fa) || math.IsNaN(fb) {
			return false
		}
		return fa == fb
	case bucketString:
		return a.(string) == b.(string)
	case bucketBoolean:
		return a.(bool) == b.(bool)
	case bucketTimestamp:
		return a.(time.Time).Equal(b.(time.Time))
	case bucketArray:
		aa, _ := asArray(a)
		ab, _ := asArray(b)
		if len(aa) != len(ab) {
			return false
		}
		for i := range aa {
			if !Equal(aa[i], ab[i]) {
				return false
			}
		}
		return true
	case bucketObject:
		da, _ := asDoc(a)
		db, _ := asDoc(b)
		if len(da) != len(db) {
			return false
		}
		for k, v := range da {
			ov, ok := db[k]
			if !ok || !Equal(v, ov) {
				return false
			}
		}
		return true
	}
	return false
}

// DeepCopy returns a structural copy of v so callers cannot mutate stored
// state through returned references, and modifiers never mutate their
// input.
func DeepCopy(v interface{}) interface{} {
	switch vv := v.(type) {
	case Doc:
		out := make(Doc, len(vv))
		for k, val := range vv {
			out[k] = DeepCopy(val)
		}
		return out
	case Arr:
		out := make(Arr, len(vv))
		for i, val := range vv {
			out[i] = DeepCopy(val)
		}
		return out
	default:
		return v
	}
}

// canonicalKey produces the type-tagged projection used to deduplicate
// array elements before expanding them into index entries (spec §4.2).
// Scalars that participate in equality comparisons are tagged by type so
// that, e.g., the number 1 and the string "1" never collide; everything
// else (including nested arrays/objects) falls back to its %#v identity,
// which is sufficient for deduplication purposes within a single Insert.
func canonicalKey(v interface{}) string {
	switch vv := v.(type) {
	case nil:
		return "$null"
	case undefinedType:
		return "$undefined"
	case string:
		return "$string<" + vv + ">"
	case bool:
		return fmt.Sprintf("$boolean<%v>", vv)
	case time.Time:
		return fmt.Sprintf("$date<%d>", vv.UnixMilli())
	default:
		if f, ok := asFloat64(vv); ok {
			return fmt.Sprintf("$number<%v>", f)
		}
		return fmt.Sprintf("%#v", vv)
	}
}
