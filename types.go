package nedb

import "time"

// Doc is a document: an ordered-by-iteration-irrelevant mapping from string
// key to value. It is an alias for map[string]interface{} (and therefore
// interchangeable with go.mongodb.org/mongo-driver/bson.M) so callers can
// bson.Marshal/bson.Unmarshal between Go structs and stored documents.
type Doc = map[string]interface{}

// Arr is an array value.
type Arr = []interface{}

// undefinedType is the distinguishable "missing" value produced by
// GetDotValue for an absent path. It is strictly lower than every other
// value in the total order (spec §3).
type undefinedType struct{}

// Undefined is the sentinel "missing value" marker.
var Undefined = undefinedType{}

// IsUndefined reports whether v is the Undefined sentinel.
func IsUndefined(v interface{}) bool {
	_, ok := v.(undefinedType)
	return ok
}

// Comparator overrides the default lexicographic ordering used for strings,
// both within the total order (§3) and by Cursor.Sort.
type Comparator func(a, b string) int

// now is overridable in tests.
var now = time.Now
