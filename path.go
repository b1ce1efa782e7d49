package nedb

import (
	"strconv"
	"strings"
)

// GetDotValue reads the value at a dotted path within doc (spec §4.1).
//
// Splitting happens on ".". At each segment, if the current value is an
// array and the next segment parses as a decimal integer, it indexes into
// the array; if it is an array and the next segment is a key, the lookup is
// mapped over every element, producing an array of the per-element results
// (elements where the key is absent are skipped). A missing path yields
// Undefined.
func GetDotValue(doc interface{}, path string) interface{} {
	if path == "" {
		return doc
	}
	return getDotValue(doc, strings.Split(path, "."))
}

func getDotValue(v interface{}, segs []string) interface{} {
	if len(segs) == 0 {
		return v
	}
	seg := segs[0]
	rest := segs[1:]

	if arr, ok := asArray(v); ok {
		if idx, err := strconv.Atoi(seg); err == nil {
			if idx < 0 || idx >= len(arr) {
				return Undefined
			}
			return getDotValue(arr[idx], rest)
		}
		// Map the remaining path over every element.
		out := make(Arr, 0, len(arr))
		for _, el := range arr {
			sub := getDotValue(el, segs)
			if IsUndefined(sub) {
				continue
			}
			out = append(out, sub)
		}
		return out
	}

	doc, ok := asDoc(v)
	if !ok {
		return Undefined
	}
	val, present := doc[seg]
	if !present {
		return Undefined
	}
	if len(rest) == 0 {
		return val
	}
	return getDotValue(val, rest)
}

// setDotValue writes v at path within doc, creating intermediate objects as
// needed. It never descends into arrays by key-mapping (unlike
// GetDotValue) — array segments must be decimal indices, extending the
// array with nulls if necessary.
func setDotValue(doc Doc, path string, v interface{}) {
	segs := strings.Split(path, ".")
	setDotSegs(doc, segs, v)
}

func setDotSegs(container interface{}, segs []string, v interface{}) interface{} {
	seg := segs[0]
	last := len(segs) == 1

	if idx, err := strconv.Atoi(seg); err == nil {
		arr, ok := asArray(container)
		if !ok {
			arr = Arr{}
		}
		for len(arr) <= idx {
			arr = append(arr, nil)
		}
		if last {
			arr[idx] = v
		} else {
			arr[idx] = setDotSegs(arr[idx], segs[1:], v)
		}
		return arr
	}

	d, ok := asDoc(container)
	if !ok {
		d = Doc{}
	}
	if last {
		d[seg] = v
	} else {
		d[seg] = setDotSegs(d[seg], segs[1:], v)
	}
	return d
}

// unsetDotValue removes the value at path within doc, if present. Unlike
// setDotValue it never creates intermediate structure.
func unsetDotValue(doc Doc, path string) {
	segs := strings.Split(path, ".")
	unsetDotSegs(doc, segs)
}

func unsetDotSegs(container interface{}, segs []string) {
	seg := segs[0]
	last := len(segs) == 1

	if idx, err := strconv.Atoi(seg); err == nil {
		arr, ok := asArray(container)
		if !ok || idx < 0 || idx >= len(arr) {
			return
		}
		if last {
			arr[idx] = nil
			return
		}
		unsetDotSegs(arr[idx], segs[1:])
		return
	}

	d, ok := asDoc(container)
	if !ok {
		return
	}
	if last {
		delete(d, seg)
		return
	}
	if next, present := d[seg]; present {
		unsetDotSegs(next, segs[1:])
	}
}
