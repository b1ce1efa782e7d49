package nedb

import "regexp"

// Predicate is the callable value a $where clause carries (spec §4.1: "take
// a predicate function"). There is no embedded expression language — Go has
// no eval, so $where is simply a function the embedding application
// supplies.
type Predicate func(doc Doc) bool

// Match reports whether doc satisfies query (spec §4.1). strCmp overrides
// the default string comparator used by $lt/$lte/$gt/$gte and the implicit
// total order.
func Match(doc Doc, query Doc, strCmp Comparator) bool {
	for key, qv := range query {
		switch key {
		case "$or":
			subs, ok := asQueryList(qv)
			if !ok || len(subs) == 0 {
				return false
			}
			matched := false
			for _, sub := range subs {
				if Match(doc, sub, strCmp) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		case "$and":
			subs, ok := asQueryList(qv)
			if !ok {
				return false
			}
			for _, sub := range subs {
				if !Match(doc, sub, strCmp) {
					return false
				}
			}
		case "$nor":
			subs, ok := asQueryList(qv)
			if !ok {
				return false
			}
			for _, sub := range subs {
				if Match(doc, sub, strCmp) {
					return false
				}
			}
		case "$where":
			pred, ok := qv.(Predicate)
			if !ok {
				if fn, ok2 := qv.(func(Doc) bool); ok2 {
					pred = fn
				} else {
					return false
				}
			}
			if !pred(doc) {
				return false
			}
		default:
			if !matchField(doc, key, qv, strCmp) {
				return false
			}
		}
	}
	return true
}

func asQueryList(v interface{}) ([]Doc, bool) {
	arr, ok := asArray(v)
	if !ok {
		return nil, false
	}
	out := make([]Doc, 0, len(arr))
	for _, el := range arr {
		d, ok := asDoc(el)
		if !ok {
			return nil, false
		}
		out = append(out, d)
	}
	return out, true
}

func matchField(doc Doc, path string, qv interface{}, strCmp Comparator) bool {
	docVal := GetDotValue(doc, path)
	if isOperatorDoc(qv) {
		opq, _ := asDoc(qv)
		for op, operand := range opq {
			fn, ok := comparisonOperators[op]
			if !ok {
				return false
			}
			if !fn(docVal, operand, strCmp) {
				return false
			}
		}
		return true
	}
	return matchValue(docVal, qv, strCmp)
}

// isOperatorDoc reports whether v is a non-empty document all of whose keys
// are comparison operators.
func isOperatorDoc(v interface{}) bool {
	d, ok := asDoc(v)
	if !ok || len(d) == 0 {
		return false
	}
	for k := range d {
		if _, ok := comparisonOperators[k]; !ok {
			return false
		}
	}
	return true
}

// matchValue implements direct-value matching, including the array
// membership rule: if docVal is an array, it matches when any element
// equals qv or the whole array equals qv.
func matchValue(docVal, qv interface{}, strCmp Comparator) bool {
	if Equal(docVal, qv) {
		return true
	}
	if arr, ok := asArray(docVal); ok {
		for _, el := range arr {
			if Equal(el, qv) {
				return true
			}
		}
	}
	return false
}

// comparisonOperators is the static dispatch table for field comparison
// operators (spec §4.1, §9 "dynamic operator dispatch" — a closed set
// dispatched via a table, not reflection).
var comparisonOperators = map[string]func(docVal, operand interface{}, strCmp Comparator) bool{
	"$lt":  func(d, o interface{}, c Comparator) bool { return !IsUndefined(d) && Compare(d, o, c) < 0 },
	"$lte": func(d, o interface{}, c Comparator) bool { return !IsUndefined(d) && Compare(d, o, c) <= 0 },
	"$gt":  func(d, o interface{}, c Comparator) bool { return !IsUndefined(d) && Compare(d, o, c) > 0 },
	"$gte": func(d, o interface{}, c Comparator) bool { return !IsUndefined(d) && Compare(d, o, c) >= 0 },
	"$ne":  func(d, o interface{}, c Comparator) bool { return !matchValue(d, o, c) },
	"$in": func(d, o interface{}, c Comparator) bool {
		arr, ok := asArray(o)
		if !ok {
			return false
		}
		for _, el := range arr {
			if matchValue(d, el, c) {
				return true
			}
		}
		return false
	},
	"$nin": func(d, o interface{}, c Comparator) bool {
		arr, ok := asArray(o)
		if !ok {
			return true
		}
		for _, el := range arr {
			if matchValue(d, el, c) {
				return false
			}
		}
		return true
	},
	"$exists": func(d, o interface{}, c Comparator) bool {
		want, _ := o.(bool)
		return !IsUndefined(d) == want
	},
	"$regex": func(d, o interface{}, c Comparator) bool {
		s, ok := d.(string)
		if !ok {
			return false
		}
		switch pat := o.(type) {
		case *regexp.Regexp:
			return pat.MatchString(s)
		case string:
			re, err := regexp.Compile(pat)
			if err != nil {
				return false
			}
			return re.MatchString(s)
		default:
			return false
		}
	},
	"$size": func(d, o interface{}, c Comparator) bool {
		arr, ok := asArray(d)
		if !ok {
			return false
		}
		n, ok := asFloat64(o)
		if !ok {
			return false
		}
		return float64(len(arr)) == n
	},
	"$elemMatch": func(d, o interface{}, c Comparator) bool {
		arr, ok := asArray(d)
		if !ok {
			return false
		}
		sub, ok := asDoc(o)
		if !ok {
			return false
		}
		for _, el := range arr {
			if isOperatorDoc(sub) {
				if matchField(Doc{"_elem": el}, "_elem", sub, c) {
					return true
				}
				continue
			}
			if eld, ok := asDoc(el); ok && Match(eld, sub, c) {
				return true
			}
		}
		return false
	},
}
