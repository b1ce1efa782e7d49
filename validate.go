package nedb

import "strings"

// reservedTopLevelKeys travel only through the external persistence channel
// (spec §3) and are never allowed inside a document passed through the
// in-memory insert/update path.
var reservedTopLevelKeys = map[string]bool{
	"$$deleted":       true,
	"$$indexCreated":  true,
	"$$indexRemoved":  true,
}

// CheckObject validates that no key in v (recursively, through nested
// documents and arrays) contains "." or starts with "$" (spec §4.1). It is
// applied before a document reaches the index.
func CheckObject(v interface{}) error {
	switch vv := v.(type) {
	case Doc:
		return checkDocKeys(vv)
	case Arr:
		for _, el := range vv {
			if err := CheckObject(el); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkDocKeys(d Doc) error {
	for k, v := range d {
		if strings.ContainsRune(k, '.') {
			return invalidDocumentf("key %q contains a '.'", k)
		}
		if reservedTopLevelKeys[k] {
			return invalidDocumentf("key %q is reserved for persistence records", k)
		}
		if strings.HasPrefix(k, "$") {
			return invalidDocumentf("key %q starts with '$'", k)
		}
		if err := CheckObject(v); err != nil {
			return err
		}
	}
	return nil
}
