package nedb

// Projection is a mapping from dotted path to 0 or 1 (spec §4.3). Mixing 0
// and 1 (other than _id) is rejected with ErrInconsistentProjection.
type Projection = Doc

// applyProjection implements spec §4.3's projection rules: inclusion mode
// populates a fresh object via $set-style writes of only the named paths
// (omitting ones that read as undefined); exclusion mode starts from the
// source document and $unset-style removes the named paths. _id is
// included by default in inclusion mode and can only be dropped via an
// explicit "_id: 0".
func applyProjection(doc Doc, proj Projection) (Doc, error) {
	if len(proj) == 0 {
		return doc, nil
	}

	include, hasInclude, hasExclude := false, false, false
	for k, v := range proj {
		want := truthy(v)
		if k == "_id" {
			continue
		}
		if want {
			hasInclude = true
		} else {
			hasExclude = true
		}
	}
	if hasInclude && hasExclude {
		return nil, errInconsistentProjection()
	}
	include = hasInclude

	if include {
		out := Doc{}
		for path, v := range proj {
			if path == "_id" || !truthy(v) {
				continue
			}
			val := GetDotValue(doc, path)
			if IsUndefined(val) {
				continue
			}
			setDotValue(out, path, DeepCopy(val))
		}
		if idExcluded, ok := proj["_id"]; !ok || truthy(idExcluded) {
			if id, ok := doc["_id"]; ok {
				out["_id"] = DeepCopy(id)
			}
		}
		return out, nil
	}

	out, _ := DeepCopy(doc).(Doc)
	for path, v := range proj {
		if truthy(v) {
			continue
		}
		unsetDotValue(out, path)
	}
	return out, nil
}

func truthy(v interface{}) bool {
	if f, ok := asFloat64(v); ok {
		return f != 0
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return v != nil
}

func errInconsistentProjection() error {
	return ErrInconsistentProjection
}
