package as1

import "reflect"

// fields whose edits make two revisions meaningfully different. author and
// timestamps are deliberately absent: edits to those never count.
var comparedFields = []string{"objectType", "verb", "to", "content", "location", "image"}

// ActivityChanged reports whether two revisions of an activity or object
// differ in any meaningful field, checked on the top level and again on the
// nested object. inReplyTo is compared with author metadata stripped so a
// reply pointer that grew author details doesn't register as an edit.
// Returns on the first difference found.
func ActivityChanged(before, after Object) bool {
	objB := GetObject(before, "object")
	objA := GetObject(after, "object")

	for _, field := range comparedFields {
		if fieldChanged(before, after, field) || fieldChanged(objB, objA, field) {
			return true
		}
	}
	return fieldChanged(before, after, "inReplyTo", "author") ||
		fieldChanged(objB, objA, "inReplyTo", "author")
}

// fieldChanged reports whether field differs between the two records, where
// a difference only counts if at least one side is non-empty. The ignore
// keys are stripped from record values before comparing.
func fieldChanged(b, a Object, field string, ignore ...string) bool {
	bv, av := b[field], a[field]

	if len(ignore) > 0 {
		bm, bOK := asMap(bv)
		am, aOK := asMap(av)
		if bOK && aOK {
			bv = withoutKeys(bm, ignore)
			av = withoutKeys(am, ignore)
		}
	}

	if deepEqual(bv, av) {
		return false
	}
	return !isEmpty(bv) || !isEmpty(av)
}

// AppendInReplyTo merges before's inReplyTo entries into after's (or their
// nested objects'), in place: after's entries first, then before's, with
// exact URL duplicates dropped and first-seen order kept.
func AppendInReplyTo(before, after Object) {
	objB := GetObject(before, "object")
	if len(objB) == 0 {
		objB = before
	}
	objA := GetObject(after, "object")
	if len(objA) == 0 {
		objA = after
	}
	if objB == nil || objA == nil {
		return
	}

	combined := append(getList(objA, "inReplyTo"), getList(objB, "inReplyTo")...)
	seen := make(map[string]bool)
	merged := make([]any, 0, len(combined))
	for _, entry := range combined {
		key := replyKey(entry)
		if key != "" && seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, entry)
	}
	objA["inReplyTo"] = merged
}

// replyKey identifies an inReplyTo entry by its URL, falling back to id.
func replyKey(entry any) string {
	if s, ok := entry.(string); ok {
		return s
	}
	if o, ok := asMap(entry); ok {
		if url, _ := o["url"].(string); url != "" {
			return url
		}
		id, _ := o["id"].(string)
		return id
	}
	return ""
}

func withoutKeys(o Object, keys []string) Object {
	trimmed := make(Object, len(o))
	for k, v := range o {
		trimmed[k] = v
	}
	for _, k := range keys {
		delete(trimmed, k)
	}
	return trimmed
}

// deepEqual compares two record values structurally, treating the different
// list shapes ([]any, []Object, []string) as equivalent.
func deepEqual(a, b any) bool {
	if am, ok := asMap(a); ok {
		bm, ok := asMap(b)
		if !ok || len(am) != len(bm) {
			return false
		}
		for k, av := range am {
			bv, present := bm[k]
			if !present || !deepEqual(av, bv) {
				return false
			}
		}
		return true
	}

	if as, ok := asSlice(a); ok {
		bs, ok := asSlice(b)
		if !ok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !deepEqual(as[i], bs[i]) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(a, b)
}

func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []Object:
		out := make([]any, len(s))
		for i, o := range s {
			out[i] = o
		}
		return out, true
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	}
	return nil, false
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	case int:
		return t == 0
	}
	if o, ok := asMap(v); ok {
		return len(o) == 0
	}
	if s, ok := asSlice(v); ok {
		return len(s) == 0
	}
	return false
}
