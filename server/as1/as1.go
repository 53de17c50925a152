// Package as1 works with canonical activity-stream objects: loosely typed
// nested records decoded from JSON. Provider adapters hand records to this
// package in that shape and get the same shape back; nothing here is tied to
// any one provider.
//
// A field value may be a bare string (an id reference), a single nested
// record, or a list of either. The accessors normalize all three shapes so
// the ambiguity never leaks past this package.
package as1

import (
	"fmt"
	"sort"
	"strings"
)

// Object is a decoded activity or object record.
type Object = map[string]any

// verbs whose activity carries a meaningful object field
var VerbsWithObject = map[string]bool{
	"follow":          true,
	"like":            true,
	"react":           true,
	"share":           true,
	"rsvp-yes":        true,
	"rsvp-no":         true,
	"rsvp-maybe":      true,
	"rsvp-interested": true,
	"invite":          true,
}

// objectTypes that can act, per the AS2 actor types
var ActorTypes = map[string]bool{
	"application":  true,
	"group":        true,
	"organization": true,
	"person":       true,
	"service":      true,
}

// ObjectType returns the object's type, or its verb if the type is the
// "activity" sentinel or absent. Activities and objects share this one
// classification.
func ObjectType(obj Object) string {
	t, _ := obj["objectType"].(string)
	if t != "" && t != "activity" {
		return t
	}
	v, _ := obj["verb"].(string)
	return v
}

// GetObject returns the first value of field as a record. Bare string values
// are wrapped as {"id": value}. Returns an empty record if the field is
// missing, never nil.
func GetObject(obj Object, field string) Object {
	vals := getList(obj, field)
	if len(vals) == 0 {
		return Object{}
	}
	switch v := vals[0].(type) {
	case string:
		if v == "" {
			return Object{}
		}
		return Object{"id": v}
	default:
		if o, ok := asMap(vals[0]); ok {
			return o
		}
	}
	return Object{}
}

// GetObjects returns every value of field as a record, preserving order and
// duplicates, with the same per-element wrapping as GetObject.
func GetObjects(obj Object, field string) []Object {
	vals := getList(obj, field)
	objs := make([]Object, 0, len(vals))
	for _, v := range vals {
		switch t := v.(type) {
		case string:
			if t != "" {
				objs = append(objs, Object{"id": t})
			}
		default:
			if o, ok := asMap(v); ok {
				objs = append(objs, o)
			}
		}
	}
	return objs
}

// GetURL returns the trimmed first url value. A record value is unwrapped
// through its "value" field.
func GetURL(obj Object) string {
	vals := getList(obj, "url")
	if len(vals) == 0 {
		return ""
	}
	v := vals[0]
	if o, ok := asMap(v); ok {
		v = o["value"]
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// GetIDs returns the unique ids found in field, in first-seen order. Bare
// strings pass through; records contribute their id, or url if they have no
// id. Elements with neither are skipped.
func GetIDs(obj Object, field string) []string {
	var ids []string
	seen := make(map[string]bool)
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, v := range getList(obj, field) {
		switch t := v.(type) {
		case string:
			add(t)
		default:
			if o, ok := asMap(v); ok {
				if id, _ := o["id"].(string); id != "" {
					add(id)
				} else if url, _ := o["url"].(string); url != "" {
					add(url)
				}
			}
		}
	}
	return ids
}

// MergeByID merges updates into obj[field] keyed by id, in place. Later
// entries win, so an update with an existing id replaces the old record.
// The result is sorted lexicographically by id. Every existing and new
// element must carry a string id; otherwise the field is left untouched and
// an error is returned.
func MergeByID(obj Object, field string, updates []Object) error {
	merged := make(map[string]Object)
	add := func(v any) error {
		o, ok := asMap(v)
		if !ok {
			return fmt.Errorf("merge %s: element %v is not a record", field, v)
		}
		id, _ := o["id"].(string)
		if id == "" {
			return fmt.Errorf("merge %s: element missing id", field)
		}
		merged[id] = o
		return nil
	}

	for _, v := range getList(obj, field) {
		if err := add(v); err != nil {
			return err
		}
	}
	for _, o := range updates {
		if err := add(o); err != nil {
			return err
		}
	}

	ids := make([]string, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = merged[id]
	}
	obj[field] = out
	return nil
}

// ActorName returns the actor's display name, falling back to username, then
// the literal "Unknown".
func ActorName(actor Object) string {
	if actor != nil {
		if name, _ := actor["displayName"].(string); name != "" {
			return name
		}
		if name, _ := actor["username"].(string); name != "" {
			return name
		}
	}
	return "Unknown"
}

// ObjectURLs returns the object's unique url and urls values, preserving
// order. Record values are unwrapped through their "value" field.
func ObjectURLs(obj Object) []string {
	value := func(v any) string {
		if o, ok := asMap(v); ok {
			v = o["value"]
		}
		s, _ := v.(string)
		return s
	}

	var urls []string
	seen := make(map[string]bool)
	for _, v := range append([]any{obj["url"]}, getList(obj, "urls")...) {
		if u := value(v); u != "" && !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}
	return urls
}

// PrefixURLs prepends prefix to every url inside the given field of the
// activity and its nested actor, author, object, replies, attachments, and
// tags, in place. Used to inject caching proxies into image or stream
// records. URLs already carrying the prefix are left alone; no URL encoding
// is applied.
func PrefixURLs(activity Object, field, prefix string) {
	prefixInto := func(elem Object) {
		for _, v := range getList(elem, field) {
			if o, ok := asMap(v); ok {
				if url, _ := o["url"].(string); url != "" && !strings.HasPrefix(url, prefix) {
					o["url"] = prefix + url
				}
			}
		}
	}

	prefixInto(activity)
	nested := []Object{
		GetObject(activity, "object"),
		GetObject(activity, "author"),
		GetObject(activity, "actor"),
	}
	nested = append(nested, GetObjects(GetObject(activity, "replies"), "items")...)
	nested = append(nested, GetObjects(activity, "attachments")...)
	nested = append(nested, GetObjects(activity, "tags")...)
	for _, elem := range nested {
		if len(elem) > 0 {
			PrefixURLs(elem, field, prefix)
		}
	}
}

// asMap normalizes a record value to an Object. Returns false for anything
// that isn't a string-keyed map.
func asMap(v any) (Object, bool) {
	o, ok := v.(Object)
	return o, ok
}

// getList normalizes obj[field] to a list: absent and nil become empty, a
// single value becomes a one-element list, and lists pass through.
func getList(obj Object, field string) []any {
	if obj == nil {
		return nil
	}
	switch v := obj[field].(type) {
	case nil:
		return nil
	case []any:
		return v
	case []Object:
		out := make([]any, len(v))
		for i, o := range v {
			out[i] = o
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	default:
		return []any{v}
	}
}

func stringList(vals []any) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
