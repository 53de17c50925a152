package as1

// Visibility is the tri-state audience classification of an object.
type Visibility int

const (
	Unknown Visibility = iota
	Public
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Private:
		return "private"
	}
	return "unknown"
}

// IsPublic classifies an object's audience per the Audience Targeting
// extension: Public when @public or @unlisted is among the audience aliases,
// Unknown when any audience entry has objectType "unknown", Private when
// aliases name only non-public groups.
//
// No audience at all defaults to Public. Downstream consumers prune the to
// field from stored objects and rely on that default; changing it is a
// breaking change.
func IsPublic(obj Object) Visibility {
	to := getList(obj, "to")
	if len(to) == 0 {
		to = getList(GetObject(obj, "object"), "to")
	}

	var aliases, objectTypes []string
	for _, entry := range to {
		o, ok := asMap(entry)
		if !ok {
			continue
		}
		if alias, _ := o["alias"].(string); alias != "" {
			aliases = append(aliases, alias)
		}
		if t, _ := o["objectType"].(string); t != "" {
			objectTypes = append(objectTypes, t)
		}
	}

	switch {
	case containsString(aliases, "@public") || containsString(aliases, "@unlisted"):
		return Public
	case containsString(objectTypes, "unknown"):
		return Unknown
	case len(aliases) > 0:
		return Private
	default:
		return Public
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
