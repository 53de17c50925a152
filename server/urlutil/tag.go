package urlutil

import (
	"fmt"
	"regexp"
)

// tag:DOMAIN[,DATE]:NAME per RFC 4151. The date part is ignored when parsing.
var tagURIRE = regexp.MustCompile(`^tag:([^,:]+)(?:,[0-9][0-9-]*)?:(.+)$`)

// TagURI builds an opaque tag URI id from a domain and a name.
func TagURI(domain, name string) string {
	return fmt.Sprintf("tag:%s:%s", domain, name)
}

// ParseTagURI extracts the domain and name from a tag URI. ok is false if the
// input doesn't conform.
func ParseTagURI(uri string) (domain, name string, ok bool) {
	m := tagURIRE.FindStringSubmatch(uri)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
