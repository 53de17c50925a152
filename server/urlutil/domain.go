package urlutil

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

var localHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
}

// Domain extracts the lowercased host from a URL, without any leading www.
// Returns "" if the URL doesn't parse or has no host.
func Domain(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// DomainOrParentIn reports whether domain equals, or is a subdomain of, any
// of the given domains.
func DomainOrParentIn(domain string, domains []string) bool {
	if domain == "" {
		return false
	}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}

// IsReservedHost reports whether a domain can't be a real public host:
// single-label names, local hosts, and domains whose TLD isn't delegated by
// ICANN (eg foo.example, server.local).
func IsReservedHost(domain string) bool {
	if domain == "" || localHosts[domain] {
		return true
	}
	if !strings.Contains(domain, ".") {
		return true
	}
	_, icann := publicsuffix.PublicSuffix(domain)
	return !icann
}
