// Package urlutil has URL and opaque-id helpers shared by the rest of the
// normalization code: canonicalization, ordered de-duplication, link
// extraction from free text, and tag URIs.
package urlutil

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/purell"
)

// query parameters that only carry tracking state and never identify content
var trackingParams = map[string]bool{
	"fbclid":       true,
	"gclid":        true,
	"mc_eid":       true,
	"mkt_tok":      true,
	"msclkid":      true,
	"sourceid":     true,
	"utm_campaign": true,
	"utm_content":  true,
	"utm_id":       true,
	"utm_medium":   true,
	"utm_source":   true,
	"utm_term":     true,
}

var linkRE = regexp.MustCompile(`https?://[^\s<>()"']+`)

// CleanURL canonicalizes a URL: lowercases the scheme and host, drops the
// fragment and default port, and strips tracking query parameters.
// Idempotent: CleanURL(CleanURL(u)) == CleanURL(u). Returns "" if the URL
// doesn't parse.
func CleanURL(raw string) string {
	normalized, err := purell.NormalizeURLString(raw,
		purell.FlagsSafe|purell.FlagRemoveFragment)
	if err != nil {
		return ""
	}

	u, err := url.Parse(normalized)
	if err != nil {
		return ""
	}
	if u.RawQuery == "" {
		return normalized
	}

	params := u.Query()
	for p := range params {
		if trackingParams[p] {
			params.Del(p)
		}
	}
	u.RawQuery = params.Encode()
	return u.String()
}

// DedupeURLs removes duplicates from urls, preserving first-seen order.
// Two URLs are considered duplicates if they differ only in scheme, trailing
// slash, or fragment; the https version wins regardless of which was seen
// first. Empty strings are dropped.
func DedupeURLs(urls []string) []string {
	order := make([]string, 0, len(urls))
	byKey := make(map[string]string)

	for _, u := range urls {
		if u == "" {
			continue
		}
		k := dedupeKey(u)
		seen, ok := byKey[k]
		if !ok {
			byKey[k] = u
			order = append(order, k)
			continue
		}
		// upgrade a previously seen http URL to its https twin
		if strings.HasPrefix(u, "https://") && !strings.HasPrefix(seen, "https://") {
			byKey[k] = u
		}
	}

	result := make([]string, len(order))
	for i, k := range order {
		result[i] = byKey[k]
	}
	return result
}

func dedupeKey(u string) string {
	k := strings.TrimPrefix(u, "http://")
	k = strings.TrimPrefix(k, "https://")
	if i := strings.IndexByte(k, '#'); i >= 0 {
		k = k[:i]
	}
	return strings.TrimSuffix(k, "/")
}

// ExtractLinks returns the http(s) URLs found in free text, in order of
// appearance, including duplicates. Trailing sentence punctuation is trimmed
// unless the URL ends in an ellipsis, which is kept so that callers can
// detect truncated links.
func ExtractLinks(text string) []string {
	matches := linkRE.FindAllString(text, -1)
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		if !strings.HasSuffix(m, "...") && !strings.HasSuffix(m, "…") {
			m = strings.TrimRight(m, ".,;:!?")
		}
		if m != "" {
			links = append(links, m)
		}
	}
	return links
}
