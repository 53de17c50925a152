package as1

import (
	"regexp"
	"strings"

	"github.com/kgrayson/streammill/server/telemetry"
	"github.com/kgrayson/streammill/server/urlutil"
)

// Resolved is the outcome of following a URL's redirect chain.
type Resolved struct {
	URL         string
	ContentType string
	StatusCode  int
}

// RedirectResolver follows a URL to its final destination. Implementations
// must not fail: on any error the input URL is reported as its own final
// destination.
type RedirectResolver interface {
	FollowRedirects(url string) Resolved
}

// DiscoveryOptions controls OriginalPostDiscovery.
type DiscoveryOptions struct {
	// Domains restricts which links count as originals. Empty means every
	// link is an original.
	Domains []string
	// IncludeRedirectSources adds pre-redirect source URLs alongside their
	// resolved destinations.
	IncludeRedirectSources bool
	// IncludeReservedHosts keeps links to single-label hosts and reserved
	// TLDs (foo.example, my-server, localhost).
	IncludeReservedHosts bool
	// MaxRedirectFetches bounds how many candidates are probed for
	// redirects, in candidate order. Zero or negative means no bound.
	MaxRedirectFetches int
	// Resolver probes candidates for redirects. nil skips redirect
	// resolution entirely.
	Resolver RedirectResolver
}

// DefaultDiscoveryOptions returns the permissive defaults: no domain
// allowlist, redirect sources and reserved hosts included.
func DefaultDiscoveryOptions() DiscoveryOptions {
	return DiscoveryOptions{
		IncludeRedirectSources: true,
		IncludeReservedHosts:   true,
	}
}

// a permashortcitation is a trailing "(DOMAIN PATH)" or "(DOMAIN/PATH)"
// citation denoting the canonical copy of a syndicated post
var permashortcitationRE = regexp.MustCompile(`\(([^:\s)]+\.[^\s)]{2,})[ /]([^\s)]+)\)$`)

// OriginalPostDiscovery finds a post's original-post and mention links.
//
// Candidates are gathered from the activity object's attachments and tags
// (article, mention, note, or untyped entries), links in the text content,
// upstreamDuplicates, targetUrl, and trailing permashortcitations. Raw links
// ending in an ellipsis are dropped as probably truncated; synthesized
// permashortcitation URLs are exempt from that check. Candidates are
// cleaned, de-duplicated, and optionally probed for redirects, then each is
// classified as an original if its domain equals or descends from one of
// opts.Domains (or no allowlist is given), otherwise as a mention.
//
// Returns the two classifications as sets of URL strings.
func OriginalPostDiscovery(activity Object, opts DiscoveryOptions) (originals, mentions map[string]bool) {
	originals = make(map[string]bool)
	mentions = make(map[string]bool)

	obj := GetObject(activity, "object")
	if len(obj) == 0 {
		obj = activity
	}
	content, _ := obj["content"].(string)
	content = strings.TrimSpace(content)

	var raw []string
	for _, t := range append(GetObjects(obj, "attachments"), GetObjects(obj, "tags")...) {
		if objectType, typed := t["objectType"].(string); typed &&
			objectType != "article" && objectType != "mention" && objectType != "note" {
			continue
		}
		if url, _ := t["url"].(string); url != "" {
			raw = append(raw, url)
		}
	}
	raw = append(raw, urlutil.ExtractLinks(content)...)
	raw = append(raw, stringList(getList(obj, "upstreamDuplicates"))...)
	raw = append(raw, stringList(getList(obj, "targetUrl"))...)

	var candidates []string
	for _, url := range raw {
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			continue
		}
		// ellipsized URLs are probably incomplete, so omit them
		if strings.HasSuffix(url, "...") || strings.HasSuffix(url, "…") {
			continue
		}
		candidates = append(candidates, url)
	}
	for _, m := range permashortcitationRE.FindAllStringSubmatch(content, -1) {
		candidates = append(candidates, "http://"+m[1]+"/"+m[2])
	}

	cleaned := make([]string, 0, len(candidates))
	for _, url := range candidates {
		if c := urlutil.CleanURL(url); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	candidates = urlutil.DedupeURLs(cleaned)

	// resolve redirects for the leading candidates, in candidate order so
	// classification stays deterministic
	redirectFinal := make(map[string]string) // final URL → pre-redirect source
	redirectSource := make(map[string]bool)
	if opts.Resolver != nil {
		probe := candidates
		if opts.MaxRedirectFetches > 0 && len(candidates) > opts.MaxRedirectFetches {
			telemetry.Log("found %d original post candidates, only resolving redirects for the first %d",
				len(candidates), opts.MaxRedirectFetches)
			probe = candidates[:opts.MaxRedirectFetches]
		}
		var finals []string
		for _, url := range probe {
			resolved := opts.Resolver.FollowRedirects(url)
			if resolved.URL != url && strings.HasPrefix(resolved.ContentType, "text/html") {
				redirectFinal[resolved.URL] = url
				redirectSource[url] = true
				finals = append(finals, resolved.URL)
			}
		}
		candidates = append(candidates, finals...)
	}

	for _, url := range urlutil.DedupeURLs(candidates) {
		if redirectSource[url] {
			// a redirected source URL: handled when its final URL comes up,
			// so domain matching applies to the destination
			continue
		}

		domain := urlutil.Domain(url)
		if domain == "" {
			continue
		}
		if !opts.IncludeReservedHosts && urlutil.IsReservedHost(domain) {
			continue
		}

		which := mentions
		if len(opts.Domains) == 0 || urlutil.DomainOrParentIn(domain, opts.Domains) {
			which = originals
		}
		which[url] = true
		if source := redirectFinal[url]; source != "" && opts.IncludeRedirectSources {
			which[source] = true
		}
	}

	telemetry.Trace("original post discovery found %d originals, %d mentions",
		len(originals), len(mentions))
	return originals, mentions
}
