// Package fetch resolves URL redirect chains over HTTP. It backs the
// original-post discovery's redirect probes: bounded hops, retries on
// transient failures, and a short-lived result cache so repeated discovery
// runs don't hammer the same shorteners.
package fetch

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/karlseguin/ccache/v3"

	"github.com/kgrayson/streammill/server/as1"
	"github.com/kgrayson/streammill/server/telemetry"
)

const (
	defaultMaxHops   = 10
	defaultCacheSize = 5000
	defaultCacheTTL  = 15 * time.Minute
)

// Resolver follows redirects with HEAD requests. It implements
// as1.RedirectResolver and never reports a failure: any error resolves the
// URL to itself.
type Resolver struct {
	client    *http.Client
	cache     *ccache.Cache[as1.Resolved]
	cacheTTL  time.Duration
	userAgent string
}

// Options configures a Resolver. Zero values get reasonable defaults.
type Options struct {
	MaxHops   int           // redirect hops before giving up
	CacheSize int           // resolved URLs kept in memory
	CacheTTL  time.Duration // how long a resolved URL stays cached
	UserAgent string
	Client    *http.Client // overrides the default retrying client
}

func NewResolver(opts Options) *Resolver {
	if opts.MaxHops <= 0 {
		opts.MaxHops = defaultMaxHops
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}

	client := opts.Client
	if client == nil {
		retryClient := retryablehttp.NewClient()
		retryClient.RetryMax = 2
		retryClient.RetryWaitMin = time.Second
		retryClient.RetryWaitMax = 5 * time.Second
		retryClient.Logger = nil
		client = retryClient.StandardClient()
		client.Timeout = 15 * time.Second
	}
	maxHops := opts.MaxHops
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxHops {
			return http.ErrUseLastResponse
		}
		return nil
	}

	return &Resolver{
		client:    client,
		cache:     ccache.New(ccache.Configure[as1.Resolved]().MaxSize(int64(opts.CacheSize))),
		cacheTTL:  opts.CacheTTL,
		userAgent: opts.UserAgent,
	}
}

// FollowRedirects resolves url to its final destination. On network failure
// or a URL that won't parse, the input URL is reported as its own final
// destination; errors never propagate.
func (r *Resolver) FollowRedirects(url string) as1.Resolved {
	if item := r.cache.Get(url); item != nil && !item.Expired() {
		return item.Value()
	}

	resolved := r.resolve(url)
	r.cache.Set(url, resolved, r.cacheTTL)
	return resolved
}

func (r *Resolver) resolve(url string) as1.Resolved {
	req, err := http.NewRequest(http.MethodHead, url, nil)
	if err != nil {
		return as1.Resolved{URL: url}
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		telemetry.Trace("resolving %s: %v", url, err)
		telemetry.Increment("resolve_errors", 1)
		return as1.Resolved{URL: url}
	}
	defer resp.Body.Close()

	telemetry.Increment("resolve_fetches", 1)
	return as1.Resolved{
		URL:         resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}
}
