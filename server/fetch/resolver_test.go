package fetch

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestResolver(maxHops int) *Resolver {
	client := &http.Client{Timeout: 5 * time.Second}
	return NewResolver(Options{MaxHops: maxHops, Client: client})
}

func TestFollowRedirects(t *testing.T) {
	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
	}))
	defer final.Close()

	hop := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL+"/post", http.StatusMovedPermanently)
	}))
	defer hop.Close()

	resolved := newTestResolver(0).FollowRedirects(hop.URL + "/short")
	assert.Equal(t, final.URL+"/post", resolved.URL)
	assert.Equal(t, "text/html", resolved.ContentType)
	assert.Equal(t, http.StatusOK, resolved.StatusCode)
}

func TestFollowRedirects_NoRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resolved := newTestResolver(0).FollowRedirects(srv.URL + "/page")
	assert.Equal(t, srv.URL+"/page", resolved.URL)
}

func TestFollowRedirects_FailureReturnsInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	resolved := newTestResolver(0).FollowRedirects(srv.URL + "/gone")
	assert.Equal(t, srv.URL+"/gone", resolved.URL)
	assert.Zero(t, resolved.StatusCode)

	resolved = newTestResolver(0).FollowRedirects("http://[bad url")
	assert.Equal(t, "http://[bad url", resolved.URL)
}

func TestFollowRedirects_LoopBounded(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+r.URL.Path, http.StatusFound) // redirects to itself forever
	}))
	defer srv.Close()

	// must terminate and not error out of the resolver
	resolved := newTestResolver(3).FollowRedirects(srv.URL + "/loop")
	assert.NotEmpty(t, resolved.URL)
}

func TestFollowRedirects_Cached(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resolver := newTestResolver(0)
	resolver.FollowRedirects(srv.URL + "/page")
	resolver.FollowRedirects(srv.URL + "/page")
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}
