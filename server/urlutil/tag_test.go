package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagURI(t *testing.T) {
	assert.Equal(t, "tag:example.com:123", TagURI("example.com", "123"))
}

func TestParseTagURI(t *testing.T) {
	domain, name, ok := ParseTagURI("tag:example.com:my_event")
	assert.True(t, ok)
	assert.Equal(t, "example.com", domain)
	assert.Equal(t, "my_event", name)

	// date part is allowed and skipped
	domain, name, ok = ParseTagURI("tag:example.com,2013:ev_rsvp_alice")
	assert.True(t, ok)
	assert.Equal(t, "example.com", domain)
	assert.Equal(t, "ev_rsvp_alice", name)

	for _, bad := range []string{"", "example.com:123", "tag:nocolon", "http://example.com/x"} {
		_, _, ok := ParseTagURI(bad)
		assert.False(t, ok, "expected parse failure for %q", bad)
	}
}
