package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomain(t *testing.T) {
	assert.Equal(t, "example.com", Domain("http://example.com/x"))
	assert.Equal(t, "example.com", Domain("https://WWW.Example.Com:8080/y"))
	assert.Equal(t, "", Domain("not a url at all"))
	assert.Equal(t, "", Domain("/relative/path"))
}

func TestDomainOrParentIn(t *testing.T) {
	assert.True(t, DomainOrParentIn("me.x.y", []string{"foo", "x.y"}))
	assert.True(t, DomainOrParentIn("me.x.y", []string{"me.x.y"}))
	assert.False(t, DomainOrParentIn("me.x.y", []string{"e.x.y", "not.me.x.y", "alsonotme"}))
	assert.False(t, DomainOrParentIn("", []string{"x.y"}))
	assert.False(t, DomainOrParentIn("me.x.y", nil))
}

func TestIsReservedHost(t *testing.T) {
	for _, reserved := range []string{"localhost", "my-server", "foo.example", "server.local", ""} {
		assert.True(t, IsReservedHost(reserved), "%q should be reserved", reserved)
	}
	for _, public := range []string{"example.com", "foo.co.uk", "sub.domain.org"} {
		assert.False(t, IsReservedHost(public), "%q should not be reserved", public)
	}
}
