package as1

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPublic(t *testing.T) {
	for _, tc := range []struct {
		name string
		obj  Object
		want Visibility
	}{
		{"public alias", Object{"to": []any{Object{"alias": "@public"}}}, Public},
		{"unlisted alias", Object{"to": []any{Object{"alias": "@unlisted"}}}, Public},
		{"private alias", Object{"to": []any{Object{"alias": "@private"}}}, Private},
		{"named group only", Object{"to": []any{Object{"alias": "@friends"}}}, Private},
		{"unknown audience", Object{"to": []any{Object{"objectType": "unknown"}}}, Unknown},
		{"no audience defaults public", Object{}, Public},
		{"empty audience defaults public", Object{"to": []any{}}, Public},
		{
			"public wins over unknown",
			Object{"to": []any{
				Object{"objectType": "unknown"},
				Object{"alias": "@public"},
			}},
			Public,
		},
		{
			"unknown wins over private",
			Object{"to": []any{
				Object{"alias": "@private"},
				Object{"objectType": "unknown"},
			}},
			Unknown,
		},
		{
			"falls back to nested object audience",
			Object{"object": Object{"to": []any{Object{"alias": "@private"}}}},
			Private,
		},
	} {
		assert.Equal(t, tc.want, IsPublic(tc.obj), tc.name)
	}
}

func TestVisibilityString(t *testing.T) {
	assert.Equal(t, "public", Public.String())
	assert.Equal(t, "private", Private.String())
	assert.Equal(t, "unknown", Unknown.String())
}
