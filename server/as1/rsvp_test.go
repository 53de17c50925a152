package as1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent() Object {
	return Object{
		"objectType": "event",
		"id":         "tag:fa.ke:246",
		"url":        "http://fa.ke/event",
	}
}

func TestAddRSVPsToEvent(t *testing.T) {
	event := testEvent()
	alice := Object{"id": "tag:fa.ke:alice", "displayName": "Alice"}
	bob := Object{"id": "tag:fa.ke:bob"}
	carol := Object{"id": "tag:fa.ke:carol"}

	AddRSVPsToEvent(event, []Object{
		{"verb": "rsvp-yes", "actor": alice},
		{"verb": "rsvp-no", "actor": bob},
		{"verb": "invite", "actor": Object{"id": "tag:fa.ke:host"}, "object": carol},
	})

	assert.Equal(t, []any{alice}, event["attending"])
	assert.Equal(t, []any{bob}, event["notAttending"])
	// invites store the invitee, not the inviter
	assert.Equal(t, []any{carol}, event["invited"])
	assert.Nil(t, event["maybeAttending"])
	assert.Nil(t, event["interested"])
}

func TestAddRSVPsToEvent_UnknownVerbIgnored(t *testing.T) {
	event := testEvent()
	AddRSVPsToEvent(event, []Object{
		{"verb": "follow", "actor": Object{"id": "tag:fa.ke:x"}},
		{"actor": Object{"id": "tag:fa.ke:y"}},
	})
	for _, field := range []string{"attending", "notAttending", "maybeAttending", "interested", "invited"} {
		assert.Nil(t, event[field], field)
	}
}

func TestGetRSVPsFromEvent(t *testing.T) {
	event := testEvent()
	event["author"] = Object{"id": "tag:fa.ke:host"}
	event["attending"] = []any{Object{"id": "tag:fa.ke:alice"}}
	event["maybeAttending"] = []any{Object{"displayName": "no id here"}}
	event["invited"] = []any{Object{"id": "tag:fa.ke:carol"}}

	rsvps := GetRSVPsFromEvent(event)
	require.Len(t, rsvps, 3)

	yes := rsvps[0]
	assert.Equal(t, "activity", yes["objectType"])
	assert.Equal(t, "rsvp-yes", yes["verb"])
	assert.Equal(t, "tag:fa.ke:246_rsvp_alice", yes["id"])
	assert.Equal(t, "http://fa.ke/event#alice", yes["url"])
	assert.Equal(t, Object{"id": "tag:fa.ke:alice"}, yes["actor"])

	// no parseable entry id: no synthesized id, plain event url
	maybe := rsvps[1]
	assert.Equal(t, "rsvp-maybe", maybe["verb"])
	assert.Nil(t, maybe["id"])
	assert.Equal(t, "http://fa.ke/event", maybe["url"])

	// invite: invitee in object, event author as the acting inviter
	invite := rsvps[2]
	assert.Equal(t, "invite", invite["verb"])
	assert.Equal(t, Object{"id": "tag:fa.ke:carol"}, invite["object"])
	assert.Equal(t, Object{"id": "tag:fa.ke:host"}, invite["actor"])
}

func TestGetRSVPsFromEvent_BadID(t *testing.T) {
	assert.Nil(t, GetRSVPsFromEvent(Object{"attending": []any{Object{"id": "x"}}}))
	assert.Nil(t, GetRSVPsFromEvent(Object{
		"id":        "http://not.a.tag/uri",
		"attending": []any{Object{"id": "x"}},
	}))
}

// folding RSVPs into an event and reading them back reproduces the
// verb/actor pairing
func TestRSVPRoundTrip(t *testing.T) {
	event := testEvent()
	in := []Object{
		{"verb": "rsvp-yes", "actor": Object{"id": "tag:fa.ke:alice"}},
		{"verb": "rsvp-maybe", "actor": Object{"id": "tag:fa.ke:bob"}},
		{"verb": "rsvp-no", "actor": Object{"id": "tag:fa.ke:carol"}},
	}
	AddRSVPsToEvent(event, in)
	out := GetRSVPsFromEvent(event)
	require.Len(t, out, 3)

	got := make(map[string]string) // verb → actor id
	for _, rsvp := range out {
		actor := GetObject(rsvp, "actor")
		id, _ := actor["id"].(string)
		verb, _ := rsvp["verb"].(string)
		got[verb] = id
	}
	assert.Equal(t, map[string]string{
		"rsvp-yes":   "tag:fa.ke:alice",
		"rsvp-maybe": "tag:fa.ke:bob",
		"rsvp-no":    "tag:fa.ke:carol",
	}, got)

	// output grouped in collection priority order: yes before no before maybe
	assert.Equal(t, "rsvp-yes", out[0]["verb"])
	assert.Equal(t, "rsvp-no", out[1]["verb"])
	assert.Equal(t, "rsvp-maybe", out[2]["verb"])
}
