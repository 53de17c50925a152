package as1

import (
	"fmt"

	"github.com/kgrayson/streammill/server/urlutil"
)

// rsvpFields maps each RSVP verb to the event collection its actor belongs
// in. The order is part of the contract: GetRSVPsFromEvent emits groups in
// exactly this sequence, so keep it an ordered list, not a map.
var rsvpFields = []struct {
	Verb  string
	Field string
}{
	{"rsvp-yes", "attending"},
	{"rsvp-no", "notAttending"},
	{"rsvp-maybe", "maybeAttending"},
	{"rsvp-interested", "interested"},
	{"invite", "invited"},
}

func rsvpFieldForVerb(verb string) string {
	for _, vf := range rsvpFields {
		if vf.Verb == verb {
			return vf.Field
		}
	}
	return ""
}

// AddRSVPsToEvent folds RSVP activities into the event's attendance
// collections, in place, preserving input order. The RSVP's actor is
// appended, except for invites, which append the invitee from the object
// field. RSVPs with unrecognized verbs are dropped silently.
func AddRSVPsToEvent(event Object, rsvps []Object) {
	for _, rsvp := range rsvps {
		verb, _ := rsvp["verb"].(string)
		field := rsvpFieldForVerb(verb)
		if field == "" {
			continue
		}
		key := "actor"
		if field == "invited" {
			key = "object"
		}
		event[field] = append(getList(event, field), rsvp[key])
	}
}

// GetRSVPsFromEvent synthesizes RSVP activities from the event's attendance
// collections, the inverse of AddRSVPsToEvent. The event id must be a
// parseable tag URI; otherwise no RSVPs are returned. Output is grouped by
// verb in the fixed collection order, then by each collection's own order.
//
// When an entry's own id is a tag URI, the RSVP gets a deterministic id of
// the form tag:DOMAIN:EVENTID_rsvp_ACTORID and, if the event has a url, a
// url of EVENTURL#ACTORID. Invites report the event author as the acting
// inviter.
func GetRSVPsFromEvent(event Object) []Object {
	id, _ := event["id"].(string)
	if id == "" {
		return nil
	}
	domain, eventID, ok := urlutil.ParseTagURI(id)
	if !ok {
		return nil
	}

	url, _ := event["url"].(string)
	author := event["author"]

	var rsvps []Object
	for _, vf := range rsvpFields {
		for _, entry := range getList(event, vf.Field) {
			key := "actor"
			if vf.Verb == "invite" {
				key = "object"
			}
			rsvp := Object{
				"objectType": "activity",
				"verb":       vf.Verb,
				key:          entry,
			}
			if url != "" {
				rsvp["url"] = url
			}

			if o, isRecord := asMap(entry); isRecord {
				if entryID, _ := o["id"].(string); entryID != "" {
					if _, actorID, parsed := urlutil.ParseTagURI(entryID); parsed {
						rsvp["id"] = urlutil.TagURI(domain, fmt.Sprintf("%s_rsvp_%s", eventID, actorID))
						if url != "" {
							rsvp["url"] = url + "#" + actorID
						}
					}
				}
			}

			if vf.Verb == "invite" && author != nil {
				rsvp["actor"] = author
			}

			rsvps = append(rsvps, rsvp)
		}
	}
	return rsvps
}
