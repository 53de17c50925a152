// Package source defines the contract every provider adapter implements:
// fetch provider-native data as canonical activity records, and perform
// minimal writes (posts, comments, reactions, RSVPs) back to the provider.
// Adapters hold only their own configuration; there is no shared state.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/kgrayson/streammill/server/as1"
)

// group ids for GetActivities, per the OpenSocial ActivityStreams REST API
const (
	Self    = "@self"
	All     = "@all"
	Friends = "@friends"
	Search  = "@search"
	Blocks  = "@blocks"
)

// ErrNotImplemented is returned for operations a source doesn't support,
// eg writing to a read-only feed.
var ErrNotImplemented = errors.New("source does not support this operation")

// Source is a single social-network provider. Implementations convert
// provider-native records to canonical activity objects on the way in and
// back on the way out; nothing past this interface knows provider schemas.
type Source interface {
	// Name is the provider's human-readable name.
	Name() string
	// Domain is the provider's canonical domain, used to synthesize tag
	// URIs and classify original-post links.
	Domain() string
	// UserURL returns the profile URL for a user id.
	UserURL(userID string) string

	// GetActivities fetches activities as canonical records.
	GetActivities(ctx context.Context, q ActivityQuery) (*ActivitiesResponse, error)
	// GetActor fetches a user as a canonical actor record. Empty userID
	// means the default user.
	GetActor(ctx context.Context, userID string) (as1.Object, error)
	// UserToActor converts a provider-native user record to a canonical
	// actor record.
	UserToActor(user map[string]any) as1.Object

	// Create writes a new post, comment, reaction, or RSVP to the provider.
	Create(ctx context.Context, obj as1.Object) (*CreationResult, error)
	// Delete removes a previously created object by id.
	Delete(ctx context.Context, id string) error
}

// ActivityQuery selects and pages activities for Source.GetActivities.
type ActivityQuery struct {
	UserID     string
	GroupID    string // @self, @all, @friends, @search
	ActivityID string
	Search     string // only with GroupID @search
	StartIndex int
	Count      int // 0 means no limit
	ETag       string

	// these usually cost extra provider round trips
	FetchReplies  bool
	FetchLikes    bool
	FetchShares   bool
	FetchMentions bool
}

// ActivitiesResponse is the paging envelope around fetched activities.
type ActivitiesResponse struct {
	Items        []as1.Object `json:"items"`
	StartIndex   int          `json:"startIndex"`
	ItemsPerPage int          `json:"itemsPerPage"`
	TotalResults *int         `json:"totalResults"`
	Filtered     bool         `json:"filtered"`
	Sorted       bool         `json:"sorted"`
	UpdatedSince bool         `json:"updatedSince"`
	ETag         string       `json:"etag,omitempty"`
}

// NewActivitiesResponse wraps items in the standard envelope. TotalResults
// is left unset for single-activity queries, where it can't be computed.
func NewActivitiesResponse(items []as1.Object, q ActivityQuery) *ActivitiesResponse {
	resp := &ActivitiesResponse{
		Items:        items,
		StartIndex:   q.StartIndex,
		ItemsPerPage: len(items),
	}
	if q.ActivityID == "" {
		total := len(items)
		resp.TotalResults = &total
	}
	return resp
}

// CreationResult describes the outcome of Create: what was written, or why
// nothing could be. Abort means stop trying rather than fall through to
// other content.
type CreationResult struct {
	Content     as1.Object
	Description string
	Abort       bool
	ErrorPlain  string
	ErrorHTML   string
}

// maps object type to a friendlier noun for titles
var typeDisplayNames = map[string]string{
	"image":   "photo",
	"product": "gift",
}

// maps verb to past-tense display form for titles
var displayVerbs = map[string]string{
	"give":   "gave",
	"like":   "likes",
	"listen": "listened to",
	"play":   "watched",
	"read":   "read",
	"share":  "shared",
}

// PostprocessActivity does provider-independent cleanup of a fetched
// activity, in place: processes the nested object and synthesizes a title
// when the provider didn't give one.
func PostprocessActivity(activity as1.Object) {
	obj := as1.GetObject(activity, "object")
	if len(obj) == 0 {
		return
	}
	PostprocessObject(obj)

	if title, _ := activity["title"].(string); title != "" {
		return
	}
	verbName, _ := activity["verb"].(string)
	verb := displayVerbs[verbName]
	objName, _ := obj["displayName"].(string)
	objType := typeDisplayNames[as1.ObjectType(obj)]

	switch {
	case objName != "" && verb == "":
		activity["title"] = objName
	case verb != "" && (objName != "" || objType != ""):
		name := objName
		if name == "" {
			name = "a " + objType
		}
		app, _ := as1.GetObject(activity, "generator")["displayName"].(string)
		if app != "" {
			app = " on " + app
		}
		activity["title"] = fmt.Sprintf("%s %s %s%s.",
			as1.ActorName(as1.GetObject(activity, "actor")), verb, name, app)
	}
}

// PostprocessObject does provider-independent cleanup of an object, in
// place: fills in location.position as an ISO 6709 string from latitude and
// longitude.
func PostprocessObject(obj as1.Object) {
	loc := as1.GetObject(obj, "location")
	lat, latOK := numeric(loc["latitude"])
	lon, lonOK := numeric(loc["longitude"])
	if position, _ := loc["position"].(string); position == "" && latOK && lonOK {
		loc["position"] = fmt.Sprintf("%+010.6f%+011.6f/", lat, lon)
	}
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
