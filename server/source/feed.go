package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"github.com/kgrayson/streammill/server/as1"
	"github.com/kgrayson/streammill/server/telemetry"
	"github.com/kgrayson/streammill/server/urlutil"
)

// FeedSource reads an RSS, Atom, or JSON feed as a stream of canonical post
// activities. Feeds are read-only: Create and Delete always fail.
type FeedSource struct {
	FeedURL string

	client *http.Client
	parser *gofeed.Parser
}

func NewFeedSource(feedURL string, client *http.Client) *FeedSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &FeedSource{
		FeedURL: feedURL,
		client:  client,
		parser:  gofeed.NewParser(),
	}
}

func (s *FeedSource) Name() string { return "feed" }

func (s *FeedSource) Domain() string { return urlutil.Domain(s.FeedURL) }

// UserURL returns the feed's site URL; feeds have no per-user profiles.
func (s *FeedSource) UserURL(userID string) string {
	return s.FeedURL
}

func (s *FeedSource) GetActivities(ctx context.Context, q ActivityQuery) (*ActivitiesResponse, error) {
	feed, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	activities := make([]as1.Object, 0, len(feed.Items))
	for _, item := range feed.Items {
		activity := s.itemToActivity(feed, item)
		if q.ActivityID != "" && activity["id"] != q.ActivityID {
			continue
		}
		PostprocessActivity(activity)
		activities = append(activities, activity)
	}

	if q.StartIndex > 0 {
		if q.StartIndex >= len(activities) {
			activities = nil
		} else {
			activities = activities[q.StartIndex:]
		}
	}
	if q.Count > 0 && len(activities) > q.Count {
		activities = activities[:q.Count]
	}

	telemetry.Increment("feed_fetches", 1)
	return NewActivitiesResponse(activities, q), nil
}

func (s *FeedSource) GetActor(ctx context.Context, userID string) (as1.Object, error) {
	feed, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	actor := as1.Object{
		"objectType":  "person",
		"displayName": feed.Title,
		"url":         feed.Link,
	}
	if feed.Link != "" {
		actor["id"] = urlutil.TagURI(s.Domain(), feed.Link)
	}
	if feed.Author != nil && feed.Author.Name != "" {
		actor["displayName"] = feed.Author.Name
	}
	return actor, nil
}

// UserToActor converts a feed author record ({name, email, url}) to a
// canonical person.
func (s *FeedSource) UserToActor(user map[string]any) as1.Object {
	actor := as1.Object{"objectType": "person"}
	if name, _ := user["name"].(string); name != "" {
		actor["displayName"] = name
	}
	if email, _ := user["email"].(string); email != "" {
		actor["email"] = email
	}
	if url, _ := user["url"].(string); url != "" {
		actor["url"] = url
		actor["id"] = urlutil.TagURI(s.Domain(), url)
	}
	return actor
}

func (s *FeedSource) Create(ctx context.Context, obj as1.Object) (*CreationResult, error) {
	return nil, fmt.Errorf("feed %s is read-only: %w", s.FeedURL, ErrNotImplemented)
}

func (s *FeedSource) Delete(ctx context.Context, id string) error {
	return fmt.Errorf("feed %s is read-only: %w", s.FeedURL, ErrNotImplemented)
}

func (s *FeedSource) fetch(ctx context.Context) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.FeedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building feed request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed %s: %w", s.FeedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching feed %s: status %d", s.FeedURL, resp.StatusCode)
	}
	feed, err := s.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", s.FeedURL, err)
	}
	return feed, nil
}

func (s *FeedSource) itemToActivity(feed *gofeed.Feed, item *gofeed.Item) as1.Object {
	domain := s.Domain()

	id := item.GUID
	if id == "" {
		id = item.Link
	}
	if id == "" {
		// no stable identity in the feed at all; make one up
		id = urlutil.TagURI(domain, uuid.NewString())
	}

	content := item.Content
	if content == "" {
		content = item.Description
	}

	obj := as1.Object{
		"objectType": "article",
		"id":         id,
		"content":    content,
	}
	if item.Title != "" {
		obj["displayName"] = item.Title
	} else {
		obj["objectType"] = "note"
	}
	if item.Link != "" {
		obj["url"] = item.Link
	}
	if published := itemTime(item.PublishedParsed, item.Published); !published.IsZero() {
		obj["published"] = published.UTC().Format(time.RFC3339)
	}
	if updated := itemTime(item.UpdatedParsed, item.Updated); !updated.IsZero() {
		obj["updated"] = updated.UTC().Format(time.RFC3339)
	}

	if len(item.Categories) > 0 {
		tags := make([]any, 0, len(item.Categories))
		for _, category := range item.Categories {
			tags = append(tags, as1.Object{
				"objectType":  "hashtag",
				"displayName": category,
			})
		}
		obj["tags"] = tags
	}

	activity := as1.Object{
		"objectType": "activity",
		"verb":       "post",
		"id":         id,
		"object":     obj,
	}
	if item.Link != "" {
		activity["url"] = item.Link
	}

	author := item.Author
	if author == nil {
		author = feed.Author
	}
	if author != nil {
		actor := s.UserToActor(map[string]any{
			"name":  author.Name,
			"email": author.Email,
		})
		activity["actor"] = actor
		obj["author"] = actor
	}

	return activity
}

// itemTime picks the parsed feed timestamp, falling back to fuzzy parsing
// for the mangled date formats some feeds publish.
func itemTime(parsed *time.Time, raw string) time.Time {
	if parsed != nil {
		return *parsed
	}
	if raw == "" {
		return time.Time{}
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		telemetry.Trace("unparseable feed date [%s]", raw)
		return time.Time{}
	}
	return t
}
