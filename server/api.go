package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/kgrayson/streammill/server/as1"
	"github.com/kgrayson/streammill/server/source"
	"github.com/kgrayson/streammill/server/telemetry"
)

const contentType = "application/stream+json"

// handleDiscover runs original-post discovery over a posted activity.
// Query params: domains (comma-separated allowlist, overrides config) and
// redirects (redirect fetch budget, 0 disables probing).
func (s *ActivityService) handleDiscover(w http.ResponseWriter, r *http.Request) {
	var activity as1.Object
	if !decodeBody(w, r, &activity) {
		return
	}

	opts := as1.DefaultDiscoveryOptions()
	opts.Domains = s.Config.Discovery.Domains
	opts.IncludeReservedHosts = s.Config.Discovery.IncludeReservedHosts
	opts.MaxRedirectFetches = s.Config.Discovery.MaxRedirectFetches
	opts.Resolver = s.resolver

	if domains := r.URL.Query().Get("domains"); domains != "" {
		opts.Domains = strings.Split(domains, ",")
	}
	if redirects := r.URL.Query().Get("redirects"); redirects != "" {
		n, err := strconv.Atoi(redirects)
		if err != nil {
			http.Error(w, "redirects must be an integer", http.StatusBadRequest)
			return
		}
		if n == 0 {
			opts.Resolver = nil
		} else {
			opts.MaxRedirectFetches = n
		}
	}

	originals, mentions := as1.OriginalPostDiscovery(activity, opts)
	writeJSON(w, map[string]any{
		"originals": sortedKeys(originals),
		"mentions":  sortedKeys(mentions),
	})
}

// handleDiff reports whether two revisions differ meaningfully.
func (s *ActivityService) handleDiff(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Before as1.Object `json:"before"`
		After  as1.Object `json:"after"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	writeJSON(w, map[string]any{
		"changed": as1.ActivityChanged(body.Before, body.After),
	})
}

// handleRSVPs synthesizes RSVP activities from a posted event.
func (s *ActivityService) handleRSVPs(w http.ResponseWriter, r *http.Request) {
	var event as1.Object
	if !decodeBody(w, r, &event) {
		return
	}
	rsvps := as1.GetRSVPsFromEvent(event)
	if rsvps == nil {
		rsvps = []as1.Object{}
	}
	writeJSON(w, rsvps)
}

// handleEvent folds posted RSVPs into an event's attendance collections and
// returns the updated event.
func (s *ActivityService) handleEvent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Event as1.Object   `json:"event"`
		RSVPs []as1.Object `json:"rsvps"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Event == nil {
		http.Error(w, "missing event", http.StatusBadRequest)
		return
	}
	as1.AddRSVPsToEvent(body.Event, body.RSVPs)
	writeJSON(w, body.Event)
}

// handleMerge merges new records into an object field by id and returns the
// updated object.
func (s *ActivityService) handleMerge(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Object as1.Object   `json:"object"`
		Field  string       `json:"field"`
		New    []as1.Object `json:"new"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Object == nil || body.Field == "" {
		http.Error(w, "missing object or field", http.StatusBadRequest)
		return
	}
	if err := as1.MergeByID(body.Object, body.Field, body.New); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, body.Object)
}

// handleVisibility classifies a posted object's audience.
func (s *ActivityService) handleVisibility(w http.ResponseWriter, r *http.Request) {
	var obj as1.Object
	if !decodeBody(w, r, &obj) {
		return
	}
	writeJSON(w, map[string]any{
		"visibility": as1.IsPublic(obj).String(),
	})
}

// handleFeed fetches a feed URL and returns its items as canonical post
// activities.
func (s *ActivityService) handleFeed(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL   string `json:"url"`
		Count int    `json:"count"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.URL == "" {
		http.Error(w, "missing url", http.StatusBadRequest)
		return
	}

	src := source.NewFeedSource(body.URL, nil)
	resp, err := src.GetActivities(r.Context(), source.ActivityQuery{Count: body.Count})
	if err != nil {
		telemetry.Error(err, "fetching feed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, resp)
}

// handleCreate writes a posted object out through the configured webhook.
func (s *ActivityService) handleCreate(w http.ResponseWriter, r *http.Request) {
	if s.webhook == nil {
		http.Error(w, "no webhook endpoint configured", http.StatusServiceUnavailable)
		return
	}
	var obj as1.Object
	if !decodeBody(w, r, &obj) {
		return
	}
	result, err := s.webhook.Create(r.Context(), obj)
	if err != nil {
		telemetry.Error(err, "creating via webhook")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if result.Abort {
		http.Error(w, result.ErrorPlain, http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]any{"description": result.Description})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		telemetry.Error(err, "marshaling response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(jsonBytes)
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
