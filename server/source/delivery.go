package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kgrayson/streammill/server/as1"
	"github.com/kgrayson/streammill/server/telemetry"
	"github.com/kgrayson/streammill/server/urlutil"
)

// Delivery is a queued outbound HTTP sender for provider writes. Requests
// are sent one at a time in queue order, so a burst of creates reaches the
// provider staggered rather than all at once.
type Delivery struct {
	client *http.Client
	queue  chan deliveryRequest
}

type deliveryRequest struct {
	request *http.Request
	accept  func(resp *http.Response)
}

func NewDelivery(client *http.Client) *Delivery {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Delivery{
		client: client,
		queue:  make(chan deliveryRequest, 64),
	}
}

// Enqueue schedules a request for asynchronous delivery. accept, if not
// nil, is called with the response.
func (d *Delivery) Enqueue(r *http.Request, accept func(resp *http.Response)) {
	d.queue <- deliveryRequest{request: r, accept: accept}
}

// SendAndWait bypasses the queue and sends the request immediately.
func (d *Delivery) SendAndWait(r *http.Request) (*http.Response, error) {
	return d.client.Do(r)
}

// Run drains the queue until the context ends. Expected to be run in a
// goroutine.
func (d *Delivery) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-d.queue:
			resp, err := d.client.Do(msg.request)
			if err != nil {
				telemetry.Error(err, "delivering %s %s", msg.request.Method, msg.request.URL)
				telemetry.Increment("delivery_errors", 1)
				continue
			}
			telemetry.Increment("deliveries", 1)
			if msg.accept != nil {
				msg.accept(resp)
			}
			resp.Body.Close()
		}
	}
}

// WebhookSource writes canonical objects to a single configured endpoint as
// JSON. It's the minimal write-side adapter: no provider field mapping, no
// reads.
type WebhookSource struct {
	Endpoint string

	delivery *Delivery
}

func NewWebhookSource(endpoint string, delivery *Delivery) *WebhookSource {
	if delivery == nil {
		delivery = NewDelivery(nil)
	}
	return &WebhookSource{Endpoint: endpoint, delivery: delivery}
}

func (s *WebhookSource) Name() string { return "webhook" }

func (s *WebhookSource) Domain() string {
	return urlutil.Domain(s.Endpoint)
}

func (s *WebhookSource) UserURL(userID string) string { return "" }

func (s *WebhookSource) GetActivities(ctx context.Context, q ActivityQuery) (*ActivitiesResponse, error) {
	return nil, fmt.Errorf("webhook %s is write-only: %w", s.Endpoint, ErrNotImplemented)
}

func (s *WebhookSource) GetActor(ctx context.Context, userID string) (as1.Object, error) {
	return nil, fmt.Errorf("webhook %s is write-only: %w", s.Endpoint, ErrNotImplemented)
}

func (s *WebhookSource) UserToActor(user map[string]any) as1.Object {
	actor := as1.Object{"objectType": "person"}
	for _, key := range []string{"id", "displayName", "username", "url", "image"} {
		if v, ok := user[key]; ok {
			actor[key] = v
		}
	}
	return actor
}

// Create posts the object to the endpoint and waits for the response. A
// non-2xx status is reported through the CreationResult, not as an error.
func (s *WebhookSource) Create(ctx context.Context, obj as1.Object) (*CreationResult, error) {
	resp, err := s.post(ctx, obj)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &CreationResult{
			Abort:      true,
			ErrorPlain: fmt.Sprintf("endpoint returned status %d", resp.StatusCode),
		}, nil
	}
	return &CreationResult{
		Content:     obj,
		Description: fmt.Sprintf("delivered %s to %s", as1.ObjectType(obj), s.Endpoint),
	}, nil
}

// Delete posts a delete activity referencing the id.
func (s *WebhookSource) Delete(ctx context.Context, id string) error {
	resp, err := s.post(ctx, as1.Object{
		"objectType": "activity",
		"verb":       "delete",
		"object":     id,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("deleting %s: endpoint returned status %d", id, resp.StatusCode)
	}
	return nil
}

func (s *WebhookSource) post(ctx context.Context, obj as1.Object) (*http.Response, error) {
	body, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("marshaling object: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/stream+json")
	return s.delivery.SendAndWait(req)
}
