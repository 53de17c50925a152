package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgrayson/streammill/server/as1"
)

func TestWebhookSource_Create(t *testing.T) {
	received := make(chan as1.Object, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/stream+json", r.Header.Get("Content-Type"))
		var obj as1.Object
		require.NoError(t, json.NewDecoder(r.Body).Decode(&obj))
		received <- obj
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	src := NewWebhookSource(srv.URL, nil)
	result, err := src.Create(context.Background(), as1.Object{
		"objectType": "comment",
		"content":    "nice post",
	})
	require.NoError(t, err)
	assert.False(t, result.Abort)
	assert.Contains(t, result.Description, "comment")

	obj := <-received
	assert.Equal(t, "nice post", obj["content"])
}

func TestWebhookSource_CreateRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	result, err := NewWebhookSource(srv.URL, nil).Create(
		context.Background(), as1.Object{"content": "x"})
	require.NoError(t, err)
	assert.True(t, result.Abort)
	assert.Contains(t, result.ErrorPlain, "403")
}

func TestWebhookSource_Delete(t *testing.T) {
	var got as1.Object
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, NewWebhookSource(srv.URL, nil).Delete(context.Background(), "tag:x:1"))
	assert.Equal(t, "delete", got["verb"])
	assert.Equal(t, "tag:x:1", got["object"])
}

func TestWebhookSource_ReadsUnsupported(t *testing.T) {
	src := NewWebhookSource("https://example.com/hook", nil)
	_, err := src.GetActivities(context.Background(), ActivityQuery{})
	assert.ErrorIs(t, err, ErrNotImplemented)
	_, err = src.GetActor(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestDelivery_QueueDrains(t *testing.T) {
	done := make(chan struct{}, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		done <- struct{}{}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	delivery := NewDelivery(srv.Client())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go delivery.Run(ctx)

	for i := 0; i < 2; i++ {
		req, err := http.NewRequest(http.MethodPost, srv.URL, nil)
		require.NoError(t, err)
		delivery.Enqueue(req, nil)
	}

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("queued request never delivered")
		}
	}
}
