package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/kgrayson/streammill/server/fetch"
	"github.com/kgrayson/streammill/server/source"
	"github.com/kgrayson/streammill/server/telemetry"
)

// ActivityService is the HTTP front end over the normalization core:
// original-post discovery, revision diffing, RSVP reconciliation, and feed
// ingestion, all speaking canonical activity JSON.
type ActivityService struct {
	Config Config
	Server http.Server

	router   *mux.Router
	resolver *fetch.Resolver
	delivery *source.Delivery
	webhook  *source.WebhookSource
}

// NewService wires the service from its config.
func NewService(cfg Config) *ActivityService {
	svc := &ActivityService{
		Config: cfg,
		router: mux.NewRouter(),
		resolver: fetch.NewResolver(fetch.Options{
			CacheSize: cfg.Discovery.CacheSize,
			CacheTTL:  time.Duration(cfg.Discovery.CacheTTLSeconds) * time.Second,
			UserAgent: cfg.Server.UserAgent,
		}),
		delivery: source.NewDelivery(nil),
	}

	if cfg.Webhook.Endpoint != "" {
		svc.webhook = source.NewWebhookSource(cfg.Webhook.Endpoint, svc.delivery)
	}

	svc.addHandlers()

	svc.Server = http.Server{
		Handler:      svc.router,
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
	}
	return svc
}

func (s *ActivityService) addHandlers() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/discover", logged(s.handleDiscover)).Methods("POST")
	api.HandleFunc("/diff", logged(s.handleDiff)).Methods("POST")
	api.HandleFunc("/rsvps", logged(s.handleRSVPs)).Methods("POST")
	api.HandleFunc("/event", logged(s.handleEvent)).Methods("POST")
	api.HandleFunc("/merge", logged(s.handleMerge)).Methods("POST")
	api.HandleFunc("/visibility", logged(s.handleVisibility)).Methods("POST")
	api.HandleFunc("/feed", logged(s.handleFeed)).Methods("POST")
	api.HandleFunc("/create", logged(s.handleCreate)).Methods("POST")
}

// ListenAndServe starts the delivery queue and blocks serving HTTP.
func (s *ActivityService) ListenAndServe(ctx context.Context) error {
	go s.delivery.Run(ctx)
	telemetry.Log("http listener starting on port %d", s.Config.Server.Port)
	return s.Server.ListenAndServe()
}

// Stop shuts the HTTP server down gracefully.
func (s *ActivityService) Stop(ctx context.Context) {
	if err := s.Server.Shutdown(ctx); err != nil {
		telemetry.Error(err, "shutting down http server")
	}
	telemetry.LogCounters()
}

func (s *ActivityService) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// logged wraps a handler with request logging and a hit counter.
func logged(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		telemetry.Request(r, "api")
		telemetry.Increment("api_requests", 1)
		handler(w, r)
	}
}
