package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/modeler/internal/metrics"
	"github.com/starford/modeler/internal/modeler"
	"github.com/starford/modeler/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// m, if non-nil, receives per-route request counts and latencies.
// broker, if non-nil, is told about group changes and mounted at GET /events
// inside the auth group.
func NewRouter(svc *modeler.Service, authEnabled bool, token string, m *metrics.Metrics, broker *sse.Broker) chi.Router {
	h := NewHandler(svc)
	if broker != nil {
		h.events = broker
	}

	r := chi.NewRouter()
	if m != nil {
		r.Use(MetricsMiddleware(m))
	}
	r.Use(AuthMiddleware(authEnabled, token))

	// Annotation groups.
	r.Get("/groups", h.ListGroups)
	r.Post("/groups", h.CreateGroup)
	r.Get("/groups/{name}", h.GetGroup)
	r.Put("/groups/{name}", h.SaveGroup)
	r.Delete("/groups/{name}", h.DeleteGroup)

	// Data source connections.
	r.Post("/connections", h.StoreConnection)

	// Model builds.
	r.Post("/models", h.BuildModel)

	// Editor metadata.
	r.Get("/annotation-kinds", h.AnnotationKinds)

	// SSE endpoint (protected by same auth middleware).
	if broker != nil {
		r.Get("/events", broker.ServeHTTP)
	}

	return r
}
