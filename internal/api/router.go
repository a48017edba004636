package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "seoscout/internal/api/middleware"
	"seoscout/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	Health       http.HandlerFunc
	Metrics      http.Handler
	Availability http.HandlerFunc
	Schema       http.HandlerFunc

	SubmitAudit   http.HandlerFunc
	GetAudit      http.HandlerFunc
	GetReport     http.HandlerFunc
	PaymentStatus http.HandlerFunc

	CreateKey http.HandlerFunc
	ListKeys  http.HandlerFunc
	RevokeKey http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public probes and discovery
	r.Get("/health", orNotImplemented(deps.Health))
	metrics := deps.Metrics
	if metrics == nil {
		metrics = orNotImplemented(nil)
	}
	r.Method(http.MethodGet, "/metrics", metrics)
	r.Get("/api/v1/availability", orNotImplemented(deps.Availability))
	r.Get("/api/v1/schema", orNotImplemented(deps.Schema))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope("write"))

			r.Post("/api/v1/audits", orNotImplemented(deps.SubmitAudit))
		})

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope("read"))

			r.Get("/api/v1/audits/{jobID}", orNotImplemented(deps.GetAudit))
			r.Get("/api/v1/audits/{jobID}/report", orNotImplemented(deps.GetReport))
			r.Get("/api/v1/payments/{paymentID}", orNotImplemented(deps.PaymentStatus))
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope("admin"))

			r.Post("/api/v1/keys", orNotImplemented(deps.CreateKey))
			r.Get("/api/v1/keys", orNotImplemented(deps.ListKeys))
			r.Delete("/api/v1/keys/{keyID}", orNotImplemented(deps.RevokeKey))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
