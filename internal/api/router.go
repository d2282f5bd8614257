// Package api wires the HTTP surface: the chi router, middleware stack and
// request handlers.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/arjunks/datahound/internal/api/middleware"
	"github.com/arjunks/datahound/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	CreateDatasetHandler http.HandlerFunc
	ListDatasetsHandler  http.HandlerFunc
	GetDatasetHandler    http.HandlerFunc
	DeleteDatasetHandler http.HandlerFunc

	ProfileHandler      http.HandlerFunc
	ProfileAsyncHandler http.HandlerFunc
	PollJobHandler      http.HandlerFunc

	CreateKeyHandler http.HandlerFunc
	ListKeysHandler  http.HandlerFunc
	RevokeKeyHandler http.HandlerFunc
}

// NewRouter builds the chi router with the middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/datasets", orNotImplemented(deps.CreateDatasetHandler))
		r.Get("/api/v1/datasets", orNotImplemented(deps.ListDatasetsHandler))
		r.Get("/api/v1/datasets/{datasetID}", orNotImplemented(deps.GetDatasetHandler))
		r.Delete("/api/v1/datasets/{datasetID}", orNotImplemented(deps.DeleteDatasetHandler))

		r.Post("/api/v1/profile", orNotImplemented(deps.ProfileHandler))
		r.Post("/api/v1/profile/async", orNotImplemented(deps.ProfileAsyncHandler))
		r.Get("/api/v1/profile/{jobID}", orNotImplemented(deps.PollJobHandler))

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope("admin"))

			r.Post("/api/v1/admin/keys", orNotImplemented(deps.CreateKeyHandler))
			r.Get("/api/v1/admin/keys", orNotImplemented(deps.ListKeysHandler))
			r.Delete("/api/v1/admin/keys/{keyID}", orNotImplemented(deps.RevokeKeyHandler))
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
