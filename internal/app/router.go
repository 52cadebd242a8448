package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/HttpsPratik/new-life/internal/accounts"
	"github.com/HttpsPratik/new-life/internal/donations"
	"github.com/HttpsPratik/new-life/internal/feedback"
	"github.com/HttpsPratik/new-life/internal/missing"
	"github.com/HttpsPratik/new-life/internal/observability"
	"github.com/HttpsPratik/new-life/internal/pets"
	"github.com/HttpsPratik/new-life/internal/rescue"
	"github.com/HttpsPratik/new-life/internal/terms"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthMiddleware   *accounts.AuthMiddleware
	AccountsHandler  *accounts.Handler
	TermsHandler     *terms.Handler
	PetsHandler      *pets.Handler
	MissingHandler   *missing.Handler
	RescueHandler    *rescue.Handler
	DonationsHandler *donations.Handler
	FeedbackHandler  *feedback.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	// Bearer tokens resolve to principals globally; each route group
	// decides whether an unauthenticated caller is acceptable.
	if params.AuthMiddleware != nil {
		r.Use(params.AuthMiddleware.Authenticate)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(AuthRateLimiter(params.Config))
			params.AccountsHandler.MountRoutes(r)
		})
		if params.TermsHandler != nil {
			r.Route("/terms", params.TermsHandler.MountRoutes)
		}
		if params.PetsHandler != nil {
			r.Route("/pets", params.PetsHandler.MountRoutes)
		}
		if params.MissingHandler != nil {
			r.Route("/missing-pets", params.MissingHandler.MountRoutes)
		}
		if params.RescueHandler != nil {
			r.Route("/rescue-contacts", params.RescueHandler.MountRoutes)
		}
		if params.DonationsHandler != nil {
			r.Route("/donations", params.DonationsHandler.MountRoutes)
		}
		if params.FeedbackHandler != nil {
			r.Route("/feedback", params.FeedbackHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
