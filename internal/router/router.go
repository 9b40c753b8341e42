package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/accmint-dev/accmint/internal/middleware"
	"github.com/accmint-dev/accmint/internal/middleware/metrics"
	rl "github.com/accmint-dev/accmint/internal/middleware/ratelimiter"
	"github.com/accmint-dev/accmint/internal/setup"
)

// New creates the chi router with all routes.
// Endpoints that trigger upstream code dispatch get the tightest limits:
// every create/batch call can burn a single-use verification code.
func New(deps *setup.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	h := deps.Handler
	auth := deps.AuthMiddleware

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.With(mw.RateLimit(rl.New(1, 3, 1*time.Hour), mw.GetIP)).
			Post("/token", h.Token)

		v1.Group(func(authed chi.Router) {
			authed.Use(auth.NeedAuth())

			// code-dispatching endpoints: 1 per 10s per client, plus a
			// global cap shared by everyone
			dispatch := authed.With(
				mw.RateLimit(rl.New(0.1, 1, 1*time.Hour), mw.GetUserIDFromContext),
				mw.GlobalRateLimit(rl.New(10, 10, 1*time.Hour)),
			)
			dispatch.Post("/accounts", h.Create)
			dispatch.Post("/batches", h.StartBatch)

			// verification: stricter per client to slow code brute force
			verify := authed.With(
				mw.RateLimit(rl.New(5.0/600.0, 5, 1*time.Hour), mw.GetUserIDFromContext),
			)
			verify.Post("/accounts/verify", h.Verify)
			verify.Post("/batches/{batch}/verify", h.VerifyBatch)

			authed.Get("/accounts", h.List)
			authed.Get("/batches/{batch}", h.BatchStatus)
		})
	})

	// avoid 404s for preflight requests
	r.MethodFunc(http.MethodOptions, "/*", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}
