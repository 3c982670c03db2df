package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"delivery-dispatch/internal/http/handlers"
	"delivery-dispatch/internal/http/middleware"
	"delivery-dispatch/internal/http/middleware/ratelimit"
	"delivery-dispatch/internal/logx"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger    logx.Logger
	Base      *handlers.Handlers
	Dispatch  *handlers.DispatchHandler
	Driver    *handlers.DriverHandler
	Progress  *handlers.ProgressHandler
	RateLimit *ratelimit.Middleware
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Observability(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(10 * time.Second))
	if d.RateLimit != nil {
		r.Use(d.RateLimit.Handler())
	}
	r.Use(middleware.WithIdentity)

	r.Get("/ping", d.Base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(d.Base.HealthcheckHead))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/deliveries", func(r chi.Router) {
			r.Post("/auto-assign", d.Dispatch.AutoAssign)
			r.Post("/assign", d.Dispatch.Assign)
			r.Put("/{id}/status", d.Progress.UpdateStatus)
			r.Get("/{orderId}/track", d.Progress.Track)
		})
		r.Route("/drivers", func(r chi.Router) {
			r.Post("/", d.Driver.Register)
			r.Put("/status", d.Driver.UpdateStatus)
			r.Get("/available", d.Driver.Available)
		})
	})

	r.NotFound(http.HandlerFunc(d.Base.NotFound))

	return r
}
