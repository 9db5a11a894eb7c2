package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"imagestudio/internal/http/handlers"
	"imagestudio/internal/infra"
	"imagestudio/internal/middleware"
)

// NewRouter assembles the API surface around the session handlers.
func NewRouter(app *handlers.App, cfg *infra.Config) stdhttp.Handler {
	r := chi.NewRouter()

	r.Use(
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.RequestID,
		middleware.Logger(app.Log),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.I18N("en"),
	)

	r.Get("/v1/healthz", app.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))

		r.Route("/v1/sessions", func(r chi.Router) {
			r.Post("/", app.SessionCreate)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", app.SessionGet)
				r.Delete("/", app.SessionDelete)
				r.Post("/image", app.SessionSelectImage)
				r.Put("/instruction", app.SessionSetInstruction)
				r.Post("/submit", app.SessionSubmit)
				r.Post("/reset", app.SessionReset)
			})
		})

		r.Get(handlers.PreviewPathPrefix+"{key}", app.PreviewGet)
	})

	return r
}
