package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"server/internal/http/handlers"
	"server/internal/infra"
	"server/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config, logger zerolog.Logger) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP, chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))

	// Health
	r.Get("/v1/healthz", app.Health)

	r.Get("/v1/credits", app.CreditsGet)
	r.Get("/v1/prompts/random", app.PromptRandom)
	r.Post("/v1/generate", app.Generate)

	r.Route("/v1/payments", func(r chi.Router) {
		r.Post("/", app.PaymentsCreate)
		r.Route("/{payment_id}", func(r chi.Router) {
			r.Get("/", app.PaymentsGet)
			r.Post("/select", app.PaymentsSelect)
			r.Post("/continue", app.PaymentsContinue)
			r.Post("/confirm", app.PaymentsConfirm)
			r.Post("/retry", app.PaymentsRetry)
			r.Delete("/", app.PaymentsDismiss)
		})
	})

	return r
}
