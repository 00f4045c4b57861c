package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	// RateLimit is requests per second per client IP; zero disables it.
	RateLimit float64
	RateBurst int
	// TrustProxy takes the client IP from X-Forwarded-For and X-Real-IP.
	// Enable it only behind a proxy that overwrites those headers, otherwise
	// clients can pick their own rate limit bucket.
	TrustProxy bool
}

func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(accessLog(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(newIPRateLimiter(cfg.RateLimit, cfg.RateBurst, h.logger).Middleware)
		}

		r.Get("/catalog", h.Catalog)
		r.Post("/estimate", h.Estimate)
		r.Get("/ratecard.xlsx", h.RateCard)

		r.Post("/cart", h.NewCart)
		r.Route("/cart/{sessionId}", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Put("/context", h.SetContext)
			r.Post("/services/{id}/toggle", h.ToggleService)
			r.Post("/addons/{id}/toggle", h.ToggleAddon)
		})

		r.Post("/leads", h.CreateLead)
		r.Post("/otp/send", h.SendOTP)
		r.Post("/otp/verify", h.VerifyOTP)
		r.Post("/waitlist", h.JoinWaitlist)
	})

	return r
}
