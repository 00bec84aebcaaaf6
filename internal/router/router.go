package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"moschee-backend/internal/handlers"
	"moschee-backend/internal/middleware"
	"moschee-backend/internal/websocket"
)

func New(
	healthHandler *handlers.HealthHandler,
	contentHandler *handlers.ContentHandler,
	assistantHandler *handlers.AssistantHandler,
	messageLimiter *middleware.RateLimiter,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	r.Get("/health", healthHandler.Health)

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Site Content ────
		r.Get("/prayer-times", contentHandler.PrayerTimes)

		r.Route("/news", func(r chi.Router) {
			r.Get("/", contentHandler.ListNews)
			r.Get("/{id}", contentHandler.GetNews)
		})

		r.Route("/donations", func(r chi.Router) {
			r.Get("/options", contentHandler.DonationOptions)
			r.Post("/intents", contentHandler.CreateDonationIntent)
		})

		// ──── Assistant Widget ────
		r.Route("/assistant/sessions", func(r chi.Router) {
			r.Post("/", assistantHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", assistantHandler.Get)
				r.Delete("/", assistantHandler.Delete)
				r.Post("/open", assistantHandler.Open)
				r.Post("/close", assistantHandler.Close)
				r.Post("/toggle", assistantHandler.Toggle)
				r.With(messageLimiter.Middleware).Post("/messages", assistantHandler.Submit)

				// ──── WebSocket ────
				r.Get("/ws", wsHub.HandleWebSocket)
			})
		})
	})

	return r
}
