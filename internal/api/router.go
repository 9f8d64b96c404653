package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions collects the handlers mounted on the router. WebSocket is
// optional; nil leaves /ws unmounted.
type RouterOptions struct {
	Handler     *Handler
	BetHandler  *BetHandler
	WebSocket   http.Handler
	CORSOrigins []string
}

// NewRouter builds the chi router with standard middleware and all routes.
func NewRouter(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", opts.Handler.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		// Live fetches can block on a slow provider, so these routes skip
		// the short default timeout.
		r.Group(func(r chi.Router) {
			r.Get("/live", opts.Handler.GetLive)
			r.Get("/schedule", opts.Handler.GetSchedule)
			r.Get("/matches/find", opts.Handler.FindMatch)
			r.Get("/matches/{matchID}", opts.Handler.GetMatch)
			r.Get("/bets/{betID}/live", opts.BetHandler.GetBetLive)
		})

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(15 * time.Second))

			r.Get("/providers", opts.Handler.GetProviders)

			r.Post("/bets", opts.BetHandler.CreateBet)
			r.Get("/bets", opts.BetHandler.GetBets)
			r.Get("/bets/{betID}", opts.BetHandler.GetBet)
			r.Put("/bets/{betID}/status", opts.BetHandler.UpdateBetStatus)
			r.Delete("/bets/{betID}", opts.BetHandler.DeleteBet)
			r.Post("/bets/{betID}/subscriptions", opts.BetHandler.CreateSubscription)
		})
	})

	if opts.WebSocket != nil {
		r.Handle("/ws", opts.WebSocket)
	}

	return r
}
