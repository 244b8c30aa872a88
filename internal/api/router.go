package api

import (
	"context"
	"net/http"
	"time"

	"bigleague/stats/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/unrolled/render"
)

type Pinger interface {
	Health(ctx context.Context) error
	PoolStats() map[string]interface{}
}

type LeagueCounter interface {
	Count(ctx context.Context) (int64, error)
}

type StandingsReader interface {
	Standings(ctx context.Context) ([]*models.Standing, error)
}

type BracketSource interface {
	Bracket(ctx context.Context) (*models.Bracket, error)
}

// Trigger queues an out-of-band run of a sync task
type Trigger interface {
	Trigger(name string) bool
}

// Deps are the collaborators behind the routes. Sync may be nil, which
// disables the trigger route.
type Deps struct {
	DB          Pinger
	Leagues     LeagueCounter
	Standings   StandingsReader
	Bracket     BracketSource
	Sync        Trigger
	CORSOrigins []string
}

func getRouter(d Deps, r *render.Render) *chi.Mux {
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(requestLogger)
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.Timeout(10 * time.Second))

	mux.Handle("/metrics", promhttp.Handler())
	mux.Get("/health", healthHandler(d, r))

	mux.Route("/api", func(api chi.Router) {
		api.Use(cors.New(cors.Options{
			AllowedOrigins: d.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
		}).Handler)

		api.Get("/standings", standingsHandler(d.Standings, r))
		api.Get("/bracket", bracketHandler(d.Bracket, r))
		if d.Sync != nil {
			api.Post("/sync/{task}", syncHandler(d.Sync, r))
		}
	})

	return mux
}
