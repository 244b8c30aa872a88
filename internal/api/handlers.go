package api

import (
	"errors"
	"net/http"
	"time"

	"bigleague/stats/internal/models"
	"bigleague/stats/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/unrolled/render"
)

type errorBody struct {
	Error string `json:"error"`
}

func healthHandler(d Deps, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{"status": "healthy"}
		status := http.StatusOK

		if err := d.DB.Health(r.Context()); err != nil {
			body["status"] = "unhealthy"
			body["error"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			body["database"] = d.DB.PoolStats()
		}

		if d.Leagues != nil && status == http.StatusOK {
			if n, err := d.Leagues.Count(r.Context()); err == nil {
				body["leagues"] = n
			}
		}

		render.JSON(w, status, body)
	}
}

func standingsHandler(standings StandingsReader, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := standings.Standings(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("Failed to load standings")
			render.JSON(w, http.StatusInternalServerError, errorBody{Error: "failed to load standings"})
			return
		}
		if rows == nil {
			rows = []*models.Standing{}
		}
		render.JSON(w, http.StatusOK, rows)
	}
}

func bracketHandler(brackets BracketSource, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := brackets.Bracket(r.Context())
		if err != nil {
			if errors.Is(err, repository.ErrNoSeasonState) {
				render.JSON(w, http.StatusServiceUnavailable, errorBody{Error: "season state not synced yet"})
				return
			}
			log.Error().Err(err).Msg("Failed to build bracket")
			render.JSON(w, http.StatusInternalServerError, errorBody{Error: "failed to build bracket"})
			return
		}
		render.JSON(w, http.StatusOK, b)
	}
}

func syncHandler(sync Trigger, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		task := chi.URLParam(r, "task")
		if !sync.Trigger(task) {
			render.JSON(w, http.StatusNotFound, errorBody{Error: "unknown task " + task})
			return
		}

		log.Info().Str("task", task).Str("request_id", middleware.GetReqID(r.Context())).Msg("Sync triggered over HTTP")
		render.JSON(w, http.StatusAccepted, map[string]string{"task": task, "status": "queued"})
	}
}

// requestLogger logs one line per request through zerolog
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
