package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"bigleague/stats/internal/models"
	"bigleague/stats/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDB struct{ err error }

func (f fakeDB) Health(ctx context.Context) error { return f.err }
func (f fakeDB) PoolStats() map[string]interface{} {
	return map[string]interface{}{"total_conns": 2, "max_conns": 8}
}

type fakeLeagues struct{ n int64 }

func (f fakeLeagues) Count(ctx context.Context) (int64, error) { return f.n, nil }

type fakeStandings struct {
	rows []*models.Standing
	err  error
}

func (f fakeStandings) Standings(ctx context.Context) ([]*models.Standing, error) {
	return f.rows, f.err
}

type fakeBracket struct {
	b   *models.Bracket
	err error
}

func (f fakeBracket) Bracket(ctx context.Context) (*models.Bracket, error) { return f.b, f.err }

type fakeTrigger struct{ fired []string }

func (f *fakeTrigger) Trigger(name string) bool {
	if name != "rosters" {
		return false
	}
	f.fired = append(f.fired, name)
	return true
}

func testDeps() Deps {
	return Deps{
		DB:      fakeDB{},
		Leagues: fakeLeagues{n: 2},
		Standings: fakeStandings{rows: []*models.Standing{
			{Rank: 1, LeagueID: "1001", UserID: "u1", User: "Todd", Wins: 10, PointsFor: 1500.25},
			{Rank: 2, LeagueID: "1001", UserID: "u2", User: "Eve", Wins: 9, PointsFor: 1600},
		}},
		Bracket: fakeBracket{b: &models.Bracket{
			NumTeams: 2, StartWeek: 15, ChampWeek: 15,
			Stages: [][]models.PlayoffTeam{
				{{Week: 15, Rank: 1, UserID: "u1", User: "Todd", Points: 100}, {Week: 15, Rank: 2, UserID: "u2", User: "Eve", Points: 99}},
				{{Week: 16, Rank: 1, UserID: "u1", User: "Todd"}},
			},
		}},
		CORSOrigins: []string{"*"},
	}
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, NewHandler(testDeps()), http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.EqualValues(t, 2, body["leagues"])
	assert.Contains(t, body, "database")
}

func TestHealth_DatabaseDown(t *testing.T) {
	d := testDeps()
	d.DB = fakeDB{err: errors.New("connection refused")}

	rec := do(t, NewHandler(d), http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unhealthy")
}

func TestStandings(t *testing.T) {
	rec := do(t, NewHandler(testDeps()), http.MethodGet, "/api/standings")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=UTF-8", rec.Header().Get("Content-Type"))

	var rows []models.Standing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Todd", rows[0].User)
	assert.Equal(t, 2, rows[1].Rank)
}

func TestStandings_Empty(t *testing.T) {
	d := testDeps()
	d.Standings = fakeStandings{}

	rec := do(t, NewHandler(d), http.MethodGet, "/api/standings")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestStandings_Error(t *testing.T) {
	d := testDeps()
	d.Standings = fakeStandings{err: errors.New("boom")}

	rec := do(t, NewHandler(d), http.MethodGet, "/api/standings")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestBracket(t *testing.T) {
	rec := do(t, NewHandler(testDeps()), http.MethodGet, "/api/bracket")
	require.Equal(t, http.StatusOK, rec.Code)

	var b models.Bracket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	require.Len(t, b.Stages, 2)
	assert.Equal(t, "Todd", b.Stages[1][0].User)
}

func TestBracket_NoState(t *testing.T) {
	d := testDeps()
	d.Bracket = fakeBracket{err: fmt.Errorf("failed to load season state: %w", repository.ErrNoSeasonState)}

	rec := do(t, NewHandler(d), http.MethodGet, "/api/bracket")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSyncTrigger(t *testing.T) {
	d := testDeps()
	trig := &fakeTrigger{}
	d.Sync = trig
	h := NewHandler(d)

	rec := do(t, h, http.MethodPost, "/api/sync/rosters")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{"rosters"}, trig.fired)

	rec = do(t, h, http.MethodPost, "/api/sync/odds")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSyncTrigger_DisabledWithoutScheduler(t *testing.T) {
	rec := do(t, NewHandler(testDeps()), http.MethodPost, "/api/sync/rosters")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsExposed(t *testing.T) {
	rec := do(t, NewHandler(testDeps()), http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bigleague_")
}

func TestCORS(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/bracket", nil)
	req.Header.Set("Origin", "https://dashboard.example")
	rec := httptest.NewRecorder()
	NewHandler(testDeps()).ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
