package testutils

import (
	"embed"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

//go:embed sleeperdata
var sleeperdata embed.FS

// Fixture league ids served by FakeSleeperServer
const (
	LeagueID       = "1001"
	LeagueNoNameID = "1002"
	MatchupsWeek   = 3
)

// FakeSleeperServer serves canned Sleeper payloads under /v1
type FakeSleeperServer struct {
	s *httptest.Server

	mu        sync.Mutex
	stateFile string
	failures  atomic.Int32
	requests  atomic.Int32
}

func NewFakeSleeperServer() *FakeSleeperServer {
	f := &FakeSleeperServer{stateFile: "state.json"}

	r := chi.NewRouter()
	r.Use(f.countAndFail)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/players/nfl", fileHandler("players.json"))
		r.Get("/state/nfl", f.stateHandler)

		r.Route("/league/{leagueID}", func(r chi.Router) {
			r.Get("/", leagueHandler)
			r.Get("/rosters", leagueFileHandler("rosters.json"))
			r.Get("/users", leagueFileHandler("users.json"))
			r.Get("/matchups/{week}", matchupsHandler)
		})
	})

	f.s = httptest.NewServer(r)
	return f
}

func (f *FakeSleeperServer) Close() {
	f.s.Close()
}

// URL returns the API root, including the /v1 prefix
func (f *FakeSleeperServer) URL() string {
	return f.s.URL + "/v1"
}

// SetStateFile switches the fixture served by /state/nfl
func (f *FakeSleeperServer) SetStateFile(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stateFile = name
}

// FailNext makes the next n requests answer 503
func (f *FakeSleeperServer) FailNext(n int) {
	f.failures.Store(int32(n))
}

// Requests returns the number of requests received so far
func (f *FakeSleeperServer) Requests() int {
	return int(f.requests.Load())
}

func (f *FakeSleeperServer) countAndFail(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		if f.failures.Add(-1) >= 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeSleeperServer) stateHandler(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	name := f.stateFile
	f.mu.Unlock()
	serveFile(w, name)
}

func fileHandler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serveFile(w, name)
	}
}

func leagueHandler(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "leagueID") {
	case LeagueID:
		serveFile(w, "league.json")
	case LeagueNoNameID:
		serveFile(w, "league_noname.json")
	default:
		// Sleeper answers unknown leagues with a 200 and a null body
		writeBody(w, []byte("null"))
	}
}

func leagueFileHandler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "leagueID") != LeagueID {
			writeBody(w, []byte("[]"))
			return
		}
		serveFile(w, name)
	}
}

func matchupsHandler(w http.ResponseWriter, r *http.Request) {
	week := chi.URLParam(r, "week")
	if chi.URLParam(r, "leagueID") == LeagueID && week == fmt.Sprint(MatchupsWeek) {
		serveFile(w, "matchups.json")
		return
	}
	writeBody(w, []byte("[]"))
}

// Fixture returns the raw bytes of an embedded fixture
func Fixture(name string) ([]byte, error) {
	return sleeperdata.ReadFile(fmt.Sprintf("sleeperdata/%s", name))
}

func serveFile(w http.ResponseWriter, name string) {
	b, err := Fixture(name)
	if err != nil {
		log.Error().Err(err).Str("file", name).Msg("error reading fixture")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeBody(w, b)
}

func writeBody(w http.ResponseWriter, b []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
