package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"bigleague/stats/internal/models"
	"bigleague/stats/internal/repository"
)

// memStore keeps one row per natural key, like the postgres upserts
type memStore struct {
	mu sync.Mutex

	leagues   map[string]models.League
	users     map[string]models.User
	rosters   map[[2]string]models.Roster
	ownership map[[3]string]models.Ownership
	players   map[string]models.Player
	states    map[[2]int]models.SeasonState
	matchups  map[string]models.Matchup
	scores    map[string]models.Score

	// failOn makes upserts of the named kind fail
	failOn map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		leagues:   make(map[string]models.League),
		users:     make(map[string]models.User),
		rosters:   make(map[[2]string]models.Roster),
		ownership: make(map[[3]string]models.Ownership),
		players:   make(map[string]models.Player),
		states:    make(map[[2]int]models.SeasonState),
		matchups:  make(map[string]models.Matchup),
		scores:    make(map[string]models.Score),
		failOn:    make(map[string]bool),
	}
}

var errInjected = errors.New("injected failure")

func (m *memStore) store() Store {
	return Store{
		Leagues:   memLeagues{m},
		Users:     memUsers{m},
		Rosters:   memRosters{m},
		Ownership: memOwnership{m},
		Players:   memPlayers{m},
		State:     memState{m},
		Matchups:  memMatchups{m},
		Scores:    memScores{m},
	}
}

func (m *memStore) check(kind string) error {
	if m.failOn[kind] {
		return errInjected
	}
	return nil
}

type memLeagues struct{ m *memStore }

func (s memLeagues) Upsert(ctx context.Context, l *models.League) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.check("league"); err != nil {
		return err
	}
	s.m.leagues[l.ID] = *l
	return nil
}

type memUsers struct{ m *memStore }

func (s memUsers) Upsert(ctx context.Context, u *models.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.check("user"); err != nil {
		return err
	}
	s.m.users[u.ID] = *u
	return nil
}

type memRosters struct{ m *memStore }

func (s memRosters) Upsert(ctx context.Context, r *models.Roster) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.check("roster"); err != nil {
		return err
	}
	s.m.rosters[[2]string{r.LeagueID, r.UserID}] = *r
	return nil
}

func (s memRosters) SeatMap(ctx context.Context, leagueID string) (map[int]string, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	seats := make(map[int]string)
	for _, r := range s.m.rosters {
		if r.LeagueID == leagueID {
			seats[r.RosterID] = r.UserID
		}
	}
	return seats, nil
}

type memOwnership struct{ m *memStore }

func (s memOwnership) Upsert(ctx context.Context, o *models.Ownership) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.check("ownership"); err != nil {
		return err
	}
	s.m.ownership[[3]string{o.UserID, o.LeagueID, o.PlayerID}] = *o
	return nil
}

type memPlayers struct{ m *memStore }

func (s memPlayers) UpsertBatch(ctx context.Context, players []*models.Player) (int, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.check("player"); err != nil {
		return 0, err
	}
	for _, p := range players {
		s.m.players[p.ID] = *p
	}
	return len(players), nil
}

type memState struct{ m *memStore }

func (s memState) Upsert(ctx context.Context, st *models.SeasonState) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.check("state"); err != nil {
		return err
	}
	s.m.states[[2]int{st.Season, st.Week}] = *st
	return nil
}

func (s memState) Current(ctx context.Context) (*models.SeasonState, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var best *models.SeasonState
	for _, st := range s.m.states {
		if best == nil || st.Season > best.Season || (st.Season == best.Season && st.Week > best.Week) {
			cp := st
			best = &cp
		}
	}
	if best == nil {
		return nil, repository.ErrNoSeasonState
	}
	return best, nil
}

type memMatchups struct{ m *memStore }

func (s memMatchups) Upsert(ctx context.Context, mu *models.Matchup) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.check("matchup"); err != nil {
		return err
	}
	key := fmt.Sprintf("%d/%d/%s/%s/%s", mu.Season, mu.Week, mu.LeagueID, mu.UserID, mu.OpponentID)
	s.m.matchups[key] = *mu
	return nil
}

type memScores struct{ m *memStore }

func (s memScores) Upsert(ctx context.Context, sc *models.Score) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.check("score"); err != nil {
		return err
	}
	key := fmt.Sprintf("%s/%s/%d/%d", sc.PlayerID, sc.LeagueID, sc.Season, sc.Week)
	s.m.scores[key] = *sc
	return nil
}
