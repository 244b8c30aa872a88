package ingest

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"bigleague/stats/internal/client"
	"bigleague/stats/internal/metrics"
	"bigleague/stats/internal/models"
	"bigleague/stats/internal/repository"
)

// playersGuardKey is the lease that keeps the catalog refresh rate-limited
// across restarts and cron triggers
const playersGuardKey = "bigleague:players:refresh"

// SyncLeagues upserts the descriptor of every configured league
func (s *Syncer) SyncLeagues(ctx context.Context) error {
	var errs []error
	for _, leagueID := range s.opts.Leagues {
		if err := s.syncLeague(ctx, leagueID); err != nil {
			errs = append(errs, fmt.Errorf("league %s: %w", leagueID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Syncer) syncLeague(ctx context.Context, leagueID string) error {
	input, err := s.client.FetchLeague(ctx, leagueID)
	if err != nil {
		return err
	}

	league := input.ToLeague(leagueID)
	if err := s.store.Leagues.Upsert(ctx, league); err != nil {
		return err
	}
	metrics.RecordReconciled("league", 1)

	logger(ctx).Info().
		Str("league_id", league.ID).
		Str("name", league.Name).
		Msg("League synced")
	return nil
}

// SyncUsers upserts the members of every configured league
func (s *Syncer) SyncUsers(ctx context.Context) error {
	var errs []error
	for _, leagueID := range s.opts.Leagues {
		if err := s.syncUsers(ctx, leagueID); err != nil {
			errs = append(errs, fmt.Errorf("league %s: %w", leagueID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Syncer) syncUsers(ctx context.Context, leagueID string) error {
	inputs, err := s.client.FetchUsers(ctx, leagueID)
	if err != nil {
		return err
	}

	log := logger(ctx)
	saved, failed := 0, 0
	for i := range inputs {
		user := inputs[i].ToUser()
		if user.ID == "" {
			metrics.RecordSkipped("user", "missing_id")
			log.Warn().Str("league_id", leagueID).Msg("Skipping user without id")
			continue
		}

		if err := s.store.Users.Upsert(ctx, user); err != nil {
			log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to save user")
			failed++
			continue
		}
		saved++
	}
	metrics.RecordReconciled("user", saved)

	log.Info().
		Str("league_id", leagueID).
		Int("count", saved).
		Msg("Users synced")
	return saveErrors("users", failed, len(inputs))
}

// SyncRosters upserts every roster of every configured league together
// with its ownership rows. All players are written as bench first, then
// the starters are re-upserted with starter=1.
func (s *Syncer) SyncRosters(ctx context.Context) error {
	var errs []error
	for _, leagueID := range s.opts.Leagues {
		if err := s.syncRosters(ctx, leagueID); err != nil {
			errs = append(errs, fmt.Errorf("league %s: %w", leagueID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Syncer) syncRosters(ctx context.Context, leagueID string) error {
	inputs, err := s.client.FetchRosters(ctx, leagueID)
	if err != nil {
		return err
	}

	log := logger(ctx)
	saved, failed := 0, 0
	for i := range inputs {
		in := &inputs[i]
		if !in.HasOwner() {
			metrics.RecordSkipped("roster", "no_owner")
			log.Warn().
				Str("league_id", leagueID).
				Int("roster_id", in.RosterID.Int()).
				Msg("Skipping roster without owner")
			continue
		}

		if err := s.saveRoster(ctx, leagueID, in); err != nil {
			log.Error().Err(err).
				Str("league_id", leagueID).
				Int("roster_id", in.RosterID.Int()).
				Msg("Failed to save roster")
			failed++
			continue
		}
		saved++
	}
	metrics.RecordReconciled("roster", saved)

	log.Info().
		Str("league_id", leagueID).
		Int("count", saved).
		Msg("Rosters synced")
	return saveErrors("rosters", failed, len(inputs))
}

func (s *Syncer) saveRoster(ctx context.Context, leagueID string, in *models.RosterInput) error {
	roster := in.ToRoster(leagueID)
	if err := s.store.Rosters.Upsert(ctx, roster); err != nil {
		return err
	}

	own := func(playerID string, starter int) error {
		return s.store.Ownership.Upsert(ctx, &models.Ownership{
			UserID:   roster.UserID,
			LeagueID: roster.LeagueID,
			PlayerID: playerID,
			Starter:  starter,
		})
	}

	players, starters := in.PlayerIDs(), in.StarterIDs()
	for _, id := range players {
		if err := own(id, 0); err != nil {
			return err
		}
	}
	for _, id := range starters {
		if err := own(id, 1); err != nil {
			return err
		}
	}
	metrics.RecordReconciled("ownership", len(players)+len(starters))

	return nil
}

// SyncPlayers refreshes the NFL player catalog. In dev mode the catalog is
// read from the configured file. With a Guard set the refresh runs at most
// once per half players interval.
func (s *Syncer) SyncPlayers(ctx context.Context) error {
	log := logger(ctx)

	if s.guard != nil && s.opts.PlayersInterval > 0 {
		ok, err := s.guard.Acquire(ctx, playersGuardKey, s.opts.PlayersInterval/2)
		if err != nil {
			log.Warn().Err(err).Msg("Players refresh guard unavailable, refreshing anyway")
		} else if !ok {
			log.Info().Msg("Players catalog refreshed recently, skipping")
			return nil
		}
	}

	var catalog map[string]models.PlayerInput
	var err error
	if s.opts.DevMode {
		catalog, err = client.ReadPlayersFile(s.opts.PlayersFile)
	} else {
		catalog, err = s.client.FetchPlayers(ctx)
	}
	if err != nil {
		return err
	}

	players := make([]*models.Player, 0, len(catalog))
	for _, id := range slices.Sorted(maps.Keys(catalog)) {
		in := catalog[id]
		players = append(players, in.ToPlayer(id))
	}

	start := time.Now()
	n, err := s.store.Players.UpsertBatch(ctx, players)
	metrics.RecordReconciled("player", n)
	if err != nil {
		return fmt.Errorf("failed to save players catalog after %d rows: %w", n, err)
	}

	log.Info().
		Int("count", n).
		Bool("dev_mode", s.opts.DevMode).
		Dur("duration", time.Since(start)).
		Msg("Players synced")
	return nil
}

// SyncState upserts the provider's current season and week
func (s *Syncer) SyncState(ctx context.Context) error {
	input, err := s.client.FetchState(ctx)
	if err != nil {
		return err
	}

	state := input.ToSeasonState()
	if err := s.store.State.Upsert(ctx, state); err != nil {
		return err
	}
	metrics.RecordReconciled("state", 1)

	logger(ctx).Info().
		Int("season", state.Season).
		Int("week", state.Week).
		Str("season_type", state.SeasonType).
		Msg("State synced")
	return nil
}

// SyncMatchups reconciles matchups and player scores for the current week
// and the configured number of preceding weeks in every league
func (s *Syncer) SyncMatchups(ctx context.Context) error {
	state, err := s.store.State.Current(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoSeasonState) {
			return fmt.Errorf("matchups need a synced season state: %w", err)
		}
		return err
	}

	weeks := s.weeks(state.Week)
	if len(weeks) == 0 {
		logger(ctx).Info().Int("season", state.Season).Msg("No regular season week yet, skipping matchups")
		return nil
	}

	var errs []error
	for _, leagueID := range s.opts.Leagues {
		for _, week := range weeks {
			if err := s.syncMatchups(ctx, leagueID, state.Season, week); err != nil {
				errs = append(errs, fmt.Errorf("league %s week %d: %w", leagueID, week, err))
			}
		}
	}
	return errors.Join(errs...)
}

// weeks lists current back to current-lookback, never below week 1
func (s *Syncer) weeks(current int) []int {
	var out []int
	for w := max(1, current-s.opts.LookbackWeeks); w <= current; w++ {
		out = append(out, w)
	}
	return out
}

func (s *Syncer) syncMatchups(ctx context.Context, leagueID string, season, week int) error {
	seats, err := s.store.Rosters.SeatMap(ctx, leagueID)
	if err != nil {
		return err
	}

	records, err := s.client.FetchMatchups(ctx, leagueID, week)
	if err != nil {
		return err
	}

	log := logger(ctx)
	pairing := PairOpponents(seats, records, leagueID, season, week)
	for _, skip := range pairing.Skipped {
		metrics.RecordSkipped("matchup", skip.Reason)
		log.Warn().
			Str("league_id", leagueID).
			Int("week", week).
			Int("roster_id", skip.RosterID).
			Str("user_id", skip.UserID).
			Str("reason", skip.Reason).
			Msg("Skipping matchup without resolvable opponent")
	}

	failed := 0
	for _, m := range pairing.Matchups {
		if err := s.store.Matchups.Upsert(ctx, m); err != nil {
			log.Error().Err(err).Str("user_id", m.UserID).Int("week", week).Msg("Failed to save matchup")
			failed++
		}
	}
	metrics.RecordReconciled("matchup", len(pairing.Matchups)-failed)

	scoreFailed := 0
	for _, sc := range pairing.Scores {
		if err := s.store.Scores.Upsert(ctx, sc); err != nil {
			log.Debug().Err(err).Str("player_id", sc.PlayerID).Int("week", week).Msg("Failed to save score")
			scoreFailed++
		}
	}
	metrics.RecordReconciled("score", len(pairing.Scores)-scoreFailed)

	log.Info().
		Str("league_id", leagueID).
		Int("season", season).
		Int("week", week).
		Int("matchups", len(pairing.Matchups)-failed).
		Int("scores", len(pairing.Scores)-scoreFailed).
		Int("skipped", len(pairing.Skipped)).
		Msg("Matchups synced")

	return errors.Join(
		saveErrors("matchups", failed, len(pairing.Matchups)),
		saveErrors("scores", scoreFailed, len(pairing.Scores)),
	)
}
