//go:build integration

package repository

import (
	"fmt"
	"testing"

	"bigleague/stats/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeagueRepository_Upsert(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	league := &models.League{ID: "1001", Name: "Big League East", Avatar: "a1"}

	// Insert new league
	require.NoError(t, db.Leagues.Upsert(ctx, league), "Should insert league")

	// Same values again should be a no-op
	require.NoError(t, db.Leagues.Upsert(ctx, league), "Should re-upsert identical league")

	n, err := db.Leagues.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "Re-upserting should not duplicate the key")

	// Update existing league
	league.Name = "Big League West"
	league.Avatar = "NA"
	require.NoError(t, db.Leagues.Upsert(ctx, league), "Should update league")

	updated, err := db.Leagues.GetByID(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, league, updated, "All non-key columns should be overwritten")
}

func TestUserRepository_Upsert(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	user := &models.User{ID: "u1", Name: "Todd", Avatar: "cafed00d"}
	require.NoError(t, db.Users.Upsert(ctx, user))

	user.Name = "Todd B"
	require.NoError(t, db.Users.Upsert(ctx, user))

	got, err := db.Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, user, got)

	n, err := db.Users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRosterRepository_UpsertAndSeatMap(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	roster := &models.Roster{UserID: "u1", LeagueID: "L1", RosterID: 1, Wins: 3, Fpts: 300}
	require.NoError(t, db.Rosters.Upsert(ctx, roster))

	// Same user in a second league keeps its own row
	other := &models.Roster{UserID: "u1", LeagueID: "L2", RosterID: 7, Wins: 1}
	require.NoError(t, db.Rosters.Upsert(ctx, other))

	roster.Wins = 4
	roster.RosterID = 2
	require.NoError(t, db.Rosters.Upsert(ctx, roster))

	got, err := db.Rosters.Get(ctx, "L1", "u1")
	require.NoError(t, err)
	assert.Equal(t, roster, got)

	seats, err := db.Rosters.SeatMap(ctx, "L1")
	require.NoError(t, err)
	assert.Equal(t, map[int]string{2: "u1"}, seats)

	seats, err = db.Rosters.SeatMap(ctx, "L2")
	require.NoError(t, err)
	assert.Equal(t, map[int]string{7: "u1"}, seats)
}

func TestOwnershipRepository_StarterPasses(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	for _, id := range []string{"P1", "P2", "P3"} {
		require.NoError(t, db.Ownership.Upsert(ctx, &models.Ownership{UserID: "u1", LeagueID: "L1", PlayerID: id}))
	}
	for _, id := range []string{"P1", "P3"} {
		require.NoError(t, db.Ownership.Upsert(ctx, &models.Ownership{UserID: "u1", LeagueID: "L1", PlayerID: id, Starter: 1}))
	}

	owned, err := db.Ownership.ListForRoster(ctx, "L1", "u1")
	require.NoError(t, err)
	require.Len(t, owned, 3)
	assert.Equal(t, 1, owned[0].Starter, "P1 should be a starter")
	assert.Equal(t, 0, owned[1].Starter, "P2 should be a bench player")
	assert.Equal(t, 1, owned[2].Starter, "P3 should be a starter")
}

func TestPlayerRepository_UpsertBatch(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	players := make([]*models.Player, 0, playerBatchSize+10)
	for i := 0; i < playerBatchSize+10; i++ {
		players = append(players, &models.Player{
			ID:        fmt.Sprintf("p%d", i),
			FirstName: "First",
			LastName:  "Last",
			Team:      "None",
			Position:  "NA",
		})
	}

	n, err := db.Players.UpsertBatch(ctx, players)
	require.NoError(t, err, "Should upsert players across batches")
	assert.Equal(t, len(players), n)

	players[0].Team = "SEA"
	require.NoError(t, db.Players.Upsert(ctx, players[0]))

	got, err := db.Players.GetByID(ctx, players[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "SEA", got.Team)
}

func TestStateRepository_Current(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	_, err := db.State.Current(ctx)
	assert.ErrorIs(t, err, ErrNoSeasonState, "Empty table should report no state")

	rows := []*models.SeasonState{
		{Season: 2023, Week: 17, LeagueSeason: 2023, DisplayWeek: 17, SeasonType: "regular"},
		{Season: 2024, Week: 2, LeagueSeason: 2024, DisplayWeek: 2, SeasonType: "regular"},
		{Season: 2024, Week: 1, LeagueSeason: 2024, DisplayWeek: 1, SeasonType: "regular"},
	}
	for _, s := range rows {
		require.NoError(t, db.State.Upsert(ctx, s))
	}

	current, err := db.State.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, rows[1], current, "Latest season and week should win")
}

func TestMatchupRepository_Upsert(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	a := &models.Matchup{Season: 2023, Week: 3, LeagueID: "L1", UserID: "u1", OpponentID: "u2", Points: 120.5}
	b := &models.Matchup{Season: 2023, Week: 3, LeagueID: "L1", UserID: "u2", OpponentID: "u1", Points: 99.25}
	require.NoError(t, db.Matchups.Upsert(ctx, a))
	require.NoError(t, db.Matchups.Upsert(ctx, b))
	require.NoError(t, db.Matchups.Upsert(ctx, a))

	a.Points = 121
	require.NoError(t, db.Matchups.Upsert(ctx, a))

	got, err := db.Matchups.ListWeek(ctx, 2023, 3, "L1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a, got[0])
	assert.Equal(t, b, got[1])
}

func TestScoreRepository_Upsert(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	s := &models.Score{PlayerID: "p1", LeagueID: "L1", Season: 2023, Week: 3, Points: 30.5}
	require.NoError(t, db.Scores.Upsert(ctx, s))
	s.Points = 31.5
	require.NoError(t, db.Scores.Upsert(ctx, s))

	pts, err := db.Scores.Get(ctx, "p1", "L1", 2023, 3)
	require.NoError(t, err)
	assert.InDelta(t, 31.5, pts, 1e-6)

	n, err := db.Scores.Count(ctx, "L1", 2023, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRankRepository_Standings(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	rosters := []*models.Roster{
		{UserID: "a", LeagueID: "L1", RosterID: 1, Wins: 9, Fpts: 600},
		{UserID: "b", LeagueID: "L1", RosterID: 2, Wins: 10, Fpts: 480},
		{UserID: "c", LeagueID: "L2", RosterID: 1, Wins: 10, Fpts: 500},
	}
	for _, r := range rosters {
		require.NoError(t, db.Users.Upsert(ctx, &models.User{ID: r.UserID, Name: "user " + r.UserID, Avatar: "NA"}))
		require.NoError(t, db.Rosters.Upsert(ctx, r))
	}

	standings, err := db.Ranks.Standings(ctx)
	require.NoError(t, err)
	require.Len(t, standings, 3)

	assert.Equal(t, "c", standings[0].UserID)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, "b", standings[1].UserID)
	assert.Equal(t, 2, standings[1].Rank)
	assert.Equal(t, "a", standings[2].UserID)
	assert.Equal(t, 3, standings[2].Rank)
	assert.InDelta(t, 500.0, standings[0].PointsFor, 1e-9)
}

func TestRankRepository_PlayoffWeeks(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, db.Users.Upsert(ctx, &models.User{ID: id, Name: id, Avatar: "NA"}))
		require.NoError(t, db.Rosters.Upsert(ctx, &models.Roster{UserID: id, LeagueID: "L1", RosterID: i + 1, Wins: 10 - i}))
	}

	results := []*models.Matchup{
		{Season: 2023, Week: 14, LeagueID: "L1", UserID: "a", OpponentID: "b", Points: 90},
		{Season: 2023, Week: 15, LeagueID: "L1", UserID: "a", OpponentID: "b", Points: 100},
		{Season: 2023, Week: 15, LeagueID: "L1", UserID: "b", OpponentID: "a", Points: 95},
		{Season: 2023, Week: 15, LeagueID: "L1", UserID: "c", OpponentID: "x", Points: 70},
		{Season: 2022, Week: 15, LeagueID: "L1", UserID: "a", OpponentID: "b", Points: 1},
	}
	for _, m := range results {
		require.NoError(t, db.Matchups.Upsert(ctx, m))
	}

	weeks, err := db.Ranks.PlayoffWeeks(ctx, 2023, 15, 2)
	require.NoError(t, err)
	require.Len(t, weeks, 2, "Only weeks >= 15 of 2023 for the top two ranks")
	assert.Equal(t, models.PlayoffTeam{Week: 15, Rank: 1, UserID: "a", User: "a", Points: 100}, weeks[0])
	assert.Equal(t, models.PlayoffTeam{Week: 15, Rank: 2, UserID: "b", User: "b", Points: 95}, weeks[1])

	seeds, err := db.Ranks.Top(ctx, 2, 15)
	require.NoError(t, err)
	assert.Equal(t, []models.PlayoffTeam{
		{Week: 15, Rank: 1, UserID: "a", User: "a"},
		{Week: 15, Rank: 2, UserID: "b", User: "b"},
	}, seeds)
}
