package models

// Matchup is one side of a head-to-head week.
// For every (A, B) row a mirror (B, A) row exists.
type Matchup struct {
	Season     int     `db:"season" json:"season"`
	Week       int     `db:"week" json:"week"`
	LeagueID   string  `db:"league_id" json:"league_id"`
	UserID     string  `db:"user_id" json:"user_id"`
	OpponentID string  `db:"opponent_id" json:"opponent_id"`
	Points     float64 `db:"points" json:"points"`
}

// Score is a player's fantasy points for one league week
type Score struct {
	PlayerID string  `db:"player_id" json:"player_id"`
	LeagueID string  `db:"league_id" json:"league_id"`
	Season   int     `db:"season" json:"season"`
	Week     int     `db:"week" json:"week"`
	Points   float64 `db:"points" json:"points"`
}

// MatchupInput is one element of the /league/{league_id}/matchups/{week}
// payload. MatchupID is null for rosters without an opponent.
type MatchupInput struct {
	MatchupID     *FlexInt             `json:"matchup_id"`
	RosterID      FlexInt              `json:"roster_id"`
	Points        FlexFloat            `json:"points"`
	PlayersPoints map[string]FlexFloat `json:"players_points"`
}

// ToScores expands the per-player breakdown into Score rows
func (mi *MatchupInput) ToScores(leagueID string, season, week int) []*Score {
	scores := make([]*Score, 0, len(mi.PlayersPoints))
	for playerID, pts := range mi.PlayersPoints {
		scores = append(scores, &Score{
			PlayerID: playerID,
			LeagueID: leagueID,
			Season:   season,
			Week:     week,
			Points:   pts.Float64(),
		})
	}
	return scores
}
