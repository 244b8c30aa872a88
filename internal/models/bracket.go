package models

// Standing is one row of the ranks view joined with its user
type Standing struct {
	Rank     int    `db:"rank" json:"rank"`
	LeagueID string `db:"league_id" json:"league_id"`
	UserID   string `db:"user_id" json:"user_id"`
	User     string `db:"name" json:"user"`
	Wins     int    `db:"wins" json:"wins"`
	Losses   int    `db:"losses" json:"losses"`
	Ties     int    `db:"ties" json:"ties"`
	// Points for and against, whole and decimal parts combined
	PointsFor     float64 `db:"points_for" json:"points_for"`
	PointsAgainst float64 `db:"points_against" json:"points_against"`
}

// PlayoffTeam is a ranked team's score in one playoff week. Never persisted.
type PlayoffTeam struct {
	Week   int     `json:"week"`
	Rank   int     `json:"rank"`
	UserID string  `json:"user_id"`
	User   string  `json:"user"`
	Points float64 `json:"points"`
}

// Bracket is the resolved single-elimination tree. Stages[0] is the seeding;
// an empty Stages means the bracket could not be resolved yet.
type Bracket struct {
	NumTeams  int             `json:"num_teams"`
	StartWeek int             `json:"start_week"`
	ChampWeek int             `json:"champ_week"`
	Stages    [][]PlayoffTeam `json:"stages"`
}

// Resolved reports whether the bracket carries any stages
func (b *Bracket) Resolved() bool {
	return len(b.Stages) > 0
}
