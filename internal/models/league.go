package models

// League represents a fantasy league tracked by the sync process
type League struct {
	ID     string `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Avatar string `db:"avatar" json:"avatar"`
}

// LeagueInput is the /league/{league_id} payload
type LeagueInput struct {
	LeagueID string  `json:"league_id"`
	Name     *string `json:"name"`
	Avatar   *string `json:"avatar"`
}

// ToLeague converts LeagueInput (from API) to League model.
// requestedID is used when the payload omits league_id.
func (li *LeagueInput) ToLeague(requestedID string) *League {
	id := li.LeagueID
	if id == "" {
		id = requestedID
	}

	return &League{
		ID:     id,
		Name:   stringOr(li.Name, DefaultName),
		Avatar: stringOr(li.Avatar, DefaultName),
	}
}
