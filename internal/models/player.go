package models

// Player represents an entry in the NFL player catalog
type Player struct {
	ID        string `db:"id" json:"id"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Team      string `db:"team" json:"team"`
	Position  string `db:"position" json:"position"`
	Status    string `db:"status" json:"status"`
}

// PlayerInput is one value of the /players/nfl map
type PlayerInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Team      *string `json:"team"`
	Position  *string `json:"position"`
	Status    *string `json:"status"`
}

// Defaults applied when the catalog omits a field
const (
	DefaultTeam   = "None"
	DefaultStatus = ""
)

// ToPlayer converts PlayerInput (from API) to Player model
func (pi *PlayerInput) ToPlayer(id string) *Player {
	return &Player{
		ID:        id,
		FirstName: stringOr(pi.FirstName, DefaultName),
		LastName:  stringOr(pi.LastName, DefaultName),
		Team:      stringOr(pi.Team, DefaultTeam),
		Position:  stringOr(pi.Position, DefaultName),
		Status:    stringOr(pi.Status, DefaultStatus),
	}
}
