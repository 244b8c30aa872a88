package models

// User represents a league member
type User struct {
	ID     string `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Avatar string `db:"avatar" json:"avatar"`
}

// UserInput is one element of the /league/{league_id}/users payload
type UserInput struct {
	UserID      string  `json:"user_id"`
	DisplayName *string `json:"display_name"`
	Avatar      *string `json:"avatar"`
}

// ToUser converts UserInput (from API) to User model
func (ui *UserInput) ToUser() *User {
	return &User{
		ID:     ui.UserID,
		Name:   stringOr(ui.DisplayName, DefaultName),
		Avatar: stringOr(ui.Avatar, DefaultName),
	}
}
