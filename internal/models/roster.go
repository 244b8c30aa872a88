package models

// Roster holds a team's season record within a league.
// Natural key is (LeagueID, UserID).
type Roster struct {
	UserID             string `db:"user_id" json:"user_id"`
	LeagueID           string `db:"league_id" json:"league_id"`
	RosterID           int    `db:"roster_id" json:"roster_id"`
	Wins               int    `db:"wins" json:"wins"`
	Losses             int    `db:"losses" json:"losses"`
	Ties               int    `db:"ties" json:"ties"`
	Fpts               int    `db:"fpts" json:"fpts"`
	FptsDecimal        int    `db:"fpts_decimal" json:"fpts_decimal"`
	FptsAgainst        int    `db:"fpts_against" json:"fpts_against"`
	FptsAgainstDecimal int    `db:"fpts_against_decimal" json:"fpts_against_decimal"`
}

// Ownership links a player to a roster. Starter is 0 or 1.
type Ownership struct {
	UserID   string `db:"user_id" json:"user_id"`
	LeagueID string `db:"league_id" json:"league_id"`
	PlayerID string `db:"player_id" json:"player_id"`
	Starter  int    `db:"starter" json:"starter"`
}

// RosterSettingsInput carries the record fields of a roster payload
type RosterSettingsInput struct {
	Wins               FlexInt `json:"wins"`
	Losses             FlexInt `json:"losses"`
	Ties               FlexInt `json:"ties"`
	Fpts               FlexInt `json:"fpts"`
	FptsDecimal        FlexInt `json:"fpts_decimal"`
	FptsAgainst        FlexInt `json:"fpts_against"`
	FptsAgainstDecimal FlexInt `json:"fpts_against_decimal"`
}

// RosterInput is one element of the /league/{league_id}/rosters payload
type RosterInput struct {
	OwnerID  *string             `json:"owner_id"`
	LeagueID string              `json:"league_id"`
	RosterID FlexInt             `json:"roster_id"`
	Settings RosterSettingsInput `json:"settings"`
	Players  []string            `json:"players"`
	Starters []string            `json:"starters"`
}

// HasOwner reports whether the seat is claimed by a user
func (ri *RosterInput) HasOwner() bool {
	return ri.OwnerID != nil && *ri.OwnerID != ""
}

// ToRoster converts RosterInput (from API) to Roster model.
// requestedLeague is used when the payload omits league_id.
func (ri *RosterInput) ToRoster(requestedLeague string) *Roster {
	leagueID := ri.LeagueID
	if leagueID == "" {
		leagueID = requestedLeague
	}

	return &Roster{
		UserID:             stringOr(ri.OwnerID, ""),
		LeagueID:           leagueID,
		RosterID:           ri.RosterID.Int(),
		Wins:               ri.Settings.Wins.Int(),
		Losses:             ri.Settings.Losses.Int(),
		Ties:               ri.Settings.Ties.Int(),
		Fpts:               ri.Settings.Fpts.Int(),
		FptsDecimal:        ri.Settings.FptsDecimal.Int(),
		FptsAgainst:        ri.Settings.FptsAgainst.Int(),
		FptsAgainstDecimal: ri.Settings.FptsAgainstDecimal.Int(),
	}
}

// PlayerIDs returns the roster's player ids with empty slots removed
func (ri *RosterInput) PlayerIDs() []string {
	return filterSlots(ri.Players)
}

// StarterIDs returns the roster's starter ids with empty slots removed
func (ri *RosterInput) StarterIDs() []string {
	return filterSlots(ri.Starters)
}

// Sleeper marks an unfilled lineup slot with "0".
func filterSlots(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == "0" {
			continue
		}
		out = append(out, id)
	}
	return out
}
