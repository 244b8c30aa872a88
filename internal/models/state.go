package models

// SeasonState is the provider's notion of the current NFL week.
// Natural key is (Season, Week).
type SeasonState struct {
	Season       int    `db:"season" json:"season"`
	Week         int    `db:"week" json:"week"`
	LeagueSeason int    `db:"league_season" json:"league_season"`
	DisplayWeek  int    `db:"display_week" json:"display_week"`
	SeasonType   string `db:"season_type" json:"season_type"`
}

// SeasonStateInput is the /state/nfl payload. Sleeper sends season and
// league_season as strings, hence FlexInt.
type SeasonStateInput struct {
	Season       FlexInt `json:"season"`
	Week         FlexInt `json:"week"`
	LeagueSeason FlexInt `json:"league_season"`
	DisplayWeek  FlexInt `json:"display_week"`
	SeasonType   *string `json:"season_type"`
}

// ToSeasonState converts SeasonStateInput (from API) to SeasonState model
func (si *SeasonStateInput) ToSeasonState() *SeasonState {
	return &SeasonState{
		Season:       si.Season.Int(),
		Week:         si.Week.Int(),
		LeagueSeason: si.LeagueSeason.Int(),
		DisplayWeek:  si.DisplayWeek.Int(),
		SeasonType:   stringOr(si.SeasonType, DefaultName),
	}
}
