package ingest

import (
	"sort"

	"bigleague/stats/internal/models"
)

// Skip reasons reported by PairOpponents
const (
	SkipUnknownSeat = "unknown_seat"
	SkipUnpaired    = "unpaired"
)

// Skipped is a matchup record that produced no Matchup row
type Skipped struct {
	RosterID int
	UserID   string
	Reason   string
}

// Pairing is one league week's reconciled matchup output
type Pairing struct {
	Matchups []*models.Matchup
	Scores   []*models.Score
	Skipped  []Skipped
}

// PairOpponents resolves who played whom. Sleeper groups the two rosters
// of a game under a shared matchup_id; the first record seen for an id is
// held until its partner arrives. seats maps roster_id to user id.
//
// Records without a partner (byes, null matchup_id, a third record for an
// id) or whose seat has no known owner produce no Matchup row. Their
// player scores are still emitted.
func PairOpponents(seats map[int]string, records []models.MatchupInput, leagueID string, season, week int) *Pairing {
	pending := make(map[int]string)
	opponents := make(map[string]string)

	for _, rec := range records {
		userID, ok := seats[rec.RosterID.Int()]
		if !ok || rec.MatchupID == nil {
			continue
		}

		id := rec.MatchupID.Int()
		if first, held := pending[id]; held {
			opponents[first] = userID
			opponents[userID] = first
			delete(pending, id)
			continue
		}
		pending[id] = userID
	}

	out := &Pairing{}
	for _, rec := range records {
		out.Scores = append(out.Scores, rec.ToScores(leagueID, season, week)...)

		userID, ok := seats[rec.RosterID.Int()]
		if !ok {
			out.Skipped = append(out.Skipped, Skipped{RosterID: rec.RosterID.Int(), Reason: SkipUnknownSeat})
			continue
		}

		opponentID, ok := opponents[userID]
		if !ok {
			out.Skipped = append(out.Skipped, Skipped{RosterID: rec.RosterID.Int(), UserID: userID, Reason: SkipUnpaired})
			continue
		}

		out.Matchups = append(out.Matchups, &models.Matchup{
			Season:     season,
			Week:       week,
			LeagueID:   leagueID,
			UserID:     userID,
			OpponentID: opponentID,
			Points:     rec.Points.Float64(),
		})
	}

	// players_points is a map; keep row order stable for logs and tests
	sort.SliceStable(out.Scores, func(i, j int) bool {
		return out.Scores[i].PlayerID < out.Scores[j].PlayerID
	})

	return out
}
