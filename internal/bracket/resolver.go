// Package bracket resolves the single-elimination playoff tree from weekly
// team scores.
package bracket

import (
	"sort"

	"bigleague/stats/internal/models"
)

// WeekRank identifies a seed's score in one week
type WeekRank struct {
	Week int
	Rank int
}

// Samples indexes weekly scores by (week, rank). The first row for a key wins.
func Samples(rows []models.PlayoffTeam) map[WeekRank]float64 {
	out := make(map[WeekRank]float64, len(rows))
	for _, r := range rows {
		k := WeekRank{Week: r.Week, Rank: r.Rank}
		if _, seen := out[k]; !seen {
			out[k] = r.Points
		}
	}
	return out
}

// Seed orders teams into first-round pairs: best against worst, second
// against second worst, and so on. With an odd count the lowest ranked
// team is left out.
func Seed(teams []models.PlayoffTeam) []models.PlayoffTeam {
	sorted := make([]models.PlayoffTeam, len(teams))
	copy(sorted, teams)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rank < sorted[j].Rank })

	n := len(sorted) &^ 1
	out := make([]models.PlayoffTeam, 0, n)
	for i := 0; i < n/2; i++ {
		out = append(out, sorted[i], sorted[n-1-i])
	}
	return out
}

// EndWeek is the exclusive last round week. Rounds stop at the current
// week, which may still be in progress, and after the championship.
func EndWeek(current, start, champ int) int {
	return min(max(current, start), champ+1)
}

// Resolve plays out rounds from startWeek until endWeek (exclusive) or until
// one team is left. Stages[0] is initial. The pair winner is the team with
// strictly more points, otherwise the first of the pair. Advancing teams
// carry their next-week score, or 0 if it is not known yet.
//
// A missing score for any team in a played round leaves the bracket
// unresolved and Resolve returns false.
func Resolve(initial []models.PlayoffTeam, startWeek, endWeek int, samples map[WeekRank]float64) ([][]models.PlayoffTeam, bool) {
	stages := [][]models.PlayoffTeam{initial}
	current := initial

	for week := startWeek; week < endWeek && len(current) > 1; week++ {
		next := make([]models.PlayoffTeam, 0, len(current)/2)
		for i := 0; i+1 < len(current); i += 2 {
			a, b := current[i], current[i+1]

			pa, ok := samples[WeekRank{Week: week, Rank: a.Rank}]
			if !ok {
				return nil, false
			}
			pb, ok := samples[WeekRank{Week: week, Rank: b.Rank}]
			if !ok {
				return nil, false
			}

			winner := a
			if pb > pa {
				winner = b
			}
			winner.Week = week + 1
			winner.Points = samples[WeekRank{Week: week + 1, Rank: winner.Rank}]
			next = append(next, winner)
		}

		stages = append(stages, next)
		current = next
	}

	return stages, true
}

// Build seeds teams at startWeek and resolves the bracket as of
// currentWeek. Stages is empty when the bracket can't be resolved.
func Build(teams []models.PlayoffTeam, samples map[WeekRank]float64, startWeek, champWeek, currentWeek int) *models.Bracket {
	seeds := Seed(teams)
	for i := range seeds {
		seeds[i].Week = startWeek
		seeds[i].Points = samples[WeekRank{Week: startWeek, Rank: seeds[i].Rank}]
	}

	b := &models.Bracket{
		NumTeams:  len(seeds),
		StartWeek: startWeek,
		ChampWeek: champWeek,
		Stages:    [][]models.PlayoffTeam{},
	}
	if len(seeds) == 0 {
		return b
	}

	stages, ok := Resolve(seeds, startWeek, EndWeek(currentWeek, startWeek, champWeek), samples)
	if ok {
		b.Stages = stages
	}
	return b
}
