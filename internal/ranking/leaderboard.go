package ranking

import (
	"sort"
	"time"

	"github.com/ZJUSCT/TopTSP/internal/tsp"
)

type Entry struct {
	UserID             string    `json:"user_id"`
	Email              string    `json:"email"`
	BestObjectiveValue float64   `json:"best_objective_value"`
	BestMethod         string    `json:"best_method"`
	LastImprovementAt  time.Time `json:"last_improvement"`
	TotalSubmissions   int       `json:"total_submissions"`
}

type Stats struct {
	TotalParticipants int      `json:"totalParticipants"`
	BestSolution      *float64 `json:"bestSolution"`
	TotalSolutions    int      `json:"totalSolutions"`
}

// Build orders rows into a leaderboard and derives its stats. Values are
// rounded to two decimals; ties go to the earlier improvement.
func Build(rows []Entry) ([]Entry, Stats) {
	entries := make([]Entry, len(rows))
	for i, r := range rows {
		r.BestObjectiveValue = tsp.Round2(r.BestObjectiveValue)
		entries[i] = r
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.BestObjectiveValue != b.BestObjectiveValue {
			return a.BestObjectiveValue < b.BestObjectiveValue
		}
		if !a.LastImprovementAt.Equal(b.LastImprovementAt) {
			return a.LastImprovementAt.Before(b.LastImprovementAt)
		}
		return a.UserID < b.UserID
	})

	stats := Stats{TotalParticipants: len(entries)}
	if len(entries) > 0 {
		best := entries[0].BestObjectiveValue
		stats.BestSolution = &best
	}
	for _, e := range entries {
		stats.TotalSolutions += e.TotalSubmissions
	}
	return entries, stats
}
