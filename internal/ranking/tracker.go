// Package ranking holds the scoring state machines of the competition: the
// per-user best result, the leaderboard order, the frozen snapshot and the
// submission window.
package ranking

import (
	"time"

	"github.com/ZJUSCT/TopTSP/internal/database/models"
)

// Attempt is a valid, scored submission about to be folded into a best result.
type Attempt struct {
	UserID       string
	SubmissionID string
	Value        float64
	Method       string
	At           time.Time
}

// Record folds a into prev and returns the new best result. prev is nil when
// the user has no result yet. prev is never modified.
//
// Only a strictly smaller value is an improvement; an equal value keeps the
// earlier submission and its timestamp.
func Record(prev *models.BestResult, a Attempt) (models.BestResult, bool) {
	if prev == nil {
		return models.BestResult{
			UserID:             a.UserID,
			BestSubmissionID:   a.SubmissionID,
			BestObjectiveValue: a.Value,
			BestMethod:         a.Method,
			TotalSubmissions:   1,
			LastImprovementAt:  a.At,
		}, true
	}

	next := *prev
	next.TotalSubmissions++
	if a.Value < prev.BestObjectiveValue {
		next.BestSubmissionID = a.SubmissionID
		next.BestObjectiveValue = a.Value
		next.BestMethod = a.Method
		next.LastImprovementAt = a.At
		return next, true
	}
	return next, false
}
