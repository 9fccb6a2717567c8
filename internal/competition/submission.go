package competition

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/ZJUSCT/TopTSP/internal/database/models"
	"github.com/ZJUSCT/TopTSP/internal/metrics"
	"github.com/ZJUSCT/TopTSP/internal/ranking"
	"github.com/ZJUSCT/TopTSP/internal/tsp"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxMethodLength is the longest method label kept with a submission;
// longer labels are dropped.
const MaxMethodLength = 10

type SubmitResult struct {
	SubmissionID   string  `json:"solutionId"`
	ObjectiveValue float64 `json:"objectiveValue"`
	Improved       bool    `json:"improved"`
}

func normalizeMethod(method string) string {
	method = strings.TrimSpace(method)
	if utf8.RuneCountInString(method) > MaxMethodLength {
		return ""
	}
	return method
}

// SubmitSolution scores a comma-separated tour for userID against the active
// instance, stores it and folds it into the user's best result.
func (s *Service) SubmitSolution(userID, permutationText, method string) (*SubmitResult, error) {
	res, err := s.submit(userID, permutationText, method)
	metrics.Submissions.WithLabelValues(outcomeOf(err)).Inc()
	return res, err
}

var rejectionOutcomes = []struct {
	err     error
	outcome string
}{
	{tsp.ErrEmptyInput, metrics.OutcomeEmptyInput},
	{tsp.ErrNonNumericToken, metrics.OutcomeNonNumeric},
	{tsp.ErrNonPositiveToken, metrics.OutcomeNonPositive},
	{tsp.ErrWrongLength, metrics.OutcomeWrongLength},
	{tsp.ErrDuplicateNode, metrics.OutcomeDuplicate},
	{tsp.ErrMissingNode, metrics.OutcomeMissingNode},
	{ErrCompetitionClosed, metrics.OutcomeClosed},
	{ErrNoInstance, metrics.OutcomeNoInst},
	{ErrNotFound, metrics.OutcomeUnknownUser},
}

// outcomeOf maps the result of a submission to its metrics label.
func outcomeOf(err error) string {
	if err == nil {
		return metrics.OutcomeAccepted
	}
	for _, r := range rejectionOutcomes {
		if errors.Is(err, r.err) {
			return r.outcome
		}
	}
	return metrics.OutcomeError
}

func (s *Service) submit(userID, permutationText, method string) (*SubmitResult, error) {
	now := s.now()
	end, err := endDate(s.store)
	if err != nil {
		return nil, err
	}
	if !ranking.IsOpen(now, end) {
		return nil, ErrCompetitionClosed
	}

	inst, err := s.rlockActive()
	if err != nil {
		return nil, err
	}
	defer s.mu.RUnlock()

	perm, err := tsp.ParsePermutation(permutationText)
	if err != nil {
		return nil, err
	}
	if err := tsp.ValidatePermutation(perm, inst.Dimension); err != nil {
		return nil, err
	}
	value := tsp.Evaluate(perm, inst.DistanceMatrix)

	sub := &models.Submission{
		ID:             uuid.NewString(),
		UserID:         userID,
		InstanceID:     inst.ID,
		Generation:     inst.Generation,
		Solution:       tsp.FormatPermutation(perm),
		ObjectiveValue: value,
		Method:         normalizeMethod(method),
		IsValid:        true,
		SubmittedAt:    now,
	}

	var improved bool
	err = s.store.Transaction(func(tx Store) error {
		if _, err := tx.GetUser(userID); err != nil {
			return err
		}
		if err := tx.AppendSubmission(sub); err != nil {
			return err
		}

		prev, err := tx.BestResult(userID)
		if errors.Is(err, ErrNotFound) {
			prev = nil
		} else if err != nil {
			return err
		}

		next, ok := ranking.Record(prev, ranking.Attempt{
			UserID:       userID,
			SubmissionID: sub.ID,
			Value:        value,
			Method:       sub.Method,
			At:           now,
		})
		if err := tx.PutBestResult(&next); err != nil {
			return err
		}
		improved = ok
		return nil
	})
	if err != nil {
		return nil, err
	}

	if improved {
		metrics.Improvements.Inc()
		zap.S().Debugf("user %s improved to %.2f with submission %s", userID, value, sub.ID)
		s.notify("improved")
	}
	return &SubmitResult{SubmissionID: sub.ID, ObjectiveValue: value, Improved: improved}, nil
}
