package competition

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/ZJUSCT/TopTSP/internal/database/models"
	"github.com/ZJUSCT/TopTSP/internal/tsp"
)

const (
	userSolutionsLimit  = 50
	userTimelineLimit   = 200
	bestHistoryScanSize = 5000
)

// ExportHistory lists every submission, newest first.
func (s *Service) ExportHistory() ([]HistoryRow, error) {
	return s.store.History(NewestFirst, false, 0)
}

var csvHeader = []string{"Email", "Solution", "Objective", "Method", "Submitted At", "Valid"}

// WriteHistoryCSV writes rows as CSV with a header line.
func WriteHistoryCSV(w io.Writer, rows []HistoryRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Email,
			r.Solution,
			strconv.FormatFloat(r.ObjectiveValue, 'f', 2, 64),
			r.Method,
			r.SubmittedAt.UTC().Format(time.RFC3339),
			strconv.FormatBool(r.IsValid),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// UserSolutions returns the user's latest submissions, newest first.
func (s *Service) UserSolutions(userID string) ([]models.Submission, error) {
	return s.store.UserSubmissions(userID, NewestFirst, userSolutionsLimit)
}

// UserTimeline returns the user's submissions in submission order.
func (s *Service) UserTimeline(userID string) ([]models.Submission, error) {
	if _, err := s.store.GetUser(userID); err != nil {
		return nil, err
	}
	return s.store.UserSubmissions(userID, OldestFirst, userTimelineLimit)
}

type BestRoute struct {
	Route          []int   `json:"route"`
	Method         string  `json:"method"`
	ObjectiveValue float64 `json:"objectiveValue"`
	Email          string  `json:"email"`
	InstanceName   string  `json:"instanceName"`
}

// UserBestRoute returns the tour behind the user's best result.
func (s *Service) UserBestRoute(userID string) (*BestRoute, error) {
	var out BestRoute
	err := s.store.Transaction(func(tx Store) error {
		best, err := tx.BestResult(userID)
		if err != nil {
			return err
		}
		sub, err := tx.GetSubmission(best.BestSubmissionID)
		if err != nil {
			return err
		}
		user, err := tx.GetUser(userID)
		if err != nil {
			return err
		}
		route, err := tsp.ParsePermutation(sub.Solution)
		if err != nil {
			return err
		}
		name, err := s.instanceName(tx)
		if err != nil {
			return err
		}
		out = BestRoute{
			Route:          route,
			Method:         sub.Method,
			ObjectiveValue: best.BestObjectiveValue,
			Email:          user.Email,
			InstanceName:   name,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type Improvement struct {
	Date   time.Time `json:"date"`
	Value  float64   `json:"value"`
	User   string    `json:"user"`
	Method string    `json:"method"`
}

// BestHistory returns the moments the competition-wide best value improved.
func (s *Service) BestHistory() ([]Improvement, error) {
	rows, err := s.store.History(OldestFirst, true, bestHistoryScanSize)
	if err != nil {
		return nil, err
	}

	improvements := make([]Improvement, 0)
	for i, r := range rows {
		if i > 0 && r.ObjectiveValue >= improvements[len(improvements)-1].Value-1e-9 {
			continue
		}
		improvements = append(improvements, Improvement{
			Date:   r.SubmittedAt,
			Value:  tsp.Round2(r.ObjectiveValue),
			User:   r.Email,
			Method: r.Method,
		})
	}
	return improvements, nil
}
