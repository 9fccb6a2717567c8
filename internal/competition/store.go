package competition

import (
	"time"

	"github.com/ZJUSCT/TopTSP/internal/database/models"
	"github.com/ZJUSCT/TopTSP/internal/ranking"
)

// Store is the durable state of the competition. Lookups of missing rows
// return ErrNotFound; every other failure is wrapped in ErrStorage.
type Store interface {
	// Transaction runs fn against a store bound to one database transaction.
	// fn must only use the store it is given.
	Transaction(fn func(tx Store) error) error

	ActiveInstance() (*models.Instance, error)
	// PutInstance inserts inst and makes it the active instance.
	PutInstance(inst *models.Instance) error
	// ResetAll deletes every submission and best result.
	ResetAll() error

	AppendSubmission(sub *models.Submission) error
	GetSubmission(id string) (*models.Submission, error)
	BestResult(userID string) (*models.BestResult, error)
	PutBestResult(best *models.BestResult) error
	ListRankingRows() ([]ranking.Entry, error)

	GetSetting(key string) (string, error)
	SetSetting(key, value string) error

	CreateUser(user *models.User) error
	GetUser(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	UpdateUser(user *models.User) error
	// DeleteUserCascade removes the user's submissions, best result and account.
	DeleteUserCascade(id string) error
	ListParticipants() ([]Participant, error)

	// History returns submissions joined with their author's email. validOnly
	// restricts to valid submissions; limit <= 0 means no limit.
	History(order Order, validOnly bool, limit int) ([]HistoryRow, error)
	UserSubmissions(userID string, order Order, limit int) ([]models.Submission, error)
}

// Order of submission listings by submission time.
type Order int

const (
	NewestFirst Order = iota
	OldestFirst
)

type HistoryRow struct {
	UserID         string    `json:"user_id"`
	Email          string    `json:"email"`
	Solution       string    `json:"solution"`
	ObjectiveValue float64   `json:"objective_value"`
	Method         string    `json:"method"`
	SubmittedAt    time.Time `json:"submitted_at"`
	IsValid        bool      `json:"is_valid"`
}

// Participant is a non-admin account with its best result, if any.
type Participant struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	FirstLogin         bool       `json:"first_login"`
	BestObjectiveValue *float64   `json:"best_objective_value"`
	LastImprovementAt  *time.Time `json:"last_improvement"`
}
