package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/ZJUSCT/TopTSP/internal/tsp"
)

// Keys of the settings table.
const (
	SettingActiveInstance     = "current_tsp_instance"
	SettingInstanceGeneration = "instance_generation"
	SettingLeaderboardState   = "leaderboard_state"
	SettingEndDate            = "competition_end_date"
	SettingInstanceName       = "instance_name"
)

// Coordinates is stored as a JSON text column.
type Coordinates []tsp.Coordinate

func (c Coordinates) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *Coordinates) Scan(value interface{}) error {
	return scanJSON(value, c)
}

// Matrix is a dense distance matrix stored as a JSON text column.
type Matrix [][]float64

func (m Matrix) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *Matrix) Scan(value interface{}) error {
	return scanJSON(value, m)
}

func scanJSON(value interface{}, dst interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	case nil:
		return nil
	default:
		return errors.New("type assertion to []byte failed")
	}
}

type User struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	Email        string `gorm:"uniqueIndex" json:"email"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"is_admin"`
	FirstLogin   bool   `json:"first_login"`
}

type Instance struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Name           string      `json:"name"`
	Type           string      `json:"type"`
	Comment        string      `json:"comment"`
	Dimension      int         `json:"dimension"`
	EdgeWeightType string      `json:"edge_weight_type"`
	Coordinates    Coordinates `gorm:"type:text" json:"coordinates,omitempty"`
	DistanceMatrix Matrix      `gorm:"type:text" json:"-"`
	OriginalText   string      `json:"-"`
	Generation     int         `json:"generation"`
}

// NewInstance copies a parsed instance into its storage row.
func NewInstance(p *tsp.Instance) *Instance {
	return &Instance{
		Name:           p.Name,
		Type:           p.Type,
		Comment:        p.Comment,
		Dimension:      p.Dimension,
		EdgeWeightType: p.EdgeWeightType,
		Coordinates:    Coordinates(p.Coordinates),
		DistanceMatrix: Matrix(p.DistanceMatrix),
		OriginalText:   p.OriginalText,
	}
}

type Submission struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`

	UserID     string `gorm:"index" json:"user_id"`
	InstanceID uint   `gorm:"index" json:"instance_id"`
	Generation int    `json:"generation"`

	Solution       string    `json:"solution"`
	ObjectiveValue float64   `json:"objective_value"`
	Method         string    `json:"method"`
	IsValid        bool      `json:"is_valid"`
	SubmittedAt    time.Time `gorm:"index" json:"submitted_at"`
}

// BestResult is the per-user aggregate of every submission since the last
// reset. Uploading an instance without replacement keeps it, so a best value
// may come from an earlier generation.
type BestResult struct {
	UserID    string    `gorm:"primaryKey" json:"user_id"`
	UpdatedAt time.Time `json:"-"`

	BestSubmissionID   string    `json:"best_submission_id"`
	BestObjectiveValue float64   `json:"best_objective_value"`
	BestMethod         string    `json:"best_method"`
	TotalSubmissions   int       `json:"total_submissions"`
	LastImprovementAt  time.Time `json:"last_improvement_at"`
}

type Setting struct {
	Key   string `gorm:"primaryKey"`
	Value string
}
