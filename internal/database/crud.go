package database

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ZJUSCT/TopTSP/internal/competition"
	"github.com/ZJUSCT/TopTSP/internal/database/models"
	"github.com/ZJUSCT/TopTSP/internal/ranking"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store implements competition.Store on top of gorm.
type Store struct {
	db *gorm.DB
}

var _ competition.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return competition.ErrNotFound
	}
	return fmt.Errorf("%w: %w", competition.ErrStorage, err)
}

func (s *Store) Transaction(fn func(tx competition.Store) error) error {
	var fnErr error
	err := s.db.Transaction(func(tx *gorm.DB) error {
		fnErr = fn(&Store{db: tx})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return wrap(err)
}

// Instance

func (s *Store) ActiveInstance() (*models.Instance, error) {
	raw, err := s.GetSetting(models.SettingActiveInstance)
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, competition.ErrNotFound
	}
	var inst models.Instance
	if err := s.db.Where("id = ?", id).First(&inst).Error; err != nil {
		return nil, wrap(err)
	}
	return &inst, nil
}

func (s *Store) PutInstance(inst *models.Instance) error {
	if err := s.db.Create(inst).Error; err != nil {
		return wrap(err)
	}
	return s.SetSetting(models.SettingActiveInstance, strconv.FormatUint(uint64(inst.ID), 10))
}

func (s *Store) ResetAll() error {
	if err := s.db.Where("1 = 1").Delete(&models.Submission{}).Error; err != nil {
		return wrap(err)
	}
	return wrap(s.db.Where("1 = 1").Delete(&models.BestResult{}).Error)
}

// Submission & best result

func (s *Store) AppendSubmission(sub *models.Submission) error {
	return wrap(s.db.Create(sub).Error)
}

func (s *Store) GetSubmission(id string) (*models.Submission, error) {
	var sub models.Submission
	if err := s.db.Where("id = ?", id).First(&sub).Error; err != nil {
		return nil, wrap(err)
	}
	return &sub, nil
}

func (s *Store) BestResult(userID string) (*models.BestResult, error) {
	var best models.BestResult
	if err := s.db.Where("user_id = ?", userID).First(&best).Error; err != nil {
		return nil, wrap(err)
	}
	return &best, nil
}

func (s *Store) PutBestResult(best *models.BestResult) error {
	return wrap(s.db.Save(best).Error)
}

func (s *Store) ListRankingRows() ([]ranking.Entry, error) {
	var rows []ranking.Entry
	err := s.db.Table("best_results").
		Select("best_results.user_id, users.email, best_results.best_objective_value, best_results.best_method, best_results.last_improvement_at, best_results.total_submissions").
		Joins("join users on users.id = best_results.user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, wrap(err)
	}
	return rows, nil
}

// Settings

// GetSetting returns "" for a key that was never set.
func (s *Store) GetSetting(key string) (string, error) {
	var setting models.Setting
	err := s.db.Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", wrap(err)
	}
	return setting.Value, nil
}

func (s *Store) SetSetting(key, value string) error {
	setting := models.Setting{Key: key, Value: value}
	return wrap(s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&setting).Error)
}

// User CRUD

func (s *Store) CreateUser(user *models.User) error {
	return wrap(s.db.Create(user).Error)
}

func (s *Store) GetUser(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, wrap(err)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, wrap(err)
	}
	return &user, nil
}

func (s *Store) UpdateUser(user *models.User) error {
	return wrap(s.db.Save(user).Error)
}

func (s *Store) DeleteUserCascade(id string) error {
	if err := s.db.Where("user_id = ?", id).Delete(&models.Submission{}).Error; err != nil {
		return wrap(err)
	}
	if err := s.db.Where("user_id = ?", id).Delete(&models.BestResult{}).Error; err != nil {
		return wrap(err)
	}
	return wrap(s.db.Where("id = ?", id).Delete(&models.User{}).Error)
}

func (s *Store) ListParticipants() ([]competition.Participant, error) {
	var rows []competition.Participant
	err := s.db.Table("users").
		Select("users.id, users.email, users.first_login, best_results.best_objective_value, best_results.last_improvement_at").
		Joins("left join best_results on best_results.user_id = users.id").
		Where("users.is_admin = ?", false).
		Order("users.email").
		Scan(&rows).Error
	if err != nil {
		return nil, wrap(err)
	}
	return rows, nil
}

// History

func orderClause(column string, order competition.Order) string {
	if order == competition.OldestFirst {
		return column + " asc"
	}
	return column + " desc"
}

func (s *Store) History(order competition.Order, validOnly bool, limit int) ([]competition.HistoryRow, error) {
	q := s.db.Table("submissions").
		Select("submissions.user_id, users.email, submissions.solution, submissions.objective_value, submissions.method, submissions.submitted_at, submissions.is_valid").
		Joins("join users on users.id = submissions.user_id").
		Order(orderClause("submissions.submitted_at", order))
	if validOnly {
		q = q.Where("submissions.is_valid = ?", true)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []competition.HistoryRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, wrap(err)
	}
	return rows, nil
}

func (s *Store) UserSubmissions(userID string, order competition.Order, limit int) ([]models.Submission, error) {
	q := s.db.Where("user_id = ?", userID).Order(orderClause("submitted_at", order))
	if limit > 0 {
		q = q.Limit(limit)
	}
	var subs []models.Submission
	if err := q.Find(&subs).Error; err != nil {
		return nil, wrap(err)
	}
	return subs, nil
}
