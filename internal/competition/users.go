package competition

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ZJUSCT/TopTSP/internal/auth"
	"github.com/ZJUSCT/TopTSP/internal/database/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateUsersResult struct {
	Created int      `json:"created"`
	Errors  []string `json:"errors"`
}

// CreateUsers creates a participant for every address in the ';'-separated
// list. The initial password is the address itself.
func (s *Service) CreateUsers(emails string) (*CreateUsersResult, error) {
	res := &CreateUsersResult{Errors: []string{}}
	for _, email := range strings.Split(emails, ";") {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}

		_, err := s.store.GetUserByEmail(email)
		if err == nil {
			res.Errors = append(res.Errors, fmt.Sprintf("User %s already exists", email))
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}

		if _, err := s.createUser(email, email, false); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Error creating user %s: %v", email, err))
			continue
		}
		res.Created++
	}
	zap.S().Infof("created %d users (%d errors)", res.Created, len(res.Errors))
	return res, nil
}

func (s *Service) createUser(email, password string, admin bool) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      admin,
		FirstLogin:   true,
	}
	if err := s.store.CreateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate returns the account for a correct email/password pair.
func (s *Service) Authenticate(email, password string) (*models.User, error) {
	user, err := s.store.GetUserByEmail(strings.TrimSpace(email))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) User(id string) (*models.User, error) {
	return s.store.GetUser(id)
}

// ChangePassword sets a new password and clears the first-login flag.
func (s *Service) ChangePassword(userID, newPassword string) error {
	user, err := s.store.GetUser(userID)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.FirstLogin = false
	return s.store.UpdateUser(user)
}

// ResetPassword sets the password back to the user's email and asks for a
// change on next login.
func (s *Service) ResetPassword(userID string) error {
	user, err := s.store.GetUser(userID)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(user.Email)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.FirstLogin = true
	return s.store.UpdateUser(user)
}

// DeleteUser removes a participant together with all their submissions and
// their best result.
func (s *Service) DeleteUser(userID string) error {
	err := s.store.Transaction(func(tx Store) error {
		user, err := tx.GetUser(userID)
		if err != nil {
			return err
		}
		if user.IsAdmin {
			return ErrAdminProtected
		}
		return tx.DeleteUserCascade(userID)
	})
	if err != nil {
		return err
	}
	zap.S().Infof("user %s deleted with all submissions", userID)
	s.notify("user_deleted")
	return nil
}

func (s *Service) Participants() ([]Participant, error) {
	return s.store.ListParticipants()
}
