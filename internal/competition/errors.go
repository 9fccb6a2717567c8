package competition

import "errors"

var (
	ErrNoInstance        = errors.New("no TSP instance is currently available")
	ErrCompetitionClosed = errors.New("the competition has finished, no more solutions are accepted")
	ErrNotFound          = errors.New("not found")
	ErrStorage           = errors.New("storage error")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAdminProtected     = errors.New("admin accounts cannot be deleted")
)

var ErrInvalidDate = errors.New("invalid date")
