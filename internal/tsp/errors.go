package tsp

import "errors"

// Instance parsing errors.
var (
	ErrInvalidFormat     = errors.New("invalid TSP format")
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// Tour validation errors. The first three are raised while reading the
// comma-separated text, the rest by ValidatePermutation.
var (
	ErrEmptyInput       = errors.New("solution is empty")
	ErrNonNumericToken  = errors.New("solution contains a non-numeric node")
	ErrNonPositiveToken = errors.New("solution contains a non-positive node")
	ErrWrongLength      = errors.New("solution has the wrong number of nodes")
	ErrDuplicateNode    = errors.New("solution contains duplicate nodes")
	ErrMissingNode      = errors.New("solution is missing a node")
)

// IsParseError reports whether err came from ParseTSPLIB.
func IsParseError(err error) bool {
	return errors.Is(err, ErrInvalidFormat) || errors.Is(err, ErrDimensionMismatch)
}

// IsValidationError reports whether err came from reading or validating a tour.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrEmptyInput, ErrNonNumericToken, ErrNonPositiveToken,
		ErrWrongLength, ErrDuplicateNode, ErrMissingNode,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
