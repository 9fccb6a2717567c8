package tsp

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePermutation reads a comma-separated list of positive node ids.
func ParsePermutation(text string) ([]int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	tokens := strings.Split(text, ",")
	perm := make([]int, 0, len(tokens))
	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: %q at position %d", ErrNonNumericToken, tok, i+1)
		}
		if n <= 0 {
			return nil, fmt.Errorf("%w: %d at position %d", ErrNonPositiveToken, n, i+1)
		}
		perm = append(perm, n)
	}
	return perm, nil
}

// ValidatePermutation checks that perm visits every node in 1..n exactly once.
func ValidatePermutation(perm []int, n int) error {
	if len(perm) != n {
		return fmt.Errorf("%w: solution must contain exactly %d nodes", ErrWrongLength, n)
	}

	seen := make(map[int]struct{}, n)
	for _, v := range perm {
		if _, dup := seen[v]; dup {
			return fmt.Errorf("%w: node %d appears more than once", ErrDuplicateNode, v)
		}
		seen[v] = struct{}{}
	}

	for i := 1; i <= n; i++ {
		if _, ok := seen[i]; !ok {
			return fmt.Errorf("%w: node %d", ErrMissingNode, i)
		}
	}
	return nil
}

// Evaluate returns the length of the closed tour perm, rounded to two decimals.
// perm is 1-based and must already have passed ValidatePermutation.
func Evaluate(perm []int, dist [][]float64) float64 {
	var total float64
	n := len(perm)
	for i := 0; i < n; i++ {
		from := perm[i] - 1
		to := perm[(i+1)%n] - 1
		total += dist[from][to]
	}
	return Round2(total)
}

// FormatPermutation renders perm the way participants submit it.
func FormatPermutation(perm []int) string {
	parts := make([]string, len(perm))
	for i, v := range perm {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
