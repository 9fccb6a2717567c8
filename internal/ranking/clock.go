package ranking

import "time"

// IsOpen reports whether submissions are accepted at now. A nil endAt means
// the competition has no end.
func IsOpen(now time.Time, endAt *time.Time) bool {
	return endAt == nil || !now.After(*endAt)
}
