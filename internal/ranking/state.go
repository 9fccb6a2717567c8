package ranking

import (
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot is a leaderboard materialized at FrozenAt.
type Snapshot struct {
	Ranking  []Entry   `json:"ranking"`
	Stats    Stats     `json:"stats"`
	FrozenAt time.Time `json:"frozenAt"`
}

// State is the leaderboard mode and its payload, persisted as one value so a
// reader never sees the frozen flag without the snapshot it refers to.
// Unfreezing keeps the last snapshot around.
type State struct {
	Frozen   bool      `json:"frozen"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
}

// Freeze returns the frozen state for a freshly built snapshot.
func Freeze(rows []Entry, at time.Time) State {
	ranking, stats := Build(rows)
	return State{
		Frozen:   true,
		Snapshot: &Snapshot{Ranking: ranking, Stats: stats, FrozenAt: at},
	}
}

// Unfreeze returns s in live mode.
func (s State) Unfreeze() State {
	s.Frozen = false
	return s
}

func (s State) Encode() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeState reads a persisted state. An empty value is the live state.
func DecodeState(raw string) (State, error) {
	var s State
	if raw == "" {
		return s, nil
	}
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return State{}, fmt.Errorf("decode leaderboard state: %w", err)
	}
	if s.Frozen && s.Snapshot == nil {
		return State{}, fmt.Errorf("decode leaderboard state: frozen without snapshot")
	}
	return s, nil
}

// View is the leaderboard as shown to readers.
type View struct {
	Frozen   bool       `json:"frozen"`
	Ranking  []Entry    `json:"ranking"`
	Stats    Stats      `json:"stats"`
	FrozenAt *time.Time `json:"frozenTimestamp,omitempty"`
}

// Resolve returns the frozen snapshot when s is frozen, otherwise a live view
// built from the rows returned by live.
func (s State) Resolve(live func() ([]Entry, error)) (View, error) {
	if s.Frozen {
		at := s.Snapshot.FrozenAt
		return View{
			Frozen:   true,
			Ranking:  s.Snapshot.Ranking,
			Stats:    s.Snapshot.Stats,
			FrozenAt: &at,
		}, nil
	}
	rows, err := live()
	if err != nil {
		return View{}, err
	}
	ranking, stats := Build(rows)
	return View{Ranking: ranking, Stats: stats}, nil
}
