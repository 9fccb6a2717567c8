package competition

import (
	"github.com/ZJUSCT/TopTSP/internal/database/models"
	"github.com/ZJUSCT/TopTSP/internal/metrics"
	"github.com/ZJUSCT/TopTSP/internal/ranking"
	"go.uber.org/zap"
)

func leaderboardState(store Store) (ranking.State, error) {
	raw, err := store.GetSetting(models.SettingLeaderboardState)
	if err != nil {
		return ranking.State{}, err
	}
	state, err := ranking.DecodeState(raw)
	if err != nil {
		// A corrupt value falls back to the live leaderboard.
		zap.S().Errorf("%v, serving the live leaderboard", err)
		return ranking.State{}, nil
	}
	return state, nil
}

// Ranking returns the frozen snapshot while the leaderboard is frozen, and the
// live leaderboard otherwise.
func (s *Service) Ranking() (ranking.View, error) {
	var view ranking.View
	err := s.store.Transaction(func(tx Store) error {
		state, err := leaderboardState(tx)
		if err != nil {
			return err
		}
		view, err = state.Resolve(tx.ListRankingRows)
		return err
	})
	return view, err
}

// ToggleFreeze freezes or unfreezes the public leaderboard. Freezing always
// takes a fresh snapshot of the current best results; unfreezing keeps the
// stored snapshot.
func (s *Service) ToggleFreeze(frozen bool) error {
	err := s.store.Transaction(func(tx Store) error {
		state, err := leaderboardState(tx)
		if err != nil {
			return err
		}
		if frozen {
			rows, err := tx.ListRankingRows()
			if err != nil {
				return err
			}
			state = ranking.Freeze(rows, s.now())
		} else {
			state = state.Unfreeze()
		}
		raw, err := state.Encode()
		if err != nil {
			return err
		}
		return tx.SetSetting(models.SettingLeaderboardState, raw)
	})
	if err != nil {
		return err
	}

	metrics.SetFrozen(frozen)
	if frozen {
		zap.S().Info("leaderboard frozen")
		s.notify("freeze")
	} else {
		zap.S().Info("leaderboard unfrozen")
		s.notify("unfreeze")
	}
	return nil
}

// ResetRanking deletes every submission and best result. The frozen state and
// its snapshot are left as they are.
func (s *Service) ResetRanking() error {
	if err := s.store.Transaction(func(tx Store) error { return tx.ResetAll() }); err != nil {
		return err
	}
	zap.S().Warn("ranking reset: all submissions and best results deleted")
	s.notify("reset")
	return nil
}
