package competition

import (
	"errors"
	"fmt"
	"os"

	"github.com/ZJUSCT/TopTSP/internal/config"
	"github.com/ZJUSCT/TopTSP/internal/database/models"
	"github.com/ZJUSCT/TopTSP/internal/metrics"
	"go.uber.org/zap"
)

// Bootstrap prepares a fresh or restarted deployment: it creates the
// configured admin account, loads the seed instance when none is active,
// writes the configured end date when none is stored, and restores the frozen
// gauge from the stored leaderboard state.
func (s *Service) Bootstrap(cfg *config.Config) error {
	zap.S().Info("starting bootstrap process...")

	if admin := cfg.Auth.BootstrapAdmin; admin.Email != "" {
		_, err := s.store.GetUserByEmail(admin.Email)
		switch {
		case errors.Is(err, ErrNotFound):
			if _, err := s.createUser(admin.Email, admin.Password, true); err != nil {
				return fmt.Errorf("failed to create bootstrap admin: %w", err)
			}
			zap.S().Infof("created bootstrap admin %s", admin.Email)
		case err != nil:
			return err
		}
	}

	if path := cfg.Competition.SeedInstance; path != "" {
		_, err := s.ActiveInstance()
		switch {
		case errors.Is(err, ErrNoInstance):
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read seed instance '%s': %w", path, err)
			}
			if _, err := s.UploadInstance(string(data), false); err != nil {
				return fmt.Errorf("failed to load seed instance '%s': %w", path, err)
			}
		case err != nil:
			return err
		default:
			zap.S().Info("an instance is already active, seed instance not loaded")
		}
	}

	if cfg.Competition.EndAt != "" {
		stored, err := s.store.GetSetting(models.SettingEndDate)
		if err != nil {
			return err
		}
		if stored == "" {
			if err := s.SetEndDate(cfg.Competition.EndAt); err != nil {
				return err
			}
		}
	}

	state, err := leaderboardState(s.store)
	if err != nil {
		return err
	}
	if state.Frozen {
		zap.S().Info("leaderboard is frozen")
	}
	metrics.SetFrozen(state.Frozen)
	return nil
}
