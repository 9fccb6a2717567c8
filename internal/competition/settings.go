package competition

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ZJUSCT/TopTSP/internal/database/models"
	"github.com/ZJUSCT/TopTSP/internal/ranking"
	"go.uber.org/zap"
)

type Settings struct {
	InstanceName string     `json:"instance_name"`
	EndAt        *time.Time `json:"end_at"`
	Frozen       bool       `json:"frozen"`
	HasInstance  bool       `json:"has_instance"`
}

// SetEndDate stores the end of the submission window. An empty value removes it.
func (s *Service) SetEndDate(raw string) error {
	raw = strings.TrimSpace(raw)
	value := ""
	if raw != "" {
		end, err := parseTimestamp(raw)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDate, raw)
		}
		value = end.UTC().Format(time.RFC3339)
	}
	if err := s.store.SetSetting(models.SettingEndDate, value); err != nil {
		return err
	}
	zap.S().Infof("competition end date set to %q", value)
	return nil
}

// SetInstanceName stores the display name. An empty name restores the default.
func (s *Service) SetInstanceName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.defaultInstanceName
	}
	return s.store.SetSetting(models.SettingInstanceName, name)
}

func (s *Service) instanceName(store Store) (string, error) {
	name, err := store.GetSetting(models.SettingInstanceName)
	if err != nil {
		return "", err
	}
	if name == "" {
		name = s.defaultInstanceName
	}
	return name, nil
}

// IsOpen reports whether a submission made now would be accepted.
func (s *Service) IsOpen() (bool, error) {
	end, err := endDate(s.store)
	if err != nil {
		return false, err
	}
	return ranking.IsOpen(s.now(), end), nil
}

func (s *Service) Settings() (*Settings, error) {
	var out Settings
	err := s.store.Transaction(func(tx Store) error {
		var err error
		if out.InstanceName, err = s.instanceName(tx); err != nil {
			return err
		}
		if out.EndAt, err = endDate(tx); err != nil {
			return err
		}
		state, err := leaderboardState(tx)
		if err != nil {
			return err
		}
		out.Frozen = state.Frozen
		return nil
	})
	if err != nil {
		return nil, err
	}

	_, err = s.loadActive()
	switch {
	case err == nil:
		out.HasInstance = true
	case !errors.Is(err, ErrNoInstance):
		return nil, err
	}
	return &out, nil
}
