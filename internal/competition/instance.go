package competition

import (
	"strconv"
	"strings"

	"github.com/ZJUSCT/TopTSP/internal/database/models"
	"github.com/ZJUSCT/TopTSP/internal/metrics"
	"github.com/ZJUSCT/TopTSP/internal/tsp"
	"go.uber.org/zap"
)

// UploadInstance parses raw and makes it the active instance. With
// replaceExisting every submission and best result of every participant is
// deleted in the same transaction, so the competition starts over.
func (s *Service) UploadInstance(raw string, replaceExisting bool) (*models.Instance, error) {
	parsed, err := tsp.ParseTSPLIB(raw)
	if err != nil {
		return nil, err
	}
	inst := models.NewInstance(parsed)

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.store.Transaction(func(tx Store) error {
		if replaceExisting {
			if err := tx.ResetAll(); err != nil {
				return err
			}
		}
		raw, err := tx.GetSetting(models.SettingInstanceGeneration)
		if err != nil {
			return err
		}
		gen, _ := strconv.Atoi(raw)
		inst.Generation = gen + 1
		if err := tx.PutInstance(inst); err != nil {
			return err
		}
		return tx.SetSetting(models.SettingInstanceGeneration, strconv.Itoa(inst.Generation))
	})
	if err != nil {
		return nil, err
	}

	s.active = inst
	metrics.InstanceDimension.Set(float64(inst.Dimension))
	zap.S().Infof("instance %q uploaded (id=%d, dimension=%d, generation=%d, replaced=%t)",
		inst.Name, inst.ID, inst.Dimension, inst.Generation, replaceExisting)
	s.notify("instance")
	return inst, nil
}

// ActiveInstance returns the instance submissions are scored against.
func (s *Service) ActiveInstance() (*models.Instance, error) {
	return s.loadActive()
}

// InstanceDownload returns the uploaded text and a file name for it.
func (s *Service) InstanceDownload() (filename string, content string, err error) {
	inst, err := s.loadActive()
	if err != nil {
		return "", "", err
	}
	return strings.Join(strings.Fields(inst.Name), "_") + ".txt", inst.OriginalText, nil
}
