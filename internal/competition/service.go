// Package competition runs the single-instance TSP competition: it accepts
// instance uploads and tour submissions, keeps every participant's best result
// and serves the leaderboard, live or frozen.
package competition

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ZJUSCT/TopTSP/internal/database/models"
	"github.com/ZJUSCT/TopTSP/internal/metrics"
	"github.com/ZJUSCT/TopTSP/internal/pubsub"
	"go.uber.org/zap"
)

// Publisher receives leaderboard change notifications.
type Publisher interface {
	Publish(topic string, msg []byte)
}

type Service struct {
	store               Store
	publisher           Publisher
	now                 func() time.Time
	defaultInstanceName string

	// mu guards the cached active instance. Submissions hold it for reading
	// while they are scored and stored; an instance upload holds it for
	// writing, so no submission lands across an instance transition.
	mu     sync.RWMutex
	active *models.Instance
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithDefaultInstanceName sets the display name used when none is stored.
func WithDefaultInstanceName(name string) Option {
	return func(s *Service) { s.defaultInstanceName = name }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		publisher: pubsub.GetBroker(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) notify(reason string) {
	s.publisher.Publish(pubsub.TopicRanking, pubsub.FormatMessage(pubsub.TopicRanking, reason))
}

// activeInstance returns the cached instance. The caller must hold s.mu.
func (s *Service) activeInstance() (*models.Instance, error) {
	if s.active != nil {
		return s.active, nil
	}
	inst, err := s.store.ActiveInstance()
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoInstance
	}
	if err != nil {
		return nil, err
	}
	s.active = inst
	metrics.InstanceDimension.Set(float64(inst.Dimension))
	return inst, nil
}

// loadActive fills the instance cache if needed and returns it.
func (s *Service) loadActive() (*models.Instance, error) {
	inst, err := s.rlockActive()
	if err != nil {
		return nil, err
	}
	s.mu.RUnlock()
	return inst, nil
}

// rlockActive returns the active instance with s.mu read-locked. The caller
// must RUnlock when it is done; on error nothing is held.
func (s *Service) rlockActive() (*models.Instance, error) {
	for {
		s.mu.RLock()
		if s.active != nil {
			return s.active, nil
		}
		s.mu.RUnlock()

		s.mu.Lock()
		_, err := s.activeInstance()
		s.mu.Unlock()
		if err != nil {
			return nil, err
		}
	}
}

// endDate returns the stored end of the competition, or nil when unbounded.
// An unreadable value is treated as unbounded.
func endDate(store Store) (*time.Time, error) {
	raw, err := store.GetSetting(models.SettingEndDate)
	if err != nil {
		return nil, err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	end, err := parseTimestamp(raw)
	if err != nil {
		zap.S().Warnf("ignoring unreadable competition end date %q: %v", raw, err)
		return nil, nil
	}
	return &end, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(raw string) (time.Time, error) {
	var err error
	for _, layout := range timestampLayouts {
		var t time.Time
		if t, err = time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
