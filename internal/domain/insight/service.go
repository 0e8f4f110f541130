package insight

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicops/clinicops/internal/domain/schedule"
)

// ErrDisabled is returned when the scheduler feature flag is off for this
// deployment.
var ErrDisabled = errors.New("schedule intelligence is disabled")

// Service composes the schedule loader, the derivation engine, role
// visibility, and per-user suppression into the insight feed.
type Service struct {
	schedules *schedule.Service
	engine    *Engine
	store     SuppressionStore
	enabled   bool
	logger    zerolog.Logger
}

func NewService(schedules *schedule.Service, engine *Engine, store SuppressionStore, enabled bool, logger zerolog.Logger) *Service {
	return &Service{
		schedules: schedules,
		engine:    engine,
		store:     store,
		enabled:   enabled,
		logger:    logger.With().Str("component", "insight").Logger(),
	}
}

// ForDay derives the insight feed for one clinic day as seen by one user:
// derive, filter by role visibility, then drop suppressed ids.
func (s *Service) ForDay(ctx context.Context, clinicID string, date time.Time, userID, role string) ([]Insight, error) {
	if !s.enabled {
		return nil, ErrDisabled
	}

	day, err := s.schedules.LoadDay(ctx, clinicID, date)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}

	derived := s.engine.Derive(day.Appointments, day.Providers)
	visible := VisibleTo(role, derived)

	ids := make([]string, len(visible))
	for i, in := range visible {
		ids[i] = in.ID
	}
	suppressed, err := s.store.SuppressedSet(ctx, userID, ids)
	if err != nil {
		// Suppression state is best effort; a Redis outage must not take
		// down the feed.
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("suppression lookup failed, showing all insights")
		suppressed = map[string]bool{}
	}

	out := make([]Insight, 0, len(visible))
	for _, in := range visible {
		if suppressed[in.ID] {
			continue
		}
		out = append(out, in)
	}

	s.logger.Debug().
		Str("clinic_id", clinicID).
		Str("role", role).
		Int("derived", len(derived)).
		Int("shown", len(out)).
		Msg("insight feed computed")
	return out, nil
}

// Dismiss hides an insight for this user permanently.
func (s *Service) Dismiss(ctx context.Context, userID, insightID string) error {
	if !s.enabled {
		return ErrDisabled
	}
	if insightID == "" {
		return fmt.Errorf("insight id is required")
	}
	return s.store.Dismiss(ctx, userID, insightID)
}

// Snooze hides an insight for this user until the duration elapses.
func (s *Service) Snooze(ctx context.Context, userID, insightID string, d time.Duration) error {
	if !s.enabled {
		return ErrDisabled
	}
	if insightID == "" {
		return fmt.Errorf("insight id is required")
	}
	return s.store.Snooze(ctx, userID, insightID, d)
}
