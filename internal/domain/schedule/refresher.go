package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Refresher keeps a clinic's current-day schedule warm. A ticker reloads on
// a fixed interval; manual Refresh calls are dropped while one is already in
// flight. The ticker is not serialized against manual refreshes.
type Refresher struct {
	svc      *Service
	clinicID string
	interval time.Duration
	logger   zerolog.Logger

	mu       sync.RWMutex
	snapshot *DaySchedule
	inFlight atomic.Bool
}

const DefaultRefreshInterval = 5 * time.Minute

func NewRefresher(svc *Service, clinicID string, interval time.Duration, logger zerolog.Logger) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{
		svc:      svc,
		clinicID: clinicID,
		interval: interval,
		logger:   logger,
	}
}

// Start runs the periodic reload until ctx is cancelled.
func (r *Refresher) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.reload(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reload(ctx)
		}
	}
}

// Refresh reloads on demand. A call arriving while another manual refresh is
// in flight is dropped and reports false.
func (r *Refresher) Refresh(ctx context.Context) bool {
	if !r.inFlight.CompareAndSwap(false, true) {
		return false
	}
	defer r.inFlight.Store(false)
	r.reload(ctx)
	return true
}

func (r *Refresher) reload(ctx context.Context) {
	day, err := r.svc.LoadDay(ctx, r.clinicID, time.Now().Truncate(24*time.Hour))
	if err != nil {
		r.logger.Error().Err(err).Str("clinic_id", r.clinicID).Msg("schedule refresh failed")
		return
	}

	r.mu.Lock()
	r.snapshot = day
	r.mu.Unlock()
}

// Snapshot returns the most recent successful load, nil before the first one.
func (r *Refresher) Snapshot() *DaySchedule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}
