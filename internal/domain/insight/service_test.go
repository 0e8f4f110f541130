package insight

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicops/clinicops/internal/domain/schedule"
)

type fakeAppointmentReader struct {
	appts []*schedule.Appointment
	err   error
}

func (f *fakeAppointmentReader) GetByID(ctx context.Context, id string) (*schedule.Appointment, error) {
	for _, a := range f.appts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, errors.New("appointment not found")
}

func (f *fakeAppointmentReader) ListByClinicAndDate(ctx context.Context, clinicID string, date time.Time) ([]*schedule.Appointment, error) {
	return f.appts, f.err
}

func (f *fakeAppointmentReader) ListByClinicAndRange(ctx context.Context, clinicID string, from, to time.Time) ([]*schedule.Appointment, error) {
	return f.appts, f.err
}

type fakeProviderReader struct {
	providers []*schedule.Provider
}

func (f *fakeProviderReader) GetByID(ctx context.Context, id string) (*schedule.Provider, error) {
	for _, p := range f.providers {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errors.New("provider not found")
}

func (f *fakeProviderReader) ListByClinic(ctx context.Context, clinicID string) ([]*schedule.Provider, error) {
	return f.providers, nil
}

type memorySuppressionStore struct {
	dismissed map[string]map[string]bool
	snoozed   map[string]map[string]time.Time
}

func newMemorySuppressionStore() *memorySuppressionStore {
	return &memorySuppressionStore{
		dismissed: make(map[string]map[string]bool),
		snoozed:   make(map[string]map[string]time.Time),
	}
}

func (m *memorySuppressionStore) Dismiss(ctx context.Context, userID, insightID string) error {
	if m.dismissed[userID] == nil {
		m.dismissed[userID] = make(map[string]bool)
	}
	m.dismissed[userID][insightID] = true
	return nil
}

func (m *memorySuppressionStore) Snooze(ctx context.Context, userID, insightID string, d time.Duration) error {
	if m.snoozed[userID] == nil {
		m.snoozed[userID] = make(map[string]time.Time)
	}
	m.snoozed[userID][insightID] = time.Now().Add(d)
	return nil
}

func (m *memorySuppressionStore) Suppressed(ctx context.Context, userID, insightID string) (bool, error) {
	if m.dismissed[userID][insightID] {
		return true, nil
	}
	if until, ok := m.snoozed[userID][insightID]; ok && time.Now().Before(until) {
		return true, nil
	}
	return false, nil
}

func (m *memorySuppressionStore) SuppressedSet(ctx context.Context, userID string, insightIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(insightIDs))
	for _, id := range insightIDs {
		suppressed, _ := m.Suppressed(ctx, userID, id)
		out[id] = suppressed
	}
	return out, nil
}

func newTestService(appts []*schedule.Appointment, providers []*schedule.Provider, store SuppressionStore, enabled bool) *Service {
	schedSvc := schedule.NewService(
		&fakeAppointmentReader{appts: appts},
		&fakeProviderReader{providers: providers},
	)
	return NewService(schedSvc, NewEngine(), store, enabled, zerolog.Nop())
}

func TestForDayDismissedInsightExcluded(t *testing.T) {
	ctx := context.Background()
	appts := []*schedule.Appointment{
		appt("a1", "p1", "09:00", "09:30", 80),
		appt("a2", "p1", "14:00", "14:30", 85),
	}
	store := newMemorySuppressionStore()
	svc := newTestService(appts, nil, store, true)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	before, err := svc.ForDay(ctx, "default", date, "user-1", "clinic_manager")
	if err != nil {
		t.Fatalf("ForDay: %v", err)
	}
	if len(before) < 2 {
		t.Fatalf("got %d insights, want at least 2", len(before))
	}

	if err := svc.Dismiss(ctx, "user-1", "insight_no_show_a1"); err != nil {
		t.Fatalf("Dismiss: %v", err)
	}

	after, err := svc.ForDay(ctx, "default", date, "user-1", "clinic_manager")
	if err != nil {
		t.Fatalf("ForDay after dismiss: %v", err)
	}
	for _, in := range after {
		if in.ID == "insight_no_show_a1" {
			t.Error("dismissed insight still present after recomputation")
		}
	}
	found := false
	for _, in := range after {
		if in.ID == "insight_no_show_a2" {
			found = true
		}
	}
	if !found {
		t.Error("dismissing one insight suppressed an unrelated one")
	}
}

func TestForDaySnoozeExpiryResurfaces(t *testing.T) {
	ctx := context.Background()
	appts := []*schedule.Appointment{appt("a1", "p1", "09:00", "09:30", 80)}
	store := newMemorySuppressionStore()
	svc := newTestService(appts, nil, store, true)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	if err := svc.Snooze(ctx, "user-1", "insight_no_show_a1", time.Minute); err != nil {
		t.Fatalf("Snooze: %v", err)
	}
	snoozed, err := svc.ForDay(ctx, "default", date, "user-1", "clinic_manager")
	if err != nil {
		t.Fatalf("ForDay: %v", err)
	}
	if len(snoozed) != 0 {
		t.Fatalf("got %d insights while snoozed, want 0", len(snoozed))
	}

	// Expire the snooze by hand.
	store.snoozed["user-1"]["insight_no_show_a1"] = time.Now().Add(-time.Second)

	resurfaced, err := svc.ForDay(ctx, "default", date, "user-1", "clinic_manager")
	if err != nil {
		t.Fatalf("ForDay after expiry: %v", err)
	}
	if len(resurfaced) != 1 {
		t.Fatalf("got %d insights after snooze expiry, want 1", len(resurfaced))
	}
}

func TestForDaySuppressionIsPerUser(t *testing.T) {
	ctx := context.Background()
	appts := []*schedule.Appointment{appt("a1", "p1", "09:00", "09:30", 80)}
	store := newMemorySuppressionStore()
	svc := newTestService(appts, nil, store, true)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	if err := svc.Dismiss(ctx, "user-1", "insight_no_show_a1"); err != nil {
		t.Fatalf("Dismiss: %v", err)
	}

	other, err := svc.ForDay(ctx, "default", date, "user-2", "clinic_manager")
	if err != nil {
		t.Fatalf("ForDay: %v", err)
	}
	if len(other) != 1 {
		t.Fatalf("other user got %d insights, want 1", len(other))
	}
}

func TestForDayRoleVisibilityApplied(t *testing.T) {
	ctx := context.Background()
	appts := []*schedule.Appointment{appt("a1", "p1", "09:00", "09:30", 80)}
	svc := newTestService(appts, nil, newMemorySuppressionStore(), true)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	// A clinician never sees no_show_risk.
	got, err := svc.ForDay(ctx, "default", date, "user-1", "clinician")
	if err != nil {
		t.Fatalf("ForDay: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("clinician got %d no-show insights, want 0", len(got))
	}
}

func TestServiceDisabled(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil, nil, newMemorySuppressionStore(), false)

	if _, err := svc.ForDay(ctx, "default", time.Now(), "user-1", "clinic_manager"); !errors.Is(err, ErrDisabled) {
		t.Errorf("ForDay error = %v, want ErrDisabled", err)
	}
	if err := svc.Dismiss(ctx, "user-1", "x"); !errors.Is(err, ErrDisabled) {
		t.Errorf("Dismiss error = %v, want ErrDisabled", err)
	}
	if err := svc.Snooze(ctx, "user-1", "x", time.Minute); !errors.Is(err, ErrDisabled) {
		t.Errorf("Snooze error = %v, want ErrDisabled", err)
	}
}
