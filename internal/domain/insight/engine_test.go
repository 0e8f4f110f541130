package insight

import (
	"fmt"
	"testing"
	"time"

	"github.com/clinicops/clinicops/internal/domain/schedule"
)

func appt(id, providerID, start, end string, risk int) *schedule.Appointment {
	return &schedule.Appointment{
		ID:           id,
		ClinicID:     "default",
		PatientID:    "patient-" + id,
		PatientName:  "Patient " + id,
		ProviderID:   providerID,
		ProviderName: "Dr. " + providerID,
		Date:         time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime:    start,
		EndTime:      end,
		Status:       schedule.StatusScheduled,
		NoShowRisk:   risk,
	}
}

func byType(insights []Insight, t Type) []Insight {
	var out []Insight
	for _, in := range insights {
		if in.Type == t {
			out = append(out, in)
		}
	}
	return out
}

func TestDeriveNoShowRiskBoundary(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		risk int
		want int
	}{
		{risk: 70, want: 0},
		{risk: 71, want: 1},
		{risk: 95, want: 1},
	}
	for _, tt := range tests {
		appts := []*schedule.Appointment{appt("a1", "p1", "09:00", "09:30", tt.risk)}
		got := byType(e.Derive(appts, nil), TypeNoShowRisk)
		if len(got) != tt.want {
			t.Errorf("risk %d: got %d no-show insights, want %d", tt.risk, len(got), tt.want)
			continue
		}
		if tt.want == 1 {
			if got[0].Confidence != tt.risk {
				t.Errorf("risk %d: confidence = %d, want the risk score", tt.risk, got[0].Confidence)
			}
			if got[0].Severity != SeverityHigh {
				t.Errorf("risk %d: severity = %s, want high", tt.risk, got[0].Severity)
			}
			if got[0].ID != "insight_no_show_a1" {
				t.Errorf("unexpected insight id %s", got[0].ID)
			}
		}
	}
}

func TestDeriveInjectedRiskScorer(t *testing.T) {
	e := NewEngine(WithRiskScorer(func(a *schedule.Appointment) int { return 99 }))

	appts := []*schedule.Appointment{appt("a1", "p1", "09:00", "09:30", 0)}
	got := byType(e.Derive(appts, nil), TypeNoShowRisk)
	if len(got) != 1 {
		t.Fatalf("got %d insights, want 1 from injected scorer", len(got))
	}
	if got[0].Confidence != 99 {
		t.Errorf("confidence = %d, want 99", got[0].Confidence)
	}
}

func TestDeriveOverbookingGrouping(t *testing.T) {
	e := NewEngine()

	// Four appointments in the 10:00 hour produce nothing.
	var appts []*schedule.Appointment
	for i := 0; i < 4; i++ {
		appts = append(appts, appt(fmt.Sprintf("a%d", i), "p1", fmt.Sprintf("10:%02d", i*15), "10:59", 0))
	}
	if got := byType(e.Derive(appts, nil), TypeOverbooking); len(got) != 0 {
		t.Fatalf("4 appointments: got %d overbooking insights, want 0", len(got))
	}

	// A fifth, for a different provider, tips the hour over.
	appts = append(appts, appt("a4", "p2", "10:45", "11:00", 0))
	got := byType(e.Derive(appts, nil), TypeOverbooking)
	if len(got) != 1 {
		t.Fatalf("5 appointments: got %d overbooking insights, want exactly 1", len(got))
	}
	if got[0].Confidence != 85 {
		t.Errorf("confidence = %d, want 85", got[0].Confidence)
	}
	if got[0].ID != "insight_overbook_10" {
		t.Errorf("unexpected insight id %s", got[0].ID)
	}
	ids, ok := got[0].Metadata["appointment_ids"].([]string)
	if !ok || len(ids) != 5 {
		t.Errorf("metadata appointment_ids = %v, want all 5 ids", got[0].Metadata["appointment_ids"])
	}
}

func TestDeriveUnderutilization(t *testing.T) {
	e := NewEngine()

	providers := []*schedule.Provider{
		{ID: "p1", Name: "Dr. One"},
		{ID: "p2", Name: "Dr. Two"},
		{ID: "p3", Name: "Dr. Three"},
	}
	appts := []*schedule.Appointment{
		// p1: one 30-minute visit, well under four hours.
		appt("a1", "p1", "09:00", "09:30", 0),
		// p2: exactly 240 booked minutes, not underutilized.
		appt("a2", "p2", "09:00", "13:00", 0),
		// p3 has no appointments and must not be flagged.
	}

	got := byType(e.Derive(appts, providers), TypeUnderutilization)
	if len(got) != 1 {
		t.Fatalf("got %d underutilization insights, want 1", len(got))
	}
	if got[0].ProviderID != "p1" {
		t.Errorf("flagged provider %s, want p1", got[0].ProviderID)
	}
	if got[0].Confidence != 90 {
		t.Errorf("confidence = %d, want 90", got[0].Confidence)
	}
}

func TestDeriveCapacityGapBoundary(t *testing.T) {
	e := NewEngine()

	// 89-minute gap: 09:30 end to 10:59 start.
	appts := []*schedule.Appointment{
		appt("a1", "p1", "09:00", "09:30", 0),
		appt("a2", "p1", "10:59", "11:30", 0),
	}
	if got := byType(e.Derive(appts, nil), TypeCapacityGap); len(got) != 0 {
		t.Fatalf("89-minute gap: got %d capacity gaps, want 0", len(got))
	}

	// 91-minute gap: 09:30 end to 11:01 start.
	appts[1] = appt("a2", "p1", "11:01", "11:30", 0)
	got := byType(e.Derive(appts, nil), TypeCapacityGap)
	if len(got) != 1 {
		t.Fatalf("91-minute gap: got %d capacity gaps, want 1", len(got))
	}
	if gap, _ := got[0].Metadata["gap_minutes"].(int); gap != 91 {
		t.Errorf("gap_minutes = %v, want 91", got[0].Metadata["gap_minutes"])
	}
	if got[0].ID != "insight_gap_a1_a2" {
		t.Errorf("unexpected insight id %s", got[0].ID)
	}
}

func TestDeriveCapacityGapRequiresSameProvider(t *testing.T) {
	e := NewEngine()

	// Two providers with a wide gap between their appointments; no insight
	// because gaps are computed per provider.
	appts := []*schedule.Appointment{
		appt("a1", "p1", "09:00", "09:30", 0),
		appt("a2", "p2", "13:00", "13:30", 0),
	}
	if got := byType(e.Derive(appts, nil), TypeCapacityGap); len(got) != 0 {
		t.Fatalf("cross-provider gap: got %d capacity gaps, want 0", len(got))
	}
}

func TestDeriveIsDeterministic(t *testing.T) {
	e := NewEngine()
	appts := []*schedule.Appointment{
		appt("a1", "p1", "09:00", "09:30", 80),
		appt("a2", "p1", "11:30", "12:00", 0),
	}
	providers := []*schedule.Provider{{ID: "p1", Name: "Dr. One"}}

	first := e.Derive(appts, providers)
	second := e.Derive(appts, providers)
	if len(first) != len(second) {
		t.Fatalf("derivation not stable: %d vs %d insights", len(first), len(second))
	}
	firstIDs := make(map[string]bool)
	for _, in := range first {
		firstIDs[in.ID] = true
	}
	for _, in := range second {
		if !firstIDs[in.ID] {
			t.Errorf("second run produced unseen id %s", in.ID)
		}
	}
}
