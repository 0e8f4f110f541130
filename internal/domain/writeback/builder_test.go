package writeback

import (
	"testing"
	"time"

	"github.com/clinicops/clinicops/internal/domain/insight"
	"github.com/clinicops/clinicops/internal/domain/schedule"
)

func TestBuildBelowThresholdReturnsNil(t *testing.T) {
	b := NewBuilder(24 * time.Hour)

	in := insight.Insight{
		ID:            "insight_no_show_a1",
		Type:          insight.TypeNoShowRisk,
		Confidence:    82, // waitlist_fill threshold is 85
		AppointmentID: "a1",
	}
	rec, err := b.Build(in, nil, "user-1")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if rec != nil {
		t.Errorf("confidence 82 built a recommendation against threshold 85")
	}
}

func TestBuildSnapshotsThresholdAndExpiry(t *testing.T) {
	b := NewBuilder(24 * time.Hour)

	appt := &schedule.Appointment{
		ID:          "a1",
		PatientName: "Ada Quinn",
		Date:        time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime:   "09:00",
		EndTime:     "09:30",
	}
	in := insight.Insight{
		ID:            "insight_no_show_a1",
		Type:          insight.TypeNoShowRisk,
		Confidence:    90,
		AppointmentID: "a1",
	}

	before := time.Now()
	rec, err := b.Build(in, appt, "user-1")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if rec == nil {
		t.Fatal("confidence 90 should build against threshold 85")
	}

	if rec.Type != ActionWaitlistFill {
		t.Errorf("type = %s, want waitlist_fill", rec.Type)
	}
	if rec.RequiredThreshold != 85 {
		t.Errorf("required_threshold = %d, want 85 snapshotted from policy", rec.RequiredThreshold)
	}
	if rec.Confidence != 90 {
		t.Errorf("confidence = %d, want 90", rec.Confidence)
	}
	if rec.IsApproved != nil {
		t.Error("new recommendation must start pending")
	}
	if rec.ExpiresAt.Before(before.Add(23 * time.Hour)) {
		t.Errorf("expires_at = %v, want roughly 24h out", rec.ExpiresAt)
	}

	action, ok := rec.ProposedAction.(WaitlistFillAction)
	if !ok {
		t.Fatalf("proposed action is %T, want WaitlistFillAction", rec.ProposedAction)
	}
	if action.AppointmentID != "a1" || action.SlotStart != "09:00" || action.SlotEnd != "09:30" {
		t.Errorf("action fields not populated from appointment: %+v", action)
	}
	if action.Instruction == "" {
		t.Error("action instruction must be actionable prose, got empty string")
	}
}

func TestBuildOverbookingCarriesHourAndIDs(t *testing.T) {
	b := NewBuilder(time.Hour)

	in := insight.Insight{
		ID:         "insight_overbook_10",
		Type:       insight.TypeOverbooking,
		Confidence: 85,
		Metadata: map[string]interface{}{
			"hour":            "10",
			"appointment_ids": []string{"a1", "a2", "a3", "a4", "a5"},
		},
	}
	rec, err := b.Build(in, nil, "user-1")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if rec == nil {
		t.Fatal("overbooking at 85 should build against threshold 80")
	}

	action, ok := rec.ProposedAction.(OverbookSuggestionAction)
	if !ok {
		t.Fatalf("proposed action is %T, want OverbookSuggestionAction", rec.ProposedAction)
	}
	if action.Hour != "10" || len(action.AppointmentIDs) != 5 {
		t.Errorf("action = %+v, want hour 10 with 5 appointment ids", action)
	}
}
