package writeback

import "testing"

func TestPermissionSetAllows(t *testing.T) {
	p := &PermissionSet{
		ClinicID:               "default",
		Role:                   "clinic_manager",
		CanApproveWaitlistFill: true,
		CanApproveReschedule:   true,
	}

	tests := []struct {
		action ActionType
		want   bool
	}{
		{ActionWaitlistFill, true},
		{ActionReschedule, true},
		{ActionStatusUpdate, false},
		{ActionOverbookSuggestion, false},
		{ActionBlockInsertion, false},
		{ActionType("made_up"), false},
	}
	for _, tt := range tests {
		if got := p.Allows(tt.action); got != tt.want {
			t.Errorf("Allows(%s) = %v, want %v", tt.action, got, tt.want)
		}
	}
}

func TestActionEnvelopeRoundTrip(t *testing.T) {
	original := BlockInsertionAction{
		ActionBase: ActionBase{
			AppointmentID: "a1",
			Instruction:   "Insert a 95-minute bookable block into the idle window",
		},
		ProviderID: "p1",
		GapStart:   "09:30",
		GapEnd:     "11:05",
		GapMinutes: 95,
	}

	data, err := MarshalAction(original)
	if err != nil {
		t.Fatalf("MarshalAction: %v", err)
	}

	decoded, err := UnmarshalAction(data)
	if err != nil {
		t.Fatalf("UnmarshalAction: %v", err)
	}
	got, ok := decoded.(BlockInsertionAction)
	if !ok {
		t.Fatalf("decoded to %T, want BlockInsertionAction", decoded)
	}
	if got != original {
		t.Errorf("round trip mismatch: got %+v", got)
	}
}

func TestUnmarshalActionUnknownType(t *testing.T) {
	if _, err := UnmarshalAction([]byte(`{"type":"teleport","payload":{}}`)); err == nil {
		t.Error("unknown action type should fail to decode")
	}
}

func TestRecommendationPending(t *testing.T) {
	rec := &Recommendation{}
	if !rec.Pending() {
		t.Error("nil is_approved should be pending")
	}
	approved := true
	rec.IsApproved = &approved
	if rec.Pending() {
		t.Error("decided recommendation should not be pending")
	}
}
