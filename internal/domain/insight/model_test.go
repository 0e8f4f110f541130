package insight

import "testing"

func TestVisibleToFiltersByRole(t *testing.T) {
	all := []Insight{
		{ID: "1", Type: TypeNoShowRisk},
		{ID: "2", Type: TypeOverbooking},
		{ID: "3", Type: TypeCapacityGap},
		{ID: "4", Type: TypeScheduleInstability},
		{ID: "5", Type: TypeUnderutilization},
	}

	tests := []struct {
		role    string
		wantIDs map[string]bool
	}{
		{role: "front_desk_staff", wantIDs: map[string]bool{"1": true, "3": true}},
		{role: "clinician", wantIDs: map[string]bool{"2": true, "4": true}},
		{role: "clinic_manager", wantIDs: map[string]bool{"1": true, "2": true, "3": true, "4": true, "5": true}},
		{role: "", wantIDs: map[string]bool{"1": true, "2": true, "3": true, "4": true, "5": true}},
	}

	for _, tt := range tests {
		got := VisibleTo(tt.role, all)
		if len(got) != len(tt.wantIDs) {
			t.Errorf("role %q: got %d insights, want %d", tt.role, len(got), len(tt.wantIDs))
			continue
		}
		for _, in := range got {
			if !tt.wantIDs[in.ID] {
				t.Errorf("role %q: insight %s (%s) should not be visible", tt.role, in.ID, in.Type)
			}
		}
	}
}

func TestVisibleToEmptyInput(t *testing.T) {
	if got := VisibleTo("front_desk_staff", nil); len(got) != 0 {
		t.Errorf("got %d insights from empty input", len(got))
	}
}
