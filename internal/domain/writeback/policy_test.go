package writeback

import (
	"testing"

	"github.com/clinicops/clinicops/internal/domain/insight"
)

func TestActionForMapping(t *testing.T) {
	tests := []struct {
		insightType insight.Type
		want        ActionType
		mapped      bool
	}{
		{insight.TypeNoShowRisk, ActionWaitlistFill, true},
		{insight.TypeCapacityGap, ActionBlockInsertion, true},
		{insight.TypeOverbooking, ActionOverbookSuggestion, true},
		{insight.TypeUnderutilization, ActionReschedule, true},
		{insight.TypeWaitlistOpportunity, "", false},
		{insight.TypeScheduleInstability, "", false},
	}
	for _, tt := range tests {
		got, ok := ActionFor(tt.insightType)
		if ok != tt.mapped || got != tt.want {
			t.Errorf("ActionFor(%s) = %q, %v; want %q, %v", tt.insightType, got, ok, tt.want, tt.mapped)
		}
	}
}

func TestThresholds(t *testing.T) {
	tests := []struct {
		action ActionType
		want   int
	}{
		{ActionStatusUpdate, 95},
		{ActionWaitlistFill, 85},
		{ActionOverbookSuggestion, 80},
		{ActionReschedule, 75},
		{ActionBlockInsertion, 90},
	}
	for _, tt := range tests {
		got, ok := Threshold(tt.action)
		if !ok || got != tt.want {
			t.Errorf("Threshold(%s) = %d, %v; want %d", tt.action, got, ok, tt.want)
		}
	}
}

func TestPromotableThresholdGate(t *testing.T) {
	// An overbooking insight at 79 stays informational; at 80 it promotes
	// with the threshold snapshotted.
	below := insight.Insight{Type: insight.TypeOverbooking, Confidence: 79}
	if _, _, ok := Promotable(below); ok {
		t.Error("confidence 79 promoted past threshold 80")
	}

	at := insight.Insight{Type: insight.TypeOverbooking, Confidence: 80}
	action, threshold, ok := Promotable(at)
	if !ok {
		t.Fatal("confidence 80 should promote at threshold 80")
	}
	if action != ActionOverbookSuggestion || threshold != 80 {
		t.Errorf("Promotable = %s, %d; want overbook_suggestion, 80", action, threshold)
	}
}

func TestPromotableUnmappedType(t *testing.T) {
	in := insight.Insight{Type: insight.TypeScheduleInstability, Confidence: 100}
	if _, _, ok := Promotable(in); ok {
		t.Error("unmapped insight type should never promote")
	}
}
