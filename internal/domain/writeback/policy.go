package writeback

import "github.com/clinicops/clinicops/internal/domain/insight"

// actionThresholds is the confidence floor per action type. Thresholds are
// snapshotted onto each recommendation at build time, so editing this table
// never rewrites history.
var actionThresholds = map[ActionType]int{
	ActionStatusUpdate:       95,
	ActionWaitlistFill:       85,
	ActionOverbookSuggestion: 80,
	ActionReschedule:         75,
	ActionBlockInsertion:     90,
}

// insightActions maps insight types to their write-back action. Types absent
// here are informational only and never promoted. status_update has no
// automatic mapping; it is reserved for manual triggers.
var insightActions = map[insight.Type]ActionType{
	insight.TypeNoShowRisk:       ActionWaitlistFill,
	insight.TypeCapacityGap:      ActionBlockInsertion,
	insight.TypeOverbooking:      ActionOverbookSuggestion,
	insight.TypeUnderutilization: ActionReschedule,
}

// Threshold returns the confidence floor for an action type.
func Threshold(t ActionType) (int, bool) {
	th, ok := actionThresholds[t]
	return th, ok
}

// ActionFor returns the write-back action for an insight type, or false when
// the insight has no write-back path.
func ActionFor(t insight.Type) (ActionType, bool) {
	a, ok := insightActions[t]
	return a, ok
}

// Promotable reports whether an insight clears the bar for promotion: it
// maps to an action and its confidence meets that action's threshold.
func Promotable(in insight.Insight) (ActionType, int, bool) {
	action, ok := ActionFor(in.Type)
	if !ok {
		return "", 0, false
	}
	threshold, ok := Threshold(action)
	if !ok {
		return "", 0, false
	}
	if in.Confidence < threshold {
		return "", 0, false
	}
	return action, threshold, true
}
