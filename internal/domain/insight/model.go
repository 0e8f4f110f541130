package insight

import "fmt"

// Type classifies a derived schedule observation.
type Type string

const (
	TypeNoShowRisk          Type = "no_show_risk"
	TypeCapacityGap         Type = "capacity_gap"
	TypeOverbooking         Type = "overbooking"
	TypeWaitlistOpportunity Type = "waitlist_opportunity"
	TypeUnderutilization    Type = "underutilization"
	TypeScheduleInstability Type = "schedule_instability"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Insight is an ephemeral derived fact about schedule health. Insights are
// recomputed on every load and never persisted; only per-user dismiss/snooze
// state survives between requests. IDs are deterministic functions of the
// insight type and its subject so suppression keys stay stable across
// recomputations.
type Insight struct {
	ID              string                 `json:"id"`
	Type            Type                   `json:"type"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Confidence      int                    `json:"confidence"`
	AppointmentID   string                 `json:"appointment_id,omitempty"`
	ProviderID      string                 `json:"provider_id,omitempty"`
	SuggestedAction string                 `json:"suggested_action,omitempty"`
	Severity        Severity               `json:"severity"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

func noShowID(appointmentID string) string { return "insight_no_show_" + appointmentID }

func overbookID(hour string) string { return "insight_overbook_" + hour }

func underutilizationID(providerID string) string { return "insight_underutil_" + providerID }

func capacityGapID(beforeID, afterID string) string {
	return fmt.Sprintf("insight_gap_%s_%s", beforeID, afterID)
}

// roleVisibility restricts which insight types a viewer role is shown.
// Roles without an entry see everything.
var roleVisibility = map[string][]Type{
	"front_desk_staff": {TypeNoShowRisk, TypeCapacityGap},
	"clinician":        {TypeOverbooking, TypeScheduleInstability},
}

// VisibleTo filters insights down to the types the viewer's role is shown.
func VisibleTo(role string, insights []Insight) []Insight {
	allowed, restricted := roleVisibility[role]
	if !restricted {
		return insights
	}

	allowedSet := make(map[Type]bool, len(allowed))
	for _, t := range allowed {
		allowedSet[t] = true
	}

	visible := make([]Insight, 0, len(insights))
	for _, in := range insights {
		if allowedSet[in.Type] {
			visible = append(visible, in)
		}
	}
	return visible
}
