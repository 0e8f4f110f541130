package insight

import (
	"fmt"
	"sort"

	"github.com/clinicops/clinicops/internal/domain/schedule"
)

// RiskScorer produces a 0-100 no-show risk for an appointment. The default
// reads the score the upstream model already attached; deployments with a
// live predictor inject their own.
type RiskScorer func(*schedule.Appointment) int

func storedRisk(a *schedule.Appointment) int { return a.NoShowRisk }

const (
	noShowRiskFloor       = 70  // risk above this raises an insight
	overbookingHourLimit  = 4   // appointments per start hour before overbooked
	overbookingConfidence = 85
	underutilizedMinutes  = 240 // under four booked hours is underutilized
	underutilConfidence   = 90
	capacityGapMinutes    = 90
	capacityGapConfidence = 80
)

// Engine derives schedule intelligence from one day of appointments and the
// provider roster. Derivation is pure: identical inputs produce identical
// insights, and nothing is written anywhere.
type Engine struct {
	scorer RiskScorer
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{scorer: storedRisk}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type EngineOption func(*Engine)

// WithRiskScorer replaces the stored-score default with a live model.
func WithRiskScorer(scorer RiskScorer) EngineOption {
	return func(e *Engine) { e.scorer = scorer }
}

// Derive applies every rule independently; one appointment or provider can
// trigger several insight types. No ordering is guaranteed across types.
func (e *Engine) Derive(appointments []*schedule.Appointment, providers []*schedule.Provider) []Insight {
	var insights []Insight
	insights = append(insights, e.noShowRisks(appointments)...)
	insights = append(insights, e.overbookedHours(appointments)...)
	insights = append(insights, e.underutilizedProviders(appointments, providers)...)
	insights = append(insights, e.capacityGaps(appointments)...)
	return insights
}

func (e *Engine) noShowRisks(appointments []*schedule.Appointment) []Insight {
	var out []Insight
	for _, a := range appointments {
		risk := e.scorer(a)
		if risk <= noShowRiskFloor {
			continue
		}
		out = append(out, Insight{
			ID:            noShowID(a.ID),
			Type:          TypeNoShowRisk,
			Title:         fmt.Sprintf("High no-show risk: %s", a.PatientName),
			Description:   fmt.Sprintf("%s at %s has a %d%% no-show risk", a.PatientName, a.StartTime, risk),
			Confidence:    risk,
			AppointmentID: a.ID,
			ProviderID:    a.ProviderID,
			SuggestedAction: "Confirm the visit with the patient and line up a waitlist fill",
			Severity:      SeverityHigh,
			Metadata: map[string]interface{}{
				"risk_score": risk,
				"start_time": a.StartTime,
			},
		})
	}
	return out
}

func (e *Engine) overbookedHours(appointments []*schedule.Appointment) []Insight {
	byHour := make(map[string][]*schedule.Appointment)
	for _, a := range appointments {
		hour := a.StartHour()
		byHour[hour] = append(byHour[hour], a)
	}

	var out []Insight
	for hour, appts := range byHour {
		if len(appts) <= overbookingHourLimit {
			continue
		}
		ids := make([]string, len(appts))
		for i, a := range appts {
			ids[i] = a.ID
		}
		out = append(out, Insight{
			ID:          overbookID(hour),
			Type:        TypeOverbooking,
			Title:       fmt.Sprintf("Overbooked hour %s:00", hour),
			Description: fmt.Sprintf("%d appointments start in the %s:00 hour", len(appts), hour),
			Confidence:  overbookingConfidence,
			SuggestedAction: "Review the hour and offer reschedules before patients stack up",
			Severity:    SeverityMedium,
			Metadata: map[string]interface{}{
				"hour":            hour,
				"appointment_ids": ids,
			},
		})
	}
	return out
}

func (e *Engine) underutilizedProviders(appointments []*schedule.Appointment, providers []*schedule.Provider) []Insight {
	booked := make(map[string]int)
	counts := make(map[string]int)
	for _, a := range appointments {
		booked[a.ProviderID] += a.DurationMinutes()
		counts[a.ProviderID]++
	}

	var out []Insight
	for _, p := range providers {
		if counts[p.ID] == 0 || booked[p.ID] >= underutilizedMinutes {
			continue
		}
		out = append(out, Insight{
			ID:          underutilizationID(p.ID),
			Type:        TypeUnderutilization,
			Title:       fmt.Sprintf("%s is underutilized", p.Name),
			Description: fmt.Sprintf("%s has only %d booked minutes today", p.Name, booked[p.ID]),
			Confidence:  underutilConfidence,
			ProviderID:  p.ID,
			SuggestedAction: "Pull forward reschedule requests to fill the open time",
			Severity:    SeverityLow,
			Metadata: map[string]interface{}{
				"booked_minutes":    booked[p.ID],
				"appointment_count": counts[p.ID],
			},
		})
	}
	return out
}

func (e *Engine) capacityGaps(appointments []*schedule.Appointment) []Insight {
	byProvider := make(map[string][]*schedule.Appointment)
	for _, a := range appointments {
		byProvider[a.ProviderID] = append(byProvider[a.ProviderID], a)
	}

	var out []Insight
	for providerID, appts := range byProvider {
		sorted := make([]*schedule.Appointment, len(appts))
		copy(sorted, appts)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].StartMinutes() < sorted[j].StartMinutes()
		})

		for i := 0; i < len(sorted)-1; i++ {
			prev, next := sorted[i], sorted[i+1]
			gap := next.StartMinutes() - prev.EndMinutes()
			if gap < capacityGapMinutes {
				continue
			}
			out = append(out, Insight{
				ID:          capacityGapID(prev.ID, next.ID),
				Type:        TypeCapacityGap,
				Title:       fmt.Sprintf("%d-minute gap for %s", gap, prev.ProviderName),
				Description: fmt.Sprintf("Nothing is booked between %s and %s", prev.EndTime, next.StartTime),
				Confidence:  capacityGapConfidence,
				ProviderID:  providerID,
				SuggestedAction: "Insert a bookable block or offer the slot to the waitlist",
				Severity:    SeverityLow,
				Metadata: map[string]interface{}{
					"before_appointment_id": prev.ID,
					"after_appointment_id":  next.ID,
					"gap_minutes":           gap,
				},
			})
		}
	}
	return out
}
