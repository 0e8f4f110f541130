package writeback

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicops/clinicops/internal/domain/insight"
	"github.com/clinicops/clinicops/internal/domain/schedule"
)

// Builder turns promotable insights into durable recommendations. It never
// persists; callers save explicitly.
type Builder struct {
	ttl time.Duration
}

func NewBuilder(ttl time.Duration) *Builder {
	return &Builder{ttl: ttl}
}

// Build returns a recommendation for a promotable insight, or (nil, nil)
// when the insight has no write-back path or its confidence falls short.
// A nil appointment is fine for insights not tied to a single appointment.
func (b *Builder) Build(in insight.Insight, appt *schedule.Appointment, actorID string) (*Recommendation, error) {
	action, threshold, ok := Promotable(in)
	if !ok {
		return nil, nil
	}

	proposed, impact, err := b.propose(action, in, appt)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Recommendation{
		ID:                uuid.New(),
		AppointmentID:     in.AppointmentID,
		Type:              action,
		Confidence:        in.Confidence,
		RequiredThreshold: threshold,
		Title:             in.Title,
		Description:       in.Description,
		Rationale:         in.SuggestedAction,
		ExpectedImpact:    impact,
		ProposedAction:    proposed,
		CreatedBy:         actorID,
		CreatedAt:         now,
		ExpiresAt:         now.Add(b.ttl),
	}, nil
}

func (b *Builder) propose(action ActionType, in insight.Insight, appt *schedule.Appointment) (ProposedAction, map[string]interface{}, error) {
	base := ActionBase{AppointmentID: in.AppointmentID}
	if appt != nil {
		base.Date = appt.Date.Format("2006-01-02")
		base.StartTime = appt.StartTime
		base.PatientName = appt.PatientName
	}

	switch action {
	case ActionWaitlistFill:
		base.Instruction = fmt.Sprintf("Offer the %s slot to the waitlist if %s does not confirm",
			base.StartTime, base.PatientName)
		a := WaitlistFillAction{ActionBase: base}
		if appt != nil {
			a.SlotStart = appt.StartTime
			a.SlotEnd = appt.EndTime
		}
		return a, map[string]interface{}{"recovered_minutes": durationOf(appt)}, nil

	case ActionOverbookSuggestion:
		hour, _ := in.Metadata["hour"].(string)
		ids := metadataIDs(in.Metadata, "appointment_ids")
		base.Instruction = fmt.Sprintf("Spread the %s:00 hour: offer reschedules before the queue builds", hour)
		return OverbookSuggestionAction{ActionBase: base, Hour: hour, AppointmentIDs: ids},
			map[string]interface{}{"affected_appointments": len(ids)}, nil

	case ActionReschedule:
		booked, _ := in.Metadata["booked_minutes"].(int)
		base.Instruction = "Pull forward pending reschedule requests to fill the provider's open time"
		return RescheduleAction{ActionBase: base, ProviderID: in.ProviderID, BookedMinutes: booked},
			map[string]interface{}{"open_minutes": maxInt(0, 480-booked)}, nil

	case ActionBlockInsertion:
		gap, _ := in.Metadata["gap_minutes"].(int)
		before, _ := in.Metadata["before_appointment_id"].(string)
		after, _ := in.Metadata["after_appointment_id"].(string)
		base.Instruction = fmt.Sprintf("Insert a %d-minute bookable block into the idle window", gap)
		a := BlockInsertionAction{ActionBase: base, ProviderID: in.ProviderID, GapMinutes: gap}
		if appt != nil {
			a.GapStart = appt.EndTime
		}
		return a, map[string]interface{}{
			"gap_minutes": gap,
			"between":     []string{before, after},
			"provider_id": in.ProviderID,
		}, nil

	case ActionStatusUpdate:
		// No insight maps here automatically; manual triggers supply their
		// own target status.
		base.Instruction = "Update the appointment status in the practice-management system"
		return StatusUpdateAction{ActionBase: base}, nil, nil

	default:
		return nil, nil, fmt.Errorf("no proposal builder for action type %q", action)
	}
}

func durationOf(appt *schedule.Appointment) int {
	if appt == nil {
		return 0
	}
	return appt.DurationMinutes()
}

func metadataIDs(md map[string]interface{}, key string) []string {
	switch v := md[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
