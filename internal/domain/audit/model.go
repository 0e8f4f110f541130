package audit

import (
	"time"

	"github.com/google/uuid"
)

// EventType names one write-back lifecycle transition.
type EventType string

const (
	EventRecommendationGenerated EventType = "recommendation_generated"
	EventApprovalRequested       EventType = "approval_requested"
	EventApprovalGranted         EventType = "approval_granted"
	EventApprovalDenied          EventType = "approval_denied"
	EventExecutionInitiated      EventType = "execution_initiated"
	EventExecutionCompleted      EventType = "execution_completed"
	EventExecutionFailed         EventType = "execution_failed"
	EventOutcomeRecorded         EventType = "outcome_recorded"
)

var validEventTypes = map[EventType]bool{
	EventRecommendationGenerated: true,
	EventApprovalRequested:       true,
	EventApprovalGranted:         true,
	EventApprovalDenied:          true,
	EventExecutionInitiated:      true,
	EventExecutionCompleted:      true,
	EventExecutionFailed:         true,
	EventOutcomeRecorded:         true,
}

func (t EventType) Valid() bool { return validEventTypes[t] }

// Entry is one append-only audit record. Rows are never updated or deleted.
type Entry struct {
	ID               uuid.UUID              `db:"id" json:"id"`
	ClinicID         string                 `db:"clinic_id" json:"clinic_id"`
	EventType        EventType              `db:"event_type" json:"event_type"`
	RecommendationID *uuid.UUID             `db:"recommendation_id" json:"recommendation_id,omitempty"`
	ApprovalID       *uuid.UUID             `db:"approval_id" json:"approval_id,omitempty"`
	ExecutionID      *uuid.UUID             `db:"execution_id" json:"execution_id,omitempty"`
	ActorID          string                 `db:"actor_id" json:"actor_id"`
	ActorRole        string                 `db:"actor_role" json:"actor_role"`
	Description      string                 `db:"description" json:"description"`
	AIConfidence     *int                   `db:"ai_confidence" json:"ai_confidence,omitempty"`
	Outcome          map[string]interface{} `db:"outcome" json:"outcome,omitempty"`
	RecordedAt       time.Time              `db:"recorded_at" json:"recorded_at"`
}
