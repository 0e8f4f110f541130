package writeback

import (
	"time"

	"github.com/google/uuid"
)

// ActionType is the closed set of write-back actions this subsystem can
// propose against the practice-management system.
type ActionType string

const (
	ActionStatusUpdate       ActionType = "status_update"
	ActionWaitlistFill       ActionType = "waitlist_fill"
	ActionOverbookSuggestion ActionType = "overbook_suggestion"
	ActionReschedule         ActionType = "reschedule"
	ActionBlockInsertion     ActionType = "block_insertion"
)

var validActionTypes = map[ActionType]bool{
	ActionStatusUpdate: true, ActionWaitlistFill: true, ActionOverbookSuggestion: true,
	ActionReschedule: true, ActionBlockInsertion: true,
}

func (t ActionType) Valid() bool { return validActionTypes[t] }

// Decision is the human verdict on a recommendation.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

func (d Decision) Valid() bool { return d == DecisionApproved || d == DecisionRejected }

// ExecutionStatus records how a push to the external system ended.
type ExecutionStatus string

const (
	ExecutionSuccess    ExecutionStatus = "success"
	ExecutionFailed     ExecutionStatus = "failed"
	ExecutionRolledBack ExecutionStatus = "rolled_back"
)

func (s ExecutionStatus) Valid() bool {
	return s == ExecutionSuccess || s == ExecutionFailed || s == ExecutionRolledBack
}

// PermissionSet is one clinic+role row of approval permissions. Each action
// type gets its own field so a new action type cannot be added without the
// compiler pointing at Allows.
type PermissionSet struct {
	ClinicID                 string    `db:"clinic_id" json:"clinic_id"`
	Role                     string    `db:"role" json:"role"`
	CanApproveStatusUpdate   bool      `db:"can_approve_status_update" json:"can_approve_status_update"`
	CanApproveWaitlistFill   bool      `db:"can_approve_waitlist_fill" json:"can_approve_waitlist_fill"`
	CanApproveOverbook       bool      `db:"can_approve_overbook_suggestion" json:"can_approve_overbook_suggestion"`
	CanApproveReschedule     bool      `db:"can_approve_reschedule" json:"can_approve_reschedule"`
	CanApproveBlockInsertion bool      `db:"can_approve_block_insertion" json:"can_approve_block_insertion"`
	UpdatedAt                time.Time `db:"updated_at" json:"updated_at"`
}

// Allows reports whether this permission set grants approval of the given
// action type. Unknown types are denied.
func (p *PermissionSet) Allows(t ActionType) bool {
	switch t {
	case ActionStatusUpdate:
		return p.CanApproveStatusUpdate
	case ActionWaitlistFill:
		return p.CanApproveWaitlistFill
	case ActionOverbookSuggestion:
		return p.CanApproveOverbook
	case ActionReschedule:
		return p.CanApproveReschedule
	case ActionBlockInsertion:
		return p.CanApproveBlockInsertion
	default:
		return false
	}
}

// UserProfile is the minimal identity row needed to resolve an approver's
// role within a clinic.
type UserProfile struct {
	ID        string    `db:"id" json:"id"`
	ClinicID  string    `db:"clinic_id" json:"clinic_id"`
	Name      string    `db:"name" json:"name"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Recommendation is a durable write-back proposal derived from one insight.
// Only the is_approved and is_executed flags mutate after creation; the
// proposed action and the threshold snapshot are immutable history.
type Recommendation struct {
	ID                uuid.UUID              `db:"id" json:"id"`
	ClinicID          string                 `db:"clinic_id" json:"clinic_id"`
	AppointmentID     string                 `db:"appointment_id" json:"appointment_id,omitempty"`
	Type              ActionType             `db:"recommendation_type" json:"recommendation_type"`
	Confidence        int                    `db:"confidence_score" json:"confidence_score"`
	RequiredThreshold int                    `db:"required_threshold" json:"required_threshold"`
	Title             string                 `db:"title" json:"title"`
	Description       string                 `db:"description" json:"description"`
	Rationale         string                 `db:"rationale" json:"rationale"`
	ExpectedImpact    map[string]interface{} `db:"expected_impact" json:"expected_impact,omitempty"`
	ProposedAction    ProposedAction         `db:"-" json:"proposed_action"`
	IsApproved        *bool                  `db:"is_approved" json:"is_approved"`
	IsExecuted        bool                   `db:"is_executed" json:"is_executed"`
	CreatedBy         string                 `db:"created_by" json:"created_by"`
	CreatedAt         time.Time              `db:"created_at" json:"created_at"`
	ExpiresAt         time.Time              `db:"expires_at" json:"expires_at"`
}

// Pending reports whether the recommendation still awaits a decision.
func (r *Recommendation) Pending() bool { return r.IsApproved == nil }

// Expired reports whether the recommendation is past its expiry.
func (r *Recommendation) Expired(now time.Time) bool { return now.After(r.ExpiresAt) }

// Approval is one human decision against exactly one recommendation. The
// three checks capture ground truth at decision time; they are advisory
// audit data, never a gate on insertion.
type Approval struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	RecommendationID    uuid.UUID `db:"recommendation_id" json:"recommendation_id"`
	ApproverID          string    `db:"approver_id" json:"approver_id"`
	ApproverRole        string    `db:"approver_role" json:"approver_role"`
	Decision            Decision  `db:"decision" json:"decision"`
	Note                string    `db:"note" json:"note,omitempty"`
	ConfidenceCheckPass bool      `db:"confidence_check_passed" json:"confidence_check_passed"`
	RoleAuthorized      bool      `db:"role_authorized" json:"role_authorized"`
	DataFreshnessCheck  bool      `db:"data_freshness_check" json:"data_freshness_check"`
	DecidedAt           time.Time `db:"decided_at" json:"decided_at"`
}

// ExecutionResult records the push of an approved recommendation to the
// external system of record.
type ExecutionResult struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	RecommendationID uuid.UUID       `db:"recommendation_id" json:"recommendation_id"`
	ApprovalID       uuid.UUID       `db:"approval_id" json:"approval_id"`
	ClinicID         string          `db:"clinic_id" json:"clinic_id"`
	Status           ExecutionStatus `db:"status" json:"status"`
	ExternalActionID string          `db:"external_action_id" json:"external_action_id,omitempty"`
	ErrorMessage     string          `db:"error_message" json:"error_message,omitempty"`
	ExecutedBy       string          `db:"executed_by" json:"executed_by"`
	ExecutedAt       time.Time       `db:"executed_at" json:"executed_at"`
}
