package writeback

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyDecided is returned when a decision targets a
	// recommendation that already has one.
	ErrAlreadyDecided = errors.New("recommendation already decided")
)

// RecommendationStore persists write-back recommendations. Only the
// is_approved and is_executed flags mutate after creation.
type RecommendationStore interface {
	Create(ctx context.Context, rec *Recommendation) error
	GetByID(ctx context.Context, id string) (*Recommendation, error)
	// ListPending returns undecided, unexpired recommendations newest
	// first. Expired pending rows are excluded, not deleted.
	ListPending(ctx context.Context, clinicID string, limit, offset int) ([]*Recommendation, error)
	CountPending(ctx context.Context, clinicID string) (int, error)
	// Decide flips is_approved exactly once. A second decision returns
	// ErrAlreadyDecided.
	Decide(ctx context.Context, id string, approved bool) error
	MarkExecuted(ctx context.Context, id string) error
}

// ApprovalStore persists decisions. Append-only.
type ApprovalStore interface {
	Create(ctx context.Context, approval *Approval) error
	GetByRecommendation(ctx context.Context, recommendationID string) (*Approval, error)
}

// ExecutionStore persists execution results. Append-only.
type ExecutionStore interface {
	Create(ctx context.Context, result *ExecutionResult) error
	ListByRecommendation(ctx context.Context, recommendationID string) ([]*ExecutionResult, error)
}

// ProfileReader resolves users to their clinic role.
type ProfileReader interface {
	GetByID(ctx context.Context, userID string) (*UserProfile, error)
}

// PermissionReader loads the per-clinic permission row for a role.
type PermissionReader interface {
	Get(ctx context.Context, clinicID, role string) (*PermissionSet, error)
}
