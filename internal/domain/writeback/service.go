package writeback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/clinicops/clinicops/internal/domain/audit"
	"github.com/clinicops/clinicops/internal/domain/insight"
	"github.com/clinicops/clinicops/internal/domain/schedule"
	"github.com/clinicops/clinicops/internal/platform/db"
)

// ErrDisabled is returned when the write-back feature flag is off for this
// deployment.
var ErrDisabled = errors.New("write-back is disabled")

// Service runs the write-back pipeline: promote insights to recommendations,
// take human decisions, and record executions. Every state change and its
// audit entry commit in one transaction.
type Service struct {
	recommendations RecommendationStore
	approvals       ApprovalStore
	executions      ExecutionStore
	auditor         audit.Recorder
	authz           *Authorizer
	schedules       *schedule.Service
	engine          *insight.Engine
	builder         *Builder
	tx              TxRunner
	enabled         bool
	// maxAge bounds the freshness check at decision time; zero disables it.
	maxAge time.Duration
	logger zerolog.Logger
}

// TxRunner wraps a multi-store write so it commits or rolls back as one
// unit. The default runs db.WithTx against the pool.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type ServiceDeps struct {
	Recommendations RecommendationStore
	Approvals       ApprovalStore
	Executions      ExecutionStore
	Auditor         audit.Recorder
	Authorizer      *Authorizer
	Schedules       *schedule.Service
	Engine          *insight.Engine
	Builder         *Builder
	Pool            *pgxpool.Pool
	TxRunner        TxRunner
	Enabled         bool
	MaxAge          time.Duration
	Logger          zerolog.Logger
}

func NewService(deps ServiceDeps) *Service {
	tx := deps.TxRunner
	if tx == nil {
		pool := deps.Pool
		tx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		}
	}
	return &Service{
		recommendations: deps.Recommendations,
		approvals:       deps.Approvals,
		executions:      deps.Executions,
		auditor:         deps.Auditor,
		authz:           deps.Authorizer,
		schedules:       deps.Schedules,
		engine:          deps.Engine,
		builder:         deps.Builder,
		tx:              tx,
		enabled:         deps.Enabled,
		maxAge:          deps.MaxAge,
		logger:          deps.Logger.With().Str("component", "writeback").Logger(),
	}
}

// GenerateRecommendations derives the day's insights and promotes every one
// that clears its action threshold. Each saved recommendation commits
// together with its recommendation_generated audit entry.
func (s *Service) GenerateRecommendations(ctx context.Context, clinicID string, date time.Time, actorID, actorRole string) ([]*Recommendation, error) {
	if !s.enabled {
		return nil, ErrDisabled
	}

	day, err := s.schedules.LoadDay(ctx, clinicID, date)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}

	apptsByID := make(map[string]*schedule.Appointment, len(day.Appointments))
	for _, a := range day.Appointments {
		apptsByID[a.ID] = a
	}

	derived := s.engine.Derive(day.Appointments, day.Providers)

	var created []*Recommendation
	for _, in := range derived {
		rec, err := s.builder.Build(in, apptsByID[in.AppointmentID], actorID)
		if err != nil {
			return nil, fmt.Errorf("build recommendation: %w", err)
		}
		if rec == nil {
			continue
		}
		rec.ClinicID = clinicID

		err = s.tx(ctx, func(ctx context.Context) error {
			if err := s.recommendations.Create(ctx, rec); err != nil {
				return err
			}
			confidence := rec.Confidence
			return s.auditor.Record(ctx, &audit.Entry{
				ClinicID:         clinicID,
				EventType:        audit.EventRecommendationGenerated,
				RecommendationID: &rec.ID,
				ActorID:          actorID,
				ActorRole:        actorRole,
				Description:      fmt.Sprintf("Generated %s recommendation: %s", rec.Type, rec.Title),
				AIConfidence:     &confidence,
			})
		})
		if err != nil {
			return nil, err
		}
		created = append(created, rec)
	}

	s.logger.Info().
		Str("clinic_id", clinicID).
		Int("insights", len(derived)).
		Int("recommendations", len(created)).
		Msg("recommendation generation complete")
	return created, nil
}

// Pending lists undecided, unexpired recommendations newest first.
func (s *Service) Pending(ctx context.Context, clinicID string, limit, offset int) ([]*Recommendation, int, error) {
	if !s.enabled {
		return nil, 0, ErrDisabled
	}
	recs, err := s.recommendations.ListPending(ctx, clinicID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.recommendations.CountPending(ctx, clinicID)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

// Get loads one recommendation by id.
func (s *Service) Get(ctx context.Context, recommendationID string) (*Recommendation, error) {
	return s.recommendations.GetByID(ctx, recommendationID)
}

// Decide records one human decision on a pending recommendation. The three
// checks are computed at decision time and recorded regardless of outcome;
// they never block the insert. The approval row, the is_approved flip, and
// the audit entry commit or roll back together, and the conditional flip
// makes a second decision fail with ErrAlreadyDecided.
func (s *Service) Decide(ctx context.Context, recommendationID, approverID string, decision Decision, note string) (*Approval, error) {
	if !s.enabled {
		return nil, ErrDisabled
	}
	if !decision.Valid() {
		return nil, fmt.Errorf("invalid decision %q", decision)
	}

	rec, err := s.recommendations.GetByID(ctx, recommendationID)
	if err != nil {
		return nil, fmt.Errorf("load recommendation: %w", err)
	}

	approverRole := s.authz.RoleOf(ctx, approverID)

	approval := &Approval{
		ID:                  uuid.New(),
		RecommendationID:    rec.ID,
		ApproverID:          approverID,
		ApproverRole:        approverRole,
		Decision:            decision,
		Note:                note,
		ConfidenceCheckPass: rec.Confidence >= rec.RequiredThreshold,
		RoleAuthorized:      s.authz.CanApprove(ctx, approverID, rec.ClinicID, rec.Type),
		DataFreshnessCheck:  s.fresh(rec),
		DecidedAt:           time.Now(),
	}

	event := audit.EventApprovalDenied
	if decision == DecisionApproved {
		event = audit.EventApprovalGranted
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.recommendations.Decide(ctx, recommendationID, decision == DecisionApproved); err != nil {
			return err
		}
		if err := s.approvals.Create(ctx, approval); err != nil {
			return err
		}
		return s.auditor.Record(ctx, &audit.Entry{
			ClinicID:         rec.ClinicID,
			EventType:        event,
			RecommendationID: &rec.ID,
			ApprovalID:       &approval.ID,
			ActorID:          approverID,
			ActorRole:        approverRole,
			Description:      fmt.Sprintf("Recommendation %s %s", rec.Title, decision),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("recommendation_id", rec.ID.String()).
		Str("decision", string(decision)).
		Bool("role_authorized", approval.RoleAuthorized).
		Bool("confidence_check", approval.ConfidenceCheckPass).
		Msg("recommendation decided")
	return approval, nil
}

// fresh applies the optional staleness rule; without a configured max age
// every recommendation counts as fresh.
func (s *Service) fresh(rec *Recommendation) bool {
	if s.maxAge <= 0 {
		return true
	}
	return time.Since(rec.CreatedAt) <= s.maxAge
}

// Execute records a successful push to the external system of record and
// marks the recommendation executed. Callers must only execute after an
// approved decision; that precondition is a caller contract, not enforced
// here.
func (s *Service) Execute(ctx context.Context, recommendationID, approvalID, clinicID, executedBy, externalActionID string) (*ExecutionResult, error) {
	if !s.enabled {
		return nil, ErrDisabled
	}

	recID, err := uuid.Parse(recommendationID)
	if err != nil {
		return nil, fmt.Errorf("invalid recommendation id: %w", err)
	}
	apprID, err := uuid.Parse(approvalID)
	if err != nil {
		return nil, fmt.Errorf("invalid approval id: %w", err)
	}

	result := &ExecutionResult{
		ID:               uuid.New(),
		RecommendationID: recID,
		ApprovalID:       apprID,
		ClinicID:         clinicID,
		Status:           ExecutionSuccess,
		ExternalActionID: externalActionID,
		ExecutedBy:       executedBy,
		ExecutedAt:       time.Now(),
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.executions.Create(ctx, result); err != nil {
			return err
		}
		if err := s.recommendations.MarkExecuted(ctx, recommendationID); err != nil {
			return err
		}
		return s.auditor.Record(ctx, &audit.Entry{
			ClinicID:         clinicID,
			EventType:        audit.EventExecutionCompleted,
			RecommendationID: &recID,
			ApprovalID:       &apprID,
			ExecutionID:      &result.ID,
			ActorID:          executedBy,
			Description:      fmt.Sprintf("Executed recommendation %s, external action %s", recommendationID, externalActionID),
			Outcome:          map[string]interface{}{"external_action_id": externalActionID},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecordFailure records a failed or rolled-back execution attempt. The
// recommendation stays un-executed so a retry remains possible.
func (s *Service) RecordFailure(ctx context.Context, recommendationID, approvalID, clinicID, executedBy string, status ExecutionStatus, errorMessage string) (*ExecutionResult, error) {
	if !s.enabled {
		return nil, ErrDisabled
	}
	if status != ExecutionFailed && status != ExecutionRolledBack {
		return nil, fmt.Errorf("failure status must be failed or rolled_back, got %q", status)
	}

	recID, err := uuid.Parse(recommendationID)
	if err != nil {
		return nil, fmt.Errorf("invalid recommendation id: %w", err)
	}
	apprID, err := uuid.Parse(approvalID)
	if err != nil {
		return nil, fmt.Errorf("invalid approval id: %w", err)
	}

	result := &ExecutionResult{
		ID:               uuid.New(),
		RecommendationID: recID,
		ApprovalID:       apprID,
		ClinicID:         clinicID,
		Status:           status,
		ErrorMessage:     errorMessage,
		ExecutedBy:       executedBy,
		ExecutedAt:       time.Now(),
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.executions.Create(ctx, result); err != nil {
			return err
		}
		return s.auditor.Record(ctx, &audit.Entry{
			ClinicID:         clinicID,
			EventType:        audit.EventExecutionFailed,
			RecommendationID: &recID,
			ApprovalID:       &apprID,
			ExecutionID:      &result.ID,
			ActorID:          executedBy,
			Description:      fmt.Sprintf("Execution of recommendation %s %s: %s", recommendationID, status, errorMessage),
			Outcome:          map[string]interface{}{"error": errorMessage},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
