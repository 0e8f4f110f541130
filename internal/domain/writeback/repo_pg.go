package writeback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicops/clinicops/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return pool
}

// =========== Recommendation Store ===========

type recommendationRepoPG struct{ pool *pgxpool.Pool }

func NewRecommendationStorePG(pool *pgxpool.Pool) RecommendationStore {
	return &recommendationRepoPG{pool: pool}
}

const recCols = `id, clinic_id, appointment_id, recommendation_type, confidence_score,
	required_threshold, title, description, rationale, expected_impact, proposed_action,
	is_approved, is_executed, created_by, created_at, expires_at`

func (r *recommendationRepoPG) Create(ctx context.Context, rec *Recommendation) error {
	action, err := MarshalAction(rec.ProposedAction)
	if err != nil {
		return err
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err = conn(ctx, r.pool).Exec(ctx, `INSERT INTO write_back_recommendation (`+recCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		rec.ID, rec.ClinicID, rec.AppointmentID, rec.Type, rec.Confidence,
		rec.RequiredThreshold, rec.Title, rec.Description, rec.Rationale,
		rec.ExpectedImpact, action, rec.IsApproved, rec.IsExecuted,
		rec.CreatedBy, rec.CreatedAt, rec.ExpiresAt)
	if err != nil {
		return fmt.Errorf("create recommendation: %w", err)
	}
	return nil
}

func scanRecommendation(row pgx.Row) (*Recommendation, error) {
	var rec Recommendation
	var action []byte
	err := row.Scan(&rec.ID, &rec.ClinicID, &rec.AppointmentID, &rec.Type,
		&rec.Confidence, &rec.RequiredThreshold, &rec.Title, &rec.Description,
		&rec.Rationale, &rec.ExpectedImpact, &action, &rec.IsApproved,
		&rec.IsExecuted, &rec.CreatedBy, &rec.CreatedAt, &rec.ExpiresAt)
	if err != nil {
		return nil, err
	}
	if len(action) > 0 {
		rec.ProposedAction, err = UnmarshalAction(action)
		if err != nil {
			return nil, err
		}
	}
	return &rec, nil
}

func (r *recommendationRepoPG) GetByID(ctx context.Context, id string) (*Recommendation, error) {
	rec, err := scanRecommendation(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+recCols+` FROM write_back_recommendation WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

func (r *recommendationRepoPG) ListPending(ctx context.Context, clinicID string, limit, offset int) ([]*Recommendation, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+recCols+` FROM write_back_recommendation
		WHERE clinic_id = $1 AND is_approved IS NULL AND expires_at > now()
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, clinicID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Recommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	return items, rows.Err()
}

func (r *recommendationRepoPG) CountPending(ctx context.Context, clinicID string) (int, error) {
	var count int
	err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM write_back_recommendation
		WHERE clinic_id = $1 AND is_approved IS NULL AND expires_at > now()`, clinicID).Scan(&count)
	return count, err
}

// Decide is the single point where is_approved flips. The conditional update
// closes the double-decision race: whichever decision lands second matches
// zero rows and gets ErrAlreadyDecided.
func (r *recommendationRepoPG) Decide(ctx context.Context, id string, approved bool) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `UPDATE write_back_recommendation
		SET is_approved = $2 WHERE id = $1 AND is_approved IS NULL`, id, approved)
	if err != nil {
		return fmt.Errorf("decide recommendation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyDecided
	}
	return nil
}

func (r *recommendationRepoPG) MarkExecuted(ctx context.Context, id string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `UPDATE write_back_recommendation
		SET is_executed = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark executed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// =========== Approval Store ===========

type approvalRepoPG struct{ pool *pgxpool.Pool }

func NewApprovalStorePG(pool *pgxpool.Pool) ApprovalStore {
	return &approvalRepoPG{pool: pool}
}

const approvalCols = `id, recommendation_id, approver_id, approver_role, decision, note,
	confidence_check_passed, role_authorized, data_freshness_check, decided_at`

func (r *approvalRepoPG) Create(ctx context.Context, a *Approval) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.DecidedAt.IsZero() {
		a.DecidedAt = time.Now()
	}
	_, err := conn(ctx, r.pool).Exec(ctx, `INSERT INTO write_back_approval (`+approvalCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.RecommendationID, a.ApproverID, a.ApproverRole, a.Decision, a.Note,
		a.ConfidenceCheckPass, a.RoleAuthorized, a.DataFreshnessCheck, a.DecidedAt)
	if err != nil {
		return fmt.Errorf("create approval: %w", err)
	}
	return nil
}

func (r *approvalRepoPG) GetByRecommendation(ctx context.Context, recommendationID string) (*Approval, error) {
	var a Approval
	err := conn(ctx, r.pool).QueryRow(ctx, `SELECT `+approvalCols+` FROM write_back_approval
		WHERE recommendation_id = $1 ORDER BY decided_at DESC LIMIT 1`, recommendationID).
		Scan(&a.ID, &a.RecommendationID, &a.ApproverID, &a.ApproverRole, &a.Decision,
			&a.Note, &a.ConfidenceCheckPass, &a.RoleAuthorized, &a.DataFreshnessCheck, &a.DecidedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// =========== Execution Store ===========

type executionRepoPG struct{ pool *pgxpool.Pool }

func NewExecutionStorePG(pool *pgxpool.Pool) ExecutionStore {
	return &executionRepoPG{pool: pool}
}

const executionCols = `id, recommendation_id, approval_id, clinic_id, status,
	external_action_id, error_message, executed_by, executed_at`

func (r *executionRepoPG) Create(ctx context.Context, e *ExecutionResult) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.ExecutedAt.IsZero() {
		e.ExecutedAt = time.Now()
	}
	_, err := conn(ctx, r.pool).Exec(ctx, `INSERT INTO write_back_execution (`+executionCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.RecommendationID, e.ApprovalID, e.ClinicID, e.Status,
		e.ExternalActionID, e.ErrorMessage, e.ExecutedBy, e.ExecutedAt)
	if err != nil {
		return fmt.Errorf("create execution result: %w", err)
	}
	return nil
}

func (r *executionRepoPG) ListByRecommendation(ctx context.Context, recommendationID string) ([]*ExecutionResult, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+executionCols+` FROM write_back_execution
		WHERE recommendation_id = $1 ORDER BY executed_at DESC`, recommendationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*ExecutionResult
	for rows.Next() {
		var e ExecutionResult
		if err := rows.Scan(&e.ID, &e.RecommendationID, &e.ApprovalID, &e.ClinicID,
			&e.Status, &e.ExternalActionID, &e.ErrorMessage, &e.ExecutedBy, &e.ExecutedAt); err != nil {
			return nil, err
		}
		items = append(items, &e)
	}
	return items, rows.Err()
}

// =========== Profile Reader ===========

type profileRepoPG struct{ pool *pgxpool.Pool }

func NewProfileReaderPG(pool *pgxpool.Pool) ProfileReader {
	return &profileRepoPG{pool: pool}
}

func (r *profileRepoPG) GetByID(ctx context.Context, userID string) (*UserProfile, error) {
	var p UserProfile
	err := conn(ctx, r.pool).QueryRow(ctx, `SELECT id, clinic_id, name, role, created_at
		FROM user_profile WHERE id = $1`, userID).
		Scan(&p.ID, &p.ClinicID, &p.Name, &p.Role, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// =========== Permission Reader ===========

type permissionRepoPG struct{ pool *pgxpool.Pool }

func NewPermissionReaderPG(pool *pgxpool.Pool) PermissionReader {
	return &permissionRepoPG{pool: pool}
}

func (r *permissionRepoPG) Get(ctx context.Context, clinicID, role string) (*PermissionSet, error) {
	var p PermissionSet
	err := conn(ctx, r.pool).QueryRow(ctx, `SELECT clinic_id, role, can_approve_status_update,
		can_approve_waitlist_fill, can_approve_overbook_suggestion, can_approve_reschedule,
		can_approve_block_insertion, updated_at
		FROM write_back_permission WHERE clinic_id = $1 AND role = $2`, clinicID, role).
		Scan(&p.ClinicID, &p.Role, &p.CanApproveStatusUpdate, &p.CanApproveWaitlistFill,
			&p.CanApproveOverbook, &p.CanApproveReschedule, &p.CanApproveBlockInsertion, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
