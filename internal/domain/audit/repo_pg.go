package audit

import (
	"context"
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

type recorderPG struct{ pool *pgxpool.Pool }

func NewRecorderPG(pool *pgxpool.Pool) Recorder {
	return &recorderPG{pool: pool}
}

func (r *recorderPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const entryCols = `id, clinic_id, event_type, recommendation_id, approval_id, execution_id,
	actor_id, actor_role, description, ai_confidence, outcome, recorded_at`

func (r *recorderPG) Record(ctx context.Context, entry *Entry) error {
	if !entry.EventType.Valid() {
		return fmt.Errorf("invalid audit event type %q", entry.EventType)
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now()
	}

	_, err := r.conn(ctx).Exec(ctx, `INSERT INTO audit_log (`+entryCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		entry.ID, entry.ClinicID, entry.EventType, entry.RecommendationID,
		entry.ApprovalID, entry.ExecutionID, entry.ActorID, entry.ActorRole,
		entry.Description, entry.AIConfidence, entry.Outcome, entry.RecordedAt)
	if err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

func (r *recorderPG) History(ctx context.Context, clinicID string, limit, offset int) ([]*Entry, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+entryCols+` FROM audit_log
		WHERE clinic_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2 OFFSET $3`, clinicID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ClinicID, &e.EventType, &e.RecommendationID,
			&e.ApprovalID, &e.ExecutionID, &e.ActorID, &e.ActorRole, &e.Description,
			&e.AIConfidence, &e.Outcome, &e.RecordedAt); err != nil {
			return nil, err
		}
		items = append(items, &e)
	}
	return items, rows.Err()
}

func (r *recorderPG) CountByClinic(ctx context.Context, clinicID string) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM audit_log WHERE clinic_id = $1`, clinicID).Scan(&count)
	return count, err
}
