package schedule

import (
	"context"
	"time"

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

// =========== Appointment Reader ===========

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentReader {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const apptCols = `id, clinic_id, patient_id, patient_name, provider_id, provider_name,
	provider_role, appointment_type, appointment_date, start_time, end_time, status,
	no_show_risk, check_in_time, check_out_time, created_at, updated_at`

func (r *appointmentRepoPG) scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.ClinicID, &a.PatientID, &a.PatientName, &a.ProviderID,
		&a.ProviderName, &a.ProviderRole, &a.Type, &a.Date, &a.StartTime, &a.EndTime,
		&a.Status, &a.NoShowRisk, &a.CheckInTime, &a.CheckOutTime, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id string) (*Appointment, error) {
	return r.scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *appointmentRepoPG) ListByClinicAndDate(ctx context.Context, clinicID string, date time.Time) ([]*Appointment, error) {
	day := date.Truncate(24 * time.Hour)
	return r.list(ctx, `SELECT `+apptCols+` FROM appointment
		WHERE clinic_id = $1 AND appointment_date = $2
		ORDER BY start_time ASC`, clinicID, day)
}

func (r *appointmentRepoPG) ListByClinicAndRange(ctx context.Context, clinicID string, from, to time.Time) ([]*Appointment, error) {
	return r.list(ctx, `SELECT `+apptCols+` FROM appointment
		WHERE clinic_id = $1 AND appointment_date >= $2 AND appointment_date <= $3
		ORDER BY appointment_date ASC, start_time ASC`, clinicID, from, to)
}

func (r *appointmentRepoPG) list(ctx context.Context, query string, args ...interface{}) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// =========== Provider Reader ===========

type providerRepoPG struct{ pool *pgxpool.Pool }

func NewProviderRepoPG(pool *pgxpool.Pool) ProviderReader {
	return &providerRepoPG{pool: pool}
}

func (r *providerRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const providerCols = `id, clinic_id, name, role, utilization, active, created_at, updated_at`

func (r *providerRepoPG) scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider
	err := row.Scan(&p.ID, &p.ClinicID, &p.Name, &p.Role, &p.Utilization, &p.Active,
		&p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *providerRepoPG) GetByID(ctx context.Context, id string) (*Provider, error) {
	return r.scanProvider(r.conn(ctx).QueryRow(ctx,
		`SELECT `+providerCols+` FROM provider WHERE id = $1`, id))
}

func (r *providerRepoPG) ListByClinic(ctx context.Context, clinicID string) ([]*Provider, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+providerCols+` FROM provider WHERE clinic_id = $1 AND active ORDER BY name ASC`, clinicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Provider
	for rows.Next() {
		p, err := r.scanProvider(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
