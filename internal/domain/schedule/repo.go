package schedule

import (
	"context"
	"time"
)

// AppointmentReader is the read-only contract against the appointment mirror.
// The practice-management system is authoritative; nothing here mutates it.
type AppointmentReader interface {
	GetByID(ctx context.Context, id string) (*Appointment, error)
	ListByClinicAndDate(ctx context.Context, clinicID string, date time.Time) ([]*Appointment, error)
	ListByClinicAndRange(ctx context.Context, clinicID string, from, to time.Time) ([]*Appointment, error)
}

// ProviderReader is the read-only contract against the provider roster.
type ProviderReader interface {
	GetByID(ctx context.Context, id string) (*Provider, error)
	ListByClinic(ctx context.Context, clinicID string) ([]*Provider, error)
}
