package schedule

import (
	"context"
	"fmt"
	"time"
)

type Service struct {
	appointments AppointmentReader
	providers    ProviderReader
}

func NewService(appointments AppointmentReader, providers ProviderReader) *Service {
	return &Service{appointments: appointments, providers: providers}
}

// LoadDay fetches one clinic day for the intelligence pipeline. A failed
// appointment fetch aborts the load; no partial schedule is returned.
func (s *Service) LoadDay(ctx context.Context, clinicID string, date time.Time) (*DaySchedule, error) {
	if clinicID == "" {
		return nil, fmt.Errorf("clinic_id is required")
	}
	if date.IsZero() {
		return nil, fmt.Errorf("date is required")
	}

	appts, err := s.appointments.ListByClinicAndDate(ctx, clinicID, date)
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}
	provs, err := s.providers.ListByClinic(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("load providers: %w", err)
	}

	return &DaySchedule{
		ClinicID:     clinicID,
		Date:         date,
		Appointments: appts,
		Providers:    provs,
		LoadedAt:     time.Now(),
	}, nil
}

// LoadRange fetches appointments over a date range, provider roster included.
func (s *Service) LoadRange(ctx context.Context, clinicID string, from, to time.Time) (*DaySchedule, error) {
	if clinicID == "" {
		return nil, fmt.Errorf("clinic_id is required")
	}
	if to.Before(from) {
		return nil, fmt.Errorf("range end precedes start")
	}

	appts, err := s.appointments.ListByClinicAndRange(ctx, clinicID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}
	provs, err := s.providers.ListByClinic(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("load providers: %w", err)
	}

	return &DaySchedule{
		ClinicID:     clinicID,
		Date:         from,
		Appointments: appts,
		Providers:    provs,
		LoadedAt:     time.Now(),
	}, nil
}

func (s *Service) GetAppointment(ctx context.Context, id string) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) GetProvider(ctx context.Context, id string) (*Provider, error) {
	return s.providers.GetByID(ctx, id)
}
