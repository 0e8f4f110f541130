package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AppointmentStatus mirrors the status vocabulary of the practice-management
// system that owns appointment truth.
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "scheduled"
	StatusConfirmed  AppointmentStatus = "confirmed"
	StatusCheckedIn  AppointmentStatus = "checked_in"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"
	StatusNoShow     AppointmentStatus = "no_show"
)

var validAppointmentStatuses = map[AppointmentStatus]bool{
	StatusScheduled: true, StatusConfirmed: true, StatusCheckedIn: true,
	StatusInProgress: true, StatusCompleted: true, StatusCancelled: true,
	StatusNoShow: true,
}

func (s AppointmentStatus) Valid() bool { return validAppointmentStatuses[s] }

// Appointment maps to the appointment mirror table. Rows are created and
// mutated exclusively by the practice-management sync; this subsystem only
// reads them. Times are local clock times at minute resolution ("09:30").
type Appointment struct {
	ID           string            `db:"id" json:"id"`
	ClinicID     string            `db:"clinic_id" json:"clinic_id"`
	PatientID    string            `db:"patient_id" json:"patient_id"`
	PatientName  string            `db:"patient_name" json:"patient_name"`
	ProviderID   string            `db:"provider_id" json:"provider_id"`
	ProviderName string            `db:"provider_name" json:"provider_name"`
	ProviderRole string            `db:"provider_role" json:"provider_role"`
	Type         string            `db:"appointment_type" json:"appointment_type"`
	Date         time.Time         `db:"appointment_date" json:"appointment_date"`
	StartTime    string            `db:"start_time" json:"start_time"`
	EndTime      string            `db:"end_time" json:"end_time"`
	Status       AppointmentStatus `db:"status" json:"status"`
	NoShowRisk   int               `db:"no_show_risk" json:"no_show_risk"`
	CheckInTime  *time.Time        `db:"check_in_time" json:"check_in_time,omitempty"`
	CheckOutTime *time.Time        `db:"check_out_time" json:"check_out_time,omitempty"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time         `db:"updated_at" json:"updated_at"`
}

// StartMinutes returns the start time as minutes since midnight.
func (a *Appointment) StartMinutes() int { return clockMinutes(a.StartTime) }

// EndMinutes returns the end time as minutes since midnight.
func (a *Appointment) EndMinutes() int { return clockMinutes(a.EndTime) }

// DurationMinutes returns the booked length of the appointment.
func (a *Appointment) DurationMinutes() int {
	d := a.EndMinutes() - a.StartMinutes()
	if d < 0 {
		return 0
	}
	return d
}

// StartHour returns the 24h hour label the appointment starts in ("09").
func (a *Appointment) StartHour() string {
	parts := strings.SplitN(a.StartTime, ":", 2)
	return parts[0]
}

// clockMinutes parses "HH:MM" into minutes since midnight. Malformed values
// come out as 0 rather than an error; the sync validates on ingest.
func clockMinutes(clock string) int {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return h*60 + m
}

// ParseClock validates an "HH:MM" clock string.
func ParseClock(clock string) (int, error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock time %q", clock)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", clock)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", clock)
	}
	return h*60 + m, nil
}

// Provider maps to the provider roster mirror table.
type Provider struct {
	ID          string    `db:"id" json:"id"`
	ClinicID    string    `db:"clinic_id" json:"clinic_id"`
	Name        string    `db:"name" json:"name"`
	Role        string    `db:"role" json:"role"`
	Utilization int       `db:"utilization" json:"utilization"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// DaySchedule is one clinic day as loaded for the intelligence pipeline.
type DaySchedule struct {
	ClinicID     string         `json:"clinic_id"`
	Date         time.Time      `json:"date"`
	Appointments []*Appointment `json:"appointments"`
	Providers    []*Provider    `json:"providers"`
	LoadedAt     time.Time      `json:"loaded_at"`
}
