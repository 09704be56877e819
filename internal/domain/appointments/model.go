package appointments

import (
	"time"

	"github.com/google/uuid"

	"github.com/odontosys/odontosys/internal/platform/validation"
)

// Appointment maps to the appointments table. Date (AAAA-MM-DD) and Time
// (HH:MM) are independent fields; StartsAt composes them when ordering or
// comparing against the clock.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	Date            string    `db:"date" json:"date"`
	Time            string    `db:"time" json:"time"`
	Type            string    `db:"type" json:"type"`
	Status          string    `db:"status" json:"status"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CalendarEventID *string   `db:"calendar_event_id" json:"calendar_event_id,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// StartsAt composes date and time into a wall-clock instant in loc.
// Malformed values yield the zero time.
func (a *Appointment) StartsAt(loc *time.Location) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", a.Date+" "+a.Time, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// IsTerminal reports whether the appointment reached a frozen status.
func (a *Appointment) IsTerminal() bool {
	return a.Status == "concluida" || a.Status == "cancelada"
}

func (a *Appointment) formValues() map[string]string {
	values := map[string]string{
		"date":   a.Date,
		"time":   a.Time,
		"type":   a.Type,
		"status": a.Status,
		"notes":  strVal(a.Notes),
	}
	if a.PatientID != uuid.Nil {
		values["patient_id"] = a.PatientID.String()
	}
	return values
}

// Validate applies the appointment rule set to the record.
func (a *Appointment) Validate() error {
	return validation.NewError(validation.AppointmentRules.Validate(a.formValues()))
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string { return &s }
