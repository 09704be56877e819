package appointments

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Upsert(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	// ListScheduledFrom returns agendada appointments on or after fromDate
	// (AAAA-MM-DD), ordered by date then time ascending.
	ListScheduledFrom(ctx context.Context, fromDate string) ([]*Appointment, error)
	All(ctx context.Context) ([]*Appointment, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
	CountOnDate(ctx context.Context, date string) (int, error)
}
