package procedures

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Procedure) error
	GetByID(ctx context.Context, id uuid.UUID) (*Procedure, error)
	Update(ctx context.Context, p *Procedure) error
	Upsert(ctx context.Context, p *Procedure) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Procedure, int, error)
	All(ctx context.Context) ([]*Procedure, error)
	CountByName(ctx context.Context) (map[string]int, error)
}
