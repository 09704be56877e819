package procedures

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// repoFallback mirrors the patients fallback decorator: reads fall back to
// the demo dataset on backend errors, writes never do.
type repoFallback struct {
	primary Repository
	demo    Repository
	logger  zerolog.Logger
}

func NewRepoFallback(primary Repository, logger zerolog.Logger) Repository {
	return &repoFallback{
		primary: primary,
		demo:    NewDemoRepo(),
		logger:  logger,
	}
}

func (r *repoFallback) substituted(op string, err error) {
	r.logger.Warn().Err(err).Str("op", op).Msg("procedures: serving demo data after backend error")
}

func (r *repoFallback) Create(ctx context.Context, p *Procedure) error {
	return r.primary.Create(ctx, p)
}
func (r *repoFallback) Update(ctx context.Context, p *Procedure) error {
	return r.primary.Update(ctx, p)
}
func (r *repoFallback) Upsert(ctx context.Context, p *Procedure) error {
	return r.primary.Upsert(ctx, p)
}
func (r *repoFallback) Delete(ctx context.Context, id uuid.UUID) error {
	return r.primary.Delete(ctx, id)
}

func (r *repoFallback) GetByID(ctx context.Context, id uuid.UUID) (*Procedure, error) {
	p, err := r.primary.GetByID(ctx, id)
	if err != nil {
		if demo, derr := r.demo.GetByID(ctx, id); derr == nil {
			r.substituted("get", err)
			return demo, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *repoFallback) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Procedure, int, error) {
	items, total, err := r.primary.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		r.substituted("list_by_patient", err)
		return r.demo.ListByPatient(ctx, patientID, limit, offset)
	}
	return items, total, nil
}

func (r *repoFallback) All(ctx context.Context) ([]*Procedure, error) {
	items, err := r.primary.All(ctx)
	if err != nil {
		r.substituted("all", err)
		return r.demo.All(ctx)
	}
	return items, nil
}

func (r *repoFallback) CountByName(ctx context.Context) (map[string]int, error) {
	counts, err := r.primary.CountByName(ctx)
	if err != nil {
		r.substituted("count_by_name", err)
		return r.demo.CountByName(ctx)
	}
	return counts, nil
}
