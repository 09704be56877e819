package patients

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// repoFallback decorates a primary repository with a demo dataset for read
// operations. When a read against the primary fails, the seeded in-memory
// repository answers instead and the substitution is logged. Writes always go
// to the primary and never fall back.
type repoFallback struct {
	primary Repository
	demo    Repository
	logger  zerolog.Logger
}

// NewRepoFallback wraps primary with read-side demo fallback.
func NewRepoFallback(primary Repository, logger zerolog.Logger) Repository {
	return &repoFallback{
		primary: primary,
		demo:    NewDemoRepo(),
		logger:  logger,
	}
}

func (r *repoFallback) substituted(op string, err error) {
	r.logger.Warn().Err(err).Str("op", op).Msg("patients: serving demo data after backend error")
}

func (r *repoFallback) Create(ctx context.Context, p *Patient) error { return r.primary.Create(ctx, p) }
func (r *repoFallback) Update(ctx context.Context, p *Patient) error { return r.primary.Update(ctx, p) }
func (r *repoFallback) Upsert(ctx context.Context, p *Patient) error { return r.primary.Upsert(ctx, p) }
func (r *repoFallback) Delete(ctx context.Context, id uuid.UUID) error {
	return r.primary.Delete(ctx, id)
}

func (r *repoFallback) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
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

func (r *repoFallback) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	items, total, err := r.primary.List(ctx, limit, offset)
	if err != nil {
		r.substituted("list", err)
		return r.demo.List(ctx, limit, offset)
	}
	return items, total, nil
}

func (r *repoFallback) All(ctx context.Context) ([]*Patient, error) {
	items, err := r.primary.All(ctx)
	if err != nil {
		r.substituted("all", err)
		return r.demo.All(ctx)
	}
	return items, nil
}

func (r *repoFallback) CountByStatus(ctx context.Context) (map[string]int, error) {
	counts, err := r.primary.CountByStatus(ctx)
	if err != nil {
		r.substituted("count_by_status", err)
		return r.demo.CountByStatus(ctx)
	}
	return counts, nil
}
