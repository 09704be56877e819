package documents

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// repoFallback serves the demo dataset on read failures. Writes always hit
// the primary.
type repoFallback struct {
	primary Repository
	demo    Repository
	logger  zerolog.Logger
}

func NewRepoFallback(primary Repository, logger zerolog.Logger) Repository {
	return &repoFallback{primary: primary, demo: NewDemoRepo(), logger: logger}
}

func (r *repoFallback) warn(err error) {
	r.logger.Warn().Err(err).Msg("documents: serving demo data after backend error")
}

func (r *repoFallback) Create(ctx context.Context, d *Document) error {
	return r.primary.Create(ctx, d)
}

func (r *repoFallback) Upsert(ctx context.Context, d *Document) error {
	return r.primary.Upsert(ctx, d)
}

func (r *repoFallback) Delete(ctx context.Context, id uuid.UUID) error {
	return r.primary.Delete(ctx, id)
}

func (r *repoFallback) GetByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	d, err := r.primary.GetByID(ctx, id)
	if err != nil {
		r.warn(err)
		return r.demo.GetByID(ctx, id)
	}
	return d, nil
}

func (r *repoFallback) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Document, int, error) {
	items, total, err := r.primary.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		r.warn(err)
		return r.demo.ListByPatient(ctx, patientID, limit, offset)
	}
	return items, total, nil
}

func (r *repoFallback) All(ctx context.Context) ([]*Document, error) {
	items, err := r.primary.All(ctx)
	if err != nil {
		r.warn(err)
		return r.demo.All(ctx)
	}
	return items, nil
}

func (r *repoFallback) Count(ctx context.Context) (int, error) {
	n, err := r.primary.Count(ctx)
	if err != nil {
		r.warn(err)
		return r.demo.Count(ctx)
	}
	return n, nil
}
