package procedures

import (
	"context"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, p *Procedure) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Procedure, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *Procedure) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Procedure, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) All(ctx context.Context) ([]*Procedure, error) {
	return s.repo.All(ctx)
}

func (s *Service) Import(ctx context.Context, items []*Procedure) (int, error) {
	count := 0
	for _, p := range items {
		if err := p.Validate(); err != nil {
			return count, err
		}
		if err := s.repo.Upsert(ctx, p); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (s *Service) CountByName(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByName(ctx)
}
