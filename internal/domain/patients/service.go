package patients

import (
	"context"

	"github.com/google/uuid"

	"github.com/odontosys/odontosys/internal/platform/realtime"
)

// Notifier receives change reports after successful writes.
type Notifier interface {
	Changed(topic, action, id string)
}

// DocumentPurger removes a patient's stored documents, including blob
// content, ahead of the row cascade.
type DocumentPurger interface {
	PurgeByPatient(ctx context.Context, patientID uuid.UUID) error
}

type Service struct {
	repo     Repository
	notifier Notifier
	purger   DocumentPurger
}

func NewService(repo Repository, notifier Notifier, purger DocumentPurger) *Service {
	return &Service{repo: repo, notifier: notifier, purger: purger}
}

func (s *Service) notify(action string, id uuid.UUID) {
	if s.notifier != nil {
		s.notifier.Changed(realtime.TopicPatients, action, id.String())
	}
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if p.Status == "" {
		p.Status = "ativo"
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	s.notify("created", p.ID)
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.notify("updated", p.ID)
	return nil
}

// Delete removes the patient and everything hanging off it. Stored document
// files are purged first; rows cascade in the database.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if s.purger != nil {
		if err := s.purger.PurgeByPatient(ctx, id); err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.notify("deleted", id)
	return nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) All(ctx context.Context) ([]*Patient, error) {
	return s.repo.All(ctx)
}

// Import upserts records during backup restore. Imported records still pass
// validation.
func (s *Service) Import(ctx context.Context, items []*Patient) (int, error) {
	count := 0
	for _, p := range items {
		if p.Status == "" {
			p.Status = "ativo"
		}
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

func (s *Service) CountByStatus(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByStatus(ctx)
}
