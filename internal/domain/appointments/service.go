package appointments

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/odontosys/odontosys/internal/platform/realtime"
)

// ErrTerminal rejects edits to appointments that already concluded or
// were canceled.
var ErrTerminal = errors.New("appointment already concluded or canceled")

const DefaultUpcomingLimit = 5

type Notifier interface {
	Changed(topic, action, resourceID string)
}

type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

func (s *Service) notify(action string, id uuid.UUID) {
	if s.notifier != nil {
		s.notifier.Changed(realtime.TopicAppointments, action, id.String())
	}
}

func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if a.Status == "" {
		a.Status = "agendada"
	}
	if err := a.Validate(); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return err
	}
	s.notify("created", a.ID)
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// Update rejects edits once the record reached a terminal status, except
// writing the same status again, which is a no-op retry.
func (s *Service) Update(ctx context.Context, a *Appointment) error {
	current, err := s.repo.GetByID(ctx, a.ID)
	if err != nil {
		return err
	}
	if current.IsTerminal() && a.Status != current.Status {
		return ErrTerminal
	}
	if err := a.Validate(); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return err
	}
	s.notify("updated", a.ID)
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.notify("deleted", id)
	return nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// Upcoming returns the next n scheduled appointments starting at now,
// soonest first. Entries on today's date with a start time already past
// are dropped. n defaults to DefaultUpcomingLimit when zero or negative.
func (s *Service) Upcoming(ctx context.Context, now time.Time, n int) ([]*Appointment, error) {
	if n <= 0 {
		n = DefaultUpcomingLimit
	}
	items, err := s.repo.ListScheduledFrom(ctx, now.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	upcoming := make([]*Appointment, 0, n)
	for _, a := range items {
		if a.StartsAt(now.Location()).Before(now) {
			continue
		}
		upcoming = append(upcoming, a)
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].StartsAt(now.Location()).Before(upcoming[j].StartsAt(now.Location()))
	})
	if len(upcoming) > n {
		upcoming = upcoming[:n]
	}
	return upcoming, nil
}

func (s *Service) All(ctx context.Context) ([]*Appointment, error) {
	return s.repo.All(ctx)
}

func (s *Service) Import(ctx context.Context, items []*Appointment) (int, error) {
	count := 0
	for _, a := range items {
		if a.Status == "" {
			a.Status = "agendada"
		}
		if err := a.Validate(); err != nil {
			return count, err
		}
		if err := s.repo.Upsert(ctx, a); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (s *Service) CountByStatus(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByStatus(ctx)
}

func (s *Service) CountToday(ctx context.Context, now time.Time) (int, error) {
	return s.repo.CountOnDate(ctx, now.Format("2006-01-02"))
}
