package patients

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by the in-memory repository for unknown ids.
var ErrNotFound = errors.New("patient not found")

// Demo dataset ids, shared with the dependent domains' seeds.
var (
	DemoPatient1 = uuid.MustParse("a1b2c3d4-0001-4000-8000-000000000001")
	DemoPatient2 = uuid.MustParse("a1b2c3d4-0002-4000-8000-000000000002")
	DemoPatient3 = uuid.MustParse("a1b2c3d4-0003-4000-8000-000000000003")
)

// DemoPatients returns the demo dataset served when the fallback policy is on.
func DemoPatients() []*Patient {
	return []*Patient{
		{
			ID:               DemoPatient1,
			FullName:         "João Silva Santos",
			CPF:              "123.456.789-01",
			Email:            "joao.silva@email.com",
			Phone:            "(11) 98765-4321",
			Address:          strPtr("Rua das Flores, 123 - São Paulo, SP"),
			BirthDate:        "1985-03-15",
			Status:           "em_tratamento",
			EmergencyContact: strPtr("Carla Silva Santos"),
			EmergencyPhone:   strPtr("(11) 99887-7665"),
			CreatedAt:        time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
			UpdatedAt:        time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:               DemoPatient2,
			FullName:         "Maria Oliveira Costa",
			CPF:              "987.654.321-09",
			Email:            "maria.oliveira@email.com",
			Phone:            "(11) 87654-3210",
			Address:          strPtr("Av. Paulista, 456 - São Paulo, SP"),
			BirthDate:        "1990-07-22",
			Status:           "em_tratamento",
			EmergencyContact: strPtr("Roberto Costa"),
			EmergencyPhone:   strPtr("(11) 98111-2233"),
			CreatedAt:        time.Date(2024, 1, 16, 14, 30, 0, 0, time.UTC),
			UpdatedAt:        time.Date(2024, 1, 16, 14, 30, 0, 0, time.UTC),
		},
		{
			ID:               DemoPatient3,
			FullName:         "Pedro Henrique Lima",
			CPF:              "456.789.123-45",
			Email:            "pedro.lima@email.com",
			Phone:            "(11) 76543-2109",
			Address:          strPtr("Rua Augusta, 789 - São Paulo, SP"),
			BirthDate:        "1978-12-03",
			Status:           "pendente",
			EmergencyContact: strPtr("Fernanda Lima"),
			EmergencyPhone:   strPtr("(11) 97654-4321"),
			CreatedAt:        time.Date(2024, 1, 17, 9, 15, 0, 0, time.UTC),
			UpdatedAt:        time.Date(2024, 1, 17, 9, 15, 0, 0, time.UTC),
		},
	}
}

// repoMem is a map-backed Repository used for the demo fallback and tests.
type repoMem struct {
	mu       sync.RWMutex
	patients map[uuid.UUID]*Patient
}

// NewRepoMem returns an empty in-memory repository.
func NewRepoMem() Repository {
	return &repoMem{patients: make(map[uuid.UUID]*Patient)}
}

// NewDemoRepo returns an in-memory repository seeded with the demo dataset.
func NewDemoRepo() Repository {
	r := &repoMem{patients: make(map[uuid.UUID]*Patient)}
	for _, p := range DemoPatients() {
		r.patients[p.ID] = p
	}
	return r
}

func (r *repoMem) Create(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	cp := *p
	r.patients[p.ID] = &cp
	return nil
}

func (r *repoMem) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *repoMem) Update(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.patients[p.ID]
	if !ok {
		return ErrNotFound
	}
	cp := *p
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = time.Now().UTC()
	r.patients[p.ID] = &cp
	return nil
}

func (r *repoMem) Upsert(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	cp.UpdatedAt = time.Now().UTC()
	r.patients[p.ID] = &cp
	return nil
}

func (r *repoMem) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[id]; !ok {
		return ErrNotFound
	}
	delete(r.patients, id)
	return nil
}

func (r *repoMem) sorted() []*Patient {
	items := make([]*Patient, 0, len(r.patients))
	for _, p := range r.patients {
		cp := *p
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}

func (r *repoMem) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := r.sorted()
	total := len(items)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return items[offset:end], total, nil
}

func (r *repoMem) All(_ context.Context) ([]*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(), nil
}

func (r *repoMem) CountByStatus(_ context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int)
	for _, p := range r.patients {
		counts[p.Status]++
	}
	return counts, nil
}
