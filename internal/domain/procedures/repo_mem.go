package procedures

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odontosys/odontosys/internal/domain/patients"
)

var ErrNotFound = errors.New("procedure not found")

// DemoProcedures returns the demo dataset served when the fallback policy is on.
func DemoProcedures() []*Procedure {
	return []*Procedure{
		{
			ID:            uuid.MustParse("b2c3d4e5-0001-4000-8000-000000000001"),
			PatientID:     patients.DemoPatient1,
			ToothNumber:   intPtr(11),
			Name:          "Restauração",
			Description:   strPtr("Restauração em resina composta no incisivo central"),
			Cost:          floatPtr(350),
			ProcedureDate: "2024-01-20",
			CreatedAt:     time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:            uuid.MustParse("b2c3d4e5-0002-4000-8000-000000000002"),
			PatientID:     patients.DemoPatient1,
			ToothNumber:   intPtr(21),
			Name:          "Limpeza",
			Description:   strPtr("Profilaxia completa e aplicação de flúor"),
			Cost:          floatPtr(150),
			ProcedureDate: "2024-01-15",
			CreatedAt:     time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC),
		},
		{
			ID:            uuid.MustParse("b2c3d4e5-0003-4000-8000-000000000003"),
			PatientID:     patients.DemoPatient2,
			ToothNumber:   intPtr(16),
			Name:          "Extração",
			Description:   strPtr("Extração simples de dente com cárie extensa"),
			Cost:          floatPtr(280),
			ProcedureDate: "2024-01-18",
			CreatedAt:     time.Date(2024, 1, 18, 11, 30, 0, 0, time.UTC),
		},
	}
}

type repoMem struct {
	mu         sync.RWMutex
	procedures map[uuid.UUID]*Procedure
}

func NewRepoMem() Repository {
	return &repoMem{procedures: make(map[uuid.UUID]*Procedure)}
}

func NewDemoRepo() Repository {
	r := &repoMem{procedures: make(map[uuid.UUID]*Procedure)}
	for _, p := range DemoProcedures() {
		r.procedures[p.ID] = p
	}
	return r
}

func (r *repoMem) Create(_ context.Context, p *Procedure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now().UTC()
	cp := *p
	r.procedures[p.ID] = &cp
	return nil
}

func (r *repoMem) GetByID(_ context.Context, id uuid.UUID) (*Procedure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.procedures[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *repoMem) Update(_ context.Context, p *Procedure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.procedures[p.ID]
	if !ok {
		return ErrNotFound
	}
	cp := *p
	cp.CreatedAt = existing.CreatedAt
	r.procedures[p.ID] = &cp
	return nil
}

func (r *repoMem) Upsert(_ context.Context, p *Procedure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	r.procedures[p.ID] = &cp
	return nil
}

func (r *repoMem) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.procedures[id]; !ok {
		return ErrNotFound
	}
	delete(r.procedures, id)
	return nil
}

func (r *repoMem) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Procedure, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var items []*Procedure
	for _, p := range r.procedures {
		if p.PatientID != patientID {
			continue
		}
		cp := *p
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ProcedureDate > items[j].ProcedureDate
	})
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

func (r *repoMem) All(_ context.Context) ([]*Procedure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var items []*Procedure
	for _, p := range r.procedures {
		cp := *p
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ProcedureDate > items[j].ProcedureDate
	})
	return items, nil
}

func (r *repoMem) CountByName(_ context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int)
	for _, p := range r.procedures {
		counts[p.Name]++
	}
	return counts, nil
}
