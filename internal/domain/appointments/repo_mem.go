package appointments

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odontosys/odontosys/internal/domain/patients"
)

var ErrNotFound = errors.New("appointment not found")

// DemoAppointments returns the demo dataset served when the fallback policy is on.
func DemoAppointments() []*Appointment {
	return []*Appointment{
		{
			ID:        uuid.MustParse("c3d4e5f6-0001-4000-8000-000000000001"),
			PatientID: patients.DemoPatient1,
			Date:      "2024-01-25",
			Time:      "09:00",
			Type:      "consulta",
			Status:    "agendada",
			Notes:     strPtr("Consulta de rotina"),
			CreatedAt: time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:        uuid.MustParse("c3d4e5f6-0002-4000-8000-000000000002"),
			PatientID: patients.DemoPatient2,
			Date:      "2024-01-25",
			Time:      "14:30",
			Type:      "consulta",
			Status:    "agendada",
			Notes:     strPtr("Avaliação pós-extração"),
			CreatedAt: time.Date(2024, 1, 20, 11, 0, 0, 0, time.UTC),
		},
		{
			ID:        uuid.MustParse("c3d4e5f6-0003-4000-8000-000000000003"),
			PatientID: patients.DemoPatient3,
			Date:      "2024-01-24",
			Time:      "16:00",
			Type:      "consulta",
			Status:    "concluida",
			Notes:     strPtr("Primeira consulta"),
			CreatedAt: time.Date(2024, 1, 19, 15, 0, 0, 0, time.UTC),
		},
	}
}

type repoMem struct {
	mu           sync.RWMutex
	appointments map[uuid.UUID]*Appointment
}

func NewRepoMem() Repository {
	return &repoMem{appointments: make(map[uuid.UUID]*Appointment)}
}

func NewDemoRepo() Repository {
	r := &repoMem{appointments: make(map[uuid.UUID]*Appointment)}
	for _, a := range DemoAppointments() {
		r.appointments[a.ID] = a
	}
	return r
}

func (r *repoMem) Create(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now().UTC()
	cp := *a
	r.appointments[a.ID] = &cp
	return nil
}

func (r *repoMem) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *repoMem) Update(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.appointments[a.ID]
	if !ok {
		return ErrNotFound
	}
	cp := *a
	cp.CreatedAt = existing.CreatedAt
	r.appointments[a.ID] = &cp
	return nil
}

func (r *repoMem) Upsert(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	r.appointments[a.ID] = &cp
	return nil
}

func (r *repoMem) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appointments[id]; !ok {
		return ErrNotFound
	}
	delete(r.appointments, id)
	return nil
}

func byStart(items []*Appointment, asc bool) {
	sort.Slice(items, func(i, j int) bool {
		ki := items[i].Date + " " + items[i].Time
		kj := items[j].Date + " " + items[j].Time
		if asc {
			return ki < kj
		}
		return ki > kj
	})
}

func page(items []*Appointment, limit, offset int) ([]*Appointment, int) {
	total := len(items)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return items[offset:end], total
}

func (r *repoMem) snapshot(filter func(*Appointment) bool) []*Appointment {
	var items []*Appointment
	for _, a := range r.appointments {
		if filter != nil && !filter(a) {
			continue
		}
		cp := *a
		items = append(items, &cp)
	}
	return items
}

func (r *repoMem) List(_ context.Context, limit, offset int) ([]*Appointment, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := r.snapshot(nil)
	byStart(items, true)
	paged, total := page(items, limit, offset)
	return paged, total, nil
}

func (r *repoMem) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := r.snapshot(func(a *Appointment) bool { return a.PatientID == patientID })
	byStart(items, false)
	paged, total := page(items, limit, offset)
	return paged, total, nil
}

func (r *repoMem) ListScheduledFrom(_ context.Context, fromDate string) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := r.snapshot(func(a *Appointment) bool {
		return a.Status == "agendada" && a.Date >= fromDate
	})
	byStart(items, true)
	return items, nil
}

func (r *repoMem) All(_ context.Context) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := r.snapshot(nil)
	byStart(items, true)
	return items, nil
}

func (r *repoMem) CountByStatus(_ context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int)
	for _, a := range r.appointments {
		counts[a.Status]++
	}
	return counts, nil
}

func (r *repoMem) CountOnDate(_ context.Context, date string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, a := range r.appointments {
		if a.Date == date {
			n++
		}
	}
	return n, nil
}
