package documents

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odontosys/odontosys/internal/domain/patients"
)

var ErrNotFound = errors.New("document not found")

// DemoDocuments returns the demo dataset served when the fallback policy is on.
func DemoDocuments() []*Document {
	return []*Document{
		{
			ID:          uuid.MustParse("d4e5f6a7-0001-4000-8000-000000000001"),
			PatientID:   patients.DemoPatient1,
			FileName:    "radiografia_panoramica.jpg",
			ContentType: "image/jpeg",
			DocType:     "raio-x",
			Description: strPtr("Radiografia panorâmica inicial"),
			URL:         "/files/demo-radiografia-panoramica",
			SizeBytes:   245760,
			UploadedAt:  time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			ID:          uuid.MustParse("d4e5f6a7-0002-4000-8000-000000000002"),
			PatientID:   patients.DemoPatient1,
			FileName:    "termo_consentimento.pdf",
			ContentType: "application/pdf",
			DocType:     "outros",
			Description: strPtr("Termo de consentimento assinado"),
			URL:         "/files/demo-termo-consentimento",
			SizeBytes:   81920,
			UploadedAt:  time.Date(2024, 1, 15, 10, 35, 0, 0, time.UTC),
		},
		{
			ID:          uuid.MustParse("d4e5f6a7-0003-4000-8000-000000000003"),
			PatientID:   patients.DemoPatient2,
			FileName:    "exame_clinico.pdf",
			ContentType: "application/pdf",
			DocType:     "exame",
			Description: strPtr("Exame clínico completo"),
			URL:         "/files/demo-exame-clinico",
			SizeBytes:   122880,
			UploadedAt:  time.Date(2024, 1, 16, 14, 45, 0, 0, time.UTC),
		},
	}
}

type repoMem struct {
	mu        sync.RWMutex
	documents map[uuid.UUID]*Document
}

func NewRepoMem() Repository {
	return &repoMem{documents: make(map[uuid.UUID]*Document)}
}

func NewDemoRepo() Repository {
	r := &repoMem{documents: make(map[uuid.UUID]*Document)}
	for _, d := range DemoDocuments() {
		r.documents[d.ID] = d
	}
	return r
}

func (r *repoMem) Create(_ context.Context, d *Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now().UTC()
	}
	cp := *d
	r.documents[d.ID] = &cp
	return nil
}

func (r *repoMem) GetByID(_ context.Context, id uuid.UUID) (*Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.documents[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *repoMem) Upsert(_ context.Context, d *Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	cp := *d
	if cp.UploadedAt.IsZero() {
		cp.UploadedAt = time.Now().UTC()
	}
	r.documents[d.ID] = &cp
	return nil
}

func (r *repoMem) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.documents[id]; !ok {
		return ErrNotFound
	}
	delete(r.documents, id)
	return nil
}

func (r *repoMem) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Document, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var items []*Document
	for _, d := range r.documents {
		if d.PatientID != patientID {
			continue
		}
		cp := *d
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].UploadedAt.After(items[j].UploadedAt) })
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

func (r *repoMem) All(_ context.Context) ([]*Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var items []*Document
	for _, d := range r.documents {
		cp := *d
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].UploadedAt.After(items[j].UploadedAt) })
	return items, nil
}

func (r *repoMem) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.documents), nil
}
