package patients

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var errBackendDown = errors.New("backend unavailable")

// repoDown fails every operation, standing in for an unreachable database.
type repoDown struct{}

func (repoDown) Create(context.Context, *Patient) error  { return errBackendDown }
func (repoDown) Update(context.Context, *Patient) error  { return errBackendDown }
func (repoDown) Upsert(context.Context, *Patient) error  { return errBackendDown }
func (repoDown) Delete(context.Context, uuid.UUID) error { return errBackendDown }
func (repoDown) GetByID(context.Context, uuid.UUID) (*Patient, error) {
	return nil, errBackendDown
}
func (repoDown) List(context.Context, int, int) ([]*Patient, int, error) {
	return nil, 0, errBackendDown
}
func (repoDown) All(context.Context) ([]*Patient, error) { return nil, errBackendDown }
func (repoDown) CountByStatus(context.Context) (map[string]int, error) {
	return nil, errBackendDown
}

func TestRepoFallback_ListServesDemoData(t *testing.T) {
	repo := NewRepoFallback(repoDown{}, zerolog.Nop())

	items, total, err := repo.List(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("expected 3 demo patients, got total=%d len=%d", total, len(items))
	}
}

func TestRepoFallback_GetServesDemoData(t *testing.T) {
	repo := NewRepoFallback(repoDown{}, zerolog.Nop())

	p, err := repo.GetByID(context.Background(), DemoPatient1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.FullName != "João Silva Santos" {
		t.Errorf("unexpected demo patient: %+v", p)
	}

	// Unknown ids still fail with the primary's error.
	if _, err := repo.GetByID(context.Background(), uuid.New()); !errors.Is(err, errBackendDown) {
		t.Errorf("expected primary error for unknown id, got %v", err)
	}
}

func TestRepoFallback_CountByStatusServesDemoData(t *testing.T) {
	repo := NewRepoFallback(repoDown{}, zerolog.Nop())

	counts, err := repo.CountByStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts["em_tratamento"] != 2 || counts["pendente"] != 1 {
		t.Errorf("unexpected demo counts: %v", counts)
	}
}

func TestRepoFallback_WritesNeverFallBack(t *testing.T) {
	repo := NewRepoFallback(repoDown{}, zerolog.Nop())

	if err := repo.Create(context.Background(), validPatient()); !errors.Is(err, errBackendDown) {
		t.Errorf("expected write to fail with primary error, got %v", err)
	}
	if err := repo.Delete(context.Background(), DemoPatient1); !errors.Is(err, errBackendDown) {
		t.Errorf("expected delete to fail with primary error, got %v", err)
	}
}

func TestRepoFallback_HealthyPrimaryPassesThrough(t *testing.T) {
	primary := NewRepoMem()
	repo := NewRepoFallback(primary, zerolog.Nop())

	p := validPatient()
	p.Status = "ativo"
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, total, err := repo.List(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || items[0].ID != p.ID {
		t.Errorf("expected the primary's data, got total=%d", total)
	}
}
