package procedures

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/odontosys/odontosys/internal/platform/validation"
)

func validProcedure() *Procedure {
	return &Procedure{
		PatientID:     uuid.New(),
		Name:          "Limpeza",
		Description:   strPtr("Profilaxia completa e aplicação de flúor"),
		ToothNumber:   intPtr(21),
		Cost:          floatPtr(150),
		ProcedureDate: "2024-02-01",
	}
}

func TestService_Create_RequiresDescriptionAndCost(t *testing.T) {
	svc := NewService(NewRepoMem())

	p := validProcedure()
	p.Description = nil
	p.Cost = nil

	err := svc.Create(context.Background(), p)
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"description", "cost"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Errorf("expected %s field error, got %v", field, verr.Fields)
		}
	}
}

func TestService_Create(t *testing.T) {
	svc := NewService(NewRepoMem())

	p := validProcedure()
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, total, err := svc.ListByPatient(context.Background(), p.PatientID, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || items[0].Name != "Limpeza" {
		t.Errorf("unexpected listing: total=%d", total)
	}
}

func TestService_Create_InvalidTooth(t *testing.T) {
	svc := NewService(NewRepoMem())

	p := validProcedure()
	p.ToothNumber = intPtr(99)

	err := svc.Create(context.Background(), p)
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := verr.Fields["tooth_number"]; !ok {
		t.Errorf("expected tooth_number field error, got %v", verr.Fields)
	}
}

func TestService_Create_ToothOptional(t *testing.T) {
	svc := NewService(NewRepoMem())

	p := validProcedure()
	p.ToothNumber = nil

	if err := svc.Create(context.Background(), p); err != nil {
		t.Errorf("tooth number is optional, got %v", err)
	}
}

func TestService_Create_CostOutOfRange(t *testing.T) {
	svc := NewService(NewRepoMem())

	cost := 10000.01
	p := validProcedure()
	p.Cost = &cost

	err := svc.Create(context.Background(), p)
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := verr.Fields["cost"]; !ok {
		t.Errorf("expected cost field error, got %v", verr.Fields)
	}
}

func TestService_CountByName(t *testing.T) {
	svc := NewService(NewDemoRepo())

	counts, err := svc.CountByName(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	if total != len(DemoProcedures()) {
		t.Errorf("expected every demo procedure counted, got %v", counts)
	}
}

func TestService_Import(t *testing.T) {
	svc := NewService(NewRepoMem())

	n, err := svc.Import(context.Background(), DemoProcedures())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != len(DemoProcedures()) {
		t.Errorf("expected %d imported, got %d", len(DemoProcedures()), n)
	}
}
