package patients

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/odontosys/odontosys/internal/platform/validation"
)

type recordedChange struct {
	topic  string
	action string
	id     string
}

type stubNotifier struct {
	changes []recordedChange
}

func (n *stubNotifier) Changed(topic, action, id string) {
	n.changes = append(n.changes, recordedChange{topic, action, id})
}

type stubPurger struct {
	purged []uuid.UUID
	err    error
}

func (p *stubPurger) PurgeByPatient(_ context.Context, patientID uuid.UUID) error {
	if p.err != nil {
		return p.err
	}
	p.purged = append(p.purged, patientID)
	return nil
}

func validPatient() *Patient {
	return &Patient{
		FullName:         "Ana Souza Pereira",
		CPF:              "321.654.987-00",
		Email:            "ana.souza@email.com",
		Phone:            "(11) 91234-5678",
		Address:          strPtr("Rua Harmonia, 100 - São Paulo, SP"),
		BirthDate:        "1992-05-10",
		EmergencyContact: strPtr("Beatriz Pereira"),
		EmergencyPhone:   strPtr("(11) 99876-5432"),
	}
}

func TestService_Create_RequiresEmail(t *testing.T) {
	svc := NewService(NewRepoMem(), nil, nil)

	p := validPatient()
	p.Email = ""

	err := svc.Create(context.Background(), p)
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := verr.Fields["email"]; !ok {
		t.Errorf("expected email field error, got %v", verr.Fields)
	}
}

func TestService_Create_RequiresEmergencyContact(t *testing.T) {
	svc := NewService(NewRepoMem(), nil, nil)

	p := validPatient()
	p.EmergencyContact = nil
	p.EmergencyPhone = nil

	err := svc.Create(context.Background(), p)
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"emergency_contact", "emergency_phone"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Errorf("expected %s field error, got %v", field, verr.Fields)
		}
	}
}

func TestService_Create_DefaultsStatus(t *testing.T) {
	notifier := &stubNotifier{}
	svc := NewService(NewRepoMem(), notifier, nil)

	p := validPatient()
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != "ativo" {
		t.Errorf("expected default status ativo, got %q", p.Status)
	}
	if p.ID == uuid.Nil {
		t.Error("expected generated id")
	}
	if len(notifier.changes) != 1 || notifier.changes[0].action != "created" {
		t.Errorf("expected created notification, got %+v", notifier.changes)
	}
}

func TestService_Create_InvalidRecord(t *testing.T) {
	notifier := &stubNotifier{}
	svc := NewService(NewRepoMem(), notifier, nil)

	p := validPatient()
	p.CPF = "12345678900"

	err := svc.Create(context.Background(), p)
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := verr.Fields["cpf"]; !ok {
		t.Errorf("expected cpf field error, got %v", verr.Fields)
	}
	if len(notifier.changes) != 0 {
		t.Error("no notification may be sent for rejected writes")
	}
}

func TestService_Update(t *testing.T) {
	notifier := &stubNotifier{}
	svc := NewService(NewRepoMem(), notifier, nil)

	p := validPatient()
	p.Status = "ativo"
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p.Status = "alta"
	if err := svc.Update(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != "alta" {
		t.Errorf("expected status alta, got %q", got.Status)
	}
	if notifier.changes[len(notifier.changes)-1].action != "updated" {
		t.Errorf("expected updated notification, got %+v", notifier.changes)
	}
}

func TestService_Delete_PurgesDocumentsFirst(t *testing.T) {
	notifier := &stubNotifier{}
	purger := &stubPurger{}
	svc := NewService(NewRepoMem(), notifier, purger)

	p := validPatient()
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(purger.purged) != 1 || purger.purged[0] != p.ID {
		t.Errorf("expected document purge for %s, got %v", p.ID, purger.purged)
	}
	if _, err := svc.Get(context.Background(), p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected patient gone, got %v", err)
	}
	if notifier.changes[len(notifier.changes)-1].action != "deleted" {
		t.Errorf("expected deleted notification, got %+v", notifier.changes)
	}
}

func TestService_Delete_PurgeFailureAborts(t *testing.T) {
	purger := &stubPurger{err: errors.New("blob store down")}
	svc := NewService(NewRepoMem(), nil, purger)

	p := validPatient()
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Delete(context.Background(), p.ID); err == nil {
		t.Fatal("expected delete to fail when purge fails")
	}
	if _, err := svc.Get(context.Background(), p.ID); err != nil {
		t.Error("patient row must survive a failed purge")
	}
}

func TestService_Import(t *testing.T) {
	svc := NewService(NewRepoMem(), nil, nil)

	items := []*Patient{validPatient(), validPatient()}
	items[1].CPF = "111.222.333-44"

	n, err := svc.Import(context.Background(), items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 imported, got %d", n)
	}

	all, err := svc.All(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 patients, got %d", len(all))
	}
}

func TestService_Import_StopsOnInvalid(t *testing.T) {
	svc := NewService(NewRepoMem(), nil, nil)

	bad := validPatient()
	bad.FullName = ""

	n, err := svc.Import(context.Background(), []*Patient{validPatient(), bad})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if n != 1 {
		t.Errorf("expected 1 record imported before failure, got %d", n)
	}
}
