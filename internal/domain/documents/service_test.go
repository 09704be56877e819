package documents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/odontosys/odontosys/internal/platform/blobstore"
)

func newTestService() (*Service, blobstore.Store) {
	store := blobstore.NewInMemoryStore("http://localhost/api/v1", 0)
	return NewService(NewRepoMem(), store), store
}

func TestService_Upload(t *testing.T) {
	svc, store := newTestService()
	patientID := uuid.New()

	d := &Document{
		PatientID:   patientID,
		FileName:    "raiox.jpg",
		ContentType: "image/jpeg",
		DocType:     "raio-x",
	}
	if err := svc.Upload(context.Background(), d, strings.NewReader("jpeg-bytes")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d.URL == "" || !strings.Contains(d.URL, "/files/") {
		t.Errorf("expected public URL, got %q", d.URL)
	}
	if d.SizeBytes != int64(len("jpeg-bytes")) {
		t.Errorf("unexpected size: %d", d.SizeBytes)
	}
	if d.UploadedAt.IsZero() {
		t.Error("expected upload timestamp")
	}

	// The blob is retrievable through the URL's id.
	blobID := d.URL[strings.LastIndex(d.URL, "/")+1:]
	if _, err := store.Stat(context.Background(), blobID); err != nil {
		t.Errorf("expected stored blob, got %v", err)
	}

	items, total, err := svc.ListByPatient(context.Background(), patientID, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected 1 document, got %d", total)
	}
}

func TestService_Upload_DefaultsDocType(t *testing.T) {
	svc, _ := newTestService()

	d := &Document{
		PatientID:   uuid.New(),
		FileName:    "termo.pdf",
		ContentType: "application/pdf",
	}
	if err := svc.Upload(context.Background(), d, strings.NewReader("pdf")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.DocType != "outros" {
		t.Errorf("expected default doc type outros, got %q", d.DocType)
	}
}

func TestService_Upload_RejectsBadContentType(t *testing.T) {
	svc, _ := newTestService()

	d := &Document{
		PatientID:   uuid.New(),
		FileName:    "virus.exe",
		ContentType: "application/octet-stream",
		DocType:     "outros",
	}
	err := svc.Upload(context.Background(), d, strings.NewReader("mz"))
	if !errors.Is(err, blobstore.ErrInvalidContentType) {
		t.Errorf("expected ErrInvalidContentType, got %v", err)
	}
}

func TestService_UploadBatch(t *testing.T) {
	svc, _ := newTestService()
	patientID := uuid.New()

	uploads := []blobstore.Upload{
		{Meta: blobstore.FileMetadata{FileName: "a.jpg", ContentType: "image/jpeg"}, Content: strings.NewReader("a")},
		{Meta: blobstore.FileMetadata{FileName: "", ContentType: "image/jpeg"}, Content: strings.NewReader("b")},
		{Meta: blobstore.FileMetadata{FileName: "c.pdf", ContentType: "application/pdf"}, Content: strings.NewReader("c")},
	}

	var ok, failed int
	for p := range svc.UploadBatch(context.Background(), patientID, "exame", uploads) {
		if p.Error != "" {
			failed++
		} else {
			ok++
		}
	}
	if ok != 2 || failed != 1 {
		t.Fatalf("expected 2 successes and 1 failure, got %d/%d", ok, failed)
	}

	items, total, err := svc.ListByPatient(context.Background(), patientID, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 records, got %d", total)
	}
	for _, d := range items {
		if d.DocType != "exame" {
			t.Errorf("expected doc type exame, got %q", d.DocType)
		}
	}
}

func TestService_Delete_RemovesBlob(t *testing.T) {
	svc, store := newTestService()

	d := &Document{
		PatientID:   uuid.New(),
		FileName:    "apagar.pdf",
		ContentType: "application/pdf",
		DocType:     "outros",
	}
	if err := svc.Upload(context.Background(), d, strings.NewReader("pdf")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	blobID := d.URL[strings.LastIndex(d.URL, "/")+1:]

	if err := svc.Delete(context.Background(), d.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Get(context.Background(), d.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected record gone, got %v", err)
	}
	if _, err := store.Stat(context.Background(), blobID); !errors.Is(err, blobstore.ErrFileNotFound) {
		t.Errorf("expected blob gone, got %v", err)
	}
}

func TestService_Delete_ToleratesMissingBlob(t *testing.T) {
	svc, _ := newTestService()

	// Imported records carry URLs whose blobs may not exist locally.
	d := &Document{
		PatientID: uuid.New(),
		FileName:  "importado.pdf",
		DocType:   "outros",
		URL:       "http://localhost/api/v1/files/gone",
		SizeBytes: 10,
	}
	if _, err := svc.Import(context.Background(), []*Document{d}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Delete(context.Background(), d.ID); err != nil {
		t.Errorf("expected delete to tolerate a missing blob, got %v", err)
	}
}

func TestService_PurgeByPatient(t *testing.T) {
	svc, _ := newTestService()
	patientID := uuid.New()
	other := uuid.New()

	for _, name := range []string{"um.pdf", "dois.pdf"} {
		d := &Document{PatientID: patientID, FileName: name, ContentType: "application/pdf", DocType: "outros"}
		if err := svc.Upload(context.Background(), d, strings.NewReader("pdf")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	keep := &Document{PatientID: other, FileName: "fica.pdf", ContentType: "application/pdf", DocType: "outros"}
	if err := svc.Upload(context.Background(), keep, strings.NewReader("pdf")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.PurgeByPatient(context.Background(), patientID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, total, _ := svc.ListByPatient(context.Background(), patientID, 10, 0); total != 0 {
		t.Errorf("expected purge to remove all documents, got %d", total)
	}
	if _, total, _ := svc.ListByPatient(context.Background(), other, 10, 0); total != 1 {
		t.Errorf("other patients' documents must survive, got %d", total)
	}
}

func TestService_Count(t *testing.T) {
	svc := NewService(NewDemoRepo(), blobstore.NewInMemoryStore("http://localhost", 0))

	n, err := svc.Count(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 demo documents, got %d", n)
	}
}
