package backup

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

type record struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// memSource keeps records in a slice and counts import calls.
type memSource struct {
	name    string
	records []record
	imports int
	listErr error
}

func (s *memSource) source() Source {
	return Source{
		Name: s.name,
		List: func(_ context.Context) (interface{}, error) {
			if s.listErr != nil {
				return nil, s.listErr
			}
			return s.records, nil
		},
		Import: func(_ context.Context, data json.RawMessage) (int, error) {
			var items []record
			if err := json.Unmarshal(data, &items); err != nil {
				return 0, err
			}
			s.records = append(s.records, items...)
			s.imports++
			return len(items), nil
		},
	}
}

func TestManager_Export(t *testing.T) {
	patients := &memSource{name: "patients", records: []record{{ID: "1", Name: "Maria"}}}
	appointments := &memSource{name: "appointments"}
	mgr := NewManager(patients.source(), appointments.source())

	data, err := mgr.Export(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}

	var version string
	if err := json.Unmarshal(doc["schema_version"], &version); err != nil || version != SchemaVersion {
		t.Errorf("expected schema_version %q, got %q", SchemaVersion, version)
	}
	if _, ok := doc["exported_at"]; !ok {
		t.Error("expected exported_at timestamp")
	}

	var got []record
	if err := json.Unmarshal(doc["patients"], &got); err != nil {
		t.Fatalf("patients is not an array: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Maria" {
		t.Errorf("unexpected patients: %+v", got)
	}
}

func TestManager_Export_SourceError(t *testing.T) {
	broken := &memSource{name: "patients", listErr: errors.New("db down")}
	mgr := NewManager(broken.source())

	if _, err := mgr.Export(context.Background()); err == nil {
		t.Error("expected export to fail when a source fails")
	}
}

func TestManager_ImportRoundTrip(t *testing.T) {
	src := &memSource{name: "patients", records: []record{{ID: "1", Name: "Maria"}, {ID: "2", Name: "Carlos"}}}
	mgr := NewManager(src.source())

	data, err := mgr.Export(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dst := &memSource{name: "patients"}
	restored := NewManager(dst.source())

	counts, err := restored.Import(context.Background(), data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts["patients"] != 2 {
		t.Errorf("expected 2 restored patients, got %d", counts["patients"])
	}
	if len(dst.records) != 2 {
		t.Errorf("expected records written, got %+v", dst.records)
	}
}

func TestManager_Import_MissingArrayRejectedBeforeWrites(t *testing.T) {
	patients := &memSource{name: "patients"}
	appointments := &memSource{name: "appointments"}
	mgr := NewManager(patients.source(), appointments.source())

	// Valid patients array but no appointments key at all.
	data := []byte(`{"schema_version":"1.0.0","patients":[{"id":"1","name":"Maria"}]}`)

	_, err := mgr.Import(context.Background(), data)
	if err == nil || !strings.Contains(err.Error(), "appointments") {
		t.Fatalf("expected missing appointments error, got %v", err)
	}
	if patients.imports != 0 {
		t.Error("no source may be written when validation fails")
	}
}

func TestManager_Import_NonArrayRejected(t *testing.T) {
	patients := &memSource{name: "patients"}
	mgr := NewManager(patients.source())

	data := []byte(`{"patients":{"id":"1"}}`)

	if _, err := mgr.Import(context.Background(), data); err == nil {
		t.Error("expected rejection when an entity key is not an array")
	}
	if patients.imports != 0 {
		t.Error("no source may be written when validation fails")
	}
}

func TestManager_Import_InvalidJSON(t *testing.T) {
	mgr := NewManager()

	if _, err := mgr.Import(context.Background(), []byte("not-json")); err == nil {
		t.Error("expected parse error")
	}
}
