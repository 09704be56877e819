package documents

import (
	"time"

	"github.com/google/uuid"

	"github.com/odontosys/odontosys/internal/platform/validation"
)

// Document is the record of a file attached to a patient. URL points at the
// blob download endpoint; the blob itself lives in the blobstore.
type Document struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	FileName    string    `db:"file_name" json:"file_name"`
	ContentType string    `db:"content_type" json:"content_type"`
	DocType     string    `db:"doc_type" json:"doc_type"`
	Description *string   `db:"description" json:"description,omitempty"`
	URL         string    `db:"url" json:"url"`
	SizeBytes   int64     `db:"size_bytes" json:"size_bytes"`
	UploadedAt  time.Time `db:"uploaded_at" json:"uploaded_at"`
}

func (d *Document) formValues() map[string]string {
	values := map[string]string{
		"file_name":   d.FileName,
		"doc_type":    d.DocType,
		"description": strVal(d.Description),
	}
	if d.PatientID != uuid.Nil {
		values["patient_id"] = d.PatientID.String()
	}
	return values
}

// Validate applies the document rule set to the record.
func (d *Document) Validate() error {
	return validation.NewError(validation.DocumentRules.Validate(d.formValues()))
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string { return &s }
