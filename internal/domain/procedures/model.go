package procedures

import (
	"time"

	"github.com/google/uuid"

	"github.com/odontosys/odontosys/internal/platform/validation"
)

// Procedure maps to the procedures table. ToothNumber uses FDI notation.
type Procedure struct {
	ID            uuid.UUID `db:"id" json:"id"`
	PatientID     uuid.UUID `db:"patient_id" json:"patient_id"`
	ToothNumber   *int      `db:"tooth_number" json:"tooth_number,omitempty"`
	Name          string    `db:"name" json:"name"`
	Description   *string   `db:"description" json:"description,omitempty"`
	Notes         *string   `db:"notes" json:"notes,omitempty"`
	Cost          *float64  `db:"cost" json:"cost,omitempty"`
	ProcedureDate string    `db:"procedure_date" json:"procedure_date"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

func (p *Procedure) formValues() map[string]string {
	values := map[string]string{
		"name":           p.Name,
		"description":    strVal(p.Description),
		"procedure_date": p.ProcedureDate,
		"notes":          strVal(p.Notes),
	}
	if p.PatientID != uuid.Nil {
		values["patient_id"] = p.PatientID.String()
	}
	if p.ToothNumber != nil {
		values["tooth_number"] = validation.FormatInt(*p.ToothNumber)
	}
	if p.Cost != nil {
		values["cost"] = validation.FormatFloat(*p.Cost)
	}
	return values
}

// Validate applies the procedure rule set to the record.
func (p *Procedure) Validate() error {
	return validation.NewError(validation.ProcedureRules.Validate(p.formValues()))
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string     { return &s }
func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }
