package patients

import (
	"time"

	"github.com/google/uuid"

	"github.com/odontosys/odontosys/internal/platform/validation"
)

// Patient maps to the patients table. Dates are stored as AAAA-MM-DD strings.
type Patient struct {
	ID               uuid.UUID `db:"id" json:"id"`
	FullName         string    `db:"full_name" json:"full_name"`
	CPF              string    `db:"cpf" json:"cpf"`
	Email            string    `db:"email" json:"email"`
	Phone            string    `db:"phone" json:"phone"`
	Address          *string   `db:"address" json:"address,omitempty"`
	BirthDate        string    `db:"birth_date" json:"birth_date"`
	Status           string    `db:"status" json:"status"`
	MedicalHistory   *string   `db:"medical_history" json:"medical_history,omitempty"`
	Allergies        *string   `db:"allergies" json:"allergies,omitempty"`
	Medications      *string   `db:"medications" json:"medications,omitempty"`
	EmergencyContact *string   `db:"emergency_contact" json:"emergency_contact,omitempty"`
	EmergencyPhone   *string   `db:"emergency_phone" json:"emergency_phone,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// formValues flattens the record for rule-set validation.
func (p *Patient) formValues() map[string]string {
	return map[string]string{
		"full_name":         p.FullName,
		"cpf":               p.CPF,
		"email":             p.Email,
		"phone":             p.Phone,
		"birth_date":        p.BirthDate,
		"status":            p.Status,
		"address":           strVal(p.Address),
		"medical_history":   strVal(p.MedicalHistory),
		"allergies":         strVal(p.Allergies),
		"medications":       strVal(p.Medications),
		"emergency_contact": strVal(p.EmergencyContact),
		"emergency_phone":   strVal(p.EmergencyPhone),
	}
}

// Validate applies the patient rule set to the record.
func (p *Patient) Validate() error {
	return validation.NewError(validation.PatientRules.Validate(p.formValues()))
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string { return &s }
