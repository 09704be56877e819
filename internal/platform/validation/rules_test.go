package validation

import (
	"errors"
	"testing"
)

func TestPatientRules_Valid(t *testing.T) {
	errs := PatientRules.Validate(map[string]string{
		"full_name":         "João Silva Santos",
		"cpf":               "123.456.789-01",
		"email":             "joao@email.com",
		"phone":             "(11) 98765-4321",
		"birth_date":        "1985-03-15",
		"status":            "ativo",
		"address":           "Rua das Flores, 123 - São Paulo, SP",
		"emergency_contact": "Carla Silva Santos",
		"emergency_phone":   "(11) 99887-7665",
	})
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestPatientRules_MissingRequired(t *testing.T) {
	errs := PatientRules.Validate(map[string]string{})
	required := []string{
		"full_name", "cpf", "email", "phone", "birth_date",
		"address", "emergency_contact", "emergency_phone",
	}
	for _, field := range required {
		if errs[field] == "" {
			t.Errorf("expected error for missing %s", field)
		}
	}
	if errs["medical_history"] != "" {
		t.Errorf("medical history is optional, got error %q", errs["medical_history"])
	}
}

func TestPatientRules_CPFFormat(t *testing.T) {
	cases := map[string]bool{
		"123.456.789-01": true,
		"12345678901":    false,
		"123.456.789-1":  false,
		"abc.def.ghi-jk": false,
	}
	for cpf, valid := range cases {
		msg := PatientRules.ValidateField("cpf", cpf)
		if valid && msg != "" {
			t.Errorf("cpf %q: expected valid, got %q", cpf, msg)
		}
		if !valid && msg == "" {
			t.Errorf("cpf %q: expected rejection", cpf)
		}
	}
}

func TestPatientRules_PhoneFormat(t *testing.T) {
	cases := map[string]bool{
		"(11) 98765-4321": true,
		"11 98765-4321":   true,
		"(11) 3456-7890":  true,
		"98765":           false,
		"telefone":        false,
	}
	for phone, valid := range cases {
		msg := PatientRules.ValidateField("phone", phone)
		if valid && msg != "" {
			t.Errorf("phone %q: expected valid, got %q", phone, msg)
		}
		if !valid && msg == "" {
			t.Errorf("phone %q: expected rejection", phone)
		}
	}
}

func TestPatientRules_Status(t *testing.T) {
	for _, status := range PatientStatuses {
		if msg := PatientRules.ValidateField("status", status); msg != "" {
			t.Errorf("status %q: expected valid, got %q", status, msg)
		}
	}
	if msg := PatientRules.ValidateField("status", "arquivado"); msg == "" {
		t.Error("expected unknown status to be rejected")
	}
}

func TestAppointmentRules(t *testing.T) {
	errs := AppointmentRules.Validate(map[string]string{
		"patient_id": "a1b2c3d4-0001-4000-8000-000000000001",
		"date":       "2024-01-25",
		"time":       "09:00",
		"type":       "consulta",
		"status":     "agendada",
	})
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}

	if msg := AppointmentRules.ValidateField("date", "25/01/2024"); msg == "" {
		t.Error("expected date in wrong format to be rejected")
	}
	if msg := AppointmentRules.ValidateField("time", "9h30"); msg == "" {
		t.Error("expected time in wrong format to be rejected")
	}
	if msg := AppointmentRules.ValidateField("type", "cirurgia"); msg == "" {
		t.Error("expected unknown type to be rejected")
	}
}

func TestProcedureRules_ToothNumber(t *testing.T) {
	cases := map[string]bool{
		"11": true,
		"48": true,
		"21": true,
		"":   true,
		"10": false,
		"49": false,
		"0":  false,
		"xx": false,
	}
	for tooth, valid := range cases {
		msg := ProcedureRules.ValidateField("tooth_number", tooth)
		if valid && msg != "" {
			t.Errorf("tooth %q: expected valid, got %q", tooth, msg)
		}
		if !valid && msg == "" {
			t.Errorf("tooth %q: expected rejection", tooth)
		}
	}
}

func TestProcedureRules_Description(t *testing.T) {
	cases := map[string]bool{
		"Restauração em resina composta": true,
		"":                               false,
		"curta":                          false,
	}
	for desc, valid := range cases {
		msg := ProcedureRules.ValidateField("description", desc)
		if valid && msg != "" {
			t.Errorf("description %q: expected valid, got %q", desc, msg)
		}
		if !valid && msg == "" {
			t.Errorf("description %q: expected rejection", desc)
		}
	}
}

func TestProcedureRules_Cost(t *testing.T) {
	cases := map[string]bool{
		"0":        true,
		"150.50":   true,
		"10000":    true,
		"":         false,
		"-1":       false,
		"10000.01": false,
		"caro":     false,
	}
	for cost, valid := range cases {
		msg := ProcedureRules.ValidateField("cost", cost)
		if valid && msg != "" {
			t.Errorf("cost %q: expected valid, got %q", cost, msg)
		}
		if !valid && msg == "" {
			t.Errorf("cost %q: expected rejection", cost)
		}
	}
}

func TestUserRules_Role(t *testing.T) {
	for _, role := range UserRoles {
		if msg := UserRules.ValidateField("role", role); msg != "" {
			t.Errorf("role %q: expected valid, got %q", role, msg)
		}
	}
	for _, role := range []string{"", "gerente"} {
		if msg := UserRules.ValidateField("role", role); msg == "" {
			t.Errorf("role %q: expected rejection", role)
		}
	}
}

func TestValidate_StopsAtFirstFailure(t *testing.T) {
	errs := SignUpRules.Validate(map[string]string{
		"email":    "",
		"password": "123",
		"name":     "Ana",
	})
	if errs["email"] != "email é obrigatório" {
		t.Errorf("expected required message for email, got %q", errs["email"])
	}
	if errs["password"] != "senha deve ter no mínimo 6 caracteres" {
		t.Errorf("expected min length message for password, got %q", errs["password"])
	}
	if errs["name"] != "" {
		t.Errorf("expected no error for name, got %q", errs["name"])
	}
}

func TestNewError(t *testing.T) {
	if err := NewError(Errors{}); err != nil {
		t.Errorf("expected nil for empty errors, got %v", err)
	}

	err := NewError(Errors{"cpf": "CPF é obrigatório"})
	if err == nil {
		t.Fatal("expected error")
	}
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatal("expected *Error")
	}
	if verr.Fields["cpf"] != "CPF é obrigatório" {
		t.Errorf("unexpected field message %q", verr.Fields["cpf"])
	}
}
