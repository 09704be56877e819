package validation

import "regexp"

// Wire formats used across the application. Dates and times are stored as
// independent strings; composition happens at query time.
var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	cpfPattern   = regexp.MustCompile(`^\d{3}\.\d{3}\.\d{3}-\d{2}$`)
	phonePattern = regexp.MustCompile(`^\(?\d{2}\)?[\s-]?\d{4,5}[\s-]?\d{4}$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern  = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// Allowed enum values.
var (
	PatientStatuses   = []string{"ativo", "em_tratamento", "pendente", "alta", "inativo"}
	AppointmentTypes  = []string{"consulta", "limpeza", "procedimento", "emergencia"}
	AppointmentStatus = []string{"agendada", "concluida", "cancelada"}
	DocumentTypes     = []string{"raio-x", "foto", "exame", "receita", "atestado", "outros"}
	UserRoles         = []string{"dentista", "administrador"}
)

// PatientRules validates patient create/update forms.
var PatientRules = RuleSet{
	"full_name": {
		Required("nome é obrigatório"),
		MinLen(2, between(2, 100)),
		MaxLen(100, between(2, 100)),
	},
	"cpf": {
		Required("CPF é obrigatório"),
		Pattern(cpfPattern, "CPF deve estar no formato 000.000.000-00"),
	},
	"email": {
		Required("email é obrigatório"),
		Pattern(emailPattern, "email inválido"),
	},
	"phone": {
		Required("telefone é obrigatório"),
		Pattern(phonePattern, "telefone inválido"),
	},
	"birth_date": {
		Required("data de nascimento é obrigatória"),
		Pattern(datePattern, "data deve estar no formato AAAA-MM-DD"),
	},
	"status": {
		OneOf("status inválido", PatientStatuses...),
	},
	"address": {
		Required("endereço é obrigatório"),
		MinLen(10, "endereço deve ter no mínimo 10 caracteres"),
	},
	"emergency_contact": {
		Required("contato de emergência é obrigatório"),
		MinLen(2, "contato de emergência deve ter no mínimo 2 caracteres"),
	},
	"emergency_phone": {
		Required("telefone de emergência é obrigatório"),
		Pattern(phonePattern, "telefone inválido"),
	},
	"medical_history": {
		MaxLen(1000, "histórico médico deve ter no máximo 1000 caracteres"),
	},
	"allergies": {
		MaxLen(500, "alergias deve ter no máximo 500 caracteres"),
	},
	"medications": {
		MaxLen(500, "medicamentos deve ter no máximo 500 caracteres"),
	},
}

// AppointmentRules validates appointment create/update forms.
var AppointmentRules = RuleSet{
	"patient_id": {
		Required("paciente é obrigatório"),
	},
	"date": {
		Required("data é obrigatória"),
		Pattern(datePattern, "data deve estar no formato AAAA-MM-DD"),
	},
	"time": {
		Required("horário é obrigatório"),
		Pattern(timePattern, "horário deve estar no formato HH:MM"),
	},
	"type": {
		Required("tipo é obrigatório"),
		OneOf("tipo inválido", AppointmentTypes...),
	},
	"status": {
		OneOf("status inválido", AppointmentStatus...),
	},
	"notes": {
		MaxLen(500, "observações deve ter no máximo 500 caracteres"),
	},
}

// ProcedureRules validates procedure create/update forms.
var ProcedureRules = RuleSet{
	"patient_id": {
		Required("paciente é obrigatório"),
	},
	"name": {
		Required("procedimento é obrigatório"),
		MinLen(2, between(2, 100)),
		MaxLen(100, between(2, 100)),
	},
	"tooth_number": {
		IntRange(11, 48, "dente deve estar entre 11 e 48"),
	},
	"description": {
		Required("descrição é obrigatória"),
		MinLen(10, "descrição deve ter no mínimo 10 caracteres"),
		MaxLen(1000, "descrição deve ter no máximo 1000 caracteres"),
	},
	"cost": {
		Required("custo é obrigatório"),
		Min(0, "custo deve estar entre 0 e 10000"),
		Max(10000, "custo deve estar entre 0 e 10000"),
	},
	"procedure_date": {
		Required("data do procedimento é obrigatória"),
		Pattern(datePattern, "data deve estar no formato AAAA-MM-DD"),
	},
	"notes": {
		MaxLen(500, "observações deve ter no máximo 500 caracteres"),
	},
}

// DocumentRules validates document metadata forms.
var DocumentRules = RuleSet{
	"patient_id": {
		Required("paciente é obrigatório"),
	},
	"file_name": {
		Required("nome do arquivo é obrigatório"),
	},
	"doc_type": {
		Required("tipo de documento é obrigatório"),
		OneOf("tipo de documento inválido", DocumentTypes...),
	},
	"description": {
		MaxLen(500, "descrição deve ter no máximo 500 caracteres"),
	},
}

// SignUpRules validates account registration.
var SignUpRules = RuleSet{
	"email": {
		Required("email é obrigatório"),
		Pattern(emailPattern, "email inválido"),
	},
	"password": {
		Required("senha é obrigatória"),
		MinLen(6, "senha deve ter no mínimo 6 caracteres"),
	},
	"name": {
		Required("nome é obrigatório"),
		MinLen(2, between(2, 100)),
		MaxLen(100, between(2, 100)),
	},
}

// UserRules validates admin user creation, where the role is assigned
// explicitly rather than defaulted by sign-up.
var UserRules = RuleSet{
	"email":    SignUpRules["email"],
	"password": SignUpRules["password"],
	"name":     SignUpRules["name"],
	"role": {
		Required("perfil é obrigatório"),
		OneOf("perfil inválido", UserRoles...),
	},
}
