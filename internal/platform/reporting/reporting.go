// Package reporting aggregates clinic statistics and renders them as JSON
// or a downloadable CSV. It reads through the domain services so the demo
// fallback applies to reports the same way it applies to listings.
package reporting

import (
	"context"
	"fmt"
	"time"
)

// StatusCounter reports record counts grouped by status.
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// NameCounter reports record counts grouped by name.
type NameCounter interface {
	CountByName(ctx context.Context) (map[string]int, error)
}

// Counter reports a total record count.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Summary is the clinic-wide statistics document.
type Summary struct {
	GeneratedAt           time.Time      `json:"generated_at"`
	TotalPatients         int            `json:"total_patients"`
	ActivePatients        int            `json:"active_patients"`
	TotalAppointments     int            `json:"total_appointments"`
	CompletedAppointments int            `json:"completed_appointments"`
	CanceledAppointments  int            `json:"canceled_appointments"`
	TotalProcedures       int            `json:"total_procedures"`
	TotalDocuments        int            `json:"total_documents"`
	PatientsByStatus      map[string]int `json:"patients_by_status"`
	ProceduresByType      map[string]int `json:"procedures_by_type"`
}

type Service struct {
	patients     StatusCounter
	appointments StatusCounter
	procedures   NameCounter
	documents    Counter
}

func NewService(patients, appointments StatusCounter, procedures NameCounter, documents Counter) *Service {
	return &Service{
		patients:     patients,
		appointments: appointments,
		procedures:   procedures,
		documents:    documents,
	}
}

// Summary computes the full statistics document. Active patients are those
// in treatment or with status ativo.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	patientsByStatus, err := s.patients.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting patients: %w", err)
	}
	appointmentsByStatus, err := s.appointments.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting appointments: %w", err)
	}
	proceduresByType, err := s.procedures.CountByName(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting procedures: %w", err)
	}
	totalDocuments, err := s.documents.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}

	sum := &Summary{
		GeneratedAt:      time.Now().UTC(),
		PatientsByStatus: patientsByStatus,
		ProceduresByType: proceduresByType,
		TotalDocuments:   totalDocuments,
	}
	for status, n := range patientsByStatus {
		sum.TotalPatients += n
		if status == "ativo" || status == "em_tratamento" {
			sum.ActivePatients += n
		}
	}
	for status, n := range appointmentsByStatus {
		sum.TotalAppointments += n
		switch status {
		case "concluida":
			sum.CompletedAppointments = n
		case "cancelada":
			sum.CanceledAppointments = n
		}
	}
	for _, n := range proceduresByType {
		sum.TotalProcedures += n
	}
	return sum, nil
}
