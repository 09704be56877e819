package reporting

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
)

// WriteCSV renders the summary in the layout the front desk expects: a
// title row, then labeled sections with Label,Value pairs.
func WriteCSV(w io.Writer, sum *Summary) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"Relatorio de Estatisticas - " + sum.GeneratedAt.Format("2006-01-02")},
		{},
		{"Resumo Geral"},
		{"Total de Pacientes", strconv.Itoa(sum.TotalPatients)},
		{"Pacientes Ativos", strconv.Itoa(sum.ActivePatients)},
		{"Total de Consultas", strconv.Itoa(sum.TotalAppointments)},
		{"Consultas Concluidas", strconv.Itoa(sum.CompletedAppointments)},
		{"Consultas Canceladas", strconv.Itoa(sum.CanceledAppointments)},
		{"Total de Procedimentos", strconv.Itoa(sum.TotalProcedures)},
		{"Total de Documentos", strconv.Itoa(sum.TotalDocuments)},
		{},
		{"Pacientes por Status"},
	}
	rows = append(rows, sortedRows(sum.PatientsByStatus)...)
	rows = append(rows, []string{}, []string{"Procedimentos por Tipo"})
	rows = append(rows, sortedRows(sum.ProceduresByType)...)

	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func sortedRows(counts map[string]int) [][]string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, strconv.Itoa(counts[k])})
	}
	return rows
}
