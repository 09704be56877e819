package procedures

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odontosys/odontosys/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const procedureCols = `id, patient_id, tooth_number, name, description, notes, cost,
	procedure_date, created_at`

func (r *repoPG) scanProcedure(row pgx.Row) (*Procedure, error) {
	var p Procedure
	err := row.Scan(&p.ID, &p.PatientID, &p.ToothNumber, &p.Name, &p.Description,
		&p.Notes, &p.Cost, &p.ProcedureDate, &p.CreatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Procedure) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO procedures (id, patient_id, tooth_number, name, description, notes, cost, procedure_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.PatientID, p.ToothNumber, p.Name, p.Description, p.Notes, p.Cost, p.ProcedureDate)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Procedure, error) {
	return r.scanProcedure(r.conn(ctx).QueryRow(ctx, `SELECT `+procedureCols+` FROM procedures WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Procedure) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE procedures SET tooth_number=$2, name=$3, description=$4, notes=$5,
			cost=$6, procedure_date=$7
		WHERE id = $1`,
		p.ID, p.ToothNumber, p.Name, p.Description, p.Notes, p.Cost, p.ProcedureDate)
	return err
}

func (r *repoPG) Upsert(ctx context.Context, p *Procedure) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO procedures (id, patient_id, tooth_number, name, description, notes, cost, procedure_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET
			patient_id=EXCLUDED.patient_id, tooth_number=EXCLUDED.tooth_number,
			name=EXCLUDED.name, description=EXCLUDED.description, notes=EXCLUDED.notes,
			cost=EXCLUDED.cost, procedure_date=EXCLUDED.procedure_date`,
		p.ID, p.PatientID, p.ToothNumber, p.Name, p.Description, p.Notes, p.Cost, p.ProcedureDate)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM procedures WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Procedure, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM procedures WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+procedureCols+` FROM procedures WHERE patient_id = $1 ORDER BY procedure_date DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Procedure
	for rows.Next() {
		p, err := r.scanProcedure(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

func (r *repoPG) All(ctx context.Context) ([]*Procedure, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+procedureCols+` FROM procedures ORDER BY procedure_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Procedure
	for rows.Next() {
		p, err := r.scanProcedure(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, nil
}

func (r *repoPG) CountByName(ctx context.Context) (map[string]int, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT name, COUNT(*) FROM procedures GROUP BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		counts[name] = n
	}
	return counts, rows.Err()
}
