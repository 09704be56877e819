package patients

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

const patientCols = `id, full_name, cpf, email, phone, address, birth_date, status,
	medical_history, allergies, medications, emergency_contact, emergency_phone,
	created_at, updated_at`

func (r *repoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FullName, &p.CPF, &p.Email, &p.Phone, &p.Address,
		&p.BirthDate, &p.Status, &p.MedicalHistory, &p.Allergies, &p.Medications,
		&p.EmergencyContact, &p.EmergencyPhone, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (id, full_name, cpf, email, phone, address, birth_date, status,
			medical_history, allergies, medications, emergency_contact, emergency_phone)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		p.ID, p.FullName, p.CPF, p.Email, p.Phone, p.Address, p.BirthDate, p.Status,
		p.MedicalHistory, p.Allergies, p.Medications, p.EmergencyContact, p.EmergencyPhone)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET full_name=$2, cpf=$3, email=$4, phone=$5, address=$6,
			birth_date=$7, status=$8, medical_history=$9, allergies=$10, medications=$11,
			emergency_contact=$12, emergency_phone=$13, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FullName, p.CPF, p.Email, p.Phone, p.Address, p.BirthDate, p.Status,
		p.MedicalHistory, p.Allergies, p.Medications, p.EmergencyContact, p.EmergencyPhone)
	return err
}

func (r *repoPG) Upsert(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (id, full_name, cpf, email, phone, address, birth_date, status,
			medical_history, allergies, medications, emergency_contact, emergency_phone)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO UPDATE SET
			full_name=EXCLUDED.full_name, cpf=EXCLUDED.cpf, email=EXCLUDED.email,
			phone=EXCLUDED.phone, address=EXCLUDED.address, birth_date=EXCLUDED.birth_date,
			status=EXCLUDED.status, medical_history=EXCLUDED.medical_history,
			allergies=EXCLUDED.allergies, medications=EXCLUDED.medications,
			emergency_contact=EXCLUDED.emergency_contact, emergency_phone=EXCLUDED.emergency_phone,
			updated_at=NOW()`,
		p.ID, p.FullName, p.CPF, p.Email, p.Phone, p.Address, p.BirthDate, p.Status,
		p.MedicalHistory, p.Allergies, p.Medications, p.EmergencyContact, p.EmergencyPhone)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *repoPG) All(ctx context.Context) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items, _, err := r.collect(rows, 0)
	return items, err
}

func (r *repoPG) collect(rows pgx.Rows, total int) ([]*Patient, int, error) {
	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *repoPG) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT status, COUNT(*) FROM patients GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
