package patients

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/odontosys/odontosys/internal/platform/db"
)

// brokenRows yields no rows and reports err after iteration, simulating a
// connection dropped mid-result.
type brokenRows struct{ err error }

func (r *brokenRows) Next() bool                                   { return false }
func (r *brokenRows) Scan(...interface{}) error                    { return nil }
func (r *brokenRows) Err() error                                   { return r.err }
func (r *brokenRows) Close()                                       {}
func (r *brokenRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *brokenRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *brokenRows) Values() ([]interface{}, error)               { return nil, nil }
func (r *brokenRows) RawValues() [][]byte                          { return nil }
func (r *brokenRows) Conn() *pgx.Conn                              { return nil }

type countRow struct{}

func (countRow) Scan(dest ...interface{}) error {
	if n, ok := dest[0].(*int); ok {
		*n = 1
	}
	return nil
}

type brokenConn struct{ rows pgx.Rows }

func (c *brokenConn) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return c.rows, nil
}
func (c *brokenConn) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	return countRow{}
}
func (c *brokenConn) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func TestRepoPG_List_ReportsIterationError(t *testing.T) {
	wantErr := errors.New("connection reset")
	ctx := db.WithConn(context.Background(), &brokenConn{rows: &brokenRows{err: wantErr}})
	repo := NewRepoPG(nil)

	if _, _, err := repo.List(ctx, 10, 0); !errors.Is(err, wantErr) {
		t.Errorf("List: expected iteration error, got %v", err)
	}
	if _, err := repo.All(ctx); !errors.Is(err, wantErr) {
		t.Errorf("All: expected iteration error, got %v", err)
	}
}
