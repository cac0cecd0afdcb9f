// Package postgres implements the employee store on PostgreSQL using pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/employees/internal/core"
	"github.com/JonMunkholm/employees/internal/store/migrations"
)

const table = "employee"

// copyColumns lists the columns written by BatchInsert, in value order.
var copyColumns = []string{"first_name", "last_name", "city", "state", "location", "birth_day"}

const selectColumns = `id, first_name, last_name, city, state, location, birth_day`

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Store is a core.Store backed by PostgreSQL.
type Store struct {
	db DBTX
}

// New returns a store using pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{db: pool}
}

// NewWithDB returns a store over any DBTX, such as a transaction.
func NewWithDB(db DBTX) *Store {
	return &Store{db: db}
}

// Migrate applies the embedded schema to the database at databaseURL.
func Migrate(databaseURL string) error {
	m, err := migrations.Postgres(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()
	return migrations.Up(m)
}

// Ping checks connectivity when the underlying handle supports it.
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.db.(pinger); ok {
		return mapError("ping", p.Ping(ctx))
	}
	return nil
}

// BatchInsert writes employees with a single COPY. COPY is atomic, so a
// failure leaves no rows behind.
func (s *Store) BatchInsert(ctx context.Context, employees []core.Employee) error {
	if len(employees) == 0 {
		return nil
	}

	n, err := s.db.CopyFrom(ctx, pgx.Identifier{table}, copyColumns,
		pgx.CopyFromSlice(len(employees), func(i int) ([]any, error) {
			e := employees[i]
			return []any{e.FirstName, e.LastName, e.City, e.State, e.Location, e.BirthDay}, nil
		}),
	)
	if err != nil {
		return mapError("batch insert", err)
	}
	if n != int64(len(employees)) {
		return &core.StorageError{
			Op:  "batch insert",
			Err: fmt.Errorf("copied %d of %d rows", n, len(employees)),
		}
	}
	return nil
}

// FindByID returns core.ErrNotFound when no row has id.
func (s *Store) FindByID(ctx context.Context, id int64) (core.Employee, error) {
	rows, err := s.db.Query(ctx, `SELECT `+selectColumns+` FROM employee WHERE id = $1`, id)
	if err != nil {
		return core.Employee{}, mapError("find employee", err)
	}
	e, err := pgx.CollectExactlyOneRow(rows, scanEmployee)
	if err != nil {
		return core.Employee{}, mapError("find employee", err)
	}
	return e, nil
}

// Save inserts e when e.ID is zero and replaces the stored row otherwise.
func (s *Store) Save(ctx context.Context, e core.Employee) (core.Employee, error) {
	if e.ID == 0 {
		err := s.db.QueryRow(ctx, `
INSERT INTO employee (first_name, last_name, city, state, location, birth_day)
VALUES (@first_name, @last_name, @city, @state, @location, @birth_day)
RETURNING id`, employeeArgs(e)).Scan(&e.ID)
		if err != nil {
			return core.Employee{}, mapError("insert employee", err)
		}
		return e, nil
	}

	tag, err := s.db.Exec(ctx, `
UPDATE employee SET
  first_name = @first_name,
  last_name  = @last_name,
  city       = @city,
  state      = @state,
  location   = @location,
  birth_day  = @birth_day
WHERE id = @id`, employeeArgs(e))
	if err != nil {
		return core.Employee{}, mapError("update employee", err)
	}
	if tag.RowsAffected() == 0 {
		return core.Employee{}, core.ErrNotFound
	}
	return e, nil
}

// Delete returns core.ErrNotFound when no row has id.
func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM employee WHERE id = $1`, id)
	if err != nil {
		return mapError("delete employee", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

// FindAll returns one sorted page of all employees and the total count.
func (s *Store) FindAll(ctx context.Context, req core.PageRequest) ([]core.Employee, int64, error) {
	var total int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM employee`).Scan(&total); err != nil {
		return nil, 0, mapError("count employees", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+selectColumns+` FROM employee ORDER BY `+orderBy(req)+` LIMIT $1 OFFSET $2`,
		req.Size, req.Offset(),
	)
	if err != nil {
		return nil, 0, mapError("list employees", err)
	}
	out, err := pgx.CollectRows(rows, scanEmployee)
	if err != nil {
		return nil, 0, mapError("list employees", err)
	}
	return out, total, nil
}

// FindByBirthMonth returns one sorted page of employees born in month and
// the count of all such employees. Rows without a birth date never match.
func (s *Store) FindByBirthMonth(ctx context.Context, month int, req core.PageRequest) ([]core.Employee, int64, error) {
	const where = ` WHERE EXTRACT(MONTH FROM birth_day) = $1`

	var total int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM employee`+where, month).Scan(&total); err != nil {
		return nil, 0, mapError("count employees by month", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+selectColumns+` FROM employee`+where+` ORDER BY `+orderBy(req)+` LIMIT $2 OFFSET $3`,
		month, req.Size, req.Offset(),
	)
	if err != nil {
		return nil, 0, mapError("list employees by month", err)
	}
	out, err := pgx.CollectRows(rows, scanEmployee)
	if err != nil {
		return nil, 0, mapError("list employees by month", err)
	}
	return out, total, nil
}

// orderBy builds an ORDER BY clause from whitelisted column names only.
func orderBy(req core.PageRequest) string {
	col := core.SortColumn(req.SortBy)
	if col == "id" {
		return "id"
	}
	return col + ", id"
}

func employeeArgs(e core.Employee) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":         e.ID,
		"first_name": e.FirstName,
		"last_name":  e.LastName,
		"city":       e.City,
		"state":      e.State,
		"location":   e.Location,
		"birth_day":  e.BirthDay,
	}
}

func scanEmployee(row pgx.CollectableRow) (core.Employee, error) {
	var e core.Employee
	err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.City, &e.State, &e.Location, &e.BirthDay)
	return e, err
}

// mapError converts pgx errors to core error kinds.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &core.StorageError{Op: op, Code: pgErr.Code, Err: err}
	}
	return &core.StorageError{Op: op, Err: err}
}
