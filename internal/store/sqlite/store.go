// Package sqlite implements the employee store on SQLite through
// database/sql and mattn/go-sqlite3. It suits local development and tests.
//
// Birth dates are stored as ISO-8601 text (YYYY-MM-DD) or NULL.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mattn/go-sqlite3"

	"github.com/JonMunkholm/employees/internal/core"
	"github.com/JonMunkholm/employees/internal/store/migrations"
)

const selectColumns = `id, first_name, last_name, city, state, location, birth_day`

const insertEmployee = `
INSERT INTO employee (first_name, last_name, city, state, location, birth_day)
VALUES (?, ?, ?, ?, ?, ?)`

// Store is a core.Store backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens the SQLite database at dsn. SQLite allows one writer, so the
// pool is limited to a single connection; this also keeps ":memory:"
// databases shared across calls.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &Store{db: db}, nil
}

// New wraps an existing handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate applies the embedded schema.
func (s *Store) Migrate() error {
	// The migrator is not closed: closing it would close s.db.
	m, err := migrations.SQLite(s.db)
	if err != nil {
		return err
	}
	return migrations.Up(m)
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return mapError("ping", s.db.PingContext(ctx))
}

// BatchInsert writes employees with one prepared statement inside a single
// transaction. Any failure rolls back the whole batch.
func (s *Store) BatchInsert(ctx context.Context, employees []core.Employee) (err error) {
	if len(employees) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError("begin batch", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertEmployee)
	if err != nil {
		return mapError("prepare batch", err)
	}
	defer stmt.Close()

	for i, e := range employees {
		if _, err = stmt.ExecContext(ctx, e.FirstName, e.LastName, e.City, e.State, e.Location, dateValue(e.BirthDay)); err != nil {
			return mapError(fmt.Sprintf("batch insert row %d", i+1), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return mapError("commit batch", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id int64) (core.Employee, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM employee WHERE id = ?`, id)
	e, err := scanEmployee(row)
	if err != nil {
		return core.Employee{}, mapError("find employee", err)
	}
	return e, nil
}

// Save inserts e when e.ID is zero and replaces the stored row otherwise.
func (s *Store) Save(ctx context.Context, e core.Employee) (core.Employee, error) {
	if e.ID == 0 {
		res, err := s.db.ExecContext(ctx, insertEmployee,
			e.FirstName, e.LastName, e.City, e.State, e.Location, dateValue(e.BirthDay))
		if err != nil {
			return core.Employee{}, mapError("insert employee", err)
		}
		if e.ID, err = res.LastInsertId(); err != nil {
			return core.Employee{}, mapError("insert employee", err)
		}
		return e, nil
	}

	res, err := s.db.ExecContext(ctx, `
UPDATE employee
SET first_name = ?, last_name = ?, city = ?, state = ?, location = ?, birth_day = ?
WHERE id = ?`,
		e.FirstName, e.LastName, e.City, e.State, e.Location, dateValue(e.BirthDay), e.ID)
	if err != nil {
		return core.Employee{}, mapError("update employee", err)
	}
	if err := requireAffected(res); err != nil {
		return core.Employee{}, err
	}
	return e, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM employee WHERE id = ?`, id)
	if err != nil {
		return mapError("delete employee", err)
	}
	return requireAffected(res)
}

func (s *Store) FindAll(ctx context.Context, req core.PageRequest) ([]core.Employee, int64, error) {
	return s.page(ctx, "", nil, req)
}

// FindByBirthMonth matches on the month of the stored date. NULL birth
// dates never match.
func (s *Store) FindByBirthMonth(ctx context.Context, month int, req core.PageRequest) ([]core.Employee, int64, error) {
	return s.page(ctx, ` WHERE CAST(strftime('%m', birth_day) AS INTEGER) = ?`, []any{month}, req)
}

func (s *Store) page(ctx context.Context, where string, args []any, req core.PageRequest) ([]core.Employee, int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM employee`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapError("count employees", err)
	}

	col := core.SortColumn(req.SortBy)
	order := col
	if col != "id" {
		order += ", id"
	}
	query := `SELECT ` + selectColumns + ` FROM employee` + where + ` ORDER BY ` + order + ` LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, append(args, req.Size, req.Offset())...)
	if err != nil {
		return nil, 0, mapError("list employees", err)
	}
	defer rows.Close()

	out := []core.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, mapError("list employees", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError("list employees", err)
	}
	return out, total, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (core.Employee, error) {
	var (
		e     core.Employee
		birth sql.NullString
	)
	if err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.City, &e.State, &e.Location, &birth); err != nil {
		return core.Employee{}, err
	}
	if birth.Valid && birth.String != "" {
		t, err := time.Parse(time.DateOnly, birth.String)
		if err != nil {
			return core.Employee{}, fmt.Errorf("employee %d: stored birth_day %q: %w", e.ID, birth.String, err)
		}
		e.BirthDay = pgtype.Date{Time: t, Valid: true}
	}
	return e, nil
}

func dateValue(d pgtype.Date) any {
	if !d.Valid {
		return nil
	}
	return d.Time.Format(time.DateOnly)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return mapError("rows affected", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// mapError converts database/sql and sqlite3 errors to core error kinds.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return &core.StorageError{Op: op, Code: strconv.Itoa(int(sqliteErr.ExtendedCode)), Err: err}
	}
	return &core.StorageError{Op: op, Err: err}
}
