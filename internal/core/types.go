package core

import (
	"context"
	"io"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Employee is a persisted employee record.
//
// BirthDay is invalid when the source carried no birth date or one that no
// date rule accepted. It serializes as "YYYY-MM-DD" or null.
type Employee struct {
	ID        int64       `json:"id"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	City      string      `json:"city"`
	State     string      `json:"state"`
	Location  string      `json:"location"`
	BirthDay  pgtype.Date `json:"birthDate"`
}

// EmployeeInput is an unvalidated employee record, as parsed from a CSV row
// or decoded from a request body. BirthDate is raw text.
type EmployeeInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	City      string `json:"city"`
	State     string `json:"state"`
	Location  string `json:"location"`
	BirthDate string `json:"birthDate"`
}

// HeaderIndex maps column names (lowercase) to their position in the CSV row.
type HeaderIndex map[string]int

// TextOpener resolves a resource name to a readable text stream.
// Implementations report unknown or invalid names with an error that
// wraps a not-found sentinel.
type TextOpener interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// BatchInserter writes a batch of new employees in one call.
type BatchInserter interface {
	BatchInsert(ctx context.Context, employees []Employee) error
}

// Store is the persistence contract the service depends on.
//
// FindByID and Save (for an existing ID) return an error wrapping
// [ErrNotFound] when no row matches.
type Store interface {
	BatchInserter
	FindByID(ctx context.Context, id int64) (Employee, error)
	Save(ctx context.Context, e Employee) (Employee, error)
	Delete(ctx context.Context, id int64) error
	FindAll(ctx context.Context, req PageRequest) ([]Employee, int64, error)
	FindByBirthMonth(ctx context.Context, month int, req PageRequest) ([]Employee, int64, error)
	Ping(ctx context.Context) error
}

// PageRequest selects one page of a sorted listing.
// SortBy is a key of [SortColumns]; stores translate it to a column.
type PageRequest struct {
	Page   int
	Size   int
	SortBy string
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page is one page of a listing plus totals across all pages.
type Page struct {
	Content       []Employee `json:"content"`
	Page          int        `json:"page"`
	Size          int        `json:"size"`
	TotalElements int64      `json:"totalElements"`
	TotalPages    int        `json:"totalPages"`
}

// NewPage builds a page from a slice of rows and the total row count.
func NewPage(content []Employee, req PageRequest, total int64) Page {
	if content == nil {
		content = []Employee{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}

// ImportResult summarizes a completed import.
type ImportResult struct {
	Rows              int           `json:"rows"`
	MissingBirthDates int           `json:"missingBirthDates"`
	Duration          time.Duration `json:"-"`
}

// SortColumns maps accepted sort keys to storage column names.
var SortColumns = map[string]string{
	"id":        "id",
	"firstName": "first_name",
	"lastName":  "last_name",
	"city":      "city",
	"state":     "state",
	"location":  "location",
	"birthDay":  "birth_day",
}

// SortColumn returns the column for a sort key, falling back to id.
func SortColumn(key string) string {
	if col, ok := SortColumns[key]; ok {
		return col
	}
	return "id"
}
