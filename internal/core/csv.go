package core

// csv.go reads employee records from comma-separated text.
//
// The header row names the columns; matching is case-insensitive and column
// order is free. Input is decoded as UTF-8 with an optional byte order mark
// (a UTF-16 BOM switches decoding accordingly). Invalid byte sequences are
// replaced rather than rejected.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Column headers of the employee CSV format.
const (
	ColumnFirstName = "First name"
	ColumnLastName  = "Last name"
	ColumnLocation  = "Location"
	ColumnBirthday  = "Birthday"
)

var requiredColumns = []string{ColumnFirstName, ColumnLastName, ColumnLocation, ColumnBirthday}

var (
	errEmptyFile     = errors.New("file is empty")
	errMissingColumn = errors.New("missing required column")
	errMissingValue  = errors.New("required field is empty")
	errShortRow      = errors.New("row has too few fields")
)

// columnIndex holds resolved positions of the required columns.
type columnIndex struct {
	firstName, lastName, location, birthday int
}

func (c columnIndex) last() int {
	return max(c.firstName, c.lastName, c.location, c.birthday)
}

// decodeText wraps r so that it yields valid UTF-8 with any BOM removed.
func decodeText(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// ParseEmployees reads every data row of a CSV stream, in file order.
//
// Location is split at its first comma into city and state. Birthday is kept
// as raw text. Rows whose cells are all blank are skipped. A missing required
// column, a row too short to reach one, or an empty name fails the whole
// parse with a [ParseError].
func ParseEmployees(r io.Reader) ([]EmployeeInput, error) {
	reader := csv.NewReader(decodeText(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &ParseError{Line: 1, Err: errEmptyFile}
	}
	if err != nil {
		return nil, wrapCSVError(err)
	}

	cols, err := resolveColumns(MakeHeaderIndex(header))
	if err != nil {
		return nil, err
	}

	var out []EmployeeInput
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrapCSVError(err)
		}
		if isEmptyRow(row) {
			continue
		}
		line, _ := reader.FieldPos(0)

		in, err := buildInput(row, cols, line)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

func resolveColumns(idx HeaderIndex) (columnIndex, error) {
	var missing []string
	pos := func(name string) int {
		p, ok := idx[strings.ToLower(name)]
		if !ok {
			missing = append(missing, name)
		}
		return p
	}
	cols := columnIndex{
		firstName: pos(ColumnFirstName),
		lastName:  pos(ColumnLastName),
		location:  pos(ColumnLocation),
		birthday:  pos(ColumnBirthday),
	}
	if len(missing) > 0 {
		return columnIndex{}, &ParseError{
			Line:   1,
			Column: strings.Join(missing, ", "),
			Err:    errMissingColumn,
		}
	}
	return cols, nil
}

func buildInput(row []string, cols columnIndex, line int) (EmployeeInput, error) {
	if len(row) <= cols.last() {
		return EmployeeInput{}, &ParseError{
			Line: line,
			Err:  fmt.Errorf("%w: got %d, want at least %d", errShortRow, len(row), cols.last()+1),
		}
	}

	in := EmployeeInput{
		FirstName: CleanCell(row[cols.firstName]),
		LastName:  CleanCell(row[cols.lastName]),
		Location:  CleanCell(row[cols.location]),
		BirthDate: CleanCell(row[cols.birthday]),
	}
	in.City, in.State = SplitLocation(in.Location)

	switch {
	case in.FirstName == "":
		return EmployeeInput{}, &ParseError{Line: line, Column: ColumnFirstName, Err: errMissingValue}
	case in.LastName == "":
		return EmployeeInput{}, &ParseError{Line: line, Column: ColumnLastName, Err: errMissingValue}
	}
	return in, nil
}

func wrapCSVError(err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &ParseError{Line: csvErr.Line, Err: csvErr.Err}
	}
	return &ParseError{Err: err}
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// LoadEmployees opens the named resource and parses it. The stream is closed
// on every path.
func LoadEmployees(ctx context.Context, opener TextOpener, name string) ([]EmployeeInput, error) {
	rc, err := opener.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	return ParseEmployees(rc)
}
