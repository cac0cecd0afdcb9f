package core

// import.go runs the CSV ingestion pipeline: load, map, persist.
//
// A run is all-or-nothing from the caller's point of view. Parse failures
// stop before any write, and the batch is handed to the store in a single
// call that either applies every row or none.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/employees/internal/logging"
	"github.com/JonMunkholm/employees/internal/resource"
)

// ErrNoBundledResource is returned by ImportBundled when the service was
// built without a bundled opener.
var ErrNoBundledResource = errors.New("no bundled resource configured")

// PersistBatch stores employees with one call to db. An empty batch makes no
// call. Failures are reported as a [StorageError].
func PersistBatch(ctx context.Context, db BatchInserter, employees []Employee) error {
	if len(employees) == 0 {
		return nil
	}
	return asStorageError("batch insert", db.BatchInsert(ctx, employees))
}

// Import loads the named resource through opener and stores every row.
// The reference instant for two-digit years is taken once per run.
func (s *Service) Import(ctx context.Context, opener TextOpener, name string) (ImportResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return ImportResult{}, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, ImportTimeout)
	defer cancel()

	ctx = logging.ContextWith(ctx, "resource", name)
	logger := logging.FromContext(ctx)
	start := time.Now()

	inputs, err := LoadEmployees(ctx, opener, name)
	if err != nil {
		logger.Error("import failed", "stage", "load", "error", err)
		return ImportResult{}, err
	}

	ref := s.now()
	employees := make([]Employee, 0, len(inputs))
	missing := 0
	for _, in := range inputs {
		e := ToEmployee(ctx, in, ref)
		if !e.BirthDay.Valid {
			missing++
		}
		employees = append(employees, e)
	}

	if err := PersistBatch(ctx, s.store, employees); err != nil {
		logger.Error("import failed", "stage", "persist", "rows", len(employees), "error", err)
		return ImportResult{}, err
	}

	result := ImportResult{
		Rows:              len(employees),
		MissingBirthDates: missing,
		Duration:          time.Since(start),
	}
	logger.Info("import completed",
		"rows", result.Rows,
		"missing_birth_dates", result.MissingBirthDates,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// ImportBundled imports the resource packaged with the application.
func (s *Service) ImportBundled(ctx context.Context) (ImportResult, error) {
	if s.bundled == nil {
		return ImportResult{}, ErrNoBundledResource
	}
	return s.Import(ctx, s.bundled, s.bundledName)
}

// ImportUpload spools r to a uniquely named file in the upload directory,
// imports it, and removes the file on every path.
func (s *Service) ImportUpload(ctx context.Context, fileName string, r io.Reader) (ImportResult, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return ImportResult{}, fmt.Errorf("create upload directory: %w", err)
	}

	name := uuid.NewString() + "-" + uploadBaseName(fileName)
	path := filepath.Join(s.uploadDir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return ImportResult{}, fmt.Errorf("create upload file: %w", err)
	}
	defer os.Remove(path)

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return ImportResult{}, fmt.Errorf("write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		return ImportResult{}, fmt.Errorf("close upload file: %w", err)
	}

	return s.Import(ctx, resource.NewDirOpener(s.uploadDir), name)
}

// uploadBaseName reduces a client-supplied file name to a safe final element.
func uploadBaseName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "upload.csv"
	}
	return name
}
