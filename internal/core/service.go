package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ImportTimeout is the maximum duration for one import run.
var ImportTimeout = 10 * time.Minute

// Options configures a Service. Zero values select defaults.
type Options struct {
	// Bundled resolves the resource imported by [Service.ImportBundled].
	Bundled TextOpener
	// BundledName is the resource name passed to Bundled.
	BundledName string
	// UploadDir receives spooled uploads. Defaults to a directory under
	// os.TempDir.
	UploadDir string
	// Now supplies the reference instant for two-digit years.
	Now func() time.Time
	// Limiter bounds concurrent imports. Defaults to NewImportLimiter(0, 0).
	Limiter *ImportLimiter
}

// Service provides the business logic for employee records.
type Service struct {
	store       Store
	bundled     TextOpener
	bundledName string
	uploadDir   string
	now         func() time.Time
	limiter     *ImportLimiter
}

// NewService creates a new Service instance.
func NewService(store Store, opts Options) *Service {
	if opts.UploadDir == "" {
		opts.UploadDir = filepath.Join(os.TempDir(), "uploadedFiles")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Limiter == nil {
		opts.Limiter = NewImportLimiter(0, 0)
	}
	return &Service{
		store:       store,
		bundled:     opts.Bundled,
		bundledName: opts.BundledName,
		uploadDir:   opts.UploadDir,
		now:         opts.Now,
		limiter:     opts.Limiter,
	}
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return asStorageError("ping", s.store.Ping(ctx))
}

// ActiveImports returns the number of imports in progress.
func (s *Service) ActiveImports() int {
	return s.limiter.Active()
}

// WaitForImports blocks until in-flight imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.Drain(ctx)
}

// List returns one page of employees. When q.ByMonth is set only employees
// born in q.Month are counted and returned.
func (s *Service) List(ctx context.Context, q ListQuery) (Page, error) {
	if err := q.Validate(); err != nil {
		return Page{}, err
	}
	req := q.PageRequest()

	var (
		rows  []Employee
		total int64
		err   error
	)
	if q.ByMonth {
		rows, total, err = s.store.FindByBirthMonth(ctx, q.Month, req)
	} else {
		rows, total, err = s.store.FindAll(ctx, req)
	}
	if err != nil {
		return Page{}, asStorageError("list employees", err)
	}
	return NewPage(rows, req, total), nil
}

// Get returns the employee with the given id.
func (s *Service) Get(ctx context.Context, id int64) (Employee, error) {
	if err := ValidateID(id); err != nil {
		return Employee{}, err
	}
	e, err := s.store.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Employee{}, &NotFoundError{ID: id}
	}
	if err != nil {
		return Employee{}, asStorageError("find employee", err)
	}
	return e, nil
}

// Create validates in and stores it as a new employee.
func (s *Service) Create(ctx context.Context, in EmployeeInput) (Employee, error) {
	in = in.Trimmed()
	if err := in.Validate(); err != nil {
		return Employee{}, err
	}

	saved, err := s.store.Save(ctx, ToEmployee(ctx, in, s.now()))
	if err != nil {
		return Employee{}, asStorageError("create employee", err)
	}
	return saved, nil
}

// Update replaces every mutable field of an existing employee. Nothing is
// written when the id does not exist.
func (s *Service) Update(ctx context.Context, id int64, in EmployeeInput) (Employee, error) {
	in = in.Trimmed()
	if err := in.Validate(); err != nil {
		return Employee{}, err
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return Employee{}, err
	}

	updated := ToEmployee(ctx, in, s.now())
	updated.ID = existing.ID

	saved, err := s.store.Save(ctx, updated)
	if errors.Is(err, ErrNotFound) {
		return Employee{}, &NotFoundError{ID: id}
	}
	if err != nil {
		return Employee{}, asStorageError("update employee", err)
	}
	return saved, nil
}

// Delete removes an existing employee. Nothing is written when the id does
// not exist.
func (s *Service) Delete(ctx context.Context, id int64) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	err = s.store.Delete(ctx, existing.ID)
	if errors.Is(err, ErrNotFound) {
		return &NotFoundError{ID: id}
	}
	return asStorageError("delete employee", err)
}
