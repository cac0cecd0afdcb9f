package core

import (
	"context"
	"sort"
)

// fakeStore is an in-memory Store that counts writes.
type fakeStore struct {
	nextID   int64
	rows     map[int64]Employee
	batches  [][]Employee
	writes   int
	batchErr error
	listErr  error

	lastMonth int
	lastReq   PageRequest
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, rows: map[int64]Employee{}}
}

func (f *fakeStore) BatchInsert(_ context.Context, employees []Employee) error {
	f.writes++
	if f.batchErr != nil {
		return f.batchErr
	}
	f.batches = append(f.batches, employees)
	for _, e := range employees {
		e.ID = f.nextID
		f.nextID++
		f.rows[e.ID] = e
	}
	return nil
}

func (f *fakeStore) FindByID(_ context.Context, id int64) (Employee, error) {
	e, ok := f.rows[id]
	if !ok {
		return Employee{}, ErrNotFound
	}
	return e, nil
}

func (f *fakeStore) Save(_ context.Context, e Employee) (Employee, error) {
	f.writes++
	if e.ID == 0 {
		e.ID = f.nextID
		f.nextID++
	} else if _, ok := f.rows[e.ID]; !ok {
		return Employee{}, ErrNotFound
	}
	f.rows[e.ID] = e
	return e, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	f.writes++
	if _, ok := f.rows[id]; !ok {
		return ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeStore) FindAll(_ context.Context, req PageRequest) ([]Employee, int64, error) {
	f.lastReq = req
	return f.page(func(Employee) bool { return true }, req)
}

func (f *fakeStore) FindByBirthMonth(_ context.Context, month int, req PageRequest) ([]Employee, int64, error) {
	f.lastMonth, f.lastReq = month, req
	return f.page(func(e Employee) bool {
		return e.BirthDay.Valid && int(e.BirthDay.Time.Month()) == month
	}, req)
}

func (f *fakeStore) page(keep func(Employee) bool, req PageRequest) ([]Employee, int64, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	var all []Employee
	for _, e := range f.rows {
		if keep(e) {
			all = append(all, e)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	start := min(req.Offset(), len(all))
	end := min(start+req.Size, len(all))
	return all[start:end], int64(len(all)), nil
}

func (f *fakeStore) Ping(context.Context) error { return nil }
