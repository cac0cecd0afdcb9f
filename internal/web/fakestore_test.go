package web

import (
	"context"
	"sort"
	"sync"

	"github.com/JonMunkholm/employees/internal/core"
)

// memStore is an in-memory core.Store for handler tests.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]core.Employee
	batches int
	failAll error
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, rows: map[int64]core.Employee{}}
}

func (m *memStore) BatchInsert(_ context.Context, employees []core.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return m.failAll
	}
	m.batches++
	for _, e := range employees {
		e.ID = m.nextID
		m.nextID++
		m.rows[e.ID] = e
	}
	return nil
}

func (m *memStore) FindByID(_ context.Context, id int64) (core.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[id]
	if !ok {
		return core.Employee{}, core.ErrNotFound
	}
	return e, nil
}

func (m *memStore) Save(_ context.Context, e core.Employee) (core.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == 0 {
		e.ID = m.nextID
		m.nextID++
	} else if _, ok := m.rows[e.ID]; !ok {
		return core.Employee{}, core.ErrNotFound
	}
	m.rows[e.ID] = e
	return e, nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memStore) FindAll(_ context.Context, req core.PageRequest) ([]core.Employee, int64, error) {
	return m.page(func(core.Employee) bool { return true }, req)
}

func (m *memStore) FindByBirthMonth(_ context.Context, month int, req core.PageRequest) ([]core.Employee, int64, error) {
	return m.page(func(e core.Employee) bool {
		return e.BirthDay.Valid && int(e.BirthDay.Time.Month()) == month
	}, req)
}

func (m *memStore) page(keep func(core.Employee) bool, req core.PageRequest) ([]core.Employee, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []core.Employee
	for _, e := range m.rows {
		if keep(e) {
			all = append(all, e)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	start := min(req.Offset(), len(all))
	end := min(start+req.Size, len(all))
	return all[start:end], int64(len(all)), nil
}

func (m *memStore) Ping(context.Context) error { return m.failAll }
