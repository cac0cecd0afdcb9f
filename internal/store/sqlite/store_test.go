package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/employees/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate())
	return s
}

func date(y int, m time.Month, d int) pgtype.Date {
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

func seed() []core.Employee {
	return []core.Employee{
		{FirstName: "Ann", LastName: "Lee", City: "Austin", State: "TX", Location: "Austin, TX", BirthDay: date(1990, 5, 1)},
		{FirstName: "Bo", LastName: "Kim", City: "Remote", Location: "Remote", BirthDay: date(1985, 3, 3)},
		{FirstName: "Cy", LastName: "Ng", City: "Reno", State: "NV", Location: "Reno, NV", BirthDay: date(2001, 5, 20)},
		{FirstName: "Di", LastName: "Ox"},
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Migrate())
}

func TestBatchInsert_AndFindAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.BatchInsert(ctx, seed()))

	got, total, err := s.FindAll(ctx, core.PageRequest{Page: 0, Size: 10, SortBy: "id"})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, got, 4)

	assert.Equal(t, "Ann", got[0].FirstName)
	assert.Equal(t, "Austin", got[0].City)
	assert.Equal(t, "TX", got[0].State)
	assert.Equal(t, date(1990, 5, 1), got[0].BirthDay)
	assert.False(t, got[3].BirthDay.Valid)
}

func TestBatchInsert_EmptyIsNoop(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.BatchInsert(context.Background(), nil))

	_, total, err := s.FindAll(context.Background(), core.PageRequest{Size: 10, SortBy: "id"})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestBatchInsert_RollsBackOnFailure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, `CREATE TRIGGER reject_x BEFORE INSERT ON employee
WHEN NEW.first_name = 'X' BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
	require.NoError(t, err)

	batch := seed()
	batch[2].FirstName = "X"
	err = s.BatchInsert(ctx, batch)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrStorage)

	_, total, err := s.FindAll(ctx, core.PageRequest{Size: 10, SortBy: "id"})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestFindAll_PagingAndSort(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.BatchInsert(ctx, seed()))

	tests := []struct {
		name string
		req  core.PageRequest
		want []string
	}{
		{"first page by id", core.PageRequest{Page: 0, Size: 2, SortBy: "id"}, []string{"Lee", "Kim"}},
		{"second page by id", core.PageRequest{Page: 1, Size: 2, SortBy: "id"}, []string{"Ng", "Ox"}},
		{"by last name", core.PageRequest{Page: 0, Size: 4, SortBy: "lastName"}, []string{"Kim", "Lee", "Ng", "Ox"}},
		{"past the end", core.PageRequest{Page: 5, Size: 2, SortBy: "id"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := s.FindAll(ctx, tt.req)
			require.NoError(t, err)
			assert.EqualValues(t, 4, total)

			names := []string{}
			for _, e := range got {
				names = append(names, e.LastName)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestFindByBirthMonth(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.BatchInsert(ctx, seed()))

	got, total, err := s.FindByBirthMonth(ctx, 5, core.PageRequest{Page: 0, Size: 1, SortBy: "id"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total, "count covers every May birthday, not just the page")
	require.Len(t, got, 1)
	assert.Equal(t, "Ann", got[0].FirstName)

	got, total, err = s.FindByBirthMonth(ctx, 12, core.PageRequest{Page: 0, Size: 10, SortBy: "id"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, got)
}

func TestSave_InsertUpdateDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Save(ctx, core.Employee{FirstName: "Ann", LastName: "Lee", BirthDay: date(1990, 5, 1)})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	created.FirstName = "Anne"
	created.BirthDay = pgtype.Date{}
	_, err = s.Save(ctx, created)
	require.NoError(t, err)

	got, err := s.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anne", got.FirstName)
	assert.False(t, got.BirthDay.Valid)

	require.NoError(t, s.Delete(ctx, created.ID))
	_, err = s.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMissingRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.FindByID(ctx, 99)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = s.Save(ctx, core.Employee{ID: 99, FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, 99), core.ErrNotFound)
}

func TestPing(t *testing.T) {
	assert.NoError(t, newTestStore(t).Ping(context.Background()))
}
