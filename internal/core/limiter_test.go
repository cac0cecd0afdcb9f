package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportLimiter_RejectsWhenFull(t *testing.T) {
	l := NewImportLimiter(1, 20*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))
	assert.Equal(t, 1, l.Active())

	assert.ErrorIs(t, l.Acquire(ctx), ErrTooManyImports)

	l.Release()
	assert.Zero(t, l.Active())
	require.NoError(t, l.Acquire(ctx))
	l.Release()
}

func TestImportLimiter_CallerCancel(t *testing.T) {
	l := NewImportLimiter(1, time.Minute)
	require.NoError(t, l.Acquire(context.Background()))
	defer l.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Acquire(ctx), context.Canceled)
}

func TestImportLimiter_Drain(t *testing.T) {
	l := NewImportLimiter(2, time.Second)
	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Drain(ctx), context.DeadlineExceeded)

	done := make(chan error, 1)
	go func() { done <- l.Drain(context.Background()) }()

	l.Release()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("drain did not return after release")
	}
}

func TestImportLimiter_Defaults(t *testing.T) {
	l := NewImportLimiter(0, 0)
	assert.EqualValues(t, DefaultMaxConcurrentImports, l.size)
	assert.Equal(t, DefaultImportWait, l.maxWait)
}
