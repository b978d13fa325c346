package scheduler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aguacoop/aguacoop/internal/scheduler"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_Trigger(t *testing.T) {
	s := scheduler.New(discard())

	var calls atomic.Int32

	require.NoError(t, s.Add("mora", "*/5 * * * *", func(context.Context) error {
		calls.Add(1)
		return nil
	}))

	require.NoError(t, s.Trigger(context.Background(), "mora"))
	require.NoError(t, s.Trigger(context.Background(), "mora"))
	assert.Equal(t, int32(2), calls.Load())
}

func TestScheduler_TriggerReturnsJobError(t *testing.T) {
	s := scheduler.New(discard())

	boom := errors.New("boom")
	require.NoError(t, s.Add("mora", "@hourly", func(context.Context) error { return boom }))

	assert.ErrorIs(t, s.Trigger(context.Background(), "mora"), boom)
}

func TestScheduler_TriggerUnknown(t *testing.T) {
	s := scheduler.New(discard())

	assert.Error(t, s.Trigger(context.Background(), "missing"))
}

func TestScheduler_AddInvalid(t *testing.T) {
	s := scheduler.New(discard())

	assert.Error(t, s.Add("bad", "every now and then", func(context.Context) error { return nil }))

	require.NoError(t, s.Add("ok", "@daily", func(context.Context) error { return nil }))
	assert.Error(t, s.Add("ok", "@daily", func(context.Context) error { return nil }), "duplicate name")
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	s := scheduler.New(discard(), scheduler.WithTimeout(time.Second))

	var calls atomic.Int32

	require.NoError(t, s.Add("tick", "@every 1s", func(context.Context) error {
		calls.Add(1)
		return nil
	}))

	s.Start()

	assert.Eventually(t, func() bool { return calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, s.Stop(ctx))
}
