package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRecordsOutcome(t *testing.T) {
	s := New(nil)
	s.Register(Job{Name: "ok", Interval: time.Hour, Fn: func(context.Context) error { return nil }})
	s.Register(Job{Name: "bad", Interval: time.Hour, Fn: func(context.Context) error { return errors.New("boom") }})

	require.NoError(t, s.Run(t.Context(), "ok"))
	assert.EqualError(t, s.Run(t.Context(), "bad"), "boom")
	assert.Error(t, s.Run(t.Context(), "missing"))

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "bad", list[0].Name)
	assert.Equal(t, StatusFailed, list[0].Status)
	assert.Equal(t, "boom", list[0].Message)
	assert.Equal(t, StatusOK, list[1].Status)
	assert.NotNil(t, list[1].LastRunAt)
}

func TestStartTicksUntilCancelled(t *testing.T) {
	var runs atomic.Int32
	s := New(nil)
	s.Register(Job{Name: "tick", Interval: 10 * time.Millisecond, Fn: func(context.Context) error {
		runs.Add(1)
		return nil
	}})

	ctx, cancel := context.WithCancel(t.Context())
	s.Start(ctx)
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
}
