package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartRejectsBadCron(t *testing.T) {
	s := New("not a cron", 0, func(context.Context) error { return nil })
	defer s.Stop()

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a cron")
}

func TestStartSchedulesNextRun(t *testing.T) {
	s := New("5 * * * *", time.Minute, func(context.Context) error { return nil })
	defer s.Stop()

	require.NoError(t, s.Start(context.Background()))
	next := s.NextRun()
	assert.True(t, next.After(time.Now()))
	assert.Equal(t, 5, next.Minute())
}

func TestDefaultTimeout(t *testing.T) {
	s := New("* * * * *", 0, nil)
	assert.Equal(t, 10*time.Minute, s.timeout)
}
