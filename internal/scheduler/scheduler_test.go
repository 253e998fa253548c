package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRegisterAndRunInvokesTask(t *testing.T) {
	s := New()
	var calls int32
	s.Register("noop", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, time.Hour)

	go s.Run()
	time.Sleep(1200 * time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}

func TestFailingTaskDoesNotAbortScheduler(t *testing.T) {
	s := New()
	var calls int32
	s.Register("always-fails", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	}, 500*time.Millisecond)

	go s.Run()
	time.Sleep(1200 * time.Millisecond)
	s.Stop()

	snap := s.Status()
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
	assert.Equal(t, "boom", snap.Tasks["always-fails"].LastStatus)
}

func TestStatusSnapshotPending(t *testing.T) {
	s := New()
	s.Register("never-due", func(ctx context.Context) error { return nil }, time.Hour)
	snap := s.Status()
	assert.Equal(t, "pending", snap.Tasks["never-due"].LastStatus)
	assert.False(t, snap.Running)
}
