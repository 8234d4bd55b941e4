package server

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"portfolio-stream/src/logger"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler() (*UpdateScheduler, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	log := logger.NewLogger(testConfig(), "scheduler-test")
	return NewUpdateScheduler(clock, log), clock
}

func TestSchedulerFiresAtInterval(t *testing.T) {
	s, clock := newTestScheduler()
	defer s.Stop()

	ran := make(chan struct{}, 8)
	s.Register(CyclePrice, 5*time.Second, func(context.Context) {
		ran <- struct{}{}
	})

	clock.BlockUntil(1)
	clock.Advance(5 * time.Second)

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("cycle did not fire after one interval")
	}

	clock.BlockUntil(1)
	clock.Advance(5 * time.Second)

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("cycle did not fire after second interval")
	}
}

func TestSchedulerTriggerNowRunsImmediately(t *testing.T) {
	s, _ := newTestScheduler()
	defer s.Stop()

	var runs atomic.Int32
	s.Register(CyclePortfolio, time.Hour, func(context.Context) {
		runs.Add(1)
	})

	require.NoError(t, s.TriggerNow(CyclePortfolio))

	require.Eventually(t, func() bool { return runs.Load() == 1 },
		time.Second, 5*time.Millisecond)

	assert.Error(t, s.TriggerNow(CycleType("bogus")))
}

func TestSchedulerSkipsOverlappingExecutions(t *testing.T) {
	s, _ := newTestScheduler()
	defer s.Stop()

	gate := make(chan struct{})
	var runs atomic.Int32
	s.Register(CyclePrice, time.Hour, func(context.Context) {
		runs.Add(1)
		<-gate
	})

	require.NoError(t, s.TriggerNow(CyclePrice))
	require.Eventually(t, func() bool { return runs.Load() == 1 },
		time.Second, 5*time.Millisecond)

	// A trigger while the first execution is still running is skipped.
	require.NoError(t, s.TriggerNow(CyclePrice))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())

	close(gate)

	// Once the first execution drains, triggers run again.
	require.Eventually(t, func() bool {
		s.TriggerNow(CyclePrice)
		return runs.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestSchedulerSetIntervalReplacesTimer(t *testing.T) {
	s, clock := newTestScheduler()
	defer s.Stop()

	ran := make(chan struct{}, 8)
	s.Register(CyclePrice, 5*time.Second, func(context.Context) {
		ran <- struct{}{}
	})
	clock.BlockUntil(1)

	require.NoError(t, s.SetInterval(CyclePrice, time.Minute))

	interval, ok := s.Interval(CyclePrice)
	require.True(t, ok)
	assert.Equal(t, time.Minute, interval)

	// Let the old timer loop observe its cancellation before advancing.
	time.Sleep(20 * time.Millisecond)

	// Advancing past several old periods must not fire the replaced timer.
	for i := 0; i < 10; i++ {
		clock.Advance(5 * time.Second)
	}
	select {
	case <-ran:
		t.Fatal("replaced timer fired at the old cadence")
	case <-time.After(50 * time.Millisecond):
	}

	// One more 10s step completes the new 60s period.
	clock.Advance(10 * time.Second)
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("cycle did not fire at the new cadence")
	}
}

func TestSchedulerSetIntervalValidation(t *testing.T) {
	s, _ := newTestScheduler()
	defer s.Stop()

	s.Register(CyclePrice, 5*time.Second, func(context.Context) {})

	assert.Error(t, s.SetInterval(CyclePrice, 0))
	assert.Error(t, s.SetInterval(CyclePrice, -time.Second))
	assert.Error(t, s.SetInterval(CycleType("bogus"), time.Second))

	_, ok := s.Interval(CycleType("bogus"))
	assert.False(t, ok)
}

func TestSchedulerStopCancelsTimers(t *testing.T) {
	s, clock := newTestScheduler()

	var runs atomic.Int32
	s.Register(CyclePrice, 5*time.Second, func(context.Context) {
		runs.Add(1)
	})
	clock.BlockUntil(1)

	s.Stop()
	time.Sleep(20 * time.Millisecond)

	clock.Advance(5 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())

	// Stop is idempotent and a stopped scheduler rejects new work.
	s.Stop()
	assert.Error(t, s.SetInterval(CyclePrice, time.Second))
	assert.Error(t, s.TriggerNow(CyclePrice))
	assert.Equal(t, int32(0), runs.Load())
}
