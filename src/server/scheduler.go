package server

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"portfolio-stream/src/logger"

	"github.com/jonboulle/clockwork"
)

// -----------------------------------------------------------------------------
// UpdateScheduler drives the two independent refresh cadences. Each cycle
// type has one timer at a time: SetInterval atomically replaces the pending
// timer, and executions of the same cycle type are serialized. A tick that
// fires while the previous execution is still running is skipped.
// -----------------------------------------------------------------------------

type CycleType string

const (
	CyclePortfolio CycleType = "portfolio"
	CyclePrice     CycleType = "price"
)

// -----------------------------------------------------------------------------

type cycleState struct {
	interval time.Duration
	stop     chan struct{}
	run      func(context.Context)
	inFlight atomic.Bool
}

type UpdateScheduler struct {
	clock  clockwork.Clock
	Logger *logger.Logger

	mu      sync.Mutex
	cycles  map[CycleType]*cycleState
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
}

// -----------------------------------------------------------------------------

func NewUpdateScheduler(clock clockwork.Clock, log *logger.Logger) *UpdateScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &UpdateScheduler{
		clock:  clock,
		Logger: log,
		cycles: make(map[CycleType]*cycleState),
		ctx:    ctx,
		cancel: cancel,
	}
}

// -----------------------------------------------------------------------------

// Register binds a cycle type to its pipeline and starts its timer.
func (s *UpdateScheduler) Register(cycle CycleType, interval time.Duration, run func(context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs := &cycleState{
		interval: interval,
		stop:     make(chan struct{}),
		run:      run,
	}
	s.cycles[cycle] = cs

	go s.timerLoop(cycle, cs.interval, cs.stop)
}

// -----------------------------------------------------------------------------

// SetInterval replaces the pending timer for the cycle with a new one at the
// given period. An execution already in flight is unaffected.
func (s *UpdateScheduler) SetInterval(cycle CycleType, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return fmt.Errorf("scheduler is stopped")
	}

	cs, ok := s.cycles[cycle]
	if !ok {
		return fmt.Errorf("unknown cycle: %s", cycle)
	}

	select {
	case <-cs.stop:
		// timer already cancelled
	default:
		close(cs.stop)
	}
	cs.interval = interval
	cs.stop = make(chan struct{})

	go s.timerLoop(cycle, interval, cs.stop)

	s.Logger.Info("Cycle %s interval set to %s", cycle, interval)
	return nil
}

// -----------------------------------------------------------------------------

// Interval reports the cycle's current period.
func (s *UpdateScheduler) Interval(cycle CycleType) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, ok := s.cycles[cycle]
	if !ok {
		return 0, false
	}
	return cs.interval, true
}

// -----------------------------------------------------------------------------

// TriggerNow runs one cycle immediately without touching the timer's phase.
func (s *UpdateScheduler) TriggerNow(cycle CycleType) error {
	s.mu.Lock()
	cs, ok := s.cycles[cycle]
	stopped := s.stopped
	s.mu.Unlock()

	if stopped {
		return fmt.Errorf("scheduler is stopped")
	}
	if !ok {
		return fmt.Errorf("unknown cycle: %s", cycle)
	}

	go s.execute(cycle, cs)
	return nil
}

// -----------------------------------------------------------------------------

// Stop cancels every timer and rejects later SetInterval and TriggerNow
// calls. In-flight executions run to completion.
func (s *UpdateScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for _, cs := range s.cycles {
		select {
		case <-cs.stop:
			// already stopped
		default:
			close(cs.stop)
		}
	}
	s.cancel()
}

// -----------------------------------------------------------------------------

func (s *UpdateScheduler) timerLoop(cycle CycleType, interval time.Duration, stop chan struct{}) {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			s.mu.Lock()
			cs := s.cycles[cycle]
			s.mu.Unlock()

			// Fire and forget: a slow execution must not delay arming
			// the next tick.
			go s.execute(cycle, cs)

		case <-stop:
			return
		}
	}
}

// -----------------------------------------------------------------------------

func (s *UpdateScheduler) execute(cycle CycleType, cs *cycleState) {
	if !cs.inFlight.CompareAndSwap(false, true) {
		s.Logger.Debug("Cycle %s still running, skipping tick", cycle)
		return
	}
	defer cs.inFlight.Store(false)

	cs.run(s.ctx)
}
