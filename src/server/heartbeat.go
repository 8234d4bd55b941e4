package server

import (
	"sync"
	"time"

	"portfolio-stream/src/logger"

	"github.com/jonboulle/clockwork"
)

// -----------------------------------------------------------------------------
// HeartbeatMonitor runs the per-connection liveness state machine: Alive and
// Suspect. Each probe tick flips Alive records to Suspect and pings them;
// records still Suspect from the previous tick are terminated. A pong at any
// point flips Suspect back to Alive (see Client.readPump). The monitor ticks
// independently of the update scheduler.
// -----------------------------------------------------------------------------

type HeartbeatMonitor struct {
	registry *Registry
	drop     func(*Client)
	interval time.Duration
	clock    clockwork.Clock
	Logger   *logger.Logger

	stopOnce sync.Once
	stop     chan struct{}
}

// -----------------------------------------------------------------------------

func NewHeartbeatMonitor(registry *Registry, drop func(*Client), interval time.Duration, clock clockwork.Clock, log *logger.Logger) *HeartbeatMonitor {
	return &HeartbeatMonitor{
		registry: registry,
		drop:     drop,
		interval: interval,
		clock:    clock,
		Logger:   log,
		stop:     make(chan struct{}),
	}
}

// -----------------------------------------------------------------------------

func (h *HeartbeatMonitor) Start() {
	go h.run()
}

// -----------------------------------------------------------------------------

func (h *HeartbeatMonitor) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
}

// -----------------------------------------------------------------------------

func (h *HeartbeatMonitor) run() {
	ticker := h.clock.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			h.Probe()
		case <-h.stop:
			return
		}
	}
}

// -----------------------------------------------------------------------------

// Probe runs one probe round over a snapshot of the registry.
func (h *HeartbeatMonitor) Probe() {
	for _, c := range h.registry.Snapshot() {
		if !c.Alive() {
			// Suspect since the previous round: terminate.
			h.Logger.Info("Client %s missed heartbeat, terminating", c.ID())
			h.drop(c)
			continue
		}

		c.SetAlive(false)
		if !c.tryPing() {
			h.drop(c)
		}
	}
}
