package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeMarksAliveClientsSuspect(t *testing.T) {
	s, _ := newTestServer(&mockQuoteSource{}, &mockPortfolioBuilder{})
	c, _ := addTestClient(s, "c1")

	require.True(t, c.Alive())
	s.heartbeat.Probe()

	// First missed round: suspect but still registered, probe queued.
	assert.False(t, c.Alive())
	assert.Equal(t, 1, s.registry.Count())

	select {
	case <-c.ping:
	default:
		t.Fatal("expected a queued liveness probe")
	}
}

func TestProbeTerminatesSuspectClients(t *testing.T) {
	s, _ := newTestServer(&mockQuoteSource{}, &mockPortfolioBuilder{})
	_, conn := addTestClient(s, "c1")

	s.heartbeat.Probe()
	s.heartbeat.Probe()

	// Two rounds without an ack: terminated.
	assert.Equal(t, 0, s.registry.Count())
	assert.True(t, conn.Closed())
}

func TestProbeAckKeepsClientAlive(t *testing.T) {
	s, _ := newTestServer(&mockQuoteSource{}, &mockPortfolioBuilder{})
	c, _ := addTestClient(s, "c1")

	s.heartbeat.Probe()
	c.SetAlive(true) // pong arrived between rounds
	s.heartbeat.Probe()

	assert.Equal(t, 1, s.registry.Count())
	assert.False(t, c.Alive())
}

func TestProbeOnlyAffectsUnresponsiveClients(t *testing.T) {
	s, _ := newTestServer(&mockQuoteSource{}, &mockPortfolioBuilder{})
	responsive, _ := addTestClient(s, "good")
	_, deadConn := addTestClient(s, "dead")

	s.heartbeat.Probe()
	responsive.SetAlive(true)
	s.heartbeat.Probe()

	assert.Equal(t, 1, s.registry.Count())
	assert.True(t, deadConn.Closed())
	assert.NotNil(t, s.registry.Snapshot()[0])
	assert.Equal(t, "good", s.registry.Snapshot()[0].ID())
}

func TestHeartbeatTicksOnClock(t *testing.T) {
	s, clock := newTestServer(&mockQuoteSource{}, &mockPortfolioBuilder{})
	c, _ := addTestClient(s, "c1")

	s.heartbeat.Start()
	defer s.heartbeat.Stop()

	clock.BlockUntil(1)
	clock.Advance(s.heartbeatInterval())

	require.Eventually(t, func() bool { return !c.Alive() },
		time.Second, 5*time.Millisecond, "probe round should flip the client to suspect")
}
