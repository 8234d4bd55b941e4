package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"portfolio-stream/src/logger"
	"portfolio-stream/src/models"

	"github.com/jonboulle/clockwork"
)

// -----------------------------------------------------------------------------
// fakeConn simulates a connected transport. Writes are recorded; Fail makes
// every subsequent write error.
// -----------------------------------------------------------------------------

type fakeConn struct {
	mu       sync.Mutex
	written  []interface{}
	pings    int
	closed   bool
	failNext bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	return 0, nil, errors.New("not implemented")
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		return errors.New("write on closed connection")
	}
	f.written = append(f.written, v)
	return nil
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		return errors.New("write on closed connection")
	}
	f.pings++
	return nil
}

func (f *fakeConn) SetReadLimit(limit int64) {}

func (f *fakeConn) SetReadDeadline(t time.Time) error { return nil }

func (f *fakeConn) SetWriteDeadline(t time.Time) error { return nil }

func (f *fakeConn) SetPongHandler(h func(string) error) {}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// -----------------------------------------------------------------------------
// mockQuoteSource returns canned quotes and counts calls.
// -----------------------------------------------------------------------------

type mockQuoteSource struct {
	mu     sync.Mutex
	quotes map[string]models.MQuote
	err    error
	calls  int
}

func (m *mockQuoteSource) Name() string { return "mock" }

func (m *mockQuoteSource) FetchQuotes(ctx context.Context, symbols []string) (map[string]models.MQuote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.err != nil {
		return nil, m.err
	}

	result := make(map[string]models.MQuote)
	for _, key := range symbols {
		if q, ok := m.quotes[key]; ok {
			result[key] = q
		}
	}
	return result, nil
}

func (m *mockQuoteSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// -----------------------------------------------------------------------------
// mockPortfolioBuilder returns a canned snapshot and counts calls.
// -----------------------------------------------------------------------------

type mockPortfolioBuilder struct {
	mu       sync.Mutex
	snapshot *models.MPortfolioSnapshot
	err      error
	calls    int
}

func (m *mockPortfolioBuilder) BuildSnapshot(ctx context.Context) (*models.MPortfolioSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.err != nil {
		return nil, m.err
	}
	return m.snapshot, nil
}

func (m *mockPortfolioBuilder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// -----------------------------------------------------------------------------
// Test fixture helpers
// -----------------------------------------------------------------------------

func testConfig() *models.MConfig {
	return &models.MConfig{
		Name:     "test",
		Host:     "127.0.0.1",
		Port:     9090,
		LogLevel: "ERROR",
		Stream: models.MStreamConfig{
			PriceIntervalSeconds:     5,
			PortfolioIntervalSeconds: 15,
			HeartbeatIntervalSeconds: 30,
			MaxHistoryPoints:         100,
			DefaultExchange:          "NSE",
			SendBufferSize:           16,
		},
	}
}

func newTestServer(source *mockQuoteSource, builder *mockPortfolioBuilder) (*StreamServer, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	cfg := testConfig()
	log := logger.NewLogger(cfg, "test")
	return NewStreamServer(cfg, log, source, builder, nil, clock), clock
}

// addTestClient registers a client backed by a fakeConn without running the
// pumps; queued messages are read straight off the send channel.
func addTestClient(s *StreamServer, id string) (*Client, *fakeConn) {
	conn := newFakeConn()
	c := newClient(id, s, conn, s.Config.Stream.SendBufferSize)
	s.registry.Register(c)
	return c, conn
}

// drainMessages empties the client's send queue.
func drainMessages(c *Client) []*models.MOutboundMessage {
	var msgs []*models.MOutboundMessage
	for {
		select {
		case m := <-c.send:
			msgs = append(msgs, m)
		default:
			return msgs
		}
	}
}
