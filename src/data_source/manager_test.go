package datasource

import (
	"context"
	"errors"
	"testing"

	"portfolio-stream/src/helpers"
	"portfolio-stream/src/interfaces"
	"portfolio-stream/src/logger"
	"portfolio-stream/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	name   string
	quotes map[string]models.MQuote
	err    error
	calls  int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchQuotes(ctx context.Context, symbols []string) (map[string]models.MQuote, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.quotes, nil
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&models.MConfig{Name: "test", LogLevel: "ERROR"}, "manager-test")
}

func TestFetchQuotesFirstSourceWins(t *testing.T) {
	primary := &fakeSource{name: "primary", quotes: map[string]models.MQuote{
		"TCS:NSE": {Symbol: "TCS:NSE", Price: 3300},
	}}
	fallback := &fakeSource{name: "fallback"}

	m := NewSourceManager([]interfaces.IQuoteSource{primary, fallback}, testLogger())

	quotes, err := m.FetchQuotes(context.Background(), []string{"TCS:NSE"})
	require.NoError(t, err)
	assert.Equal(t, 3300.0, quotes["TCS:NSE"].Price)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, fallback.calls)
}

func TestFetchQuotesFailsOverInOrder(t *testing.T) {
	primary := &fakeSource{name: "primary", err: errors.New("rate limited")}
	fallback := &fakeSource{name: "fallback", quotes: map[string]models.MQuote{
		"TCS:NSE": {Symbol: "TCS:NSE", Price: 3301},
	}}

	m := NewSourceManager([]interfaces.IQuoteSource{primary, fallback}, testLogger())

	quotes, err := m.FetchQuotes(context.Background(), []string{"TCS:NSE"})
	require.NoError(t, err)
	assert.Equal(t, 3301.0, quotes["TCS:NSE"].Price)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestFetchQuotesAllSourcesFail(t *testing.T) {
	primary := &fakeSource{name: "primary", err: errors.New("down")}
	fallback := &fakeSource{name: "fallback", err: errors.New("also down")}

	m := NewSourceManager([]interfaces.IQuoteSource{primary, fallback}, testLogger())

	_, err := m.FetchQuotes(context.Background(), []string{"TCS:NSE"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all quote sources failed")

	var srcErr *helpers.QuoteSourceError
	assert.True(t, errors.As(err, &srcErr))
	assert.True(t, errors.Is(err, fallback.err))
}

func TestFetchQuotesNoSourcesConfigured(t *testing.T) {
	m := NewSourceManager(nil, testLogger())

	_, err := m.FetchQuotes(context.Background(), []string{"TCS:NSE"})
	assert.Error(t, err)
}

func TestAddSourceRejectsDuplicateName(t *testing.T) {
	m := NewSourceManager([]interfaces.IQuoteSource{&fakeSource{name: "primary"}}, testLogger())

	require.NoError(t, m.AddSource(&fakeSource{name: "secondary"}))
	assert.Error(t, m.AddSource(&fakeSource{name: "primary"}))
	assert.Len(t, m.GetAllSources(), 2)
}
