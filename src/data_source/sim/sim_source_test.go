package sim

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchQuotesNeverFails(t *testing.T) {
	s := NewSimSource("sim-test")

	quotes, err := s.FetchQuotes(context.Background(), []string{"TCS:NSE", "RELIANCE:NSE"})
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	for key, q := range quotes {
		assert.Equal(t, key, q.Symbol)
		assert.GreaterOrEqual(t, q.Price, 1.0)
		assert.NotZero(t, q.Timestamp)
	}
}

func TestFetchQuotesDriftIsBounded(t *testing.T) {
	s := NewSimSource("sim-test")
	key := "TCS:NSE"

	quotes, err := s.FetchQuotes(context.Background(), []string{key})
	require.NoError(t, err)
	prev := quotes[key].Price

	for i := 0; i < 50; i++ {
		quotes, err = s.FetchQuotes(context.Background(), []string{key})
		require.NoError(t, err)

		price := quotes[key].Price
		// Walk is at most ±1% per call (plus rounding to the paisa).
		maxStep := prev*0.01 + 0.01
		assert.LessOrEqual(t, math.Abs(price-prev), maxStep)
		prev = price
	}
}

func TestBasePriceIsStablePerSymbol(t *testing.T) {
	assert.Equal(t, basePrice("TCS:NSE"), basePrice("TCS:NSE"))

	p := basePrice("RELIANCE:NSE")
	assert.GreaterOrEqual(t, p, 100.0)
	assert.Less(t, p, 3000.0)
}

func TestFetchQuotesHonorsCancelledContext(t *testing.T) {
	s := NewSimSource("sim-test")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.FetchQuotes(ctx, []string{"TCS:NSE"})
	assert.Error(t, err)
}
