package sim

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"sync"
	"time"

	"portfolio-stream/src/models"
)

// -----------------------------------------------------------------------------
// SimSource serves random-walk sample prices. Used as a failover behind the
// live source and for offline/demo runs; it never fails.
// -----------------------------------------------------------------------------

type SimSource struct {
	name   string
	prices map[string]float64
	rng    *rand.Rand
	mu     sync.Mutex
}

// -----------------------------------------------------------------------------

func NewSimSource(name string) *SimSource {
	if name == "" {
		name = "sim"
	}
	return &SimSource{
		name:   name,
		prices: make(map[string]float64),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// -----------------------------------------------------------------------------

func (s *SimSource) Name() string {
	return s.name
}

// -----------------------------------------------------------------------------

// FetchQuotes walks each symbol's price by up to ±1% per call. First sight of
// a symbol seeds a base price from its name so runs look stable per symbol.
func (s *SimSource) FetchQuotes(ctx context.Context, symbols []string) (map[string]models.MQuote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()
	quotes := make(map[string]models.MQuote, len(symbols))

	for _, key := range symbols {
		price, ok := s.prices[key]
		if !ok {
			price = basePrice(key)
		}

		drift := 1 + (s.rng.Float64()*2-1)*0.01
		price = math.Round(price*drift*100) / 100
		if price < 1 {
			price = 1
		}
		s.prices[key] = price

		quotes[key] = models.MQuote{
			Symbol:    key,
			Price:     price,
			Timestamp: now,
		}
	}

	return quotes, nil
}

// -----------------------------------------------------------------------------

// basePrice derives a stable starting price in [100, 3000) from the symbol.
func basePrice(key string) float64 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return 100 + float64(h.Sum32()%2900)
}
