package utils

import (
	"sync"

	"portfolio-stream/src/models"
)

// -----------------------------------------------------------------------------
// HistoryStore owns the per-symbol bounded price series used for delta
// computation and charting. Buffers are created lazily on the first observed
// price and never persisted.
// -----------------------------------------------------------------------------

type HistoryStore struct {
	series    map[string]*RingBuffer
	maxPoints int
	mu        sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewHistoryStore(maxPoints int) *HistoryStore {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxHistoryPoints
	}
	return &HistoryStore{
		series:    make(map[string]*RingBuffer),
		maxPoints: maxPoints,
	}
}

// -----------------------------------------------------------------------------

// Record appends a point for symbol, evicting the oldest beyond the cap.
func (hs *HistoryStore) Record(symbol string, price float64, timestamp int64) {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	buf, ok := hs.series[symbol]
	if !ok {
		buf = NewRingBuffer(hs.maxPoints)
		hs.series[symbol] = buf
	}

	buf.Append(models.MPricePoint{Timestamp: timestamp, Price: price})
}

// -----------------------------------------------------------------------------

// Latest returns the most recent price for symbol, ok=false when the symbol
// has no history yet.
func (hs *HistoryStore) Latest(symbol string) (float64, bool) {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	buf, ok := hs.series[symbol]
	if !ok {
		return 0, false
	}

	point, ok := buf.Latest()
	if !ok {
		return 0, false
	}
	return point.Price, true
}

// -----------------------------------------------------------------------------

// Slice returns the most recent limit points in insertion order. A limit of
// zero or below returns the full series.
func (hs *HistoryStore) Slice(symbol string, limit int) []models.MPricePoint {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	buf, ok := hs.series[symbol]
	if !ok {
		return []models.MPricePoint{}
	}

	if limit <= 0 {
		return buf.GetAll()
	}
	return buf.GetLatest(limit)
}

// -----------------------------------------------------------------------------

// SymbolCount returns number of symbols with retained history
func (hs *HistoryStore) SymbolCount() int {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	return len(hs.series)
}

// -----------------------------------------------------------------------------

// Clear drops all series. Called on service shutdown.
func (hs *HistoryStore) Clear() {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	hs.series = make(map[string]*RingBuffer)
}
