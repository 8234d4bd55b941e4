package utils

import (
	"sync"
	"time"

	"portfolio-stream/src/logger"
)

// MarketScheduler tracks which trading calendars cover the symbols a quote
// source is currently serving.
type MarketScheduler struct {
	Calendars map[string]*TradingCalendar
	Logger    *logger.Logger
	mu        sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMarketScheduler(l *logger.Logger) *MarketScheduler {
	return &MarketScheduler{
		Calendars: make(map[string]*TradingCalendar),
		Logger:    l,
	}
}

// -----------------------------------------------------------------------------

// Track ensures a calendar exists for each symbol key. Symbols already
// tracked keep their calendar.
func (ms *MarketScheduler) Track(symbolKeys []string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	added := 0
	for _, key := range symbolKeys {
		if _, ok := ms.Calendars[key]; ok {
			continue
		}
		if cal := GetCalendar(key); cal != nil {
			ms.Calendars[key] = cal
			added++
		}
	}

	if added > 0 {
		ms.Logger.Debug("MarketScheduler: tracking %d symbols (%d new)", len(ms.Calendars), added)
	}
}

// -----------------------------------------------------------------------------

// AnyMarketOpen checks if ANY tracked market is currently open.
// An empty tracking set reports open so that fresh services still fetch.
func (ms *MarketScheduler) AnyMarketOpen() bool {
	now := time.Now().UTC()

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if len(ms.Calendars) == 0 {
		return true
	}

	seen := make(map[*TradingCalendar]bool)
	for _, cal := range ms.Calendars {
		if seen[cal] {
			continue
		}
		seen[cal] = true

		if cal.IsOpenOnMinute(now) {
			return true
		}
	}

	return false
}
