package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"portfolio-stream/src/interfaces"
	"portfolio-stream/src/logger"
	"portfolio-stream/src/models"
	"portfolio-stream/src/utils"
)

// -----------------------------------------------------------------------------
// FinnhubSource fetches current quotes from the Finnhub REST API, one request
// per symbol, bounded by the configured concurrency.
// -----------------------------------------------------------------------------

type FinnhubSource struct {
	Config          *models.MConfig
	SourceConfig    models.MSourceConfig
	Network         interfaces.INetworkManager
	Logger          *logger.Logger
	MarketScheduler *utils.MarketScheduler

	// Last successful batch, served while tracked markets are closed.
	lastQuotes   map[string]models.MQuote
	lastQuotesMu sync.RWMutex
}

// quoteResponse is Finnhub's quote shape.
type quoteResponse struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	Timestamp     int64   `json:"t"`
}

// -----------------------------------------------------------------------------

func NewFinnhubSource(cfg *models.MConfig, sourceCfg models.MSourceConfig, netMgr interfaces.INetworkManager) *FinnhubSource {
	return &FinnhubSource{
		Config:          cfg,
		SourceConfig:    sourceCfg,
		Network:         netMgr,
		Logger:          logger.NewLogger(cfg, "FinnhubSource-"+sourceCfg.Name),
		MarketScheduler: utils.NewMarketScheduler(logger.NewLogger(cfg, "MarketScheduler-"+sourceCfg.Name)),
		lastQuotes:      make(map[string]models.MQuote),
	}
}

// -----------------------------------------------------------------------------

func (s *FinnhubSource) Name() string {
	return s.SourceConfig.Name
}

// -----------------------------------------------------------------------------

// FetchQuotes retrieves current prices for the given symbol keys. While every
// tracked market is closed (and market_hours_only is set) the last fetched
// batch is served instead of hitting the API again.
func (s *FinnhubSource) FetchQuotes(ctx context.Context, symbols []string) (map[string]models.MQuote, error) {
	if len(symbols) == 0 {
		return make(map[string]models.MQuote), nil
	}

	s.MarketScheduler.Track(symbols)

	if s.SourceConfig.MarketHoursOnly && !s.MarketScheduler.AnyMarketOpen() {
		if cached := s.cachedQuotes(symbols); len(cached) > 0 {
			s.Logger.Debug("Markets closed, serving %d cached quotes", len(cached))
			return cached, nil
		}
	}

	results := make(map[string]models.MQuote)
	var mu sync.Mutex
	var wg sync.WaitGroup
	var fetchErrs []error
	var errsMu sync.Mutex

	sem := make(chan struct{}, s.Config.Network.ConcurrentRequests)

	for _, key := range symbols {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		wg.Add(1)
		go func(key string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			quote, err := s.fetchQuote(key)
			if err != nil {
				errsMu.Lock()
				fetchErrs = append(fetchErrs, err)
				errsMu.Unlock()
				s.Logger.Debug("Quote fetch failed for %s: %v", key, err)
				return
			}

			mu.Lock()
			results[key] = quote
			mu.Unlock()
		}(key)
	}

	wg.Wait()

	// Only a fully failed batch counts as a source failure.
	if len(results) == 0 && len(fetchErrs) > 0 {
		return nil, fmt.Errorf("quote batch failed for all %d symbols: %v", len(symbols), fetchErrs[0])
	}

	s.rememberQuotes(results)
	return results, nil
}

// -----------------------------------------------------------------------------

// fetchQuote performs one GET /quote call.
func (s *FinnhubSource) fetchQuote(key string) (models.MQuote, error) {
	baseURL := s.SourceConfig.BaseURL
	if baseURL == "" {
		baseURL = "https://finnhub.io/api/v1"
	}

	body, err := s.Network.Get(baseURL+"/quote", map[string]string{
		"symbol": providerSymbol(key),
		"token":  s.SourceConfig.APIKey,
	})
	if err != nil {
		return models.MQuote{}, err
	}

	var resp quoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.MQuote{}, fmt.Errorf("invalid quote payload for %s: %w", key, err)
	}

	// Finnhub reports 0 for unknown symbols
	if resp.Current == 0 {
		return models.MQuote{}, fmt.Errorf("no price available for %s", key)
	}

	ts := resp.Timestamp * 1000
	if resp.Timestamp == 0 {
		ts = time.Now().UnixMilli()
	}

	return models.MQuote{
		Symbol:    key,
		Price:     resp.Current,
		Timestamp: ts,
	}, nil
}

// -----------------------------------------------------------------------------

// providerSymbol converts a normalized key into Finnhub's ticker form.
func providerSymbol(key string) string {
	symbol, exchange := utils.SplitSymbolKey(key)
	switch strings.ToUpper(exchange) {
	case "NSE":
		return symbol + ".NS"
	case "BSE":
		return symbol + ".BO"
	default:
		return symbol
	}
}

// -----------------------------------------------------------------------------

func (s *FinnhubSource) rememberQuotes(quotes map[string]models.MQuote) {
	if len(quotes) == 0 {
		return
	}

	s.lastQuotesMu.Lock()
	defer s.lastQuotesMu.Unlock()

	for k, q := range quotes {
		s.lastQuotes[k] = q
	}
}

// -----------------------------------------------------------------------------

func (s *FinnhubSource) cachedQuotes(symbols []string) map[string]models.MQuote {
	s.lastQuotesMu.RLock()
	defer s.lastQuotesMu.RUnlock()

	cached := make(map[string]models.MQuote)
	for _, key := range symbols {
		if q, ok := s.lastQuotes[key]; ok {
			cached[key] = q
		}
	}
	return cached
}
