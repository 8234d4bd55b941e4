package datasource

import (
	"context"
	"fmt"
	"sync"

	"portfolio-stream/src/helpers"
	"portfolio-stream/src/interfaces"
	"portfolio-stream/src/logger"
	"portfolio-stream/src/models"
)

// -----------------------------------------------------------------------------
// SourceManager aggregates multiple IQuoteSource instances with ordered
// failover: the first source that returns a batch wins.
// -----------------------------------------------------------------------------

type SourceManager struct {
	sources []interfaces.IQuoteSource
	Logger  *logger.Logger
	mu      sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewSourceManager(sources []interfaces.IQuoteSource, log *logger.Logger) *SourceManager {
	return &SourceManager{
		sources: sources,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

func (m *SourceManager) Name() string {
	return "source-manager"
}

// -----------------------------------------------------------------------------

// AddSource appends a source at the end of the failover order
func (m *SourceManager) AddSource(source interfaces.IQuoteSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sources {
		if s.Name() == source.Name() {
			return fmt.Errorf("source %s already exists", source.Name())
		}
	}

	m.sources = append(m.sources, source)
	m.Logger.Info("Added quote source: %s", source.Name())
	return nil
}

// -----------------------------------------------------------------------------

// GetAllSources returns the sources in failover order
func (m *SourceManager) GetAllSources() []interfaces.IQuoteSource {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]interfaces.IQuoteSource, len(m.sources))
	copy(list, m.sources)
	return list
}

// -----------------------------------------------------------------------------

// FetchQuotes asks each source in order until one returns a batch.
func (m *SourceManager) FetchQuotes(ctx context.Context, symbols []string) (map[string]models.MQuote, error) {
	m.mu.RLock()
	sources := make([]interfaces.IQuoteSource, len(m.sources))
	copy(sources, m.sources)
	m.mu.RUnlock()

	if len(sources) == 0 {
		return nil, fmt.Errorf("no quote sources configured")
	}

	var lastErr error
	for _, src := range sources {
		quotes, err := src.FetchQuotes(ctx, symbols)
		if err == nil {
			return quotes, nil
		}

		lastErr = err
		m.Logger.Warning("Quote source %s failed: %v", src.Name(), err)
	}

	return nil, &helpers.QuoteSourceError{StreamError: helpers.StreamError{Message: "all quote sources failed", Cause: lastErr}}
}
