package interfaces

import (
	"context"

	"portfolio-stream/src/models"
)

// -----------------------------------------------------------------------------
// IQuoteSource is the abstract batched quote lookup the push layer depends on.
// -----------------------------------------------------------------------------

type IQuoteSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchQuotes retrieves current prices for the given symbols in one
	// batch. Symbols without an available price are simply absent from the
	// result; a returned error means the whole batch failed.
	FetchQuotes(ctx context.Context, symbols []string) (map[string]models.MQuote, error)
}
