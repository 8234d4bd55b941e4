package interfaces

import (
	"context"

	"portfolio-stream/src/models"
)

// -----------------------------------------------------------------------------
// IPortfolioBuilder produces an aggregated portfolio snapshot from the
// configured holdings and current quotes.
// -----------------------------------------------------------------------------

type IPortfolioBuilder interface {

	// BuildSnapshot computes the current portfolio state.
	BuildSnapshot(ctx context.Context) (*models.MPortfolioSnapshot, error)
}
