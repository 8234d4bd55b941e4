package interfaces

import "portfolio-stream/src/models"

// -----------------------------------------------------------------------------
// IDatabase defines the contract for the write-only quote archive.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveQuotesBulk inserts a batch of computed price updates.
	SaveQuotesBulk(updates []models.MStockPriceUpdate) error

	// -----------------------------------------------------------------------------

	// CleanupOldData removes data older than the retention policy.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
