package storage

import (
	"path/filepath"
	"testing"
	"time"

	"portfolio-stream/src/logger"
	"portfolio-stream/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArchive(t *testing.T) *SQLiteArchive {
	t.Helper()

	cfg := &models.MConfig{
		Name:     "test",
		LogLevel: "ERROR",
		Storage: models.MStorageConfig{
			Enabled:           true,
			DBType:            "sqlite",
			DBPath:            filepath.Join(t.TempDir(), "quotes.db"),
			DataRetentionDays: 7,
		},
	}

	archive, err := NewSQLiteArchive(cfg, logger.NewLogger(cfg, "archive-test"))
	require.NoError(t, err)
	require.NoError(t, archive.Initialize())
	t.Cleanup(func() { archive.Close() })

	return archive
}

func countRows(t *testing.T, archive *SQLiteArchive) int {
	t.Helper()

	var count int
	require.NoError(t, archive.DB.QueryRow("SELECT COUNT(*) FROM quote_updates").Scan(&count))
	return count
}

func TestSaveQuotesBulk(t *testing.T) {
	archive := newTestArchive(t)

	prev := 3200.0
	change := 100.0
	now := time.Now().UnixMilli()

	updates := []models.MStockPriceUpdate{
		{Symbol: "TCS", Exchange: "NSE", Price: 3300, PreviousPrice: &prev, Change: &change, Timestamp: now},
		{Symbol: "INFY", Exchange: "NSE", Price: 1400, Timestamp: now},
	}

	require.NoError(t, archive.SaveQuotesBulk(updates))
	assert.Equal(t, 2, countRows(t, archive))

	// Delta columns are NULL when the update carried no previous price.
	var previous *float64
	require.NoError(t, archive.DB.QueryRow(
		"SELECT previous_price FROM quote_updates WHERE symbol = ?", "INFY").Scan(&previous))
	assert.Nil(t, previous)
}

func TestSaveQuotesBulkUpsertsOnKey(t *testing.T) {
	archive := newTestArchive(t)

	update := models.MStockPriceUpdate{Symbol: "TCS", Exchange: "NSE", Price: 3300, Timestamp: 1000}
	require.NoError(t, archive.SaveQuotesBulk([]models.MStockPriceUpdate{update}))

	update.Price = 3310
	require.NoError(t, archive.SaveQuotesBulk([]models.MStockPriceUpdate{update}))

	assert.Equal(t, 1, countRows(t, archive))

	var price float64
	require.NoError(t, archive.DB.QueryRow(
		"SELECT price FROM quote_updates WHERE symbol = ?", "TCS").Scan(&price))
	assert.Equal(t, 3310.0, price)
}

func TestSaveQuotesBulkEmptyIsNoOp(t *testing.T) {
	archive := newTestArchive(t)
	require.NoError(t, archive.SaveQuotesBulk(nil))
	assert.Equal(t, 0, countRows(t, archive))
}

func TestCleanupOldData(t *testing.T) {
	archive := newTestArchive(t)

	now := time.Now().UnixMilli()
	stale := time.Now().AddDate(0, 0, -30).UnixMilli()

	require.NoError(t, archive.SaveQuotesBulk([]models.MStockPriceUpdate{
		{Symbol: "TCS", Exchange: "NSE", Price: 3300, Timestamp: now},
		{Symbol: "TCS", Exchange: "NSE", Price: 3200, Timestamp: stale},
	}))

	require.NoError(t, archive.CleanupOldData())

	assert.Equal(t, 1, countRows(t, archive))

	var ts int64
	require.NoError(t, archive.DB.QueryRow("SELECT timestamp FROM quote_updates").Scan(&ts))
	assert.Equal(t, now, ts)
}
