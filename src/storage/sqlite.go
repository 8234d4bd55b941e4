package storage

import (
	"database/sql"
	"fmt"
	"time"

	"portfolio-stream/src/helpers"
	"portfolio-stream/src/logger"
	"portfolio-stream/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------
// SQLiteArchive is the write-only quote archive. Computed price updates are
// appended each price cycle and never read back by the push layer.
// -----------------------------------------------------------------------------

type SQLiteArchive struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteArchive(cfg *models.MConfig, log *logger.Logger) (*SQLiteArchive, error) {
	return &SQLiteArchive{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteArchive) Initialize() error {
	dsn := d.Config.Storage.DBPath

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return &helpers.DatabaseError{StreamError: helpers.StreamError{Message: "opening sqlite archive", Cause: err}}
	}

	if err := db.Ping(); err != nil {
		return &helpers.DatabaseError{StreamError: helpers.StreamError{Message: "sqlite archive unreachable", Cause: err}}
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteArchive) createTables() error {
	// SQLite types: INTEGER for int64, REAL for float64, TEXT for string
	query := `
		CREATE TABLE IF NOT EXISTS quote_updates (
			symbol TEXT,
			exchange TEXT,
			timestamp INTEGER,
			price REAL,
			previous_price REAL,
			change REAL,
			change_percent REAL,
			PRIMARY KEY (symbol, exchange, timestamp)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create quote_updates: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteArchive) SaveQuotesBulk(updates []models.MStockPriceUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO quote_updates (symbol, exchange, timestamp, price, previous_price, change, change_percent)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, u := range updates {
		_, err := stmt.Exec(u.Symbol, u.Exchange, u.Timestamp, u.Price,
			nullableFloat(u.PreviousPrice), nullableFloat(u.Change), nullableFloat(u.ChangePercent))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *SQLiteArchive) CleanupOldData() error {
	retentionDays := d.Config.Storage.DataRetentionDays
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).UnixMilli()

	if _, err := d.DB.Exec("DELETE FROM quote_updates WHERE timestamp < ?", cutoff); err != nil {
		d.Logger.Error("Cleanup quote_updates error: %v", err)
		return err
	}

	d.Logger.Debug("Cleanup completed (cutoff %d)", cutoff)
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteArchive) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}

// -----------------------------------------------------------------------------

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
