package storage

import (
	"database/sql"
	"fmt"
	"time"

	"portfolio-stream/src/helpers"
	"portfolio-stream/src/logger"
	"portfolio-stream/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------
// PostgresArchive is the postgres variant of the quote archive.
// -----------------------------------------------------------------------------

type PostgresArchive struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresArchive(cfg *models.MConfig, log *logger.Logger) (*PostgresArchive, error) {
	return &PostgresArchive{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresArchive) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return &helpers.DatabaseError{StreamError: helpers.StreamError{Message: "opening postgres archive", Cause: err}}
	}

	if err := db.Ping(); err != nil {
		return &helpers.DatabaseError{StreamError: helpers.StreamError{Message: "postgres archive unreachable", Cause: err}}
	}

	d.DB = db

	query := `
		CREATE TABLE IF NOT EXISTS quote_updates (
			symbol TEXT,
			exchange TEXT,
			timestamp BIGINT,
			price DOUBLE PRECISION,
			previous_price DOUBLE PRECISION,
			change DOUBLE PRECISION,
			change_percent DOUBLE PRECISION,
			PRIMARY KEY (symbol, exchange, timestamp)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create quote_updates: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresArchive) SaveQuotesBulk(updates []models.MStockPriceUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO quote_updates (symbol, exchange, timestamp, price, previous_price, change, change_percent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol, exchange, timestamp) DO UPDATE SET
			price = excluded.price,
			previous_price = excluded.previous_price,
			change = excluded.change,
			change_percent = excluded.change_percent
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

func (d *PostgresArchive) CleanupOldData() error {
	retentionDays := d.Config.Storage.DataRetentionDays
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).UnixMilli()

	if _, err := d.DB.Exec("DELETE FROM quote_updates WHERE timestamp < $1", cutoff); err != nil {
		d.Logger.Error("Cleanup quote_updates error: %v", err)
		return err
	}

	d.Logger.Debug("Cleanup completed (cutoff %d)", cutoff)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresArchive) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
