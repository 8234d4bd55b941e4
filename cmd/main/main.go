package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-stream/src/config"
	datasource "portfolio-stream/src/data_source"
	"portfolio-stream/src/data_source/finnhub"
	"portfolio-stream/src/data_source/sim"
	"portfolio-stream/src/interfaces"
	"portfolio-stream/src/logger"
	"portfolio-stream/src/network"
	"portfolio-stream/src/portfolio"
	"portfolio-stream/src/server"
	"portfolio-stream/src/storage"

	"github.com/jonboulle/clockwork"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.MConfig, cfg.Name)

	// 2. Quote sources with ordered failover
	netMgr := network.NewNetworkManager(cfg.MConfig, logger.NewLogger(cfg.MConfig, "Network"))

	var sources []interfaces.IQuoteSource
	for _, srcCfg := range cfg.QuoteSource.Sources {
		switch srcCfg.Type {
		case "finnhub":
			sources = append(sources, finnhub.NewFinnhubSource(cfg.MConfig, srcCfg, netMgr))
		case "sim":
			sources = append(sources, sim.NewSimSource(srcCfg.Name))
		default:
			appLogger.Critical("Unsupported quote source type: %s", srcCfg.Type)
		}
	}
	quoteSource := datasource.NewSourceManager(sources, logger.NewLogger(cfg.MConfig, "SourceManager"))

	// 3. Optional quote archive
	var archive interfaces.IDatabase
	if cfg.Storage.Enabled {
		switch cfg.Storage.DBType {
		case "postgres":
			archive, err = storage.NewPostgresArchive(cfg.MConfig, logger.NewLogger(cfg.MConfig, "PostgresArchive"))
		default:
			// Default to SQLite
			archive, err = storage.NewSQLiteArchive(cfg.MConfig, logger.NewLogger(cfg.MConfig, "SQLiteArchive"))
		}
		if err != nil {
			appLogger.Critical("Failed to init archive: %v", err)
		}
		if err := archive.Initialize(); err != nil {
			appLogger.Critical("Failed to migrate archive: %v", err)
		}
		defer archive.Close()

		// Retention pruning for the archive
		retentionStop := make(chan struct{})
		defer close(retentionStop)
		go storage.RunRetentionLoop(archive, 24*time.Hour, clockwork.NewRealClock(),
			logger.NewLogger(cfg.MConfig, "Retention"), retentionStop)
	}

	// 4. Portfolio builder
	builder := portfolio.NewBuilder(cfg.MConfig, quoteSource, logger.NewLogger(cfg.MConfig, "PortfolioBuilder"))

	// 5. Stream server (push layer)
	srv := server.NewStreamServer(cfg.MConfig, appLogger, quoteSource, builder, archive, clockwork.NewRealClock())

	done := make(chan struct{})
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
		close(done)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
		appLogger.Info("Shutting down...")
		srv.Stop()
	case <-done:
		// Stopped via the admin surface.
	}
}
