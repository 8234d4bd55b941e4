package config

import (
	"fmt"
	"os"

	"portfolio-stream/src/helpers"
	"portfolio-stream/src/models"
	"portfolio-stream/src/utils"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from a YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, &helpers.ConfigurationError{StreamError: helpers.StreamError{Message: "config validation failed", Cause: err}}
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// applyDefaults fills unset cadence and retention values
func (c *Config) applyDefaults() {
	s := &c.Stream
	if s.PriceIntervalSeconds == 0 {
		s.PriceIntervalSeconds = int(utils.DefaultPriceInterval.Seconds())
	}
	if s.PortfolioIntervalSeconds == 0 {
		s.PortfolioIntervalSeconds = int(utils.DefaultPortfolioInterval.Seconds())
	}
	if s.HeartbeatIntervalSeconds == 0 {
		s.HeartbeatIntervalSeconds = int(utils.DefaultHeartbeatInterval.Seconds())
	}
	if s.MaxHistoryPoints == 0 {
		s.MaxHistoryPoints = utils.DefaultMaxHistoryPoints
	}
	if s.DefaultExchange == "" {
		s.DefaultExchange = utils.DefaultExchange
	}
	if s.SendBufferSize == 0 {
		s.SendBufferSize = utils.DefaultSendBufferSize
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate App configuration (Flattened)
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Stream configuration
	if c.Stream.PriceIntervalSeconds <= 0 {
		return fmt.Errorf("price interval must be greater than 0")
	}
	if c.Stream.PortfolioIntervalSeconds <= 0 {
		return fmt.Errorf("portfolio interval must be greater than 0")
	}
	if c.Stream.HeartbeatIntervalSeconds <= 0 {
		return fmt.Errorf("heartbeat interval must be greater than 0")
	}
	if c.Stream.MaxHistoryPoints <= 0 {
		return fmt.Errorf("max history points must be greater than 0")
	}

	// Validate Storage configuration
	if c.Storage.Enabled {
		if c.Storage.DBType == "" {
			return fmt.Errorf("database type cannot be empty")
		}
		if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
		if c.Storage.DBType == "postgres" && c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
		if c.Storage.DataRetentionDays <= 0 {
			return fmt.Errorf("data retention days must be greater than 0")
		}
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.Network.ConcurrentRequests <= 0 {
		return fmt.Errorf("concurrent requests must be greater than 0")
	}

	// Validate QuoteSource configuration
	if len(c.QuoteSource.Sources) == 0 {
		return fmt.Errorf("at least one quote source must be configured")
	}
	for i, src := range c.QuoteSource.Sources {
		if src.Name == "" {
			return fmt.Errorf("quote source %d must have a name", i)
		}
		if src.Type == "" {
			return fmt.Errorf("quote source '%s' must have a type", src.Name)
		}
	}

	// Validate Portfolio configuration
	for i, h := range c.Portfolio.Holdings {
		if h.Symbol == "" {
			return fmt.Errorf("holding %d must have a symbol", i)
		}
		if h.Quantity <= 0 {
			return fmt.Errorf("holding '%s' must have a positive quantity", h.Symbol)
		}
		if h.AvgPrice < 0 {
			return fmt.Errorf("holding '%s' cannot have a negative avg price", h.Symbol)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
