package models

// MConfig Structure
type MConfig struct {
	Name     string `yaml:"name"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	Stream      MStreamConfig      `yaml:"stream"`
	Storage     MStorageConfig     `yaml:"storage"`
	Network     MNetworkConfig     `yaml:"network"`
	QuoteSource MQuoteSourceConfig `yaml:"quote_source"`
	Portfolio   MPortfolioConfig   `yaml:"portfolio"`
}

// MStreamConfig holds the push-layer cadences and retention settings.
type MStreamConfig struct {
	PriceIntervalSeconds     int    `yaml:"price_interval_seconds"`
	PortfolioIntervalSeconds int    `yaml:"portfolio_interval_seconds"`
	HeartbeatIntervalSeconds int    `yaml:"heartbeat_interval_seconds"`
	MaxHistoryPoints         int    `yaml:"max_history_points"`
	DefaultExchange          string `yaml:"default_exchange"`
	SendBufferSize           int    `yaml:"send_buffer_size"`
}

type MStorageConfig struct {
	Enabled            bool   `yaml:"enabled"`
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	DataRetentionDays  int    `yaml:"data_retention_days"`
}

type MNetworkConfig struct {
	RequestTimeout     int    `yaml:"timeout"`
	MaxRetries         int    `yaml:"retries"`
	ConcurrentRequests int    `yaml:"concurrent_requests"`
	UserAgent          string `yaml:"user_agent"`
}

type MQuoteSourceConfig struct {
	Sources []MSourceConfig `yaml:"sources"`
}

type MSourceConfig struct {
	Name            string `yaml:"name"`
	Type            string `yaml:"type"`
	BaseURL         string `yaml:"base_url"`
	APIKey          string `yaml:"api_key"` // Optional
	MarketHoursOnly bool   `yaml:"market_hours_only"`
}

type MPortfolioConfig struct {
	Holdings []MHoldingConfig `yaml:"holdings"`
}

type MHoldingConfig struct {
	Symbol   string  `yaml:"symbol"`
	Exchange string  `yaml:"exchange"`
	Quantity float64 `yaml:"quantity"`
	AvgPrice float64 `yaml:"avg_price"`
	Sector   string  `yaml:"sector"`
}
