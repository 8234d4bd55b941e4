package models

// MStockPriceUpdate is the per-symbol delta computed each price cycle.
// PreviousPrice, Change and ChangePercent are nil when the symbol had no
// recorded history before this cycle; ChangePercent is additionally nil when
// the previous price was zero.
type MStockPriceUpdate struct {
	Symbol        string   `json:"symbol"`
	Exchange      string   `json:"exchange"`
	Price         float64  `json:"price"`
	PreviousPrice *float64 `json:"previous_price,omitempty"`
	Change        *float64 `json:"change,omitempty"`
	ChangePercent *float64 `json:"change_percent,omitempty"`
	Timestamp     int64    `json:"timestamp"`
}

// MPricePoint is one retained (timestamp, price) observation for a symbol.
type MPricePoint struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
}

// MQuote is one current price as returned by a quote source.
type MQuote struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}
