package utils

import "time"

// -----------------------------------------------------------------------------

// Defaults for the push layer. Config values of zero fall back to these.
const (
	DefaultPriceInterval     = 5 * time.Second
	DefaultPortfolioInterval = 15 * time.Second
	DefaultHeartbeatInterval = 30 * time.Second

	// Per-symbol retained points for delta computation and charting.
	DefaultMaxHistoryPoints = 100

	// Exchange assumed for bare symbols without a ":EXCHANGE" qualifier.
	DefaultExchange = "NSE"

	// Per-client outbound queue length. A full queue counts as a send
	// failure and drops the client.
	DefaultSendBufferSize = 64
)

// -----------------------------------------------------------------------------

// NowMillis returns t as epoch milliseconds, the wire timestamp unit.
func NowMillis(t time.Time) int64 {
	return t.UnixMilli()
}
