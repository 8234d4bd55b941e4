package utils

import "strings"

// -----------------------------------------------------------------------------
// Symbol keys. Subscriptions, history series and quote batches are all keyed
// by the normalized "SYMBOL:EXCHANGE" form; bare symbols get the configured
// default exchange.
// -----------------------------------------------------------------------------

// NormalizeSymbolKey upper-cases raw and appends the default exchange when no
// qualifier is present. Returns "" for blank input.
func NormalizeSymbolKey(raw, defaultExchange string) string {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}

	if strings.Contains(trimmed, ":") {
		return trimmed
	}

	if defaultExchange == "" {
		defaultExchange = DefaultExchange
	}
	return trimmed + ":" + strings.ToUpper(defaultExchange)
}

// -----------------------------------------------------------------------------

// SplitSymbolKey breaks a normalized key into symbol and exchange parts.
func SplitSymbolKey(key string) (symbol, exchange string) {
	if idx := strings.LastIndex(key, ":"); idx >= 0 {
		return key[:idx], key[idx+1:]
	}
	return key, ""
}
