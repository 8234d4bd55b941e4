package models

import "encoding/json"

// -----------------------------------------------------------------------------
// Inbound control messages (client -> server)
// -----------------------------------------------------------------------------

// Inbound message types.
const (
	InSubscribeStocks      = "subscribe_stocks"
	InUnsubscribeStocks    = "unsubscribe_stocks"
	InSubscribePortfolio   = "subscribe_portfolio"
	InUnsubscribePortfolio = "unsubscribe_portfolio"
)

// MControlMessage is the parsed form of a client control message.
// Anything that fails to decode into this shape is dropped at the boundary.
type MControlMessage struct {
	Type    string   `json:"type"`
	Symbols []string `json:"symbols"`
}

// ParseControlMessage decodes a raw client frame into a control message.
// Returns ok=false for frames that are not valid JSON or carry a malformed
// symbols payload; callers log and ignore those.
func ParseControlMessage(raw []byte) (MControlMessage, bool) {
	var msg MControlMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return MControlMessage{}, false
	}
	if msg.Type == "" {
		return MControlMessage{}, false
	}
	return msg, true
}

// -----------------------------------------------------------------------------
// Outbound messages (server -> client)
// -----------------------------------------------------------------------------

// Outbound message types.
const (
	OutConnected        = "connected"
	OutSubscribed       = "subscribed"
	OutPortfolioUpdate  = "portfolio_update"
	OutStockPriceUpdate = "stock_price_update"
	OutError            = "error"
)

// MOutboundMessage is the single wire envelope for every server push.
// Timestamp is epoch milliseconds and always set.
type MOutboundMessage struct {
	Type      string              `json:"type"`
	Symbol    string              `json:"symbol,omitempty"`
	Data      interface{}         `json:"data,omitempty"`
	Stocks    []MStockPriceUpdate `json:"stocks,omitempty"`
	Error     string              `json:"error,omitempty"`
	Timestamp int64               `json:"timestamp"`
}

// -----------------------------------------------------------------------------

// NewConnectedMessage is the first message every registered connection receives.
func NewConnectedMessage(ts int64) *MOutboundMessage {
	return &MOutboundMessage{Type: OutConnected, Timestamp: ts}
}

// NewSubscribedMessage confirms a subscribe_stocks request. The symbol field
// carries the comma-joined requested list, not the resulting set.
func NewSubscribedMessage(joined string, ts int64) *MOutboundMessage {
	return &MOutboundMessage{Type: OutSubscribed, Symbol: joined, Timestamp: ts}
}

// NewPortfolioUpdateMessage wraps a portfolio snapshot.
func NewPortfolioUpdateMessage(snapshot *MPortfolioSnapshot, ts int64) *MOutboundMessage {
	return &MOutboundMessage{Type: OutPortfolioUpdate, Data: snapshot, Timestamp: ts}
}

// NewSingleStockMessage carries exactly one price update under "data".
func NewSingleStockMessage(update MStockPriceUpdate, ts int64) *MOutboundMessage {
	return &MOutboundMessage{Type: OutStockPriceUpdate, Data: update, Timestamp: ts}
}

// NewBatchStockMessage carries two or more price updates under "stocks".
func NewBatchStockMessage(updates []MStockPriceUpdate, ts int64) *MOutboundMessage {
	return &MOutboundMessage{Type: OutStockPriceUpdate, Stocks: updates, Timestamp: ts}
}

// NewErrorMessage signals a globally visible failure to a client.
func NewErrorMessage(errMsg string, ts int64) *MOutboundMessage {
	return &MOutboundMessage{Type: OutError, Error: errMsg, Timestamp: ts}
}
