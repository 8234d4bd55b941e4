package server

import (
	"strings"

	"portfolio-stream/src/models"
	"portfolio-stream/src/utils"
)

// -----------------------------------------------------------------------------
// Subscription handling: inbound control messages mutate the target record's
// interest fields. Unknown or malformed shapes are logged and ignored; the
// connection stays open.
// -----------------------------------------------------------------------------

func (s *StreamServer) handleControlMessage(c *Client, raw []byte) {
	msg, ok := models.ParseControlMessage(raw)
	if !ok {
		s.Logger.Debug("Dropping unparseable message from %s", c.ID())
		return
	}

	switch msg.Type {
	case models.InSubscribeStocks:
		s.handleSubscribeStocks(c, msg.Symbols)

	case models.InUnsubscribeStocks:
		c.Unsubscribe(s.normalizeKeys(msg.Symbols))

	case models.InSubscribePortfolio:
		c.SetPortfolioSubscribed(true)

	case models.InUnsubscribePortfolio:
		c.SetPortfolioSubscribed(false)

	default:
		s.Logger.Debug("Ignoring message type %q from %s", msg.Type, c.ID())
	}
}

// -----------------------------------------------------------------------------

// handleSubscribeStocks adds the requested symbols and confirms to the
// requester only. The confirmation echoes the comma-joined requested list,
// not the resulting set.
func (s *StreamServer) handleSubscribeStocks(c *Client, symbols []string) {
	if len(symbols) == 0 {
		return
	}

	c.Subscribe(s.normalizeKeys(symbols))

	reply := models.NewSubscribedMessage(strings.Join(symbols, ","), s.nowMillis())
	if !c.trySend(reply) {
		s.dropClient(c)
	}
}

// -----------------------------------------------------------------------------

func (s *StreamServer) normalizeKeys(symbols []string) []string {
	keys := make([]string, 0, len(symbols))
	for _, raw := range symbols {
		if key := utils.NormalizeSymbolKey(raw, s.Config.Stream.DefaultExchange); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
