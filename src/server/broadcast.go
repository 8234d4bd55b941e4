package server

import (
	"context"
	"sort"

	"portfolio-stream/src/models"
	"portfolio-stream/src/utils"
)

// -----------------------------------------------------------------------------
// Broadcast Engine: the two update pipelines. Each runs against a consistent
// registry snapshot; a delivery failure to one connection never aborts the
// fan-out, it just drops that connection.
// -----------------------------------------------------------------------------

// RunPortfolioCycle builds one portfolio snapshot and fans it out to
// portfolio-subscribed connections. A builder failure is surfaced to every
// connection as an error message, since it means the whole valuation path
// is down.
func (s *StreamServer) RunPortfolioCycle(ctx context.Context) {
	subscribed := func(c *Client) bool { return c.PortfolioSubscribed() }

	targets := 0
	s.registry.ForEach(subscribed, func(*Client) { targets++ })
	if targets == 0 {
		return
	}

	snapshot, err := s.portfolioBuilder.BuildSnapshot(ctx)
	if err != nil {
		s.Logger.Error("Portfolio snapshot failed: %v", err)
		errMsg := models.NewErrorMessage("portfolio update failed: "+err.Error(), s.nowMillis())
		s.broadcastTo(nil, errMsg)
		return
	}

	s.broadcastTo(subscribed, models.NewPortfolioUpdateMessage(snapshot, s.nowMillis()))
}

// -----------------------------------------------------------------------------

// RunPriceCycle fetches one quote batch for the union of subscribed symbols,
// updates the history store, computes per-symbol deltas and fans out each
// connection's filtered subset. A quote-batch failure is logged only; no
// client-visible signal (asymmetric with the portfolio cycle on purpose).
func (s *StreamServer) RunPriceCycle(ctx context.Context) {
	union := s.registry.UnionSymbols()
	if len(union) == 0 {
		return
	}

	quotes, err := s.quoteSource.FetchQuotes(ctx, union)
	if err != nil {
		s.Logger.Error("Quote batch failed: %v", err)
		return
	}

	now := s.nowMillis()
	updates := s.computeUpdates(quotes, now)
	if len(updates) == 0 {
		return
	}

	s.archiveUpdates(updates)
	s.fanOutPrices(updates, now)
}

// -----------------------------------------------------------------------------

// computeUpdates derives one delta per quoted symbol. The previous price is
// read before the new point is recorded; all deltas in a cycle come from the
// same batch, so every connection sees a mutually consistent tick.
func (s *StreamServer) computeUpdates(quotes map[string]models.MQuote, now int64) map[string]models.MStockPriceUpdate {
	updates := make(map[string]models.MStockPriceUpdate, len(quotes))

	for key, quote := range quotes {
		symbol, exchange := utils.SplitSymbolKey(key)

		update := models.MStockPriceUpdate{
			Symbol:    symbol,
			Exchange:  exchange,
			Price:     quote.Price,
			Timestamp: now,
		}

		if prev, ok := s.history.Latest(key); ok {
			change := quote.Price - prev
			update.PreviousPrice = &prev
			update.Change = &change

			if prev != 0 {
				changePercent := change / prev * 100
				update.ChangePercent = &changePercent
			}
		}

		s.history.Record(key, quote.Price, now)
		updates[key] = update
	}

	return updates
}

// -----------------------------------------------------------------------------

// fanOutPrices sends each connection the subset of updates it subscribed to:
// the single-update shape for exactly one match, the batched shape for more,
// nothing for none.
func (s *StreamServer) fanOutPrices(updates map[string]models.MStockPriceUpdate, now int64) {
	var failed []*Client

	s.registry.ForEach(nil, func(c *Client) {
		subset := filterUpdates(c, updates)

		var msg *models.MOutboundMessage
		switch len(subset) {
		case 0:
			return
		case 1:
			msg = models.NewSingleStockMessage(subset[0], now)
		default:
			msg = models.NewBatchStockMessage(subset, now)
		}

		if !c.trySend(msg) {
			failed = append(failed, c)
		}
	})

	for _, c := range failed {
		s.dropClient(c)
	}
}

// -----------------------------------------------------------------------------

// filterUpdates returns the client's subscribed subset in symbol order.
func filterUpdates(c *Client, updates map[string]models.MStockPriceUpdate) []models.MStockPriceUpdate {
	keys := c.Symbols()
	sort.Strings(keys)

	subset := make([]models.MStockPriceUpdate, 0, len(keys))
	for _, key := range keys {
		if update, ok := updates[key]; ok {
			subset = append(subset, update)
		}
	}
	return subset
}

// -----------------------------------------------------------------------------

// broadcastTo delivers one message to every connection matching the
// predicate (nil matches all), dropping connections that fail.
func (s *StreamServer) broadcastTo(pred func(*Client) bool, msg *models.MOutboundMessage) {
	var failed []*Client

	s.registry.ForEach(pred, func(c *Client) {
		if !c.trySend(msg) {
			failed = append(failed, c)
		}
	})

	for _, c := range failed {
		s.dropClient(c)
	}
}

// -----------------------------------------------------------------------------

// archiveUpdates hands the cycle's updates to the quote archive, off the
// broadcast path.
func (s *StreamServer) archiveUpdates(updates map[string]models.MStockPriceUpdate) {
	if s.archive == nil {
		return
	}

	list := make([]models.MStockPriceUpdate, 0, len(updates))
	for _, u := range updates {
		list = append(list, u)
	}

	go func() {
		if err := s.archive.SaveQuotesBulk(list); err != nil {
			s.Logger.Warning("Quote archive write failed: %v", err)
		}
	}()
}
