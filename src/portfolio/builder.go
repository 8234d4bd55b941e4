package portfolio

import (
	"context"
	"fmt"
	"math"
	"time"

	"portfolio-stream/src/interfaces"
	"portfolio-stream/src/logger"
	"portfolio-stream/src/models"
	"portfolio-stream/src/utils"
)

// -----------------------------------------------------------------------------
// Builder aggregates the configured holdings with current quotes into a
// portfolio snapshot. It is a collaborator of the push layer, not part of it.
// -----------------------------------------------------------------------------

type Builder struct {
	Config      *models.MConfig
	QuoteSource interfaces.IQuoteSource
	Logger      *logger.Logger
}

// -----------------------------------------------------------------------------

func NewBuilder(cfg *models.MConfig, source interfaces.IQuoteSource, log *logger.Logger) *Builder {
	return &Builder{
		Config:      cfg,
		QuoteSource: source,
		Logger:      log,
	}
}

// -----------------------------------------------------------------------------

// BuildSnapshot fetches quotes for every holding and computes the aggregate
// view. Holdings without an available quote are valued at their average buy
// price so totals stay comparable across cycles.
func (b *Builder) BuildSnapshot(ctx context.Context) (*models.MPortfolioSnapshot, error) {
	holdings := b.Config.Portfolio.Holdings
	if len(holdings) == 0 {
		return nil, fmt.Errorf("no holdings configured")
	}

	keys := make([]string, 0, len(holdings))
	for _, h := range holdings {
		keys = append(keys, b.holdingKey(h))
	}

	quotes, err := b.QuoteSource.FetchQuotes(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("portfolio quote batch failed: %w", err)
	}

	snapshot := &models.MPortfolioSnapshot{
		Holdings:         make([]models.MHolding, 0, len(holdings)),
		SectorAllocation: make(map[string]float64),
		Timestamp:        time.Now().UnixMilli(),
	}

	for _, h := range holdings {
		key := b.holdingKey(h)
		symbol, exchange := utils.SplitSymbolKey(key)

		currentPrice := h.AvgPrice
		if q, ok := quotes[key]; ok {
			currentPrice = q.Price
		} else {
			b.Logger.Debug("No quote for holding %s, valuing at avg price", key)
		}

		invested := h.Quantity * h.AvgPrice
		value := h.Quantity * currentPrice
		gainLoss := value - invested

		holding := models.MHolding{
			Symbol:       symbol,
			Exchange:     exchange,
			Quantity:     h.Quantity,
			AvgPrice:     h.AvgPrice,
			CurrentPrice: currentPrice,
			Invested:     round2(invested),
			Value:        round2(value),
			GainLoss:     round2(gainLoss),
			Sector:       h.Sector,
		}
		if invested > 0 {
			holding.GainLossPercent = round2(gainLoss / invested * 100)
		}

		snapshot.TotalInvested += invested
		snapshot.TotalValue += value
		snapshot.Holdings = append(snapshot.Holdings, holding)
	}

	snapshot.TotalGainLoss = round2(snapshot.TotalValue - snapshot.TotalInvested)
	if snapshot.TotalInvested > 0 {
		snapshot.GainLossPercent = round2((snapshot.TotalValue - snapshot.TotalInvested) / snapshot.TotalInvested * 100)
	}

	// Percent-of-portfolio and sector allocation need the final total
	for i := range snapshot.Holdings {
		h := &snapshot.Holdings[i]
		if snapshot.TotalValue > 0 {
			h.PortfolioPercent = round2(h.Value / snapshot.TotalValue * 100)
		}

		sector := h.Sector
		if sector == "" {
			sector = "Other"
		}
		snapshot.SectorAllocation[sector] += h.Value
	}

	for sector, value := range snapshot.SectorAllocation {
		if snapshot.TotalValue > 0 {
			snapshot.SectorAllocation[sector] = round2(value / snapshot.TotalValue * 100)
		}
	}

	snapshot.TotalInvested = round2(snapshot.TotalInvested)
	snapshot.TotalValue = round2(snapshot.TotalValue)

	return snapshot, nil
}

// -----------------------------------------------------------------------------

func (b *Builder) holdingKey(h models.MHoldingConfig) string {
	raw := h.Symbol
	if h.Exchange != "" {
		raw = h.Symbol + ":" + h.Exchange
	}
	return utils.NormalizeSymbolKey(raw, b.Config.Stream.DefaultExchange)
}

// -----------------------------------------------------------------------------

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
