package models

// -----------------------------------------------------------------------------
// Portfolio snapshot (produced by the Portfolio Builder collaborator)
// -----------------------------------------------------------------------------

type MHolding struct {
	Symbol           string  `json:"symbol"`
	Exchange         string  `json:"exchange"`
	Quantity         float64 `json:"quantity"`
	AvgPrice         float64 `json:"avg_price"`
	CurrentPrice     float64 `json:"current_price"`
	Invested         float64 `json:"invested"`
	Value            float64 `json:"value"`
	GainLoss         float64 `json:"gain_loss"`
	GainLossPercent  float64 `json:"gain_loss_percent"`
	PortfolioPercent float64 `json:"portfolio_percent"`
	Sector           string  `json:"sector"`
}

type MPortfolioSnapshot struct {
	TotalInvested    float64            `json:"total_invested"`
	TotalValue       float64            `json:"total_value"`
	TotalGainLoss    float64            `json:"total_gain_loss"`
	GainLossPercent  float64            `json:"gain_loss_percent"`
	Holdings         []MHolding         `json:"holdings"`
	SectorAllocation map[string]float64 `json:"sector_allocation"`
	Timestamp        int64              `json:"timestamp"`
}
