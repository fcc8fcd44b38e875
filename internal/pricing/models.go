package pricing

import "time"

// TierPricing is the display-facing price for one tier
type TierPricing struct {
	TierID       string       `json:"tier_id"`
	TierName     string       `json:"tier_name"`
	TierType     string       `json:"tier_type"`
	CurrentPrice float64      `json:"current_price"`
	Available    int          `json:"available"`
	UrgencyLevel UrgencyLevel `json:"urgency_level"`
	SurgeApplied bool         `json:"surge_applied"`
	Fees         FeeBreakdown `json:"fees"`
}

// ShowPricingResponse is the full pricing snapshot for a show
type ShowPricingResponse struct {
	ShowID      string        `json:"show_id"`
	Currency    Currency      `json:"currency"`
	PhaseName   string        `json:"phase_name"`
	Tiers       []TierPricing `json:"tiers"`
	GeneratedAt time.Time     `json:"generated_at"`
}

type PricingQuery struct {
	Currency string `form:"currency" binding:"omitempty,oneof=USD COP"`
}
