package pricing

import (
	"math"

	"stagepass/internal/shared/apperror"
	"stagepass/internal/shows"
)

const (
	// SurgeThreshold is the sold ratio at which surge pricing kicks in
	SurgeThreshold = 0.70
	// SurgeMultiplier is the flat surge applied once the threshold is crossed
	SurgeMultiplier = 1.10

	processingFeePct = 0.029
	platformFeePct   = 0.05
)

// FeeBreakdown is informational only. Fees are reported to the buyer but
// never added to the charged amount.
type FeeBreakdown struct {
	ProcessingFee float64 `json:"processing_fee"`
	PlatformFee   float64 `json:"platform_fee"`
}

// Quote is the priced result for a single tier unit
type Quote struct {
	UnitPrice    float64      `json:"unit_price"`
	Currency     Currency     `json:"currency"`
	PhaseName    string       `json:"phase_name"`
	DiscountPct  float64      `json:"discount_pct,omitempty"`
	PremiumPct   float64      `json:"premium_pct,omitempty"`
	SurgeApplied bool         `json:"surge_applied"`
	Fees         FeeBreakdown `json:"fees"`
}

// Calculate prices one unit of a tier. It is pure: same inputs always yield
// the same quote, so it can be called once per tier on every seat-map render.
// A nil phase means no pricing window covers the moment of sale, and selling
// must fail closed rather than default to base price.
func Calculate(basePrice float64, phase *shows.PricingPhase, soldCount, maxQuantity int, currency Currency) (*Quote, error) {
	if !currency.IsValid() {
		return nil, apperror.New(apperror.KindInvalidArgument, "unsupported currency %q", currency)
	}
	if basePrice < 0 {
		return nil, apperror.New(apperror.KindInvalidArgument, "base price cannot be negative")
	}
	if maxQuantity <= 0 {
		return nil, apperror.New(apperror.KindInvalidArgument, "tier max quantity must be positive")
	}
	if phase == nil {
		return nil, apperror.New(apperror.KindFailedPrecondition, "no active pricing phase covers the current time")
	}

	price := basePrice
	if phase.HasDiscount() {
		price *= 1 - phase.DiscountPct/100
	} else if phase.HasPremium() {
		price *= 1 + phase.PremiumPct/100
	}

	soldRatio := float64(soldCount) / float64(maxQuantity)
	surged := soldRatio >= SurgeThreshold
	if surged {
		price *= SurgeMultiplier
	}

	price = ceilToUnit(price, currency.RoundingUnit())

	return &Quote{
		UnitPrice:    price,
		Currency:     currency,
		PhaseName:    phase.Name,
		DiscountPct:  phase.DiscountPct,
		PremiumPct:   phase.PremiumPct,
		SurgeApplied: surged,
		Fees: FeeBreakdown{
			ProcessingFee: roundCents(price*processingFeePct + currency.ProcessingFeeOffset()),
			PlatformFee:   roundCents(price * platformFeePct),
		},
	}, nil
}

// ceilToUnit rounds price up to the next multiple of unit. The epsilon keeps
// float noise just below a boundary from bumping an exact multiple upward.
func ceilToUnit(price, unit float64) float64 {
	return math.Ceil((price-1e-9)/unit) * unit
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// UrgencyLevel buckets a tier's sold ratio for display
type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "low"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

// UrgencyFor maps a sold count to its display urgency bucket
func UrgencyFor(soldCount, maxQuantity int) UrgencyLevel {
	if maxQuantity <= 0 {
		return UrgencyCritical
	}
	ratio := float64(soldCount) / float64(maxQuantity)
	switch {
	case ratio < 0.40:
		return UrgencyLow
	case ratio < 0.70:
		return UrgencyMedium
	case ratio < 0.90:
		return UrgencyHigh
	default:
		return UrgencyCritical
	}
}
