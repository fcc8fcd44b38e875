package pricing

import (
	"math"
	"testing"

	"stagepass/internal/shared/apperror"
	"stagepass/internal/shows"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func neutralPhase() *shows.PricingPhase {
	return &shows.PricingPhase{Name: "general"}
}

func TestCalculateNoPhaseFailsClosed(t *testing.T) {
	_, err := Calculate(100, nil, 0, 100, CurrencyUSD)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindFailedPrecondition))
}

func TestCalculateDeterminism(t *testing.T) {
	phase := &shows.PricingPhase{Name: "early-bird", DiscountPct: 20}

	first, err := Calculate(137, phase, 53, 100, CurrencyUSD)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := Calculate(137, phase, 53, 100, CurrencyUSD)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCalculatePhaseDiscount(t *testing.T) {
	phase := &shows.PricingPhase{Name: "early-bird", DiscountPct: 20}

	quote, err := Calculate(100, phase, 0, 100, CurrencyUSD)
	require.NoError(t, err)

	// 100 * 0.80 = 80, already a multiple of 5
	assert.Equal(t, 80.0, quote.UnitPrice)
	assert.False(t, quote.SurgeApplied)
}

func TestCalculatePhasePremium(t *testing.T) {
	phase := &shows.PricingPhase{Name: "door", PremiumPct: 25}

	quote, err := Calculate(100, phase, 0, 100, CurrencyUSD)
	require.NoError(t, err)

	assert.Equal(t, 125.0, quote.UnitPrice)
}

func TestCalculateSurgeBoundary(t *testing.T) {
	// 69/100 sold stays below the threshold, 70/100 crosses it
	below, err := Calculate(100, neutralPhase(), 69, 100, CurrencyUSD)
	require.NoError(t, err)
	assert.False(t, below.SurgeApplied)
	assert.Equal(t, 100.0, below.UnitPrice)

	at, err := Calculate(100, neutralPhase(), 70, 100, CurrencyUSD)
	require.NoError(t, err)
	assert.True(t, at.SurgeApplied)
	assert.Equal(t, 110.0, at.UnitPrice)
}

func TestCalculateRoundingLawUSD(t *testing.T) {
	// 87 * 1.10 = 95.7, ceiling to the next multiple of 5
	quote, err := Calculate(87, neutralPhase(), 70, 100, CurrencyUSD)
	require.NoError(t, err)
	assert.Equal(t, 100.0, quote.UnitPrice)

	prices := []float64{1, 33, 87, 99.99, 101, 137.5}
	for _, base := range prices {
		quote, err := Calculate(base, neutralPhase(), 0, 100, CurrencyUSD)
		require.NoError(t, err)
		assert.Zero(t, math.Mod(quote.UnitPrice, 5), "price %v not a multiple of 5", quote.UnitPrice)
		assert.GreaterOrEqual(t, quote.UnitPrice, base, "ceiling must never round down")
	}
}

func TestCalculateRoundingLawCOP(t *testing.T) {
	quote, err := Calculate(145000, neutralPhase(), 0, 100, CurrencyCOP)
	require.NoError(t, err)
	assert.Equal(t, 150000.0, quote.UnitPrice)

	exact, err := Calculate(150000, neutralPhase(), 0, 100, CurrencyCOP)
	require.NoError(t, err)
	assert.Equal(t, 150000.0, exact.UnitPrice, "exact multiples must not be bumped")
}

func TestCalculateFeesAreInformational(t *testing.T) {
	quote, err := Calculate(100, neutralPhase(), 0, 100, CurrencyUSD)
	require.NoError(t, err)

	// 2.9% of 100 + 0.30 offset and 5% platform; neither alters UnitPrice
	assert.Equal(t, 100.0, quote.UnitPrice)
	assert.Equal(t, 3.2, quote.Fees.ProcessingFee)
	assert.Equal(t, 5.0, quote.Fees.PlatformFee)
}

func TestCalculateInvalidInputs(t *testing.T) {
	_, err := Calculate(100, neutralPhase(), 0, 100, Currency("EUR"))
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))

	_, err = Calculate(-1, neutralPhase(), 0, 100, CurrencyUSD)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))

	_, err = Calculate(100, neutralPhase(), 0, 0, CurrencyUSD)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))
}

func TestUrgencyBuckets(t *testing.T) {
	assert.Equal(t, UrgencyLow, UrgencyFor(0, 100))
	assert.Equal(t, UrgencyLow, UrgencyFor(39, 100))
	assert.Equal(t, UrgencyMedium, UrgencyFor(40, 100))
	assert.Equal(t, UrgencyMedium, UrgencyFor(69, 100))
	assert.Equal(t, UrgencyHigh, UrgencyFor(70, 100))
	assert.Equal(t, UrgencyHigh, UrgencyFor(89, 100))
	assert.Equal(t, UrgencyCritical, UrgencyFor(90, 100))
	assert.Equal(t, UrgencyCritical, UrgencyFor(100, 100))
}
