package pricing

// Currency is the closed set of settlement currencies
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyCOP Currency = "COP"
)

// IsValid checks if the currency is supported
func (c Currency) IsValid() bool {
	switch c {
	case CurrencyUSD, CurrencyCOP:
		return true
	}
	return false
}

// String returns the string representation of Currency
func (c Currency) String() string {
	return string(c)
}

// RoundingUnit returns the unit prices are ceiling-rounded to.
// Final prices are always exact multiples of this unit.
func (c Currency) RoundingUnit() float64 {
	switch c {
	case CurrencyCOP:
		return 10000
	default:
		return 5
	}
}

// ProcessingFeeOffset returns the fixed part of the processing fee
func (c Currency) ProcessingFeeOffset() float64 {
	switch c {
	case CurrencyCOP:
		return 1000
	default:
		return 0.30
	}
}

// USDToCOPRate is the approximate fixed conversion used for cross-currency
// fixed-amount discounts.
const USDToCOPRate = 4000.0
