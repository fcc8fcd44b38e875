package payments

import (
	"context"
	"time"
)

// CheckoutSession is an opaque reference to an external payment flow
type CheckoutSession struct {
	SessionID string    `json:"session_id"`
	URL       string    `json:"url"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Gateway abstracts the payment provider. Sessions are created after the
// booking transaction commits; confirmation arrives as a separate call.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, orderRef string, amount float64, currency string, customerEmail string) (*CheckoutSession, error)
	ConfirmPayment(ctx context.Context, sessionID string) (bool, error)
}
