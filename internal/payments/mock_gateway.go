package payments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stagepass/internal/shared/apperror"

	"github.com/google/uuid"
)

// MockGateway simulates a payment provider for local development and tests.
// Every created session is tracked so confirmation can be answered without
// an external call.
type MockGateway struct {
	mu          sync.Mutex
	sessions    map[string]*CheckoutSession
	baseURL     string
	FailCreate  bool
	FailConfirm bool
}

func NewMockGateway(baseURL string) *MockGateway {
	if baseURL == "" {
		baseURL = "https://checkout.example.com"
	}
	return &MockGateway{
		sessions: make(map[string]*CheckoutSession),
		baseURL:  baseURL,
	}
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, orderRef string, amount float64, currency string, customerEmail string) (*CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCreate {
		return nil, apperror.New(apperror.KindInternal, "payment provider unavailable")
	}

	session := &CheckoutSession{
		SessionID: fmt.Sprintf("cs_%s", uuid.NewString()),
		Amount:    amount,
		Currency:  currency,
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}
	session.URL = fmt.Sprintf("%s/pay/%s?ref=%s", m.baseURL, session.SessionID, orderRef)

	m.sessions[session.SessionID] = session
	return session, nil
}

func (m *MockGateway) ConfirmPayment(ctx context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailConfirm {
		return false, apperror.New(apperror.KindInternal, "payment provider unavailable")
	}

	if _, exists := m.sessions[sessionID]; !exists {
		return false, apperror.New(apperror.KindNotFound, "checkout session %s not found", sessionID)
	}
	return true, nil
}
