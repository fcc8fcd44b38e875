package promos

import (
	"context"
	"strings"
	"testing"
	"time"

	"stagepass/internal/pricing"
	"stagepass/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakePromoRepo struct {
	codes map[string]*PromoCode
}

func newFakePromoRepo(codes ...*PromoCode) *fakePromoRepo {
	repo := &fakePromoRepo{codes: make(map[string]*PromoCode)}
	for _, code := range codes {
		repo.codes[strings.ToUpper(code.Code)] = code
	}
	return repo
}

func (f *fakePromoRepo) Create(ctx context.Context, promo *PromoCode) error {
	key := strings.ToUpper(promo.Code)
	if _, exists := f.codes[key]; exists {
		return apperror.New(apperror.KindAlreadyExists, "promo code %q already exists", promo.Code)
	}
	promo.ID = uuid.New()
	f.codes[key] = promo
	return nil
}

func (f *fakePromoRepo) GetByCode(ctx context.Context, code string) (*PromoCode, error) {
	promo, exists := f.codes[strings.ToUpper(code)]
	if !exists {
		return nil, apperror.New(apperror.KindNotFound, "promo code %q not found", code)
	}
	return promo, nil
}

func (f *fakePromoRepo) GetByID(ctx context.Context, id uuid.UUID) (*PromoCode, error) {
	for _, promo := range f.codes {
		if promo.ID == id {
			return promo, nil
		}
	}
	return nil, apperror.New(apperror.KindNotFound, "promo code %s not found", id)
}

func (f *fakePromoRepo) List(ctx context.Context) ([]PromoCode, error) {
	var out []PromoCode
	for _, promo := range f.codes {
		out = append(out, *promo)
	}
	return out, nil
}

func (f *fakePromoRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	promo, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	promo.Active = false
	return nil
}

func (f *fakePromoRepo) IncrementUsageTx(tx *gorm.DB, id uuid.UUID) error {
	promo, err := f.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	promo.UsedCount++
	return nil
}

func validPromo() *PromoCode {
	return &PromoCode{
		ID:            uuid.New(),
		Code:          "SAVE10",
		Type:          PromoPercentage,
		DiscountValue: 10,
		ValidFrom:     time.Now().Add(-24 * time.Hour),
		ValidUntil:    time.Now().Add(24 * time.Hour),
		MinTickets:    1,
		Active:        true,
	}
}

func validateInput(code string) ValidateInput {
	return ValidateInput{
		Code:        code,
		ShowID:      uuid.New(),
		TierIDs:     []uuid.UUID{uuid.New()},
		TicketCount: 2,
		OrderAmount: 500,
		Currency:    pricing.CurrencyUSD,
		Now:         time.Now(),
	}
}

func TestValidatePercentageDiscount(t *testing.T) {
	svc := NewService(newFakePromoRepo(validPromo()))

	result, err := svc.Validate(context.Background(), validateInput("SAVE10"))
	require.NoError(t, err)

	assert.True(t, result.IsValid)
	assert.Equal(t, 50.0, result.DiscountAmount)
	assert.Equal(t, 450.0, result.FinalAmount)
}

func TestValidateUnknownCodeIsRejectionNotError(t *testing.T) {
	svc := NewService(newFakePromoRepo())

	result, err := svc.Validate(context.Background(), validateInput("NOPE"))
	require.NoError(t, err)

	assert.False(t, result.IsValid)
	assert.Contains(t, result.Reason, "NOPE")
	assert.Equal(t, 500.0, result.FinalAmount)
}

func TestValidateRejectionReasons(t *testing.T) {
	showID := uuid.New()
	tierID := uuid.New()
	uses := 5

	tests := []struct {
		name   string
		mutate func(*PromoCode)
		input  func(*ValidateInput)
		reason string
	}{
		{
			name:   "inactive",
			mutate: func(p *PromoCode) { p.Active = false },
			reason: "no longer active",
		},
		{
			name:   "not yet valid",
			mutate: func(p *PromoCode) { p.ValidFrom = time.Now().Add(time.Hour) },
			reason: "not valid yet",
		},
		{
			name:   "expired",
			mutate: func(p *PromoCode) { p.ValidUntil = time.Now().Add(-time.Hour) },
			reason: "expired",
		},
		{
			name: "usage cap reached",
			mutate: func(p *PromoCode) {
				p.MaxUses = &uses
				p.UsedCount = 5
			},
			reason: "usage limit",
		},
		{
			name:   "below minimum tickets",
			mutate: func(p *PromoCode) { p.MinTickets = 4 },
			reason: "at least 4 tickets",
		},
		{
			name:   "wrong show",
			mutate: func(p *PromoCode) { p.ShowID = &showID },
			reason: "does not apply to this show",
		},
		{
			name:   "tier not on allow-list",
			mutate: func(p *PromoCode) { p.TierIDs = UUIDSlice{tierID} },
			reason: "selected tiers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			promo := validPromo()
			tt.mutate(promo)
			svc := NewService(newFakePromoRepo(promo))

			input := validateInput("SAVE10")
			if tt.input != nil {
				tt.input(&input)
			}

			result, err := svc.Validate(context.Background(), input)
			require.NoError(t, err)
			assert.False(t, result.IsValid)
			assert.Contains(t, result.Reason, tt.reason)
			assert.Zero(t, result.DiscountAmount)
		})
	}
}

func TestValidateTierAllowListMatchesAnyLine(t *testing.T) {
	allowed := uuid.New()
	promo := validPromo()
	promo.TierIDs = UUIDSlice{allowed}
	svc := NewService(newFakePromoRepo(promo))

	input := validateInput("SAVE10")
	input.TierIDs = []uuid.UUID{uuid.New(), allowed}

	result, err := svc.Validate(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
}

func TestValidateFixedAmountConversion(t *testing.T) {
	promo := validPromo()
	promo.Type = PromoFixed
	promo.DiscountValue = 10
	promo.Currency = "USD"
	svc := NewService(newFakePromoRepo(promo))

	// Same currency: flat 10 off
	usd := validateInput("SAVE10")
	result, err := svc.Validate(context.Background(), usd)
	require.NoError(t, err)
	assert.Equal(t, 10.0, result.DiscountAmount)

	// USD promo against a COP order converts at the fixed rate
	cop := validateInput("SAVE10")
	cop.Currency = pricing.CurrencyCOP
	cop.OrderAmount = 200000
	result, err = svc.Validate(context.Background(), cop)
	require.NoError(t, err)
	assert.Equal(t, 40000.0, result.DiscountAmount)
	assert.Equal(t, 160000.0, result.FinalAmount)
}

func TestValidateDiscountClampedToOrderAmount(t *testing.T) {
	promo := validPromo()
	promo.Type = PromoFixed
	promo.DiscountValue = 1000
	promo.Currency = "USD"
	svc := NewService(newFakePromoRepo(promo))

	input := validateInput("SAVE10")
	input.OrderAmount = 300

	result, err := svc.Validate(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, 300.0, result.DiscountAmount)
	assert.Equal(t, 0.0, result.FinalAmount, "final amount never drops below zero")
}

func TestCreateDuplicateCode(t *testing.T) {
	svc := NewService(newFakePromoRepo(validPromo()))

	_, err := svc.Create(context.Background(), CreatePromoRequest{
		Code:          "SAVE10",
		Type:          "percentage",
		DiscountValue: 5,
		ValidFrom:     time.Now(),
		ValidUntil:    time.Now().Add(time.Hour),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAlreadyExists))
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newFakePromoRepo())

	_, err := svc.Create(context.Background(), CreatePromoRequest{
		Code:          "BIG",
		Type:          "percentage",
		DiscountValue: 150,
		ValidFrom:     time.Now(),
		ValidUntil:    time.Now().Add(time.Hour),
	})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))

	_, err = svc.Create(context.Background(), CreatePromoRequest{
		Code:          "FIXED",
		Type:          "fixed",
		DiscountValue: 10,
		ValidFrom:     time.Now(),
		ValidUntil:    time.Now().Add(time.Hour),
	})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument), "fixed promo needs a currency")
}
