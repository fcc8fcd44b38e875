package promos

import (
	"context"
	"fmt"
	"time"

	"stagepass/internal/pricing"
	"stagepass/internal/shared/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ValidateInput struct {
	Code        string
	ShowID      uuid.UUID
	TierIDs     []uuid.UUID
	TicketCount int
	OrderAmount float64
	Currency    pricing.Currency
	Now         time.Time
}

type Service interface {
	Create(ctx context.Context, req CreatePromoRequest) (*PromoCode, error)
	List(ctx context.Context) ([]PromoCode, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Validate(ctx context.Context, input ValidateInput) (*ValidationResult, error)
	IncrementUsageTx(tx *gorm.DB, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreatePromoRequest) (*PromoCode, error) {
	promoType := PromoType(req.Type)
	if !promoType.IsValid() {
		return nil, apperror.New(apperror.KindInvalidArgument, "unknown promo type %q", req.Type)
	}
	if promoType == PromoPercentage && req.DiscountValue > 100 {
		return nil, apperror.New(apperror.KindInvalidArgument, "percentage discount cannot exceed 100")
	}
	if promoType == PromoFixed && req.Currency == "" {
		return nil, apperror.New(apperror.KindInvalidArgument, "fixed-amount promo requires a currency")
	}
	if !req.ValidUntil.After(req.ValidFrom) {
		return nil, apperror.New(apperror.KindInvalidArgument, "validity window must end after it starts")
	}

	minTickets := req.MinTickets
	if minTickets <= 0 {
		minTickets = 1
	}

	promo := &PromoCode{
		Code:          req.Code,
		Description:   req.Description,
		Type:          promoType,
		DiscountValue: req.DiscountValue,
		Currency:      req.Currency,
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
		MaxUses:       req.MaxUses,
		MinTickets:    minTickets,
		TierIDs:       req.TierIDs,
		ShowID:        req.ShowID,
		Active:        true,
	}

	if err := s.repo.Create(ctx, promo); err != nil {
		return nil, err
	}
	return promo, nil
}

func (s *service) List(ctx context.Context) ([]PromoCode, error) {
	return s.repo.List(ctx)
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Deactivate(ctx, id)
}

// Validate checks a code against a candidate order. Business rejections come
// back as a result with IsValid=false and a reason, never as an error; errors
// are reserved for persistence failures.
func (s *service) Validate(ctx context.Context, input ValidateInput) (*ValidationResult, error) {
	rejected := func(reason string) *ValidationResult {
		return &ValidationResult{
			IsValid:     false,
			Reason:      reason,
			FinalAmount: input.OrderAmount,
		}
	}

	promo, err := s.repo.GetByCode(ctx, input.Code)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return rejected(fmt.Sprintf("promo code %q does not exist", input.Code)), nil
		}
		return nil, err
	}

	if !promo.Active {
		return rejected(fmt.Sprintf("promo code %q is no longer active", promo.Code)), nil
	}
	if input.Now.Before(promo.ValidFrom) {
		return rejected(fmt.Sprintf("promo code %q is not valid yet", promo.Code)), nil
	}
	if !input.Now.Before(promo.ValidUntil) {
		return rejected(fmt.Sprintf("promo code %q has expired", promo.Code)), nil
	}
	if promo.MaxUses != nil && promo.UsedCount >= *promo.MaxUses {
		return rejected(fmt.Sprintf("promo code %q has reached its usage limit", promo.Code)), nil
	}
	if input.TicketCount < promo.MinTickets {
		return rejected(fmt.Sprintf("promo code %q requires at least %d tickets", promo.Code, promo.MinTickets)), nil
	}
	if promo.ShowID != nil && *promo.ShowID != input.ShowID {
		return rejected(fmt.Sprintf("promo code %q does not apply to this show", promo.Code)), nil
	}
	if len(promo.TierIDs) > 0 {
		applies := false
		for _, tierID := range input.TierIDs {
			if promo.TierIDs.Contains(tierID) {
				applies = true
				break
			}
		}
		if !applies {
			return rejected(fmt.Sprintf("promo code %q does not apply to the selected tiers", promo.Code)), nil
		}
	}

	discount := s.discountAmount(promo, input.OrderAmount, input.Currency)

	return &ValidationResult{
		IsValid:        true,
		DiscountAmount: discount,
		FinalAmount:    input.OrderAmount - discount,
		PromoID:        promo.ID.String(),
	}, nil
}

// discountAmount computes the raw discount clamped to [0, amount].
// Fixed-amount promos in another currency convert at the approximate
// fixed rate.
func (s *service) discountAmount(promo *PromoCode, amount float64, currency pricing.Currency) float64 {
	var discount float64
	switch promo.Type {
	case PromoPercentage:
		discount = amount * promo.DiscountValue / 100
	case PromoFixed:
		discount = promo.DiscountValue
		promoCurrency := pricing.Currency(promo.Currency)
		if promoCurrency != currency {
			if promoCurrency == pricing.CurrencyUSD && currency == pricing.CurrencyCOP {
				discount *= pricing.USDToCOPRate
			} else if promoCurrency == pricing.CurrencyCOP && currency == pricing.CurrencyUSD {
				discount /= pricing.USDToCOPRate
			}
		}
	}

	if discount < 0 {
		return 0
	}
	if discount > amount {
		return amount
	}
	return discount
}

func (s *service) IncrementUsageTx(tx *gorm.DB, id uuid.UUID) error {
	return s.repo.IncrementUsageTx(tx, id)
}
