package pricing

import (
	"context"
	"fmt"
	"time"

	"stagepass/internal/shared/apperror"
	"stagepass/internal/shows"
	"stagepass/pkg/cache"

	"github.com/google/uuid"
)

// ShowCatalog is the slice of the show repository pricing needs
type ShowCatalog interface {
	GetShowWithTiers(ctx context.Context, id uuid.UUID) (*shows.Show, error)
	GetActivePhase(ctx context.Context, showID uuid.UUID, now time.Time) (*shows.PricingPhase, error)
}

// InventoryReader reports sold counts per tier. Slightly stale counts are
// acceptable here; commit-time checks live in the booking transaction.
type InventoryReader interface {
	SoldCounts(ctx context.Context, showID uuid.UUID) (map[uuid.UUID]int, error)
}

type Service interface {
	GetShowPricing(ctx context.Context, showID uuid.UUID, currency Currency, now time.Time) (*ShowPricingResponse, error)
	QuoteTier(ctx context.Context, tier *shows.TicketTier, soldCount int, currency Currency, now time.Time) (*Quote, error)
}

type service struct {
	catalog   ShowCatalog
	inventory InventoryReader
	cache     cache.Service
	cacheTTL  time.Duration
}

func NewService(catalog ShowCatalog, inventory InventoryReader, cacheService cache.Service, cacheTTL time.Duration) Service {
	return &service{
		catalog:   catalog,
		inventory: inventory,
		cache:     cacheService,
		cacheTTL:  cacheTTL,
	}
}

// GetShowPricing returns the current per-tier price snapshot for display.
// Served through a short-TTL cache; never used for commit decisions.
func (s *service) GetShowPricing(ctx context.Context, showID uuid.UUID, currency Currency, now time.Time) (*ShowPricingResponse, error) {
	if !currency.IsValid() {
		return nil, apperror.New(apperror.KindInvalidArgument, "unsupported currency %q", currency)
	}

	key := fmt.Sprintf("pricing:show:%s:%s", showID, currency)

	var cached ShowPricingResponse
	err := s.cache.GetOrSet(ctx, key, s.cacheTTL, func() (interface{}, error) {
		return s.buildShowPricing(ctx, showID, currency, now)
	}, &cached)
	if err != nil {
		return nil, err
	}
	return &cached, nil
}

func (s *service) buildShowPricing(ctx context.Context, showID uuid.UUID, currency Currency, now time.Time) (*ShowPricingResponse, error) {
	show, err := s.catalog.GetShowWithTiers(ctx, showID)
	if err != nil {
		return nil, err
	}

	if show.Status != shows.StatusPublished && show.Status != shows.StatusSoldOut {
		return nil, apperror.New(apperror.KindFailedPrecondition,
			"show %q is not on sale", show.Name)
	}

	phase, err := s.catalog.GetActivePhase(ctx, showID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve active phase: %w", err)
	}
	if phase == nil {
		return nil, apperror.New(apperror.KindFailedPrecondition,
			"no active pricing phase covers the current time")
	}

	soldCounts, err := s.inventory.SoldCounts(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sold counts: %w", err)
	}

	resp := &ShowPricingResponse{
		ShowID:      show.ID.String(),
		Currency:    currency,
		PhaseName:   phase.Name,
		GeneratedAt: now,
	}

	for i := range show.Tiers {
		tier := &show.Tiers[i]
		if !tier.Active {
			continue
		}

		sold := soldCounts[tier.ID]
		quote, err := Calculate(basePriceFor(tier, currency), phase, sold, tier.MaxQuantity, currency)
		if err != nil {
			return nil, err
		}

		available := tier.MaxQuantity - sold
		if available < 0 {
			available = 0
		}

		resp.Tiers = append(resp.Tiers, TierPricing{
			TierID:       tier.ID.String(),
			TierName:     tier.Name,
			TierType:     tier.Type.String(),
			CurrentPrice: quote.UnitPrice,
			Available:    available,
			UrgencyLevel: UrgencyFor(sold, tier.MaxQuantity),
			SurgeApplied: quote.SurgeApplied,
			Fees:         quote.Fees,
		})
	}

	return resp, nil
}

// QuoteTier prices one unit of a tier at "now", resolving the active phase
func (s *service) QuoteTier(ctx context.Context, tier *shows.TicketTier, soldCount int, currency Currency, now time.Time) (*Quote, error) {
	phase, err := s.catalog.GetActivePhase(ctx, tier.ShowID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve active phase: %w", err)
	}
	return Calculate(basePriceFor(tier, currency), phase, soldCount, tier.MaxQuantity, currency)
}

func basePriceFor(tier *shows.TicketTier, currency Currency) float64 {
	if currency == CurrencyCOP {
		return tier.BasePriceCOP
	}
	return tier.BasePriceUSD
}
