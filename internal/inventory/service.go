package inventory

import (
	"context"
	"fmt"
	"time"

	"stagepass/internal/pricing"
	"stagepass/internal/shared/apperror"
	"stagepass/internal/shows"
	"stagepass/pkg/cache"
	"stagepass/pkg/logger"

	"github.com/google/uuid"
)

// ShowCatalog is the slice of the show repository inventory needs
type ShowCatalog interface {
	GetShowWithTiers(ctx context.Context, id uuid.UUID) (*shows.Show, error)
	GetActivePhase(ctx context.Context, showID uuid.UUID, now time.Time) (*shows.PricingPhase, error)
}

type Service interface {
	EnsureSeatMap(ctx context.Context, showID uuid.UUID) (*GenerateResult, error)
	GetSeatMap(ctx context.Context, showID uuid.UUID, currency pricing.Currency, now time.Time) (*SeatMapResponse, error)
	SoldCounts(ctx context.Context, showID uuid.UUID) (map[uuid.UUID]int, error)
}

type service struct {
	repo     Repository
	catalog  ShowCatalog
	cache    cache.Service
	cacheTTL time.Duration
	log      *logger.Logger
}

func NewService(repo Repository, catalog ShowCatalog, cacheService cache.Service, cacheTTL time.Duration) Service {
	return &service{
		repo:     repo,
		catalog:  catalog,
		cache:    cacheService,
		cacheTTL: cacheTTL,
		log:      logger.GetDefault(),
	}
}

// EnsureSeatMap materializes seat rows for a show's tiers. Idempotent: if
// any seat rows already exist the call is a no-op.
func (s *service) EnsureSeatMap(ctx context.Context, showID uuid.UUID) (*GenerateResult, error) {
	show, err := s.catalog.GetShowWithTiers(ctx, showID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.CountSeats(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("failed to count seats: %w", err)
	}
	if existing > 0 {
		return &GenerateResult{ShowID: showID.String(), Skipped: true}, nil
	}

	var seats []Seat
	for i := range show.Tiers {
		seats = append(seats, BuildSeats(&show.Tiers[i])...)
	}

	if err := s.repo.CreateSeats(ctx, seats); err != nil {
		return nil, fmt.Errorf("failed to create seats: %w", err)
	}

	s.log.InfoWithContext(ctx, "seat map generated", map[string]interface{}{
		"show_id": showID.String(),
		"seats":   len(seats),
	})

	return &GenerateResult{ShowID: showID.String(), SeatsCreated: len(seats)}, nil
}

// GetSeatMap renders sections, rows, and seats with live availability and the
// current unit price. Read-only; served through a short-TTL cache.
func (s *service) GetSeatMap(ctx context.Context, showID uuid.UUID, currency pricing.Currency, now time.Time) (*SeatMapResponse, error) {
	if !currency.IsValid() {
		return nil, apperror.New(apperror.KindInvalidArgument, "unsupported currency %q", currency)
	}

	key := fmt.Sprintf("seatmap:show:%s:%s", showID, currency)

	var cached SeatMapResponse
	err := s.cache.GetOrSet(ctx, key, s.cacheTTL, func() (interface{}, error) {
		return s.buildSeatMap(ctx, showID, currency, now)
	}, &cached)
	if err != nil {
		return nil, err
	}
	return &cached, nil
}

func (s *service) buildSeatMap(ctx context.Context, showID uuid.UUID, currency pricing.Currency, now time.Time) (*SeatMapResponse, error) {
	show, err := s.catalog.GetShowWithTiers(ctx, showID)
	if err != nil {
		return nil, err
	}

	phase, err := s.catalog.GetActivePhase(ctx, showID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve active phase: %w", err)
	}
	if phase == nil {
		return nil, apperror.New(apperror.KindFailedPrecondition,
			"no active pricing phase covers the current time")
	}

	seats, err := s.repo.GetSeatsByShow(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("failed to load seats: %w", err)
	}
	taken, err := s.repo.TakenSeatIDs(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("failed to load seat holds: %w", err)
	}
	soldCounts, err := s.repo.SoldCounts(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sold counts: %w", err)
	}

	seatsByTier := make(map[uuid.UUID][]Seat)
	for _, seat := range seats {
		seatsByTier[seat.TierID] = append(seatsByTier[seat.TierID], seat)
	}

	resp := &SeatMapResponse{
		ShowID:      show.ID.String(),
		Currency:    currency.String(),
		GeneratedAt: now,
	}

	for i := range show.Tiers {
		tier := &show.Tiers[i]
		if !tier.Active {
			continue
		}

		sold := soldCounts[tier.ID]
		basePrice := tier.BasePriceUSD
		if currency == pricing.CurrencyCOP {
			basePrice = tier.BasePriceCOP
		}
		quote, err := pricing.Calculate(basePrice, phase, sold, tier.MaxQuantity, currency)
		if err != nil {
			return nil, err
		}

		if !tier.Type.HasSeats() {
			available := tier.MaxQuantity - sold
			if available < 0 {
				available = 0
			}
			resp.Standing = append(resp.Standing, StandingView{
				TierID:       tier.ID.String(),
				Name:         tier.Name,
				CurrentPrice: quote.UnitPrice,
				Capacity:     tier.MaxQuantity,
				Available:    available,
			})
			continue
		}

		resp.Sections = append(resp.Sections, buildSection(tier, quote.UnitPrice, seatsByTier[tier.ID], taken))
	}

	return resp, nil
}

func buildSection(tier *shows.TicketTier, price float64, seats []Seat, taken map[uuid.UUID]bool) SectionView {
	section := SectionView{
		TierID:       tier.ID.String(),
		Name:         tier.Name,
		TierType:     tier.Type.String(),
		CurrentPrice: price,
	}

	rowIndex := make(map[string]int)
	for _, seat := range seats {
		idx, exists := rowIndex[seat.RowLabel]
		if !exists {
			idx = len(section.Rows)
			rowIndex[seat.RowLabel] = idx
			section.Rows = append(section.Rows, RowView{Label: seat.RowLabel})
		}
		section.Rows[idx].Seats = append(section.Rows[idx].Seats, SeatView{
			ID:         seat.ID.String(),
			Number:     seat.SeatNumber,
			Accessible: seat.Accessible,
			Available:  seat.Status == SeatAvailable && !taken[seat.ID],
		})
	}

	return section
}

func (s *service) SoldCounts(ctx context.Context, showID uuid.UUID) (map[uuid.UUID]int, error) {
	return s.repo.SoldCounts(ctx, showID)
}
