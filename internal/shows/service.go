package shows

import (
	"context"
	"fmt"
	"time"

	"stagepass/internal/shared/apperror"
	"stagepass/pkg/cache"
	"stagepass/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	CreateShow(ctx context.Context, organizerID uuid.UUID, req CreateShowRequest) (*ShowResponse, error)
	GetShow(ctx context.Context, id uuid.UUID) (*ShowResponse, error)
	ListShows(ctx context.Context, query ShowListQuery) (*PaginatedShows, error)
	PublishShow(ctx context.Context, id uuid.UUID) (*ShowResponse, error)
	CancelShow(ctx context.Context, id uuid.UUID) (*ShowResponse, error)
	CompleteShow(ctx context.Context, id uuid.UUID) (*ShowResponse, error)
	AddTier(ctx context.Context, showID uuid.UUID, req CreateTierRequest) (*TierResponse, error)
	AddPhase(ctx context.Context, showID uuid.UUID, req CreatePhaseRequest) (*PricingPhase, error)
	GetPhases(ctx context.Context, showID uuid.UUID) ([]PricingPhase, error)
}

type service struct {
	repo  Repository
	cache cache.Service
	log   *logger.Logger
}

func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{
		repo:  repo,
		cache: cacheService,
		log:   logger.GetDefault(),
	}
}

func (s *service) CreateShow(ctx context.Context, organizerID uuid.UUID, req CreateShowRequest) (*ShowResponse, error) {
	if !req.StartsAt.After(time.Now()) {
		return nil, apperror.New(apperror.KindInvalidArgument, "show start time must be in the future")
	}
	if req.SeatedCapacity+req.StandingCapacity <= 0 {
		return nil, apperror.New(apperror.KindInvalidArgument, "show must have seated or standing capacity")
	}

	show := &Show{
		OrganizerID:      organizerID,
		Name:             req.Name,
		Description:      req.Description,
		Venue:            req.Venue,
		StartsAt:         req.StartsAt,
		Status:           StatusDraft,
		SeatedCapacity:   req.SeatedCapacity,
		StandingCapacity: req.StandingCapacity,
	}

	if err := s.repo.CreateShow(ctx, show); err != nil {
		return nil, fmt.Errorf("failed to create show: %w", err)
	}

	resp := show.ToResponse()
	return &resp, nil
}

func (s *service) GetShow(ctx context.Context, id uuid.UUID) (*ShowResponse, error) {
	show, err := s.repo.GetShowWithTiers(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := show.ToResponse()
	return &resp, nil
}

func (s *service) ListShows(ctx context.Context, query ShowListQuery) (*PaginatedShows, error) {
	showList, totalCount, err := s.repo.ListShows(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list shows: %w", err)
	}

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	responses := make([]ShowResponse, 0, len(showList))
	for i := range showList {
		responses = append(responses, showList[i].ToResponse())
	}

	return &PaginatedShows{
		Shows:      responses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: CalculateTotalPages(totalCount, query.Limit),
	}, nil
}

// PublishShow moves a draft show on sale. A show needs at least one tier
// and at least one pricing phase before anything can be priced.
func (s *service) PublishShow(ctx context.Context, id uuid.UUID) (*ShowResponse, error) {
	show, err := s.repo.GetShowWithTiers(ctx, id)
	if err != nil {
		return nil, err
	}

	if !show.Status.CanTransitionTo(StatusPublished) {
		return nil, apperror.New(apperror.KindFailedPrecondition,
			"show in status %s cannot be published", show.Status)
	}

	if len(show.Tiers) == 0 {
		return nil, apperror.New(apperror.KindFailedPrecondition,
			"show needs at least one ticket tier before publishing")
	}

	phases, err := s.repo.GetPhasesByShowID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing phases: %w", err)
	}
	if len(phases) == 0 {
		return nil, apperror.New(apperror.KindFailedPrecondition,
			"show needs at least one pricing phase before publishing")
	}

	if err := s.repo.UpdateShowStatus(ctx, id, StatusPublished, nil); err != nil {
		return nil, fmt.Errorf("failed to publish show: %w", err)
	}

	show.Status = StatusPublished
	resp := show.ToResponse()
	return &resp, nil
}

func (s *service) CancelShow(ctx context.Context, id uuid.UUID) (*ShowResponse, error) {
	show, err := s.repo.GetShowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !show.Status.CanTransitionTo(StatusCancelled) {
		return nil, apperror.New(apperror.KindFailedPrecondition,
			"show in status %s cannot be cancelled", show.Status)
	}

	now := time.Now()
	if err := s.repo.UpdateShowStatus(ctx, id, StatusCancelled, &now); err != nil {
		return nil, fmt.Errorf("failed to cancel show: %w", err)
	}

	s.invalidateShowCaches(ctx, id)

	show.Status = StatusCancelled
	show.CancelledAt = &now
	resp := show.ToResponse()
	return &resp, nil
}

func (s *service) CompleteShow(ctx context.Context, id uuid.UUID) (*ShowResponse, error) {
	show, err := s.repo.GetShowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !show.Status.CanTransitionTo(StatusCompleted) {
		return nil, apperror.New(apperror.KindFailedPrecondition,
			"show in status %s cannot be completed", show.Status)
	}

	if err := s.repo.UpdateShowStatus(ctx, id, StatusCompleted, nil); err != nil {
		return nil, fmt.Errorf("failed to complete show: %w", err)
	}

	show.Status = StatusCompleted
	resp := show.ToResponse()
	return &resp, nil
}

func (s *service) AddTier(ctx context.Context, showID uuid.UUID, req CreateTierRequest) (*TierResponse, error) {
	show, err := s.repo.GetShowByID(ctx, showID)
	if err != nil {
		return nil, err
	}

	if show.Status == StatusCancelled || show.Status == StatusCompleted {
		return nil, apperror.New(apperror.KindFailedPrecondition,
			"cannot add tiers to a %s show", show.Status)
	}

	tierType := TierType(req.Type)
	if !tierType.IsValid() {
		return nil, apperror.New(apperror.KindInvalidArgument, "unknown tier type %q", req.Type)
	}

	tier := &TicketTier{
		ShowID:       showID,
		Name:         req.Name,
		Type:         tierType,
		BasePriceUSD: req.BasePriceUSD,
		BasePriceCOP: req.BasePriceCOP,
		MaxQuantity:  req.MaxQuantity,
		Active:       true,
	}

	if err := s.repo.CreateTier(ctx, tier); err != nil {
		return nil, fmt.Errorf("failed to create tier: %w", err)
	}

	s.invalidateShowCaches(ctx, showID)

	resp := tier.ToResponse()
	return &resp, nil
}

// AddPhase registers a pricing window. A phase is either a discount or a
// premium, never both, and two phases of one show cannot share a start time.
func (s *service) AddPhase(ctx context.Context, showID uuid.UUID, req CreatePhaseRequest) (*PricingPhase, error) {
	if _, err := s.repo.GetShowByID(ctx, showID); err != nil {
		return nil, err
	}

	if req.DiscountPct > 0 && req.PremiumPct > 0 {
		return nil, apperror.New(apperror.KindInvalidArgument,
			"phase %q cannot carry both a discount and a premium", req.Name)
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, apperror.New(apperror.KindInvalidArgument,
			"phase %q must end after it starts", req.Name)
	}

	existing, err := s.repo.GetPhasesByShowID(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing phases: %w", err)
	}
	for i := range existing {
		if existing[i].StartsAt.Equal(req.StartsAt) {
			return nil, apperror.New(apperror.KindAlreadyExists,
				"a phase already starts at %s", req.StartsAt.Format(time.RFC3339))
		}
	}

	phase := &PricingPhase{
		ShowID:      showID,
		Name:        req.Name,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		DiscountPct: req.DiscountPct,
		PremiumPct:  req.PremiumPct,
		MaxTickets:  req.MaxTickets,
	}

	if err := s.repo.CreatePhase(ctx, phase); err != nil {
		return nil, fmt.Errorf("failed to create pricing phase: %w", err)
	}

	s.invalidateShowCaches(ctx, showID)

	return phase, nil
}

func (s *service) GetPhases(ctx context.Context, showID uuid.UUID) ([]PricingPhase, error) {
	if _, err := s.repo.GetShowByID(ctx, showID); err != nil {
		return nil, err
	}
	return s.repo.GetPhasesByShowID(ctx, showID)
}

// invalidateShowCaches drops cached pricing and seat maps after catalog changes
func (s *service) invalidateShowCaches(ctx context.Context, showID uuid.UUID) {
	patterns := []string{
		fmt.Sprintf("pricing:show:%s*", showID),
		fmt.Sprintf("seatmap:show:%s*", showID),
	}
	for _, pattern := range patterns {
		if err := s.cache.DeletePattern(ctx, pattern); err != nil {
			s.log.ErrorWithContext(ctx, "cache invalidation failed", err, map[string]interface{}{
				"show_id": showID.String(),
				"pattern": pattern,
			})
		}
	}
}
