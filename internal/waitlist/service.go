package waitlist

import (
	"context"
	"fmt"
	"time"

	"stagepass/internal/notifications"
	"stagepass/internal/shared/apperror"
	"stagepass/internal/shows"
	"stagepass/pkg/logger"

	"github.com/google/uuid"
)

// WaitlistExpiry is how long after the show start a waitlist entry stays
// relevant before lapsing
const WaitlistExpiry = 24 * time.Hour

// ShowCatalog is the slice of the show repository the waitlist needs
type ShowCatalog interface {
	GetShowByID(ctx context.Context, id uuid.UUID) (*shows.Show, error)
	GetTierByID(ctx context.Context, id uuid.UUID) (*shows.TicketTier, error)
}

// InventoryReader re-verifies that a tier is actually full before a join is
// accepted; client claims are never trusted.
type InventoryReader interface {
	TierSold(ctx context.Context, tierID uuid.UUID) (int, error)
}

type Service interface {
	Join(ctx context.Context, userID uuid.UUID, email string, req JoinRequest) (*EntryResponse, error)
	Status(ctx context.Context, userID, showID, tierID uuid.UUID) (*EntryResponse, error)
	NotifyFreed(ctx context.Context, showID, tierID uuid.UUID, quantity int) (int, error)
}

type service struct {
	repo      Repository
	catalog   ShowCatalog
	inventory InventoryReader
	publisher notifications.Publisher
	log       *logger.Logger
}

func NewService(repo Repository, catalog ShowCatalog, inventory InventoryReader, publisher notifications.Publisher) Service {
	return &service{
		repo:      repo,
		catalog:   catalog,
		inventory: inventory,
		publisher: publisher,
		log:       logger.GetDefault(),
	}
}

// Join queues a user for a tier that has genuinely run out
func (s *service) Join(ctx context.Context, userID uuid.UUID, email string, req JoinRequest) (*EntryResponse, error) {
	show, err := s.catalog.GetShowByID(ctx, req.ShowID)
	if err != nil {
		return nil, err
	}
	if show.Status != shows.StatusPublished && show.Status != shows.StatusSoldOut {
		return nil, apperror.New(apperror.KindFailedPrecondition, "%q is not on sale", show.Name)
	}

	tier, err := s.catalog.GetTierByID(ctx, req.TierID)
	if err != nil {
		return nil, err
	}
	if tier.ShowID != show.ID {
		return nil, apperror.New(apperror.KindNotFound,
			"ticket tier %s does not belong to %q", req.TierID, show.Name)
	}

	sold, err := s.inventory.TierSold(ctx, tier.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify tier capacity: %w", err)
	}
	if sold < tier.MaxQuantity {
		return nil, apperror.New(apperror.KindResourceExhausted,
			"%q still has availability, book directly instead", tier.Name)
	}

	if existing, err := s.repo.GetActiveByUserAndTier(ctx, userID, tier.ID); err == nil && existing != nil {
		return nil, apperror.New(apperror.KindAlreadyExists,
			"you are already on the waitlist for %q", tier.Name)
	} else if err != nil && !apperror.IsKind(err, apperror.KindNotFound) {
		return nil, err
	}

	entry := &Entry{
		ShowID:    show.ID,
		TierID:    tier.ID,
		UserID:    userID,
		Email:     email,
		Quantity:  req.Quantity,
		Status:    EntryActive,
		ExpiresAt: show.StartsAt.Add(WaitlistExpiry),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create waitlist entry: %w", err)
	}

	now := time.Now()
	position, err := s.repo.Position(ctx, entry, now)
	if err != nil {
		return nil, fmt.Errorf("failed to compute queue position: %w", err)
	}

	resp := entry.ToResponse()
	resp.Position = position
	return &resp, nil
}

// Status reports a member's current queue position
func (s *service) Status(ctx context.Context, userID, showID, tierID uuid.UUID) (*EntryResponse, error) {
	entry, err := s.repo.GetActiveByUserAndTier(ctx, userID, tierID)
	if err != nil {
		return nil, err
	}
	if entry.ShowID != showID {
		return nil, apperror.New(apperror.KindNotFound, "no active waitlist entry for this tier")
	}

	now := time.Now()
	if entry.IsExpired(now) {
		return nil, apperror.New(apperror.KindNotFound, "your waitlist entry has expired")
	}

	position, err := s.repo.Position(ctx, entry, now)
	if err != nil {
		return nil, fmt.Errorf("failed to compute queue position: %w", err)
	}

	resp := entry.ToResponse()
	resp.Position = position
	return &resp, nil
}

// NotifyFreed signals opportunity to the oldest unexpired entrants, strict
// FIFO by join time. It only notifies; members still complete a normal
// booking afterward.
func (s *service) NotifyFreed(ctx context.Context, showID, tierID uuid.UUID, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, apperror.New(apperror.KindInvalidArgument, "freed quantity must be positive")
	}

	now := time.Now()
	entries, err := s.repo.OldestActive(ctx, tierID, quantity, now)
	if err != nil {
		return 0, fmt.Errorf("failed to load waitlist entries: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, 0, len(entries))
	for i := range entries {
		ids = append(ids, entries[i].ID)
	}
	if err := s.repo.MarkNotified(ctx, ids, now); err != nil {
		return 0, fmt.Errorf("failed to mark entries notified: %w", err)
	}

	for i := range entries {
		s.publishSpotAvailable(ctx, &entries[i], showID)
	}

	s.log.LogWaitlistNotified(ctx, tierID.String(), len(entries))
	return len(entries), nil
}

func (s *service) publishSpotAvailable(ctx context.Context, entry *Entry, showID uuid.UUID) {
	message := notifications.NewMessage(notifications.TypeWaitlistSpotAvailable, entry.Email)
	message.ShowID = &showID
	message.Data["tier_id"] = entry.TierID.String()
	message.Data["quantity"] = entry.Quantity

	if err := s.publisher.Publish(ctx, message); err != nil {
		s.log.ErrorWithContext(ctx, "waitlist notification failed", err, map[string]interface{}{
			"entry_id": entry.ID.String(),
		})
	}
}
