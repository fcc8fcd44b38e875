package bookings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stagepass/internal/inventory"
	"stagepass/internal/notifications"
	"stagepass/internal/payments"
	"stagepass/internal/pricing"
	"stagepass/internal/promos"
	"stagepass/internal/shared/apperror"
	"stagepass/internal/shows"
	"stagepass/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// GroupDiscountThreshold is the ticket count at which the group
	// discount applies
	GroupDiscountThreshold = 6
	// GroupDiscountPct is the flat group discount percentage
	GroupDiscountPct = 15.0
)

// ShowCatalog is the slice of the show repository the orchestrator needs
type ShowCatalog interface {
	GetShowWithTiers(ctx context.Context, id uuid.UUID) (*shows.Show, error)
	GetActivePhase(ctx context.Context, showID uuid.UUID, now time.Time) (*shows.PricingPhase, error)
}

// SeatReader resolves seats and display-grade sold counts. Commit-time
// capacity checks run inside the booking transaction, not through this.
type SeatReader interface {
	GetSeatByID(ctx context.Context, id uuid.UUID) (*inventory.Seat, error)
	SoldCounts(ctx context.Context, showID uuid.UUID) (map[uuid.UUID]int, error)
}

// PromoValidator validates codes and records usage inside the booking
// transaction
type PromoValidator interface {
	Validate(ctx context.Context, input promos.ValidateInput) (*promos.ValidationResult, error)
	IncrementUsageTx(tx *gorm.DB, id uuid.UUID) error
}

// WaitlistNotifier backfills the waitlist when inventory frees up
type WaitlistNotifier interface {
	NotifyFreed(ctx context.Context, showID, tierID uuid.UUID, quantity int) (int, error)
}

type Service interface {
	CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*CreateBookingResponse, error)
	CompleteBooking(ctx context.Context, sessionID string) (*CompleteBookingResponse, error)
	GetBooking(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*BookingResponse, error)
	ListUserBookings(ctx context.Context, userID uuid.UUID) ([]BookingResponse, error)
	CancelBooking(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*BookingResponse, error)
	ExpireStaleBookings(ctx context.Context, now time.Time) (int, error)
}

type service struct {
	repo      Repository
	catalog   ShowCatalog
	seats     SeatReader
	promo     PromoValidator
	gateway   payments.Gateway
	publisher notifications.Publisher
	waitlist  WaitlistNotifier
	holdTTL   time.Duration
	log       *logger.Logger
}

func NewService(
	repo Repository,
	catalog ShowCatalog,
	seats SeatReader,
	promo PromoValidator,
	gateway payments.Gateway,
	publisher notifications.Publisher,
	waitlist WaitlistNotifier,
	holdTTL time.Duration,
) Service {
	return &service{
		repo:      repo,
		catalog:   catalog,
		seats:     seats,
		promo:     promo,
		gateway:   gateway,
		publisher: publisher,
		waitlist:  waitlist,
		holdTTL:   holdTTL,
		log:       logger.GetDefault(),
	}
}

// CreateBooking validates, prices, and commits a purchase request. The
// capacity and seat checks run against locked rows inside one transaction;
// the checkout session is created after commit so a gateway outage cannot
// leave partial inventory holds.
func (s *service) CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*CreateBookingResponse, error) {
	now := time.Now()
	currency := pricing.Currency(req.Currency)

	if len(req.Lines) == 0 {
		return nil, apperror.New(apperror.KindInvalidArgument, "booking must contain at least one ticket line")
	}
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, apperror.New(apperror.KindInvalidArgument, "ticket quantity must be positive")
		}
	}

	show, err := s.catalog.GetShowWithTiers(ctx, req.ShowID)
	if err != nil {
		return nil, err
	}
	if !show.Status.IsSellable() {
		return nil, apperror.New(apperror.KindFailedPrecondition, "%q is not on sale", show.Name)
	}
	if !show.StartsAt.After(now) {
		return nil, apperror.New(apperror.KindFailedPrecondition, "%q has already started", show.Name)
	}

	phase, err := s.catalog.GetActivePhase(ctx, req.ShowID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve active phase: %w", err)
	}
	if phase == nil {
		return nil, apperror.New(apperror.KindFailedPrecondition,
			"no active pricing phase covers the current time")
	}

	// Sold counts here are a request-time snapshot: the quoted price,
	// including any surge, is fixed from the counts the buyer saw. Capacity
	// is re-checked against locked rows inside the reservation transaction.
	soldCounts, err := s.seats.SoldCounts(ctx, req.ShowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sold counts: %w", err)
	}

	tierByID := make(map[uuid.UUID]*shows.TicketTier, len(show.Tiers))
	for i := range show.Tiers {
		tierByID[show.Tiers[i].ID] = &show.Tiers[i]
	}

	priced, err := s.priceLines(ctx, show, phase, req.Lines, tierByID, soldCounts, currency)
	if err != nil {
		return nil, err
	}

	groupDiscount := 0.0
	if priced.totalQty >= GroupDiscountThreshold {
		groupDiscount = priced.subtotal * GroupDiscountPct / 100
	}
	afterGroup := priced.subtotal - groupDiscount

	promoDiscount := 0.0
	var promoID *uuid.UUID
	if req.PromoCode != "" {
		result, err := s.promo.Validate(ctx, promos.ValidateInput{
			Code:        req.PromoCode,
			ShowID:      show.ID,
			TierIDs:     priced.tierIDs,
			TicketCount: priced.totalQty,
			OrderAmount: afterGroup,
			Currency:    currency,
			Now:         now,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to validate promo code: %w", err)
		}
		if !result.IsValid {
			return nil, apperror.New(apperror.KindInvalidArgument, "%s", result.Reason)
		}
		promoDiscount = result.DiscountAmount
		parsed, err := uuid.Parse(result.PromoID)
		if err != nil {
			return nil, fmt.Errorf("invalid promo id from validator: %w", err)
		}
		promoID = &parsed
	}

	total := afterGroup - promoDiscount
	if total < 0 {
		total = 0
	}

	booking := &Booking{
		Reference:     newBookingReference(),
		ShowID:        show.ID,
		UserID:        userID,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		Currency:      currency.String(),
		TicketCount:   priced.totalQty,
		Subtotal:      priced.subtotal,
		GroupDiscount: groupDiscount,
		PromoDiscount: promoDiscount,
		PromoCodeID:   promoID,
		TotalAmount:   total,
		Status:        BookingPending,
		HoldExpiresAt: now.Add(s.holdTTL),
	}

	params := &CreateParams{
		Booking:   booking,
		Lines:     priced.lines,
		Tickets:   priced.tickets,
		TierNames: priced.tierNames,
	}
	if phase.MaxTickets != nil {
		params.PhaseCap = &PhaseCap{Since: phase.StartsAt, MaxTickets: *phase.MaxTickets}
	}
	if promoID != nil {
		id := *promoID
		params.IncrementPromo = func(tx *gorm.DB) error {
			return s.promo.IncrementUsageTx(tx, id)
		}
	}

	if err := s.repo.CreateWithInventoryCheck(ctx, params); err != nil {
		return nil, err
	}

	s.log.LogBookingCreated(ctx, booking.ID.String(), show.ID.String(), total, booking.Currency)

	resp := &CreateBookingResponse{
		TotalAmount: total,
		Discount:    groupDiscount + promoDiscount,
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, booking.Reference, total, booking.Currency, req.CustomerEmail)
	if err != nil {
		// The booking stays pending and the sweeper releases its hold if
		// the buyer never gets a working checkout
		s.log.ErrorWithContext(ctx, "checkout session creation failed", err, map[string]interface{}{
			"booking_id": booking.ID.String(),
		})
	} else {
		if err := s.repo.SetCheckoutSession(ctx, booking.ID, session.SessionID); err != nil {
			return nil, fmt.Errorf("failed to store checkout session: %w", err)
		}
		booking.CheckoutSessionID = &session.SessionID
		resp.CheckoutURL = session.URL
	}

	booking.Lines = priced.lines
	resp.Booking = booking.ToResponse()
	return resp, nil
}

type pricedRequest struct {
	lines     []BookingLine
	tickets   []Ticket
	tierIDs   []uuid.UUID
	tierNames map[uuid.UUID]string
	subtotal  float64
	totalQty  int
}

func (s *service) priceLines(
	ctx context.Context,
	show *shows.Show,
	phase *shows.PricingPhase,
	lines []BookingLineRequest,
	tierByID map[uuid.UUID]*shows.TicketTier,
	soldCounts map[uuid.UUID]int,
	currency pricing.Currency,
) (*pricedRequest, error) {
	priced := &pricedRequest{tierNames: make(map[uuid.UUID]string)}
	seenSeats := make(map[uuid.UUID]bool)

	for _, line := range lines {
		tier, exists := tierByID[line.TierID]
		if !exists {
			return nil, apperror.New(apperror.KindNotFound,
				"ticket tier %s does not belong to %q", line.TierID, show.Name)
		}
		if !tier.Active {
			return nil, apperror.New(apperror.KindFailedPrecondition,
				"%q is not currently on sale", tier.Name)
		}

		if len(line.SeatIDs) > 0 {
			if !tier.Type.HasSeats() {
				return nil, apperror.New(apperror.KindInvalidArgument,
					"%q is a standing tier and does not take seat selections", tier.Name)
			}
			if len(line.SeatIDs) != line.Quantity {
				return nil, apperror.New(apperror.KindInvalidArgument,
					"%q: seat selection must match quantity (%d seats for %d tickets)",
					tier.Name, len(line.SeatIDs), line.Quantity)
			}
			for _, seatID := range line.SeatIDs {
				if seenSeats[seatID] {
					return nil, apperror.New(apperror.KindInvalidArgument,
						"seat %s selected more than once", seatID)
				}
				seenSeats[seatID] = true

				seat, err := s.seats.GetSeatByID(ctx, seatID)
				if err != nil {
					return nil, err
				}
				if seat.ShowID != show.ID || seat.TierID != tier.ID {
					return nil, apperror.New(apperror.KindInvalidArgument,
						"seat %s%d does not belong to %q", seat.RowLabel, seat.SeatNumber, tier.Name)
				}
				if seat.Status != inventory.SeatAvailable {
					return nil, apperror.New(apperror.KindFailedPrecondition,
						"seat %s%d is not available", seat.RowLabel, seat.SeatNumber)
				}
			}
		}

		basePrice := tier.BasePriceUSD
		if currency == pricing.CurrencyCOP {
			basePrice = tier.BasePriceCOP
		}
		quote, err := pricing.Calculate(basePrice, phase, soldCounts[tier.ID], tier.MaxQuantity, currency)
		if err != nil {
			return nil, err
		}

		priced.lines = append(priced.lines, BookingLine{
			TierID:    tier.ID,
			TierName:  tier.Name,
			Quantity:  line.Quantity,
			UnitPrice: quote.UnitPrice,
		})
		priced.tierIDs = append(priced.tierIDs, tier.ID)
		priced.tierNames[tier.ID] = tier.Name
		priced.subtotal += quote.UnitPrice * float64(line.Quantity)
		priced.totalQty += line.Quantity

		for i := 0; i < line.Quantity; i++ {
			ticket := Ticket{
				ShowID: show.ID,
				TierID: tier.ID,
				Status: TicketPending,
			}
			if len(line.SeatIDs) > 0 {
				seatID := line.SeatIDs[i]
				ticket.SeatID = &seatID
			}
			priced.tickets = append(priced.tickets, ticket)
		}
	}

	return priced, nil
}

// CompleteBooking confirms payment and issues tickets. Safe to call more
// than once for the same session; the second call returns the already
// issued ticket set.
func (s *service) CompleteBooking(ctx context.Context, sessionID string) (*CompleteBookingResponse, error) {
	confirmed, err := s.gateway.ConfirmPayment(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !confirmed {
		return nil, apperror.New(apperror.KindFailedPrecondition,
			"payment for session %s is not confirmed", sessionID)
	}

	booking, already, err := s.repo.CompleteBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !already {
		s.log.LogBookingCompleted(ctx, booking.ID.String(), len(booking.Tickets))
		s.publishConfirmation(ctx, booking)
	}

	resp := &CompleteBookingResponse{Booking: booking.ToResponse()}
	for i := range booking.Tickets {
		resp.Tickets = append(resp.Tickets, booking.Tickets[i].ToResponse())
	}
	return resp, nil
}

func (s *service) GetBooking(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && booking.UserID != userID {
		return nil, apperror.New(apperror.KindNotFound, "booking %s not found", id)
	}
	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) ListUserBookings(ctx context.Context, userID uuid.UUID) ([]BookingResponse, error) {
	bookingList, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	responses := make([]BookingResponse, 0, len(bookingList))
	for i := range bookingList {
		responses = append(responses, bookingList[i].ToResponse())
	}
	return responses, nil
}

// CancelBooking releases the booking's inventory and backfills the waitlist
// with the freed quantities
func (s *service) CancelBooking(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*BookingResponse, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && existing.UserID != userID {
		return nil, apperror.New(apperror.KindNotFound, "booking %s not found", id)
	}

	booking, freed, err := s.repo.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}

	s.log.LogBookingCancelled(ctx, booking.ID.String(), booking.ShowID.String())
	s.backfillWaitlist(ctx, freed)
	s.publishCancellation(ctx, booking)

	resp := booking.ToResponse()
	return &resp, nil
}

// ExpireStaleBookings releases holds whose payment window has lapsed
func (s *service) ExpireStaleBookings(ctx context.Context, now time.Time) (int, error) {
	expired, freed, err := s.repo.ExpireStale(ctx, now)
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		s.log.InfoWithContext(ctx, "expired stale bookings", map[string]interface{}{
			"count": expired,
		})
		s.backfillWaitlist(ctx, freed)
	}
	return expired, nil
}

func (s *service) backfillWaitlist(ctx context.Context, freed []FreedInventory) {
	for _, f := range freed {
		notified, err := s.waitlist.NotifyFreed(ctx, f.ShowID, f.TierID, f.Quantity)
		if err != nil {
			s.log.ErrorWithContext(ctx, "waitlist backfill failed", err, map[string]interface{}{
				"tier_id": f.TierID.String(),
			})
			continue
		}
		if notified > 0 {
			s.log.LogWaitlistNotified(ctx, f.TierID.String(), notified)
		}
	}
}

func (s *service) publishConfirmation(ctx context.Context, booking *Booking) {
	message := notifications.NewMessage(notifications.TypeBookingConfirmed, booking.CustomerEmail)
	message.RecipientName = booking.CustomerName
	message.ShowID = &booking.ShowID
	message.BookingID = &booking.ID
	message.Data["reference"] = booking.Reference
	message.Data["total_amount"] = booking.TotalAmount
	message.Data["currency"] = booking.Currency
	message.Data["ticket_count"] = booking.TicketCount

	if err := s.publisher.Publish(ctx, message); err != nil {
		s.log.ErrorWithContext(ctx, "confirmation notification failed", err, map[string]interface{}{
			"booking_id": booking.ID.String(),
		})
	}
}

func (s *service) publishCancellation(ctx context.Context, booking *Booking) {
	message := notifications.NewMessage(notifications.TypeBookingCancelled, booking.CustomerEmail)
	message.RecipientName = booking.CustomerName
	message.ShowID = &booking.ShowID
	message.BookingID = &booking.ID
	message.Data["reference"] = booking.Reference

	if err := s.publisher.Publish(ctx, message); err != nil {
		s.log.ErrorWithContext(ctx, "cancellation notification failed", err, map[string]interface{}{
			"booking_id": booking.ID.String(),
		})
	}
}

func newBookingReference() string {
	return "BK-" + strings.ToUpper(uuid.NewString()[:8])
}
