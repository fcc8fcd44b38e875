package bookings

import (
	"context"
	"testing"
	"time"

	"stagepass/internal/inventory"
	"stagepass/internal/notifications"
	"stagepass/internal/payments"
	"stagepass/internal/promos"
	"stagepass/internal/shared/apperror"
	"stagepass/internal/shows"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeBookingRepo struct {
	bookings map[uuid.UUID]*Booking
	promoInc int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*Booking)}
}

func (f *fakeBookingRepo) CreateWithInventoryCheck(ctx context.Context, params *CreateParams) error {
	params.Booking.ID = uuid.New()
	for i := range params.Lines {
		params.Lines[i].BookingID = params.Booking.ID
	}
	for i := range params.Tickets {
		params.Tickets[i].ID = uuid.New()
		params.Tickets[i].BookingID = params.Booking.ID
	}
	params.Booking.Lines = params.Lines
	params.Booking.Tickets = params.Tickets
	f.bookings[params.Booking.ID] = params.Booking

	if params.IncrementPromo != nil {
		f.promoInc++
		if err := params.IncrementPromo(nil); err != nil {
			// Transaction semantics: the booking rolls back with the failure
			delete(f.bookings, params.Booking.ID)
			return err
		}
	}
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	booking, exists := f.bookings[id]
	if !exists {
		return nil, apperror.New(apperror.KindNotFound, "booking %s not found", id)
	}
	return booking, nil
}

func (f *fakeBookingRepo) GetByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	var out []Booking
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	booking, exists := f.bookings[id]
	if !exists {
		return apperror.New(apperror.KindNotFound, "booking %s not found", id)
	}
	booking.CheckoutSessionID = &sessionID
	return nil
}

func (f *fakeBookingRepo) CompleteBySession(ctx context.Context, sessionID string) (*Booking, bool, error) {
	for _, b := range f.bookings {
		if b.CheckoutSessionID != nil && *b.CheckoutSessionID == sessionID {
			if b.Status == BookingConfirmed {
				return b, true, nil
			}
			if b.Status != BookingPending {
				return nil, false, apperror.New(apperror.KindFailedPrecondition,
					"booking %s is %s and cannot be completed", b.Reference, b.Status)
			}
			b.Status = BookingConfirmed
			for i := range b.Tickets {
				b.Tickets[i].Status = TicketActive
				b.Tickets[i].TicketNumber = newTicketNumber()
				b.Tickets[i].ScanCode = uuid.NewString()
			}
			return b, false, nil
		}
	}
	return nil, false, apperror.New(apperror.KindNotFound, "no booking found for checkout session %s", sessionID)
}

func (f *fakeBookingRepo) Cancel(ctx context.Context, id uuid.UUID) (*Booking, []FreedInventory, error) {
	booking, exists := f.bookings[id]
	if !exists {
		return nil, nil, apperror.New(apperror.KindNotFound, "booking %s not found", id)
	}
	if !booking.Status.CanTransitionTo(BookingCancelled) {
		return nil, nil, apperror.New(apperror.KindFailedPrecondition,
			"booking %s is %s and cannot be cancelled", booking.Reference, booking.Status)
	}

	byTier := make(map[uuid.UUID]int)
	for i := range booking.Tickets {
		if booking.Tickets[i].Status.HoldsInventory() {
			byTier[booking.Tickets[i].TierID]++
			booking.Tickets[i].Status = TicketCancelled
		}
	}
	booking.Status = BookingCancelled

	var freed []FreedInventory
	for tierID, qty := range byTier {
		freed = append(freed, FreedInventory{ShowID: booking.ShowID, TierID: tierID, Quantity: qty})
	}
	return booking, freed, nil
}

func (f *fakeBookingRepo) ExpireStale(ctx context.Context, now time.Time) (int, []FreedInventory, error) {
	expired := 0
	var freed []FreedInventory
	for _, b := range f.bookings {
		if b.Status == BookingPending && b.HoldExpiresAt.Before(now) {
			b.Status = BookingExpired
			for i := range b.Tickets {
				if b.Tickets[i].Status.HoldsInventory() {
					freed = append(freed, FreedInventory{ShowID: b.ShowID, TierID: b.Tickets[i].TierID, Quantity: 1})
					b.Tickets[i].Status = TicketCancelled
				}
			}
			expired++
		}
	}
	return expired, freed, nil
}

type fakeShowCatalog struct {
	show  *shows.Show
	phase *shows.PricingPhase
}

func (f *fakeShowCatalog) GetShowWithTiers(ctx context.Context, id uuid.UUID) (*shows.Show, error) {
	if f.show == nil || f.show.ID != id {
		return nil, apperror.New(apperror.KindNotFound, "show %s not found", id)
	}
	return f.show, nil
}

func (f *fakeShowCatalog) GetActivePhase(ctx context.Context, showID uuid.UUID, now time.Time) (*shows.PricingPhase, error) {
	return f.phase, nil
}

type fakeSeatReader struct {
	seats map[uuid.UUID]*inventory.Seat
	sold  map[uuid.UUID]int
}

func (f *fakeSeatReader) GetSeatByID(ctx context.Context, id uuid.UUID) (*inventory.Seat, error) {
	seat, exists := f.seats[id]
	if !exists {
		return nil, apperror.New(apperror.KindNotFound, "seat %s not found", id)
	}
	return seat, nil
}

func (f *fakeSeatReader) SoldCounts(ctx context.Context, showID uuid.UUID) (map[uuid.UUID]int, error) {
	return f.sold, nil
}

type fakePromoValidator struct {
	result       *promos.ValidationResult
	incrementErr error
}

func (f *fakePromoValidator) Validate(ctx context.Context, input promos.ValidateInput) (*promos.ValidationResult, error) {
	if f.result != nil {
		return f.result, nil
	}
	return &promos.ValidationResult{IsValid: false, Reason: "promo code does not exist", FinalAmount: input.OrderAmount}, nil
}

func (f *fakePromoValidator) IncrementUsageTx(tx *gorm.DB, id uuid.UUID) error {
	return f.incrementErr
}

type fakeWaitlist struct {
	calls []FreedInventory
}

func (f *fakeWaitlist) NotifyFreed(ctx context.Context, showID, tierID uuid.UUID, quantity int) (int, error) {
	f.calls = append(f.calls, FreedInventory{ShowID: showID, TierID: tierID, Quantity: quantity})
	return 1, nil
}

type fixture struct {
	svc      Service
	repo     *fakeBookingRepo
	catalog  *fakeShowCatalog
	gateway  *payments.MockGateway
	waitlist *fakeWaitlist
	promo    *fakePromoValidator
	show     *shows.Show
	tier     *shows.TicketTier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	showID := uuid.New()
	tier := shows.TicketTier{
		ID:           uuid.New(),
		ShowID:       showID,
		Name:         "Standard",
		Type:         shows.TierStandard,
		BasePriceUSD: 100,
		BasePriceCOP: 400000,
		MaxQuantity:  100,
		Active:       true,
	}
	show := &shows.Show{
		ID:       showID,
		Name:     "Midnight Run",
		Status:   shows.StatusPublished,
		StartsAt: time.Now().Add(72 * time.Hour),
		Tiers:    []shows.TicketTier{tier},
	}
	phase := &shows.PricingPhase{
		ID:       uuid.New(),
		ShowID:   showID,
		Name:     "general",
		StartsAt: time.Now().Add(-24 * time.Hour),
		EndsAt:   time.Now().Add(48 * time.Hour),
	}

	repo := newFakeBookingRepo()
	catalog := &fakeShowCatalog{show: show, phase: phase}
	gateway := payments.NewMockGateway("")
	wl := &fakeWaitlist{}
	promo := &fakePromoValidator{}

	svc := NewService(repo, catalog, &fakeSeatReader{
		seats: make(map[uuid.UUID]*inventory.Seat),
		sold:  make(map[uuid.UUID]int),
	}, promo, gateway, notifications.NopPublisher{}, wl, 15*time.Minute)

	return &fixture{
		svc: svc, repo: repo, catalog: catalog, gateway: gateway,
		waitlist: wl, promo: promo, show: show, tier: &tier,
	}
}

func standardRequest(f *fixture, qty int) CreateBookingRequest {
	return CreateBookingRequest{
		ShowID:        f.show.ID,
		Currency:      "USD",
		Lines:         []BookingLineRequest{{TierID: f.tier.ID, Quantity: qty}},
		CustomerEmail: "buyer@example.com",
		CustomerName:  "Buyer",
	}
}

func TestCreateBookingGroupDiscountWorkedExample(t *testing.T) {
	f := newFixture(t)

	// 6 standard tickets at $100: subtotal 600, group discount 90, total 510
	resp, err := f.svc.CreateBooking(context.Background(), uuid.New(), standardRequest(f, 6))
	require.NoError(t, err)

	assert.Equal(t, 600.0, resp.Booking.Subtotal)
	assert.Equal(t, 90.0, resp.Booking.GroupDiscount)
	assert.Equal(t, 510.0, resp.TotalAmount)
	assert.NotEmpty(t, resp.CheckoutURL)
	assert.Equal(t, 6, resp.Booking.TicketCount)
}

func TestCreateBookingPromoAppliesAfterGroupDiscount(t *testing.T) {
	f := newFixture(t)
	promoID := uuid.New()
	// 10% of the post-group amount 510
	f.promo.result = &promos.ValidationResult{
		IsValid:        true,
		DiscountAmount: 51,
		FinalAmount:    459,
		PromoID:        promoID.String(),
	}

	req := standardRequest(f, 6)
	req.PromoCode = "SAVE10"

	resp, err := f.svc.CreateBooking(context.Background(), uuid.New(), req)
	require.NoError(t, err)

	assert.Equal(t, 90.0, resp.Booking.GroupDiscount)
	assert.Equal(t, 51.0, resp.Booking.PromoDiscount)
	assert.Equal(t, 459.0, resp.TotalAmount)
	assert.Equal(t, 1, f.repo.promoInc, "promo usage recorded in the booking transaction")
}

func TestCreateBookingRolledBackWhenPromoUsesExhausted(t *testing.T) {
	f := newFixture(t)

	// Validation saw a remaining use, but another booking claimed it before
	// the guarded increment ran inside the transaction
	f.promo.result = &promos.ValidationResult{
		IsValid:        true,
		DiscountAmount: 20,
		FinalAmount:    180,
		PromoID:        uuid.NewString(),
	}
	f.promo.incrementErr = apperror.New(apperror.KindFailedPrecondition,
		"promo code has no remaining uses")

	req := standardRequest(f, 2)
	req.PromoCode = "LASTUSE"

	_, err := f.svc.CreateBooking(context.Background(), uuid.New(), req)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindFailedPrecondition))
	assert.Empty(t, f.repo.bookings, "no booking survives a failed promo increment")
}

func TestCreateBookingBelowGroupThreshold(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.CreateBooking(context.Background(), uuid.New(), standardRequest(f, 5))
	require.NoError(t, err)
	assert.Zero(t, resp.Booking.GroupDiscount)
	assert.Equal(t, 500.0, resp.TotalAmount)
}

func TestCreateBookingInvalidPromoRejected(t *testing.T) {
	f := newFixture(t)

	req := standardRequest(f, 2)
	req.PromoCode = "NOPE"

	_, err := f.svc.CreateBooking(context.Background(), uuid.New(), req)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))
	assert.Contains(t, err.Error(), "does not exist")
}

func TestCreateBookingValidationFailures(t *testing.T) {
	t.Run("empty lines", func(t *testing.T) {
		f := newFixture(t)
		req := standardRequest(f, 1)
		req.Lines = nil
		_, err := f.svc.CreateBooking(context.Background(), uuid.New(), req)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))
	})

	t.Run("show not published", func(t *testing.T) {
		f := newFixture(t)
		f.show.Status = shows.StatusDraft
		_, err := f.svc.CreateBooking(context.Background(), uuid.New(), standardRequest(f, 1))
		assert.True(t, apperror.IsKind(err, apperror.KindFailedPrecondition))
	})

	t.Run("show already started", func(t *testing.T) {
		f := newFixture(t)
		f.show.StartsAt = time.Now().Add(-time.Hour)
		_, err := f.svc.CreateBooking(context.Background(), uuid.New(), standardRequest(f, 1))
		assert.True(t, apperror.IsKind(err, apperror.KindFailedPrecondition))
	})

	t.Run("no active phase fails closed", func(t *testing.T) {
		f := newFixture(t)
		f.catalog.phase = nil
		_, err := f.svc.CreateBooking(context.Background(), uuid.New(), standardRequest(f, 1))
		assert.True(t, apperror.IsKind(err, apperror.KindFailedPrecondition))
	})

	t.Run("unknown tier", func(t *testing.T) {
		f := newFixture(t)
		req := standardRequest(f, 1)
		req.Lines[0].TierID = uuid.New()
		_, err := f.svc.CreateBooking(context.Background(), uuid.New(), req)
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})

	t.Run("seat count mismatch", func(t *testing.T) {
		f := newFixture(t)
		req := standardRequest(f, 2)
		req.Lines[0].SeatIDs = []uuid.UUID{uuid.New()}
		_, err := f.svc.CreateBooking(context.Background(), uuid.New(), req)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument))
	})
}

func TestCompleteBookingIsIdempotent(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	created, err := f.svc.CreateBooking(context.Background(), userID, standardRequest(f, 3))
	require.NoError(t, err)

	var sessionID string
	for _, b := range f.repo.bookings {
		require.NotNil(t, b.CheckoutSessionID)
		sessionID = *b.CheckoutSessionID
	}

	first, err := f.svc.CompleteBooking(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, BookingConfirmed, first.Booking.Status)
	require.Len(t, first.Tickets, 3)
	for _, ticket := range first.Tickets {
		assert.Equal(t, TicketActive, ticket.Status)
		assert.NotEmpty(t, ticket.TicketNumber)
		assert.NotEmpty(t, ticket.ScanCode)
	}

	second, err := f.svc.CompleteBooking(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, second.Tickets, 3, "no duplicate tickets on re-entry")
	assert.ElementsMatch(t, ticketIDs(first.Tickets), ticketIDs(second.Tickets))

	_ = created
}

func TestCompleteBookingUnknownSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CompleteBooking(context.Background(), "cs_missing")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestCancelBookingNotifiesWaitlist(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	created, err := f.svc.CreateBooking(context.Background(), userID, standardRequest(f, 4))
	require.NoError(t, err)
	bookingID := uuid.MustParse(created.Booking.ID)

	cancelled, err := f.svc.CancelBooking(context.Background(), bookingID, userID, false)
	require.NoError(t, err)
	assert.Equal(t, BookingCancelled, cancelled.Status)

	require.Len(t, f.waitlist.calls, 1)
	assert.Equal(t, f.tier.ID, f.waitlist.calls[0].TierID)
	assert.Equal(t, 4, f.waitlist.calls[0].Quantity)
}

func TestCancelBookingOwnershipEnforced(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	created, err := f.svc.CreateBooking(context.Background(), owner, standardRequest(f, 1))
	require.NoError(t, err)
	bookingID := uuid.MustParse(created.Booking.ID)

	_, err = f.svc.CancelBooking(context.Background(), bookingID, uuid.New(), false)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	// Admins may cancel any booking
	_, err = f.svc.CancelBooking(context.Background(), bookingID, uuid.New(), true)
	assert.NoError(t, err)
}

func TestExpireStaleBookingsReleasesInventory(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	_, err := f.svc.CreateBooking(context.Background(), userID, standardRequest(f, 2))
	require.NoError(t, err)

	expired, err := f.svc.ExpireStaleBookings(context.Background(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	assert.NotEmpty(t, f.waitlist.calls)
}

func ticketIDs(tickets []TicketResponse) []string {
	ids := make([]string, 0, len(tickets))
	for _, t := range tickets {
		ids = append(ids, t.ID)
	}
	return ids
}
