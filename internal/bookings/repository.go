package bookings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"stagepass/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PhaseCap carries an active phase's optional ticket limit into the
// booking transaction
type PhaseCap struct {
	Since      time.Time
	MaxTickets int
}

// CreateParams is everything the booking transaction needs. Capacity and
// seat checks run against locked rows inside the transaction; values the
// service computed beforehand are display-path only.
type CreateParams struct {
	Booking        *Booking
	Lines          []BookingLine
	Tickets        []Ticket
	TierNames      map[uuid.UUID]string
	PhaseCap       *PhaseCap
	IncrementPromo func(tx *gorm.DB) error
}

// FreedInventory describes capacity released by a cancellation or expiry
type FreedInventory struct {
	ShowID   uuid.UUID
	TierID   uuid.UUID
	Quantity int
}

type Repository interface {
	CreateWithInventoryCheck(ctx context.Context, params *CreateParams) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error)
	SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error
	CompleteBySession(ctx context.Context, sessionID string) (*Booking, bool, error)
	Cancel(ctx context.Context, id uuid.UUID) (*Booking, []FreedInventory, error)
	ExpireStale(ctx context.Context, now time.Time) (int, []FreedInventory, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type lockedTier struct {
	ID          uuid.UUID
	MaxQuantity int
}

type tierSold struct {
	TierID uuid.UUID
	Count  int
}

// CreateWithInventoryCheck persists a booking, its lines, and its pending
// tickets atomically. Tier rows are locked FOR UPDATE so the capacity check
// and the insert are a single step relative to concurrent buyers; the
// partial unique index on tickets(seat_id) backstops seat uniqueness.
func (r *repository) CreateWithInventoryCheck(ctx context.Context, params *CreateParams) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requested := make(map[uuid.UUID]int)
		var seatIDs []uuid.UUID
		for i := range params.Tickets {
			requested[params.Tickets[i].TierID]++
			if params.Tickets[i].SeatID != nil {
				seatIDs = append(seatIDs, *params.Tickets[i].SeatID)
			}
		}

		// Lock tiers in a stable order so concurrent bookings for the same
		// tiers cannot deadlock
		tierIDs := make([]uuid.UUID, 0, len(requested))
		for id := range requested {
			tierIDs = append(tierIDs, id)
		}
		sort.Slice(tierIDs, func(i, j int) bool {
			return strings.Compare(tierIDs[i].String(), tierIDs[j].String()) < 0
		})

		var tiers []lockedTier
		err := tx.Table("ticket_tiers").
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id, max_quantity").
			Where("id IN ?", tierIDs).
			Order("id").
			Find(&tiers).Error
		if err != nil {
			return fmt.Errorf("failed to lock tiers: %w", err)
		}
		if len(tiers) != len(tierIDs) {
			return apperror.New(apperror.KindNotFound, "one or more ticket tiers no longer exist")
		}

		var soldRows []tierSold
		err = tx.Table("tickets").
			Select("tier_id, COUNT(*) as count").
			Where("tier_id IN ? AND status IN ?", tierIDs, holdingStatuses()).
			Group("tier_id").
			Scan(&soldRows).Error
		if err != nil {
			return fmt.Errorf("failed to count sold tickets: %w", err)
		}
		sold := make(map[uuid.UUID]int, len(soldRows))
		for _, row := range soldRows {
			sold[row.TierID] = row.Count
		}

		for _, tier := range tiers {
			name := params.TierNames[tier.ID]
			remaining := tier.MaxQuantity - sold[tier.ID]
			if remaining <= 0 {
				return apperror.New(apperror.KindResourceExhausted, "%q is sold out", name)
			}
			if requested[tier.ID] > remaining {
				return apperror.New(apperror.KindResourceExhausted,
					"only %d tickets left in %q", remaining, name)
			}
		}

		if params.PhaseCap != nil {
			var phaseSold int64
			err = tx.Table("tickets").
				Where("show_id = ? AND status IN ? AND created_at >= ?",
					params.Booking.ShowID, holdingStatuses(), params.PhaseCap.Since).
				Count(&phaseSold).Error
			if err != nil {
				return fmt.Errorf("failed to count phase sales: %w", err)
			}
			if int(phaseSold)+len(params.Tickets) > params.PhaseCap.MaxTickets {
				return apperror.New(apperror.KindResourceExhausted,
					"the current pricing phase has sold out its allocation")
			}
		}

		if len(seatIDs) > 0 {
			var takenCount int64
			err = tx.Table("tickets").
				Where("seat_id IN ? AND status IN ?", seatIDs, holdingStatuses()).
				Count(&takenCount).Error
			if err != nil {
				return fmt.Errorf("failed to check seat holds: %w", err)
			}
			if takenCount > 0 {
				return apperror.New(apperror.KindResourceExhausted,
					"one or more selected seats were just taken")
			}
		}

		if err := tx.Create(params.Booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		for i := range params.Lines {
			params.Lines[i].BookingID = params.Booking.ID
		}
		if err := tx.Create(&params.Lines).Error; err != nil {
			return fmt.Errorf("failed to create booking lines: %w", err)
		}

		for i := range params.Tickets {
			params.Tickets[i].BookingID = params.Booking.ID
		}
		if err := tx.Create(&params.Tickets).Error; err != nil {
			// The partial unique index rejects a seat raced by another
			// transaction between our check and this insert
			if isDuplicateKey(err) {
				return apperror.New(apperror.KindResourceExhausted,
					"one or more selected seats were just taken")
			}
			return fmt.Errorf("failed to create tickets: %w", err)
		}

		if params.IncrementPromo != nil {
			if err := params.IncrementPromo(tx); err != nil {
				return fmt.Errorf("failed to record promo usage: %w", err)
			}
		}

		return nil
	})
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Tickets").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "booking %s not found", id)
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	var result []Booking
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&result).Error
	return result, err
}

func (r *repository) SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	return r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ?", id).
		Update("checkout_session_id", sessionID).Error
}

// CompleteBySession confirms a booking and issues its tickets. Idempotent:
// a booking already confirmed is returned unchanged with the second return
// value true, and no new ticket rows are created.
func (r *repository) CompleteBySession(ctx context.Context, sessionID string) (*Booking, bool, error) {
	var booking Booking
	var already bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("checkout_session_id = ?", sessionID).
			First(&booking).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.KindNotFound,
					"no booking found for checkout session %s", sessionID)
			}
			return err
		}

		if booking.Status == BookingConfirmed {
			already = true
			return tx.Where("booking_id = ?", booking.ID).Find(&booking.Tickets).Error
		}
		if booking.Status != BookingPending {
			return apperror.New(apperror.KindFailedPrecondition,
				"booking %s is %s and cannot be completed", booking.Reference, booking.Status)
		}

		err = tx.Model(&Booking{}).
			Where("id = ?", booking.ID).
			Update("status", BookingConfirmed).Error
		if err != nil {
			return fmt.Errorf("failed to confirm booking: %w", err)
		}
		booking.Status = BookingConfirmed

		var tickets []Ticket
		if err := tx.Where("booking_id = ?", booking.ID).Find(&tickets).Error; err != nil {
			return err
		}

		for i := range tickets {
			if tickets[i].Status != TicketPending {
				continue
			}
			tickets[i].Status = TicketActive
			tickets[i].TicketNumber = newTicketNumber()
			tickets[i].ScanCode = uuid.NewString()

			err := tx.Model(&Ticket{}).
				Where("id = ?", tickets[i].ID).
				Updates(map[string]interface{}{
					"status":        TicketActive,
					"ticket_number": tickets[i].TicketNumber,
					"scan_code":     tickets[i].ScanCode,
				}).Error
			if err != nil {
				return fmt.Errorf("failed to issue ticket: %w", err)
			}
		}
		booking.Tickets = tickets
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &booking, already, nil
}

// Cancel releases a booking's inventory and reports the freed quantities so
// the waitlist can be backfilled.
func (r *repository) Cancel(ctx context.Context, id uuid.UUID) (*Booking, []FreedInventory, error) {
	var booking Booking
	var freed []FreedInventory

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&booking).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.KindNotFound, "booking %s not found", id)
			}
			return err
		}

		if !booking.Status.CanTransitionTo(BookingCancelled) {
			return apperror.New(apperror.KindFailedPrecondition,
				"booking %s is %s and cannot be cancelled", booking.Reference, booking.Status)
		}

		var err2 error
		freed, err2 = releaseTickets(tx, &booking)
		if err2 != nil {
			return err2
		}

		err = tx.Model(&Booking{}).
			Where("id = ?", booking.ID).
			Update("status", BookingCancelled).Error
		if err != nil {
			return fmt.Errorf("failed to cancel booking: %w", err)
		}
		booking.Status = BookingCancelled
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &booking, freed, nil
}

// ExpireStale cancels pending bookings whose payment hold has lapsed and
// returns the freed inventory. Run by the sweeper job.
func (r *repository) ExpireStale(ctx context.Context, now time.Time) (int, []FreedInventory, error) {
	var expired int
	var freed []FreedInventory

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stale []Booking
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ? AND hold_expires_at < ?", BookingPending, now).
			Find(&stale).Error
		if err != nil {
			return err
		}

		for i := range stale {
			released, err := releaseTickets(tx, &stale[i])
			if err != nil {
				return err
			}
			freed = append(freed, released...)

			err = tx.Model(&Booking{}).
				Where("id = ?", stale[i].ID).
				Update("status", BookingExpired).Error
			if err != nil {
				return fmt.Errorf("failed to expire booking: %w", err)
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return expired, freed, nil
}

// releaseTickets cancels a booking's inventory-holding tickets inside tx and
// reports the freed quantity per tier
func releaseTickets(tx *gorm.DB, booking *Booking) ([]FreedInventory, error) {
	var tickets []Ticket
	err := tx.Where("booking_id = ? AND status IN ?", booking.ID, holdingStatuses()).
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}

	byTier := make(map[uuid.UUID]int)
	for i := range tickets {
		byTier[tickets[i].TierID]++
	}

	err = tx.Model(&Ticket{}).
		Where("booking_id = ? AND status IN ?", booking.ID, holdingStatuses()).
		Update("status", TicketCancelled).Error
	if err != nil {
		return nil, fmt.Errorf("failed to cancel tickets: %w", err)
	}

	freed := make([]FreedInventory, 0, len(byTier))
	for tierID, qty := range byTier {
		freed = append(freed, FreedInventory{
			ShowID:   booking.ShowID,
			TierID:   tierID,
			Quantity: qty,
		})
	}
	return freed, nil
}

// isDuplicateKey matches unique-constraint violations both as gorm's
// translated error and as the raw postgres SQLSTATE 23505, since the
// translated form depends on the connection's TranslateError setting
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func holdingStatuses() []string {
	return []string{string(TicketPending), string(TicketActive)}
}

func newTicketNumber() string {
	return "TKT-" + strings.ToUpper(uuid.NewString()[:8])
}
