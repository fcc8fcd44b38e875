package inventory

import (
	"context"
	"errors"

	"stagepass/internal/shared/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	CreateSeats(ctx context.Context, seats []Seat) error
	CountSeats(ctx context.Context, showID uuid.UUID) (int64, error)
	GetSeatsByShow(ctx context.Context, showID uuid.UUID) ([]Seat, error)
	GetSeatByID(ctx context.Context, id uuid.UUID) (*Seat, error)
	SoldCounts(ctx context.Context, showID uuid.UUID) (map[uuid.UUID]int, error)
	TakenSeatIDs(ctx context.Context, showID uuid.UUID) (map[uuid.UUID]bool, error)
	TierSold(ctx context.Context, tierID uuid.UUID) (int, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSeats(ctx context.Context, seats []Seat) error {
	if len(seats) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(seats, 500).Error
}

func (r *repository) CountSeats(ctx context.Context, showID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Seat{}).
		Where("show_id = ?", showID).
		Count(&count).Error
	return count, err
}

func (r *repository) GetSeatsByShow(ctx context.Context, showID uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("show_id = ?", showID).
		Order("section ASC, row_label ASC, seat_number ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) GetSeatByID(ctx context.Context, id uuid.UUID) (*Seat, error) {
	var seat Seat
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&seat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "seat %s not found", id)
		}
		return nil, err
	}
	return &seat, nil
}

type tierCount struct {
	TierID uuid.UUID
	Count  int
}

// SoldCounts reports tickets holding inventory per tier. Pending tickets
// count because they hold capacity during the payment window.
func (r *repository) SoldCounts(ctx context.Context, showID uuid.UUID) (map[uuid.UUID]int, error) {
	var rows []tierCount
	err := r.db.WithContext(ctx).
		Table("tickets").
		Select("tier_id, COUNT(*) as count").
		Where("show_id = ? AND status IN ?", showID, []string{"pending", "active"}).
		Group("tier_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		counts[row.TierID] = row.Count
	}
	return counts, nil
}

// TakenSeatIDs reports which seats are referenced by an inventory-holding ticket
func (r *repository) TakenSeatIDs(ctx context.Context, showID uuid.UUID) (map[uuid.UUID]bool, error) {
	var seatIDs []uuid.UUID
	err := r.db.WithContext(ctx).
		Table("tickets").
		Select("seat_id").
		Where("show_id = ? AND seat_id IS NOT NULL AND status IN ?", showID, []string{"pending", "active"}).
		Scan(&seatIDs).Error
	if err != nil {
		return nil, err
	}

	taken := make(map[uuid.UUID]bool, len(seatIDs))
	for _, id := range seatIDs {
		taken[id] = true
	}
	return taken, nil
}

// TierSold counts inventory-holding tickets for one tier
func (r *repository) TierSold(ctx context.Context, tierID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("tickets").
		Where("tier_id = ? AND status IN ?", tierID, []string{"pending", "active"}).
		Count(&count).Error
	return int(count), err
}
