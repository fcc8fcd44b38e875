package shows

import (
	"context"
	"errors"
	"math"
	"time"

	"stagepass/internal/shared/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// Show operations
	CreateShow(ctx context.Context, show *Show) error
	GetShowByID(ctx context.Context, id uuid.UUID) (*Show, error)
	GetShowWithTiers(ctx context.Context, id uuid.UUID) (*Show, error)
	ListShows(ctx context.Context, query ShowListQuery) ([]Show, int64, error)
	UpdateShowStatus(ctx context.Context, id uuid.UUID, status ShowStatus, cancelledAt *time.Time) error

	// Tier operations
	CreateTier(ctx context.Context, tier *TicketTier) error
	GetTierByID(ctx context.Context, id uuid.UUID) (*TicketTier, error)
	GetTiersByShowID(ctx context.Context, showID uuid.UUID) ([]TicketTier, error)

	// Pricing phase operations
	CreatePhase(ctx context.Context, phase *PricingPhase) error
	GetPhasesByShowID(ctx context.Context, showID uuid.UUID) ([]PricingPhase, error)
	GetActivePhase(ctx context.Context, showID uuid.UUID, now time.Time) (*PricingPhase, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateShow(ctx context.Context, show *Show) error {
	return r.db.WithContext(ctx).Create(show).Error
}

func (r *repository) GetShowByID(ctx context.Context, id uuid.UUID) (*Show, error) {
	var show Show
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&show).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "show %s not found", id)
		}
		return nil, err
	}
	return &show, nil
}

func (r *repository) GetShowWithTiers(ctx context.Context, id uuid.UUID) (*Show, error) {
	var show Show
	err := r.db.WithContext(ctx).
		Preload("Tiers").
		Where("id = ?", id).
		First(&show).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "show %s not found", id)
		}
		return nil, err
	}
	return &show, nil
}

func (r *repository) ListShows(ctx context.Context, query ShowListQuery) ([]Show, int64, error) {
	var result []Show
	var totalCount int64

	// Set defaults
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	baseQuery := r.db.WithContext(ctx).Model(&Show{})

	if query.Status != "" {
		baseQuery = baseQuery.Where("status = ?", query.Status)
	}
	if query.Venue != "" {
		baseQuery = baseQuery.Where("venue ILIKE ?", "%"+query.Venue+"%")
	}
	if query.Search != "" {
		baseQuery = baseQuery.Where("name ILIKE ?", "%"+query.Search+"%")
	}

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Preload("Tiers").
		Order("starts_at ASC").
		Offset(offset).
		Limit(query.Limit).
		Find(&result).Error

	return result, totalCount, err
}

func (r *repository) UpdateShowStatus(ctx context.Context, id uuid.UUID, status ShowStatus, cancelledAt *time.Time) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if cancelledAt != nil {
		updates["cancelled_at"] = *cancelledAt
	}

	return r.db.WithContext(ctx).
		Model(&Show{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) CreateTier(ctx context.Context, tier *TicketTier) error {
	return r.db.WithContext(ctx).Create(tier).Error
}

func (r *repository) GetTierByID(ctx context.Context, id uuid.UUID) (*TicketTier, error) {
	var tier TicketTier
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "ticket tier %s not found", id)
		}
		return nil, err
	}
	return &tier, nil
}

func (r *repository) GetTiersByShowID(ctx context.Context, showID uuid.UUID) ([]TicketTier, error) {
	var tiers []TicketTier
	err := r.db.WithContext(ctx).
		Where("show_id = ?", showID).
		Order("base_price_usd ASC").
		Find(&tiers).Error
	return tiers, err
}

func (r *repository) CreatePhase(ctx context.Context, phase *PricingPhase) error {
	return r.db.WithContext(ctx).Create(phase).Error
}

func (r *repository) GetPhasesByShowID(ctx context.Context, showID uuid.UUID) ([]PricingPhase, error) {
	var phases []PricingPhase
	err := r.db.WithContext(ctx).
		Where("show_id = ?", showID).
		Order("starts_at ASC").
		Find(&phases).Error
	return phases, err
}

// GetActivePhase returns the phase with the highest starts_at whose window
// contains now. No row means no phase is current; callers must fail closed.
func (r *repository) GetActivePhase(ctx context.Context, showID uuid.UUID, now time.Time) (*PricingPhase, error) {
	var phase PricingPhase
	err := r.db.WithContext(ctx).
		Where("show_id = ? AND starts_at <= ? AND ends_at > ?", showID, now, now).
		Order("starts_at DESC").
		First(&phase).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &phase, nil
}

// CalculateTotalPages computes pagination metadata
func CalculateTotalPages(totalCount int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalCount) / float64(limit)))
}
