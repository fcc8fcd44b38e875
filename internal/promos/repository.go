package promos

import (
	"context"
	"errors"
	"strings"

	"stagepass/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, promo *PromoCode) error
	GetByCode(ctx context.Context, code string) (*PromoCode, error)
	GetByID(ctx context.Context, id uuid.UUID) (*PromoCode, error)
	List(ctx context.Context) ([]PromoCode, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	IncrementUsageTx(tx *gorm.DB, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, promo *PromoCode) error {
	promo.Code = strings.ToUpper(promo.Code)

	var count int64
	if err := r.db.WithContext(ctx).Model(&PromoCode{}).
		Where("code = ?", promo.Code).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperror.New(apperror.KindAlreadyExists, "promo code %q already exists", promo.Code)
	}

	if err := r.db.WithContext(ctx).Create(promo).Error; err != nil {
		if isDuplicateKey(err) {
			return apperror.New(apperror.KindAlreadyExists, "promo code %q already exists", promo.Code)
		}
		return err
	}
	return nil
}

func (r *repository) GetByCode(ctx context.Context, code string) (*PromoCode, error) {
	var promo PromoCode
	err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(code)).
		First(&promo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "promo code %q not found", code)
		}
		return nil, err
	}
	return &promo, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*PromoCode, error) {
	var promo PromoCode
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&promo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "promo code %s not found", id)
		}
		return nil, err
	}
	return &promo, nil
}

func (r *repository) List(ctx context.Context) ([]PromoCode, error) {
	var codes []PromoCode
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&codes).Error
	return codes, err
}

func (r *repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&PromoCode{}).
		Where("id = ?", id).
		Update("active", false).Error
}

// IncrementUsageTx bumps used_count inside the caller's transaction so the
// increment commits or rolls back with the booking it belongs to. The usage
// cap is re-checked in the same UPDATE: two bookings racing for the last
// remaining use both pass Validate, but only one row update can satisfy
// used_count < max_uses.
func (r *repository) IncrementUsageTx(tx *gorm.DB, id uuid.UUID) error {
	result := tx.Model(&PromoCode{}).
		Where("id = ? AND (max_uses IS NULL OR used_count < max_uses)", id).
		Update("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.New(apperror.KindFailedPrecondition,
			"promo code has no remaining uses")
	}
	return nil
}

// isDuplicateKey matches unique-constraint violations both as gorm's
// translated error and as the raw postgres SQLSTATE 23505
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
