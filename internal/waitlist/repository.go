package waitlist

import (
	"context"
	"errors"
	"time"

	"stagepass/internal/shared/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	GetActiveByUserAndTier(ctx context.Context, userID, tierID uuid.UUID) (*Entry, error)
	OldestActive(ctx context.Context, tierID uuid.UUID, limit int, now time.Time) ([]Entry, error)
	MarkNotified(ctx context.Context, ids []uuid.UUID, at time.Time) error
	Position(ctx context.Context, entry *Entry, now time.Time) (int, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, entry *Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) GetActiveByUserAndTier(ctx context.Context, userID, tierID uuid.UUID) (*Entry, error) {
	var entry Entry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND tier_id = ? AND status = ?", userID, tierID, EntryActive).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "no active waitlist entry for this tier")
		}
		return nil, err
	}
	return &entry, nil
}

// OldestActive returns the next entries to notify, strict FIFO by join time,
// skipping lapsed entries
func (r *repository) OldestActive(ctx context.Context, tierID uuid.UUID, limit int, now time.Time) ([]Entry, error) {
	var entries []Entry
	err := r.db.WithContext(ctx).
		Where("tier_id = ? AND status = ? AND expires_at > ?", tierID, EntryActive, now).
		Order("created_at ASC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *repository) MarkNotified(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&Entry{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"status":      EntryNotified,
			"notified_at": at,
		}).Error
}

// Position counts earlier, still-unexpired entries for the same tier plus one
func (r *repository) Position(ctx context.Context, entry *Entry, now time.Time) (int, error) {
	var earlier int64
	err := r.db.WithContext(ctx).
		Model(&Entry{}).
		Where("tier_id = ? AND status = ? AND expires_at > ? AND created_at < ?",
			entry.TierID, EntryActive, now, entry.CreatedAt).
		Count(&earlier).Error
	if err != nil {
		return 0, err
	}
	return int(earlier) + 1, nil
}
