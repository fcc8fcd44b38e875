package waitlist

import (
	"time"

	"github.com/google/uuid"
)

// EntryStatus represents the lifecycle state of a waitlist entry
type EntryStatus string

const (
	EntryActive   EntryStatus = "active"
	EntryNotified EntryStatus = "notified"
	EntryExpired  EntryStatus = "expired"
)

// IsValid checks if the entry status is valid
func (s EntryStatus) IsValid() bool {
	switch s {
	case EntryActive, EntryNotified, EntryExpired:
		return true
	}
	return false
}

// String returns the string representation of EntryStatus
func (s EntryStatus) String() string {
	return string(s)
}

// Entry is one user's place in a tier's waitlist queue
type Entry struct {
	ID         uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ShowID     uuid.UUID   `gorm:"type:uuid;index;not null" json:"show_id"`
	TierID     uuid.UUID   `gorm:"type:uuid;index;not null" json:"tier_id"`
	UserID     uuid.UUID   `gorm:"type:uuid;index;not null" json:"user_id"`
	Email      string      `gorm:"not null;size:255" json:"email"`
	Quantity   int         `gorm:"not null;default:1;check:quantity > 0" json:"quantity"`
	Status     EntryStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	ExpiresAt  time.Time   `gorm:"not null;index" json:"expires_at"`
	NotifiedAt *time.Time  `json:"notified_at,omitempty"`
	CreatedAt  time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName sets the table name for Entry
func (Entry) TableName() string {
	return "waitlist_entries"
}

// IsExpired reports whether the entry has lapsed at t
func (e *Entry) IsExpired(t time.Time) bool {
	return !t.Before(e.ExpiresAt)
}

// Request/Response models

type JoinRequest struct {
	ShowID   uuid.UUID `json:"show_id" binding:"required"`
	TierID   uuid.UUID `json:"tier_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,min=1,max=10"`
}

type NotifyRequest struct {
	ShowID   uuid.UUID `json:"show_id" binding:"required"`
	TierID   uuid.UUID `json:"tier_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,min=1"`
}

type StatusQuery struct {
	ShowID string `form:"show_id" binding:"required,uuid"`
	TierID string `form:"tier_id" binding:"required,uuid"`
}

type EntryResponse struct {
	ID        string      `json:"id"`
	ShowID    string      `json:"show_id"`
	TierID    string      `json:"tier_id"`
	Quantity  int         `json:"quantity"`
	Status    EntryStatus `json:"status"`
	Position  int         `json:"position,omitempty"`
	ExpiresAt time.Time   `json:"expires_at"`
	CreatedAt time.Time   `json:"created_at"`
}

type NotifyResponse struct {
	NotifiedCount int `json:"notified_count"`
}

// ToResponse converts an Entry to its API representation
func (e *Entry) ToResponse() EntryResponse {
	return EntryResponse{
		ID:        e.ID.String(),
		ShowID:    e.ShowID.String(),
		TierID:    e.TierID.String(),
		Quantity:  e.Quantity,
		Status:    e.Status,
		ExpiresAt: e.ExpiresAt,
		CreatedAt: e.CreatedAt,
	}
}
