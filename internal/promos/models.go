package promos

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PromoType is the closed set of discount kinds
type PromoType string

const (
	PromoPercentage PromoType = "percentage"
	PromoFixed      PromoType = "fixed"
)

// IsValid checks if the promo type is valid
func (t PromoType) IsValid() bool {
	return t == PromoPercentage || t == PromoFixed
}

// String returns the string representation of PromoType
func (t PromoType) String() string {
	return string(t)
}

// UUIDSlice stores a list of UUIDs as a jsonb column
type UUIDSlice []uuid.UUID

// Value implements driver.Valuer
func (s UUIDSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (s *UUIDSlice) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into UUIDSlice", value)
	}
}

// Contains reports whether id is in the slice
func (s UUIDSlice) Contains(id uuid.UUID) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// PromoCode is a redeemable discount code
type PromoCode struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Code          string     `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Description   string     `gorm:"type:text" json:"description"`
	Type          PromoType  `gorm:"type:varchar(20);not null" json:"type"`
	DiscountValue float64    `gorm:"not null;check:discount_value > 0" json:"discount_value"`
	Currency      string     `gorm:"size:3" json:"currency,omitempty"`
	ValidFrom     time.Time  `gorm:"not null" json:"valid_from"`
	ValidUntil    time.Time  `gorm:"not null" json:"valid_until"`
	MaxUses       *int       `json:"max_uses,omitempty"`
	UsedCount     int        `gorm:"not null;default:0" json:"used_count"`
	MinTickets    int        `gorm:"not null;default:1" json:"min_tickets"`
	TierIDs       UUIDSlice  `gorm:"type:jsonb" json:"tier_ids,omitempty"`
	ShowID        *uuid.UUID `gorm:"type:uuid;index" json:"show_id,omitempty"`
	Active        bool       `gorm:"not null;default:true" json:"active"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName sets the table name for PromoCode
func (PromoCode) TableName() string {
	return "promo_codes"
}

// Request/Response models

type CreatePromoRequest struct {
	Code          string      `json:"code" binding:"required,min=3,max=50,alphanum"`
	Description   string      `json:"description" binding:"max=500"`
	Type          string      `json:"type" binding:"required,oneof=percentage fixed"`
	DiscountValue float64     `json:"discount_value" binding:"required,gt=0"`
	Currency      string      `json:"currency" binding:"omitempty,oneof=USD COP"`
	ValidFrom     time.Time   `json:"valid_from" binding:"required"`
	ValidUntil    time.Time   `json:"valid_until" binding:"required"`
	MaxUses       *int        `json:"max_uses" binding:"omitempty,min=1"`
	MinTickets    int         `json:"min_tickets" binding:"omitempty,min=1"`
	TierIDs       []uuid.UUID `json:"tier_ids"`
	ShowID        *uuid.UUID  `json:"show_id"`
}

type ValidateRequest struct {
	Code        string      `json:"code" binding:"required"`
	ShowID      uuid.UUID   `json:"show_id" binding:"required"`
	TierIDs     []uuid.UUID `json:"tier_ids" binding:"required,min=1"`
	TicketCount int         `json:"ticket_count" binding:"required,min=1"`
	OrderAmount float64     `json:"order_amount" binding:"required,gt=0"`
	Currency    string      `json:"currency" binding:"required,oneof=USD COP"`
}

// ValidationResult is always returned for business rejections; the Reason
// names which rule failed.
type ValidationResult struct {
	IsValid        bool    `json:"is_valid"`
	Reason         string  `json:"reason,omitempty"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalAmount    float64 `json:"final_amount"`
	PromoID        string  `json:"promo_id,omitempty"`
}
