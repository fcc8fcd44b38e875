package inventory

import (
	"time"

	"github.com/google/uuid"
)

// SeatStatus is the structural state of a seat. Whether a seat is taken by a
// buyer is derived from tickets, not stored here.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatBlocked   SeatStatus = "blocked"
)

// IsValid checks if the seat status is valid
func (s SeatStatus) IsValid() bool {
	return s == SeatAvailable || s == SeatBlocked
}

// String returns the string representation of SeatStatus
func (s SeatStatus) String() string {
	return string(s)
}

// Seat is one physical position in a show's seat map
type Seat struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ShowID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"show_id"`
	TierID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"tier_id"`
	Section    string     `gorm:"not null;size:100" json:"section"`
	RowLabel   string     `gorm:"not null;size:10" json:"row_label"`
	SeatNumber int        `gorm:"not null" json:"seat_number"`
	Accessible bool       `gorm:"not null;default:false" json:"accessible"`
	Status     SeatStatus `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for Seat
func (Seat) TableName() string {
	return "seats"
}

// Response models

type SeatView struct {
	ID         string `json:"id"`
	Number     int    `json:"number"`
	Accessible bool   `json:"accessible"`
	Available  bool   `json:"available"`
}

type RowView struct {
	Label string     `json:"label"`
	Seats []SeatView `json:"seats"`
}

type SectionView struct {
	TierID       string    `json:"tier_id"`
	Name         string    `json:"name"`
	TierType     string    `json:"tier_type"`
	CurrentPrice float64   `json:"current_price"`
	Rows         []RowView `json:"rows"`
}

type StandingView struct {
	TierID       string  `json:"tier_id"`
	Name         string  `json:"name"`
	CurrentPrice float64 `json:"current_price"`
	Capacity     int     `json:"capacity"`
	Available    int     `json:"available"`
}

type SeatMapResponse struct {
	ShowID      string         `json:"show_id"`
	Currency    string         `json:"currency"`
	Sections    []SectionView  `json:"sections"`
	Standing    []StandingView `json:"standing,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
}

type GenerateResult struct {
	ShowID       string `json:"show_id"`
	SeatsCreated int    `json:"seats_created"`
	Skipped      bool   `json:"skipped"`
}
