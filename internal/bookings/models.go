package bookings

import (
	"time"

	"github.com/google/uuid"
)

// Booking is one purchase attempt and its computed money breakdown
type Booking struct {
	ID                uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Reference         string        `gorm:"uniqueIndex;not null;size:20" json:"reference"`
	ShowID            uuid.UUID     `gorm:"type:uuid;index;not null" json:"show_id"`
	UserID            uuid.UUID     `gorm:"type:uuid;index;not null" json:"user_id"`
	CustomerEmail     string        `gorm:"not null;size:255" json:"customer_email"`
	CustomerName      string        `gorm:"size:255" json:"customer_name"`
	Currency          string        `gorm:"not null;size:3" json:"currency"`
	TicketCount       int           `gorm:"not null;check:ticket_count > 0" json:"ticket_count"`
	Subtotal          float64       `gorm:"not null" json:"subtotal"`
	GroupDiscount     float64       `gorm:"not null;default:0" json:"group_discount"`
	PromoDiscount     float64       `gorm:"not null;default:0" json:"promo_discount"`
	PromoCodeID       *uuid.UUID    `gorm:"type:uuid" json:"promo_code_id,omitempty"`
	TotalAmount       float64       `gorm:"not null;check:total_amount >= 0" json:"total_amount"`
	Status            BookingStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CheckoutSessionID *string       `gorm:"size:100" json:"checkout_session_id,omitempty"`
	HoldExpiresAt     time.Time     `gorm:"not null;index" json:"hold_expires_at"`
	CreatedAt         time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time     `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Lines   []BookingLine `json:"lines,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
	Tickets []Ticket      `json:"tickets,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
}

// BookingLine persists the buyer's per-line selection at booking time so
// completion can consume it verbatim, even if tiers or prices change later.
type BookingLine struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`
	TierID    uuid.UUID `gorm:"type:uuid;index;not null" json:"tier_id"`
	TierName  string    `gorm:"not null;size:100" json:"tier_name"`
	Quantity  int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice float64   `gorm:"not null" json:"unit_price"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Ticket is the record of one sold unit. Pending tickets hold inventory
// during the payment window; active tickets are issued.
type Ticket struct {
	ID           uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID    uuid.UUID    `gorm:"type:uuid;index;not null" json:"booking_id"`
	ShowID       uuid.UUID    `gorm:"type:uuid;index;not null" json:"show_id"`
	TierID       uuid.UUID    `gorm:"type:uuid;index;not null" json:"tier_id"`
	SeatID       *uuid.UUID   `gorm:"type:uuid" json:"seat_id,omitempty"`
	Status       TicketStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	TicketNumber string       `gorm:"size:40" json:"ticket_number,omitempty"`
	ScanCode     string       `gorm:"size:64" json:"scan_code,omitempty"`
	CreatedAt    time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// TableName sets the table name for BookingLine
func (BookingLine) TableName() string {
	return "booking_lines"
}

// TableName sets the table name for Ticket
func (Ticket) TableName() string {
	return "tickets"
}

// Request/Response models

type BookingLineRequest struct {
	TierID   uuid.UUID   `json:"tier_id" binding:"required"`
	Quantity int         `json:"quantity" binding:"required,min=1,max=20"`
	SeatIDs  []uuid.UUID `json:"seat_ids" binding:"omitempty"`
}

type CreateBookingRequest struct {
	ShowID        uuid.UUID            `json:"show_id" binding:"required"`
	Currency      string               `json:"currency" binding:"required,oneof=USD COP"`
	Lines         []BookingLineRequest `json:"lines" binding:"required,min=1,dive"`
	PromoCode     string               `json:"promo_code"`
	CustomerEmail string               `json:"customer_email" binding:"required,email"`
	CustomerName  string               `json:"customer_name" binding:"max=255"`
}

type CompleteBookingRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

type BookingResponse struct {
	ID            string        `json:"id"`
	Reference     string        `json:"reference"`
	ShowID        string        `json:"show_id"`
	Currency      string        `json:"currency"`
	TicketCount   int           `json:"ticket_count"`
	Subtotal      float64       `json:"subtotal"`
	GroupDiscount float64       `json:"group_discount"`
	PromoDiscount float64       `json:"promo_discount"`
	TotalAmount   float64       `json:"total_amount"`
	Status        BookingStatus `json:"status"`
	HoldExpiresAt time.Time     `json:"hold_expires_at"`
	Lines         []BookingLine `json:"lines,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

type CreateBookingResponse struct {
	Booking     BookingResponse `json:"booking"`
	CheckoutURL string          `json:"checkout_url,omitempty"`
	TotalAmount float64         `json:"total_amount"`
	Discount    float64         `json:"discount_applied"`
}

type TicketResponse struct {
	ID           string       `json:"id"`
	TierID       string       `json:"tier_id"`
	SeatID       string       `json:"seat_id,omitempty"`
	Status       TicketStatus `json:"status"`
	TicketNumber string       `json:"ticket_number"`
	ScanCode     string       `json:"scan_code"`
}

type CompleteBookingResponse struct {
	Booking BookingResponse  `json:"booking"`
	Tickets []TicketResponse `json:"tickets"`
}

// ToResponse converts a Booking to its API representation
func (b *Booking) ToResponse() BookingResponse {
	return BookingResponse{
		ID:            b.ID.String(),
		Reference:     b.Reference,
		ShowID:        b.ShowID.String(),
		Currency:      b.Currency,
		TicketCount:   b.TicketCount,
		Subtotal:      b.Subtotal,
		GroupDiscount: b.GroupDiscount,
		PromoDiscount: b.PromoDiscount,
		TotalAmount:   b.TotalAmount,
		Status:        b.Status,
		HoldExpiresAt: b.HoldExpiresAt,
		Lines:         b.Lines,
		CreatedAt:     b.CreatedAt,
	}
}

// ToResponse converts a Ticket to its API representation
func (t *Ticket) ToResponse() TicketResponse {
	resp := TicketResponse{
		ID:           t.ID.String(),
		TierID:       t.TierID.String(),
		Status:       t.Status,
		TicketNumber: t.TicketNumber,
		ScanCode:     t.ScanCode,
	}
	if t.SeatID != nil {
		resp.SeatID = t.SeatID.String()
	}
	return resp
}
