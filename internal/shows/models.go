package shows

import (
	"time"

	"github.com/google/uuid"
)

// Show represents a single sellable event instance
type Show struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrganizerID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"organizer_id"`
	Name             string     `gorm:"not null;size:255" json:"name"`
	Description      string     `gorm:"type:text" json:"description"`
	Venue            string     `gorm:"not null;size:255" json:"venue"`
	StartsAt         time.Time  `gorm:"not null;index" json:"starts_at"`
	Status           ShowStatus `gorm:"type:varchar(20);default:'draft'" json:"status"`
	SeatedCapacity   int        `gorm:"not null;default:0;check:seated_capacity >= 0" json:"seated_capacity"`
	StandingCapacity int        `gorm:"not null;default:0;check:standing_capacity >= 0" json:"standing_capacity"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`

	// Relationships
	Tiers  []TicketTier   `json:"tiers,omitempty" gorm:"foreignKey:ShowID;constraint:OnDelete:CASCADE;"`
	Phases []PricingPhase `json:"phases,omitempty" gorm:"foreignKey:ShowID;constraint:OnDelete:CASCADE;"`
}

// TicketTier is a priced category of ticket within a Show
type TicketTier struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ShowID       uuid.UUID `gorm:"type:uuid;index;not null" json:"show_id"`
	Name         string    `gorm:"not null;size:100" json:"name"`
	Type         TierType  `gorm:"type:varchar(20);not null" json:"type"`
	BasePriceUSD float64   `gorm:"not null;check:base_price_usd >= 0" json:"base_price_usd"`
	BasePriceCOP float64   `gorm:"not null;check:base_price_cop >= 0" json:"base_price_cop"`
	MaxQuantity  int       `gorm:"not null;check:max_quantity > 0" json:"max_quantity"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Show *Show `json:"show,omitempty" gorm:"foreignKey:ShowID;constraint:OnDelete:CASCADE;"`
}

// PricingPhase is a time window applying a discount or premium to base price.
// Exactly one of DiscountPct/PremiumPct may be non-zero.
type PricingPhase struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ShowID      uuid.UUID `gorm:"type:uuid;index;not null" json:"show_id"`
	Name        string    `gorm:"not null;size:100" json:"name"`
	StartsAt    time.Time `gorm:"not null;index" json:"starts_at"`
	EndsAt      time.Time `gorm:"not null" json:"ends_at"`
	DiscountPct float64   `gorm:"not null;default:0;check:discount_pct >= 0 AND discount_pct <= 100" json:"discount_pct"`
	PremiumPct  float64   `gorm:"not null;default:0;check:premium_pct >= 0" json:"premium_pct"`
	MaxTickets  *int      `json:"max_tickets,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Show *Show `json:"show,omitempty" gorm:"foreignKey:ShowID;constraint:OnDelete:CASCADE;"`
}

// TableName sets the table name for Show
func (Show) TableName() string {
	return "shows"
}

// TableName sets the table name for TicketTier
func (TicketTier) TableName() string {
	return "ticket_tiers"
}

// TableName sets the table name for PricingPhase
func (PricingPhase) TableName() string {
	return "pricing_phases"
}

// Contains reports whether the phase window [StartsAt, EndsAt) covers t
func (p *PricingPhase) Contains(t time.Time) bool {
	return !t.Before(p.StartsAt) && t.Before(p.EndsAt)
}

// HasDiscount reports whether this phase lowers the base price
func (p *PricingPhase) HasDiscount() bool {
	return p.DiscountPct > 0
}

// HasPremium reports whether this phase raises the base price
func (p *PricingPhase) HasPremium() bool {
	return p.PremiumPct > 0
}

// Request/Response models

type CreateShowRequest struct {
	Name             string    `json:"name" binding:"required,min=3,max=255"`
	Description      string    `json:"description" binding:"max=2000"`
	Venue            string    `json:"venue" binding:"required,min=3,max=255"`
	StartsAt         time.Time `json:"starts_at" binding:"required"`
	SeatedCapacity   int       `json:"seated_capacity" binding:"min=0"`
	StandingCapacity int       `json:"standing_capacity" binding:"min=0"`
}

type CreateTierRequest struct {
	Name         string  `json:"name" binding:"required,min=2,max=100"`
	Type         string  `json:"type" binding:"required,oneof=standing standard premium vip table"`
	BasePriceUSD float64 `json:"base_price_usd" binding:"required,gt=0"`
	BasePriceCOP float64 `json:"base_price_cop" binding:"required,gt=0"`
	MaxQuantity  int     `json:"max_quantity" binding:"required,min=1,max=100000"`
}

type CreatePhaseRequest struct {
	Name        string    `json:"name" binding:"required,min=2,max=100"`
	StartsAt    time.Time `json:"starts_at" binding:"required"`
	EndsAt      time.Time `json:"ends_at" binding:"required"`
	DiscountPct float64   `json:"discount_pct" binding:"min=0,max=100"`
	PremiumPct  float64   `json:"premium_pct" binding:"min=0"`
	MaxTickets  *int      `json:"max_tickets" binding:"omitempty,min=1"`
}

type ShowListQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search string `form:"search"`
	Venue  string `form:"venue"`
	Status string `form:"status" binding:"omitempty,oneof=draft published sold_out cancelled completed"`
}

type ShowResponse struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	Venue            string         `json:"venue"`
	StartsAt         time.Time      `json:"starts_at"`
	Status           ShowStatus     `json:"status"`
	SeatedCapacity   int            `json:"seated_capacity"`
	StandingCapacity int            `json:"standing_capacity"`
	Tiers            []TierResponse `json:"tiers,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

type TierResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	BasePriceUSD float64 `json:"base_price_usd"`
	BasePriceCOP float64 `json:"base_price_cop"`
	MaxQuantity  int     `json:"max_quantity"`
	Active       bool    `json:"active"`
}

type PaginatedShows struct {
	Shows      []ShowResponse `json:"shows"`
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

// ToResponse converts a Show to its API representation
func (s *Show) ToResponse() ShowResponse {
	resp := ShowResponse{
		ID:               s.ID.String(),
		Name:             s.Name,
		Description:      s.Description,
		Venue:            s.Venue,
		StartsAt:         s.StartsAt,
		Status:           s.Status,
		SeatedCapacity:   s.SeatedCapacity,
		StandingCapacity: s.StandingCapacity,
		CreatedAt:        s.CreatedAt,
	}
	for _, tier := range s.Tiers {
		resp.Tiers = append(resp.Tiers, tier.ToResponse())
	}
	return resp
}

// ToResponse converts a TicketTier to its API representation
func (t *TicketTier) ToResponse() TierResponse {
	return TierResponse{
		ID:           t.ID.String(),
		Name:         t.Name,
		Type:         t.Type.String(),
		BasePriceUSD: t.BasePriceUSD,
		BasePriceCOP: t.BasePriceCOP,
		MaxQuantity:  t.MaxQuantity,
		Active:       t.Active,
	}
}
