package database

import (
	"stagepass/internal/bookings"
	"stagepass/internal/inventory"
	"stagepass/internal/promos"
	"stagepass/internal/shows"
	"stagepass/internal/waitlist"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&shows.Show{},
		&shows.TicketTier{},
		&shows.PricingPhase{},
		&promos.PromoCode{},
		&inventory.Seat{},
		&bookings.Booking{},
		&bookings.BookingLine{},
		&bookings.Ticket{},
		&waitlist.Entry{},
	)
}
