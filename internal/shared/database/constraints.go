package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the constraints AutoMigrate cannot express.
// The booking transaction relies on the partial unique index below to
// surface concurrent seat grabs as duplicate-key errors.
func MigrateConstraints(db *gorm.DB) error {
	// A seat may appear on at most one inventory-holding ticket at a time.
	// Cancelled and refunded tickets release the seat for re-sale.
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uniq_tickets_held_seat
		ON tickets (seat_id)
		WHERE seat_id IS NOT NULL AND status IN ('pending', 'active');
	`).Error
	if err != nil {
		return err
	}

	// Payment completion is keyed by checkout session, so the session must
	// map to a single booking
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uniq_bookings_checkout_session
		ON bookings (checkout_session_id)
		WHERE checkout_session_id IS NOT NULL;
	`).Error
	if err != nil {
		return err
	}

	// Capacity counting groups holding tickets by tier
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tickets_tier_status
		ON tickets (tier_id, status);
	`).Error
	if err != nil {
		return err
	}

	// The hold sweeper scans pending bookings by expiry
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_status_hold_expires
		ON bookings (status, hold_expires_at);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
