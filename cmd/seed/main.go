package main

import (
	"fmt"
	"log"
	"time"

	"stagepass/internal/inventory"
	"stagepass/internal/promos"
	"stagepass/internal/shared/config"
	"stagepass/internal/shared/database"
	"stagepass/internal/shows"

	"github.com/google/uuid"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting StagePass Database Seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"waitlist_entries",
		"tickets",
		"booking_lines",
		"bookings",
		"seats",
		"promo_codes",
		"pricing_phases",
		"ticket_tiers",
		"shows",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer constraints: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	if err := tx.Exec("SET CONSTRAINTS ALL IMMEDIATE").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to restore constraints: %w", err)
	}

	return tx.Commit().Error
}

// SeedAll seeds a published demo show with tiers, phases, seats, and a promo
func (s *Seeder) SeedAll() error {
	show, err := s.SeedShow()
	if err != nil {
		return fmt.Errorf("failed to seed show: %w", err)
	}

	tiers, err := s.SeedTiers(show)
	if err != nil {
		return fmt.Errorf("failed to seed tiers: %w", err)
	}

	if err := s.SeedPhases(show); err != nil {
		return fmt.Errorf("failed to seed phases: %w", err)
	}

	if err := s.SeedSeats(tiers); err != nil {
		return fmt.Errorf("failed to seed seats: %w", err)
	}

	if err := s.SeedPromoCodes(show, tiers); err != nil {
		return fmt.Errorf("failed to seed promo codes: %w", err)
	}

	return nil
}

// SeedShow creates one published show starting in 30 days
func (s *Seeder) SeedShow() (*shows.Show, error) {
	show := &shows.Show{
		OrganizerID:      uuid.New(),
		Name:             "Andes Sound Festival",
		Description:      "A full evening of live acts across two stages.",
		Venue:            "Movistar Arena, Bogotá",
		StartsAt:         time.Now().AddDate(0, 0, 30),
		Status:           shows.StatusPublished,
		SeatedCapacity:   160,
		StandingCapacity: 500,
	}
	if err := s.db.PostgreSQL.Create(show).Error; err != nil {
		return nil, err
	}
	fmt.Printf("  Created show: %s (%s)\n", show.Name, show.ID)
	return show, nil
}

// SeedTiers creates one tier of each type
func (s *Seeder) SeedTiers(show *shows.Show) ([]shows.TicketTier, error) {
	tiers := []shows.TicketTier{
		{
			ShowID: show.ID, Name: "General Standing", Type: shows.TierStanding,
			BasePriceUSD: 45, BasePriceCOP: 180000, MaxQuantity: 500, Active: true,
		},
		{
			ShowID: show.ID, Name: "Standard Seated", Type: shows.TierStandard,
			BasePriceUSD: 80, BasePriceCOP: 320000, MaxQuantity: 100, Active: true,
		},
		{
			ShowID: show.ID, Name: "Premium Seated", Type: shows.TierPremium,
			BasePriceUSD: 130, BasePriceCOP: 520000, MaxQuantity: 30, Active: true,
		},
		{
			ShowID: show.ID, Name: "VIP Front Row", Type: shows.TierVIP,
			BasePriceUSD: 250, BasePriceCOP: 1000000, MaxQuantity: 10, Active: true,
		},
		{
			ShowID: show.ID, Name: "Stage Tables", Type: shows.TierTable,
			BasePriceUSD: 900, BasePriceCOP: 3600000, MaxQuantity: 5, Active: true,
		},
	}

	for i := range tiers {
		if err := s.db.PostgreSQL.Create(&tiers[i]).Error; err != nil {
			return nil, err
		}
		fmt.Printf("  Created tier: %s\n", tiers[i].Name)
	}
	return tiers, nil
}

// SeedPhases creates an early-bird window ending in 10 days, a regular
// window, and a last-minute premium window ending at showtime
func (s *Seeder) SeedPhases(show *shows.Show) error {
	now := time.Now()
	earlyEnd := now.AddDate(0, 0, 10)
	regularEnd := show.StartsAt.AddDate(0, 0, -3)

	phases := []shows.PricingPhase{
		{
			ShowID: show.ID, Name: "Early Bird",
			StartsAt: now.AddDate(0, 0, -1), EndsAt: earlyEnd,
			DiscountPct: 20,
		},
		{
			ShowID: show.ID, Name: "Regular",
			StartsAt: earlyEnd, EndsAt: regularEnd,
		},
		{
			ShowID: show.ID, Name: "Last Minute",
			StartsAt: regularEnd, EndsAt: show.StartsAt,
			PremiumPct: 25,
		},
	}

	for i := range phases {
		if err := s.db.PostgreSQL.Create(&phases[i]).Error; err != nil {
			return err
		}
		fmt.Printf("  Created phase: %s\n", phases[i].Name)
	}
	return nil
}

// SeedSeats generates the deterministic seat map for every seated tier
func (s *Seeder) SeedSeats(tiers []shows.TicketTier) error {
	total := 0
	for i := range tiers {
		seats := inventory.BuildSeats(&tiers[i])
		if len(seats) == 0 {
			continue
		}
		if err := s.db.PostgreSQL.CreateInBatches(seats, 500).Error; err != nil {
			return err
		}
		total += len(seats)
	}
	fmt.Printf("  Created %d seats\n", total)
	return nil
}

// SeedPromoCodes creates a percentage code and a fixed-amount code scoped
// to the seated tiers
func (s *Seeder) SeedPromoCodes(show *shows.Show, tiers []shows.TicketTier) error {
	var seatedTierIDs promos.UUIDSlice
	for _, tier := range tiers {
		if tier.Type.HasSeats() {
			seatedTierIDs = append(seatedTierIDs, tier.ID)
		}
	}

	maxUses := 100
	codes := []promos.PromoCode{
		{
			Code:          "LAUNCH10",
			Description:   "10% off any order",
			Type:          promos.PromoPercentage,
			DiscountValue: 10,
			ValidFrom:     time.Now().AddDate(0, 0, -1),
			ValidUntil:    show.StartsAt,
			MaxUses:       &maxUses,
			MinTickets:    1,
			Active:        true,
		},
		{
			Code:          "SEATED25USD",
			Description:   "25 USD off seated tiers, minimum two tickets",
			Type:          promos.PromoFixed,
			DiscountValue: 25,
			Currency:      "USD",
			ValidFrom:     time.Now().AddDate(0, 0, -1),
			ValidUntil:    show.StartsAt,
			MinTickets:    2,
			TierIDs:       seatedTierIDs,
			ShowID:        &show.ID,
			Active:        true,
		},
	}

	for i := range codes {
		if err := s.db.PostgreSQL.Create(&codes[i]).Error; err != nil {
			return err
		}
		fmt.Printf("  Created promo code: %s\n", codes[i].Code)
	}
	return nil
}
