package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/NguyenZak/longhai-ticket-sub001/api/routes"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/bookings"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/events"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/config"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/database"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/tiers"
	"github.com/NguyenZak/longhai-ticket-sub001/pkg/logger"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type Seeder struct {
	db       *database.DB
	services *routes.Services
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	// seeding never needs the cache or the broker
	cfg.Redis.Enabled = false
	cfg.Kafka.Enabled = false

	appLogger := logger.NewWithLevel(cfg.LogLevel)
	ctx := context.Background()

	db, err := database.InitDB(ctx, cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db, services: routes.BuildServices(cfg, db, appLogger)}

	fmt.Println("Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("Seeding database...")
	if err := seeder.SeedAll(ctx); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	report, err := seeder.services.Availability.Reconcile(ctx)
	if err != nil {
		log.Fatalf("Failed to reconcile availability: %v", err)
	}
	fmt.Printf("Seeded %d tiers across %d events\n", report.Tiers, report.Events)
}

// CleanDatabase truncates the ledger tables, children first
func (s *Seeder) CleanDatabase() error {
	for _, table := range []string{"bookings", "ticket_tiers", "events"} {
		if err := s.db.PostgreSQL.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}
	return nil
}

type tierSeed struct {
	name  string
	color string
	bands []tiers.PriceBand
}

type eventSeed struct {
	name  string
	venue string
	in    time.Duration
	tiers []tierSeed
}

var seedEvents = []eventSeed{
	{
		name:  "Long Hai Beach Festival",
		venue: "Long Hai Beach Stage",
		in:    30 * 24 * time.Hour,
		tiers: []tierSeed{
			{"VIP", "#d4af37", []tiers.PriceBand{{Price: 1500000, Quantity: 50}, {Price: 1800000, Quantity: 50}}},
			{"Standard", "#2b6cb0", []tiers.PriceBand{{Price: 500000, Quantity: 300}, {Price: 650000, Quantity: 200}}},
			{"Standing", "#718096", []tiers.PriceBand{{Price: 250000, Quantity: 1000}}},
		},
	},
	{
		name:  "Saigon Jazz Night",
		venue: "Saigon Opera House",
		in:    45 * 24 * time.Hour,
		tiers: []tierSeed{
			{"Box", "#9b2c2c", []tiers.PriceBand{{Price: 2000000, Quantity: 20}}},
			{"Stalls", "#2f855a", []tiers.PriceBand{{Price: 800000, Quantity: 120}, {Price: 950000, Quantity: 80}}},
		},
	},
}

// SeedAll creates events, active tiers, and a few bookings per tier
func (s *Seeder) SeedAll(ctx context.Context) error {
	active := string(tiers.TierStatusActive)

	for _, es := range seedEvents {
		event, err := s.services.Events.CreateEvent(ctx, events.CreateEventRequest{
			Name:     es.name,
			Venue:    es.venue,
			StartsAt: time.Now().UTC().Add(es.in),
			Status:   "published",
		})
		if err != nil {
			return fmt.Errorf("failed to seed event %q: %w", es.name, err)
		}
		eventID := uuid.MustParse(event.ID)

		for _, ts := range es.tiers {
			tier, err := s.services.Tiers.CreateTier(ctx, eventID, tiers.CreateTierRequest{
				Name:   ts.name,
				Color:  ts.color,
				Bands:  ts.bands,
				Status: active,
			})
			if err != nil {
				return fmt.Errorf("failed to seed tier %q: %w", ts.name, err)
			}

			for band := range ts.bands {
				bandIndex := band
				_, err := s.services.Bookings.CreateBooking(ctx, bookings.CreateBookingRequest{
					EventID:   eventID,
					TierID:    tier.ID,
					UserID:    uuid.New(),
					BandIndex: &bandIndex,
					Quantity:  2,
					Notes:     "seed",
				})
				if err != nil {
					return fmt.Errorf("failed to seed booking for tier %q: %w", ts.name, err)
				}
			}
			fmt.Printf("  %s / %s: %d tickets\n", es.name, ts.name, tier.TotalPool())
		}
	}
	return nil
}
