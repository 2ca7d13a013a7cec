package routes

import (
	"github.com/NguyenZak/longhai-ticket-sub001/internal/analytics"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/availability"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/bookings"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/events"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/notifications"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/config"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/database"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/tiers"
	"github.com/NguyenZak/longhai-ticket-sub001/pkg/cache"
	"github.com/NguyenZak/longhai-ticket-sub001/pkg/logger"
)

// Services is the wired application graph shared by the HTTP router and the
// background workers.
type Services struct {
	Events       events.Service
	Tiers        tiers.Service
	Availability availability.Service
	Bookings     bookings.Service
	Publisher    notifications.Publisher
	Analytics    analytics.Service
}

// BuildServices wires repositories, services, and the optional Redis and
// Kafka backends.
func BuildServices(cfg *config.Config, db *database.DB, log *logger.Logger) *Services {
	pg := db.PostgreSQL

	eventService := events.NewService(events.NewRepository(pg))
	tierRepo := tiers.NewRepository(pg)
	tierService := tiers.NewService(tierRepo, eventService)
	bookingRepo := bookings.NewRepository(pg)

	availabilityOpts := []availability.Option{
		availability.WithEventCounters(eventService),
		availability.WithLogger(log),
	}
	if db.Redis != nil {
		availabilityOpts = append(availabilityOpts,
			availability.WithCache(cache.NewService(db.Redis), cfg.Redis.AvailabilityCacheTTL))
	}
	availabilityService := availability.NewService(tierRepo, bookingRepo, availabilityOpts...)
	tierService.SetChangeListener(availabilityService)
	tierService.SetLedger(bookingRepo)

	var publisher notifications.Publisher = notifications.NoopPublisher{}
	if cfg.Kafka.Enabled {
		kp, err := notifications.NewKafkaPublisher(
			notifications.DefaultKafkaProducerConfig(cfg.Kafka.Brokers, cfg.Kafka.BookingTopic), log)
		if err != nil {
			log.Warn("Kafka unavailable, booking events will not be published", "error", err.Error())
		} else {
			publisher = kp
		}
	}

	var locker bookings.TierLocker = bookings.NewLocalLocker()
	if db.Redis != nil {
		locker = bookings.NewRedisLocker(db.Redis, cfg.Redis.TierLockTTL, cfg.Redis.TierLockWait, log)
	}

	bookingService := bookings.NewService(bookingRepo,
		bookings.WithLocker(locker),
		bookings.WithPublisher(publisher),
		bookings.WithAvailability(availabilityService),
		bookings.WithMaxNumberAttempts(cfg.Booking.MaxNumberAttempts),
		bookings.WithLogger(log),
	)

	analyticsService := analytics.NewService(analytics.NewRepository(pg), eventService, tierRepo)
	if db.Redis != nil {
		analyticsService.SetCacheService(cache.NewService(db.Redis))
	}

	return &Services{
		Events:       eventService,
		Tiers:        tierService,
		Availability: availabilityService,
		Bookings:     bookingService,
		Publisher:    publisher,
		Analytics:    analyticsService,
	}
}
