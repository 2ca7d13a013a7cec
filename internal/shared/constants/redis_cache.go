package constants

import "time"

// Redis key layout for the ticketing service.
// Pattern: ticketing:{module}:{purpose}:{identifier}

const (
	CACHE_PREFIX = "ticketing"
)

// ================== AVAILABILITY ==================

const (
	CACHE_KEY_TIER_AVAILABILITY = CACHE_PREFIX + ":availability:"     // + tier-id
	CACHE_KEY_TIER_GENERATION   = CACHE_PREFIX + ":availability:gen:" // + tier-id
)

// Default TTL for availability snapshots. Overridden by AVAILABILITY_CACHE_TTL.
const (
	TTL_TIER_AVAILABILITY = 30 * time.Second
	// Must outlive any in-flight snapshot computation.
	TTL_TIER_GENERATION   = time.Hour
)

// ================== ANALYTICS ==================

const (
	CACHE_KEY_EVENT_SALES = CACHE_PREFIX + ":analytics:sales:" // + event-id
)

const (
	TTL_EVENT_SALES = 15 * time.Second
)

// ================== LOCKS ==================

const (
	LOCK_KEY_TIER = CACHE_PREFIX + ":lock:tier:" // + tier-id
)

// ================== RATE LIMITING ==================

const (
	RATE_LIMIT_KEY_PREFIX = CACHE_PREFIX + ":ratelimit:" // + ip:class
)

func BuildTierAvailabilityKey(tierID string) string {
	return CACHE_KEY_TIER_AVAILABILITY + tierID
}

func BuildTierGenerationKey(tierID string) string {
	return CACHE_KEY_TIER_GENERATION + tierID
}

func BuildEventSalesKey(eventID string) string {
	return CACHE_KEY_EVENT_SALES + eventID
}

func BuildTierLockKey(tierID string) string {
	return LOCK_KEY_TIER + tierID
}

func BuildRateLimitKey(ip, class string) string {
	return RATE_LIMIT_KEY_PREFIX + ip + ":" + class
}
