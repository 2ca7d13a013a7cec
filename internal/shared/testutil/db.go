// Package testutil provides a migrated PostgreSQL database for integration
// tests. It uses TEST_DATABASE_URL when set and otherwise starts a throwaway
// container; tests are skipped when neither is available.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/database"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

const testLockKey = 7_204_311

var (
	once      sync.Once
	sharedDSN string
	setupErr  error
)

// PostgresDSN returns a DSN for a migrated test database.
func PostgresDSN(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}

	once.Do(func() {
		if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
			sharedDSN = dsn
			return
		}
		sharedDSN, setupErr = startPostgres()
	})
	if setupErr != nil {
		t.Skipf("no test database available: %v", setupErr)
	}
	return sharedDSN
}

// NewDB opens the test database, migrates it, and empties the ledger tables.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenPostgres(ctx, PostgresDSN(t), false)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test database handle: %v", err)
	}

	// Packages run in parallel against one TEST_DATABASE_URL; hold a session
	// advisory lock so their truncates do not interleave.
	lockConn, err := sqlDB.Conn(ctx)
	if err != nil {
		t.Fatalf("test database lock connection: %v", err)
	}
	if _, err := lockConn.ExecContext(ctx, "SELECT pg_advisory_lock($1)", testLockKey); err != nil {
		t.Fatalf("test database lock: %v", err)
	}

	t.Cleanup(func() {
		_, _ = lockConn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", testLockKey)
		_ = lockConn.Close()
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	if err := db.Exec("TRUNCATE TABLE bookings, ticket_tiers, events CASCADE").Error; err != nil {
		t.Fatalf("truncate test database: %v", err)
	}

	return db
}

// startPostgres runs postgres:16-alpine for the life of the test binary.
func startPostgres() (dsn string, err error) {
	defer func() {
		// testcontainers panics when no Docker daemon is reachable
		if r := recover(); r != nil {
			err = fmt.Errorf("docker unavailable: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "ticketing",
				"POSTGRES_PASSWORD": "ticketing",
				"POSTGRES_DB":       "ticketing_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return "", err
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", err
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("host=%s port=%s user=ticketing password=ticketing dbname=ticketing_test sslmode=disable",
		host, port.Port()), nil
}
