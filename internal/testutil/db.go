// Package testutil provides shared helpers for tests that need a real
// database. It connects to the PostgreSQL instance from docker-compose,
// overridable through the DATABASE_* environment variables.
package testutil

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates a connection to the test PostgreSQL database and
// ensures the schema exists.
func SetupTestDB(t *testing.T) *gorm.DB {
	host := getEnvOrDefault("DATABASE_HOST", "localhost")
	port := getEnvOrDefault("DATABASE_PORT", "5432")
	user := getEnvOrDefault("DATABASE_USER", "quoting_user")
	password := getEnvOrDefault("DATABASE_PASSWORD", "quoting_password")
	dbname := getEnvOrDefault("DATABASE_NAME", "quoting")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		host, port, user, password, dbname)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database. Ensure PostgreSQL is running.")

	require.NoError(t, db.AutoMigrate(
		&domain.Quote{},
		&domain.AuditLogEntry{},
		&domain.RenewalPolicy{},
		&domain.StaffDiscountCode{},
		&domain.QuoteDocument{},
		&domain.Notification{},
		&domain.User{},
	))

	return db
}

// SetupCleanTestDB connects and wipes all quoting tables first
func SetupCleanTestDB(t *testing.T) *gorm.DB {
	db := SetupTestDB(t)
	CleanupTestData(t, db)
	return db
}

// CleanupTestData deletes test data from all tables
func CleanupTestData(t *testing.T, db *gorm.DB) {
	tables := []string{
		"audit_logs",
		"notifications",
		"quote_documents",
		"staff_discount_codes",
		"renewal_policies",
		"quotes",
		"users",
	}

	for _, table := range tables {
		err := db.Exec(fmt.Sprintf("DELETE FROM %s WHERE id IS NOT NULL", table)).Error
		if err != nil {
			t.Logf("Note: Could not clean table %s: %v", table, err)
		}
	}
}

// CreateTestQuote inserts a draft quote with sane defaults and returns it
func CreateTestQuote(t *testing.T, db *gorm.DB, mutate func(*domain.Quote)) *domain.Quote {
	quote := &domain.Quote{
		ID:             uuid.New(),
		QuoteReference: fmt.Sprintf("GA-2026-%06X", time.Now().UnixNano()%0xFFFFFF),
		Status:         domain.QuoteStatusDraft,
		Source:         domain.QuoteSourceAgentPortal,
		Customer: domain.CustomerDetails{
			CPR:       "900101234",
			FirstName: "Ahmed",
			LastName:  "Al Khalifa",
			Phone:     "+97336001234",
		},
		Vehicle: domain.VehicleDetails{
			Make:         "Toyota",
			Model:        "Corolla",
			Year:         2022,
			InsuredValue: 8500,
		},
		Premium:   120.500,
		Version:   1,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if mutate != nil {
		mutate(quote)
	}
	quote.SyncAssignmentStatus()
	require.NoError(t, db.Create(quote).Error)
	return quote
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
