package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/swapmarket/backend/internal/domain/catalog"
	"github.com/swapmarket/backend/internal/domain/identity"
	"github.com/swapmarket/backend/internal/domain/marketplace"
	"github.com/swapmarket/backend/internal/infrastructure/persistence/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	identity.SetPasswordCost(bcrypt.MinCost)
}

// newTestDB opens a private in-memory sqlite database with the schema applied.
// A single connection keeps every query on the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig(gormlogger.Default.LogMode(gormlogger.Silent)))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

// newMockDB creates a postgres-dialect GORM connection backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func createUser(t *testing.T, db *gorm.DB, username string) *identity.User {
	t.Helper()
	u, err := identity.NewUser(username, username+"@example.com", "password123")
	require.NoError(t, err)
	require.NoError(t, NewGormUserRepository(db).Create(t.Context(), u))
	return u
}

func createItem(t *testing.T, db *gorm.DB, ownerID uuid.UUID, title string) *catalog.Item {
	t.Helper()
	item, err := catalog.NewItem(ownerID, catalog.ItemDetails{Title: title, Category: "tools"})
	require.NoError(t, err)
	require.NoError(t, NewGormItemRepository(db).Create(t.Context(), item))
	return item
}

func createListing(t *testing.T, db *gorm.DB, item *catalog.Item, kind marketplace.ListingKind) *marketplace.Listing {
	t.Helper()
	amount := decimal.NewFromInt(25)
	pref := "anything musical"
	payload := marketplace.ListingPayload{Price: &amount, DailyRate: &amount, SwapPreference: &pref}

	l, err := marketplace.NewListing(item, item.OwnerID, kind, payload)
	require.NoError(t, err)
	l.ClearDomainEvents()
	require.NoError(t, NewGormListingRepository(db).Create(t.Context(), l))
	return l
}

func day(s string) time.Time {
	d, err := marketplace.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func period(t *testing.T, start, end string) marketplace.DateRange {
	t.Helper()
	r, err := marketplace.ParseDateRange(start, end)
	require.NoError(t, err)
	return r
}
