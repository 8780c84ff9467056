package contributions

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Contribution{}))
	return db
}

func seed(t *testing.T, db *gorm.DB) Contribution {
	t.Helper()
	c := Contribution{
		ID:        uuid.NewString(),
		MemberID:  uuid.NewString(),
		Period:    "2025-08",
		Amount:    decimal.RequireFromString("50000.00"),
		Currency:  "NGN",
		Status:    StatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func TestLookupContribution(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	c := seed(t, db)

	got, err := svc.LookupContribution(context.Background(), c.ID)
	require.NoError(t, err)
	require.Equal(t, c.ID, got.ID)
	require.True(t, got.Amount.Equal(c.Amount))

	_, err = svc.LookupContribution(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMarkContributionPaid(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	c := seed(t, db)

	require.NoError(t, svc.MarkContributionPaid(context.Background(), c.ID, "PMT-1-abc"))

	var got Contribution
	require.NoError(t, db.First(&got, "id = ?", c.ID).Error)
	require.Equal(t, StatusPaid, got.Status)
	require.NotNil(t, got.PaymentReference)
	require.Equal(t, "PMT-1-abc", *got.PaymentReference)
	require.NotNil(t, got.PaidAt)

	// idempotent: a second settle, even with another reference, changes nothing
	require.NoError(t, svc.MarkContributionPaid(context.Background(), c.ID, "PMT-2-def"))
	require.NoError(t, db.First(&got, "id = ?", c.ID).Error)
	require.Equal(t, "PMT-1-abc", *got.PaymentReference)

	require.ErrorIs(t, svc.MarkContributionPaid(context.Background(), uuid.NewString(), "PMT-3"), ErrNotFound)
}
