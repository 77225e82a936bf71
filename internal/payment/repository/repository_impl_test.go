package repository_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/payrecord/internal/migration"
	"github.com/smallbiznis/payrecord/internal/payment/domain"
	"github.com/smallbiznis/payrecord/internal/payment/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migration.Run(db, "sqlite"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newPayment(externalID, email, amount string) *domain.Payment {
	return &domain.Payment{
		ExternalID: externalID,
		Email:      email,
		Amount:     decimal.RequireFromString(amount),
		Currency:   domain.CurrencyUSD,
	}
}

func TestInsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.Provide()

	inserted, err := repo.InsertIfAbsent(ctx, db, newPayment("ORD-1", "a@b.com", "20.00"))
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.InsertIfAbsent(ctx, db, newPayment("ORD-1", "other@b.com", "99.99"))
	require.NoError(t, err)
	assert.False(t, inserted)

	stored, err := repo.FindByExternalID(ctx, db, "ORD-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "a@b.com", stored.Email)
	assert.True(t, stored.Amount.Equal(decimal.RequireFromString("20.00")))
	assert.NotZero(t, stored.ID)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestInsertIfAbsentRacingConnections(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "payments.db")
	db, err := gorm.Open(sqlite.Open(path+"?_pragma=busy_timeout(10000)"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	const workers = 8
	sqlDB.SetMaxOpenConns(workers)
	require.NoError(t, migration.Run(db, "sqlite"))

	repo := repository.Provide()
	start := make(chan struct{})
	results := make([]bool, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = repo.InsertIfAbsent(ctx, db, newPayment("ORD-RACE", fmt.Sprintf("w%d@b.com", i), "10.00"))
		}(i)
	}
	close(start)
	wg.Wait()

	inserted := 0
	for i := range results {
		require.NoError(t, errs[i])
		if results[i] {
			inserted++
		}
	}
	assert.Equal(t, 1, inserted)

	var count int64
	require.NoError(t, db.Model(&domain.Payment{}).Where("external_id = ?", "ORD-RACE").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestFindByExternalIDMissing(t *testing.T) {
	db := setupTestDB(t)

	stored, err := repository.Provide().FindByExternalID(context.Background(), db, "nope")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestListByEmailOrdersByCreation(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.Provide()

	for _, p := range []*domain.Payment{
		newPayment("A", "x@y.com", "1.00"),
		newPayment("B", "z@y.com", "2.00"),
		newPayment("C", "x@y.com", "3.00"),
	} {
		_, err := repo.InsertIfAbsent(ctx, db, p)
		require.NoError(t, err)
	}

	items, err := repo.ListByEmail(ctx, db, "x@y.com")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].ExternalID)
	assert.Equal(t, "C", items[1].ExternalID)

	items, err = repo.ListByEmail(ctx, db, "nobody@y.com")
	require.NoError(t, err)
	assert.Empty(t, items)
}
