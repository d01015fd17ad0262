package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"giftguard-backend/internal/model"
)

// newSQLiteDB opens a private in-memory database with the giftcon table.
func newSQLiteDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every new connection would see a fresh empty database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.Giftcon{}))
	return db
}

func sampleGiftcon(id, brand string) model.Giftcon {
	return model.Giftcon{
		ID:               id,
		Brand:            brand,
		ProductName:      "아메리카노 Tall",
		Category:         "음료",
		Price:            4500,
		BarcodeNumber:    "1234567890",
		ExpiryDate:       time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC),
		GeofenceRadiusKm: model.DefaultGeofenceRadiusKm,
	}
}

func TestStub(t *testing.T) {
	ctx := context.Background()
	repo := NewStub()

	assert.NoError(t, repo.Save(ctx, sampleGiftcon("g1", "스타벅스")))

	all, err := repo.FetchAll(ctx)
	assert.NoError(t, err)
	assert.Empty(t, all, "the stub never remembers anything")

	_, err = repo.FetchByID(ctx, "g1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, repo.Delete(ctx, "g1"))
}

func TestGormRepository_SaveAndFetch(t *testing.T) {
	ctx := context.Background()
	repo := NewGormRepository(newSQLiteDB(t))

	first := sampleGiftcon("g1", "스타벅스")
	require.NoError(t, repo.Save(ctx, first))

	got, err := repo.FetchByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "스타벅스", got.Brand)
	assert.Equal(t, 4500.0, got.Price)
	assert.True(t, first.ExpiryDate.Equal(got.ExpiryDate))
	assert.False(t, got.IsUsed)
	assert.Nil(t, got.UsedDate)

	t.Run("save with the same id replaces the record", func(t *testing.T) {
		usedAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		updated := first
		updated.Brand = "X"
		updated.IsUsed = true
		updated.UsedDate = &usedAt
		require.NoError(t, repo.Save(ctx, updated))

		all, err := repo.FetchAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "X", all[0].Brand)
		assert.True(t, all[0].IsUsed)
		require.NotNil(t, all[0].UsedDate)
		assert.True(t, usedAt.Equal(*all[0].UsedDate))
	})

	t.Run("most recently saved comes first", func(t *testing.T) {
		time.Sleep(5 * time.Millisecond)
		require.NoError(t, repo.Save(ctx, sampleGiftcon("g2", "베스킨라빈스")))

		all, err := repo.FetchAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "g2", all[0].ID)
		assert.Equal(t, "g1", all[1].ID)
	})
}

func TestGormRepository_ZeroValuesRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewGormRepository(newSQLiteDB(t))

	g := sampleGiftcon("g1", "스타벅스")
	g.Category = ""
	g.Price = 0
	g.GeofenceRadiusKm = 0
	require.NoError(t, repo.Save(ctx, g))

	got, err := repo.FetchByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "", got.Category)
	assert.Equal(t, 0.0, got.Price)
	assert.Equal(t, 0.0, got.GeofenceRadiusKm)
	assert.False(t, got.IsUsed)
}

func TestGormRepository_OrderFollowsSavedAt(t *testing.T) {
	ctx := context.Background()
	repo := NewGormRepository(newSQLiteDB(t))
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.FixedZone("KST", 9*60*60))

	a := sampleGiftcon("a", "스타벅스")
	a.SavedAt = base
	b := sampleGiftcon("b", "베스킨라빈스")
	b.SavedAt = base.Add(time.Second)
	require.NoError(t, repo.Save(ctx, a))
	require.NoError(t, repo.Save(ctx, b))

	// Re-saving a with its original SavedAt, as marking it used does,
	// must not move it ahead of b.
	usedAt := base.Add(time.Hour)
	a.IsUsed = true
	a.UsedDate = &usedAt
	require.NoError(t, repo.Save(ctx, a))

	all, err := repo.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)
	assert.Equal(t, "a", all[1].ID)
	assert.True(t, all[1].IsUsed)
	assert.True(t, base.Equal(all[1].SavedAt))
}

func TestGormRepository_FetchByIDNotFound(t *testing.T) {
	repo := NewGormRepository(newSQLiteDB(t))

	got, err := repo.FetchByID(context.Background(), "missing")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewGormRepository(newSQLiteDB(t))
	require.NoError(t, repo.Save(ctx, sampleGiftcon("g1", "스타벅스")))

	require.NoError(t, repo.Delete(ctx, "g1"))
	_, err := repo.FetchByID(ctx, "g1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "g1"), ErrNotFound)
}

func TestGormRepository_FetchAllError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	boom := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "giftcons" ORDER BY saved_at DESC`)).
		WillReturnError(boom)

	all, err := NewGormRepository(db).FetchAll(context.Background())
	assert.Nil(t, all)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
