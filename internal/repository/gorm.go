package repository

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"giftguard-backend/internal/model"
)

// gormRepository implements Repository using GORM.
type gormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM-backed repository.
func NewGormRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// upsertColumns lists everything a save may overwrite. created_at is kept.
var upsertColumns = []string{
	"brand", "product_name", "category", "memo", "price", "barcode_number",
	"expiry_date", "image_url", "is_used", "used_date",
	"store_latitude", "store_longitude", "geofence_radius_km", "saved_at", "updated_at",
}

// Save inserts the voucher or replaces the stored copy with the same id.
// A zero SavedAt is stamped with the current time.
func (r *gormRepository) Save(ctx context.Context, giftcon model.Giftcon) error {
	if giftcon.SavedAt.IsZero() {
		giftcon.SavedAt = time.Now()
	}
	// One zone keeps text-stored timestamps sortable.
	giftcon.SavedAt = giftcon.SavedAt.UTC()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(&giftcon).Error
	if err != nil {
		return errors.Wrapf(err, "save giftcon %s", giftcon.ID)
	}
	return nil
}

// FetchAll returns every stored voucher, most recently saved first.
func (r *gormRepository) FetchAll(ctx context.Context) ([]model.Giftcon, error) {
	var giftcons []model.Giftcon
	if err := r.db.WithContext(ctx).Order("saved_at DESC").Find(&giftcons).Error; err != nil {
		return nil, errors.Wrap(err, "fetch giftcons")
	}
	return giftcons, nil
}

// FetchByID returns ErrNotFound when no voucher has the id.
func (r *gormRepository) FetchByID(ctx context.Context, id string) (*model.Giftcon, error) {
	var giftcon model.Giftcon
	err := r.db.WithContext(ctx).First(&giftcon, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "id %q", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "fetch giftcon %s", id)
	}
	return &giftcon, nil
}

// Delete removes the voucher. Deleting an absent id returns ErrNotFound.
func (r *gormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.Giftcon{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "delete giftcon %s", id)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(ErrNotFound, "id %q", id)
	}
	return nil
}
