package model

import "time"

// DefaultCategory is assigned to vouchers registered without a category ("other").
const DefaultCategory = "기타"

// DefaultGeofenceRadiusKm is the geofence radius of a voucher without a store hint.
const DefaultGeofenceRadiusKm = 1.0

// Giftcon represents one prepaid gift voucher.
type Giftcon struct {
	ID            string     `gorm:"primaryKey;size:64" json:"id"`
	Brand         string     `gorm:"size:128;not null" json:"brand"`
	ProductName   string     `gorm:"size:256;not null" json:"product_name"`
	Category      string     `gorm:"size:64;not null" json:"category"`
	Memo          string     `gorm:"size:1024" json:"memo"`
	Price         float64    `gorm:"not null" json:"price"`
	BarcodeNumber string     `gorm:"size:128" json:"barcode_number"`
	ExpiryDate    time.Time  `gorm:"not null;index" json:"expiry_date"`
	ImageURL      *string    `gorm:"size:1024" json:"image_url"`
	IsUsed        bool       `gorm:"not null" json:"is_used"`
	UsedDate      *time.Time `json:"used_date"`

	// Geofencing hints
	StoreLatitude    float64 `json:"store_latitude"`
	StoreLongitude   float64 `json:"store_longitude"`
	GeofenceRadiusKm float64 `gorm:"not null" json:"geofence_radius_km"`

	// SavedAt orders the dashboard. Only a form save moves it; marking a
	// voucher used does not.
	SavedAt   time.Time `gorm:"index" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
