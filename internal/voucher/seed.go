package voucher

import (
	"time"

	"giftguard-backend/internal/model"
)

const day = 24 * time.Hour

// SeedGiftcons returns the sample vouchers shown when the data source is empty.
func SeedGiftcons(now time.Time) []model.Giftcon {
	usedAt := now.Add(-10 * day)
	return []model.Giftcon{
		{
			ID:               "g1",
			Brand:            "스타벅스",
			ProductName:      "아메리카노 Tall",
			ExpiryDate:       now.Add(30 * day),
			Price:            4500,
			BarcodeNumber:    "1234567890",
			Memo:             "아침에 마시기 좋음",
			Category:         "음료",
			StoreLatitude:    37.5665,
			StoreLongitude:   126.9780,
			GeofenceRadiusKm: 0.5,
		},
		{
			ID:               "g2",
			Brand:            "베스킨라빈스",
			ProductName:      "파인트",
			ExpiryDate:       now.Add(10 * day),
			Price:            8900,
			BarcodeNumber:    "0987654321",
			Memo:             "주말에 사용 예정",
			Category:         "디저트",
			StoreLatitude:    37.5015,
			StoreLongitude:   127.0395,
			GeofenceRadiusKm: 1.0,
		},
		{
			ID:               "g3",
			Brand:            "CU",
			ProductName:      "삼각김밥 교환권",
			ExpiryDate:       now.Add(-5 * day),
			Price:            1500,
			IsUsed:           true,
			UsedDate:         &usedAt,
			BarcodeNumber:    "1122334455",
			Memo:             "급하게 사용함",
			Category:         "식사",
			StoreLatitude:    37.4979,
			StoreLongitude:   127.0276,
			GeofenceRadiusKm: 1.5,
		},
	}
}
