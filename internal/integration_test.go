package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"giftguard-backend/config"
	"giftguard-backend/internal/api"
	"giftguard-backend/internal/db"
	"giftguard-backend/internal/model"
	"giftguard-backend/internal/notification"
	"giftguard-backend/internal/reminder"
	"giftguard-backend/internal/repository"
	"giftguard-backend/internal/voucher"
)

var kst = time.FixedZone("KST", 9*60*60)

type server struct {
	router *gin.Engine
	store  *voucher.Store
}

// newServer builds the full stack on top of gormDB the way the application
// does, with the clock pinned to now.
func newServer(t *testing.T, gormDB *gorm.DB, now time.Time) *server {
	t.Helper()
	store := voucher.New(repository.NewGormRepository(gormDB), voucher.WithClock(func() time.Time { return now }))
	require.NoError(t, store.Load(context.Background()))

	h := api.NewHandler(store, gormDB, nil, kst, api.WithClock(func() time.Time { return now }))
	router := api.NewRouter(h, config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000, CacheTTLSeconds: 60})
	return &server{router: router, store: store}
}

func ids(giftcons []model.Giftcon) []string {
	out := make([]string, len(giftcons))
	for i, g := range giftcons {
		out[i] = g.ID
	}
	return out
}

func (s *server) do(t *testing.T, method, path string, body any) map[string]any {
	t.Helper()
	raw, _ := json.Marshal(body)
	if body == nil {
		raw = nil
	}
	req, _ := http.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Less(t, w.Code, 300, "%s %s: %s", method, path, w.Body.String())

	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return out
}

// TestVoucherLifecycle registers, edits and redeems a voucher through the
// HTTP API and verifies that a restarted server sees the persisted state.
func TestVoucherLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// --- Test Setup ---
	gormDB, err := db.Init(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          "file::memory:",
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	sqlDB, _ := gormDB.DB()
	defer sqlDB.Close()

	now := time.Date(2025, 5, 1, 9, 0, 0, 0, kst)
	srv := newServer(t, gormDB, now)

	var count int64
	require.NoError(t, gormDB.Model(&model.Giftcon{}).Count(&count).Error)
	assert.Equal(t, int64(3), count, "seed vouchers should be persisted on first load")

	var newID string

	// --- Cycle 1: Register a voucher expiring in two days ---
	t.Run("Cycle 1: Register", func(t *testing.T) {
		srv.do(t, http.MethodPost, "/api/navigate", gin.H{"route": "add_gifticon/null"})
		srv.do(t, http.MethodPatch, "/api/form", gin.H{
			"brand":          "메가커피",
			"product_name":   "아이스 아메리카노",
			"expiry_date":    "2025.05.03",
			"price":          "2,000원",
			"barcode_number": "5555",
			"category":       "음료",
		})
		resp := srv.do(t, http.MethodPost, "/api/form/save", nil)
		saved := resp["giftcon"].(map[string]any)
		newID = saved["id"].(string)
		assert.Equal(t, "D-2", saved["d_day"])
		assert.Equal(t, float64(2000), saved["price"])

		stored, err := repository.NewGormRepository(gormDB).FetchByID(context.Background(), newID)
		require.NoError(t, err)
		assert.Equal(t, "메가커피", stored.Brand)
	})

	// --- Cycle 2: Edit the seeded g2 voucher ---
	t.Run("Cycle 2: Edit", func(t *testing.T) {
		nav := srv.do(t, http.MethodPost, "/api/navigate", gin.H{"route": "add_gifticon/g2"})
		assert.Equal(t, true, nav["found"])
		srv.do(t, http.MethodPatch, "/api/form", gin.H{"memo": "친구 선물"})
		resp := srv.do(t, http.MethodPost, "/api/form/save", nil)
		assert.Equal(t, true, resp["updated"])
	})

	// --- Cycle 3: Redeem the new voucher ---
	t.Run("Cycle 3: Mark used", func(t *testing.T) {
		resp := srv.do(t, http.MethodPost, "/api/giftcons/"+newID+"/use", nil)
		assert.Equal(t, true, resp["is_used"])
	})

	// --- Cycle 4: A restarted server reads the persisted state ---
	t.Run("Cycle 4: Restart", func(t *testing.T) {
		restarted := newServer(t, gormDB, now.Add(time.Hour))
		list := restarted.store.List().Giftcons
		require.Len(t, list, 4)
		// Marking a voucher used must not reorder it on reload.
		assert.Equal(t, ids(srv.store.List().Giftcons), ids(list))
		assert.Equal(t, []string{"g2", newID, "g1", "g3"}, ids(list))

		byID := map[string]model.Giftcon{}
		for _, g := range list {
			byID[g.ID] = g
		}
		assert.True(t, byID[newID].IsUsed)
		assert.Equal(t, "친구 선물", byID["g2"].Memo)
		assert.True(t, byID["g3"].IsUsed)
	})

	// --- Cycle 5: Only unused vouchers close to expiry are announced ---
	t.Run("Cycle 5: Reminders", func(t *testing.T) {
		srv.do(t, http.MethodPost, "/api/navigate", gin.H{"route": "add_gifticon"})
		srv.do(t, http.MethodPatch, "/api/form", gin.H{
			"brand":        "이디야",
			"product_name": "카페라떼",
			"expiry_date":  "2025-05-02T00:00:00+09:00",
		})
		srv.do(t, http.MethodPost, "/api/form/save", nil)

		cfg := &config.Config{Reminder: config.ReminderConfig{WithinDays: 3}, Location: kst}
		svc := reminder.NewService(cfg, srv.store, notification.NewWorkerPool(1, gormDB, nil))
		due := svc.Due(now)
		require.Len(t, due, 1)
		assert.Equal(t, "이디야", due[0].Brand)
		assert.Equal(t, 1, due[0].DaysLeft)
		assert.Equal(t, "이디야 카페라떼 기프티콘 유효기간이 D-1 남았습니다!", due[0].Message())
	})
}
