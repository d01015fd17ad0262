package app

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/fx/fxtest"
	"gorm.io/gorm"

	"giftguard-backend/config"
	"giftguard-backend/internal/model"
	"giftguard-backend/internal/repository"
	"giftguard-backend/internal/voucher"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func freePort(t *testing.T) int {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func testConfig(t *testing.T, backend string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:               freePort(t),
			RateLimitPerSec:    100,
			RateLimitBurst:     100,
			CacheTTLSeconds:    60,
			ShutdownTimeoutSec: 1,
		},
		Database: config.DatabaseConfig{
			Driver:       "sqlite",
			DSN:          "file::memory:",
			MaxOpenConns: 1,
			LogLevel:     "silent",
		},
		Repository: config.RepositoryConfig{Backend: backend},
		Reminder:   config.ReminderConfig{Enabled: true, Interval: time.Hour, WithinDays: 3},
		WorkerPool: config.WorkerPoolConfig{Size: 1},
		Location:   time.UTC,
	}
}

func TestModuleGraph(t *testing.T) {
	err := fx.ValidateApp(
		fx.Supply(testConfig(t, "memory")),
		Module,
	)
	assert.NoError(t, err)
}

func TestNewRepository(t *testing.T) {
	repo, err := NewRepository(&config.Config{Repository: config.RepositoryConfig{Backend: "memory"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, repository.NewStub(), repo)

	_, err = NewRepository(&config.Config{Repository: config.RepositoryConfig{Backend: "redis"}}, nil)
	assert.ErrorContains(t, err, `unknown repository backend "redis"`)
}

func TestApplicationLifecycle(t *testing.T) {
	cfg := testConfig(t, "database")

	var (
		store  *voucher.Store
		gormDB *gorm.DB
	)
	app := fxtest.New(t,
		fx.Supply(cfg),
		fx.WithLogger(func() fxevent.Logger { return FxLogger{} }),
		Module,
		fx.Populate(&store, &gormDB),
	)
	app.RequireStart()

	// The empty database is seeded on start.
	assert.Equal(t, []string{"g1", "g2", "g3"}, giftconIDs(store.List().Giftcons))
	var count int64
	require.NoError(t, gormDB.Model(&model.Giftcon{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/healthz", cfg.Server.Port))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"healthy"}`, string(body))

	app.RequireStop()

	_, err = http.Get(fmt.Sprintf("http://127.0.0.1:%d/healthz", cfg.Server.Port))
	assert.Error(t, err)
}

func TestStartReminder_StopsOnContext(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	cfg := testConfig(t, "memory")
	cfg.Reminder.Enabled = false

	StartReminder(lc, NewReminder(cfg, voucher.New(repository.NewStub()), NewWorkerPool(cfg, nil, nil)))
	require.NoError(t, lc.Start(context.Background()))
	require.NoError(t, lc.Stop(context.Background()))
}

func giftconIDs(giftcons []model.Giftcon) []string {
	out := make([]string, len(giftcons))
	for i, g := range giftcons {
		out[i] = g.ID
	}
	return out
}
