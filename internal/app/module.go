// Package app wires the voucher tracker's components into an fx application.
package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"giftguard-backend/config"
	"giftguard-backend/internal/api"
	"giftguard-backend/internal/db"
	"giftguard-backend/internal/notification"
	"giftguard-backend/internal/reminder"
	"giftguard-backend/internal/repository"
	"giftguard-backend/internal/voucher"
)

// Module provides every component and starts the HTTP server and the
// reminder loop. The *config.Config is supplied by the caller.
var Module = fx.Options(
	fx.Provide(
		NewDB,
		NewRepository,
		NewStore,
		NewWebPushOptions,
		NewWorkerPool,
		NewReminder,
		NewHandler,
		NewRouter,
	),
	fx.Invoke(
		StartReminder,
		StartServer,
	),
)

// NewDB opens the database and closes it on stop.
func NewDB(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return nil, errors.Wrap(err, "init database")
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			sqlDB, err := gormDB.DB()
			if err != nil {
				return err
			}
			log.Info().Msg("closing database connections")
			return sqlDB.Close()
		},
	})
	return gormDB, nil
}

// NewRepository selects the voucher repository named by the config.
func NewRepository(cfg *config.Config, gormDB *gorm.DB) (repository.Repository, error) {
	switch cfg.Repository.Backend {
	case "memory":
		return repository.NewStub(), nil
	case "database":
		return repository.NewGormRepository(gormDB), nil
	default:
		return nil, errors.Newf("unknown repository backend %q", cfg.Repository.Backend)
	}
}

// NewStore creates the voucher store and loads it on start. A failed load
// is reported through the list state and does not stop the application.
func NewStore(lc fx.Lifecycle, repo repository.Repository) *voucher.Store {
	store := voucher.New(repo)
	store.Subscribe(func(snap voucher.Snapshot) {
		log.Debug().
			Int("giftcons", len(snap.List.Giftcons)).
			Str("editing_id", snap.EditingID).
			Bool("saving", snap.Form.IsSaving).
			Msg("voucher state changed")
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := store.Load(ctx); err != nil {
				log.Error().Err(err).Msg("initial voucher load failed")
				return nil
			}
			log.Info().Int("giftcons", len(store.List().Giftcons)).Msg("vouchers loaded")
			return nil
		},
	})
	return store
}

// NewWebPushOptions builds the VAPID options from the push config.
func NewWebPushOptions(cfg *config.Config) *webpush.Options {
	if cfg.Reminder.Enabled && (cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "") {
		log.Warn().Msg("reminder is enabled but VAPID keys are not configured; pushes will fail")
	}
	return &webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}
}

func NewWorkerPool(cfg *config.Config, gormDB *gorm.DB, opts *webpush.Options) *notification.WorkerPool {
	return notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, opts)
}

func NewReminder(cfg *config.Config, store *voucher.Store, pool *notification.WorkerPool) *reminder.Service {
	return reminder.NewService(cfg, store, pool)
}

func NewHandler(cfg *config.Config, store *voucher.Store, gormDB *gorm.DB, opts *webpush.Options) *api.Handler {
	return api.NewHandler(store, gormDB, opts, cfg.Location)
}

func NewRouter(cfg *config.Config, h *api.Handler) *gin.Engine {
	return api.NewRouter(h, cfg.Server)
}

// StartReminder runs the reminder loop between start and stop.
func StartReminder(lc fx.Lifecycle, svc *reminder.Service) {
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			done = make(chan struct{})
			go func() {
				defer close(done)
				svc.Run(ctx)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

// StartServer serves the router on the configured port and shuts it down
// gracefully, waiting for in-flight requests up to the shutdown timeout.
func StartServer(lc fx.Lifecycle, engine *gin.Engine, cfg *config.Config) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return errors.Wrapf(err, "listen on %s", srv.Addr)
			}
			log.Info().Str("address", ln.Addr().String()).Str("mode", gin.Mode()).Msg("starting server")
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error().Err(err).Msg("server stopped unexpectedly")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeoutSec).Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
