package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"giftguard-backend/config"
	"giftguard-backend/internal/app"
)

func main() {
	gin.SetMode(gin.ReleaseMode)
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("failed to load configuration")
	}
	app.InitLogger(cfg.Log)
	log.Info().Str("path", configPath).Msg("configuration loaded")

	fx.New(
		fx.Supply(cfg),
		fx.WithLogger(func() fxevent.Logger { return app.FxLogger{} }),
		app.Module,
	).Run()
}
