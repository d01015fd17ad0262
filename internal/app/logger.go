package app

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx/fxevent"

	"giftguard-backend/config"
)

// InitLogger configures the global zerolog logger.
func InitLogger(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Pretty {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}

// FxLogger reports fx lifecycle events through zerolog.
type FxLogger struct{}

func (FxLogger) LogEvent(event fxevent.Event) {
	switch e := event.(type) {
	case *fxevent.OnStartExecuted:
		if e.Err != nil {
			log.Error().Err(e.Err).Str("callee", e.FunctionName).Msg("start hook failed")
			return
		}
		log.Debug().Str("callee", e.FunctionName).Dur("runtime", e.Runtime).Msg("start hook executed")
	case *fxevent.OnStopExecuted:
		if e.Err != nil {
			log.Error().Err(e.Err).Str("callee", e.FunctionName).Msg("stop hook failed")
			return
		}
		log.Debug().Str("callee", e.FunctionName).Dur("runtime", e.Runtime).Msg("stop hook executed")
	case *fxevent.Invoked:
		if e.Err != nil {
			log.Error().Err(e.Err).Str("function", e.FunctionName).Msg("invoke failed")
		}
	case *fxevent.Started:
		if e.Err != nil {
			log.Error().Err(e.Err).Msg("application start failed")
			return
		}
		log.Info().Msg("application started")
	case *fxevent.Stopped:
		if e.Err != nil {
			log.Error().Err(e.Err).Msg("application stop failed")
		}
	}
}
