package shared

import (
	"io"
	"os"
	"time"

	"github.com/DODOEX/huffcodec/utils/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp/prefork"
)

// initialize logger
func NewLogger(config *config.Conf) zerolog.Logger {
	zerolog.TimeFieldFormat = config.String("logger.time-format", time.RFC3339)
	zerolog.DurationFieldUnit = time.Millisecond

	var out io.Writer = os.Stdout
	if config.String("logger.output", "stdout") == "stderr" {
		out = os.Stderr
	}
	if config.Bool("logger.prettier", true) {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}

	l, err := zerolog.ParseLevel(config.String("logger.level", "info"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse log level")
	}
	zerolog.SetGlobalLevel(l)

	ctx := zerolog.New(out).With().Timestamp()
	if config.Bool("logger.caller", false) {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()

	return log.Hook(PreforkHook{})
}

// prefer hook for zerologger
type PreforkHook struct{}

func (h PreforkHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	if prefork.IsChild() {
		e.Discard()
	}
}
