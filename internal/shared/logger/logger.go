package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"f1stats/internal/shared/types"
)

// Init initializes the global zerolog logger.
func Init(cfg types.LogConf) error {
	return InitWithWriter(cfg, os.Stderr)
}

// InitWithWriter is Init with an explicit console destination.
func InitWithWriter(cfg types.LogConf, out io.Writer) error {
	levelStr := strings.ToLower(cfg.Level)
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil || levelStr == "" {
		level = zerolog.InfoLevel
		fmt.Fprintf(out, "Unknown log level '%s', defaulting to 'info'\n", levelStr)
	}

	// Force all timestamps to be in UTC.
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "2006-01-02 15:04:05",
	}

	log.Logger = zerolog.New(consoleWriter).
		Level(level).
		With().
		Timestamp().
		Logger()

	Debug().Msgf("Logger initialized with level: %s", level.String())

	return nil
}

// WithComponent 返回带有 component 字段的子 logger，用于区分不同模块的输出。
func WithComponent(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}

// WithRun attaches a run id to the global logger so every line of one batch run can be correlated.
func WithRun(runID string) {
	log.Logger = log.Logger.With().Str("run_id", runID).Logger()
}

// Debug starts a new message with debug level.
func Debug() *zerolog.Event {
	return log.Debug()
}

// Info starts a new message with info level.
func Info() *zerolog.Event {
	return log.Info()
}

// Warn starts a new message with warning level.
func Warn() *zerolog.Event {
	return log.Warn()
}

// Error starts a new message with error level.
func Error() *zerolog.Event {
	return log.Error()
}
