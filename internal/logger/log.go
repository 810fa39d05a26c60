// internal/logger/log.go
package logger

import (
	"io"
	"os"
	"strings"

	"jobportal-ops/internal/config"

	stdlog "log"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Init builds the process logger from Config and returns it.
//
// Output format switches on LOG_PRETTY:
//   - true:  human console output with colors (local runs)
//   - false: one JSON object per line (CloudWatch Logs ingestion)
//
// Every entry carries the service name plus the project/environment
// pair so log lines from different stages can be told apart in a shared
// log group. The returned logger is what components should hold on to;
// the package also installs it as the zerolog global and as the stdlib
// log sink so stray log.Printf calls end up in the same stream.
func Init(cfg config.Config, service string) zerolog.Logger {

	level := zerolog.InfoLevel
	if l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.LogLevel))); err == nil {
		level = l
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer
	if cfg.LogPretty {
		w = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	} else {
		w = os.Stdout
	}

	logger := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", service).
		Str("project", cfg.ProjectName).
		Str("env", cfg.Environment).
		Logger()

	zlog.Logger = logger

	// Route the stdlib logger (used by some SDK internals) through zerolog.
	stdlog.SetFlags(0)
	stdlog.SetOutput(logger)

	return logger
}
