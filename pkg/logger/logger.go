package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log stays silent until Init is called, so packages can log from tests.
var Log = zerolog.Nop()

func Init(isDev bool, level string) {
	InitWriter(os.Stdout, isDev, level)
}

func InitWriter(out io.Writer, isDev bool, level string) {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
		if isDev {
			lvl = zerolog.DebugLevel
		}
	}

	if isDev {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
		}
	}
	Log = zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "ebsi-sidebar").Logger()
}

func IsDev() bool {
	env := os.Getenv("ENV")
	return env == "" || env == "dev" || env == "development"
}
