package obs

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger bridges Logger onto a zerolog.Logger.
type ZerologLogger struct {
	L   zerolog.Logger
	Min Level
}

// NewZerolog builds a ZerologLogger writing to w. With console set, lines
// are rendered by zerolog.ConsoleWriter instead of JSON.
func NewZerolog(w io.Writer, min Level, console bool) ZerologLogger {
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	zl := zerolog.New(w).With().Timestamp().Str("component", "tinyhttpd").Logger()
	return ZerologLogger{L: zl, Min: min}
}

func (z ZerologLogger) Logf(level Level, format string, args ...interface{}) {
	if level < z.Min {
		return
	}
	z.L.WithLevel(zerologLevel(level)).Msgf(format, args...)
}

func zerologLevel(l Level) zerolog.Level {
	switch l {
	case Debug:
		return zerolog.DebugLevel
	case Info:
		return zerolog.InfoLevel
	case Warn:
		return zerolog.WarnLevel
	case Error:
		return zerolog.ErrorLevel
	default:
		return zerolog.NoLevel
	}
}
