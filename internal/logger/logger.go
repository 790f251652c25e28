package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func InitLogger(level, format string) zerolog.Logger {
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if format == "json" {
		out = os.Stderr
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return log.Output(out).Level(lvl).With().Timestamp().Logger()
}

// TokenHint shortens a session token for log fields. JWT headers are
// identical across tokens, so the tail is kept.
func TokenHint(token string) string {
	if len(token) <= 12 {
		return "***"
	}
	return "..." + token[len(token)-6:]
}
