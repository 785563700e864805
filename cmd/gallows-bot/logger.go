package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"example.com/gallows-bot/internal/config"
)

// newLogger writes to stderr so stdout stays free for verbose game output.
func newLogger(cfg config.Config) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || cfg.Log.Level == "" {
		lvl = zerolog.InfoLevel
	}

	var w io.Writer = os.Stderr
	if cfg.Log.Format == "text" {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
