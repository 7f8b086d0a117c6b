// Package logger provides tagged console logging for the scanner.
// Output goes through zerolog's console writer so levels are colored
// and timestamps are consistent across the app.
package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// out builds a console logger bound to the current os.Stdout.
// Built per call so tests can redirect stdout.
func out() *zerolog.Logger {
	w := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	l := zerolog.New(w).With().Timestamp().Logger()
	return &l
}

// Info logs an informational message under a component tag.
func Info(tag, msg string) {
	out().Info().Str("tag", tag).Msg(msg)
}

// Success logs a completed operation under a component tag.
func Success(tag, msg string) {
	out().Info().Str("tag", tag).Str("status", "ok").Msg(msg)
}

// Warn logs a recoverable problem under a component tag.
func Warn(tag, msg string) {
	out().Warn().Str("tag", tag).Msg(msg)
}

// Error logs a failure under a component tag.
func Error(tag, msg string) {
	out().Error().Str("tag", tag).Msg(msg)
}

// Banner prints the startup banner with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Printf("\n  limited-flipper %s\n  collectible opportunity scanner\n\n", version)
}

// Server logs the listen address once the HTTP server is up.
func Server(addr string) {
	out().Info().Str("tag", "Server").Msgf("Listening on http://%s", addr)
}

// Section prints a visual separator for a named phase.
func Section(title string) {
	fmt.Printf("--- %s %s\n", title, time.Now().UTC().Format("15:04:05"))
}

// Stats logs a single named counter or gauge.
func Stats(key string, value interface{}) {
	out().Info().Str("tag", "Stats").Msgf("%s=%v", key, value)
}
