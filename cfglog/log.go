// Package cfglog is a category-scoped structured logger backed by zerolog.
// Each Logger tags its entries with a category field. A single level, read
// from CFGTREE_LOG_LEVEL, gates every category alike and is checked before
// any formatting work happens; categories cannot be filtered individually.
package cfglog

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Category names used to scope sub-loggers across the core packages.
const (
	CategoryReader  = "reader"
	CategoryCompose = "compose"
	CategoryResolve = "resolve"
	CategoryMerge   = "merge"
)

var base zerolog.Logger

func init() {
	level := zerolog.InfoLevel
	if lv, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("CFGTREE_LOG_LEVEL"))); err == nil {
		level = lv
	}
	base = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

// Logger is a category-scoped structured logger.
type Logger struct {
	z zerolog.Logger
}

// For returns the Logger scoped to category.
func For(category string) Logger {
	return Logger{z: base.With().Str("category", category).Logger()}
}

// SetOutput redirects all subsequently-created category loggers, mainly for
// tests that want to capture output.
func SetOutput(w *os.File) {
	base = base.Output(w)
}

// Debugf logs at debug level with printf-style formatting.
func (l Logger) Debugf(format string, args ...any) {
	l.z.Debug().Msgf(format, args...)
}

// Infof logs at info level with printf-style formatting.
func (l Logger) Infof(format string, args ...any) {
	l.z.Info().Msgf(format, args...)
}

// Errorf logs at error level with printf-style formatting.
func (l Logger) Errorf(format string, args ...any) {
	l.z.Error().Msgf(format, args...)
}

// With returns a child logger carrying an additional structured field.
func (l Logger) With(key string, value any) Logger {
	return Logger{z: l.z.With().Interface(key, value).Logger()}
}
