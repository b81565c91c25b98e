// Package logging provides a categorized logger for the JHP engine. Each
// Category is a *zap.Logger with the category name baked in as a field;
// verbosity is gated on a debug flag at Init.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names a logging subsystem, attached to every record it emits.
type Category string

const (
	CategoryBoot     Category = "boot"
	CategoryRegistry Category = "registry"
	CategoryExecutor Category = "executor"
	CategoryRender   Category = "render"
	CategoryHTTP     Category = "http"
	CategoryRepl     Category = "repl"
)

var (
	mu      sync.RWMutex
	base    *zap.Logger
	loggers = map[Category]*Logger{}
)

// Logger wraps a *zap.SugaredLogger scoped to one Category.
type Logger struct {
	sugar *zap.SugaredLogger
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// Init builds the zap base logger. verbose raises the level to Debug.
// Safe to call more than once; the last call wins.
func Init(verbose bool) error {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return err
	}
	mu.Lock()
	base = l
	loggers = map[Category]*Logger{}
	mu.Unlock()
	return nil
}

// Get returns (creating if necessary) the Logger for category.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	b := base
	if b == nil {
		b = zap.NewNop()
	}
	l := &Logger{sugar: b.With(zap.String("category", string(category))).Sugar()}
	loggers[category] = l
	return l
}

// Sync flushes any buffered log entries. Call before process exit.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if base != nil {
		_ = base.Sync()
	}
}
