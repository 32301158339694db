package logging

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger *zap.Logger
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	l, err := build([]string{"stderr"})
	if err != nil {
		log.Fatalf("FATAL ERROR: Failed to build zap logger: %s", err.Error())
	}

	logger = l
}

func build(outputPaths []string) (*zap.Logger, error) {
	cfg := zap.Config{
		Encoding:         "json",
		Level:            level,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "message",

			LevelKey:    "level",
			EncodeLevel: zapcore.CapitalLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.ISO8601TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,
		},
	}

	return cfg.Build()
}

// Configure rebuilds the logger with a level and extra output paths such as a log file
func Configure(levelName string, outputPaths []string) error {
	if err := SetLevel(levelName); err != nil {
		return err
	}

	paths := append([]string{"stderr"}, outputPaths...)
	l, err := build(paths)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()

	logger = l
	return nil
}

// Logger returns a zap logger with all available context
func Logger(ctx context.Context) *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()

	return logger.With(GetValuesSlice(ctx)...)
}

// SetLevel changes the level of every logger at runtime
func SetLevel(levelName string) error {
	lvl, err := ParseLevel(levelName)
	if err != nil {
		return err
	}

	level.SetLevel(lvl)
	return nil
}

// Level returns the name of the current level
func Level() string {
	return level.Level().String()
}

// ParseLevel accepts debug, info, warn and error
func ParseLevel(levelName string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(levelName)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}

	return zapcore.InfoLevel, fmt.Errorf("unknown log level: %q", levelName)
}

// Sync flushes buffered log entries
func Sync() {
	mu.RLock()
	defer mu.RUnlock()

	_ = logger.Sync()
}
