// Package logging provides structured logging functionality.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       true,
		FilePath:   filepath.Join(home, ".config", "portfolio-hedger", "logs", "hedger.log"),
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
	}
}

// NewLogger creates a new logger with default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(DefaultLogConfig())
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}

	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			})
		}
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = os.Stderr
	case 1:
		writer = writers[0]
	default:
		writer = zerolog.MultiLevelWriter(writers...)
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	return zerolog.New(writer).
		With().
		Timestamp().
		Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetDebugLevel sets the global log level to debug.
func SetDebugLevel() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

// WithUnderlying adds an underlying ticker to the logger context.
func WithUnderlying(logger zerolog.Logger, underlying string) zerolog.Logger {
	return logger.With().Str("underlying", underlying).Logger()
}

// LogPricing logs a pricing-kernel call.
func LogPricing(logger zerolog.Logger, underlying string, strike, spot, iv, price float64, floored bool) {
	logger.Debug().
		Str("event", "pricing").
		Str("underlying", underlying).
		Float64("strike", strike).
		Float64("spot", spot).
		Float64("iv", iv).
		Float64("price", price).
		Bool("floor_applied", floored).
		Msg("Put priced")
}

// LogSizing logs a sizing run.
func LogSizing(logger zerolog.Logger, portfolioValue float64, contracts int, monthlyCost, utilization float64) {
	logger.Info().
		Str("event", "sizing").
		Float64("portfolio_value", portfolioValue).
		Int("total_contracts", contracts).
		Float64("monthly_cost", monthlyCost).
		Float64("budget_utilization", utilization).
		Msg("Hedge sized")
}

// LogRoll logs a position roll.
func LogRoll(logger zerolog.Logger, closed, opened string, netCost float64) {
	logger.Info().
		Str("event", "roll").
		Str("closed", closed).
		Str("opened", opened).
		Float64("net_cost", netCost).
		Msg("Position rolled")
}

// LogComparison logs a comparison run.
func LogComparison(logger zerolog.Logger, scenarios int, pathStrategy, stressModel string) {
	logger.Info().
		Str("event", "comparison").
		Int("scenarios", scenarios).
		Str("path_strategy", pathStrategy).
		Str("stress_model", stressModel).
		Msg("Scenario comparison completed")
}
