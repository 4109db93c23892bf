// =============================================================================
// EDI 850 Converter - Logging
// =============================================================================
//
// Builds the application's zap logger from the configured level and log
// file, and adapts it to the printf-style Logger interface the converter
// uses.
//
// OUTPUT:
//   - Console: human-readable lines on stderr
//   - File:    JSON lines appended to log_file (if set)
//
// =============================================================================

package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the printf-style logging interface used by the converter.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// New builds a zap logger writing to stderr and, when logFile is not empty,
// to logFile as JSON. verbose forces debug level.
func New(level, logFile string, verbose bool) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), lvl),
	}

	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(f), lvl))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

// ParseLevel maps a config level name to a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// =============================================================================
// LOGGER ADAPTER
// =============================================================================

// sugar adapts a zap logger to Logger.
type sugar struct {
	s *zap.SugaredLogger
}

// Sugar wraps l as a Logger. A nil l yields a no-op logger.
func Sugar(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &sugar{s: l.Sugar()}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return Sugar(zap.NewNop())
}

func (l *sugar) Debug(msg string, args ...interface{}) { l.s.Debugf(msg, args...) }
func (l *sugar) Info(msg string, args ...interface{})  { l.s.Infof(msg, args...) }
func (l *sugar) Warn(msg string, args ...interface{})  { l.s.Warnf(msg, args...) }
func (l *sugar) Error(msg string, args ...interface{}) { l.s.Errorf(msg, args...) }
