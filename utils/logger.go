package utils

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger provides leveled, printf-style logging throughout the application.
// Whole TaskLog flushes are serialized so concurrent tasks never interleave.
type Logger struct {
	sugar   *zap.SugaredLogger
	flushMu sync.Mutex
}

// NewLogger creates a Logger writing INFO and above to stdout/stderr.
func NewLogger() *Logger {
	return NewLoggerFromCore(consoleCore())
}

// NewFileLogger creates a Logger that also writes DEBUG and above to a rotated
// log file at path. The previous run's file is replaced.
func NewFileLogger(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	_ = os.Remove(path)

	file := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    20, // MB
		MaxBackups: 5,
		MaxAge:     28,
		LocalTime:  true,
	})
	enc := encoderConfig()
	fileCore := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), file, zapcore.DebugLevel)

	return NewLoggerFromCore(zapcore.NewTee(consoleCore(), fileCore)), nil
}

// NewLoggerFromCore wraps an arbitrary zap core, mainly for tests.
func NewLoggerFromCore(core zapcore.Core) *Logger {
	return &Logger{sugar: zap.New(core).Sugar()}
}

func encoderConfig() zapcore.EncoderConfig {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	enc.CallerKey = ""
	return enc
}

func consoleCore() zapcore.Core {
	colored := encoderConfig()
	colored.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoder := zapcore.NewConsoleEncoder(colored)

	high := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool { return lvl >= zapcore.ErrorLevel })
	low := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.InfoLevel && lvl < zapcore.ErrorLevel
	})

	return zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), high),
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), low),
	)
}

func (l *Logger) Info(format string, args ...any) {
	l.sugar.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.sugar.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.sugar.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.sugar.Debugf(format, args...)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
