package logger

import (
	"os"
	"path/filepath"
	"strings"

	"portfolio-stream/src/models"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// -----------------------------------------------------------------------------

// Logger provides leveled printf-style logging, backed by zap.
type Logger struct {
	name string
	zl   *zap.SugaredLogger
}

// -----------------------------------------------------------------------------

// NewLogger creates a named Logger instance. A nil config logs to stdout at
// INFO level.
func NewLogger(cfg *models.MConfig, name string) *Logger {
	level := zapcore.InfoLevel
	logFile := ""

	if cfg != nil {
		if parsed, err := zapcore.ParseLevel(strings.ToLower(cfg.LogLevel)); err == nil {
			level = parsed
		}
		logFile = cfg.LogFile
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderCfg),
			zapcore.Lock(os.Stdout),
			level,
		),
	}

	// Optional file output with rotation via lumberjack
	if logFile != "" {
		if dir := filepath.Dir(logFile); dir != "." {
			os.MkdirAll(dir, 0755)
		}

		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // MB before rotation
			MaxBackups: 5,
			MaxAge:     7, // days
			Compress:   true,
		})

		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			fileWriter,
			level,
		))
	}

	zl := zap.New(zapcore.NewTee(cores...)).Named(name).Sugar()

	return &Logger{name: name, zl: zl}
}

// -----------------------------------------------------------------------------

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debugf(format, args...)
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Infof(format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs warning messages
func (l *Logger) Warning(format string, args ...interface{}) {
	l.zl.Warnf(format, args...)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Errorf(format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.zl.Errorf(format, args...)
	l.zl.Sync()
	os.Exit(1)
}
