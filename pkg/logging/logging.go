// pkg/logging/logging.go - application logging for the SPV3 installer.
//
// The package keeps a process-wide logger initialised once from the
// configuration. Records are written as JSON to a size-rotated file under the
// configured log directory and, in debug mode, mirrored to the console.
// Plain-text audit trails (install.log, exception.log) are handled by Sink.

package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/HaloSPV3/spv3/pkg/config"
)

// LogLevel represents the severity of the log message.
type LogLevel int

const (
	LevelError LogLevel = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// String returns the string representation of the LogLevel.
func (ll LogLevel) String() string {
	switch ll {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

func (ll LogLevel) zapLevel() zapcore.Level {
	switch ll {
	case LevelError:
		return zapcore.ErrorLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelDebug:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// LoggerConfig holds configuration for the application logger.
type LoggerConfig struct {
	Dir        string // log directory; empty disables the file core
	FileName   string
	Level      string // debug, info, warn, error
	Console    bool
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Logger wraps the zap logger together with the session metadata.
type Logger struct {
	mu        sync.RWMutex
	sugar     *zap.SugaredLogger
	base      *zap.Logger
	logDir    string
	sessionID string
}

var (
	instance *Logger
	once     sync.Once
)

// DefaultLoggerConfig derives the logger configuration from the installer configuration.
func DefaultLoggerConfig(cfg *config.Configuration) LoggerConfig {
	return LoggerConfig{
		Dir:        cfg.LogDir,
		FileName:   "spv3-install.log",
		Level:      cfg.LogLevel,
		Console:    cfg.Debug,
		MaxSizeMB:  10,
		MaxBackups: 5,
		MaxAgeDays: 30,
	}
}

// Init initializes the singleton Logger based on the provided configuration.
func Init(cfg *config.Configuration) error {
	return InitWithConfig(DefaultLoggerConfig(cfg))
}

// InitWithConfig initializes the logger with an explicit LoggerConfig.
func InitWithConfig(logCfg LoggerConfig) error {
	var initErr error
	once.Do(func() {
		instance, initErr = newLogger(logCfg)
	})
	return initErr
}

func generateSessionID() string {
	return fmt.Sprintf("spv3-%s", time.Now().Format("2006-01-02-150405"))
}

func newLogger(cfg LoggerConfig) (*Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var cores []zapcore.Core

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		name := cfg.FileName
		if name == "" {
			name = "spv3-install.log"
		}
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, name),
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, level))
	}

	if cfg.Console {
		consoleConfig := encoderConfig
		consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.AddSync(os.Stderr), level))
	}

	sessionID := generateSessionID()
	base := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(2)).
		With(zap.String("session_id", sessionID))

	return &Logger{
		sugar:     base.Sugar(),
		base:      base,
		logDir:    cfg.Dir,
		sessionID: sessionID,
	}, nil
}

// CloseLogger flushes buffered records.
func CloseLogger() {
	if instance == nil {
		return
	}
	instance.mu.Lock()
	defer instance.mu.Unlock()
	_ = instance.base.Sync()
}

func (l *Logger) logMessage(level LogLevel, message string, keyValues ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	switch level {
	case LevelError:
		l.sugar.Errorw(message, keyValues...)
	case LevelWarn:
		l.sugar.Warnw(message, keyValues...)
	case LevelDebug:
		l.sugar.Debugw(message, keyValues...)
	default:
		l.sugar.Infow(message, keyValues...)
	}
}

// Info logs informational messages. Calls made before Init are dropped.
func Info(message string, keyValues ...interface{}) {
	if instance == nil {
		return
	}
	instance.logMessage(LevelInfo, message, keyValues...)
}

// Debug logs debug messages.
func Debug(message string, keyValues ...interface{}) {
	if instance == nil {
		return
	}
	instance.logMessage(LevelDebug, message, keyValues...)
}

// Warn logs warning messages.
func Warn(message string, keyValues ...interface{}) {
	if instance == nil {
		return
	}
	instance.logMessage(LevelWarn, message, keyValues...)
}

// Error logs error messages.
func Error(message string, keyValues ...interface{}) {
	if instance == nil {
		return
	}
	instance.logMessage(LevelError, message, keyValues...)
}

// LogStructured logs a message with explicit properties.
func LogStructured(level LogLevel, message string, properties map[string]interface{}) {
	if instance == nil {
		return
	}
	fields := make([]zap.Field, 0, len(properties))
	for k, v := range properties {
		fields = append(fields, zap.Any(k, v))
	}

	instance.mu.RLock()
	defer instance.mu.RUnlock()
	if ce := instance.base.WithOptions(zap.AddCallerSkip(-1)).Check(level.zapLevel(), message); ce != nil {
		ce.Write(fields...)
	}
}

// GetCurrentLogDir returns the directory holding the application log.
func GetCurrentLogDir() string {
	if instance == nil {
		return ""
	}
	return instance.logDir
}

// GetSessionID returns the identifier stamped on every record of this process.
func GetSessionID() string {
	if instance == nil {
		return ""
	}
	return instance.sessionID
}
