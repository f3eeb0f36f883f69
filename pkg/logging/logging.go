// Package logging builds the zap logger used for diagnostics.
package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config configures the logger.
type Config struct {
	Level string // debug, info, warn, error
	// File switches output to a rotated JSON log file. Empty means console output
	// to Stderr.
	File       string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Stderr     io.Writer
}

// New creates a logger from config.
func New(config Config) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}

	var (
		encoder zapcore.Encoder
		output  zapcore.WriteSyncer
	)
	if config.File != "" {
		writer := &lumberjack.Logger{
			Filename:   config.File,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
		}
		if writer.MaxSize == 0 {
			writer.MaxSize = 10
		}
		if writer.MaxBackups == 0 {
			writer.MaxBackups = 3
		}
		if writer.MaxAge == 0 {
			writer.MaxAge = 30
		}
		encoder = zapcore.NewJSONEncoder(encoderConfig)
		output = zapcore.AddSync(writer)
	} else {
		stderr := config.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		encoderConfig.TimeKey = zapcore.OmitKey
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
		output = zapcore.AddSync(stderr)
	}

	return zap.New(zapcore.NewCore(encoder, output, ParseLevel(config.Level)))
}

// ParseLevel converts a level name, defaulting to warn.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}
