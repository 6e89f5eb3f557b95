package logger

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bcdannyboy/bsmrisk/config"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	timeFormat = "2006-01-02T15:04:05.000Z07:00"
	maxSizeMB  = 100
	maxAgeDays = 30
	maxBackups = 3
)

// New builds a logger from c. An empty LogFile writes colored console output
// to stderr; otherwise output goes to a size-rotated file.
func New(c config.LoggingConfig) (*zap.Logger, zap.AtomicLevel, error) {
	atom := zap.NewAtomicLevel()
	if err := atom.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return nil, atom, errors.Wrapf(err, "log level %q", c.LogLevel)
	}

	encConfig := zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "N",
		CallerKey:      "C",
		MessageKey:     "M",
		StacktraceKey:  "S",
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout(timeFormat),
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}

	var ws zapcore.WriteSyncer
	if c.LogFile == "" {
		ws = zapcore.AddSync(os.Stderr)
		encConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		if err := os.MkdirAll(filepath.Dir(c.LogFile), 0o755); err != nil {
			return nil, atom, errors.Wrapf(err, "creating log dir for %s", c.LogFile)
		}
		ws = &zapcore.BufferedWriteSyncer{
			WS: zapcore.AddSync(&lumberjack.Logger{
				Filename:   c.LogFile,
				MaxSize:    maxSizeMB,
				MaxBackups: maxBackups,
				MaxAge:     maxAgeDays,
			}),
			FlushInterval: time.Second,
		}
	}

	var enc zapcore.Encoder
	if c.Format == "json" {
		enc = zapcore.NewJSONEncoder(encConfig)
	} else {
		enc = zapcore.NewConsoleEncoder(encConfig)
	}

	return zap.New(zapcore.NewCore(enc, ws, atom), zap.AddCaller()), atom, nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
