// Package logging builds the zap logger shared by the server and the CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const service = "fridgechef"

var levelColors = map[zapcore.Level]string{
	zapcore.DebugLevel: "\033[36m",
	zapcore.InfoLevel:  "\033[32m",
	zapcore.WarnLevel:  "\033[33m",
	zapcore.ErrorLevel: "\033[31m",
	zapcore.FatalLevel: "\033[35m",
}

const resetColor = "\033[0m"

// New returns a logger writing to stdout: JSON in production, coloured
// console output otherwise.
func New(level, env string) (*zap.Logger, error) {
	return NewWithWriter(level, env, os.Stdout)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(level, env string, w io.Writer) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var enc zapcore.Encoder
	if env == "production" {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "time"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeDuration = zapcore.StringDurationEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		enc = zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			MessageKey:     "msg",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    colorLevelEncoder,
			EncodeTime:     shortTimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		})
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), lvl)
	return zap.New(core, zap.Fields(zap.String("service", service))), nil
}

// ParseLevel maps a level name to a zap level. An empty name means info.
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
	case "fatal":
		return zapcore.FatalLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
}

// Truncate shortens s to at most n bytes for logging model output.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}

func shortTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05.000"))
}

func colorLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	var name string
	switch l {
	case zapcore.DebugLevel:
		name = "DBG"
	case zapcore.InfoLevel:
		name = "INF"
	case zapcore.WarnLevel:
		name = "WRN"
	case zapcore.ErrorLevel:
		name = "ERR"
	case zapcore.FatalLevel:
		name = "FAT"
	default:
		name = l.CapitalString()
	}
	enc.AppendString(levelColors[l] + name + resetColor)
}
