// Package logger owns the process-wide zap logger shared by the API server
// and the terminal client.
package logger

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

type Config struct {
	Development bool
	Level       string
	// Encoding is "json" or "console". Empty keeps the zap preset.
	Encoding string
	// Service, when set, is attached to every entry.
	Service string
	// OutputPaths replaces stdout/stderr. The TUI logs to a file so the
	// terminal stays free for drawing.
	OutputPaths []string
}

var (
	mu     sync.RWMutex
	global *zap.Logger
)

// Init builds a logger from cfg and installs it as the global one.
func Init(cfg Config) (*zap.Logger, error) {
	l, err := New(cfg)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	prev := global
	global = l
	mu.Unlock()

	if prev != nil {
		_ = prev.Sync()
	}
	return l, nil
}

// MustInit is Init for main packages.
func MustInit(cfg Config) *zap.Logger {
	l, err := Init(cfg)
	if err != nil {
		panic(err)
	}
	return l
}

// L returns the global logger. Before Init it lazily installs a development
// logger (or a no-op one if even that cannot be built).
func L() *zap.Logger {
	mu.RLock()
	l := global
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		if dev, err := zap.NewDevelopment(); err == nil {
			global = dev
		} else {
			global = zap.NewNop()
		}
	}
	return global
}

// Sync flushes the global logger. Sync errors from terminals are ignored.
func Sync() error {
	mu.RLock()
	l := global
	mu.RUnlock()
	if l == nil {
		return nil
	}

	err := l.Sync()
	if err == nil || errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) || errors.Is(err, os.ErrInvalid) {
		return nil
	}
	return err
}

// New builds a logger without touching the global one.
func New(cfg Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if cfg.Encoding != "" {
		zapCfg.Encoding = cfg.Encoding
	}
	if len(cfg.OutputPaths) > 0 {
		zapCfg.OutputPaths = cfg.OutputPaths
		zapCfg.ErrorOutputPaths = cfg.OutputPaths
	}

	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if level != nil {
		zapCfg.Level = zap.NewAtomicLevelAt(*level)
	}

	pretty := zapCfg.Encoding == "console" && writesToTerminal(zapCfg.OutputPaths)
	zapCfg.EncoderConfig = encoderConfig(pretty)

	if cfg.Service != "" {
		zapCfg.InitialFields = map[string]any{"service": cfg.Service}
	}

	return zapCfg.Build(zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// parseLevel returns nil for an empty level so the preset default applies.
func parseLevel(s string) (*zapcore.Level, error) {
	if s == "" {
		return nil, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return nil, fmt.Errorf("logger: invalid level %q: %w", s, err)
	}
	return &level, nil
}

func encoderConfig(pretty bool) zapcore.EncoderConfig {
	cfg := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "logger",
		CallerKey:        "caller",
		MessageKey:       "msg",
		StacktraceKey:    "stack",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		EncodeLevel:      zapcore.LowercaseLevelEncoder,
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		ConsoleSeparator: " ",
	}
	if pretty {
		cfg.EncodeLevel = coloredLevel
		cfg.EncodeTime = shortTime
		cfg.ConsoleSeparator = " | "
	}
	return cfg
}

// writesToTerminal reports whether every output is stdout/stderr attached to
// a terminal. NO_COLOR disables colors regardless.
func writesToTerminal(paths []string) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	for _, p := range paths {
		var f *os.File
		switch p {
		case "stdout":
			f = os.Stdout
		case "stderr":
			f = os.Stderr
		default:
			return false
		}
		if f == nil || !term.IsTerminal(int(f.Fd())) {
			return false
		}
	}
	return len(paths) > 0
}

func shortTime(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05.000"))
}

const ansiReset = "\x1b[0m"

var levelColors = map[zapcore.Level]string{
	zapcore.DebugLevel:  "\x1b[36m",
	zapcore.InfoLevel:   "\x1b[32m",
	zapcore.WarnLevel:   "\x1b[33m",
	zapcore.ErrorLevel:  "\x1b[31m",
	zapcore.DPanicLevel: "\x1b[35m",
	zapcore.PanicLevel:  "\x1b[35m",
	zapcore.FatalLevel:  "\x1b[31;1m",
}

func coloredLevel(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	color, ok := levelColors[level]
	if !ok {
		color = levelColors[zapcore.InfoLevel]
	}
	enc.AppendString(color + fmt.Sprintf("%-5s", level.CapitalString()) + ansiReset)
}
