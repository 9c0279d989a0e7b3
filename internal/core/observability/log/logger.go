package log

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ Log = (*Logger)(nil)

var (
	processLogger *Logger
	processOnce   sync.Once
)

// Options configures New. The zero value is JSON to stderr at info with
// sampling.
type Options struct {
	Level Level
	// Format is "json" or "console".
	Format string
	// Outputs are zap sink URLs; empty means stderr.
	Outputs         []string
	DisableSampling bool
}

type Logger struct {
	zl    *zap.Logger
	level zap.AtomicLevel
}

// New builds a JSON logger writing to stderr at level.
func New(level Level) *Logger {
	return NewWithOptions(Options{Level: level})
}

// NewWithOptions builds a logger from opts. The first logger built becomes
// the process logger returned by Provide.
func NewWithOptions(opts Options) *Logger {
	level := zap.NewAtomicLevelAt(opts.Level.zap())

	encoder := zap.NewProductionEncoderConfig()
	encoding := "json"
	if opts.Format == "console" {
		encoding = "console"
		encoder.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	outputs := opts.Outputs
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	cfg := zap.Config{
		Level:            level,
		Encoding:         encoding,
		EncoderConfig:    encoder,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	if !opts.DisableSampling {
		cfg.Sampling = &zap.SamplingConfig{Initial: 100, Thereafter: 100}
	}

	zl, err := cfg.Build()
	if err != nil {
		panic(err)
	}

	l := &Logger{zl: zl, level: level}
	processOnce.Do(func() { processLogger = l })
	return l
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zap.NewNop(), level: zap.NewAtomicLevelAt(zap.ErrorLevel)}
}

// Provide returns the process logger, or a no-op logger if none was built.
func Provide() *Logger {
	if processLogger == nil {
		return Nop()
	}
	return processLogger
}

func (l *Logger) Log(level Level, msg string, fields ...Field) {
	if ce := l.zl.Check(level.zap(), msg); ce != nil {
		ce.Write(zapFields(fields)...)
	}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.Log(LevelDebug, msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.Log(LevelInfo, msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.Log(LevelWarn, msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.Log(LevelError, msg, fields...) }

func (l *Logger) With(fields ...Field) Log {
	return &Logger{zl: l.zl.With(zapFields(fields)...), level: l.level}
}

// Named returns a child logger whose name is appended to the parent's.
func (l *Logger) Named(name string) *Logger {
	return &Logger{zl: l.zl.Named(name), level: l.level}
}

// SetLevel changes the level for this logger and every logger derived from it.
func (l *Logger) SetLevel(level Level) {
	l.level.SetLevel(level.zap())
}

func (l *Logger) GetLevel() Level {
	return levelFromZap(l.level.Level())
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

func (lv Level) zap() zapcore.Level {
	switch lv {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func levelFromZap(lv zapcore.Level) Level {
	switch {
	case lv <= zapcore.DebugLevel:
		return LevelDebug
	case lv == zapcore.InfoLevel:
		return LevelInfo
	case lv == zapcore.WarnLevel:
		return LevelWarn
	default:
		return LevelError
	}
}

func zapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = f.zap()
	}
	return out
}

func (f Field) zap() zap.Field {
	switch f.Type {
	case BoolType:
		return zap.Bool(f.Key, f.Value.(bool))
	case DurationType:
		return zap.Duration(f.Key, f.Value.(time.Duration))
	case Float64Type:
		return zap.Float64(f.Key, f.Value.(float64))
	case IntType:
		return zap.Int(f.Key, f.Value.(int))
	case Int64Type:
		return zap.Int64(f.Key, f.Value.(int64))
	case StringType:
		return zap.String(f.Key, f.Value.(string))
	case Uint64Type:
		return zap.Uint64(f.Key, f.Value.(uint64))
	case PointType:
		return zap.Float64s(f.Key, f.Value.([]float64))
	case ErrorType:
		return zap.NamedError(f.Key, f.Value.(error))
	default:
		return zap.Any(f.Key, f.Value)
	}
}
