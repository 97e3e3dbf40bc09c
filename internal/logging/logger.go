package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/muurk/wledctl/internal/ui"
)

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// Valid values: "debug", "info", "warn", "error". Defaults to "info".
const LogLevelEnvVar = "WLEDCTL_LOG_LEVEL"

// Options configures a Logger.
type Options struct {
	// Quiet suppresses all output.
	Quiet bool

	// Color enables ANSI colouring. Callers normally set this from
	// ui.IsTerminal(os.Stdout).
	Color bool

	// Level overrides LogLevelEnvVar when non-empty.
	Level string

	// Output is where status lines go. Defaults to stdout.
	Output zapcore.WriteSyncer
}

// Logger writes categorized status lines (INFO, ERROR, ...) for the CLI.
type Logger struct {
	zl    *zap.Logger
	color bool
}

// New builds a Logger. A quiet logger discards everything.
func New(opts Options) (*Logger, error) {
	if opts.Quiet {
		return &Logger{zl: zap.NewNop()}, nil
	}

	level := opts.Level
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}
	zapLevel, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	out := opts.Output
	if out == nil {
		out = zapcore.Lock(os.Stdout)
	}

	encoderConfig := zapcore.EncoderConfig{
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: "  ",
	}
	if opts.Color {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), out, zap.NewAtomicLevelAt(zapLevel))
	return &Logger{zl: zap.New(core), color: opts.Color}, nil
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return &Logger{zl: zap.NewNop()}
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q (use debug, info, warn, error)", level)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zl.Debug(msg, fields...)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zl.Info(msg, fields...)
}

// Success logs an INFO line with the message in the success colour.
func (l *Logger) Success(msg string, fields ...zap.Field) {
	l.zl.Info(ui.Paint(ui.SuccessStyle, ui.SuccessMarker+" "+msg, l.color), fields...)
}

// Error logs an ERROR line with the message in the error colour.
func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.zl.Error(ui.Paint(ui.ErrorStyle, ui.FailureMarker+" "+msg, l.color), fields...)
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() {
	_ = l.zl.Sync()
}
