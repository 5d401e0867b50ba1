package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps zerolog for application logging.
//
// The log is append-only and file-based by default: while the TUI owns the
// terminal, writing log lines to stdout would garble the display. Headless
// mode additionally mirrors warnings and errors to stderr.
type Logger struct {
	zerolog.Logger
	rotator *lumberjack.Logger
}

// Config holds logger configuration.
type Config struct {
	Verbosity  int    // 0 = warn, 1 = info, 2 = debug, 3+ = trace
	Dir        string // directory for log files
	Console    bool   // also write to stderr (headless mode)
	MaxSizeMB  int    // max size in MB before rotation
	MaxBackups int    // max number of old log files to keep
}

// New creates a new logger instance writing to <dir>/showcase-dl.log.
func New(cfg Config) *Logger {
	var writers []io.Writer
	var rotator *lumberjack.Logger

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err == nil {
			maxSize := cfg.MaxSizeMB
			if maxSize <= 0 {
				maxSize = 10
			}
			maxBackups := cfg.MaxBackups
			if maxBackups <= 0 {
				maxBackups = 5
			}

			rotator = &lumberjack.Logger{
				Filename:   filepath.Join(cfg.Dir, "showcase-dl.log"),
				MaxSize:    maxSize,
				MaxBackups: maxBackups,
				LocalTime:  true,
			}
			writers = append(writers, rotator)
		}
	}

	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}

	var output io.Writer = io.Discard
	if len(writers) == 1 {
		output = writers[0]
	} else if len(writers) > 1 {
		output = zerolog.MultiLevelWriter(writers...)
	}

	logger := zerolog.New(output).
		Level(VerbosityLevel(cfg.Verbosity)).
		With().
		Timestamp().
		Logger()

	return &Logger{Logger: logger, rotator: rotator}
}

// Close closes the log file if one is open.
func (l *Logger) Close() error {
	if l.rotator != nil {
		return l.rotator.Close()
	}
	return nil
}

// VerbosityLevel maps the repeatable -v flag count onto zerolog levels.
// Warnings and errors are always included; response-body dumps only show
// up at trace level (-vvv and above).
func VerbosityLevel(v int) zerolog.Level {
	switch {
	case v <= 0:
		return zerolog.WarnLevel
	case v == 1:
		return zerolog.InfoLevel
	case v == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}
