package logger

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogFileName is the file created inside the configured logs folder.
const LogFileName = "billgen.log"

var (
	globalLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	once         sync.Once
	logFile      *os.File
)

// Options controls where and how much the global logger writes.
type Options struct {
	// Dir is the logs folder; empty disables the file writer.
	Dir string
	// Level is a zerolog level name ("debug", "info", ...). Defaults to info.
	Level string
	// Console writes human-readable lines to stdout instead of JSON.
	Console bool
}

// InitLogging configures the global zerolog logger. Only the first call has
// an effect.
func InitLogging(opts Options) {
	once.Do(func() {
		var writers []io.Writer
		if opts.Console {
			writers = append(writers, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly})
		} else {
			writers = append(writers, os.Stdout)
		}

		if opts.Dir != "" {
			file, err := os.OpenFile(filepath.Join(opts.Dir, LogFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
			if err != nil {
				// The logger is not ready yet.
				os.Stderr.WriteString("Failed to open log file: " + err.Error() + "\n")
			} else {
				logFile = file
				writers = append(writers, file)
			}
		}

		level, err := zerolog.ParseLevel(opts.Level)
		if err != nil || opts.Level == "" {
			level = zerolog.InfoLevel
		}

		multi := zerolog.MultiLevelWriter(writers...)
		globalLogger = zerolog.New(multi).With().Timestamp().Logger().Level(level)
		log.Logger = globalLogger
	})
}

// Close flushes and closes the log file opened by InitLogging.
func Close() {
	if logFile != nil {
		logFile.Sync()
		logFile.Close()
		logFile = nil
	}
}

// WithLogger returns a new context containing the logger with additional fields.
func WithLogger(ctx context.Context, fields map[string]interface{}) context.Context {
	l := getLogger(ctx).With().Fields(fields).Logger()
	return l.WithContext(ctx)
}

// getLogger extracts the zerolog logger from the context, falling back to the global logger.
func getLogger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	// zerolog.Ctx returns a disabled logger if none is in context
	if l.GetLevel() == zerolog.Disabled {
		return &globalLogger
	}
	return l
}

// DebugLog logs a debug level message.
func DebugLog(ctx context.Context, msg string, args ...interface{}) {
	getLogger(ctx).Debug().Msgf(msg, args...)
}

// InfoLog logs an info level message.
func InfoLog(ctx context.Context, msg string, args ...interface{}) {
	getLogger(ctx).Info().Msgf(msg, args...)
}

// WarnLog logs a warning level message.
func WarnLog(ctx context.Context, msg string, args ...interface{}) {
	getLogger(ctx).Warn().Msgf(msg, args...)
}

// ErrorLog logs an error level message with err attached as a field. err
// may be nil.
func ErrorLog(ctx context.Context, err error, msg string, args ...interface{}) {
	e := getLogger(ctx).Error()
	if err != nil {
		e = e.Err(err)
	}
	e.Msgf(msg, args...)
}
