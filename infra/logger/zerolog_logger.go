package logger

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

var (
	fileOnce sync.Once
	fileOut  io.Writer
)

// NewZerologLogger creates a ZerologLogger writing to stdout. APP_ENV=dev
// switches to a human readable console format and LOG_LEVEL sets the minimum
// level (info by default). When LOG_FILE is set, JSON lines are also written
// to that file, rotated every LOG_MAX_SIZE_MB megabytes. All logs include the
// provided component field.
func NewZerologLogger(component string) Logger {
	var out io.Writer = os.Stdout
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	if f := logFile(); f != nil {
		out = zerolog.MultiLevelWriter(out, f)
	}
	return NewZerologLoggerWithWriter(out, component, levelFromEnv())
}

// logFile returns the process-wide rotating writer, shared by every
// component so a single process owns the file.
func logFile() io.Writer {
	fileOnce.Do(func() {
		path := os.Getenv("LOG_FILE")
		if path == "" {
			return
		}
		size, err := strconv.Atoi(os.Getenv("LOG_MAX_SIZE_MB"))
		if err != nil || size <= 0 {
			size = 100
		}
		fileOut = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    size,
			MaxBackups: 3,
			MaxAge:     28,
		}
	})
	return fileOut
}

// NewZerologLoggerWithWriter creates a ZerologLogger writing JSON lines to w.
func NewZerologLoggerWithWriter(w io.Writer, component string, level zerolog.Level) *ZerologLogger {
	z := zerolog.New(w).Level(level).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func levelFromEnv() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
