package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Translation layer so the rest of the module doesn't need to know about zerolog
type DebugLevel = zerolog.Level

const (
	Debug DebugLevel = zerolog.DebugLevel
	Info  DebugLevel = zerolog.InfoLevel
	Error DebugLevel = zerolog.ErrorLevel
	Trace DebugLevel = zerolog.TraceLevel
)

type Logger struct {
	logger zerolog.Logger

	// zerolog.Logger cannot == zerolog.Logger{}, so ready lets us tell if we can log or not
	ready bool
}

// ParseLevel falls back to debug for anything zerolog doesn't recognise
func ParseLevel(level string) DebugLevel {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return Debug
	}
	return parsed
}

func New(level string, w io.Writer) *Logger {
	if w == nil {
		w = os.Stdout
	}
	zerolog.TimeFieldFormat = time.StampMilli

	return &Logger{
		logger: zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger(),
		ready:  true,
	}
}

func NewWithConsoleWriter(level string) *Logger {
	return New(level, zerolog.ConsoleWriter{Out: os.Stdout})
}

// Nop returns a logger that drops everything
func Nop() *Logger {
	return &Logger{
		logger: zerolog.Nop(),
		ready:  true,
	}
}

func (l *Logger) GetComponentLogger(component string) *Logger {
	if l == nil || !l.ready {
		return l
	}
	return &Logger{
		logger: l.logger.With().
			Str("component", component).
			Logger(),
		ready: true,
	}
}

func (l *Logger) With(key string, value string) *Logger {
	if l == nil || !l.ready {
		return l
	}
	return &Logger{
		logger: l.logger.With().Str(key, value).Logger(),
		ready:  true,
	}
}

func (l *Logger) Trace(msg string) {
	if l != nil && l.ready {
		l.logger.Trace().Msg(msg)
	}
}

func (l *Logger) Debug(msg string) {
	if l != nil && l.ready {
		l.logger.Debug().Msg(msg)
	}
}

func (l *Logger) Debugf(format string, a ...interface{}) {
	if l != nil && l.ready {
		l.logger.Debug().Msgf(format, a...)
	}
}

func (l *Logger) Info(msg string) {
	if l != nil && l.ready {
		l.logger.Info().Msg(msg)
	}
}

func (l *Logger) Infof(format string, a ...interface{}) {
	if l != nil && l.ready {
		l.logger.Info().Msgf(format, a...)
	}
}

func (l *Logger) Error(err error) {
	if l != nil && l.ready {
		l.logger.Error().Err(err).Send()
	}
}

func (l *Logger) Errorf(err error, format string, a ...interface{}) {
	if l != nil && l.ready {
		l.logger.Error().Err(err).Msgf(format, a...)
	}
}
