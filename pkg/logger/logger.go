// Package logger wrapper for zerolog
package logger

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Config logger settings
type Config struct {
	Level             string
	TimeFieldFormat   string
	PrettyPrint       bool
	RedirectStdLogger bool
	DisableSampling   bool
	ErrorStack        bool
	ShowCaller        bool
	FileName          string
}

// Logger object capable of interacting with Logger
type Logger struct {
	zero        zerolog.Logger
	zeroErr     zerolog.Logger
	prettyPrint bool
	showCaller  bool
	extWriter   io.Writer
}

var defaultConfig = Config{
	Level:           "debug",
	TimeFieldFormat: time.RFC3339,
	PrettyPrint:     true,
	DisableSampling: true,
}

// NewDefault creates Logger with default settings
func NewDefault() *Logger {
	return New(defaultConfig)
}

// NewNop creates Logger which discards everything, used by tests
func NewNop() *Logger {
	nop := zerolog.Nop()
	return &Logger{zero: nop, zeroErr: nop}
}

// New creates a new Logger
func New(config Config) *Logger {
	zerolog.SetGlobalLevel(getZerologLevel(config.Level))
	zerolog.DisableSampling(config.DisableSampling)
	zerolog.TimeFieldFormat = config.TimeFieldFormat
	if config.ErrorStack {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	}

	l := &Logger{
		prettyPrint: config.PrettyPrint,
		showCaller:  config.ShowCaller,
	}

	if config.FileName != "" {
		f, err := os.OpenFile(prepareLogFileName(config.FileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0664)
		if err != nil {
			log.Fatalf("failed to create log file: %v", err)
		}
		l.extWriter = f
	}

	out, errOut := l.writers()
	l.zero = zerolog.New(out).With().Timestamp().Logger()
	l.zeroErr = zerolog.New(errOut).With().Timestamp().Logger()
	if l.showCaller {
		l.zero = l.zero.With().Caller().Logger()
		l.zeroErr = l.zeroErr.With().Caller().Logger()
	}

	if config.RedirectStdLogger {
		log.SetFlags(0)
		log.SetOutput(l.zero)
	}

	return l
}

// SetLevel changes the global level at runtime, unknown names are ignored
func SetLevel(level string) {
	if lvl := getZerologLevel(level); lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}
}

// Debug starts a new message with debug level
func (l *Logger) Debug() *zerolog.Event {
	return l.zero.Debug()
}

// Info starts a new message with info level
func (l *Logger) Info() *zerolog.Event {
	return l.zero.Info()
}

// Error starts a new message with error level
func (l *Logger) Error() *zerolog.Event {
	return l.zeroErr.Error()
}

// Warn starts a new message with warn level
func (l *Logger) Warn() *zerolog.Event {
	return l.zeroErr.Warn()
}

// With creates a child logger with the field added to its context
func (l *Logger) With() zerolog.Context {
	return l.zero.With()
}

// Fatal sends the event with fatal level
func (l *Logger) Fatal(v ...interface{}) {
	l.zeroErr.Fatal().Msgf("%v", v)
}

// Fatalf sends the event with formatted msg with fatal level
func (l *Logger) Fatalf(format string, v ...interface{}) {
	l.zeroErr.Fatal().Msgf(format, v...)
}

// Printf sends the event with formatted msg with debug level
func (l *Logger) Printf(format string, v ...interface{}) {
	l.zero.Debug().Msgf(format, v...)
}

// Duplicate creates a logger with the context of zero sharing the outputs of l
func (l *Logger) Duplicate(zero zerolog.Logger) *Logger {
	dup := &Logger{
		prettyPrint: l.prettyPrint,
		showCaller:  l.showCaller,
		extWriter:   l.extWriter,
	}

	out, errOut := l.writers()
	dup.zero = zero.Output(out)
	dup.zeroErr = zero.Output(errOut)

	return dup
}

func (l *Logger) writers() (io.Writer, io.Writer) {
	var stdout, stderr io.Writer = os.Stdout, os.Stderr
	if l.prettyPrint {
		stdout = zerolog.ConsoleWriter{Out: os.Stdout}
		stderr = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	if l.extWriter == nil {
		return stdout, stderr
	}
	return zerolog.MultiLevelWriter(stdout, l.extWriter), zerolog.MultiLevelWriter(stderr, l.extWriter)
}

func getZerologLevel(lvl string) zerolog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "disabled":
		return zerolog.Disabled
	}
	return zerolog.NoLevel
}

func prepareLogFileName(pattern string) string {
	cur := time.Now()
	return strings.NewReplacer(
		"%D", cur.Format("02"),
		"%M", cur.Format("01"),
		"%Y", cur.Format("2006"),
		"%H", cur.Format("15"),
		"%N", cur.Format("04"),
		"%S", cur.Format("05"),
	).Replace(pattern)
}
