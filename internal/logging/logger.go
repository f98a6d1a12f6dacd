// Package logging provides the Logger abstraction used across the
// ordering core and its collaborators. A caller can plug in its own
// implementation; if none is provided the default wraps the standard
// library logger.
package logging

import (
	"fmt"
	"log"
	"os"
)

// Logger is the logging surface every component in this repository
// depends on instead of talking to the standard logger directly.
type Logger interface {
	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Warn(v ...interface{})
	Warnf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})

	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
}

const calldepth = 3

// StdLogger is the default Logger, backed by the standard log package.
type StdLogger struct {
	*log.Logger
	debug bool
}

// New creates a StdLogger writing to stderr with the given name prefix.
func New(name string) *StdLogger {
	return &StdLogger{
		Logger: log.New(os.Stderr, "["+name+"] ", log.LstdFlags),
	}
}

// ToggleDebug turns debug-level logging on or off, returning the prior value.
func (l *StdLogger) ToggleDebug(value bool) bool {
	prior := l.debug
	l.debug = value
	return prior
}

func tag(level, message string) string {
	return fmt.Sprintf("[%s] %s", level, message)
}

func (l *StdLogger) Info(v ...interface{}) {
	_ = l.Output(calldepth, tag("INFO", fmt.Sprint(v...)))
}

func (l *StdLogger) Infof(format string, v ...interface{}) {
	_ = l.Output(calldepth, tag("INFO", fmt.Sprintf(format, v...)))
}

func (l *StdLogger) Warn(v ...interface{}) {
	_ = l.Output(calldepth, tag("WARN", fmt.Sprint(v...)))
}

func (l *StdLogger) Warnf(format string, v ...interface{}) {
	_ = l.Output(calldepth, tag("WARN", fmt.Sprintf(format, v...)))
}

func (l *StdLogger) Error(v ...interface{}) {
	_ = l.Output(calldepth, tag("ERROR", fmt.Sprint(v...)))
}

func (l *StdLogger) Errorf(format string, v ...interface{}) {
	_ = l.Output(calldepth, tag("ERROR", fmt.Sprintf(format, v...)))
}

func (l *StdLogger) Debug(v ...interface{}) {
	if l.debug {
		_ = l.Output(calldepth, tag("DEBUG", fmt.Sprint(v...)))
	}
}

func (l *StdLogger) Debugf(format string, v ...interface{}) {
	if l.debug {
		_ = l.Output(calldepth, tag("DEBUG", fmt.Sprintf(format, v...)))
	}
}
