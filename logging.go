package rotor

import (
	"fmt"
	"log"
	"os"
)

// LogLevel mirrors the severities spec §7 assigns to framework diagnostics:
// a machine-terminating Response.Err logs at Warn, a fatal poller error logs
// at Error, informational lifecycle events (if enabled) log at Info/Debug.
type LogLevel uint8

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarn
	LogError
)

func (l LogLevel) String() string {
	switch l {
	case LogDebug:
		return "debug"
	case LogInfo:
		return "info"
	case LogWarn:
		return "warn"
	case LogError:
		return "error"
	default:
		return "unknown"
	}
}

// LogField is one structured key/value attached to a LogEntry. Kept as a
// plain struct (rather than a variadic any-pairs API) so a Logger
// implementation never has to guess argument pairing.
type LogField struct {
	Key   string
	Value any
}

// Field constructs a LogField; a small convenience so call sites read as
// rotor.Field("token", tok) rather than a struct literal.
func Field(key string, value any) LogField { return LogField{Key: key, Value: value} }

// LogEntry is one diagnostic emitted by the Handler. Token is the zero value
// when the diagnostic is not attributable to a single machine (e.g. a fatal
// poller error).
type LogEntry struct {
	Level   LogLevel
	Message string
	Token   Token
	Err     error
	Fields  []LogField
}

// Logger is the pluggable sink every Handler writes diagnostics to. The
// default is [NewStdLogger]; github.com/rotor-go/rotor/logifaceadapter
// provides a structured-logging-backed implementation for production use,
// resolving the framework's stated open question of "choose a sink with a
// default logger" (spec §4.8/Open Questions) in favor of an adapter rather
// than baking one backend in.
type Logger interface {
	Log(entry LogEntry)
}

// NopLogger discards every entry.
type NopLogger struct{}

func (NopLogger) Log(LogEntry) {}

// StdLogger is the zero-dependency default, backed by log.Logger. It exists
// so the framework is usable with no logging dependency configured at all;
// anything beyond "usable by default" should go through logifaceadapter.
type StdLogger struct {
	out *log.Logger
}

// NewStdLogger constructs a StdLogger writing to os.Stderr with a
// microsecond timestamp, matching the teacher's default logging setup for
// components with no external sink configured.
func NewStdLogger() *StdLogger {
	return &StdLogger{out: log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)}
}

func (l *StdLogger) Log(e LogEntry) {
	msg := fmt.Sprintf("rotor: [%s] token=%d %s", e.Level, e.Token, e.Message)
	if e.Err != nil {
		msg += fmt.Sprintf(" err=%v", e.Err)
	}
	for _, f := range e.Fields {
		msg += fmt.Sprintf(" %s=%v", f.Key, f.Value)
	}
	l.out.Print(msg)
}
