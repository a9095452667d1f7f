// Package logifaceadapter wires github.com/joeycumines/logiface (backed by
// github.com/joeycumines/stumpy) into the rotor.Logger sink interface,
// resolving the open question of which structured-logging backend a Handler
// should default to in production. The framework itself stays
// dependency-free (rotor.StdLogger); this adapter is the recommended "real"
// sink.
package logifaceadapter

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"

	"github.com/rotor-go/rotor"
)

// Adapter implements rotor.Logger by forwarding every entry to a
// *logiface.Logger[*stumpy.Event].
type Adapter struct {
	logger *logiface.Logger[*stumpy.Event]
}

// New wraps an already-configured *logiface.Logger.
func New(logger *logiface.Logger[*stumpy.Event]) *Adapter {
	return &Adapter{logger: logger}
}

// NewDefault builds a *logiface.Logger using stumpy's default JSON-lines
// writer on os.Stderr.
func NewDefault() *Adapter {
	return New(stumpy.L.New(stumpy.L.WithStumpy()))
}

func (a *Adapter) Log(entry rotor.LogEntry) {
	b := a.logger.Build(toLogifaceLevel(entry.Level))
	if entry.Token != 0 {
		b = b.Int(`token`, int(entry.Token))
	}
	if entry.Err != nil {
		b = b.Err(entry.Err)
	}
	for _, f := range entry.Fields {
		b = b.Any(f.Key, f.Value)
	}
	b.Log(entry.Message)
}

func toLogifaceLevel(l rotor.LogLevel) logiface.Level {
	switch l {
	case rotor.LogDebug:
		return logiface.LevelDebug
	case rotor.LogInfo:
		return logiface.LevelInformational
	case rotor.LogWarn:
		return logiface.LevelWarning
	case rotor.LogError:
		return logiface.LevelError
	default:
		return logiface.LevelInformational
	}
}
