package log

import "go.uber.org/atomic"

var (
	_ WithLogger   = &Binder{}
	_ LoggerBinder = &Binder{}
)

// WithLogger is an interface for accessing a component's local logger.
type WithLogger interface {
	Logger() *MLogger
}

// LoggerBinder is an interface for setting a component's logger.
type LoggerBinder interface {
	SetLogger(logger *MLogger)
}

// Binder is an embeddable type for managing and accessing a logger
// uniformly within a component.
type Binder struct {
	logger atomic.Pointer[MLogger]
}

// SetLogger binds logger to the Binder.
func (w *Binder) SetLogger(logger *MLogger) {
	w.logger.Store(logger)
}

// Logger returns the logger currently bound to the Binder, falling back
// to the global logger if none has been bound yet.
func (w *Binder) Logger() *MLogger {
	l := w.logger.Load()
	if l == nil {
		return With()
	}
	return l
}
