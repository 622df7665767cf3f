// Package notify defines the fire-and-forget notification sink resource and
// session stores report through. Presentation (toasts, banners) lives outside
// the core; the sink is the only contract.
package notify

import (
	"sync"

	"go.uber.org/zap"
)

// Kind classifies a notification.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
)

// Sink receives user-facing notifications. Implementations must not block;
// no return value is consulted by callers.
type Sink interface {
	Notify(message string, kind Kind)
}

// Func adapts a plain function to a Sink.
type Func func(message string, kind Kind)

func (f Func) Notify(message string, kind Kind) { f(message, kind) }

// Discard drops every notification.
var Discard Sink = Func(func(string, Kind) {})

// Logger returns a Sink that writes notifications through a zap logger.
func Logger(log *zap.Logger) Sink {
	return Func(func(message string, kind Kind) {
		if kind == Error {
			log.Warn("notification", zap.String("kind", string(kind)), zap.String("message", message))
			return
		}
		log.Info("notification", zap.String("kind", string(kind)), zap.String("message", message))
	})
}

// Entry is a recorded notification.
type Entry struct {
	Message string
	Kind    Kind
}

// Capture records notifications for assertions in tests.
type Capture struct {
	mu      sync.Mutex
	entries []Entry
}

func (c *Capture) Notify(message string, kind Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, Entry{Message: message, Kind: kind})
}

// Entries returns a copy of everything recorded so far.
func (c *Capture) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry{}, c.entries...)
}

// Last returns the most recent entry, if any.
func (c *Capture) Last() (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) == 0 {
		return Entry{}, false
	}
	return c.entries[len(c.entries)-1], true
}
