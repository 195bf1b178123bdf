// Package hotkeys binds global key combos to callbacks through an OS
// event hook. The engine knows nothing about hotkeys; this is the
// collaborator that turns "F6 pressed anywhere" into Stop/Start calls.
package hotkeys

import (
	"fmt"
	"strings"
	"sync"

	hook "github.com/robotn/gohook"

	"github.com/macrostudio/macrod/internal/input"
)

// ParseCombo splits a combo string into lower-cased keys. Accepts the
// same "+" and "," separators as the hotkey action.
func ParseCombo(raw string) []string {
	parts := input.SplitCombo(raw)
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		keys = append(keys, strings.ToLower(p))
	}
	return keys
}

type binding struct {
	keys []string
	fn   func()
}

// Listener owns one global event hook. Bind combos while stopped, then
// Start; Close tears the hook down and waits for the event loop to exit.
type Listener struct {
	mu       sync.Mutex
	bindings []binding
	running  bool
	done     chan struct{}
}

// NewListener returns an idle listener.
func NewListener() *Listener {
	return &Listener{}
}

// Bind attaches fn to a combo. Must be called before Start.
func (l *Listener) Bind(combo string, fn func()) error {
	keys := ParseCombo(combo)
	if len(keys) == 0 {
		return fmt.Errorf("empty hotkey combo %q", combo)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return fmt.Errorf("listener already started")
	}
	l.bindings = append(l.bindings, binding{keys: keys, fn: fn})
	return nil
}

// Start registers the bindings and launches the event loop.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return fmt.Errorf("listener already started")
	}
	if len(l.bindings) == 0 {
		return fmt.Errorf("no hotkeys bound")
	}

	for _, b := range l.bindings {
		fn := b.fn
		hook.Register(hook.KeyDown, b.keys, func(hook.Event) { fn() })
	}

	l.done = make(chan struct{})
	l.running = true
	go func(done chan struct{}) {
		evs := hook.Start()
		<-hook.Process(evs)
		close(done)
	}(l.done)
	return nil
}

// Close stops the event hook and waits for the loop goroutine.
func (l *Listener) Close() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	done := l.done
	l.mu.Unlock()

	hook.End()
	<-done
}
