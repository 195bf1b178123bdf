// Package engine runs macro documents. A run is a single background
// goroutine walking the action tree; callers steer it through Stop,
// Pause, and Resume and observe it through the sequenced log ring.
// Pause and stop take effect at action boundaries, never mid-sleep.
package engine

import (
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	mderrors "github.com/macrostudio/macrod/internal/errors"
	"github.com/macrostudio/macrod/internal/macro"
	"github.com/macrostudio/macrod/internal/vision"
)

// ActionRunner executes one primitive action node.
type ActionRunner interface {
	Run(action gjson.Result, log func(string)) error
	ClickAt(x, y int, button string) error
}

// ImageMatcher answers a single on-screen image lookup.
type ImageMatcher interface {
	Locate(c vision.Check) (pt image.Point, found bool, err error)
}

// Engine owns at most one live run at a time.
type Engine struct {
	runner  ActionRunner
	matcher ImageMatcher
	ring    *logRing

	mu      sync.Mutex
	cond    *sync.Cond
	running bool
	paused  bool
	stopped bool
	done    chan struct{}
	runID   string
}

// New builds an idle engine over the given collaborators.
func New(runner ActionRunner, matcher ImageMatcher) *Engine {
	e := &Engine{
		runner:  runner,
		matcher: matcher,
		ring:    newLogRing(),
	}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// Start launches the document on a fresh run goroutine. While a run is
// live it logs and returns a state error instead; the caller decides
// whether that is fatal.
func (e *Engine) Start(doc macro.Document) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		e.log("engine already running")
		return mderrors.NewState("engine already running")
	}

	e.running = true
	e.stopped = false
	e.paused = false
	e.runID = uuid.New().String()
	e.done = make(chan struct{})

	go e.run(doc, e.done)
	return nil
}

// Stop requests the current run to end. It returns immediately; the run
// unwinds at its next boundary. A paused run is released so it can see
// the request. Safe to call with no run live.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.stopped = true
	e.paused = false
	e.cond.Broadcast()
	e.mu.Unlock()
}

// Pause holds the run at its next action boundary. In-flight sleeps and
// polls finish their current tick first.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running || e.paused {
		return
	}
	e.paused = true
	e.log("paused")
}

// Resume releases a paused run.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running || !e.paused {
		return
	}
	e.paused = false
	e.cond.Broadcast()
	e.log("resumed")
}

// Shutdown stops the engine and waits for the run goroutine to exit.
// Returns false when the run outlived the timeout.
func (e *Engine) Shutdown(timeout time.Duration) bool {
	e.Stop()

	e.mu.Lock()
	done := e.done
	e.mu.Unlock()

	if done == nil {
		return true
	}
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// IsRunning reports whether a run goroutine is live.
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// IsPaused reports whether the live run is held at the pause gate.
func (e *Engine) IsPaused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running && e.paused
}

// RunID returns the identifier of the current run, or the last one when
// idle. Empty before the first start.
func (e *Engine) RunID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runID
}

// ReadLogs returns the latest sequence number and every retained line
// with a sequence greater than since. Pass 0 for everything retained;
// pass the previous latest to poll incrementally.
func (e *Engine) ReadLogs(since uint64) (latest uint64, lines []string) {
	return e.ring.read(since)
}

func (e *Engine) log(line string) {
	e.ring.append(line)
}

// gate blocks while the run is paused. A stop request opens the gate.
func (e *Engine) gate() {
	e.mu.Lock()
	for e.paused && !e.stopped {
		e.cond.Wait()
	}
	e.mu.Unlock()
}

func (e *Engine) stopRequested() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopped
}
