package engine

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/tidwall/gjson"

	mderrors "github.com/macrostudio/macrod/internal/errors"
	"github.com/macrostudio/macrod/internal/macro"
	"github.com/macrostudio/macrod/internal/vision"
)

// Poll settings for image-conditional actions.
const (
	defaultPollInterval = 200 * time.Millisecond
	minPollInterval     = 10 * time.Millisecond
)

// errHalt unwinds the walk after a stop or budget boundary has already
// logged its line. It never reaches the ring.
var errHalt = errors.New("halt")

// runState carries the step budget through the recursive walk. Every
// executed action counts, branch and post actions included.
type runState struct {
	steps    int
	maxSteps int
}

func (e *Engine) run(doc macro.Document, done chan struct{}) {
	defer close(done)

	e.log("macro started")
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			e.log(fmt.Sprintf("error: %s: %v", mderrors.Action, r))
		}
		e.log(fmt.Sprintf("macro finished in %.2fs", time.Since(start).Seconds()))
		e.mu.Lock()
		e.running = false
		e.paused = false
		e.mu.Unlock()
	}()

	actions, ok := doc.Actions()
	if !ok {
		e.log("invalid macro: actions must be a list")
		return
	}

	st := &runState{maxSteps: doc.MaxSteps()}
	repeat := doc.Repeat()

	var err error
	if repeat <= 0 {
		e.log("repeat infinite")
		for rep := 1; ; rep++ {
			if e.stopRequested() || st.steps >= st.maxSteps {
				break
			}
			e.log(fmt.Sprintf("repeat %d/∞", rep))
			if err = e.executeActions(actions, st); err != nil {
				break
			}
		}
	} else {
		for rep := 1; rep <= repeat; rep++ {
			if e.stopRequested() || st.steps >= st.maxSteps {
				break
			}
			e.log(fmt.Sprintf("repeat %d/%d", rep, repeat))
			if err = e.executeActions(actions, st); err != nil {
				break
			}
		}
	}

	if err != nil && err != errHalt {
		if mderrors.IsType(err, mderrors.Safety) {
			e.log("failsafe triggered; stopping")
		} else {
			e.log(fmt.Sprintf("error: %s: %s", mderrors.TypeOf(err), err))
		}
	}
}

// boundary is the suspension point before every action: stop wins, then
// the pause gate, then stop again (the gate may have been opened by a
// stop), then the step budget.
func (e *Engine) boundary(st *runState) error {
	if e.stopRequested() {
		e.log("stop requested")
		return errHalt
	}
	e.gate()
	if e.stopRequested() {
		e.log("stop requested")
		return errHalt
	}
	if st.steps >= st.maxSteps {
		e.log("max_steps reached; stopping")
		return errHalt
	}
	return nil
}

func (e *Engine) executeActions(actions []gjson.Result, st *runState) error {
	for _, action := range actions {
		if err := e.boundary(st); err != nil {
			return err
		}
		if err := e.executeOne(action, st); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) executeOne(action gjson.Result, st *runState) error {
	st.steps++

	var err error
	switch action.Get("type").String() {
	case "if":
		err = e.executeIf(action, st)
	case "wait_for_image":
		err = e.waitForImage(action)
	case "click_image":
		err = e.clickImage(action)
	default:
		err = e.runner.Run(action, e.log)
	}
	if err != nil {
		return err
	}

	post := action.Get("post_action")
	if post.Exists() && post.Type != gjson.Null {
		if err := e.boundary(st); err != nil {
			return err
		}
		e.log("post_action")
		return e.executeOne(post, st)
	}
	return nil
}

func (e *Engine) waitForImage(action gjson.Result) error {
	timeout, interval := pollTimings(action)
	check, err := vision.ParseCheck(action)
	if err != nil {
		return err
	}
	e.log("wait_for_image value=" + check.Value)

	start := time.Now()
	for {
		if e.stopRequested() {
			e.log("stop requested")
			return errHalt
		}
		e.gate()

		_, found, err := e.matcher.Locate(check)
		if err != nil {
			return err
		}
		if found {
			e.log("wait_for_image found")
			return nil
		}
		if timeout > 0 && time.Since(start) >= timeout {
			break
		}
		time.Sleep(interval)
	}

	e.log("wait_for_image not found")
	return nil
}

// clickImage finds the reference image and clicks its center. Without a
// timeout the screen is probed once; a missing image is not an error
// either way, the run just moves on.
func (e *Engine) clickImage(action gjson.Result) error {
	timeout, interval := pollTimings(action)
	button := "left"
	if b := action.Get("button"); b.Type == gjson.String && b.Str != "" {
		button = b.Str
	}
	check, err := vision.ParseCheck(action)
	if err != nil {
		return err
	}
	e.log("click_image value=" + check.Value)

	var pt image.Point
	var found bool
	if timeout <= 0 {
		pt, found, err = e.matcher.Locate(check)
		if err != nil {
			return err
		}
	} else {
		start := time.Now()
		for {
			if e.stopRequested() {
				e.log("stop requested")
				return errHalt
			}
			e.gate()

			pt, found, err = e.matcher.Locate(check)
			if err != nil {
				return err
			}
			if found || time.Since(start) >= timeout {
				break
			}
			time.Sleep(interval)
		}
	}

	if !found {
		e.log("click_image not found")
		return nil
	}
	if err := e.runner.ClickAt(pt.X, pt.Y, button); err != nil {
		return err
	}
	e.log(fmt.Sprintf("click_image x=%d y=%d button=%s", pt.X, pt.Y, button))
	return nil
}

// executeIf evaluates an image condition and walks the matching branch.
// Without a timeout the screen is probed exactly once; with one, the
// probe polls until it matches or the deadline passes.
func (e *Engine) executeIf(action gjson.Result, st *runState) error {
	checkType := action.Get("check").String()
	timeout, interval := pollTimings(action)
	e.log("if check=" + checkType)

	if checkType != "image" {
		return mderrors.NewAction(fmt.Sprintf("unsupported if.check %q", checkType), nil)
	}
	check, err := vision.ParseCheck(action)
	if err != nil {
		return err
	}

	var matched bool
	if timeout <= 0 {
		_, matched, err = e.matcher.Locate(check)
		if err != nil {
			return err
		}
	} else {
		start := time.Now()
		for {
			if e.stopRequested() {
				e.log("stop requested")
				return errHalt
			}
			e.gate()

			_, matched, err = e.matcher.Locate(check)
			if err != nil {
				return err
			}
			if matched || time.Since(start) >= timeout {
				break
			}
			time.Sleep(interval)
		}
	}

	if matched {
		e.log("if result=true")
		return e.executeActions(action.Get("on_true").Array(), st)
	}
	e.log("if result=false")
	return e.executeActions(action.Get("on_false").Array(), st)
}

// pollTimings reads timeout_ms and interval_ms off an image-conditional
// action. timeout 0 means no deadline; the interval floor keeps a bad
// document from busy-spinning the capture loop.
func pollTimings(action gjson.Result) (timeout, interval time.Duration) {
	if ms := action.Get("timeout_ms").Int(); ms > 0 {
		timeout = time.Duration(ms) * time.Millisecond
	}
	interval = defaultPollInterval
	if v := action.Get("interval_ms"); v.Type == gjson.Number {
		interval = time.Duration(v.Int()) * time.Millisecond
		if interval < minPollInterval {
			interval = minPollInterval
		}
	}
	return timeout, interval
}
