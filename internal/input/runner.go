package input

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	mderrors "github.com/macrostudio/macrod/internal/errors"
)

// DefaultMinDelay is the settle time inserted after every action.
const DefaultMinDelay = 5 * time.Millisecond

// Runner executes one action node at a time against a Driver. It holds
// no state between actions beyond the minimum inter-action delay.
type Runner struct {
	driver   Driver
	minDelay time.Duration
	sleep    func(time.Duration)
}

// NewRunner builds a Runner over the given driver.
func NewRunner(driver Driver) *Runner {
	return &Runner{
		driver:   driver,
		minDelay: DefaultMinDelay,
		sleep:    time.Sleep,
	}
}

// SetMinDelay overrides the settle time applied after each action.
func (r *Runner) SetMinDelay(d time.Duration) {
	r.minDelay = d
}

// Run dispatches the action to its handler, emits the action's log line,
// and applies the minimum delay. Timed waits block right here; the
// caller stays in control of stop and pause between actions only.
func (r *Runner) Run(action gjson.Result, log func(string)) error {
	name := action.Get("type").String()
	h, ok := registry[name]
	if !ok {
		return mderrors.NewAction(fmt.Sprintf("unknown action type %q", name), nil)
	}
	if err := h.Execute(r, action, log); err != nil {
		return err
	}
	if r.minDelay > 0 {
		r.sleep(r.minDelay)
	}
	return nil
}

// ClickAt performs a positioned click on behalf of the engine's image
// actions. No settle delay and no log line; the engine owns both.
func (r *Runner) ClickAt(x, y int, button string) error {
	return r.driver.ClickAt(x, y, button)
}
