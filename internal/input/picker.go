package input

import (
	"fmt"
	"time"

	"github.com/go-vgo/robotgo"
	hook "github.com/robotn/gohook"
)

// PickPoint blocks until the user clicks anywhere on screen and returns
// the click position. A timeout of 0 waits indefinitely. The event hook
// is held only for the duration of the call.
func PickPoint(timeout time.Duration) (int, int, error) {
	clickChan := make(chan struct{ X, Y int }, 1)
	stopChan := make(chan bool, 1)

	go func() {
		evChan := hook.Start()
		defer hook.End()

		for {
			select {
			case ev := <-evChan:
				if ev.Kind == hook.MouseDown {
					// Event coordinates lag on some platforms; the
					// pointer location at receipt time is authoritative.
					x, y := robotgo.Location()
					clickChan <- struct{ X, Y int }{X: x, Y: y}
				}
			case <-stopChan:
				return
			}
		}
	}()

	var timeoutChan <-chan time.Time
	if timeout > 0 {
		timeoutChan = time.After(timeout)
	}

	select {
	case pos := <-clickChan:
		stopChan <- true
		return pos.X, pos.Y, nil
	case <-timeoutChan:
		stopChan <- true
		return 0, 0, fmt.Errorf("timed out waiting for a click")
	}
}
