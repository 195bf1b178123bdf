package input

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/tidwall/gjson"

	mderrors "github.com/macrostudio/macrod/internal/errors"
)

type waitHandler struct{}

func (waitHandler) Execute(r *Runner, action gjson.Result, log func(string)) error {
	raw, ok := intField(action, "duration_ms")
	if !ok {
		return mderrors.NewAction("wait action missing 'duration_ms'", nil)
	}
	log(fmt.Sprintf("wait %dms", raw))
	if raw > 0 {
		r.sleep(time.Duration(raw) * time.Millisecond)
	}
	return nil
}

func (waitHandler) Describe(action gjson.Result) string {
	raw, _ := intField(action, "duration_ms")
	return fmt.Sprintf("Would wait %dms", raw)
}

type waitRandomHandler struct{}

func (waitRandomHandler) Execute(r *Runner, action gjson.Result, log func(string)) error {
	minMS, okMin := intField(action, "min_ms")
	maxMS, okMax := intField(action, "max_ms")
	if !okMin || !okMax {
		return mderrors.NewAction("wait_random action missing 'min_ms'/'max_ms'", nil)
	}

	// Inverted bounds are reordered, not rejected.
	if maxMS < minMS {
		minMS, maxMS = maxMS, minMS
	}
	if minMS < 0 {
		minMS = 0
	}
	if maxMS < 0 {
		maxMS = 0
	}

	duration := minMS
	if maxMS > minMS {
		duration = minMS + rand.IntN(maxMS-minMS+1)
	}
	log(fmt.Sprintf("wait_random %dms", duration))
	if duration > 0 {
		r.sleep(time.Duration(duration) * time.Millisecond)
	}
	return nil
}

func (waitRandomHandler) Describe(action gjson.Result) string {
	minMS, _ := intField(action, "min_ms")
	maxMS, _ := intField(action, "max_ms")
	if maxMS < minMS {
		minMS, maxMS = maxMS, minMS
	}
	return fmt.Sprintf("Would wait between %dms and %dms", minMS, maxMS)
}
