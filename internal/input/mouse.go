package input

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	mderrors "github.com/macrostudio/macrod/internal/errors"
)

// button reads the mouse button field, defaulting to left.
func button(action gjson.Result) string {
	b := action.Get("button")
	if b.Type != gjson.String || b.Str == "" {
		return "left"
	}
	return b.Str
}

// intField reads an integer field; ok is false when absent or null.
func intField(action gjson.Result, key string) (int, bool) {
	v := action.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return 0, false
	}
	return int(v.Int()), true
}

// durationField reads an optional duration_ms, returning the raw logged
// value and the clamped sleep duration.
func durationField(action gjson.Result) (raw int, d time.Duration) {
	raw, _ = intField(action, "duration_ms")
	if raw > 0 {
		d = time.Duration(raw) * time.Millisecond
	}
	return raw, d
}

type clickHandler struct{}

func (clickHandler) Execute(r *Runner, action gjson.Result, log func(string)) error {
	b := button(action)
	x, okX := intField(action, "x")
	y, okY := intField(action, "y")
	var err error
	if okX && okY {
		err = r.driver.ClickAt(x, y, b)
	} else {
		err = r.driver.Click(b)
	}
	if err != nil {
		return err
	}
	log(fmt.Sprintf("click button=%s", b))
	return nil
}

func (clickHandler) Describe(action gjson.Result) string {
	if x, ok := intField(action, "x"); ok {
		if y, ok := intField(action, "y"); ok {
			return fmt.Sprintf("Would click the %s button at (%d, %d)", button(action), x, y)
		}
	}
	return fmt.Sprintf("Would click the %s button", button(action))
}

type clickAtHandler struct{}

func (clickAtHandler) Execute(r *Runner, action gjson.Result, log func(string)) error {
	x, okX := intField(action, "x")
	y, okY := intField(action, "y")
	if !okX || !okY {
		return mderrors.NewAction("click_at action missing 'x'/'y'", nil)
	}
	b := button(action)
	if err := r.driver.ClickAt(x, y, b); err != nil {
		return err
	}
	log(fmt.Sprintf("click_at x=%d y=%d button=%s", x, y, b))
	return nil
}

func (clickAtHandler) Describe(action gjson.Result) string {
	x, _ := intField(action, "x")
	y, _ := intField(action, "y")
	return fmt.Sprintf("Would click the %s button at (%d, %d)", button(action), x, y)
}

// mouseToggleHandler covers mouse_down and mouse_up.
type mouseToggleHandler struct {
	dir string
}

func (h mouseToggleHandler) Execute(r *Runner, action gjson.Result, log func(string)) error {
	b := button(action)
	x, okX := intField(action, "x")
	y, okY := intField(action, "y")

	positioned := okX && okY
	var err error
	switch {
	case h.dir == "down" && positioned:
		err = r.driver.MouseDownAt(x, y, b)
	case h.dir == "down":
		err = r.driver.MouseDown(b)
	case positioned:
		err = r.driver.MouseUpAt(x, y, b)
	default:
		err = r.driver.MouseUp(b)
	}
	if err != nil {
		return err
	}

	if positioned {
		log(fmt.Sprintf("mouse_%s x=%d y=%d button=%s", h.dir, x, y, b))
	} else {
		log(fmt.Sprintf("mouse_%s button=%s", h.dir, b))
	}
	return nil
}

func (h mouseToggleHandler) Describe(action gjson.Result) string {
	verb := "press"
	if h.dir == "up" {
		verb = "release"
	}
	if x, ok := intField(action, "x"); ok {
		if y, ok := intField(action, "y"); ok {
			return fmt.Sprintf("Would %s the %s button at (%d, %d)", verb, button(action), x, y)
		}
	}
	return fmt.Sprintf("Would %s the %s button", verb, button(action))
}

type moveMouseHandler struct{}

func (moveMouseHandler) Execute(r *Runner, action gjson.Result, log func(string)) error {
	x, okX := intField(action, "x")
	y, okY := intField(action, "y")
	if !okX || !okY {
		return mderrors.NewAction("move_mouse action missing 'x'/'y'", nil)
	}
	raw, d := durationField(action)
	if err := r.driver.MoveMouse(x, y, d); err != nil {
		return err
	}
	log(fmt.Sprintf("move_mouse x=%d y=%d duration_ms=%d", x, y, raw))
	return nil
}

func (moveMouseHandler) Describe(action gjson.Result) string {
	x, _ := intField(action, "x")
	y, _ := intField(action, "y")
	return fmt.Sprintf("Would move the pointer to (%d, %d)", x, y)
}

type moveMouseRelHandler struct{}

func (moveMouseRelHandler) Execute(r *Runner, action gjson.Result, log func(string)) error {
	dx, okX := intField(action, "dx")
	dy, okY := intField(action, "dy")
	if !okX || !okY {
		return mderrors.NewAction("move_mouse_rel action missing 'dx'/'dy'", nil)
	}
	raw, d := durationField(action)
	if err := r.driver.MoveMouseRel(dx, dy, d); err != nil {
		return err
	}
	log(fmt.Sprintf("move_mouse_rel dx=%d dy=%d duration_ms=%d", dx, dy, raw))
	return nil
}

func (moveMouseRelHandler) Describe(action gjson.Result) string {
	dx, _ := intField(action, "dx")
	dy, _ := intField(action, "dy")
	return fmt.Sprintf("Would move the pointer by (%d, %d)", dx, dy)
}

type dragToHandler struct{}

func (dragToHandler) Execute(r *Runner, action gjson.Result, log func(string)) error {
	x, okX := intField(action, "x")
	y, okY := intField(action, "y")
	if !okX || !okY {
		return mderrors.NewAction("drag_to action missing 'x'/'y'", nil)
	}
	b := button(action)
	raw, d := durationField(action)
	if err := r.driver.DragTo(x, y, b, d); err != nil {
		return err
	}
	log(fmt.Sprintf("drag_to x=%d y=%d button=%s duration_ms=%d", x, y, b, raw))
	return nil
}

func (dragToHandler) Describe(action gjson.Result) string {
	x, _ := intField(action, "x")
	y, _ := intField(action, "y")
	return fmt.Sprintf("Would drag to (%d, %d) with the %s button", x, y, button(action))
}

type scrollHandler struct{}

func (scrollHandler) Execute(r *Runner, action gjson.Result, log func(string)) error {
	amount, ok := intField(action, "amount")
	if !ok {
		return mderrors.NewAction("scroll action missing 'amount'", nil)
	}
	x, okX := intField(action, "x")
	y, okY := intField(action, "y")

	if okX && okY {
		if err := r.driver.ScrollAt(amount, x, y); err != nil {
			return err
		}
		log(fmt.Sprintf("scroll amount=%d x=%d y=%d", amount, x, y))
		return nil
	}
	if err := r.driver.Scroll(amount); err != nil {
		return err
	}
	log(fmt.Sprintf("scroll amount=%d", amount))
	return nil
}

func (scrollHandler) Describe(action gjson.Result) string {
	amount, _ := intField(action, "amount")
	return fmt.Sprintf("Would scroll by %d", amount)
}
