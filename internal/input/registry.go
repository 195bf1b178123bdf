package input

import (
	"github.com/tidwall/gjson"
)

// handler executes one action type and can describe it without side
// effects.
type handler interface {
	Execute(r *Runner, action gjson.Result, log func(string)) error
	Describe(action gjson.Result) string
}

var registry = map[string]handler{}

func init() {
	registry["click"] = clickHandler{}
	registry["click_at"] = clickAtHandler{}
	registry["mouse_down"] = mouseToggleHandler{dir: "down"}
	registry["mouse_up"] = mouseToggleHandler{dir: "up"}
	registry["move_mouse"] = moveMouseHandler{}
	registry["move_mouse_rel"] = moveMouseRelHandler{}
	registry["drag_to"] = dragToHandler{}
	registry["scroll"] = scrollHandler{}
	registry["key_press"] = keyHandler{mode: "key_press"}
	registry["key_down"] = keyHandler{mode: "key_down"}
	registry["key_up"] = keyHandler{mode: "key_up"}
	registry["type_text"] = typeTextHandler{}
	registry["hotkey"] = hotkeyHandler{}
	registry["wait"] = waitHandler{}
	registry["wait_random"] = waitRandomHandler{}
}

// Known reports whether the runner executes this action type directly.
// Image-conditional types live in the engine, not here.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// Describe renders a one-line preview of what executing the action would
// do. ok is false for types the runner does not handle.
func Describe(action gjson.Result) (string, bool) {
	h, ok := registry[action.Get("type").String()]
	if !ok {
		return "", false
	}
	return h.Describe(action), true
}
