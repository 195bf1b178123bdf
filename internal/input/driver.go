// Package input executes primitive desktop actions: pointer movement,
// clicks, key presses, typed text, and timed waits. A Runner dispatches
// validated action nodes to handlers over a Driver, the seam between
// action semantics and the OS automation backend.
package input

import "time"

// Driver performs the OS-level side effects. The production driver wraps
// robotgo; tests substitute a recorder.
type Driver interface {
	Click(button string) error
	ClickAt(x, y int, button string) error
	MouseDown(button string) error
	MouseDownAt(x, y int, button string) error
	MouseUp(button string) error
	MouseUpAt(x, y int, button string) error
	MoveMouse(x, y int, d time.Duration) error
	MoveMouseRel(dx, dy int, d time.Duration) error
	DragTo(x, y int, button string, d time.Duration) error
	Scroll(amount int) error
	ScrollAt(amount, x, y int) error
	KeyTap(key string) error
	KeyDown(key string) error
	KeyUp(key string) error
	TypeText(text string, perKey time.Duration) error
	Hotkey(keys []string) error
}
