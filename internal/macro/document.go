// Package macro defines the persisted macro document: an untyped JSON
// object holding a name, run settings, advisory hotkeys, and a tree of
// actions. Documents are parsed into an immutable view; every load and
// save passes through the validator.
package macro

import (
	"github.com/tidwall/gjson"
)

// Default run settings applied when the document omits them.
const (
	DefaultRepeat   = 1
	DefaultMaxSteps = 50000
)

// SchemaVersion is the only document version this build reads or writes.
const SchemaVersion = 1

// Document is an immutable view over validated macro JSON. The zero value
// is an empty, invalid document.
type Document struct {
	raw  []byte
	root gjson.Result
}

// Name returns the macro's display name.
func (d Document) Name() string {
	return d.root.Get("name").String()
}

// Repeat returns settings.repeat; 0 means repeat until stopped.
func (d Document) Repeat() int {
	v := d.root.Get("settings.repeat")
	if !v.Exists() || v.Type == gjson.Null {
		return DefaultRepeat
	}
	return int(v.Int())
}

// MaxSteps returns settings.max_steps with the documented floor of 1.
func (d Document) MaxSteps() int {
	v := d.root.Get("settings.max_steps")
	n := DefaultMaxSteps
	if v.Exists() && v.Type != gjson.Null {
		n = int(v.Int())
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Actions returns the action list. ok is false when the document carries
// no well-formed list, which validated documents never do.
func (d Document) Actions() (list []gjson.Result, ok bool) {
	v := d.root.Get("actions")
	if !v.IsArray() {
		return nil, false
	}
	return v.Array(), true
}

// Hotkeys returns the advisory start_stop and stop combos, empty when
// unset. The engine never interprets these; the hotkey collaborator does.
func (d Document) Hotkeys() (startStop, stop string) {
	return d.root.Get("hotkeys.start_stop").String(), d.root.Get("hotkeys.stop").String()
}

// Raw returns a copy of the document bytes.
func (d Document) Raw() []byte {
	out := make([]byte, len(d.raw))
	copy(out, d.raw)
	return out
}
