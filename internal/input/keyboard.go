package input

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	mderrors "github.com/macrostudio/macrod/internal/errors"
)

// keyHandler covers key_press, key_down, and key_up.
type keyHandler struct {
	mode string
}

func (h keyHandler) Execute(r *Runner, action gjson.Result, log func(string)) error {
	key := action.Get("key").String()
	if key == "" {
		return mderrors.NewAction(fmt.Sprintf("%s action missing 'key'", h.mode), nil)
	}

	var err error
	switch h.mode {
	case "key_down":
		err = r.driver.KeyDown(key)
	case "key_up":
		err = r.driver.KeyUp(key)
	default:
		err = r.driver.KeyTap(key)
	}
	if err != nil {
		return err
	}
	log(fmt.Sprintf("%s key=%s", h.mode, key))
	return nil
}

func (h keyHandler) Describe(action gjson.Result) string {
	key := action.Get("key").String()
	switch h.mode {
	case "key_down":
		return fmt.Sprintf("Would hold key %q", key)
	case "key_up":
		return fmt.Sprintf("Would release key %q", key)
	}
	return fmt.Sprintf("Would press key %q", key)
}

type typeTextHandler struct{}

func (typeTextHandler) Execute(r *Runner, action gjson.Result, log func(string)) error {
	text := action.Get("text")
	if !text.Exists() || text.Type == gjson.Null {
		return mderrors.NewAction("type_text action missing 'text'", nil)
	}
	s := text.String()

	intervalMS, _ := intField(action, "interval_ms")
	if intervalMS < 0 {
		intervalMS = 0
	}

	if err := r.driver.TypeText(s, time.Duration(intervalMS)*time.Millisecond); err != nil {
		return err
	}
	log(fmt.Sprintf("type_text len=%d interval_ms=%d", utf8.RuneCountInString(s), intervalMS))
	return nil
}

func (typeTextHandler) Describe(action gjson.Result) string {
	return fmt.Sprintf("Would type %d characters", utf8.RuneCountInString(action.Get("text").String()))
}

type hotkeyHandler struct{}

// SplitCombo breaks a combo string into its keys. Strings split on "+"
// or ",", blank parts dropped.
func SplitCombo(raw string) []string {
	parts := strings.Split(strings.ReplaceAll(raw, ",", "+"), "+")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}

// comboKeys reads the keys field of a hotkey action in either shape.
func comboKeys(action gjson.Result) ([]string, error) {
	v := action.Get("keys")
	switch {
	case v.Type == gjson.String:
		return SplitCombo(v.Str), nil
	case v.IsArray():
		var keys []string
		for _, k := range v.Array() {
			if s := strings.TrimSpace(k.String()); s != "" {
				keys = append(keys, s)
			}
		}
		return keys, nil
	}
	return nil, mderrors.NewAction("hotkey action missing 'keys'", nil)
}

func (hotkeyHandler) Execute(r *Runner, action gjson.Result, log func(string)) error {
	keys, err := comboKeys(action)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return mderrors.NewAction("hotkey action requires at least one key", nil)
	}
	if err := r.driver.Hotkey(keys); err != nil {
		return err
	}
	log(fmt.Sprintf("hotkey keys=%s", strings.Join(keys, "+")))
	return nil
}

func (hotkeyHandler) Describe(action gjson.Result) string {
	keys, err := comboKeys(action)
	if err != nil || len(keys) == 0 {
		return "Would press a hotkey"
	}
	return fmt.Sprintf("Would press hotkey %s", strings.Join(keys, "+"))
}
