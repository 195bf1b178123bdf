package macro

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	mderrors "github.com/macrostudio/macrod/internal/errors"
)

// Validate checks macro JSON for structural correctness. It walks the
// untyped document and reports the first problem as a validation error
// whose path names the offending field (macro.actions[3].x). It never
// executes or mutates anything.
func Validate(data []byte) error {
	root := gjson.ParseBytes(data)
	return validateRoot(root)
}

func validateRoot(root gjson.Result) error {
	if !root.IsObject() {
		return mderrors.NewValidation("macro", "must be an object")
	}

	if sv := root.Get("schema_version"); sv.Type != gjson.Number || sv.Int() != SchemaVersion {
		return mderrors.NewValidation("", "unsupported schema_version")
	}

	name := root.Get("name")
	if name.Type != gjson.String || strings.TrimSpace(name.Str) == "" {
		return mderrors.NewValidation("macro.name", "must be a non-empty string")
	}

	settings := root.Get("settings")
	if settings.Exists() && settings.Type != gjson.Null {
		if !settings.IsObject() {
			return mderrors.NewValidation("macro.settings", "must be an object")
		}
		if repeat := settings.Get("repeat"); repeat.Exists() && repeat.Type != gjson.Null {
			if repeat.Type != gjson.Number {
				return mderrors.NewValidation("macro.settings.repeat", "must be an integer")
			}
			if repeat.Int() < 0 {
				return mderrors.NewValidation("macro.settings.repeat", "must be >= 0")
			}
		}
		if maxSteps := settings.Get("max_steps"); maxSteps.Exists() && maxSteps.Type != gjson.Null {
			if maxSteps.Type != gjson.Number {
				return mderrors.NewValidation("macro.settings.max_steps", "must be an integer")
			}
			if maxSteps.Int() < 1 {
				return mderrors.NewValidation("macro.settings.max_steps", "must be >= 1")
			}
		}
	}

	return validateActions(root.Get("actions"), "macro.actions")
}

// validateActions checks an action list node. ctx is the document path of
// the list itself.
func validateActions(actions gjson.Result, ctx string) error {
	if !actions.IsArray() {
		return mderrors.NewValidation(ctx, "must be a list")
	}
	for i, action := range actions.Array() {
		if err := validateAction(action, fmt.Sprintf("%s[%d]", ctx, i)); err != nil {
			return err
		}
	}
	return nil
}

func validateAction(action gjson.Result, ctx string) error {
	if !action.IsObject() {
		return mderrors.NewValidation(ctx, "must be an object")
	}

	actionType, err := requireString(action, "type", ctx)
	if err != nil {
		return err
	}

	if post := action.Get("post_action"); post.Exists() && post.Type != gjson.Null {
		if !post.IsObject() {
			return mderrors.NewValidation(ctx+".post_action", "must be an object")
		}
		if err := validateAction(post, ctx+".post_action"); err != nil {
			return err
		}
	}

	switch actionType {
	case "click":
		if err := optionalButton(action, ctx); err != nil {
			return err
		}
		if _, _, err := optionalInt(action, "x", ctx); err != nil {
			return err
		}
		if _, _, err := optionalInt(action, "y", ctx); err != nil {
			return err
		}

	case "click_at":
		if err := optionalButton(action, ctx); err != nil {
			return err
		}
		if _, err := requireInt(action, "x", ctx); err != nil {
			return err
		}
		if _, err := requireInt(action, "y", ctx); err != nil {
			return err
		}

	case "key_press", "key_down", "key_up":
		if _, err := requireString(action, "key", ctx); err != nil {
			return err
		}

	case "type_text":
		if action.Get("text").Type != gjson.String {
			return mderrors.NewValidation(ctx+".text", "must be a string")
		}
		interval, ok, err := optionalInt(action, "interval_ms", ctx)
		if err != nil {
			return err
		}
		if ok && interval < 0 {
			return mderrors.NewValidation(ctx+".interval_ms", "must be >= 0")
		}

	case "hotkey":
		if err := validateHotkeyKeys(action.Get("keys"), ctx); err != nil {
			return err
		}

	case "wait":
		if _, err := requireInt(action, "duration_ms", ctx); err != nil {
			return err
		}

	case "wait_random":
		if _, err := requireInt(action, "min_ms", ctx); err != nil {
			return err
		}
		if _, err := requireInt(action, "max_ms", ctx); err != nil {
			return err
		}

	case "mouse_down", "mouse_up":
		if err := optionalButton(action, ctx); err != nil {
			return err
		}
		_, hasX, err := optionalInt(action, "x", ctx)
		if err != nil {
			return err
		}
		_, hasY, err := optionalInt(action, "y", ctx)
		if err != nil {
			return err
		}
		if hasX != hasY {
			return mderrors.NewValidation(ctx+".x", "and .y must be provided together")
		}

	case "move_mouse":
		if _, err := requireInt(action, "x", ctx); err != nil {
			return err
		}
		if _, err := requireInt(action, "y", ctx); err != nil {
			return err
		}
		if _, _, err := optionalInt(action, "duration_ms", ctx); err != nil {
			return err
		}

	case "move_mouse_rel":
		if _, err := requireInt(action, "dx", ctx); err != nil {
			return err
		}
		if _, err := requireInt(action, "dy", ctx); err != nil {
			return err
		}
		if _, _, err := optionalInt(action, "duration_ms", ctx); err != nil {
			return err
		}

	case "drag_to":
		if _, err := requireInt(action, "x", ctx); err != nil {
			return err
		}
		if _, err := requireInt(action, "y", ctx); err != nil {
			return err
		}
		if err := optionalButton(action, ctx); err != nil {
			return err
		}
		if _, _, err := optionalInt(action, "duration_ms", ctx); err != nil {
			return err
		}

	case "scroll":
		if _, err := requireInt(action, "amount", ctx); err != nil {
			return err
		}
		if _, _, err := optionalInt(action, "x", ctx); err != nil {
			return err
		}
		if _, _, err := optionalInt(action, "y", ctx); err != nil {
			return err
		}

	case "wait_for_image", "click_image":
		if err := validateImageCheck(action, ctx); err != nil {
			return err
		}
		if actionType == "click_image" {
			if err := optionalButton(action, ctx); err != nil {
				return err
			}
		}

	case "if":
		check, err := requireString(action, "check", ctx)
		if err != nil {
			return err
		}
		if check != "image" {
			return mderrors.NewValidation(ctx+".check", "unsupported")
		}
		if err := validateImageCheck(action, ctx); err != nil {
			return err
		}
		if onTrue := action.Get("on_true"); onTrue.Exists() && onTrue.Type != gjson.Null {
			if err := validateActions(onTrue, ctx+".on_true"); err != nil {
				return err
			}
		}
		if onFalse := action.Get("on_false"); onFalse.Exists() && onFalse.Type != gjson.Null {
			if err := validateActions(onFalse, ctx+".on_false"); err != nil {
				return err
			}
		}

	default:
		return mderrors.NewValidationf(ctx+".type", "unknown action type %q", actionType)
	}

	return nil
}

// validateImageCheck covers the fields shared by wait_for_image,
// click_image, and the image branch of if: value, confidence, region, and
// the polling knobs.
func validateImageCheck(action gjson.Result, ctx string) error {
	if _, err := requireString(action, "value", ctx); err != nil {
		return err
	}

	if conf := action.Get("confidence"); conf.Exists() && conf.Type != gjson.Null {
		if conf.Type != gjson.Number {
			return mderrors.NewValidation(ctx+".confidence", "must be a number")
		}
		if conf.Num < 0 || conf.Num > 1 {
			return mderrors.NewValidation(ctx+".confidence", "must be between 0 and 1")
		}
	}

	if region := action.Get("region"); region.Exists() && region.Type != gjson.Null {
		vals := region.Array()
		valid := region.IsArray() && len(vals) == 4
		if valid {
			for _, v := range vals {
				if v.Type != gjson.Number {
					valid = false
					break
				}
			}
		}
		if !valid {
			return mderrors.NewValidation(ctx+".region", "must be [x, y, w, h]")
		}
	}

	timeout, ok, err := optionalInt(action, "timeout_ms", ctx)
	if err != nil {
		return err
	}
	if ok && timeout < 0 {
		return mderrors.NewValidation(ctx+".timeout_ms", "must be >= 0")
	}

	interval, ok, err := optionalInt(action, "interval_ms", ctx)
	if err != nil {
		return err
	}
	if ok && interval < 0 {
		return mderrors.NewValidation(ctx+".interval_ms", "must be >= 0")
	}

	return nil
}

func validateHotkeyKeys(keys gjson.Result, ctx string) error {
	switch {
	case keys.Type == gjson.String:
		if strings.TrimSpace(keys.Str) == "" {
			return mderrors.NewValidation(ctx+".keys", "must be a non-empty string")
		}
	case keys.IsArray():
		vals := keys.Array()
		if len(vals) == 0 {
			return mderrors.NewValidation(ctx+".keys", "must be a list of non-empty strings")
		}
		for _, k := range vals {
			if k.Type != gjson.String || strings.TrimSpace(k.Str) == "" {
				return mderrors.NewValidation(ctx+".keys", "must be a list of non-empty strings")
			}
		}
	default:
		return mderrors.NewValidation(ctx+".keys", "must be a string or list")
	}
	return nil
}

func requireString(obj gjson.Result, key, ctx string) (string, error) {
	v := obj.Get(key)
	if v.Type != gjson.String || strings.TrimSpace(v.Str) == "" {
		return "", mderrors.NewValidation(ctx+"."+key, "must be a non-empty string")
	}
	return v.Str, nil
}

func requireInt(obj gjson.Result, key, ctx string) (int, error) {
	v := obj.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return 0, mderrors.NewValidation(ctx+"."+key, "is required")
	}
	if v.Type != gjson.Number {
		return 0, mderrors.NewValidation(ctx+"."+key, "must be an integer")
	}
	return int(v.Int()), nil
}

func optionalInt(obj gjson.Result, key, ctx string) (val int, ok bool, err error) {
	v := obj.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return 0, false, nil
	}
	if v.Type != gjson.Number {
		return 0, false, mderrors.NewValidation(ctx+"."+key, "must be an integer")
	}
	return int(v.Int()), true, nil
}

// optionalButton checks the mouse button field shared by click-style
// actions. Absent means left; present means a non-blank string.
func optionalButton(action gjson.Result, ctx string) error {
	v := action.Get("button")
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	if v.Type != gjson.String || strings.TrimSpace(v.Str) == "" {
		return mderrors.NewValidation(ctx+".button", "must be a string")
	}
	return nil
}
