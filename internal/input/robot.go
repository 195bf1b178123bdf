package input

import (
	"time"

	"github.com/go-vgo/robotgo"

	mderrors "github.com/macrostudio/macrod/internal/errors"
)

// RobotDriver drives the desktop through robotgo. When Failsafe is on,
// parking the pointer in the top-left screen corner aborts the run
// before the next side effect fires.
type RobotDriver struct {
	Failsafe bool
}

// NewRobotDriver returns the production driver with the failsafe armed.
func NewRobotDriver() *RobotDriver {
	return &RobotDriver{Failsafe: true}
}

func (d *RobotDriver) guard() error {
	if !d.Failsafe {
		return nil
	}
	x, y := robotgo.Location()
	if x <= 0 && y <= 0 {
		return mderrors.NewSafety("pointer parked in screen corner")
	}
	return nil
}

func (d *RobotDriver) Click(button string) error {
	if err := d.guard(); err != nil {
		return err
	}
	robotgo.Click(button, false)
	return nil
}

func (d *RobotDriver) ClickAt(x, y int, button string) error {
	if err := d.guard(); err != nil {
		return err
	}
	robotgo.Move(x, y)
	robotgo.Click(button, false)
	return nil
}

func (d *RobotDriver) MouseDown(button string) error {
	if err := d.guard(); err != nil {
		return err
	}
	return robotgo.Toggle(button, "down")
}

func (d *RobotDriver) MouseDownAt(x, y int, button string) error {
	if err := d.guard(); err != nil {
		return err
	}
	robotgo.Move(x, y)
	return robotgo.Toggle(button, "down")
}

func (d *RobotDriver) MouseUp(button string) error {
	if err := d.guard(); err != nil {
		return err
	}
	return robotgo.Toggle(button, "up")
}

func (d *RobotDriver) MouseUpAt(x, y int, button string) error {
	if err := d.guard(); err != nil {
		return err
	}
	robotgo.Move(x, y)
	return robotgo.Toggle(button, "up")
}

func (d *RobotDriver) MoveMouse(x, y int, dur time.Duration) error {
	if err := d.guard(); err != nil {
		return err
	}
	if dur > 0 {
		robotgo.MoveSmooth(x, y)
	} else {
		robotgo.Move(x, y)
	}
	return nil
}

func (d *RobotDriver) MoveMouseRel(dx, dy int, dur time.Duration) error {
	if err := d.guard(); err != nil {
		return err
	}
	x, y := robotgo.Location()
	return d.MoveMouse(x+dx, y+dy, dur)
}

func (d *RobotDriver) DragTo(x, y int, button string, dur time.Duration) error {
	if err := d.guard(); err != nil {
		return err
	}
	if err := robotgo.Toggle(button, "down"); err != nil {
		return err
	}
	if dur > 0 {
		robotgo.MoveSmooth(x, y)
	} else {
		robotgo.Move(x, y)
	}
	return robotgo.Toggle(button, "up")
}

func (d *RobotDriver) Scroll(amount int) error {
	if err := d.guard(); err != nil {
		return err
	}
	robotgo.Scroll(0, amount)
	return nil
}

func (d *RobotDriver) ScrollAt(amount, x, y int) error {
	if err := d.guard(); err != nil {
		return err
	}
	robotgo.Move(x, y)
	robotgo.Scroll(0, amount)
	return nil
}

func (d *RobotDriver) KeyTap(key string) error {
	if err := d.guard(); err != nil {
		return err
	}
	return robotgo.KeyTap(key)
}

func (d *RobotDriver) KeyDown(key string) error {
	if err := d.guard(); err != nil {
		return err
	}
	return robotgo.KeyToggle(key, "down")
}

func (d *RobotDriver) KeyUp(key string) error {
	if err := d.guard(); err != nil {
		return err
	}
	return robotgo.KeyToggle(key, "up")
}

func (d *RobotDriver) TypeText(text string, perKey time.Duration) error {
	if err := d.guard(); err != nil {
		return err
	}
	if perKey <= 0 {
		robotgo.TypeStr(text)
		return nil
	}
	for _, r := range text {
		robotgo.TypeStr(string(r))
		time.Sleep(perKey)
	}
	return nil
}

func (d *RobotDriver) Hotkey(keys []string) error {
	if err := d.guard(); err != nil {
		return err
	}
	if len(keys) == 1 {
		return robotgo.KeyTap(keys[0])
	}
	mods := make([]any, len(keys)-1)
	for i, k := range keys[:len(keys)-1] {
		mods[i] = k
	}
	return robotgo.KeyTap(keys[len(keys)-1], mods...)
}
