package input

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	mderrors "github.com/macrostudio/macrod/internal/errors"
)

// fakeDriver records every call it receives and can fail on demand.
type fakeDriver struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (d *fakeDriver) record(format string, args ...any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
	return d.err
}

func (d *fakeDriver) recorded() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.calls))
	copy(out, d.calls)
	return out
}

func (d *fakeDriver) Click(button string) error { return d.record("click(%s)", button) }
func (d *fakeDriver) ClickAt(x, y int, button string) error {
	return d.record("click_at(%d,%d,%s)", x, y, button)
}
func (d *fakeDriver) MouseDown(button string) error { return d.record("mouse_down(%s)", button) }
func (d *fakeDriver) MouseDownAt(x, y int, button string) error {
	return d.record("mouse_down_at(%d,%d,%s)", x, y, button)
}
func (d *fakeDriver) MouseUp(button string) error { return d.record("mouse_up(%s)", button) }
func (d *fakeDriver) MouseUpAt(x, y int, button string) error {
	return d.record("mouse_up_at(%d,%d,%s)", x, y, button)
}
func (d *fakeDriver) MoveMouse(x, y int, dur time.Duration) error {
	return d.record("move(%d,%d,%s)", x, y, dur)
}
func (d *fakeDriver) MoveMouseRel(dx, dy int, dur time.Duration) error {
	return d.record("move_rel(%d,%d,%s)", dx, dy, dur)
}
func (d *fakeDriver) DragTo(x, y int, button string, dur time.Duration) error {
	return d.record("drag(%d,%d,%s,%s)", x, y, button, dur)
}
func (d *fakeDriver) Scroll(amount int) error { return d.record("scroll(%d)", amount) }
func (d *fakeDriver) ScrollAt(amount, x, y int) error {
	return d.record("scroll_at(%d,%d,%d)", amount, x, y)
}
func (d *fakeDriver) KeyTap(key string) error  { return d.record("tap(%s)", key) }
func (d *fakeDriver) KeyDown(key string) error { return d.record("key_down(%s)", key) }
func (d *fakeDriver) KeyUp(key string) error   { return d.record("key_up(%s)", key) }
func (d *fakeDriver) TypeText(text string, perKey time.Duration) error {
	return d.record("type(%s,%s)", text, perKey)
}
func (d *fakeDriver) Hotkey(keys []string) error { return d.record("hotkey(%v)", keys) }

// newTestRunner wires a runner over the fake driver with the settle
// delay off and sleeps captured instead of slept.
func newTestRunner(d Driver) (*Runner, *[]time.Duration) {
	r := NewRunner(d)
	r.SetMinDelay(0)
	sleeps := &[]time.Duration{}
	r.sleep = func(dur time.Duration) { *sleeps = append(*sleeps, dur) }
	return r, sleeps
}

func runAction(t *testing.T, r *Runner, src string) []string {
	t.Helper()
	var logs []string
	err := r.Run(gjson.Parse(src), func(line string) { logs = append(logs, line) })
	require.NoError(t, err)
	return logs
}

func runExpectError(t *testing.T, r *Runner, src string) error {
	t.Helper()
	err := r.Run(gjson.Parse(src), func(string) {})
	require.Error(t, err)
	return err
}

func TestRunUnknownActionType(t *testing.T) {
	r, _ := newTestRunner(&fakeDriver{})
	err := runExpectError(t, r, `{"type": "teleport"}`)
	assert.EqualError(t, err, `unknown action type "teleport"`)
	assert.True(t, mderrors.IsType(err, mderrors.Action))
}

func TestRunAppliesSettleDelay(t *testing.T) {
	d := &fakeDriver{}
	r := NewRunner(d)
	var sleeps []time.Duration
	r.sleep = func(dur time.Duration) { sleeps = append(sleeps, dur) }

	require.NoError(t, r.Run(gjson.Parse(`{"type": "click"}`), func(string) {}))
	require.Len(t, sleeps, 1)
	assert.Equal(t, DefaultMinDelay, sleeps[0])

	r.SetMinDelay(0)
	require.NoError(t, r.Run(gjson.Parse(`{"type": "click"}`), func(string) {}))
	assert.Len(t, sleeps, 1)
}

func TestRunSkipsDelayOnFailure(t *testing.T) {
	d := &fakeDriver{err: fmt.Errorf("device gone")}
	r := NewRunner(d)
	var sleeps []time.Duration
	r.sleep = func(dur time.Duration) { sleeps = append(sleeps, dur) }

	var logs []string
	err := r.Run(gjson.Parse(`{"type": "click"}`), func(line string) { logs = append(logs, line) })
	assert.EqualError(t, err, "device gone")
	assert.Empty(t, logs, "failed action must not log")
	assert.Empty(t, sleeps)
}

func TestClickDefaultsToLeft(t *testing.T) {
	d := &fakeDriver{}
	r, _ := newTestRunner(d)
	logs := runAction(t, r, `{"type": "click"}`)
	assert.Equal(t, []string{"click button=left"}, logs)
	assert.Equal(t, []string{"click(left)"}, d.recorded())
}

func TestClickWithCoordinates(t *testing.T) {
	d := &fakeDriver{}
	r, _ := newTestRunner(d)
	logs := runAction(t, r, `{"type": "click", "x": 10, "y": 20, "button": "right"}`)
	assert.Equal(t, []string{"click button=right"}, logs)
	assert.Equal(t, []string{"click_at(10,20,right)"}, d.recorded())
}

func TestClickAt(t *testing.T) {
	d := &fakeDriver{}
	r, _ := newTestRunner(d)
	logs := runAction(t, r, `{"type": "click_at", "x": 300, "y": 150}`)
	assert.Equal(t, []string{"click_at x=300 y=150 button=left"}, logs)
	assert.Equal(t, []string{"click_at(300,150,left)"}, d.recorded())
}

func TestClickAtMissingCoordinates(t *testing.T) {
	r, _ := newTestRunner(&fakeDriver{})
	err := runExpectError(t, r, `{"type": "click_at", "x": 300}`)
	assert.EqualError(t, err, "click_at action missing 'x'/'y'")
}

func TestMouseDownAndUp(t *testing.T) {
	d := &fakeDriver{}
	r, _ := newTestRunner(d)

	logs := runAction(t, r, `{"type": "mouse_down", "button": "middle"}`)
	assert.Equal(t, []string{"mouse_down button=middle"}, logs)

	logs = runAction(t, r, `{"type": "mouse_up", "x": 5, "y": 6}`)
	assert.Equal(t, []string{"mouse_up x=5 y=6 button=left"}, logs)

	assert.Equal(t, []string{"mouse_down(middle)", "mouse_up_at(5,6,left)"}, d.recorded())
}

func TestMoveMouse(t *testing.T) {
	d := &fakeDriver{}
	r, _ := newTestRunner(d)
	logs := runAction(t, r, `{"type": "move_mouse", "x": 40, "y": 50, "duration_ms": 250}`)
	assert.Equal(t, []string{"move_mouse x=40 y=50 duration_ms=250"}, logs)
	assert.Equal(t, []string{"move(40,50,250ms)"}, d.recorded())
}

func TestMoveMouseMissingCoordinates(t *testing.T) {
	r, _ := newTestRunner(&fakeDriver{})
	err := runExpectError(t, r, `{"type": "move_mouse", "y": 50}`)
	assert.EqualError(t, err, "move_mouse action missing 'x'/'y'")
}

func TestMoveMouseRel(t *testing.T) {
	d := &fakeDriver{}
	r, _ := newTestRunner(d)
	logs := runAction(t, r, `{"type": "move_mouse_rel", "dx": -15, "dy": 0}`)
	assert.Equal(t, []string{"move_mouse_rel dx=-15 dy=0 duration_ms=0"}, logs)
	assert.Equal(t, []string{"move_rel(-15,0,0s)"}, d.recorded())
}

func TestDragTo(t *testing.T) {
	d := &fakeDriver{}
	r, _ := newTestRunner(d)
	logs := runAction(t, r, `{"type": "drag_to", "x": 100, "y": 200, "duration_ms": 500}`)
	assert.Equal(t, []string{"drag_to x=100 y=200 button=left duration_ms=500"}, logs)
	assert.Equal(t, []string{"drag(100,200,left,500ms)"}, d.recorded())
}

func TestScroll(t *testing.T) {
	d := &fakeDriver{}
	r, _ := newTestRunner(d)

	logs := runAction(t, r, `{"type": "scroll", "amount": -3}`)
	assert.Equal(t, []string{"scroll amount=-3"}, logs)

	logs = runAction(t, r, `{"type": "scroll", "amount": 2, "x": 640, "y": 360}`)
	assert.Equal(t, []string{"scroll amount=2 x=640 y=360"}, logs)

	assert.Equal(t, []string{"scroll(-3)", "scroll_at(2,640,360)"}, d.recorded())
}

func TestScrollMissingAmount(t *testing.T) {
	r, _ := newTestRunner(&fakeDriver{})
	err := runExpectError(t, r, `{"type": "scroll"}`)
	assert.EqualError(t, err, "scroll action missing 'amount'")
}

func TestKeyActions(t *testing.T) {
	d := &fakeDriver{}
	r, _ := newTestRunner(d)

	var logs []string
	for _, src := range []string{
		`{"type": "key_press", "key": "enter"}`,
		`{"type": "key_down", "key": "shift"}`,
		`{"type": "key_up", "key": "shift"}`,
	} {
		logs = append(logs, runAction(t, r, src)...)
	}

	assert.Equal(t, []string{
		"key_press key=enter",
		"key_down key=shift",
		"key_up key=shift",
	}, logs)
	assert.Equal(t, []string{"tap(enter)", "key_down(shift)", "key_up(shift)"}, d.recorded())
}

func TestKeyActionMissingKey(t *testing.T) {
	r, _ := newTestRunner(&fakeDriver{})
	for _, mode := range []string{"key_press", "key_down", "key_up"} {
		err := runExpectError(t, r, fmt.Sprintf(`{"type": %q}`, mode))
		assert.EqualError(t, err, fmt.Sprintf("%s action missing 'key'", mode))
	}
}

func TestTypeText(t *testing.T) {
	d := &fakeDriver{}
	r, _ := newTestRunner(d)
	logs := runAction(t, r, `{"type": "type_text", "text": "héllo", "interval_ms": 30}`)
	assert.Equal(t, []string{"type_text len=5 interval_ms=30"}, logs)
	assert.Equal(t, []string{"type(héllo,30ms)"}, d.recorded())
}

func TestTypeTextClampsNegativeInterval(t *testing.T) {
	d := &fakeDriver{}
	r, _ := newTestRunner(d)
	logs := runAction(t, r, `{"type": "type_text", "text": "ok", "interval_ms": -10}`)
	assert.Equal(t, []string{"type_text len=2 interval_ms=0"}, logs)
	assert.Equal(t, []string{"type(ok,0s)"}, d.recorded())
}

func TestTypeTextMissingText(t *testing.T) {
	r, _ := newTestRunner(&fakeDriver{})
	err := runExpectError(t, r, `{"type": "type_text"}`)
	assert.EqualError(t, err, "type_text action missing 'text'")
}

func TestHotkeyStringCombo(t *testing.T) {
	d := &fakeDriver{}
	r, _ := newTestRunner(d)
	logs := runAction(t, r, `{"type": "hotkey", "keys": "ctrl + shift + s"}`)
	assert.Equal(t, []string{"hotkey keys=ctrl+shift+s"}, logs)
	assert.Equal(t, []string{"hotkey([ctrl shift s])"}, d.recorded())
}

func TestHotkeyListForm(t *testing.T) {
	d := &fakeDriver{}
	r, _ := newTestRunner(d)
	logs := runAction(t, r, `{"type": "hotkey", "keys": ["ctrl", "c"]}`)
	assert.Equal(t, []string{"hotkey keys=ctrl+c"}, logs)
	assert.Equal(t, []string{"hotkey([ctrl c])"}, d.recorded())
}

func TestHotkeyWithoutKeys(t *testing.T) {
	r, _ := newTestRunner(&fakeDriver{})

	err := runExpectError(t, r, `{"type": "hotkey", "keys": ""}`)
	assert.EqualError(t, err, "hotkey action requires at least one key")

	err = runExpectError(t, r, `{"type": "hotkey", "keys": []}`)
	assert.EqualError(t, err, "hotkey action requires at least one key")

	err = runExpectError(t, r, `{"type": "hotkey", "keys": 7}`)
	assert.EqualError(t, err, "hotkey action missing 'keys'")
}

func TestWait(t *testing.T) {
	r, sleeps := newTestRunner(&fakeDriver{})
	logs := runAction(t, r, `{"type": "wait", "duration_ms": 120}`)
	assert.Equal(t, []string{"wait 120ms"}, logs)
	assert.Equal(t, []time.Duration{120 * time.Millisecond}, *sleeps)
}

func TestWaitZeroLogsWithoutSleeping(t *testing.T) {
	r, sleeps := newTestRunner(&fakeDriver{})
	logs := runAction(t, r, `{"type": "wait", "duration_ms": 0}`)
	assert.Equal(t, []string{"wait 0ms"}, logs)
	assert.Empty(t, *sleeps)
}

func TestWaitMissingDuration(t *testing.T) {
	r, _ := newTestRunner(&fakeDriver{})
	err := runExpectError(t, r, `{"type": "wait"}`)
	assert.EqualError(t, err, "wait action missing 'duration_ms'")
}

func TestWaitRandomStaysInBounds(t *testing.T) {
	r, sleeps := newTestRunner(&fakeDriver{})
	for i := 0; i < 20; i++ {
		logs := runAction(t, r, `{"type": "wait_random", "min_ms": 100, "max_ms": 500}`)
		require.Len(t, logs, 1)
		var picked int
		_, err := fmt.Sscanf(logs[0], "wait_random %dms", &picked)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, picked, 100)
		assert.LessOrEqual(t, picked, 500)
	}
	for _, d := range *sleeps {
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.LessOrEqual(t, d, 500*time.Millisecond)
	}
}

func TestWaitRandomReordersInvertedBounds(t *testing.T) {
	r, _ := newTestRunner(&fakeDriver{})
	for i := 0; i < 10; i++ {
		logs := runAction(t, r, `{"type": "wait_random", "min_ms": 500, "max_ms": 100}`)
		var picked int
		_, err := fmt.Sscanf(logs[0], "wait_random %dms", &picked)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, picked, 100)
		assert.LessOrEqual(t, picked, 500)
	}
}

func TestWaitRandomEqualBounds(t *testing.T) {
	r, sleeps := newTestRunner(&fakeDriver{})
	logs := runAction(t, r, `{"type": "wait_random", "min_ms": 50, "max_ms": 50}`)
	assert.Equal(t, []string{"wait_random 50ms"}, logs)
	assert.Equal(t, []time.Duration{50 * time.Millisecond}, *sleeps)
}

func TestWaitRandomMissingBounds(t *testing.T) {
	r, _ := newTestRunner(&fakeDriver{})
	err := runExpectError(t, r, `{"type": "wait_random", "min_ms": 100}`)
	assert.EqualError(t, err, "wait_random action missing 'min_ms'/'max_ms'")
}

func TestClickAtPassthrough(t *testing.T) {
	d := &fakeDriver{}
	r := NewRunner(d)
	var sleeps []time.Duration
	r.sleep = func(dur time.Duration) { sleeps = append(sleeps, dur) }

	require.NoError(t, r.ClickAt(11, 22, "left"))
	assert.Equal(t, []string{"click_at(11,22,left)"}, d.recorded())
	assert.Empty(t, sleeps, "direct clicks carry no settle delay")
}

func TestSplitCombo(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"ctrl+shift+s", []string{"ctrl", "shift", "s"}},
		{"ctrl, alt, del", []string{"ctrl", "alt", "del"}},
		{" f6 ", []string{"f6"}},
		{"a++b", []string{"a", "b"}},
		{"", nil},
	}
	for _, tc := range cases {
		got := SplitCombo(tc.raw)
		if len(tc.want) == 0 {
			assert.Empty(t, got, "raw=%q", tc.raw)
			continue
		}
		assert.Equal(t, tc.want, got, "raw=%q", tc.raw)
	}
}

func TestKnown(t *testing.T) {
	assert.True(t, Known("click"))
	assert.True(t, Known("wait_random"))
	assert.False(t, Known("wait_for_image"))
	assert.False(t, Known("if"))
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{`{"type": "click", "button": "right"}`, "Would click the right button"},
		{`{"type": "click_at", "x": 10, "y": 20}`, "Would click the left button at (10, 20)"},
		{`{"type": "type_text", "text": "hello"}`, "Would type 5 characters"},
		{`{"type": "hotkey", "keys": "ctrl+s"}`, "Would press hotkey ctrl+s"},
		{`{"type": "wait", "duration_ms": 250}`, "Would wait 250ms"},
		{`{"type": "wait_random", "min_ms": 10, "max_ms": 90}`, "Would wait between 10ms and 90ms"},
		{`{"type": "mouse_down"}`, "Would press the left button"},
		{`{"type": "key_up", "key": "shift"}`, `Would release key "shift"`},
	}
	for _, tc := range cases {
		got, ok := Describe(gjson.Parse(tc.src))
		require.True(t, ok, tc.src)
		assert.Equal(t, tc.want, got, tc.src)
	}

	_, ok := Describe(gjson.Parse(`{"type": "wait_for_image"}`))
	assert.False(t, ok)
}
