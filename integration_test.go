package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/macrostudio/macrod/internal/artifact"
	"github.com/macrostudio/macrod/internal/engine"
	"github.com/macrostudio/macrod/internal/macro"
	"github.com/macrostudio/macrod/internal/vision"
)

// scriptRunner stands in for the robot-backed runner: it records what it
// was asked to do and logs the same canonical lines.
type scriptRunner struct {
	ran []string
}

func (r *scriptRunner) Run(action gjson.Result, log func(string)) error {
	name := action.Get("type").String()
	r.ran = append(r.ran, name)
	if name == "wait" {
		ms := action.Get("duration_ms").Int()
		log(fmt.Sprintf("wait %dms", ms))
		time.Sleep(time.Duration(ms) * time.Millisecond)
	}
	return nil
}

func (r *scriptRunner) ClickAt(x, y int, button string) error {
	r.ran = append(r.ran, fmt.Sprintf("click_at %d,%d %s", x, y, button))
	return nil
}

type fixedMatcher struct {
	found bool
	pt    image.Point
}

func (m fixedMatcher) Locate(c vision.Check) (image.Point, bool, error) {
	return m.pt, m.found, nil
}

func writeMacroFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func loadMacro(t *testing.T, path string) macro.Document {
	t.Helper()
	doc, err := macro.Load(path)
	if err != nil {
		t.Fatalf("loading macro: %v", err)
	}
	return doc
}

func waitForFinish(t *testing.T, eng *engine.Engine) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for eng.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("run did not finish in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMacroFileDrivesEngineTranscript(t *testing.T) {
	dir := t.TempDir()
	path := writeMacroFile(t, dir, "macro.json", `{
		"schema_version": 1,
		"name": "two-laps",
		"settings": {"repeat": 2},
		"actions": [{"type": "wait", "duration_ms": 30}]
	}`)

	runner := &scriptRunner{}
	eng := engine.New(runner, fixedMatcher{})
	if err := eng.Start(loadMacro(t, path)); err != nil {
		t.Fatal(err)
	}
	waitForFinish(t, eng)

	_, lines := eng.ReadLogs(0)
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d: %v", len(lines), lines)
	}
	want := []string{"macro started", "repeat 1/2", "wait 30ms", "repeat 2/2", "wait 30ms"}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d: got %q, want %q", i, lines[i], w)
		}
	}
	if !strings.HasPrefix(lines[5], "macro finished in") {
		t.Errorf("expected finish line, got %q", lines[5])
	}
	if len(runner.ran) != 2 {
		t.Errorf("expected 2 dispatches, got %v", runner.ran)
	}
}

func TestConditionalMacroTakesFalseBranch(t *testing.T) {
	dir := t.TempDir()
	path := writeMacroFile(t, dir, "macro.json", `{
		"schema_version": 1,
		"name": "guarded",
		"actions": [{
			"type": "if", "check": "image", "value": "ok.png",
			"on_true": [{"type": "key_press", "key": "enter"}],
			"on_false": [{"type": "key_press", "key": "esc"}]
		}]
	}`)

	runner := &scriptRunner{}
	eng := engine.New(runner, fixedMatcher{found: false})
	if err := eng.Start(loadMacro(t, path)); err != nil {
		t.Fatal(err)
	}
	waitForFinish(t, eng)

	_, lines := eng.ReadLogs(0)
	transcript := strings.Join(lines, "\n")
	if !strings.Contains(transcript, "if check=image") {
		t.Errorf("expected if line in transcript:\n%s", transcript)
	}
	if !strings.Contains(transcript, "if result=false") {
		t.Errorf("expected false result in transcript:\n%s", transcript)
	}
	if len(runner.ran) != 1 || runner.ran[0] != "key_press" {
		t.Errorf("expected only the else branch to run, got %v", runner.ran)
	}
}

func TestClickImageClicksLocatedPoint(t *testing.T) {
	dir := t.TempDir()
	path := writeMacroFile(t, dir, "macro.json", `{
		"schema_version": 1,
		"name": "clicker",
		"actions": [{"type": "click_image", "value": "btn.png", "timeout_ms": 1000}]
	}`)

	runner := &scriptRunner{}
	eng := engine.New(runner, fixedMatcher{found: true, pt: image.Point{X: 120, Y: 80}})
	if err := eng.Start(loadMacro(t, path)); err != nil {
		t.Fatal(err)
	}
	waitForFinish(t, eng)

	_, lines := eng.ReadLogs(0)
	transcript := strings.Join(lines, "\n")
	if !strings.Contains(transcript, "click_image x=120 y=80 button=left") {
		t.Errorf("expected click line in transcript:\n%s", transcript)
	}
	found := false
	for _, call := range runner.ran {
		if call == "click_at 120,80 left" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a click at the match center, got %v", runner.ran)
	}
}

func TestStopEndsInfiniteRunCleanly(t *testing.T) {
	dir := t.TempDir()
	path := writeMacroFile(t, dir, "macro.json", `{
		"schema_version": 1,
		"name": "forever",
		"settings": {"repeat": 0},
		"actions": [{"type": "wait", "duration_ms": 5}]
	}`)

	eng := engine.New(&scriptRunner{}, fixedMatcher{})
	if err := eng.Start(loadMacro(t, path)); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	eng.Stop()
	waitForFinish(t, eng)

	_, lines := eng.ReadLogs(0)
	transcript := strings.Join(lines, "\n")
	if !strings.Contains(transcript, "repeat infinite") {
		t.Errorf("expected infinite header in transcript:\n%s", transcript)
	}
	if !strings.HasPrefix(lines[len(lines)-1], "macro finished in") {
		t.Errorf("expected finish line last, got %q", lines[len(lines)-1])
	}
}

func TestRunArtifactsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeMacroFile(t, dir, "macro.json", `{
		"schema_version": 1,
		"name": "recorded",
		"actions": [{"type": "wait", "duration_ms": 10}]
	}`)

	eng := engine.New(&scriptRunner{}, fixedMatcher{})
	startedAt := time.Now().UTC()
	if err := eng.Start(loadMacro(t, path)); err != nil {
		t.Fatal(err)
	}
	waitForFinish(t, eng)
	_, lines := eng.ReadLogs(0)

	store := artifact.NewStore(filepath.Join(dir, ".macrod"))
	runDir, err := store.Write(artifact.Report{
		RunID:     eng.RunID(),
		Macro:     "recorded",
		Source:    path,
		StartedAt: startedAt.Format(time.RFC3339),
		EndedAt:   time.Now().UTC().Format(time.RFC3339),
	}, lines)
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(runDir, "run.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var rep artifact.Report
	if err := yaml.Unmarshal(data, &rep); err != nil {
		t.Fatal(err)
	}
	if rep.RunID != eng.RunID() {
		t.Errorf("run_id mismatch: %q vs %q", rep.RunID, eng.RunID())
	}
	if rep.LogLines != len(lines) {
		t.Errorf("expected %d log lines recorded, got %d", len(lines), rep.LogLines)
	}

	logs, err := os.ReadFile(filepath.Join(runDir, "logs.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(logs) != strings.Join(lines, "\n")+"\n" {
		t.Errorf("logs.txt mismatch:\n%s", logs)
	}

	latest, err := store.Latest()
	if err != nil {
		t.Fatal(err)
	}
	if latest != runDir {
		t.Errorf("expected Latest to return %q, got %q", runDir, latest)
	}
}

func TestLoadRejectsDocumentWithPath(t *testing.T) {
	dir := t.TempDir()
	path := writeMacroFile(t, dir, "macro.json", `{
		"schema_version": 1,
		"name": "broken",
		"actions": [{"type": "click_at"}]
	}`)

	_, err := macro.Load(path)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !strings.Contains(err.Error(), "macro.actions[0]") {
		t.Errorf("expected path-qualified message, got %q", err)
	}
}
