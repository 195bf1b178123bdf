// Package artifact persists per-run records: a YAML report plus the
// captured log lines, one directory per run.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	mderrors "github.com/macrostudio/macrod/internal/errors"
)

const defaultRoot = ".macrod"

// Report summarizes one engine run.
type Report struct {
	RunID     string `yaml:"run_id"`
	Macro     string `yaml:"macro"`
	Source    string `yaml:"source,omitempty"`
	StartedAt string `yaml:"started_at"`
	EndedAt   string `yaml:"ended_at"`
	LogLines  int    `yaml:"log_lines"`
}

// Store writes run artifacts under <Root>/runs/<run-id>/.
type Store struct {
	Root string
}

// NewStore returns a store rooted at root, or the default directory
// when root is empty.
func NewStore(root string) *Store {
	if root == "" {
		root = defaultRoot
	}
	return &Store{Root: root}
}

// RunDir returns the directory a run's artifacts live in.
func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.Root, "runs", runID)
}

// Write persists the report as run.yaml and the log lines as logs.txt,
// creating the run directory as needed. It returns the run directory.
func (s *Store) Write(rep Report, lines []string) (string, error) {
	if rep.RunID == "" {
		return "", fmt.Errorf("report is missing a run_id")
	}
	dir := s.RunDir(rep.RunID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating artifact dir: %w", err)
	}

	rep.LogLines = len(lines)
	data, err := yaml.Marshal(&rep)
	if err != nil {
		return "", fmt.Errorf("encoding run report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "run.yaml"), data, 0o644); err != nil {
		return "", fmt.Errorf("writing run report: %w", err)
	}

	logs := strings.Join(lines, "\n")
	if len(lines) > 0 {
		logs += "\n"
	}
	if err := os.WriteFile(filepath.Join(dir, "logs.txt"), []byte(logs), 0o644); err != nil {
		return "", fmt.Errorf("writing run logs: %w", err)
	}
	return dir, nil
}

// Latest returns the most recently modified run directory.
func (s *Store) Latest() (string, error) {
	runs := filepath.Join(s.Root, "runs")
	entries, err := os.ReadDir(runs)
	if err != nil {
		return "", mderrors.NewResource(fmt.Sprintf("no runs under %s", s.Root), err)
	}

	var (
		newest     string
		newestTime int64
	)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		mod := info.ModTime().UnixNano()
		if newest == "" || mod > newestTime || (mod == newestTime && entry.Name() > filepath.Base(newest)) {
			newest = filepath.Join(runs, entry.Name())
			newestTime = mod
		}
	}
	if newest == "" {
		return "", mderrors.NewResource(fmt.Sprintf("no runs under %s", s.Root), nil)
	}
	return newest, nil
}
