package artifact

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	mderrors "github.com/macrostudio/macrod/internal/errors"
)

func TestWriteCreatesRunDirectory(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "deep", "artifacts"))

	dir, err := store.Write(Report{
		RunID:     "run-1",
		Macro:     "Demo",
		Source:    "demo.json",
		StartedAt: "2026-08-21T10:00:00Z",
		EndedAt:   "2026-08-21T10:00:03Z",
	}, []string{"macro started", "macro finished in 3.00s"})
	require.NoError(t, err)
	assert.Equal(t, store.RunDir("run-1"), dir)

	data, err := os.ReadFile(filepath.Join(dir, "run.yaml"))
	require.NoError(t, err)

	var rep Report
	require.NoError(t, yaml.Unmarshal(data, &rep))
	assert.Equal(t, "run-1", rep.RunID)
	assert.Equal(t, "Demo", rep.Macro)
	assert.Equal(t, "demo.json", rep.Source)
	assert.Equal(t, "2026-08-21T10:00:00Z", rep.StartedAt)
	assert.Equal(t, "2026-08-21T10:00:03Z", rep.EndedAt)
	assert.Equal(t, 2, rep.LogLines)

	logs, err := os.ReadFile(filepath.Join(dir, "logs.txt"))
	require.NoError(t, err)
	assert.Equal(t, "macro started\nmacro finished in 3.00s\n", string(logs))
}

func TestWriteWithoutLogLines(t *testing.T) {
	store := NewStore(t.TempDir())

	dir, err := store.Write(Report{RunID: "run-2", Macro: "Empty"}, nil)
	require.NoError(t, err)

	logs, err := os.ReadFile(filepath.Join(dir, "logs.txt"))
	require.NoError(t, err)
	assert.Empty(t, string(logs))

	var rep Report
	data, err := os.ReadFile(filepath.Join(dir, "run.yaml"))
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, &rep))
	assert.Zero(t, rep.LogLines)
}

func TestWriteOmitsEmptySource(t *testing.T) {
	store := NewStore(t.TempDir())

	dir, err := store.Write(Report{RunID: "run-3", Macro: "NoFile"}, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "run.yaml"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "source:")
}

func TestWriteRejectsMissingRunID(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Write(Report{Macro: "Nameless"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run_id")
}

func TestLatestPicksNewestRun(t *testing.T) {
	store := NewStore(t.TempDir())

	older, err := store.Write(Report{RunID: "run-old"}, nil)
	require.NoError(t, err)
	newer, err := store.Write(Report{RunID: "run-new"}, nil)
	require.NoError(t, err)

	// Directory mtimes can land in the same tick, so pin them apart.
	base := time.Now().Add(-time.Minute)
	require.NoError(t, os.Chtimes(older, base, base))
	require.NoError(t, os.Chtimes(newer, base.Add(time.Second), base.Add(time.Second)))

	latest, err := store.Latest()
	require.NoError(t, err)
	assert.Equal(t, newer, latest)
}

func TestLatestIgnoresStrayFiles(t *testing.T) {
	store := NewStore(t.TempDir())

	dir, err := store.Write(Report{RunID: "run-only"}, nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(store.Root, "runs", "README"), []byte("x"), 0o644))

	latest, err := store.Latest()
	require.NoError(t, err)
	assert.Equal(t, dir, latest)
}

func TestLatestWithoutRuns(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Latest()
	require.Error(t, err)
	assert.True(t, mderrors.IsType(err, mderrors.Resource))
}

func TestNewStoreDefaultsRoot(t *testing.T) {
	assert.Equal(t, defaultRoot, NewStore("").Root)
	assert.Equal(t, "elsewhere", NewStore("elsewhere").Root)
}
