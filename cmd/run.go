package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/macrostudio/macrod/internal/artifact"
	"github.com/macrostudio/macrod/internal/config"
	"github.com/macrostudio/macrod/internal/engine"
	"github.com/macrostudio/macrod/internal/hotkeys"
	"github.com/macrostudio/macrod/internal/input"
	"github.com/macrostudio/macrod/internal/logging"
	"github.com/macrostudio/macrod/internal/macro"
	"github.com/macrostudio/macrod/internal/vision"
)

var (
	runRoot        string
	runHotkeys     bool
	runNoArtifacts bool
)

var runCmd = &cobra.Command{
	Use:   "run <macro.json>",
	Short: "Run a macro",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := macro.Load(args[0])
		if err != nil {
			return err
		}

		settings := config.Load(config.Path())
		runner := input.NewRunner(input.NewRobotDriver())
		eng := engine.New(runner, vision.NewMatcher(runRoot))

		if runHotkeys {
			listener, err := bindHotkeys(eng, doc, settings)
			if err != nil {
				return err
			}
			defer listener.Close()
		}

		startedAt := time.Now()
		if err := eng.Start(doc); err != nil {
			return err
		}
		runID := eng.RunID()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		lines := drainLoop(eng, sigCh)

		if !runNoArtifacts {
			writeArtifacts(settings, runID, doc.Name(), args[0], startedAt, lines)
		}

		if jsonOutput {
			if err := printJSON(map[string]any{
				"run_id":      runID,
				"lines":       lines,
				"duration_ms": time.Since(startedAt).Milliseconds(),
			}); err != nil {
				return err
			}
		}

		if len(lines) == 0 || !strings.HasPrefix(lines[len(lines)-1], "macro finished in") {
			os.Exit(1)
		}
		return nil
	},
}

// drainLoop streams ring lines to stdout until the run ends, forwarding
// SIGINT/SIGTERM as a stop request.
func drainLoop(eng *engine.Engine, sigCh <-chan os.Signal) []string {
	var seen []string
	var cursor uint64

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		running := eng.IsRunning()

		var lines []string
		cursor, lines = eng.ReadLogs(cursor)
		for _, line := range lines {
			if !jsonOutput {
				fmt.Println(line)
			}
			seen = append(seen, line)
		}
		if !running {
			return seen
		}

		select {
		case <-sigCh:
			eng.Stop()
		case <-ticker.C:
		}
	}
}

func bindHotkeys(eng *engine.Engine, doc macro.Document, settings config.Settings) (*hotkeys.Listener, error) {
	startStop, emergency := doc.Hotkeys()
	if startStop == "" {
		startStop = settings.StartStopKey
	}
	if emergency == "" {
		emergency = settings.EmergencyStopKey
	}

	listener := hotkeys.NewListener()
	if err := listener.Bind(startStop, func() {
		if eng.IsRunning() {
			eng.Stop()
			return
		}
		_ = eng.Start(doc)
	}); err != nil {
		return nil, err
	}
	if err := listener.Bind(emergency, eng.Stop); err != nil {
		return nil, err
	}
	if err := listener.Start(); err != nil {
		return nil, err
	}
	return listener, nil
}

func writeArtifacts(settings config.Settings, runID, name, source string, startedAt time.Time, lines []string) {
	store := artifact.NewStore(settings.ArtifactsDir)
	dir, err := store.Write(artifact.Report{
		RunID:     runID,
		Macro:     name,
		Source:    source,
		StartedAt: startedAt.UTC().Format(time.RFC3339),
		EndedAt:   time.Now().UTC().Format(time.RFC3339),
	}, lines)
	if err != nil {
		logging.Warn("writing run artifacts failed", "error", err)
		return
	}
	logging.Debug("run artifacts written", "dir", dir)
}

func init() {
	runCmd.Flags().StringVar(&runRoot, "root", ".", "Directory relative image paths resolve against")
	runCmd.Flags().BoolVar(&runHotkeys, "hotkeys", false, "Enable global start/stop hotkeys during the run")
	runCmd.Flags().BoolVar(&runNoArtifacts, "no-artifacts", false, "Skip writing the run report and log files")
	rootCmd.AddCommand(runCmd)
}
