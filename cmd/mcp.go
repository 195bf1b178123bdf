package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/macrostudio/macrod/internal/engine"
	"github.com/macrostudio/macrod/internal/input"
	"github.com/macrostudio/macrod/internal/mcp"
	"github.com/macrostudio/macrod/internal/vision"
)

var ssePort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, _ := os.Getwd()
		runner := input.NewRunner(input.NewRobotDriver())
		eng := engine.New(runner, vision.NewMatcher(wd))
		srv := mcp.NewServer(eng, wd)
		if ssePort > 0 {
			return mcp.ServeSSE(ssePort, srv)
		}
		return srv.Serve()
	},
}

func init() {
	mcpCmd.Flags().IntVar(&ssePort, "sse-port", 0, "Serve over SSE on this port instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}
