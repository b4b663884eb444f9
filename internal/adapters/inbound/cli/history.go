package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/monkeycoder/railcheck/internal/adapters/outbound/config"
	"github.com/monkeycoder/railcheck/internal/adapters/outbound/runlog"
	"github.com/monkeycoder/railcheck/internal/adapters/outbound/tui"
)

func newHistoryCmd() *cobra.Command {
	var (
		logFile string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "history [path]",
		Short: "Show recorded validation runs",
		Long:  "Print the run log written by validate (run_log in .railcheck.yaml or --log-file).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := projectDir(args)
			if err != nil {
				return err
			}

			path := logFile
			if path == "" {
				cfg, err := config.New().Load(absPath)
				if err != nil {
					return usageErrorf("%v", err)
				}
				path = cfg.RunLog
			}
			if path == "" {
				return usageErrorf("no run log configured (set run_log in %s or pass --log-file)", config.FileName)
			}
			if !filepath.IsAbs(path) {
				path = filepath.Join(absPath, path)
			}

			entries, err := runlog.New().Load(path)
			if err != nil {
				return fmt.Errorf("loading run log: %w", err)
			}
			if jsonOut {
				return renderJSON(cmd, entries)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderRunLog(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "Run log to read (default: run_log from .railcheck.yaml)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}
