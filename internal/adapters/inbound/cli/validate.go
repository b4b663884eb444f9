package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/monkeycoder/railcheck/internal/adapters/outbound/config"
	"github.com/monkeycoder/railcheck/internal/adapters/outbound/gitinfo"
	"github.com/monkeycoder/railcheck/internal/adapters/outbound/runlog"
	"github.com/monkeycoder/railcheck/internal/adapters/outbound/script"
	"github.com/monkeycoder/railcheck/internal/adapters/outbound/tui"
	"github.com/monkeycoder/railcheck/internal/adapters/outbound/workspace"
	"github.com/monkeycoder/railcheck/internal/application"
	"github.com/monkeycoder/railcheck/internal/domain"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	var (
		service    string
		fix        bool
		verbose    bool
		configPath string
		format     string
		logFile    string
	)

	cmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate Railway deployment configuration",
		Long: "Run every checker against the repository and print a report grouped by severity. " +
			"Exits 1 when any error finding is reported. With --fix, suggested fixes are written " +
			"to a remediation script for review; the script is never executed.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return usageErrorf("unknown --format %q (valid: text, json)", format)
			}
			absPath, err := projectDir(args)
			if err != nil {
				return err
			}

			svc := newValidateService(configPath, root.logger(cmd))
			outcome := svc.Validate(absPath, application.ValidateOptions{
				Service:    service,
				Fix:        fix,
				RunLogPath: logFile,
			})

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				if err := renderJSON(cmd, outcome.Report); err != nil {
					return err
				}
			default:
				fmt.Fprint(out, tui.RenderReport(outcome.Report, verbose))
				if outcome.ScriptPath != "" {
					fmt.Fprint(out, tui.RenderScriptNotice(outcome.ScriptPath, len(outcome.Script.Steps)))
				} else if !fix {
					fmt.Fprint(out, tui.RenderFixHint(outcome.Report))
				}
			}

			if code := outcome.Report.ExitCode(); code != ExitOK {
				return &ExitError{Code: code}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&service, "service", "", "Validate only this service from .railcheck.yaml")
	cmd.Flags().BoolVar(&fix, "fix", false, "Write suggested fixes to the remediation script (never executed)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Include ok findings in the report")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a railcheck config file (default: <path>/.railcheck.yaml)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, json)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Append a run entry to this JSON run log")

	return cmd
}

// newValidateService wires the standard outbound adapters.
func newValidateService(configPath string, logger *log.Logger) *application.ValidateService {
	var loader domain.ConfigLoader = config.New()
	if configPath != "" {
		loader = config.NewWithFile(configPath)
	}
	return application.NewValidateService(
		loader,
		workspace.New(),
		script.New(),
		runlog.New(),
		gitinfo.New(),
		logger,
	)
}

// projectDir resolves the optional [path] argument to an existing directory.
func projectDir(args []string) (string, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", usageErrorf("resolving path: %v", err)
	}
	info, err := os.Stat(absPath)
	if err != nil || !info.IsDir() {
		return "", usageErrorf("%s is not a directory", path)
	}
	return absPath, nil
}

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
