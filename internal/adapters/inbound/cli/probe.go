package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/monkeycoder/railcheck/internal/application"
)

func newProbeCmd(root *rootOptions) *cobra.Command {
	var (
		path    string
		timeout time.Duration
		retries int
		backoff time.Duration
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "probe <url>",
		Short: "Probe a deployed service's health endpoint",
		Long: "Send GET requests to a deployed service's health-check path and report status and latency. " +
			"Exits 1 unless the endpoint answers 2xx. This is separate from validate and is the only command that uses the network.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := application.NewProbeService(nil, root.logger(cmd))
			result, err := svc.Probe(cmd.Context(), args[0], application.ProbeOptions{
				Path:    path,
				Timeout: timeout,
				Retries: retries,
				Backoff: backoff,
			})
			if err != nil {
				return usageErrorf("%v", err)
			}

			if jsonOut {
				if err := renderJSON(cmd, result); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				for i, a := range result.Attempts {
					switch {
					case a.Err != "":
						fmt.Fprintf(out, "attempt %d: %s  error: %s\n", i+1, a.Latency.Round(time.Millisecond), a.Err)
					default:
						fmt.Fprintf(out, "attempt %d: %s  HTTP %d\n", i+1, a.Latency.Round(time.Millisecond), a.StatusCode)
					}
				}
				state := "unhealthy"
				if result.Healthy {
					state = "healthy"
				}
				fmt.Fprintf(out, "%s %s\n", result.URL, state)
			}

			if !result.Healthy {
				return &ExitError{Code: ExitFindings}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "/health", "Health-check path appended to the URL")
	cmd.Flags().DurationVar(&timeout, "timeout", application.DefaultProbeTimeout, "Per-request timeout")
	cmd.Flags().IntVar(&retries, "retries", 0, "Extra attempts after a failed probe")
	cmd.Flags().DurationVar(&backoff, "backoff", 2*time.Second, "Pause between attempts")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the probe result as JSON")

	return cmd
}
