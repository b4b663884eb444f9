package cli

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	logLevel string
}

// logger builds the run logger. Logs go to stderr; stdout carries reports.
func (o *rootOptions) logger(cmd *cobra.Command) *log.Logger {
	level, err := log.ParseLevel(o.logLevel)
	if err != nil {
		level = log.WarnLevel
	}
	return log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Level:  level,
		Prefix: "railcheck",
	})
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "railcheck",
		Short: "Catch Railway deploy failures before you push",
		Long: "railcheck statically validates a repository's Railway deployment configuration: " +
			"descriptor syntax, build-system conflicts, port and host binding, health checks and " +
			"cross-service references. It can write a remediation script but never runs it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := log.ParseLevel(opts.logLevel); err != nil {
				return usageErrorf("invalid --log-level %q (valid: debug, info, warn, error)", opts.logLevel)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level written to stderr (debug, info, warn, error)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newProbeCmd(opts))
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newCheckersCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newMCPCmd(opts))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show railcheck version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "railcheck %s (%s)\n", version, commit)
			return nil
		},
	}
}
