package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/monkeycoder/railcheck/internal/adapters/outbound/tui"
	"github.com/monkeycoder/railcheck/internal/domain/check"
)

func newCheckersCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "checkers",
		Short: "List the checkers in run order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			checkers := check.Default()
			if !jsonOut {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderCheckers(checkers))
				return nil
			}

			type entry struct {
				Name              string `json:"name"`
				Description       string `json:"description"`
				NeedsParsedConfig bool   `json:"needs_parsed_config"`
			}
			entries := make([]entry, 0, len(checkers))
			for _, c := range checkers {
				entries = append(entries, entry{c.Name(), c.Description(), c.NeedsParsedConfig()})
			}
			return renderJSON(cmd, entries)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}
