package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/monkeycoder/railcheck/internal/adapters/outbound/config"
	"github.com/monkeycoder/railcheck/internal/domain"
)

func newInitCmd() *cobra.Command {
	var (
		canonical string
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Generate a .railcheck.yaml configuration file",
		Long:  "Create a .railcheck.yaml holding every default so it can be edited in place.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := projectDir(args)
			if err != nil {
				return err
			}

			dest := filepath.Join(absPath, config.FileName)

			if !force {
				if _, err := os.Stat(dest); err == nil {
					return usageErrorf("%s already exists (use --force to overwrite)", config.FileName)
				}
			}

			cfg := domain.ProjectConfig{CanonicalDescriptor: canonical}.WithDefaults()
			if err := cfg.Validate(); err != nil {
				return usageErrorf("%v", err)
			}

			content, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			if err := os.WriteFile(dest, content, 0644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.FileName)
			return nil
		},
	}

	cmd.Flags().StringVar(&canonical, "canonical", domain.DefaultCanonicalDescriptor, "Canonical build descriptor file name")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing .railcheck.yaml")

	return cmd
}
