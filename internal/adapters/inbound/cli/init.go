package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/openkraft/a11ykraft/internal/adapters/outbound/config"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Generate a .a11ykraft.yaml configuration file",
		Long:  "Create a commented .a11ykraft.yaml with the default settings.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if force {
				if err := os.Remove(filepath.Join(absPath, config.FileName)); err != nil && !os.IsNotExist(err) {
					return err
				}
			}

			if _, err := config.WriteDefault(absPath); err != nil {
				return fmt.Errorf("%w (use --force to overwrite)", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.FileName)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing .a11ykraft.yaml")

	return cmd
}
