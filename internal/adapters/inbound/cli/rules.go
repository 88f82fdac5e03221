package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkraft/a11ykraft/internal/adapters/outbound/tui"
	"github.com/openkraft/a11ykraft/internal/domain"
	"github.com/openkraft/a11ykraft/internal/domain/rules"
)

func newRulesCmd() *cobra.Command {
	var (
		tierFlag   string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rule catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := rules.Default().Info()
			if tierFlag != "" {
				tier, err := domain.ParseScanTier(tierFlag)
				if err != nil {
					return err
				}
				filtered := infos[:0]
				for _, info := range infos {
					if tier.Includes(info.Tier) {
						filtered = append(filtered, info)
					}
				}
				infos = filtered
			}

			if jsonOutput {
				return renderJSON(cmd, infos)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderRules(infos))
			return nil
		},
	}

	cmd.Flags().StringVar(&tierFlag, "tier", "", "Only rules run at this tier")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the catalog as JSON")

	return cmd
}
