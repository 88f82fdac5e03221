package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openkraft/a11ykraft/internal/adapters/outbound/tui"
	"github.com/openkraft/a11ykraft/internal/domain"
)

func newFixCmd(opts *rootOptions) *cobra.Command {
	var (
		tierFlag   string
		ruleIDs    []string
		write      bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "fix <file|->",
		Short: "Apply mechanical fixes to a page",
		Long:  "Apply every fix that can be derived mechanically, such as alt placeholders and media controls. The patched page is printed unless --write is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, err := domain.ParseScanTier(tierFlag)
			if err != nil {
				return err
			}
			if write && args[0] == "-" {
				return fmt.Errorf("--write needs a file, not stdin")
			}

			svcs := newServices(opts.log())
			for _, id := range ruleIDs {
				if !svcs.catalog.Known(id) {
					return fmt.Errorf("unknown rule %q (see `a11ykraft rules`)", id)
				}
			}

			markup, source, _, err := readMarkup(cmd, args[0], false)
			if err != nil {
				return err
			}

			result, err := svcs.fix.Fix(markup, domain.FixOptions{Tier: tier, Rules: ruleIDs})
			if err != nil {
				return fmt.Errorf("fix failed: %w", err)
			}

			if write && len(result.Applied) > 0 {
				info, err := os.Stat(args[0])
				if err != nil {
					return err
				}
				if err := os.WriteFile(args[0], []byte(result.Markup), info.Mode().Perm()); err != nil {
					return fmt.Errorf("writing %s: %w", args[0], err)
				}
			}

			switch {
			case jsonOutput:
				return renderJSON(cmd, result)
			case write:
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderFix(source, result))
			default:
				fmt.Fprintln(cmd.OutOrStdout(), result.Markup)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tierFlag, "tier", "standard", "Rule set: standard or full")
	cmd.Flags().StringSliceVar(&ruleIDs, "rule", nil, "Only apply fixes from these rule ids")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Overwrite the file with the patched page")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the fix result as JSON")

	return cmd
}
