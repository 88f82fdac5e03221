package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkraft/a11ykraft/internal/adapters/outbound/tui"
	"github.com/openkraft/a11ykraft/internal/domain"
)

type scanOutput struct {
	Source  string          `json:"source"`
	Tier    domain.ScanTier `json:"tier"`
	Summary domain.Summary  `json:"summary"`
	Issues  []domain.Issue  `json:"issues"`
}

func newScanCmd(opts *rootOptions) *cobra.Command {
	var (
		tierFlag   string
		jsonOutput bool
		failOn     string
		noStyles   bool
	)

	cmd := &cobra.Command{
		Use:   "scan <file|->",
		Short: "Scan a single page",
		Long:  "Scan one HTML page, read from a file or from stdin with \"-\", and list its accessibility issues.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, err := domain.ParseScanTier(tierFlag)
			if err != nil {
				return err
			}

			markup, source, parseOpts, err := readMarkup(cmd, args[0], !noStyles)
			if err != nil {
				return err
			}

			issues, err := newServices(opts.log()).scan.Scan(markup, tier, parseOpts...)
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}

			if jsonOutput {
				if err := renderJSON(cmd, scanOutput{
					Source:  source,
					Tier:    tier,
					Summary: domain.Summarize(issues),
					Issues:  nonNil(issues),
				}); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderIssues(source, issues))
			}

			return checkFailOn(issues, failOn)
		},
	}

	cmd.Flags().StringVar(&tierFlag, "tier", "standard", "Rule set: standard or full")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output issues as JSON")
	cmd.Flags().StringVar(&failOn, "fail-on", "", "Exit 1 if an issue reaches this severity")
	cmd.Flags().BoolVar(&noStyles, "no-styles", false, "Do not load linked stylesheets")

	return cmd
}
