package cli

import (
	"fmt"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openkraft/a11ykraft/internal/adapters/outbound/history"
	"github.com/openkraft/a11ykraft/internal/adapters/outbound/tui"
	"github.com/openkraft/a11ykraft/internal/application"
	"github.com/openkraft/a11ykraft/internal/domain"
)

func newAuditCmd(opts *rootOptions) *cobra.Command {
	var (
		tierFlag    string
		jsonOutput  bool
		ciMode      bool
		failOn      string
		minScore    int
		badge       bool
		showHistory bool
		noBaseline  bool
		quiet       bool
	)

	cmd := &cobra.Command{
		Use:   "audit [path]",
		Short: "Audit every page of a site",
		Long:  "Scan every page under a directory, check consistency across pages, and produce a per-page and overall accessibility score.",
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

			hist := history.New()
			if showHistory {
				entries, err := hist.Load(absPath)
				if err != nil {
					return fmt.Errorf("loading history: %w", err)
				}
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(entries))
				return nil
			}

			var tier domain.ScanTier
			if tierFlag != "" {
				if tier, err = domain.ParseScanTier(tierFlag); err != nil {
					return err
				}
			}

			svcs := newServices(opts.log())
			auditOpts := application.AuditOptions{Tier: tier, UpdateBaseline: !noBaseline}

			var bar *progressbar.ProgressBar
			if !quiet && !jsonOutput && !badge {
				auditOpts.Progress = func(done, total int) {
					if bar == nil {
						bar = progressbar.NewOptions(total,
							progressbar.OptionSetWriter(cmd.ErrOrStderr()),
							progressbar.OptionSetDescription("auditing"),
							progressbar.OptionShowCount(),
							progressbar.OptionClearOnFinish(),
						)
					}
					_ = bar.Set(done)
				}
			}

			report, err := svcs.audit.Audit(cmd.Context(), absPath, auditOpts)
			if bar != nil {
				_ = bar.Finish()
			}
			if err != nil {
				return fmt.Errorf("audit failed: %w", err)
			}

			if err := hist.Save(absPath, history.EntryFor(report)); err != nil {
				opts.log().Debug("score history not saved", zap.Error(err))
			}

			switch {
			case jsonOutput:
				if err := renderJSON(cmd, report); err != nil {
					return err
				}
			case badge:
				renderBadge(cmd, report)
			default:
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderAudit(report))
			}

			if !ciMode {
				return nil
			}

			cfg, err := svcs.config.Load(absPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if !cmd.Flags().Changed("min") {
				minScore = cfg.MinScore
			}
			if !cmd.Flags().Changed("fail-on") {
				failOn = string(cfg.FailOn)
			}
			if report.Overall < minScore {
				return fmt.Errorf("score %d is below minimum %d", report.Overall, minScore)
			}
			return checkFailOn(report.AllIssues(), failOn)
		},
	}

	cmd.Flags().StringVar(&tierFlag, "tier", "", "Rule set: standard or full (default from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the report as JSON")
	cmd.Flags().BoolVar(&ciMode, "ci", false, "CI mode: exit 1 below --min or at --fail-on")
	cmd.Flags().StringVar(&failOn, "fail-on", "", "Severity that fails CI mode (default from config)")
	cmd.Flags().IntVar(&minScore, "min", 0, "Minimum overall score for CI mode (default from config)")
	cmd.Flags().BoolVar(&badge, "badge", false, "Output shields.io badge URL")
	cmd.Flags().BoolVar(&showHistory, "history", false, "Show score history")
	cmd.Flags().BoolVar(&noBaseline, "no-baseline", false, "Do not store this audit as the new baseline")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Hide the progress bar")

	return cmd
}

func renderBadge(cmd *cobra.Command, report *domain.AuditReport) {
	color := domain.BadgeColor(report.Overall)
	url := fmt.Sprintf("https://img.shields.io/badge/a11y-%d%%2F100-%s", report.Overall, color)
	fmt.Fprintln(cmd.OutOrStdout(), url)
}
