package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/openkraft/a11ykraft/internal/adapters/outbound/config"
	"github.com/openkraft/a11ykraft/internal/adapters/outbound/tui"
	"github.com/openkraft/a11ykraft/internal/adapters/outbound/watcher"
	"github.com/openkraft/a11ykraft/internal/application"
	"github.com/openkraft/a11ykraft/internal/domain"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var (
		tierFlag string
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Re-audit the site whenever pages change",
		Long:  "Audit the site, then audit it again each time pages, stylesheets or the config change. Each run updates the baseline, so the +/- counts show what the last edit changed.",
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

			var tier domain.ScanTier
			if tierFlag != "" {
				if tier, err = domain.ParseScanTier(tierFlag); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			svcs := newServices(opts.log())
			run := func(changed []string) error {
				report, err := svcs.audit.Audit(ctx, absPath, application.AuditOptions{Tier: tier, UpdateBaseline: true})
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					// A broken config is reported and the watch goes on.
					fmt.Fprintf(cmd.ErrOrStderr(), "audit failed: %v\n", err)
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderAuditLine(report, changed))
				return nil
			}

			if err := run(nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (Ctrl+C to stop)\n", absPath)

			w := watcher.New(debounce, opts.log())
			return w.Run(ctx, absPath, func(changed []string) error {
				relevant := relevantChanges(changed, svcs.config, absPath)
				if len(relevant) == 0 {
					return nil
				}
				return run(relevant)
			})
		},
	}

	cmd.Flags().StringVar(&tierFlag, "tier", "", "Rule set: standard or full (default from config)")
	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "Quiet period before re-running")

	return cmd
}

// relevantChanges keeps the paths that can change an audit: pages with an
// audited extension, stylesheets and the config file.
func relevantChanges(changed []string, loader *config.YAMLLoader, root string) []string {
	exts := domain.DefaultExtensions
	if cfg, err := loader.Load(root); err == nil {
		exts = cfg.EffectiveExtensions()
	}

	var out []string
	for _, p := range changed {
		ext := strings.ToLower(filepath.Ext(p))
		if p == config.FileName || ext == ".css" || contains(exts, ext) {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
