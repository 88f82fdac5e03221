package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openkraft/a11ykraft/internal/adapters/outbound/tui"
	"github.com/openkraft/a11ykraft/internal/domain"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var (
		projectPath string
		strict      bool
		noBaseline  bool
		pretty      bool
	)

	cmd := &cobra.Command{
		Use:   "validate [file1] [file2] ...",
		Short: "Check changed pages against the baseline",
		Long:  "Rescan changed pages and report issues they introduced or fixed since the last audit. Pages that no longer exist count as fixed. Without arguments the pages changed in the git work tree are checked.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(projectPath)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			changed := make([]string, 0, len(args))
			for _, a := range args {
				rel, err := relativeTo(absPath, a)
				if err != nil {
					return err
				}
				changed = append(changed, rel)
			}

			svcs := newServices(opts.log())
			if len(args) == 0 {
				if changed, err = gitChanges(svcs, absPath); err != nil {
					return err
				}
			}
			if noBaseline {
				_ = svcs.baseline.Invalidate(absPath)
			}

			result, err := svcs.validate.Validate(cmd.Context(), absPath, changed, strict)
			if err != nil {
				return fmt.Errorf("validate failed: %w", err)
			}

			if pretty {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderValidation(result))
			} else if err := renderJSON(cmd, result); err != nil {
				return err
			}

			if result.Status == domain.ValidationFail {
				return fmt.Errorf("validation failed: %d new issue(s)", len(result.NewIssues))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", ".", "Project root holding the baseline")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on any new issue")
	cmd.Flags().BoolVar(&noBaseline, "no-baseline", false, "Rebuild the baseline before comparing")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Render for the terminal instead of JSON")

	return cmd
}

// gitChanges lists the pages changed in the git work tree holding root.
func gitChanges(svcs *services, root string) ([]string, error) {
	if !svcs.git.IsGitRepo(root) {
		return nil, fmt.Errorf("no pages given and %s is not in a git repository", root)
	}
	cfg, err := svcs.config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	pages, err := svcs.git.ChangedPages(root, cfg.EffectiveExtensions())
	if err != nil {
		return nil, fmt.Errorf("listing changed pages: %w", err)
	}
	return pages, nil
}

// relativeTo turns a page argument into a slash path relative to root.
// Relative arguments are taken from the working directory.
func relativeTo(root, page string) (string, error) {
	absPage, err := filepath.Abs(page)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", page, err)
	}
	rel, err := filepath.Rel(root, absPage)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside %s", page, root)
	}
	return filepath.ToSlash(rel), nil
}
