package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openkraft/a11ykraft/internal/adapters/outbound/logging"
)

var (
	version = "dev"
	commit  = "none"
)

// rootOptions carries the persistent flags shared by every command.
type rootOptions struct {
	debug  bool
	logger *zap.Logger
}

// log returns the logger built in PersistentPreRunE, or a no-op logger when
// a command runs without it.
func (o *rootOptions) log() *zap.Logger {
	if o.logger == nil {
		return zap.NewNop()
	}
	return o.logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "a11ykraft",
		Short:         "Accessibility audits for static sites",
		Long:          "a11ykraft checks HTML pages against WCAG-style rules, scores every page, and applies the fixes that can be derived mechanically.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(opts.debug)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Write debug logs to stderr")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newScanCmd(opts))
	cmd.AddCommand(newAuditCmd(opts))
	cmd.AddCommand(newFixCmd(opts))
	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newRulesCmd())
	cmd.AddCommand(newWatchCmd(opts))
	cmd.AddCommand(newInitCmd())
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
