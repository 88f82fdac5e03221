package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openkraft/a11ykraft/internal/adapters/outbound/baseline"
	"github.com/openkraft/a11ykraft/internal/adapters/outbound/config"
	"github.com/openkraft/a11ykraft/internal/adapters/outbound/gitinfo"
	"github.com/openkraft/a11ykraft/internal/adapters/outbound/scanner"
	"github.com/openkraft/a11ykraft/internal/adapters/outbound/stylesheet"
	"github.com/openkraft/a11ykraft/internal/application"
	"github.com/openkraft/a11ykraft/internal/domain"
	"github.com/openkraft/a11ykraft/internal/domain/dom"
	"github.com/openkraft/a11ykraft/internal/domain/rules"
)

// services wires the outbound adapters into the application services.
type services struct {
	catalog  *rules.Catalog
	config   *config.YAMLLoader
	baseline *baseline.Store
	git      *gitinfo.GitInfoAdapter
	scan     *application.ScanService
	audit    *application.AuditService
	fix      *application.FixService
	validate *application.ValidateService
}

func newServices(logger *zap.Logger) *services {
	catalog := rules.Default()
	cfg := config.NewWithCatalog(catalog)
	store := baseline.New()
	styles := stylesheet.New()
	git := gitinfo.New()
	scan := application.NewScanService(catalog, logger)
	audit := application.NewAuditService(catalog, scanner.New(), cfg, styles, store, git, logger)
	return &services{
		catalog:  catalog,
		config:   cfg,
		baseline: store,
		git:      git,
		scan:     scan,
		audit:    audit,
		fix:      application.NewFixService(scan),
		validate: application.NewValidateService(catalog, audit, cfg, styles, store, logger),
	}
}

// readMarkup reads a page from a file, or from stdin when arg is "-". For a
// file, linked stylesheets resolve relative to its directory.
func readMarkup(cmd *cobra.Command, arg string, resolveStyles bool) (markup, source string, opts []dom.Option, err error) {
	if arg == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", nil, fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "stdin", nil, nil
	}

	absPath, err := filepath.Abs(arg)
	if err != nil {
		return "", "", nil, fmt.Errorf("resolving path: %w", err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return "", "", nil, fmt.Errorf("reading %s: %w", arg, err)
	}
	if resolveStyles {
		loader := stylesheet.New().LoaderFor(filepath.Dir(absPath), filepath.Base(absPath))
		opts = append(opts, dom.WithStylesheetLoader(loader))
	}
	return string(data), arg, opts, nil
}

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// checkFailOn returns an error when an issue reaches the severity named by
// failOn. An empty failOn or "none" disables the check.
func checkFailOn(issues []domain.Issue, failOn string) error {
	if failOn == "" || failOn == "none" {
		return nil
	}
	threshold, err := domain.ParseSeverity(failOn)
	if err != nil {
		return err
	}
	n := 0
	for _, i := range issues {
		if i.Severity.AtLeast(threshold) {
			n++
		}
	}
	if n > 0 {
		return fmt.Errorf("%d issue(s) at or above %s", n, threshold)
	}
	return nil
}

func nonNil(issues []domain.Issue) []domain.Issue {
	if issues == nil {
		return []domain.Issue{}
	}
	return issues
}
