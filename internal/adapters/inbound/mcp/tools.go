package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
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

// registerTools registers all a11ykraft MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string, logger *zap.Logger) {
	tierOption := mcplib.WithString("tier", mcplib.Description("Rule set: standard (default) or full"))

	// 1. a11ykraft_scan_markup
	s.AddTool(
		mcplib.NewTool("a11ykraft_scan_markup",
			mcplib.WithDescription("Scan an HTML snippet or page and return its accessibility issues as JSON"),
			mcplib.WithString("markup", mcplib.Required(), mcplib.Description("HTML markup to scan")),
			tierOption,
		),
		handleScanMarkup(logger),
	)

	// 2. a11ykraft_scan_file
	s.AddTool(
		mcplib.NewTool("a11ykraft_scan_file",
			mcplib.WithDescription("Scan one page of the site, resolving its local stylesheets"),
			mcplib.WithString("file", mcplib.Required(), mcplib.Description("Page path relative to the site root")),
			tierOption,
		),
		handleScanFile(projectPath, logger),
	)

	// 3. a11ykraft_audit
	s.AddTool(
		mcplib.NewTool("a11ykraft_audit",
			mcplib.WithDescription("Audit every page of the site and return scores, issues and cross-page findings"),
			tierOption,
		),
		handleAudit(projectPath, logger),
	)

	// 4. a11ykraft_fix_markup
	s.AddTool(
		mcplib.NewTool("a11ykraft_fix_markup",
			mcplib.WithDescription("Apply mechanical fixes (alt placeholders, media controls, tabindex) to markup and return the patched markup"),
			mcplib.WithString("markup", mcplib.Required(), mcplib.Description("HTML markup to fix")),
			mcplib.WithString("rules", mcplib.Description("Comma-separated rule ids to limit fixes to")),
			tierOption,
		),
		handleFixMarkup(logger),
	)

	// 5. a11ykraft_list_rules
	s.AddTool(
		mcplib.NewTool("a11ykraft_list_rules",
			mcplib.WithDescription("List the rule catalog with severities and WCAG criteria"),
		),
		handleListRules(),
	)

	// 6. a11ykraft_validate
	s.AddTool(
		mcplib.NewTool("a11ykraft_validate",
			mcplib.WithDescription("Check changed pages against the baseline and report new and fixed issues"),
			mcplib.WithString("changed", mcplib.Required(), mcplib.Description("Comma-separated page paths relative to the site root")),
			mcplib.WithBoolean("strict", mcplib.Description("Fail on any new issue")),
		),
		handleValidate(projectPath, logger),
	)
}

// newAuditServices creates the adapters and services for site-level tools.
func newAuditServices(logger *zap.Logger) (*application.AuditService, *application.ValidateService) {
	catalog := rules.Default()
	cfg := config.NewWithCatalog(catalog)
	styles := stylesheet.New()
	store := baseline.New()
	audit := application.NewAuditService(catalog, scanner.New(), cfg, styles, store, gitinfo.New(), logger)
	return audit, application.NewValidateService(catalog, audit, cfg, styles, store, logger)
}

type scanResult struct {
	Source  string          `json:"source"`
	Tier    domain.ScanTier `json:"tier"`
	Summary domain.Summary  `json:"summary"`
	Issues  []domain.Issue  `json:"issues"`
}

func newScanResult(source string, tier domain.ScanTier, issues []domain.Issue) scanResult {
	if issues == nil {
		issues = []domain.Issue{}
	}
	return scanResult{Source: source, Tier: tier, Summary: domain.Summarize(issues), Issues: issues}
}

func handleScanMarkup(logger *zap.Logger) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		markup, err := request.RequireString("markup")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		tier, err := domain.ParseScanTier(request.GetString("tier", ""))
		if err != nil {
			return errorResult(err.Error()), nil
		}

		issues, err := application.NewScanService(rules.Default(), logger).Scan(markup, tier)
		if err != nil {
			return errorResult(fmt.Sprintf("scan failed: %v", err)), nil
		}
		return jsonResult(newScanResult("markup", tier, issues))
	}
}

func handleScanFile(projectPath string, logger *zap.Logger) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		file, err := request.RequireString("file")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		tier, err := domain.ParseScanTier(request.GetString("tier", ""))
		if err != nil {
			return errorResult(err.Error()), nil
		}

		issues, err := scanPage(projectPath, file, tier, logger)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(newScanResult(file, tier, issues))
	}
}

// scanPage scans a page of the site. The path must stay inside projectPath.
func scanPage(projectPath, page string, tier domain.ScanTier, logger *zap.Logger) ([]domain.Issue, error) {
	clean := filepath.ToSlash(filepath.Clean(filepath.FromSlash(page)))
	if filepath.IsAbs(page) || clean == ".." || strings.HasPrefix(clean, "../") {
		return nil, fmt.Errorf("%s is outside the site root", page)
	}

	data, err := os.ReadFile(filepath.Join(projectPath, filepath.FromSlash(clean)))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", page, err)
	}

	loader := stylesheet.New().LoaderFor(projectPath, clean)
	issues, err := application.NewScanService(rules.Default(), logger).
		Scan(string(data), tier, dom.WithStylesheetLoader(loader))
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	for i := range issues {
		issues[i].Page = clean
	}
	return issues, nil
}

func handleAudit(projectPath string, logger *zap.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		var tier domain.ScanTier
		if t := request.GetString("tier", ""); t != "" {
			parsed, err := domain.ParseScanTier(t)
			if err != nil {
				return errorResult(err.Error()), nil
			}
			tier = parsed
		}

		audit, _ := newAuditServices(logger)
		report, err := audit.Audit(ctx, projectPath, application.AuditOptions{Tier: tier})
		if err != nil {
			return errorResult(fmt.Sprintf("audit failed: %v", err)), nil
		}
		return jsonResult(report)
	}
}

func handleFixMarkup(logger *zap.Logger) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		markup, err := request.RequireString("markup")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		tier, err := domain.ParseScanTier(request.GetString("tier", ""))
		if err != nil {
			return errorResult(err.Error()), nil
		}

		catalog := rules.Default()
		ruleIDs := splitList(request.GetString("rules", ""))
		for _, id := range ruleIDs {
			if !catalog.Known(id) {
				return errorResult(fmt.Sprintf("unknown rule %q", id)), nil
			}
		}

		fixSvc := application.NewFixService(application.NewScanService(catalog, logger))
		result, err := fixSvc.Fix(markup, domain.FixOptions{Tier: tier, Rules: ruleIDs})
		if err != nil {
			return errorResult(fmt.Sprintf("fix failed: %v", err)), nil
		}
		return jsonResult(result)
	}
}

func handleListRules() server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		return jsonResult(rules.Default().Info())
	}
}

func handleValidate(projectPath string, logger *zap.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		changedStr, err := request.RequireString("changed")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		_, validate := newAuditServices(logger)
		result, err := validate.Validate(ctx, projectPath, splitList(changedStr), request.GetBool("strict", false))
		if err != nil {
			return errorResult(fmt.Sprintf("validate failed: %v", err)), nil
		}
		return jsonResult(result)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// jsonResult marshals v to indented JSON and wraps it in a tool result.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
