package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/openkraft/a11ykraft/internal/application"
	"github.com/openkraft/a11ykraft/internal/domain"
	"github.com/openkraft/a11ykraft/internal/domain/rules"
)

// registerResources registers all a11ykraft MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string, logger *zap.Logger) {
	// 1. a11ykraft://rules - the rule catalog
	s.AddResource(
		mcplib.NewResource(
			"a11ykraft://rules",
			"Rule Catalog",
			mcplib.WithResourceDescription("Every rule with its principle, severity and WCAG criterion"),
			mcplib.WithMIMEType("application/json"),
		),
		handleRulesResource(),
	)

	// 2. a11ykraft://report - a fresh site audit
	s.AddResource(
		mcplib.NewResource(
			"a11ykraft://report",
			"Audit Report",
			mcplib.WithResourceDescription("Accessibility audit of every page of the site"),
			mcplib.WithMIMEType("application/json"),
		),
		handleReportResource(projectPath, logger),
	)

	// 3. a11ykraft://pages/{path} - issues of one page (resource template)
	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			"a11ykraft://pages/{path}",
			"Page Issues",
			mcplib.WithTemplateDescription("Issues of one page; encode / in nested paths as %2F"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		handlePageResource(projectPath, logger),
	)
}

func handleRulesResource() server.ResourceHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		return jsonContents(request.Params.URI, rules.Default().Info())
	}
}

func handleReportResource(projectPath string, logger *zap.Logger) server.ResourceHandlerFunc {
	return func(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		audit, _ := newAuditServices(logger)
		report, err := audit.Audit(ctx, projectPath, application.AuditOptions{})
		if err != nil {
			return nil, fmt.Errorf("audit failed: %w", err)
		}
		return jsonContents(request.Params.URI, report)
	}
}

func handlePageResource(projectPath string, logger *zap.Logger) server.ResourceTemplateHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		// Extract the page path from the arguments (populated by template matching)
		page := templateArg(request.Params.Arguments["path"])
		if page == "" {
			return nil, fmt.Errorf("page path is required")
		}
		if unescaped, err := url.PathUnescape(page); err == nil {
			page = unescaped
		}

		issues, err := scanPage(projectPath, page, domain.TierStandard, logger)
		if err != nil {
			return nil, err
		}
		summary := domain.Summarize(issues)
		return jsonContents(request.Params.URI, domain.PageReport{
			Path:    page,
			Score:   domain.PageScore(summary),
			Summary: summary,
			Issues:  issues,
		})
	}
}

// templateArg reads a matched template variable, which arrives as a string
// or a single-element list depending on the expansion.
func templateArg(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		if len(val) > 0 {
			return val[0]
		}
	case []any:
		if len(val) > 0 {
			if s, ok := val[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
