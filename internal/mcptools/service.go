package mcptools

import (
	"context"
	"fmt"

	"github.com/dusk-indust/deadcode/internal/issues"
	"github.com/dusk-indust/deadcode/internal/runner"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Service wraps internal/runner for MCP tool handlers, mirroring the
// teacher's CodeIntelService holding the graph store and parser.
type Service struct {
	debugLog func(format string, args ...any)
}

// NewService creates a Service. debugLog receives tier-2 recoverable
// errors from the underlying runner; pass nil to discard them.
func NewService(debugLog func(format string, args ...any)) *Service {
	return &Service{debugLog: debugLog}
}

func (s *Service) runLinter(ctx context.Context, projectRoot string, gitignore, strict, production bool) (issues.Counters, Selectors, map[issues.Type][]issues.Issue, error) {
	result, err := runner.Run(ctx, runner.Config{
		ProjectRoot:  projectRoot,
		UseGitignore: gitignore,
		Strict:       strict,
		Production:   production,
		DebugLog:     s.debugLog,
	})
	if err != nil {
		return issues.Counters{}, Selectors{}, nil, err
	}
	sel := Selectors{
		RunID:        result.Selectors.RunID,
		ProjectRoot:  result.Selectors.ProjectRoot,
		Strict:       result.Selectors.Strict,
		Production:   result.Selectors.Production,
		UseGitignore: result.Selectors.UseGitignore,
		IssueTypes:   result.Selectors.IssueTypes,
	}
	return result.Counters, sel, result.IssuesByType, nil
}

// FindDeadCode runs the full linter and returns every finding, grouped by
// type (spec §6's (report_selectors, issues_by_type, counters) tuple).
func (s *Service) FindDeadCode(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FindDeadCodeInput,
) (*mcp.CallToolResult, FindDeadCodeOutput, error) {
	if input.ProjectRoot == "" {
		return nil, FindDeadCodeOutput{}, fmt.Errorf("projectRoot is required")
	}

	counters, sel, byType, err := s.runLinter(ctx, input.ProjectRoot, input.UseGitignore, input.Strict, input.Production)
	if err != nil {
		return nil, FindDeadCodeOutput{}, fmt.Errorf("find dead code: %w", err)
	}

	return nil, FindDeadCodeOutput{
		Selectors:    sel,
		IssuesByType: byType,
		Counters:     counters,
	}, nil
}

// GetIssueCounts runs the full linter but returns only the per-type and
// overall counts, for callers that want a cheap summary before deciding
// whether to fetch the full finding list.
func (s *Service) GetIssueCounts(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetIssueCountsInput,
) (*mcp.CallToolResult, GetIssueCountsOutput, error) {
	if input.ProjectRoot == "" {
		return nil, GetIssueCountsOutput{}, fmt.Errorf("projectRoot is required")
	}

	counters, _, byType, err := s.runLinter(ctx, input.ProjectRoot, input.UseGitignore, input.Strict, input.Production)
	if err != nil {
		return nil, GetIssueCountsOutput{}, fmt.Errorf("get issue counts: %w", err)
	}

	counts := make(map[issues.Type]int, len(byType))
	for t, list := range byType {
		counts[t] = len(list)
	}
	return nil, GetIssueCountsOutput{Counters: counters, ByType: counts}, nil
}
