// Package mcptools exposes the linter as two MCP tools — find_dead_code
// and get_issue_counts — wrapping internal/runner the way the teacher's
// internal/mcptools wraps internal/graph's CodeIntelService: one struct
// pair (Input/Output) per tool, the MCP Go SDK generating JSON schemas
// from the jsonschema struct tags.
package mcptools

import "github.com/dusk-indust/deadcode/internal/issues"

// FindDeadCodeInput is the input for the find_dead_code MCP tool.
type FindDeadCodeInput struct {
	ProjectRoot  string `json:"projectRoot" jsonschema:"the absolute path to the project to analyze"`
	UseGitignore bool   `json:"useGitignore,omitempty" jsonschema:"honor .gitignore when expanding project globs"`
	Strict       bool   `json:"strict,omitempty" jsonschema:"strict mode: peer/ancestor declarations and failed cross-workspace subpath resolutions are not forgiven"`
	Production   bool   `json:"production,omitempty" jsonschema:"production mode: only production entry patterns seed reachability"`
}

// FindDeadCodeOutput is the result of the find_dead_code MCP tool.
type FindDeadCodeOutput struct {
	Selectors    Selectors                      `json:"selectors"`
	IssuesByType map[issues.Type][]issues.Issue `json:"issuesByType"`
	Counters     issues.Counters                `json:"counters"`
}

// Selectors mirrors report.Selectors, reproduced here rather than
// imported so the MCP tool's JSON schema carries its own doc strings
// instead of report's.
type Selectors struct {
	RunID        string        `json:"runId"`
	ProjectRoot  string        `json:"projectRoot"`
	Strict       bool          `json:"strict"`
	Production   bool          `json:"production"`
	UseGitignore bool          `json:"useGitignore"`
	IssueTypes   []issues.Type `json:"issueTypes"`
}

// GetIssueCountsInput is the input for the get_issue_counts MCP tool.
type GetIssueCountsInput struct {
	ProjectRoot  string `json:"projectRoot" jsonschema:"the absolute path to the project to analyze"`
	UseGitignore bool   `json:"useGitignore,omitempty" jsonschema:"honor .gitignore when expanding project globs"`
	Strict       bool   `json:"strict,omitempty" jsonschema:"strict mode: peer/ancestor declarations and failed cross-workspace subpath resolutions are not forgiven"`
	Production   bool   `json:"production,omitempty" jsonschema:"production mode: only production entry patterns seed reachability"`
}

// GetIssueCountsOutput is the result of the get_issue_counts MCP tool: a
// cheaper summary than find_dead_code for callers that only need the
// totals, not every finding.
type GetIssueCountsOutput struct {
	Counters issues.Counters     `json:"counters"`
	ByType   map[issues.Type]int `json:"byType"`
}
