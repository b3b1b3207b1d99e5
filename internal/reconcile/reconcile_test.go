package reconcile

import (
	"testing"

	"github.com/dusk-indust/deadcode/internal/issues"
	"github.com/dusk-indust/deadcode/internal/parseiface"
	"github.com/dusk-indust/deadcode/internal/principal"
	"github.com/stretchr/testify/require"
)

func newPrincipalWithFile(path string, exports map[string]parseiface.ExportItem) *principal.Principal {
	stub := parseiface.NewStubParser()
	stub.Program(path, &parseiface.ParseResult{Exports: exports})
	p := principal.New("fp", stub, principal.WithReader(func(string) ([]byte, error) { return []byte(""), nil }))
	p.AddEntryPath(path)
	_, _, _ = p.AnalyzeSourceFile(nil, path) //nolint:staticcheck // nil context acceptable for the stub parser
	return p
}

func TestUnusedExportEmitsExportsIssue(t *testing.T) {
	p := newPrincipalWithFile("lib.ts", map[string]parseiface.ExportItem{
		"helper": {Kind: parseiface.ExportKindValue},
	})
	col := issues.NewCollector()
	Reconcile([]*principal.Principal{p}, col, Config{})
	require.Equal(t, 1, col.Count(issues.TypeExports))
}

func TestUsedExportEmitsNoIssue(t *testing.T) {
	p := newPrincipalWithFile("lib.ts", map[string]parseiface.ExportItem{
		"helper": {Kind: parseiface.ExportKindValue},
	})
	p.RecordResolvedImport("main.ts", "lib.ts", parseiface.ImportItems{Identifiers: []string{"helper"}})
	col := issues.NewCollector()
	Reconcile([]*principal.Principal{p}, col, Config{})
	require.True(t, col.Empty())
}

func TestPublicExportNeverFlagged(t *testing.T) {
	p := newPrincipalWithFile("lib.ts", map[string]parseiface.ExportItem{
		"helper": {Kind: parseiface.ExportKindValue, IsPublic: true},
	})
	col := issues.NewCollector()
	Reconcile([]*principal.Principal{p}, col, Config{})
	require.True(t, col.Empty())
}

func TestUnusedTypeExportEmitsTypesIssue(t *testing.T) {
	p := newPrincipalWithFile("types.ts", map[string]parseiface.ExportItem{
		"Widget": {Kind: parseiface.ExportKindInterface},
	})
	col := issues.NewCollector()
	Reconcile([]*principal.Principal{p}, col, Config{})
	require.Equal(t, 1, col.Count(issues.TypeTypes))
}

func TestReexportChaseThroughEntryFileMarksUsed(t *testing.T) {
	p := newPrincipalWithFile("inner.ts", map[string]parseiface.ExportItem{
		"bar": {Kind: parseiface.ExportKindValue},
	})
	// deep.ts re-exports inner.ts wholesale and is itself an entry file.
	p.AddEntryPath("deep.ts")
	p.MarkReExportedBy("inner.ts", "deep.ts")
	p.RecordResolvedImport("deep.ts", "inner.ts", parseiface.ImportItems{IsStar: true, IsReExported: true})

	col := issues.NewCollector()
	Reconcile([]*principal.Principal{p}, col, Config{})
	require.True(t, col.Empty())
}

func TestReexportChaseWithNoEntryHopEmitsNsExports(t *testing.T) {
	p := newPrincipalWithFile("inner.ts", map[string]parseiface.ExportItem{
		"bar": {Kind: parseiface.ExportKindValue},
	})
	p.MarkReExportedBy("inner.ts", "deep.ts")
	p.RecordResolvedImport("deep.ts", "inner.ts", parseiface.ImportItems{IsStar: true, IsReExported: true})

	col := issues.NewCollector()
	Reconcile([]*principal.Principal{p}, col, Config{})
	require.Equal(t, 1, col.Count(issues.TypeNsExports))
}

func TestEnumMemberReportingListsUnusedMembersWhenWhollyUnused(t *testing.T) {
	p := newPrincipalWithFile("colors.ts", map[string]parseiface.ExportItem{
		"Color": {Kind: parseiface.ExportKindEnum, Members: []string{"Red", "Green"}},
	})
	col := issues.NewCollector()
	Reconcile([]*principal.Principal{p}, col, Config{ReportMembers: true})
	require.Equal(t, 2, col.Count(issues.TypeEnumMembers))
	require.Equal(t, 0, col.Count(issues.TypeTypes))
	require.Equal(t, 0, col.Count(issues.TypeExports))
}

func TestIgnoreExportsUsedInFileRelaxationSuppressesSameFileReference(t *testing.T) {
	stub := parseiface.NewStubParser()
	stub.Program("lib.ts", &parseiface.ParseResult{
		Exports: map[string]parseiface.ExportItem{
			"helper": {Kind: parseiface.ExportKindValue},
		},
		IdentifierRefCounts: map[string]int{"helper": 2},
	})
	p := principal.New("fp", stub, principal.WithReader(func(string) ([]byte, error) { return []byte(""), nil }))
	p.AddEntryPath("lib.ts")
	_, _, _ = p.AnalyzeSourceFile(nil, "lib.ts") //nolint:staticcheck // nil context acceptable for the stub parser

	col := issues.NewCollector()
	Reconcile([]*principal.Principal{p}, col, Config{IgnoreExportsUsedInFile: true})
	require.True(t, col.Empty())
}

func TestIgnoreExportsUsedInFileRelaxationDefaultsOff(t *testing.T) {
	stub := parseiface.NewStubParser()
	stub.Program("lib.ts", &parseiface.ParseResult{
		Exports: map[string]parseiface.ExportItem{
			"helper": {Kind: parseiface.ExportKindValue},
		},
		IdentifierRefCounts: map[string]int{"helper": 2},
	})
	p := principal.New("fp", stub, principal.WithReader(func(string) ([]byte, error) { return []byte(""), nil }))
	p.AddEntryPath("lib.ts")
	_, _, _ = p.AnalyzeSourceFile(nil, "lib.ts") //nolint:staticcheck // nil context acceptable for the stub parser

	col := issues.NewCollector()
	Reconcile([]*principal.Principal{p}, col, Config{})
	require.Equal(t, 1, col.Count(issues.TypeExports))
}

func TestSkipExportsAnalysisSuppressesAllFindings(t *testing.T) {
	p := newPrincipalWithFile("generated.ts", map[string]parseiface.ExportItem{
		"gen": {Kind: parseiface.ExportKindValue},
	})
	p.SkipExportsAnalysisFor("generated.ts")
	col := issues.NewCollector()
	Reconcile([]*principal.Principal{p}, col, Config{})
	require.True(t, col.Empty())
}
