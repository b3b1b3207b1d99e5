package principal

import (
	"context"
	"testing"

	"github.com/dusk-indust/deadcode/internal/parseiface"
	"github.com/stretchr/testify/require"
)

func newTestPrincipal() (*Principal, *parseiface.StubParser) {
	stub := parseiface.NewStubParser()
	p := New("fp-1", stub, WithReader(func(path string) ([]byte, error) {
		return []byte("// " + path), nil
	}))
	return p, stub
}

func TestAddEntryPathIsMonotoneAndDeduped(t *testing.T) {
	p, _ := newTestPrincipal()
	require.True(t, p.AddEntryPath("a.ts"))
	require.False(t, p.AddEntryPath("a.ts"))
	require.Equal(t, 1, p.EntryPathCount())
	require.True(t, p.IsEntryPath("a.ts"))
}

func TestAnalyzeSourceFileRecordsExports(t *testing.T) {
	p, stub := newTestPrincipal()
	stub.Program("a.ts", &parseiface.ParseResult{
		Exports: map[string]parseiface.ExportItem{"foo": {Kind: parseiface.ExportKindValue}},
	})
	p.AddEntryPath("a.ts")

	rec, result, err := p.AnalyzeSourceFile(context.Background(), "a.ts")
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Contains(t, rec.Exports, "foo")
	require.True(t, p.IsAnalyzed("a.ts"))
}

func TestGetUsedResolvedFilesTraversesImports(t *testing.T) {
	p, _ := newTestPrincipal()
	p.AddEntryPath("a.ts")
	p.RecordResolvedImport("a.ts", "b.ts", parseiface.ImportItems{Specifier: "./b"})
	p.RecordResolvedImport("b.ts", "c.ts", parseiface.ImportItems{Specifier: "./c"})

	used := p.GetUsedResolvedFiles()
	require.ElementsMatch(t, []string{"a.ts", "b.ts", "c.ts"}, used)
}

func TestGetUnreferencedFiles(t *testing.T) {
	p, _ := newTestPrincipal()
	p.AddEntryPath("index.ts")
	p.AddProjectPath("orphan.ts")

	unref := p.GetUnreferencedFiles()
	require.Equal(t, []string{"orphan.ts"}, unref)
}

func TestReaderErrorIsRecoverable(t *testing.T) {
	stub := parseiface.NewStubParser()
	p := New("fp", stub, WithReader(func(path string) ([]byte, error) {
		return nil, context.DeadlineExceeded
	}))
	p.AddEntryPath("broken.ts")
	rec, result, err := p.AnalyzeSourceFile(context.Background(), "broken.ts")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Nil(t, result)
	require.True(t, p.IsAnalyzed("broken.ts"))
}

func TestHasExternalReferences(t *testing.T) {
	p, _ := newTestPrincipal()
	p.RecordResolvedImport("a.ts", "b.ts", parseiface.ImportItems{Identifiers: []string{"thing"}})
	require.True(t, p.HasExternalReferences("b.ts", "thing"))
	require.False(t, p.HasExternalReferences("b.ts", "other"))
}

func TestHasIntraFileReference(t *testing.T) {
	p, stub := newTestPrincipal()
	stub.Program("a.ts", &parseiface.ParseResult{
		Exports:             map[string]parseiface.ExportItem{"foo": {Kind: parseiface.ExportKindValue}},
		IdentifierRefCounts: map[string]int{"foo": 2, "bar": 1},
	})
	p.AddEntryPath("a.ts")
	_, _, err := p.AnalyzeSourceFile(context.Background(), "a.ts")
	require.NoError(t, err)

	require.True(t, p.HasIntraFileReference("a.ts", "foo"))
	require.False(t, p.HasIntraFileReference("a.ts", "bar"))
	require.False(t, p.HasIntraFileReference("a.ts", "missing"))
	require.False(t, p.HasIntraFileReference("unknown.ts", "foo"))
}

func TestFingerprintDedup(t *testing.T) {
	p, _ := newTestPrincipal()
	require.Equal(t, "fp-1", p.Fingerprint())
}
