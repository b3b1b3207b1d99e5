package principal

import (
	"testing"

	"github.com/dusk-indust/deadcode/internal/parseiface"
	"github.com/dusk-indust/deadcode/internal/tsconfig"
	"github.com/stretchr/testify/require"
)

func TestFactoryDedupesByFingerprint(t *testing.T) {
	calls := 0
	f := NewFactory(func() parseiface.Parser {
		calls++
		return parseiface.NewStubParser()
	})

	opts1 := &tsconfig.CompilerOptions{BaseURL: ".", Strict: true}
	opts2 := &tsconfig.CompilerOptions{BaseURL: ".", Strict: true}
	opts3 := &tsconfig.CompilerOptions{BaseURL: ".", Strict: false}

	p1 := f.GetPrincipal(opts1)
	p2 := f.GetPrincipal(opts2)
	p3 := f.GetPrincipal(opts3)

	require.Same(t, p1, p2)
	require.NotSame(t, p1, p3)
	require.Equal(t, 2, calls)
	require.Len(t, f.All(), 2)
}

func TestFingerprintOrderIndependentPaths(t *testing.T) {
	opts1 := &tsconfig.CompilerOptions{Paths: map[string]any{"a": "x", "b": "y"}}
	opts2 := &tsconfig.CompilerOptions{Paths: map[string]any{"b": "y", "a": "x"}}
	require.Equal(t, Fingerprint(opts1), Fingerprint(opts2))
}
