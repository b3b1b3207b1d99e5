package workspace

import (
	"testing"

	"github.com/dusk-indust/deadcode/internal/manifest"
	"github.com/stretchr/testify/require"
)

func ws(name, dir string, ancestors ...string) *Workspace {
	return &Workspace{
		Name:      name,
		Dir:       dir,
		Manifest:  &manifest.Manifest{},
		Ancestors: ancestors,
	}
}

func withPkgName(w *Workspace, name string) *Workspace {
	w.Manifest.Name = name
	return w
}

func TestLookupByPackageNameExact(t *testing.T) {
	a := withPkgName(ws("a", "/repo/packages/a"), "@acme/a")
	b := withPkgName(ws("b", "/repo/packages/b"), "@acme/b")
	r, ok := NewRegistry([]*Workspace{a, b})
	require.True(t, ok)

	found, ok := r.LookupByPackageName("@acme/a")
	require.True(t, ok)
	require.Same(t, a, found)

	_, ok = r.LookupByPackageName("@acme/missing")
	require.False(t, ok)
}

func TestLookupByFilePathDeepestWins(t *testing.T) {
	root := withPkgName(ws("root", "/repo"), "root")
	nested := withPkgName(ws("nested", "/repo/packages/nested"), "@acme/nested")
	r, ok := NewRegistry([]*Workspace{root, nested})
	require.True(t, ok)

	found, ok := r.LookupByFilePath("/repo/packages/nested/src/index.ts")
	require.True(t, ok)
	require.Same(t, nested, found)

	found, ok = r.LookupByFilePath("/repo/scripts/build.ts")
	require.True(t, ok)
	require.Same(t, root, found)
}

func TestRegistryDetectsDuplicatePackageNames(t *testing.T) {
	a := withPkgName(ws("a", "/repo/a"), "dup")
	b := withPkgName(ws("b", "/repo/b"), "dup")
	_, ok := NewRegistry([]*Workspace{a, b})
	require.False(t, ok)
}

func TestAncestors(t *testing.T) {
	root := withPkgName(ws("root", "/repo"), "root")
	child := withPkgName(ws("child", "/repo/packages/child", "root"), "@acme/child")
	r, _ := NewRegistry([]*Workspace{root, child})
	require.Equal(t, []string{"root"}, r.Ancestors("@acme/child"))
	require.Empty(t, r.Ancestors("root"))
}
