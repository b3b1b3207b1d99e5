package glob

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestExpandFindsNestedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src/a.ts"), "")
	writeFile(t, filepath.Join(root, "src/nested/b.ts"), "")
	writeFile(t, filepath.Join(root, "src/c.txt"), "")

	m := NewMatcher(root, false)
	files, err := m.Expand([]string{"src/**/*.ts"}, nil)
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.Contains(t, files, filepath.Join(root, "src/a.ts"))
	require.Contains(t, files, filepath.Join(root, "src/nested/b.ts"))
}

func TestExpandRespectsExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src/a.ts"), "")
	writeFile(t, filepath.Join(root, "src/a.test.ts"), "")

	m := NewMatcher(root, false)
	files, err := m.Expand([]string{"src/**/*.ts"}, []string{"src/*.test.ts"})
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, filepath.Join(root, "src/a.ts"), files[0])
}

func TestExpandRespectsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src/a.ts"), "")
	writeFile(t, filepath.Join(root, "dist/bundle.ts"), "")
	writeFile(t, filepath.Join(root, ".gitignore"), "dist/\n")

	m := NewMatcher(root, true)
	files, err := m.Expand([]string{"**/*.ts"}, nil)
	require.NoError(t, err)
	require.Contains(t, files, filepath.Join(root, "src/a.ts"))
	require.NotContains(t, files, filepath.Join(root, "dist/bundle.ts"))
}
