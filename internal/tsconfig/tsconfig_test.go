package tsconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadAndReferencedDirs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tsconfig.json")
	body := `{
		"compilerOptions": {"baseUrl": ".", "strict": true},
		"include": ["src/**/*.ts"],
		"references": [{"path": "../shared"}, {"path": "./nested"}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.True(t, cfg.CompilerOptions.Strict)
	require.Equal(t, []string{"src/**/*.ts"}, cfg.Include)

	dirs := cfg.ReferencedDirs()
	require.Equal(t, []string{
		filepath.Clean(filepath.Join(dir, "../shared")),
		filepath.Join(dir, "nested"),
	}, dirs)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}
