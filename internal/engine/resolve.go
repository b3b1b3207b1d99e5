package engine

import (
	"os"
	"path/filepath"
)

// defaultExtensions are probed, in order, against a relative-specifier's
// resolved base path, matching the bundler-style extension and index-file
// resolution real Node-module tooling performs. The empty string lets a
// specifier that already names a concrete file (with its extension
// included) resolve on the first try.
var defaultExtensions = []string{"", ".ts", ".tsx", ".d.ts", ".js", ".jsx", ".mjs", ".cjs"}

// fileResolver resolves a relative module specifier against a containing
// directory by probing candidate extensions and index files on disk (spec
// §4.5 Phase B.1: "resolve against the containing file's directory").
// stat is overridable for tests.
type fileResolver struct {
	stat func(path string) bool
}

func newFileResolver() *fileResolver {
	return &fileResolver{stat: osFileExists}
}

func osFileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (r *fileResolver) exists(path string) bool {
	return r.stat(path)
}

// Resolve returns the absolute file path rawSpec resolves to from fromDir,
// and whether resolution succeeded.
func (r *fileResolver) Resolve(fromDir, rawSpec string) (string, bool) {
	var base string
	if filepath.IsAbs(rawSpec) {
		base = filepath.Clean(rawSpec)
	} else {
		base = filepath.Clean(filepath.Join(fromDir, rawSpec))
	}

	for _, ext := range defaultExtensions {
		candidate := base + ext
		if r.stat(candidate) {
			return candidate, true
		}
	}
	for _, ext := range defaultExtensions[1:] {
		candidate := filepath.Join(base, "index"+ext)
		if r.stat(candidate) {
			return candidate, true
		}
	}
	return "", false
}
