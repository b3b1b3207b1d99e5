// Package manifest loads and models a package manifest (package.json
// semantics): name, entry fields, the four dependency maps, and the
// plugin-owned configuration section it carries alongside them.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/segmentio/encoding/json"
)

// Manifest is the parsed form of a single package manifest file.
type Manifest struct {
	Name                 string            `json:"name"`
	Main                 string            `json:"main,omitempty"`
	Module               string            `json:"module,omitempty"`
	Bin                  json.RawMessage   `json:"bin,omitempty"`
	Exports              json.RawMessage   `json:"exports,omitempty"`
	Dependencies         map[string]string `json:"dependencies,omitempty"`
	DevDependencies      map[string]string `json:"devDependencies,omitempty"`
	PeerDependencies     map[string]string `json:"peerDependencies,omitempty"`
	OptionalDependencies map[string]string `json:"optionalDependencies,omitempty"`
	Workspaces           json.RawMessage   `json:"workspaces,omitempty"`
	// Config is the plugin-owned configuration section (spec §6): an
	// arbitrary sub-object namespaced by tool name, e.g. manifest["knip"].
	// Kept opaque here; plugins decode the keys they own.
	Config map[string]json.RawMessage `json:"-"`

	// dir is the absolute directory the manifest was loaded from. Not part
	// of the manifest's own JSON shape.
	dir string
}

// Load reads and parses a manifest file at path. The manifest's directory
// is recorded for resolving relative fields (main, module, exports, bin).
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", path, err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err == nil {
		m.Config = raw
	}
	m.dir = filepath.Dir(path)
	return &m, nil
}

// Dir returns the absolute directory the manifest was loaded from.
func (m *Manifest) Dir() string {
	return m.dir
}

// PluginSection decodes the named top-level key of the manifest into v, for
// plugins that own a configuration namespace (spec §6 "plugin-owned
// configuration section"). Returns false if the key is absent.
func (m *Manifest) PluginSection(key string, v any) (bool, error) {
	raw, ok := m.Config[key]
	if !ok || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("manifest: decode section %q: %w", key, err)
	}
	return true, nil
}

// WorkspacePatterns returns the glob patterns declared in the manifest's
// "workspaces" field, supporting both the array form
// (["packages/*", "apps/*"]) and the object form
// ({"packages": ["packages/*"]}).
func (m *Manifest) WorkspacePatterns() []string {
	if len(m.Workspaces) == 0 {
		return nil
	}
	var arr []string
	if err := json.Unmarshal(m.Workspaces, &arr); err == nil {
		return arr
	}
	var obj struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(m.Workspaces, &obj); err == nil {
		return obj.Packages
	}
	return nil
}

// Binaries returns the manifest's "bin" field normalized to a name→relative
// path map. "bin" may be a bare string (package name is used as the binary
// name) or an object of name→path pairs.
func (m *Manifest) Binaries() map[string]string {
	if len(m.Bin) == 0 {
		return nil
	}
	var obj map[string]string
	if err := json.Unmarshal(m.Bin, &obj); err == nil {
		return obj
	}
	var str string
	if err := json.Unmarshal(m.Bin, &str); err == nil && str != "" && m.Name != "" {
		return map[string]string{m.Name: str}
	}
	return nil
}

// EntryFields returns the manifest fields that name entry-point files
// directly: main, module, and the "." export condition, each resolved to
// an absolute path relative to the manifest's directory. Resolution does
// not probe the filesystem for extensions; that is the caller's job.
func (m *Manifest) EntryFields() []string {
	var out []string
	if m.Main != "" {
		out = append(out, filepath.Join(m.dir, m.Main))
	}
	if m.Module != "" {
		out = append(out, filepath.Join(m.dir, m.Module))
	}
	if target, ok := m.resolveExportCondition("."); ok {
		out = append(out, filepath.Join(m.dir, target))
	}
	return out
}

// resolveExportCondition resolves a single export map key ("." or a
// subpath like "./queries") to its target file, preferring the "import",
// then "default", then "require" condition when the value is a
// conditional object rather than a plain string.
func (m *Manifest) resolveExportCondition(key string) (string, bool) {
	if len(m.Exports) == 0 {
		return "", false
	}
	var str string
	if err := json.Unmarshal(m.Exports, &str); err == nil {
		if key == "." {
			return str, str != ""
		}
		return "", false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(m.Exports, &obj); err != nil {
		return "", false
	}
	raw, ok := obj[key]
	if !ok {
		return "", false
	}
	return resolveConditionValue(raw)
}

func resolveConditionValue(raw json.RawMessage) (string, bool) {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str, str != ""
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", false
	}
	for _, cond := range []string{"import", "default", "require"} {
		if v, ok := obj[cond]; ok {
			return resolveConditionValue(v)
		}
	}
	return "", false
}

// ResolveExportSubpath resolves a subpath specifier ("./sub/path", as
// produced by specifier.Subpath) against the manifest's "exports" map,
// honoring wildcard patterns ("./features/*": "./src/features/*.ts") and
// condition objects. Returns the manifest-relative target path and true on
// a match.
func (m *Manifest) ResolveExportSubpath(subpath string) (string, bool) {
	if len(m.Exports) == 0 {
		return "", false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(m.Exports, &obj); err != nil {
		return "", false
	}
	if raw, ok := obj[subpath]; ok {
		if target, ok := resolveConditionValue(raw); ok {
			return filepath.Join(m.dir, target), true
		}
	}
	// Wildcard subpath patterns: "./features/*" -> "./src/features/*.ts".
	for pattern, raw := range obj {
		prefix, suffix, ok := splitWildcard(pattern)
		if !ok || !strings.HasPrefix(subpath, prefix) || !strings.HasSuffix(subpath, suffix) {
			continue
		}
		matched := strings.TrimSuffix(strings.TrimPrefix(subpath, prefix), suffix)
		target, ok := resolveConditionValue(raw)
		if !ok {
			continue
		}
		tPrefix, tSuffix, ok := splitWildcard(target)
		if !ok {
			continue
		}
		resolved := tPrefix + matched + tSuffix
		return filepath.Join(m.dir, resolved), true
	}
	return "", false
}

func splitWildcard(pattern string) (prefix, suffix string, ok bool) {
	idx := strings.IndexByte(pattern, '*')
	if idx == -1 {
		return "", "", false
	}
	return pattern[:idx], pattern[idx+1:], true
}
