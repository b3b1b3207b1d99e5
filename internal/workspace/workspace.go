// Package workspace models a workspace (spec §3) and the registry that
// looks workspaces up by package name or by the deepest directory prefix
// containing a given file path.
package workspace

import (
	"strings"

	"github.com/dusk-indust/deadcode/internal/manifest"
	"github.com/dusk-indust/deadcode/internal/tsconfig"
)

// Workspace is a directory with its own manifest participating in a
// multi-package project (spec §3).
type Workspace struct {
	// Name is a stable identifier for the workspace: the runner uses the
	// manifest's package name, or the absolute directory when that is empty.
	Name string
	// Dir is the workspace's absolute directory.
	Dir string
	// Manifest is the parsed package manifest.
	Manifest *manifest.Manifest
	// Ancestors lists ancestor workspace names, root first. A workspace at
	// the monorepo root has no ancestors.
	Ancestors []string
	// CompilerConfig is the workspace's compiler-configuration file, if one
	// was discovered. Workspaces with compatible configs share a Principal
	// (spec §4.4).
	CompilerConfig *tsconfig.Config
	// StrictMode records whether this workspace's own configuration block
	// requests strict mode locally; the registry/ledger still defer to the
	// global -strict flag as the outer switch.
	StrictMode bool
}

// PackageName returns the workspace's declared package name from its
// manifest, or "" when there is no manifest name; such a workspace is not
// registered for LookupByPackageName.
func (w *Workspace) PackageName() string {
	if w.Manifest == nil {
		return ""
	}
	return w.Manifest.Name
}

// Registry is the set of workspaces participating in the project, along
// with their directories, package names, manifest data, and ancestor
// relationships (spec §4.1).
type Registry struct {
	workspaces []*Workspace
	byPackage  map[string]*Workspace
	// dirs holds workspace directories sorted by length descending, so
	// lookupByFilePath can scan for the longest matching prefix.
	dirs []*Workspace
}

// NewRegistry builds a Registry from the given workspaces. Two workspaces
// with the exact same package name is a caller error (spec §3: a
// workspace's package name is unique across the registry); the later
// registration wins and the conflict is reported by ok=false.
func NewRegistry(workspaces []*Workspace) (*Registry, bool) {
	r := &Registry{
		byPackage: make(map[string]*Workspace, len(workspaces)),
	}
	ok := true
	for _, ws := range workspaces {
		r.workspaces = append(r.workspaces, ws)
		if name := ws.PackageName(); name != "" {
			if _, exists := r.byPackage[name]; exists {
				ok = false
			}
			r.byPackage[name] = ws
		}
		r.dirs = append(r.dirs, ws)
	}
	// Longest directory first so LookupByFilePath finds the deepest match.
	for i := 1; i < len(r.dirs); i++ {
		for j := i; j > 0 && len(r.dirs[j].Dir) > len(r.dirs[j-1].Dir); j-- {
			r.dirs[j], r.dirs[j-1] = r.dirs[j-1], r.dirs[j]
		}
	}
	return r, ok
}

// LookupByPackageName performs an exact lookup (spec §4.1).
func (r *Registry) LookupByPackageName(name string) (*Workspace, bool) {
	ws, ok := r.byPackage[name]
	return ws, ok
}

// LookupByFilePath returns the deepest workspace whose directory is a
// prefix of path, breaking ties by longest prefix (spec §4.1).
func (r *Registry) LookupByFilePath(path string) (*Workspace, bool) {
	for _, ws := range r.dirs {
		if path == ws.Dir || strings.HasPrefix(path, ws.Dir+"/") {
			return ws, true
		}
	}
	return nil, false
}

// Ancestors returns the ancestor workspace names (root first) for the named
// workspace, or nil if the workspace is unknown.
func (r *Registry) Ancestors(name string) []string {
	ws, ok := r.byPackage[name]
	if !ok {
		return nil
	}
	return ws.Ancestors
}

// EnabledWorkspaces returns every workspace in the registry. All
// workspaces loaded into a Registry are considered enabled; callers that
// need to filter (e.g. by a plugin's isEnabled predicate) do so before
// construction.
func (r *Registry) EnabledWorkspaces() []*Workspace {
	out := make([]*Workspace, len(r.workspaces))
	copy(out, r.workspaces)
	return out
}

// All is an alias for EnabledWorkspaces for call sites that don't care
// about the "enabled" framing.
func (r *Registry) All() []*Workspace {
	return r.EnabledWorkspaces()
}
