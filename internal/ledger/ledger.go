// Package ledger implements the Dependency Ledger (spec §4.2): the
// per-workspace view of declared/peer/optional dependencies and installed
// binaries, and the mutable referenced-packages set that accumulates as the
// engine walks the import graph.
package ledger

import (
	"sync"

	"github.com/dusk-indust/deadcode/internal/workspace"
)

// entry is the per-workspace bookkeeping record.
type entry struct {
	declared   map[string]bool
	dev        map[string]bool
	peer       map[string]bool
	optional   map[string]bool
	binaries   map[string]string
	referenced map[string]bool
	ws         *workspace.Workspace
}

// Ledger tracks declared-vs-referenced dependencies across every workspace
// in the registry.
type Ledger struct {
	mu       sync.Mutex
	registry *workspace.Registry
	byWS     map[string]*entry // keyed by workspace Name
	ignore   []string          // user-configured ignore patterns (package names or globs)
	strict   bool
}

// New builds a Ledger bound to the given registry. strict toggles the
// strict-mode semantics described in spec §4.2: peer dependencies do not
// satisfy a reference, and ancestor declarations do not cascade.
func New(registry *workspace.Registry, ignore []string, strict bool) *Ledger {
	return &Ledger{
		registry: registry,
		byWS:     make(map[string]*entry),
		ignore:   ignore,
		strict:   strict,
	}
}

// AddWorkspace populates the ledger's declared sets for ws from its
// manifest (spec §4.2 add_workspace).
func (l *Ledger) AddWorkspace(ws *workspace.Workspace) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := &entry{
		declared:   toSet(ws.Manifest.Dependencies),
		dev:        toSet(ws.Manifest.DevDependencies),
		peer:       toSet(ws.Manifest.PeerDependencies),
		optional:   toSet(ws.Manifest.OptionalDependencies),
		binaries:   map[string]string{},
		referenced: map[string]bool{},
		ws:         ws,
	}
	l.byWS[ws.Name] = e
}

// AddPeerDependencies merges peer dependencies discovered via plugins
// (spec §4.2 add_peer_dependencies).
func (l *Ledger) AddPeerDependencies(ws *workspace.Workspace, peers []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.entryFor(ws)
	for _, p := range peers {
		e.peer[p] = true
	}
}

// SetInstalledBinaries records binaries found on disk for ws (spec §4.2
// set_installed_binaries).
func (l *Ledger) SetInstalledBinaries(ws *workspace.Workspace, bins map[string]string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.entryFor(ws)
	for name, path := range bins {
		e.binaries[name] = path
	}
}

// MaybeAddReferenced returns true when packageName is declared for ws
// (directly, transitively through ancestors unless strict, as a peer
// unless strict, as the workspace's own name, or via an ignore pattern),
// and records the reference as a side effect. Returns false when the
// package is genuinely unknown to the ledger (spec §4.2
// maybe_add_referenced).
func (l *Ledger) MaybeAddReferenced(ws *workspace.Workspace, packageName string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.entryFor(ws)

	if packageName == ws.PackageName() {
		e.referenced[packageName] = true
		return true
	}
	if l.matchesIgnore(packageName) {
		e.referenced[packageName] = true
		return true
	}
	if e.declared[packageName] || e.dev[packageName] || e.optional[packageName] {
		e.referenced[packageName] = true
		return true
	}
	if !l.strict && e.peer[packageName] {
		e.referenced[packageName] = true
		return true
	}
	if !l.strict {
		for _, ancestorName := range ws.Ancestors {
			ae := l.byWS[ancestorName]
			if ae == nil {
				continue
			}
			if ae.declared[packageName] || ae.dev[packageName] || ae.optional[packageName] {
				e.referenced[packageName] = true
				return true
			}
		}
	}
	return false
}

// Unused holds, for one workspace, the declared-minus-referenced sets for
// production and dev dependencies computed by Settle (spec §4.2 settle).
type Unused struct {
	Workspace string
	Deps      []string
	DevDeps   []string
}

// Settle returns one Unused entry per workspace that has any unused
// dependency.
func (l *Ledger) Settle() []Unused {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Unused
	for name, e := range l.byWS {
		var unusedDeps, unusedDev []string
		for pkg := range e.declared {
			if !e.referenced[pkg] {
				unusedDeps = append(unusedDeps, pkg)
			}
		}
		for pkg := range e.dev {
			if !e.referenced[pkg] {
				unusedDev = append(unusedDev, pkg)
			}
		}
		if len(unusedDeps) > 0 || len(unusedDev) > 0 {
			out = append(out, Unused{Workspace: name, Deps: unusedDeps, DevDeps: unusedDev})
		}
	}
	return out
}

// InstalledBinary returns the path of an installed binary for ws, if any.
func (l *Ledger) InstalledBinary(ws *workspace.Workspace, name string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.entryFor(ws)
	path, ok := e.binaries[name]
	return path, ok
}

// Binaries returns a copy of every installed binary recorded for ws, keyed
// by binary name, used by the engine to check each one resolves to a file
// on disk (spec §4.2 data model, binaries issue class per SPEC_FULL §5).
func (l *Ledger) Binaries(ws *workspace.Workspace) map[string]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.entryFor(ws)
	out := make(map[string]string, len(e.binaries))
	for k, v := range e.binaries {
		out[k] = v
	}
	return out
}

func (l *Ledger) entryFor(ws *workspace.Workspace) *entry {
	e, ok := l.byWS[ws.Name]
	if !ok {
		e = &entry{
			declared:   map[string]bool{},
			dev:        map[string]bool{},
			peer:       map[string]bool{},
			optional:   map[string]bool{},
			binaries:   map[string]string{},
			referenced: map[string]bool{},
			ws:         ws,
		}
		l.byWS[ws.Name] = e
	}
	return e
}

func (l *Ledger) matchesIgnore(packageName string) bool {
	for _, pattern := range l.ignore {
		if matchIgnorePattern(pattern, packageName) {
			return true
		}
	}
	return false
}

// matchIgnorePattern supports an exact match or a trailing-"*" prefix
// wildcard, the two forms Knip-style ignoreDependencies configs use.
func matchIgnorePattern(pattern, name string) bool {
	if pattern == name {
		return true
	}
	if len(pattern) > 0 && pattern[len(pattern)-1] == '*' {
		prefix := pattern[:len(pattern)-1]
		return len(name) >= len(prefix) && name[:len(prefix)] == prefix
	}
	return false
}

func toSet(m map[string]string) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}
