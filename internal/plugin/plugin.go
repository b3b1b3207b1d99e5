// Package plugin defines the plugin interface named in spec §6 (an
// external collaborator: "the per-plugin adapters that contribute extra
// entry paths") plus two concrete, minimal built-in plugins grounded
// directly in the manifest model, since original_source retrieved zero
// Knip plugin files to imitate. Plugins supply additional entry
// candidates and referenced dependencies; per spec §9 they never see the
// import graph and communicate only through the two injection points
// (AddEntryPath and the ledger's MaybeAddReferenced).
package plugin

import (
	"github.com/dusk-indust/deadcode/internal/workspace"
)

// Contribution is what a plugin callback returns for one config file it
// owns (spec §6 plugin interface).
type Contribution struct {
	ReferencedPackages []Reference
	ReferencedBinaries []string
	PeerDependencies   []string
	InstalledBinaries  map[string]string
	ExtraEntryPaths    []string
}

// Reference pairs a package-name reference with the file that made it, so
// Phase A can replay it through the same classifier used in Phase B (spec
// §4.5 "referenced dependencies discovered by plugins (pairs of
// (containing_file, specifier))").
type Reference struct {
	ContainingFile string
	Specifier      string
}

// Plugin is the spec §6 plugin interface.
type Plugin interface {
	// Name identifies the plugin for logging/debugging.
	Name() string
	// IsEnabled reports whether this plugin applies to a workspace, given
	// its declared dependencies.
	IsEnabled(dependencies map[string]string) bool
	// ConfigGlobs returns glob patterns locating this plugin's own config
	// files within a workspace.
	ConfigGlobs() []string
	// Run is the callback that inspects a config file (or, for the
	// manifest plugin, the manifest itself) and yields a Contribution.
	Run(ws *workspace.Workspace, configFile string) (Contribution, error)
}

// ManifestPlugin contributes entry paths from a workspace's own manifest
// fields (main/module/exports/bin), unconditionally enabled — every
// workspace has a manifest.
type ManifestPlugin struct{}

// Name implements Plugin.
func (ManifestPlugin) Name() string { return "manifest" }

// IsEnabled implements Plugin; the manifest plugin always applies.
func (ManifestPlugin) IsEnabled(map[string]string) bool { return true }

// ConfigGlobs implements Plugin; the manifest plugin reads the manifest
// directly rather than a separate config file.
func (ManifestPlugin) ConfigGlobs() []string { return nil }

// Run implements Plugin by reading ws's manifest entry fields and bin map.
func (ManifestPlugin) Run(ws *workspace.Workspace, _ string) (Contribution, error) {
	var out Contribution
	if ws.Manifest == nil {
		return out, nil
	}
	out.ExtraEntryPaths = append(out.ExtraEntryPaths, ws.Manifest.EntryFields()...)

	bins := ws.Manifest.Binaries()
	out.InstalledBinaries = make(map[string]string, len(bins))
	for name, rel := range bins {
		out.InstalledBinaries[name] = rel
		out.ReferencedBinaries = append(out.ReferencedBinaries, name)
	}
	return out, nil
}

// TSConfigReferencesPlugin contributes extra entry paths from a
// tsconfig-shaped compiler-configuration file's "references" array: each
// referenced project directory's manifest entry fields become additional
// roots, mirroring how a monorepo's root tsconfig wires up its project
// references.
type TSConfigReferencesPlugin struct {
	// ResolveEntryFields, given the workspace's compiler-config file path,
	// returns the entry files that the manifests of its referenced projects
	// contribute. Injected so this plugin never has to parse a manifest
	// itself.
	ResolveEntryFields func(projectDir string) []string
}

// Name implements Plugin.
func (TSConfigReferencesPlugin) Name() string { return "tsconfig-references" }

// IsEnabled implements Plugin; enabled whenever the workspace declares a
// TypeScript dependency.
func (TSConfigReferencesPlugin) IsEnabled(deps map[string]string) bool {
	_, ok := deps["typescript"]
	return ok
}

// ConfigGlobs implements Plugin.
func (TSConfigReferencesPlugin) ConfigGlobs() []string {
	return []string{"tsconfig.json", "tsconfig.*.json"}
}

// Run implements Plugin.
func (p TSConfigReferencesPlugin) Run(_ *workspace.Workspace, configFile string) (Contribution, error) {
	var out Contribution
	if p.ResolveEntryFields != nil {
		out.ExtraEntryPaths = p.ResolveEntryFields(configFile)
	}
	return out, nil
}
