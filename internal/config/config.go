// Package config loads the linter's own project configuration
// (deadcode.yml/deadcode.yaml), the way the teacher's internal/config
// loads decompose.yml: read-if-present, zero value otherwise, never an
// error for a missing file.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectConfig holds project-level settings a deadcode.yml can override
// CLI flags with (spec §6 invocation contract knobs, plus the ledger's
// ignore list and plugin entry/project glob overrides).
type ProjectConfig struct {
	EntryPatterns           []string `yaml:"entry,omitempty"`
	ProjectPatterns         []string `yaml:"project,omitempty"`
	ProductionEntryPatterns []string `yaml:"entryProduction,omitempty"`
	Excludes                []string `yaml:"ignore,omitempty"`
	IgnoreDependencies      []string `yaml:"ignoreDependencies,omitempty"`
	UseGitignore            bool     `yaml:"gitignore,omitempty"`
	Strict                  bool     `yaml:"strict,omitempty"`
	Production              bool     `yaml:"production,omitempty"`
	ReportMembers           bool     `yaml:"reportMembers,omitempty"`
	Verbose                 bool     `yaml:"verbose,omitempty"`
	// IgnoreExportsUsedInFile opts into the reconciler's relaxed rule:
	// treat an export referenced elsewhere in its own file as used, even
	// with no importer.
	IgnoreExportsUsedInFile bool `yaml:"ignoreExportsUsedInFile,omitempty"`
}

// Load attempts to read deadcode.yml or deadcode.yaml from dir. Returns a
// zero-value config (not an error) if no config file exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"deadcode.yml", "deadcode.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}
