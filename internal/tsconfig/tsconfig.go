// Package tsconfig loads the compiler-configuration file named in spec §6
// ("optional path to a compiler-configuration file") — a tsconfig-shaped
// JSON document. The engine only needs the subset of fields that influence
// principal fingerprinting and project/reference discovery; it never runs
// a real type checker.
package tsconfig

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/segmentio/encoding/json"
)

// Config is the subset of a tsconfig.json this linter consults.
type Config struct {
	CompilerOptions CompilerOptions `json:"compilerOptions"`
	Include         []string        `json:"include,omitempty"`
	Exclude         []string        `json:"exclude,omitempty"`
	References      []Reference     `json:"references,omitempty"`

	// path is the absolute path this config was loaded from.
	path string
}

// CompilerOptions is the slice of tsconfig compilerOptions that affects
// module resolution and, therefore, principal fingerprinting.
type CompilerOptions struct {
	BaseURL string         `json:"baseUrl,omitempty"`
	Paths   map[string]any `json:"paths,omitempty"`
	Module  string         `json:"module,omitempty"`
	Target  string         `json:"target,omitempty"`
	JSX     string         `json:"jsx,omitempty"`
	Strict  bool           `json:"strict,omitempty"`
}

// Reference is a project reference entry ({"path": "../other-package"}).
type Reference struct {
	Path string `json:"path"`
}

// Load reads and parses a compiler-configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tsconfig: read %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("tsconfig: parse %s: %w", path, err)
	}
	cfg.path = path
	return &cfg, nil
}

// Path returns the absolute path this config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// ReferencedDirs resolves each "references" entry to an absolute directory,
// relative to the config file's own directory.
func (c *Config) ReferencedDirs() []string {
	dir := filepath.Dir(c.path)
	out := make([]string, 0, len(c.References))
	for _, ref := range c.References {
		out = append(out, filepath.Clean(filepath.Join(dir, ref.Path)))
	}
	return out
}
