// Package glob expands entry/project glob patterns against a workspace
// directory, optionally filtering results through .gitignore rules. This
// gives the spec §1 "file-glob matcher" (named as an external collaborator)
// a concrete Go home, grounded in the pack's doublestar/go-gitignore usage.
package glob

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"
)

// Matcher expands glob patterns against a root directory and filters the
// results through any discovered .gitignore files.
type Matcher struct {
	root           string
	useGitignore   bool
	ignoreMatchers []*gitignore.GitIgnore
}

// NewMatcher builds a Matcher rooted at root. When useGitignore is true,
// every .gitignore file found between root and the filesystem root is
// compiled and consulted.
func NewMatcher(root string, useGitignore bool) *Matcher {
	m := &Matcher{root: root, useGitignore: useGitignore}
	if useGitignore {
		m.loadGitignores()
	}
	return m
}

func (m *Matcher) loadGitignores() {
	dir := m.root
	for {
		path := filepath.Join(dir, ".gitignore")
		if ign, err := gitignore.CompileIgnoreFile(path); err == nil {
			m.ignoreMatchers = append(m.ignoreMatchers, ign)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}

// Expand returns every file under root matching any of the given glob
// patterns (doublestar syntax: "**" for recursive segments), excluding
// files matched by any of the exclude patterns and, if configured,
// gitignored files. Returned paths are absolute.
//
// Each pattern is globbed and stat-filtered concurrently via errgroup,
// since the patterns are independent reads; the per-pattern results are
// then merged and deduplicated sequentially.
func (m *Matcher) Expand(patterns, excludes []string) ([]string, error) {
	perPattern := make([][]string, len(patterns))

	g, _ := errgroup.WithContext(context.Background())
	for i, pattern := range patterns {
		i, pattern := i, pattern
		g.Go(func() error {
			matches, err := doublestar.Glob(os.DirFS(m.root), pattern)
			if err != nil {
				return err
			}
			var files []string
			for _, rel := range matches {
				if m.excluded(rel, excludes) {
					continue
				}
				abs := filepath.Join(m.root, rel)
				if m.gitignored(abs) {
					continue
				}
				info, err := os.Stat(abs)
				if err != nil || info.IsDir() {
					continue
				}
				files = append(files, abs)
			}
			perPattern[i] = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var out []string
	for _, files := range perPattern {
		for _, abs := range files {
			if !seen[abs] {
				seen[abs] = true
				out = append(out, abs)
			}
		}
	}
	return out, nil
}

func (m *Matcher) excluded(rel string, excludes []string) bool {
	for _, pattern := range excludes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (m *Matcher) gitignored(abs string) bool {
	if !m.useGitignore {
		return false
	}
	rel, err := filepath.Rel(m.root, abs)
	if err != nil {
		return false
	}
	for _, ign := range m.ignoreMatchers {
		if ign.MatchesPath(rel) {
			return true
		}
	}
	return false
}
