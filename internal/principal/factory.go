package principal

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dusk-indust/deadcode/internal/parseiface"
	"github.com/dusk-indust/deadcode/internal/tsconfig"
)

// Factory deduplicates Principals by a canonical fingerprint of their
// compiler-options group, so workspaces that compile with compatible
// configs share a Principal and their import graphs connect naturally
// (spec §4.4).
type Factory struct {
	mu         sync.Mutex
	principals map[string]*Principal
	newParser  func() parseiface.Parser
}

// NewFactory builds a Factory. newParser is called once per distinct
// fingerprint to construct that Principal's parser instance.
func NewFactory(newParser func() parseiface.Parser) *Factory {
	return &Factory{
		principals: map[string]*Principal{},
		newParser:  newParser,
	}
}

// GetPrincipal returns the Principal for the given compiler-options group,
// creating one if this is the first workspace to present that fingerprint
// (spec §4.4 get_principal).
func (f *Factory) GetPrincipal(opts *tsconfig.CompilerOptions) *Principal {
	fp := Fingerprint(opts)
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.principals[fp]; ok {
		return p
	}
	p := New(fp, f.newParser())
	f.principals[fp] = p
	return p
}

// All returns every distinct Principal created so far, ordered by
// fingerprint for determinism.
func (f *Factory) All() []*Principal {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Principal, 0, len(f.principals))
	for _, p := range f.principals {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].fingerprint < out[j].fingerprint })
	return out
}

// Fingerprint canonicalizes a CompilerOptions group into a stable string
// key. Canonicalization (sorted path keys, normalized booleans) avoids
// semantically-equivalent but textually-different configs creating
// distinct Principals (spec §9 "Principal deduplication").
func Fingerprint(opts *tsconfig.CompilerOptions) string {
	if opts == nil {
		return "default"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "baseUrl=%s;module=%s;target=%s;jsx=%s;strict=%t;paths=",
		opts.BaseURL, opts.Module, opts.Target, opts.JSX, opts.Strict)

	keys := make([]string, 0, len(opts.Paths))
	for k := range opts.Paths {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%v;", k, opts.Paths[k])
	}
	return b.String()
}
