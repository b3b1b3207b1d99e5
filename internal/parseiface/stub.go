package parseiface

import "context"

// StubParser is a test double that returns a pre-programmed ParseResult for
// each path, mirroring the teacher's StubParser/TreeSitterParser split in
// internal/graph/parser.go.
type StubParser struct {
	Results map[string]*ParseResult
}

// NewStubParser returns a StubParser with no programmed results.
func NewStubParser() *StubParser {
	return &StubParser{Results: make(map[string]*ParseResult)}
}

// Program registers the ParseResult to return for a given path.
func (s *StubParser) Program(path string, result *ParseResult) {
	s.Results[path] = result
}

// Parse returns the programmed result for path, or an empty result if none
// was programmed.
func (s *StubParser) Parse(_ context.Context, path string, _ []byte) (*ParseResult, error) {
	if r, ok := s.Results[path]; ok {
		return r, nil
	}
	return &ParseResult{
		InternalImports: map[string]ImportItems{},
		Exports:         map[string]ExportItem{},
	}, nil
}

// Close is a no-op for StubParser.
func (s *StubParser) Close() error { return nil }
