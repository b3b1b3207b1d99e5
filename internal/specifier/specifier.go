// Package specifier classifies module specifiers encountered in source
// files and derives package names from them. Classification never touches
// the filesystem and never depends on traversal order, matching the
// invariant that a specifier's class is a pure function of its string form.
package specifier

import "strings"

// Kind classifies a module specifier into exactly one of the categories the
// resolution engine cares about.
type Kind int

const (
	// KindInternalRelative is a specifier starting with "." (relative import)
	// or an absolute path rooted inside the project.
	KindInternalRelative Kind = iota
	// KindNodeModulesAbsolute is an absolute path containing a node_modules
	// path segment, as compilers sometimes emit for resolved imports.
	KindNodeModulesAbsolute
	// KindBarePackage is a plain package specifier: "pkg", "@scope/pkg", or
	// either with a subpath.
	KindBarePackage
	// KindUnresolvable is anything that does not fit the other categories
	// (empty string, malformed scoped specifier, protocol-prefixed URL, etc).
	KindUnresolvable
)

func (k Kind) String() string {
	switch k {
	case KindInternalRelative:
		return "internal"
	case KindNodeModulesAbsolute:
		return "node_modules"
	case KindBarePackage:
		return "bare"
	default:
		return "unresolvable"
	}
}

// Classify returns the Kind of a raw specifier string. projectRoot is used
// only to decide whether an absolute path lies inside the project; it is
// never touched on disk.
func Classify(raw, projectRoot string) Kind {
	if raw == "" {
		return KindUnresolvable
	}
	if strings.HasPrefix(raw, ".") {
		return KindInternalRelative
	}
	if isAbsolutePath(raw) {
		if hasNodeModulesSegment(raw) {
			return KindNodeModulesAbsolute
		}
		if projectRoot != "" && (raw == projectRoot || strings.HasPrefix(raw, projectRoot+"/")) {
			return KindInternalRelative
		}
		// Absolute path outside the project and outside node_modules: we
		// can't reason about it without touching disk, and the spec keeps
		// classification pure, so treat it as unresolvable.
		return KindUnresolvable
	}
	if looksLikeProtocolOrURL(raw) {
		return KindUnresolvable
	}
	if isBarePackageName(raw) {
		return KindBarePackage
	}
	return KindUnresolvable
}

func isAbsolutePath(raw string) bool {
	return strings.HasPrefix(raw, "/")
}

func hasNodeModulesSegment(raw string) bool {
	for _, seg := range strings.Split(raw, "/") {
		if seg == "node_modules" {
			return true
		}
	}
	return false
}

func looksLikeProtocolOrURL(raw string) bool {
	if idx := strings.Index(raw, ":"); idx > 0 {
		scheme := raw[:idx]
		// A scheme never contains a slash; "C:/" drive letters aren't in
		// scope here since specifiers are module-system strings, not OS paths.
		if !strings.ContainsAny(scheme, "/\\") {
			return true
		}
	}
	return false
}

func isBarePackageName(raw string) bool {
	if raw == "" || raw == "@" {
		return false
	}
	if strings.HasPrefix(raw, "@") {
		rest := raw[1:]
		if rest == "" || !strings.Contains(rest, "/") {
			return false // bare "@scope" with no package segment
		}
		return true
	}
	return !strings.ContainsAny(raw[:1], "./\\")
}

// PackageName derives the package name portion of a bare specifier: the
// first path segment, plus the leading scope segment when the specifier
// starts with "@". Returns "" for the empty string and for a scope with no
// package segment; other input is split as-is without checking that it is
// a bare specifier.
func PackageName(spec string) string {
	if spec == "" {
		return ""
	}
	if strings.HasPrefix(spec, "@") {
		parts := strings.SplitN(spec, "/", 3)
		if len(parts) < 2 || parts[1] == "" {
			return ""
		}
		return parts[0] + "/" + parts[1]
	}
	if idx := strings.Index(spec, "/"); idx != -1 {
		return spec[:idx]
	}
	return spec
}

// Subpath returns the subpath portion of a bare specifier after the package
// name, formatted as a relative specifier ("./sub/path"), and whether one
// exists. "react" has no subpath; "@scope/pkg/sub/path" has subpath
// "./sub/path".
func Subpath(spec string) (string, bool) {
	pkg := PackageName(spec)
	if pkg == "" || len(spec) <= len(pkg) {
		return "", false
	}
	rest := strings.TrimPrefix(spec[len(pkg):], "/")
	if rest == "" {
		return "", false
	}
	return "./" + rest, true
}
