package specifier

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		root string
		want Kind
	}{
		{"relative dot", "./foo", "", KindInternalRelative},
		{"relative dotdot", "../foo/bar", "", KindInternalRelative},
		{"absolute in project", "/repo/src/a.ts", "/repo", KindInternalRelative},
		{"absolute node_modules", "/repo/node_modules/react/index.js", "/repo", KindNodeModulesAbsolute},
		{"absolute outside project", "/other/place.ts", "/repo", KindUnresolvable},
		{"bare package", "react", "", KindBarePackage},
		{"bare scoped", "@scope/pkg", "", KindBarePackage},
		{"bare scoped with subpath", "@scope/pkg/sub", "", KindBarePackage},
		{"bare with subpath", "lodash/fp", "", KindBarePackage},
		{"empty", "", "", KindUnresolvable},
		{"bare scope only", "@scope", "", KindUnresolvable},
		{"url-ish", "https://example.com/x.js", "", KindUnresolvable},
		{"node protocol", "node:fs", "", KindUnresolvable},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Classify(c.raw, c.root); got != c.want {
				t.Errorf("Classify(%q, %q) = %v, want %v", c.raw, c.root, got, c.want)
			}
		})
	}
}

func TestClassifyOrderIndependence(t *testing.T) {
	specs := []string{"./a", "react", "@scope/pkg/sub", "/repo/node_modules/x", ""}
	root := "/repo"
	first := make([]Kind, len(specs))
	for i, s := range specs {
		first[i] = Classify(s, root)
	}
	for i, s := range specs {
		if got := Classify(s, root); got != first[i] {
			t.Errorf("classification of %q changed across calls", s)
		}
	}
}

func TestPackageName(t *testing.T) {
	cases := map[string]string{
		"react":               "react",
		"lodash/fp":           "lodash",
		"@scope/pkg":          "@scope/pkg",
		"@scope/pkg/sub/path": "@scope/pkg",
		"@scope":              "",
		"":                    "",
	}
	for spec, want := range cases {
		if got := PackageName(spec); got != want {
			t.Errorf("PackageName(%q) = %q, want %q", spec, got, want)
		}
	}
}

func TestSubpath(t *testing.T) {
	if sp, ok := Subpath("react"); ok || sp != "" {
		t.Errorf("Subpath(react) = %q, %v, want \"\", false", sp, ok)
	}
	sp, ok := Subpath("@scope/pkg/deep/file")
	if !ok || sp != "./deep/file" {
		t.Errorf("Subpath = %q, %v, want ./deep/file, true", sp, ok)
	}
	sp, ok = Subpath("lodash/fp")
	if !ok || sp != "./fp" {
		t.Errorf("Subpath = %q, %v, want ./fp, true", sp, ok)
	}
}
