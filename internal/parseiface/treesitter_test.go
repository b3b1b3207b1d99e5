package parseiface

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTreeSitterParserExtractsExportsAndImports(t *testing.T) {
	src := []byte(`
import { helper } from "./helper";
import * as ns from "./ns";

export function doThing() {
  return helper();
}

export const value = 1;

export class Widget {}

export * from "./reexport";
`)
	p := NewTreeSitterParser()
	defer p.Close()

	res, err := p.Parse(context.Background(), "a.ts", src)
	require.NoError(t, err)

	require.Contains(t, res.Exports, "doThing")
	require.Equal(t, ExportKindValue, res.Exports["doThing"].Kind)
	require.Contains(t, res.Exports, "value")
	require.Contains(t, res.Exports, "Widget")
	require.Equal(t, ExportKindClass, res.Exports["Widget"].Kind)

	helperImport, ok := res.InternalImports["./helper"]
	require.True(t, ok)
	require.Contains(t, helperImport.Identifiers, "helper")

	nsImport, ok := res.InternalImports["./ns"]
	require.True(t, ok)
	require.True(t, nsImport.IsStar)

	reexport, ok := res.InternalImports["./reexport"]
	require.True(t, ok)
	require.True(t, reexport.IsReExported)
}

func TestTreeSitterParserDuplicateExports(t *testing.T) {
	src := []byte(`
export const foo = 1;
export function foo() {}
`)
	p := NewTreeSitterParser()
	defer p.Close()

	res, err := p.Parse(context.Background(), "dup.ts", src)
	require.NoError(t, err)
	require.NotEmpty(t, res.DuplicateExports)
}

func TestTreeSitterParserExtractsRequireAndDynamicImport(t *testing.T) {
	src := []byte(`
const helper = require("./helper");
const lodash = require("lodash");

async function load() {
  const mod = await import("./lazy");
  const ext = await import("chalk");
  return mod, ext;
}
`)
	p := NewTreeSitterParser()
	defer p.Close()

	res, err := p.Parse(context.Background(), "dyn.ts", src)
	require.NoError(t, err)

	_, ok := res.InternalImports["./helper"]
	require.True(t, ok)
	_, ok = res.InternalImports["./lazy"]
	require.True(t, ok)

	require.Contains(t, res.ExternalSpecs, "lodash")
	require.Contains(t, res.ExternalSpecs, "chalk")
}

func TestTreeSitterParserIgnoresDynamicRequireSpecifiers(t *testing.T) {
	src := []byte(`
function load(name) {
  return require(name);
}
`)
	p := NewTreeSitterParser()
	defer p.Close()

	res, err := p.Parse(context.Background(), "dynspec.ts", src)
	require.NoError(t, err)
	require.Empty(t, res.InternalImports)
	require.Empty(t, res.ExternalSpecs)
}

func TestTreeSitterParserTalliesIdentifierReferences(t *testing.T) {
	src := []byte(`
export function helper() {
  return 1;
}

function caller() {
  return helper();
}
`)
	p := NewTreeSitterParser()
	defer p.Close()

	res, err := p.Parse(context.Background(), "refs.ts", src)
	require.NoError(t, err)

	require.GreaterOrEqual(t, res.IdentifierRefCounts["helper"], 2)
	require.Equal(t, 1, res.IdentifierRefCounts["caller"])
}

func TestTreeSitterParserPublicAnnotationSuppressesNothingByItself(t *testing.T) {
	src := []byte(`
/** @public */
export const apiSurface = 1;
`)
	p := NewTreeSitterParser()
	defer p.Close()

	res, err := p.Parse(context.Background(), "pub.ts", src)
	require.NoError(t, err)
	require.True(t, res.Exports["apiSurface"].IsPublic)
}
