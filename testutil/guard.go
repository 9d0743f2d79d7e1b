// Package testutil provides helpers that enforce layering rules between
// packages from tests.
package testutil

import (
	"fmt"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// EntitySetForbidden matches the entity set package, which must stay below
// the service layer.
func EntitySetForbidden(path string) bool {
	return strings.HasSuffix(path, "/pkg/entityset")
}

// InternalImportForbidden matches any import path containing /internal/.
func InternalImportForbidden(path string) bool {
	return strings.Contains(path, "/internal/")
}

// AssertNoDirectImports scans the non-test .go files in dir and fails if any
// import path satisfies forbidden. Build tags are not evaluated.
func AssertNoDirectImports(t testing.TB, dir string, forbidden func(importPath string) bool, reason string) {
	t.Helper()
	viols, err := directImportViolations(dir, forbidden)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	failIf(t, "forbidden direct imports", reason, viols)
}

// AssertNoTransitiveDependency loads pattern with its dependency graph and
// fails if any reachable package satisfies forbidden.
func AssertNoTransitiveDependency(t testing.TB, pattern string, forbidden func(path string) bool, reason string) {
	t.Helper()
	viols, err := transitiveDependencyViolations(pattern, forbidden)
	if err != nil {
		t.Fatalf("load %s: %v", pattern, err)
	}
	failIf(t, "forbidden transitive dependency", reason, viols)
}

// AssertNoExportedTypes fails if an exported function, method, struct field
// or interface method of the packages matched by pattern mentions a type
// declared in a package that satisfies forbidden.
func AssertNoExportedTypes(t testing.TB, pattern string, forbidden func(path string) bool, reason string) {
	t.Helper()
	viols, err := ExportedTypeViolations(pattern, forbidden)
	if err != nil {
		t.Fatalf("load %s: %v", pattern, err)
	}
	failIf(t, "forbidden types in exported API", reason, viols)
}

// ExportedTypeViolations reports "<decl>: <package>" for every exported
// declaration of pattern that references a forbidden package.
func ExportedTypeViolations(pattern string, forbidden func(path string) bool) ([]string, error) {
	pkgs, err := load(packages.NeedName|packages.NeedTypes, pattern)
	if err != nil {
		return nil, err
	}
	var viols []string
	for _, pkg := range pkgs {
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			obj := scope.Lookup(name)
			if !obj.Exported() {
				continue
			}
			for decl, typ := range exportedSurface(obj) {
				for _, path := range referencedPackages(typ) {
					if forbidden(path) {
						viols = append(viols, fmt.Sprintf("%s.%s: %s", pkg.PkgPath, decl, path))
					}
				}
			}
		}
	}
	slices.Sort(viols)
	return slices.Compact(viols), nil
}

// exportedSurface yields the types a caller outside the package can reach
// through obj, keyed by a readable declaration name.
func exportedSurface(obj types.Object) map[string]types.Type {
	out := map[string]types.Type{}
	switch o := obj.(type) {
	case *types.Func:
		out[o.Name()] = o.Type()
	case *types.Var, *types.Const:
		out[o.Name()] = o.Type()
	case *types.TypeName:
		named, ok := types.Unalias(o.Type()).(*types.Named)
		if !ok {
			out[o.Name()] = o.Type()
			return out
		}
		for i := 0; i < named.NumMethods(); i++ {
			if m := named.Method(i); m.Exported() {
				out[o.Name()+"."+m.Name()] = m.Type()
			}
		}
		switch u := named.Underlying().(type) {
		case *types.Struct:
			for i := 0; i < u.NumFields(); i++ {
				if f := u.Field(i); f.Exported() {
					out[o.Name()+"."+f.Name()] = f.Type()
				}
			}
		case *types.Interface:
			for i := 0; i < u.NumMethods(); i++ {
				if m := u.Method(i); m.Exported() {
					out[o.Name()+"."+m.Name()] = m.Type()
				}
			}
		case *types.Signature, *types.Map, *types.Slice, *types.Pointer, *types.Chan:
			out[o.Name()] = u
		}
	}
	return out
}

// referencedPackages lists the packages declaring the named types in t. It
// does not descend into the underlying type of named types.
func referencedPackages(t types.Type) []string {
	var out []string
	var walk func(types.Type)
	walk = func(t types.Type) {
		switch v := types.Unalias(t).(type) {
		case *types.Named:
			if pkg := v.Obj().Pkg(); pkg != nil {
				out = append(out, pkg.Path())
			}
			for i := 0; i < v.TypeArgs().Len(); i++ {
				walk(v.TypeArgs().At(i))
			}
		case *types.Pointer:
			walk(v.Elem())
		case *types.Slice:
			walk(v.Elem())
		case *types.Array:
			walk(v.Elem())
		case *types.Chan:
			walk(v.Elem())
		case *types.Map:
			walk(v.Key())
			walk(v.Elem())
		case *types.Signature:
			for i := 0; i < v.Params().Len(); i++ {
				walk(v.Params().At(i).Type())
			}
			for i := 0; i < v.Results().Len(); i++ {
				walk(v.Results().At(i).Type())
			}
		case *types.Struct:
			for i := 0; i < v.NumFields(); i++ {
				if v.Field(i).Exported() {
					walk(v.Field(i).Type())
				}
			}
		}
	}
	walk(t)
	return out
}

func transitiveDependencyViolations(pattern string, forbidden func(path string) bool) ([]string, error) {
	roots, err := load(packages.NeedName|packages.NeedImports|packages.NeedDeps, pattern)
	if err != nil {
		return nil, err
	}
	var viols []string
	packages.Visit(roots, func(p *packages.Package) bool {
		if forbidden(p.PkgPath) {
			viols = append(viols, p.PkgPath)
		}
		return true
	}, nil)
	slices.Sort(viols)
	return viols, nil
}

func load(mode packages.LoadMode, pattern string) ([]*packages.Package, error) {
	pkgs, err := packages.Load(&packages.Config{Mode: mode}, pattern)
	if err != nil {
		return nil, err
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages match %s", pattern)
	}
	var errs []string
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			errs = append(errs, e.Error())
		}
	})
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %s", strings.Join(errs, "; "))
	}
	return pkgs, nil
}

func directImportViolations(dir string, forbidden func(importPath string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	var viols []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ImportsOnly)
		if err != nil {
			return nil, err
		}
		for _, imp := range file.Imports {
			ip := strings.Trim(imp.Path.Value, `"`)
			if forbidden(ip) {
				viols = append(viols, ip+" (in "+name+")")
			}
		}
	}
	return viols, nil
}

type fatalLogger interface {
	Fatalf(format string, args ...any)
}

func failIf(t fatalLogger, what, reason string, viols []string) {
	if len(viols) > 0 {
		t.Fatalf("%s detected (%s):\n%s", what, reason, strings.Join(viols, "\n"))
	}
}
