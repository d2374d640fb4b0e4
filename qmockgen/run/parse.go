package run

import (
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
)

var (
	errInterfaceNotFound = errors.New("interface not found")
	errUnsupported       = errors.New("unsupported interface")
	errNoGoFiles         = errors.New("no .go files found")
)

// method is one resolved interface method: its name and its dst signature.
type method struct {
	name string
	sig  *dst.FuncType
}

// ifaceDecl pairs an interface type with whether its declaration carries type
// parameters, which the generator does not support.
type ifaceDecl struct {
	typ     *dst.InterfaceType
	generic bool
}

// ifaceSource is a resolved interface plus the import table of the package
// that declared it, so qualified types in signatures can be re-imported by
// the generated file.
type ifaceSource struct {
	methods []method
	imports map[string]string // local name -> import path
}

// findInterface parses every .go file in dir and resolves name to its flat
// method list, following embedded interfaces declared in the same package.
func findInterface(dir, name string) (ifaceSource, error) {
	decls, imports, err := parseInterfaceDecls(dir)
	if err != nil {
		return ifaceSource{}, err
	}

	methods, err := resolveMethods(decls, name, map[string]bool{})
	if err != nil {
		return ifaceSource{}, err
	}

	return ifaceSource{methods: methods, imports: imports}, nil
}

// parseInterfaceDecls parses the directory and collects every top-level
// interface declaration by name, plus the union of the package's imports.
// Files that fail to parse are skipped.
func parseInterfaceDecls(dir string) (map[string]ifaceDecl, map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	dec := decorator.NewDecorator(token.NewFileSet())
	decls := map[string]ifaceDecl{}
	imports := map[string]string{}
	parsedAny := false

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") {
			continue
		}

		file, err := dec.ParseFile(filepath.Join(dir, entry.Name()), nil, 0)
		if err != nil {
			continue
		}

		parsedAny = true

		collectInterfaceDecls(file, decls)
		collectImports(file, imports)
	}

	if !parsedAny {
		return nil, nil, fmt.Errorf("%w: %s", errNoGoFiles, dir)
	}

	return decls, imports, nil
}

// collectImports records each import spec as local name -> path. Without type
// information the local name for an unaliased import is approximated by the
// last path segment, which covers the overwhelmingly common layout.
func collectImports(file *dst.File, imports map[string]string) {
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}

		local := path
		if i := strings.LastIndex(path, "/"); i >= 0 {
			local = path[i+1:]
		}

		if spec.Name != nil {
			local = spec.Name.Name
		}

		if local == "_" || local == "." {
			continue
		}

		imports[local] = path
	}
}

func collectInterfaceDecls(file *dst.File, decls map[string]ifaceDecl) {
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*dst.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}

		for _, spec := range genDecl.Specs {
			typeSpec, ok := spec.(*dst.TypeSpec)
			if !ok {
				continue
			}

			ifaceType, ok := typeSpec.Type.(*dst.InterfaceType)
			if !ok {
				continue
			}

			decls[typeSpec.Name.Name] = ifaceDecl{
				typ:     ifaceType,
				generic: typeSpec.TypeParams != nil && len(typeSpec.TypeParams.List) > 0,
			}
		}
	}
}

// resolveMethods flattens name's method set, recursing into embedded
// interfaces declared in the same package. The seen set breaks embedding
// cycles.
func resolveMethods(decls map[string]ifaceDecl, name string, seen map[string]bool) ([]method, error) {
	if seen[name] {
		return nil, nil
	}

	seen[name] = true

	decl, ok := decls[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errInterfaceNotFound, name)
	}

	if decl.generic {
		return nil, fmt.Errorf("%w: %s is generic; instantiate it with a concrete alias first", errUnsupported, name)
	}

	if decl.typ.Methods == nil {
		return nil, nil
	}

	var methods []method

	for _, field := range decl.typ.Methods.List {
		if len(field.Names) > 0 {
			sig, ok := field.Type.(*dst.FuncType)
			if !ok {
				return nil, fmt.Errorf("%w: %s.%s is not a method", errUnsupported, name, field.Names[0].Name)
			}

			methods = append(methods, method{name: field.Names[0].Name, sig: sig})

			continue
		}

		// Embedded interface. Only same-package embeds can be resolved from
		// syntax alone.
		embeddedName, ok := field.Type.(*dst.Ident)
		if !ok {
			return nil, fmt.Errorf(
				"%w: %s embeds %s from another package", errUnsupported, name, renderType(field.Type))
		}

		embedded, err := resolveMethods(decls, embeddedName.Name, seen)
		if err != nil {
			return nil, err
		}

		methods = append(methods, embedded...)
	}

	return methods, nil
}
