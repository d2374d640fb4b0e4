package run

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dave/dst"
)

const qmockImportPath = "github.com/toejough/qmock"

// generateFacade emits a struct named facadeName that implements ifaceName by
// routing every method through a *qmock.Double. Return-value handling follows
// three rules: a method whose final result is error receives call errors
// there; a method with no error result panics on a verification error; a
// method with multiple non-error results expects its configured value as
// []any, one element per result.
func generateFacade(pkgName, facadeName, ifaceName string, src ifaceSource) string {
	var buf strings.Builder

	buf.WriteString("// Code generated by qmockgen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", pkgName)

	writeImports(&buf, src)

	fmt.Fprintf(&buf, "// %s implements %s by routing every call through a qmock.Double.\n", facadeName, ifaceName)
	fmt.Fprintf(&buf, "type %s struct {\n\tDouble *qmock.Double\n}\n\n", facadeName)

	fmt.Fprintf(&buf, "// New%s wraps double in a typed %s facade.\n", facadeName, ifaceName)
	fmt.Fprintf(&buf, "func New%s(double *qmock.Double) *%s {\n", facadeName, facadeName)
	fmt.Fprintf(&buf, "\treturn &%s{Double: double}\n}\n", facadeName)

	for _, m := range src.methods {
		buf.WriteString("\n")
		writeMethod(&buf, facadeName, m)
	}

	return buf.String()
}

// writeImports emits the import block: the qmock package plus whichever of
// the source package's imports the method signatures actually qualify types
// with.
func writeImports(buf *strings.Builder, src ifaceSource) {
	needed := map[string]bool{}

	for _, m := range src.methods {
		dst.Inspect(m.sig, func(node dst.Node) bool {
			if sel, ok := node.(*dst.SelectorExpr); ok {
				if ident, ok := sel.X.(*dst.Ident); ok {
					needed[ident.Name] = true
				}
			}

			return true
		})
	}

	paths := []string{qmockImportPath}

	for local := range needed {
		if path, ok := src.imports[local]; ok {
			paths = append(paths, path)
		}
	}

	sort.Strings(paths)

	buf.WriteString("import (\n")

	for _, path := range paths {
		fmt.Fprintf(buf, "\t%q\n", path)
	}

	buf.WriteString(")\n\n")
}

// param is one facade method parameter. Generated names are positional to
// rule out collisions with the receiver and locals.
type param struct {
	name     string
	typeStr  string
	variadic bool
}

func writeMethod(buf *strings.Builder, facadeName string, m method) {
	params := methodParams(m.sig)
	results := fieldTypes(m.sig.Results)

	errLast := len(results) > 0 && results[len(results)-1] == "error"

	valueResults := results
	if errLast {
		valueResults = results[:len(results)-1]
	}

	fmt.Fprintf(buf, "func (d *%s) %s(%s)%s {\n",
		facadeName, m.name, renderParams(params), renderResults(results))

	for i, typeStr := range valueResults {
		fmt.Fprintf(buf, "\tvar r%d %s\n\n", i, typeStr)
	}

	writeInvoke(buf, m.name, params)
	writeErrorCheck(buf, errLast, len(valueResults))
	writeResultAssertions(buf, valueResults)
	writeReturn(buf, errLast, len(valueResults))

	buf.WriteString("}\n")
}

func methodParams(sig *dst.FuncType) []param {
	if sig.Params == nil {
		return nil
	}

	var params []param

	for _, field := range sig.Params.List {
		typeStr := renderType(field.Type)
		_, variadic := field.Type.(*dst.Ellipsis)

		count := len(field.Names)
		if count == 0 {
			count = 1
		}

		for range count {
			params = append(params, param{
				name:     fmt.Sprintf("arg%d", len(params)),
				typeStr:  typeStr,
				variadic: variadic,
			})
		}
	}

	return params
}

func renderParams(params []param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.name + " " + p.typeStr
	}

	return strings.Join(parts, ", ")
}

func renderResults(results []string) string {
	switch len(results) {
	case 0:
		return ""
	case 1:
		return " " + results[0]
	default:
		return " (" + strings.Join(results, ", ") + ")"
	}
}

// writeInvoke emits the Double.Invoke call. A variadic final parameter is
// spread into the argument slice so each element matches positionally.
func writeInvoke(buf *strings.Builder, name string, params []param) {
	variadic := len(params) > 0 && params[len(params)-1].variadic

	if !variadic {
		names := make([]string, 0, len(params)+1)
		names = append(names, fmt.Sprintf("%q", name))

		for _, p := range params {
			names = append(names, p.name)
		}

		fmt.Fprintf(buf, "\tv, err := d.Double.Invoke(%s)\n", strings.Join(names, ", "))

		return
	}

	fixed := params[:len(params)-1]
	last := params[len(params)-1]

	elems := make([]string, len(fixed))
	for i, p := range fixed {
		elems[i] = p.name
	}

	fmt.Fprintf(buf, "\targs := []any{%s}\n", strings.Join(elems, ", "))
	fmt.Fprintf(buf, "\tfor _, a := range %s {\n\t\targs = append(args, a)\n\t}\n\n", last.name)
	fmt.Fprintf(buf, "\tv, err := d.Double.Invoke(%q, args...)\n", name)
}

func writeErrorCheck(buf *strings.Builder, errLast bool, valueCount int) {
	if !errLast {
		buf.WriteString("\tif err != nil {\n\t\tpanic(err)\n\t}\n")

		if valueCount == 0 {
			buf.WriteString("\n\t_ = v\n")
		}

		return
	}

	names := make([]string, 0, valueCount+1)
	for i := range valueCount {
		names = append(names, fmt.Sprintf("r%d", i))
	}

	names = append(names, "err")

	fmt.Fprintf(buf, "\tif err != nil {\n\t\treturn %s\n\t}\n", strings.Join(names, ", "))

	if valueCount == 0 {
		buf.WriteString("\n\t_ = v\n")
	}
}

func writeResultAssertions(buf *strings.Builder, valueResults []string) {
	switch len(valueResults) {
	case 0:
	case 1:
		fmt.Fprintf(buf, "\n\tif v != nil {\n\t\tr0 = v.(%s)\n\t}\n", valueResults[0])
	default:
		buf.WriteString("\n\tif v != nil {\n\t\tresults := v.([]any)\n")

		for i, typeStr := range valueResults {
			fmt.Fprintf(buf, "\t\tif results[%d] != nil {\n\t\t\tr%d = results[%d].(%s)\n\t\t}\n", i, i, i, typeStr)
		}

		buf.WriteString("\t}\n")
	}
}

func writeReturn(buf *strings.Builder, errLast bool, valueCount int) {
	if !errLast && valueCount == 0 {
		return
	}

	names := make([]string, 0, valueCount+1)
	for i := range valueCount {
		names = append(names, fmt.Sprintf("r%d", i))
	}

	if errLast {
		names = append(names, "nil")
	}

	fmt.Fprintf(buf, "\n\treturn %s\n", strings.Join(names, ", "))
}
