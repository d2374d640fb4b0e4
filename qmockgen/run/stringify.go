package run

import (
	"fmt"
	"strings"

	"github.com/dave/dst"
)

// renderType converts a dst type expression back to Go source. The decorator
// only prints whole files, so facade signatures are rendered expression by
// expression.
//
//nolint:cyclop // Type-switch dispatcher over the dst expression kinds; complexity is inherent
func renderType(expr dst.Expr) string {
	switch typed := expr.(type) {
	case nil:
		return ""
	case *dst.Ident:
		return typed.Name
	case *dst.BasicLit:
		return typed.Value
	case *dst.SelectorExpr:
		return renderType(typed.X) + "." + typed.Sel.Name
	case *dst.StarExpr:
		return "*" + renderType(typed.X)
	case *dst.ArrayType:
		if typed.Len != nil {
			return "[" + renderType(typed.Len) + "]" + renderType(typed.Elt)
		}

		return "[]" + renderType(typed.Elt)
	case *dst.MapType:
		return "map[" + renderType(typed.Key) + "]" + renderType(typed.Value)
	case *dst.ChanType:
		return renderChanType(typed)
	case *dst.Ellipsis:
		return "..." + renderType(typed.Elt)
	case *dst.FuncType:
		return renderFuncType(typed)
	case *dst.InterfaceType:
		return renderInterfaceType(typed)
	case *dst.IndexExpr:
		return renderType(typed.X) + "[" + renderType(typed.Index) + "]"
	case *dst.IndexListExpr:
		indices := make([]string, len(typed.Indices))
		for i, idx := range typed.Indices {
			indices[i] = renderType(idx)
		}

		return renderType(typed.X) + "[" + strings.Join(indices, ", ") + "]"
	case *dst.ParenExpr:
		return "(" + renderType(typed.X) + ")"
	default:
		return fmt.Sprintf("%T", expr)
	}
}

func renderChanType(typed *dst.ChanType) string {
	switch typed.Dir {
	case dst.SEND:
		return "chan<- " + renderType(typed.Value)
	case dst.RECV:
		return "<-chan " + renderType(typed.Value)
	default:
		return "chan " + renderType(typed.Value)
	}
}

// renderFuncType renders a function-typed parameter or result, without names.
func renderFuncType(funcType *dst.FuncType) string {
	var buf strings.Builder

	buf.WriteString("func(")
	buf.WriteString(strings.Join(fieldTypes(funcType.Params), ", "))
	buf.WriteString(")")

	results := fieldTypes(funcType.Results)

	switch len(results) {
	case 0:
	case 1:
		buf.WriteString(" " + results[0])
	default:
		buf.WriteString(" (" + strings.Join(results, ", ") + ")")
	}

	return buf.String()
}

// renderInterfaceType handles interface literals in signatures. Only the
// empty interface shows up in practice; anything richer renders compactly.
func renderInterfaceType(ifaceType *dst.InterfaceType) string {
	if ifaceType.Methods == nil || len(ifaceType.Methods.List) == 0 {
		return "interface{}"
	}

	parts := make([]string, 0, len(ifaceType.Methods.List))

	for _, m := range ifaceType.Methods.List {
		part := ""
		if len(m.Names) > 0 {
			part = m.Names[0].Name
		}

		if sig, ok := m.Type.(*dst.FuncType); ok {
			part += strings.TrimPrefix(renderFuncType(sig), "func")
		} else {
			part += renderType(m.Type)
		}

		parts = append(parts, part)
	}

	return "interface{ " + strings.Join(parts, "; ") + " }"
}

// fieldTypes expands a field list into one type string per declared name
// ("a, b int" expands to "int, int"); unnamed fields expand once.
func fieldTypes(fields *dst.FieldList) []string {
	if fields == nil {
		return nil
	}

	var parts []string

	for _, field := range fields.List {
		typeStr := renderType(field.Type)

		count := len(field.Names)
		if count == 0 {
			count = 1
		}

		for range count {
			parts = append(parts, typeStr)
		}
	}

	return parts
}
