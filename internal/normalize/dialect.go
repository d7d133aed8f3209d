package normalize

import (
	"strings"

	"git.home.luguber.info/inful/hugoify/internal/doctree"
	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
)

// Dialect selects the reclassification rules for an input tree.
type Dialect int

const (
	DialectUnknown Dialect = iota
	DialectC
	DialectCPP
	DialectPython
)

func (d Dialect) String() string {
	switch d {
	case DialectC:
		return "c"
	case DialectCPP:
		return "c++"
	case DialectPython:
		return "python"
	default:
		return "unknown"
	}
}

// Label is the human-facing language name.
func (d Dialect) Label() string {
	switch d {
	case DialectC:
		return "C"
	case DialectCPP:
		return "C++"
	case DialectPython:
		return "Python"
	default:
		return ""
	}
}

// DialectFromNames infers the dialect from the first space-separated token of a
// "names" attribute. Checks run python, then c++, then c.
func DialectFromNames(names string) Dialect {
	first, _, _ := strings.Cut(strings.TrimSpace(names), " ")
	first = strings.ToLower(first)
	switch {
	case strings.Contains(first, "python"):
		return DialectPython
	case strings.Contains(first, "c++"):
		return DialectCPP
	case strings.Contains(first, "c"):
		return DialectC
	default:
		return DialectUnknown
	}
}

// bodySection returns the node that carries the "names" attribute: the root itself
// or, for a docutils document, its first section.
func bodySection(root *doctree.Node) *doctree.Node {
	if root.HasAttr("names") {
		return root
	}
	return root.Child("section")
}

// DetectDialect finds the body section of a raw tree and infers its dialect.
func DetectDialect(root *doctree.Node) (Dialect, error) {
	body := bodySection(root)
	if body == nil {
		return DialectUnknown, errors.StructuralError("document has no section carrying a names attribute").
			At(root, nil).
			Build()
	}
	d := DialectFromNames(body.Attr("names"))
	if d == DialectUnknown {
		return DialectUnknown, errors.StructuralError("cannot infer dialect from names "+quote(body.Attr("names"))).
			At(body, body.Parent()).
			Build()
	}
	return d, nil
}

func quote(s string) string { return `"` + s + `"` }
