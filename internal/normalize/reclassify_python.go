package normalize

import (
	"slices"
	"strings"

	"git.home.luguber.info/inful/hugoify/internal/docmodel"
	"git.home.luguber.info/inful/hugoify/internal/doctree"
	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
)

// dunderAttributes are implementation details autodoc sometimes documents.
var dunderAttributes = []string{"__dict__", "__module__", "__weakref__"}

// pythonRules reclassify autodoc output for Python modules.
type pythonRules struct{}

func (pythonRules) place(s *sorter) error {
	for _, c := range slices.Clone(s.doc.Children) {
		if c.Tag != docmodel.TagDesc {
			continue
		}
		switch c.Attr("objtype") {
		case "class":
			s.put(docmodel.SectionClasses, c, docmodel.ObjClass)
		case "exception":
			s.put(docmodel.SectionExceptionClasses, c, docmodel.ObjExceptionClass)
		case "function":
			s.function("", c)
		case "data", "attribute":
			s.put(docmodel.SectionDefines, c, docmodel.ObjVariable)
		default:
			return errors.UnknownTagError(tagKey(c)).At(c, s.doc).Build()
		}
	}
	return nil
}

func (pythonRules) nested(parent, child *doctree.Node) (string, error) {
	switch child.Attr("objtype") {
	case "method", "classmethod", "staticmethod", "function":
		return docmodel.ObjMethod, nil
	case "attribute", "property", "data":
		if slices.Contains(dunderAttributes, strings.TrimSpace(descName(child))) {
			return "", nil
		}
		return docmodel.ObjAttribute, nil
	case "class":
		return docmodel.ObjClass, nil
	case "exception":
		return docmodel.ObjExceptionClass, nil
	}
	return "", errors.UnknownTagError(tagKey(child)).At(child, parent).Build()
}

func (pythonRules) signature(sig *doctree.Node, objtype string) {
	for _, p := range sig.FindTag(docmodel.TagParameter) {
		p.ReplaceWith(pythonParameter(p))
	}
	for _, n := range sig.FindTag("desc_sig_name") {
		if n.Parent() == sig {
			n.Tag = docmodel.TagName
		}
	}
	finishSignature(sig, objtype)
}
