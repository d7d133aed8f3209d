package normalize

import (
	"slices"
	"strings"

	"git.home.luguber.info/inful/hugoify/internal/docmodel"
	"git.home.luguber.info/inful/hugoify/internal/doctree"
	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
)

// cppRules reclassify breathe output for C++ sources.
type cppRules struct {
	suffix string
}

func (r cppRules) place(s *sorter) error {
	unwrapNamespaces(s.doc)
	for _, c := range slices.Clone(s.doc.Children) {
		switch c.Tag {
		case "container":
			if err := placeContainer(s, c, r.placeMember); err != nil {
				return err
			}
		case docmodel.TagDesc:
			if err := r.placeMember(s, c, "", false); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r cppRules) placeMember(s *sorter, desc *doctree.Node, bucket string, grouped bool) error {
	if grouped && isClassShaped(desc) {
		return errors.StructuralError("compound type inside a function group").
			At(desc, desc.Parent()).
			WithContext("group", bucket).
			Build()
	}
	objtype := desc.Attr("objtype")
	switch {
	case objtype == "class" && r.suffix != "" && strings.HasSuffix(descName(desc), r.suffix):
		s.put(docmodel.SectionExceptionClasses, desc, docmodel.ObjExceptionClass)
	case objtype == "class":
		s.put(docmodel.SectionClasses, desc, docmodel.ObjClass)
	case objtype == "struct" || objtype == "union":
		s.put(docmodel.SectionStructs, desc, docmodel.ObjStruct)
	case strings.HasPrefix(objtype, "enum"):
		s.put(docmodel.SectionEnums, desc, docmodel.ObjEnum)
	case objtype == "type" || objtype == "typedef":
		s.put(docmodel.SectionTypedefs, desc, docmodel.ObjTypedef)
	case objtype == "macro":
		s.put(docmodel.SectionDefines, desc, docmodel.ObjMacro)
	case objtype == "var" || objtype == "member":
		s.put(docmodel.SectionDefines, desc, docmodel.ObjVariable)
	case objtype == "function":
		s.function(bucket, desc)
	default:
		return errors.UnknownTagError(tagKey(desc)).At(desc, desc.Parent()).Build()
	}
	return nil
}

func (cppRules) nested(parent, child *doctree.Node) (string, error) {
	objtype := child.Attr("objtype")
	switch {
	case objtype == "function":
		return docmodel.ObjMethod, nil
	case objtype == "member" || objtype == "var":
		return docmodel.ObjAttribute, nil
	case objtype == "class":
		return docmodel.ObjClass, nil
	case objtype == "struct" || objtype == "union":
		return docmodel.ObjStruct, nil
	case objtype == "enumerator":
		return docmodel.ObjEnumerator, nil
	case strings.HasPrefix(objtype, "enum"):
		return docmodel.ObjEnum, nil
	case objtype == "type" || objtype == "typedef":
		return docmodel.ObjTypedef, nil
	}
	return "", errors.UnknownTagError(tagKey(child)).At(child, parent).Build()
}

func (cppRules) signature(sig *doctree.Node, objtype string) {
	returnsFromTargets(sig, objtype)
	for _, p := range sig.FindTag(docmodel.TagParameter) {
		p.ReplaceWith(tokenizeParameter(p, objtype == docmodel.ObjMacro))
	}
	finishSignature(sig, objtype)
}

// isNamespace reports whether a desc is the namespace wrapper breathe emits around
// the members of a C++ file.
func isNamespace(desc *doctree.Node) bool {
	if desc.Attr("desctype") != "type" && desc.Attr("objtype") != "type" {
		return false
	}
	sig := desc.Child(docmodel.TagSignature)
	if sig == nil {
		return false
	}
	for _, t := range sig.FindTag("target") {
		if strings.Contains(t.Attr("ids"), "namespace") {
			return true
		}
	}
	return strings.HasPrefix(strings.TrimSpace(sig.TextContent()), "namespace ")
}

// unwrapNamespaces splices the body of each namespace wrapper into the document at
// the wrapper's position, repeating for nested namespaces.
func unwrapNamespaces(doc *doctree.Node) {
	for {
		i := slices.IndexFunc(doc.Children, func(c *doctree.Node) bool {
			return c.Tag == docmodel.TagDesc && isNamespace(c)
		})
		if i < 0 {
			return
		}
		wrapper := doc.Children[i]
		var body []*doctree.Node
		if content := wrapper.Child(docmodel.TagContent); content != nil {
			body = slices.Clone(content.Children)
		}
		wrapper.ReplaceWith(body...)
	}
}

// returnsFromTargets turns the text breathe leaves after a signature anchor into the
// return type (functions) or declaration keyword (everything else). When the anchor
// has no text, a following type reference supplies it and the reference's own tail
// becomes the pointer/reference glyphs.
func returnsFromTargets(sig *doctree.Node, objtype string) {
	for _, t := range sig.FindTag("target") {
		if t.Ancestor(docmodel.TagParameterList) != nil {
			continue
		}
		text := collapse(t.Tail)
		t.Tail = ""
		if text == "" {
			if next := t.NextSibling(); next != nil && next.Tag == docmodel.TagReference {
				text = collapse(next.TextContent())
				glyphs := collapse(next.Tail)
				next.Tail = ""
				if glyphs != "" {
					next.ReplaceWith(doctree.NewText(docmodel.TagRef, glyphs))
				} else {
					next.Remove()
				}
			}
		}
		if text == "" {
			t.Remove()
			continue
		}
		t.ReplaceWith(doctree.NewText(leadTag(objtype), text))
	}
}
