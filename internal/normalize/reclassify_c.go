package normalize

import (
	"slices"

	"git.home.luguber.info/inful/hugoify/internal/docmodel"
	"git.home.luguber.info/inful/hugoify/internal/doctree"
	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
)

// genericFunctionsRubric is the title breathe gives ungrouped functions.
const genericFunctionsRubric = "Functions"

// cRules reclassify breathe output for C sources.
type cRules struct{}

func (cRules) place(s *sorter) error {
	for _, c := range slices.Clone(s.doc.Children) {
		switch c.Tag {
		case "container":
			if err := placeContainer(s, c, placeC); err != nil {
				return err
			}
		case docmodel.TagDesc:
			if err := placeC(s, c, "", false); err != nil {
				return err
			}
		}
	}
	return nil
}

// placeFunc places one top-level member. bucket is the rubric group the member was
// found in; grouped is set when that group is a named function group.
type placeFunc func(s *sorter, desc *doctree.Node, bucket string, grouped bool) error

// placeContainer places the members of a breathe section container. Rubric grouping
// runs first: the container's rubric names the function bucket for its members.
func placeContainer(s *sorter, container *doctree.Node, place placeFunc) error {
	bucket := rubricTitle(container)
	if bucket == genericFunctionsRubric {
		bucket = ""
	}
	switch container.Attr("objtype") {
	case "define", "typedef", "enum", "var":
		bucket = ""
	}
	for _, c := range slices.Clone(container.Children) {
		switch c.Tag {
		case docmodel.TagDesc:
			if err := place(s, c, bucket, bucket != ""); err != nil {
				return err
			}
		case "rubric", "target":
		default:
			if docmodel.IsDescriptionBlock(c.Tag) {
				c.Tail = ""
				s.section(docmodel.SectionAbstract).Append(c)
				continue
			}
			return errors.UnknownTagError(tagKey(c)).At(c, container).Build()
		}
	}
	container.Remove()
	return nil
}

func placeC(s *sorter, desc *doctree.Node, bucket string, grouped bool) error {
	if grouped && isClassShaped(desc) {
		return errors.StructuralError("compound type inside a function group").
			At(desc, desc.Parent()).
			WithContext("group", bucket).
			Build()
	}
	switch desc.Attr("objtype") {
	case "macro":
		s.put(docmodel.SectionDefines, desc, docmodel.ObjMacro)
	case "var", "member", "variable":
		s.put(docmodel.SectionDefines, desc, docmodel.ObjVariable)
	case "type", "typedef":
		s.put(docmodel.SectionTypedefs, desc, docmodel.ObjTypedef)
	case "struct", "union":
		s.put(docmodel.SectionStructs, desc, docmodel.ObjStruct)
	case "enum":
		s.put(docmodel.SectionEnums, desc, docmodel.ObjEnum)
	case "function":
		s.function(bucket, desc)
	default:
		return errors.UnknownTagError(tagKey(desc)).At(desc, desc.Parent()).Build()
	}
	return nil
}

func (cRules) nested(parent, child *doctree.Node) (string, error) {
	switch child.Attr("objtype") {
	case "member", "var", "variable":
		return docmodel.ObjMember, nil
	case "enumerator":
		return docmodel.ObjEnumerator, nil
	case "function":
		return docmodel.ObjMethod, nil
	case "struct", "union":
		return docmodel.ObjStruct, nil
	case "enum":
		return docmodel.ObjEnum, nil
	case "type", "typedef":
		return docmodel.ObjTypedef, nil
	}
	return "", errors.UnknownTagError(tagKey(child)).At(child, parent).Build()
}

func (cRules) signature(sig *doctree.Node, objtype string) {
	for _, p := range sig.FindTag(docmodel.TagParameter) {
		p.ReplaceWith(tokenizeParameter(p, objtype == docmodel.ObjMacro))
	}
	finishSignature(sig, objtype)
}
