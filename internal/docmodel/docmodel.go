// Package docmodel defines the canonical document vocabulary shared by the
// normalization pipeline and the renderer.
//
// A canonical tree is a doctree whose root is a "document" node holding sections
// in a fixed order. Members are "desc" nodes tagged with one canonical objtype.
package docmodel

import (
	"os"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/hugoify/internal/doctree"
	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
)

// Structural tags.
const (
	TagDocument        = "document"
	TagSection         = "section"
	TagFunctionContext = "function_context"
	TagDesc            = "desc"
	TagSignature       = "desc_signature"
	TagContent         = "desc_content"
)

// Signature tags.
const (
	TagAnnotation    = "desc_annotation"
	TagReturns       = "desc_returns"
	TagAddName       = "desc_addname"
	TagName          = "desc_name"
	TagParameterList = "desc_parameterlist"
	TagParameter     = "desc_parameter"
	TagType          = "desc_type"
	TagRef           = "desc_ref"
	TagDefaultValue  = "default_value"
)

// Member body tags.
const (
	TagDescription   = "func_description"
	TagParamList     = "parameter_list"
	TagParam         = "param"
	TagParamName     = "param_name"
	TagParamType     = "param_type"
	TagParamDesc     = "param_desc"
	TagExceptionList = "exception_list"
	TagException     = "exception"
	TagExceptionName = "exception_name"
	TagExceptionDesc = "exception_desc"
	TagReturnValue   = "return_value"
	TagReturnType    = "return_type"
)

// Rich text tags, the docstring converter vocabulary plus the inline markup docutils emits.
const (
	TagParagraph       = "paragraph"
	TagBulletList      = "bullet_list"
	TagEnumeratedList  = "enumerated_list"
	TagListItem        = "list_item"
	TagEmphasis        = "emphasis"
	TagStrong          = "strong"
	TagLiteral         = "literal"
	TagLiteralStrong   = "literal_strong"
	TagLiteralEmphasis = "literal_emphasis"
	TagTitleReference  = "title_reference"
	TagReference       = "reference"
	TagLiteralBlock    = "literal_block"
)

// Canonical member objtypes.
const (
	ObjFunction       = "function"
	ObjMethod         = "method"
	ObjAttribute      = "attribute"
	ObjClass          = "class"
	ObjExceptionClass = "exception_class"
	ObjStruct         = "struct"
	ObjEnum           = "enum"
	ObjEnumerator     = "enumerator"
	ObjTypedef        = "typedef"
	ObjMacro          = "macro"
	ObjMember         = "member"
	ObjVariable       = "variable"
)

// SectionID names a top-level document section.
type SectionID string

const (
	SectionAbstract         SectionID = "abstract"
	SectionDefines          SectionID = "defines"
	SectionTypedefs         SectionID = "typedefs"
	SectionStructs          SectionID = "structs"
	SectionEnums            SectionID = "enums"
	SectionExceptionClasses SectionID = "exception_classes"
	SectionClasses          SectionID = "classes"
	SectionFunctions        SectionID = "functions"
)

// SectionOrder is the fixed relative order of sections in a document.
var SectionOrder = []SectionID{
	SectionAbstract,
	SectionDefines,
	SectionTypedefs,
	SectionStructs,
	SectionEnums,
	SectionExceptionClasses,
	SectionClasses,
	SectionFunctions,
}

// Rank returns the position of id in SectionOrder, or -1 for an unknown id.
func (id SectionID) Rank() int {
	return slices.Index(SectionOrder, id)
}

// Title is the heading shown for the section.
func (id SectionID) Title() string {
	if id == SectionAbstract {
		return "Introduction"
	}
	return titleCaser.String(strings.ReplaceAll(string(id), "_", " "))
}

var titleCaser = cases.Title(language.English)

var descriptionBlocks = []string{
	TagParagraph, TagBulletList, TagEnumeratedList, TagLiteralBlock,
}

// IsDescriptionBlock reports whether the tag is a rich-text block.
func IsDescriptionBlock(tag string) bool {
	return slices.Contains(descriptionBlocks, tag)
}

var canonicalTags = map[string]bool{}

var memberObjTypes = []string{
	ObjFunction, ObjMethod, ObjAttribute, ObjClass, ObjExceptionClass, ObjStruct,
	ObjEnum, ObjEnumerator, ObjTypedef, ObjMacro, ObjMember, ObjVariable,
}

func init() {
	for _, tag := range []string{
		TagDocument, TagSection, TagFunctionContext, TagDesc, TagSignature, TagContent,
		TagAnnotation, TagReturns, TagAddName, TagName, TagParameterList, TagParameter,
		TagType, TagRef, TagDefaultValue,
		TagDescription, TagParamList, TagParam, TagParamName, TagParamType, TagParamDesc,
		TagExceptionList, TagException, TagExceptionName, TagExceptionDesc,
		TagReturnValue, TagReturnType,
		TagParagraph, TagBulletList, TagEnumeratedList, TagListItem, TagEmphasis, TagStrong,
		TagLiteral, TagLiteralStrong, TagLiteralEmphasis, TagTitleReference, TagReference,
		TagLiteralBlock,
	} {
		canonicalTags[tag] = true
	}
}

// IsCanonicalTag reports whether tag belongs to the canonical vocabulary.
func IsCanonicalTag(tag string) bool {
	return canonicalTags[tag]
}

// CanonicalTags lists the canonical vocabulary in sorted order.
func CanonicalTags() []string {
	out := make([]string, 0, len(canonicalTags))
	for tag := range canonicalTags {
		out = append(out, tag)
	}
	slices.Sort(out)
	return out
}

// IsMemberObjType reports whether objtype is a canonical member objtype.
func IsMemberObjType(objtype string) bool {
	return slices.Contains(memberObjTypes, objtype)
}

// MemberObjTypes lists the canonical member objtypes.
func MemberObjTypes() []string {
	return slices.Clone(memberObjTypes)
}

// Validate checks that every node of a canonical tree uses the canonical vocabulary.
// The first offending node is reported as an UnknownTagError.
func Validate(root *doctree.Node) error {
	var bad *doctree.Node
	root.Walk(func(n *doctree.Node) bool {
		if bad != nil {
			return false
		}
		if !IsCanonicalTag(n.Tag) || (n.Tag == TagDesc && !IsMemberObjType(n.Attr("objtype"))) {
			bad = n
			return false
		}
		return true
	})
	if bad == nil {
		return nil
	}
	key := bad.Tag
	if bad.HasAttr("objtype") {
		key += ":" + bad.Attr("objtype")
	}
	return errors.UnknownTagError(key).At(bad, bad.Parent()).Build()
}

// ParseFile reads an extractor XML file into a raw tree.
func ParseFile(path string) (*doctree.Node, error) {
	// #nosec G304 -- path comes from the configured input directory.
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read document").
			WithContext("path", path).
			Build()
	}
	defer func() { _ = f.Close() }()

	root, err := doctree.Parse(f)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStructural, "failed to parse document").
			WithContext("path", path).
			Fatal().
			Build()
	}
	return root, nil
}
