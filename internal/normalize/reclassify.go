package normalize

import (
	"slices"
	"strings"

	"git.home.luguber.info/inful/hugoify/internal/docmodel"
	"git.home.luguber.info/inful/hugoify/internal/doctree"
	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
)

// ruleset holds the dialect-specific reclassification rules.
type ruleset interface {
	// place moves the top-level children of the document into sections.
	place(s *sorter) error
	// nested returns the canonical objtype of a member declared inside another.
	nested(parent, child *doctree.Node) (string, error)
	// signature rewrites one member signature into the canonical shape.
	signature(sig *doctree.Node, objtype string)
}

func rulesFor(env *Env) ruleset {
	switch env.Dialect {
	case DialectC:
		return cRules{}
	case DialectCPP:
		return cppRules{suffix: env.Options.ExceptionSuffix}
	case DialectPython:
		return pythonRules{}
	default:
		return nil
	}
}

// reclassify moves members into sections using the rules of the detected dialect.
func reclassify(doc *doctree.Node, env *Env) (*doctree.Node, error) {
	rules := rulesFor(env)
	if rules == nil {
		return nil, errors.StructuralError("no rules for dialect " + env.Dialect.String()).
			At(doc, nil).
			Build()
	}
	s := newSorter(doc)
	if err := rules.place(s); err != nil {
		return nil, err
	}
	if err := s.sweep(); err != nil {
		return nil, err
	}
	for _, sec := range docmodel.Sections(doc) {
		if err := canonicalizeMembers(sec, rules); err != nil {
			return nil, err
		}
	}
	s.finish()
	trimLayout(doc, signatureTags...)
	return doc, nil
}

// sorter builds the sections of one document.
type sorter struct {
	doc      *doctree.Node
	contexts map[string]*doctree.Node
}

func newSorter(doc *doctree.Node) *sorter {
	s := &sorter{doc: doc, contexts: map[string]*doctree.Node{}}
	// The default bucket always comes first within the functions section.
	s.context("")
	return s
}

// section returns the section with the id, creating it at the end of the document.
func (s *sorter) section(id docmodel.SectionID) *doctree.Node {
	if sec := docmodel.Section(s.doc, id); sec != nil {
		return sec
	}
	sec := docmodel.NewSection(id)
	s.doc.Append(sec)
	return sec
}

// context returns the function bucket with the name.
func (s *sorter) context(name string) *doctree.Node {
	if ctx, ok := s.contexts[name]; ok {
		return ctx
	}
	ctx := doctree.New(docmodel.TagFunctionContext, "name", name)
	s.section(docmodel.SectionFunctions).Append(ctx)
	s.contexts[name] = ctx
	return ctx
}

// put moves a member into a section with its canonical objtype.
func (s *sorter) put(id docmodel.SectionID, member *doctree.Node, objtype string) {
	setObjType(member, objtype)
	member.Tail = ""
	s.section(id).Append(member)
}

// function moves a free function into the named bucket.
func (s *sorter) function(bucket string, member *doctree.Node) {
	setObjType(member, docmodel.ObjFunction)
	member.Tail = ""
	s.context(bucket).Append(member)
}

// sweep handles what the dialect rules left at the top level: prose joins the
// abstract, rubrics and anchors are dropped and anything else is unknown.
func (s *sorter) sweep() error {
	for _, c := range slices.Clone(s.doc.Children) {
		switch {
		case c.Tag == docmodel.TagSection:
		case docmodel.IsDescriptionBlock(c.Tag):
			c.Tail = ""
			s.section(docmodel.SectionAbstract).Append(c)
		case c.Tag == "rubric" || c.Tag == "target" || c.Tag == "definition_list":
			c.Remove()
		default:
			return errors.UnknownTagError(tagKey(c)).At(c, s.doc).Build()
		}
	}
	return nil
}

// finish drops an empty default bucket and puts the sections in order.
func (s *sorter) finish() {
	if def := s.contexts[""]; def != nil && len(def.Children) == 0 {
		def.Remove()
	}
	docmodel.SortSections(s.doc)
}

func tagKey(n *doctree.Node) string {
	if n.HasAttr("objtype") {
		return n.Tag + ":" + n.Attr("objtype")
	}
	return n.Tag
}

func setObjType(desc *doctree.Node, objtype string) {
	desc.Attrs = map[string]string{"objtype": objtype}
}

// rubricTitle returns the text of the container's rubric, or "".
func rubricTitle(container *doctree.Node) string {
	if r := container.Child("rubric"); r != nil {
		return collapse(r.TextContent())
	}
	return ""
}

// isClassShaped reports whether the desc declares a compound type.
func isClassShaped(desc *doctree.Node) bool {
	switch desc.Attr("objtype") {
	case "class", "struct", "union", "exception":
		return true
	}
	return false
}

// canonicalizeMembers fixes objtypes and signatures of every member in a section,
// descending into member bodies.
func canonicalizeMembers(sec *doctree.Node, rules ruleset) error {
	for _, d := range sec.FindTag(docmodel.TagDesc) {
		if d.Parent() != sec && d.Parent().Tag != docmodel.TagFunctionContext {
			parent := d.Ancestor(docmodel.TagDesc)
			objtype, err := rules.nested(parent, d)
			if err != nil {
				return err
			}
			if objtype == "" {
				d.Remove()
				continue
			}
			setObjType(d, objtype)
		}
		for _, sig := range d.ChildrenByTag(docmodel.TagSignature) {
			rules.signature(sig, d.Attr("objtype"))
		}
	}
	return nil
}

// descName returns the declared name of a member.
func descName(desc *doctree.Node) string {
	sig := desc.Child(docmodel.TagSignature)
	if sig == nil {
		return ""
	}
	if n := sig.FindTag(docmodel.TagName, "desc_sig_name"); len(n) > 0 {
		return strings.TrimSpace(n[0].TextContent())
	}
	return ""
}

// isFunctionLike reports whether the objtype has a return type.
func isFunctionLike(objtype string) bool {
	return objtype == docmodel.ObjFunction || objtype == docmodel.ObjMethod
}

const sigWrapperPrefix = "desc_sig_"

// finishSignature unwraps markup the renderer does not know and turns loose
// signature text into annotation or return nodes, keeping the parameter list as is.
// Loose text before the name is the return type of functions and an annotation
// for everything else; loose text after the name is a trailing annotation.
func finishSignature(sig *doctree.Node, objtype string) {
	for _, n := range sig.FindAll(func(n *doctree.Node) bool {
		return n.Ancestor(docmodel.TagParameterList) == nil &&
			(strings.HasPrefix(n.Tag, sigWrapperPrefix) || n.Tag == docmodel.TagReference ||
				n.Tag == docmodel.TagEmphasis || n.Tag == "target")
	}) {
		if n.Tag == "target" {
			n.Remove()
			continue
		}
		n.Unwrap()
	}
	for _, t := range sig.ChildrenByTag(docmodel.TagType) {
		t.Tag = leadTag(objtype)
	}

	var out []*doctree.Node
	seenName := false
	add := func(tag, text string) {
		if text == "" {
			return
		}
		if last := len(out) - 1; last >= 0 && out[last].Tag == tag &&
			(tag == docmodel.TagReturns || tag == docmodel.TagAnnotation) {
			out[last].Text += " " + text
			return
		}
		out = append(out, doctree.NewText(tag, text))
	}
	loose := func(text string) {
		if seenName {
			add(docmodel.TagAnnotation, collapse(text))
		} else {
			add(leadTag(objtype), collapse(text))
		}
	}
	loose(sig.Text)
	for _, c := range slices.Clone(sig.Children) {
		tail := c.Tail
		if c.Tag == docmodel.TagParameterList {
			c.Tail = ""
			out = append(out, c)
			loose(tail)
			continue
		}
		text := collapse(c.TextContent())
		switch c.Tag {
		case docmodel.TagName, docmodel.TagAddName:
			text = strings.ReplaceAll(text, " ", "")
		}
		add(c.Tag, text)
		if c.Tag == docmodel.TagName {
			seenName = true
		}
		loose(tail)
	}
	sig.Text = ""
	for _, c := range slices.Clone(sig.Children) {
		c.Detach()
	}
	sig.Append(out...)
}

func leadTag(objtype string) string {
	if isFunctionLike(objtype) {
		return docmodel.TagReturns
	}
	return docmodel.TagAnnotation
}

// newParameter builds a canonical desc_parameter.
func newParameter(annotation, typ, ref, name, def string) *doctree.Node {
	p := doctree.New(docmodel.TagParameter)
	for _, part := range []struct{ tag, text string }{
		{docmodel.TagAnnotation, annotation},
		{docmodel.TagType, typ},
		{docmodel.TagRef, ref},
		{docmodel.TagName, name},
		{docmodel.TagDefaultValue, def},
	} {
		if part.text != "" {
			p.Append(doctree.NewText(part.tag, part.text))
		}
	}
	return p
}
