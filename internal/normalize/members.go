package normalize

import (
	"slices"
	"strings"

	"git.home.luguber.info/inful/hugoify/internal/docmodel"
	"git.home.luguber.info/inful/hugoify/internal/doctree"
)

// normalizeMembers gives every member body the canonical shape: description,
// parameter list, exception list, return value, return type, then nested members.
// Running it on its own output changes nothing.
func normalizeMembers(doc *doctree.Node, env *Env) (*doctree.Node, error) {
	for _, desc := range doc.FindTag(docmodel.TagDesc) {
		if err := normalizeMember(desc, env.Dialect); err != nil {
			return nil, err
		}
	}
	trimLayout(doc, signatureTags...)
	if err := docmodel.Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func normalizeMember(desc *doctree.Node, dialect Dialect) error {
	content := desc.Child(docmodel.TagContent)
	if content == nil {
		content = doctree.New(docmodel.TagContent)
		desc.Append(content)
	}
	fixArtifacts(content)

	var docs memberDocs
	var nested []*doctree.Node
	for _, c := range slices.Clone(content.Children) {
		c.Tail = ""
		switch c.Tag {
		case docmodel.TagDesc:
			nested = append(nested, c)
		case docmodel.TagDescription:
			docs.description = append(docs.description, slices.Clone(c.Children)...)
		case docmodel.TagParamList:
			docs.params = append(docs.params, c.ChildrenByTag(docmodel.TagParam)...)
		case docmodel.TagExceptionList:
			docs.exceptions = append(docs.exceptions, c.ChildrenByTag(docmodel.TagException)...)
		case docmodel.TagReturnValue:
			docs.returnValue = append(docs.returnValue, slices.Clone(c.Children)...)
		case docmodel.TagReturnType:
			docs.returnType = append(docs.returnType, slices.Clone(c.Children)...)
		case "field_list", "definition_list":
			for _, f := range fieldsOf(c) {
				if err := docs.addField(f, dialect, content); err != nil {
					return err
				}
			}
		default:
			docs.description = append(docs.description, c)
		}
	}
	docs.reconcile(desc)

	for _, c := range slices.Clone(content.Children) {
		c.Detach()
	}
	content.Text = ""
	if len(docs.description) > 0 {
		content.Append(wrap(docmodel.TagDescription, docs.description))
	}
	if len(docs.params) > 0 {
		content.Append(wrap(docmodel.TagParamList, docs.params))
	}
	if len(docs.exceptions) > 0 {
		content.Append(wrap(docmodel.TagExceptionList, docs.exceptions))
	}
	if len(docs.returnValue) > 0 {
		content.Append(wrap(docmodel.TagReturnValue, docs.returnValue))
	}
	if len(docs.returnType) > 0 {
		content.Append(wrap(docmodel.TagReturnType, docs.returnType))
	}
	content.Append(nested...)

	if len(content.Children) == 0 {
		content.Remove()
	}
	return nil
}

func wrap(tag string, children []*doctree.Node) *doctree.Node {
	n := doctree.New(tag)
	n.Append(detached(children)...)
	return n
}

// signatureParams returns the parameters declared by a member's first signature,
// and whether it has a parameter list at all.
func signatureParams(desc *doctree.Node) ([]*doctree.Node, bool) {
	sig := desc.Child(docmodel.TagSignature)
	if sig == nil {
		return nil, false
	}
	list := sig.Child(docmodel.TagParameterList)
	if list == nil {
		return nil, false
	}
	var out []*doctree.Node
	for _, p := range list.ChildrenByTag(docmodel.TagParameter) {
		if isSeparatorParam(p) {
			continue
		}
		out = append(out, p)
	}
	return out, true
}

// isSeparatorParam reports Python's bare "*" and "/" markers, which declare no name.
func isSeparatorParam(p *doctree.Node) bool {
	name := childText(p, docmodel.TagName)
	return name != "" && strings.Trim(name, "*/") == "" && childText(p, docmodel.TagType) == ""
}

// reconcile orders documented parameters by the signature. Every signature
// parameter gets exactly one param, in declaration order, with type and default
// filled from the signature when the docs lack them. Unnamed documented items take
// the remaining slots in order. With a signature list present, leftovers join the
// description; without one they stay as params.
func (m *memberDocs) reconcile(desc *doctree.Node) {
	sigParams, hasList := signatureParams(desc)
	if !hasList {
		return
	}
	documented := m.params
	m.params = nil
	used := make([]bool, len(documented))
	slots := make([]*doctree.Node, len(sigParams))

	for i, sp := range sigParams {
		name := signatureName(sp)
		for j, dp := range documented {
			if !used[j] && name != "" && bareName(paramName(dp)) == bareName(name) {
				slots[i] = dp
				used[j] = true
				break
			}
		}
	}
	for i := range slots {
		if slots[i] != nil {
			continue
		}
		for j, dp := range documented {
			if !used[j] && paramName(dp) == "" {
				slots[i] = dp
				used[j] = true
				break
			}
		}
	}
	for i, sp := range sigParams {
		p := slots[i]
		if p == nil {
			p = newParam("", "", nil)
		}
		if signatureName(sp) != "" {
			setChildText(p, docmodel.TagParamName, signatureName(sp))
		}
		if strings.TrimSpace(childText(p, docmodel.TagParamType)) == "" {
			setChildText(p, docmodel.TagParamType, signatureType(sp))
		}
		if def := childText(sp, docmodel.TagDefaultValue); def != "" && p.Child(docmodel.TagDefaultValue) == nil {
			p.Append(doctree.NewText(docmodel.TagDefaultValue, def))
		}
		m.params = append(m.params, p)
	}
	for j, dp := range documented {
		if used[j] {
			continue
		}
		if name := paramName(dp); name != "" {
			m.description = append(m.description, strongParagraph(name))
		}
		if d := dp.Child(docmodel.TagParamDesc); d != nil {
			m.description = append(m.description, slices.Clone(d.Children)...)
		}
	}
}

func signatureName(p *doctree.Node) string {
	return strings.TrimSpace(childText(p, docmodel.TagName))
}

// signatureType is the declared type including qualifiers and glyphs, e.g. "const char *".
func signatureType(p *doctree.Node) string {
	var parts []string
	for _, tag := range []string{docmodel.TagAnnotation, docmodel.TagType} {
		if t := strings.TrimSpace(childText(p, tag)); t != "" {
			parts = append(parts, t)
		}
	}
	typ := strings.Join(parts, " ")
	if ref := strings.TrimSpace(childText(p, docmodel.TagRef)); ref != "" {
		typ += " " + ref
	}
	return strings.TrimSpace(typ)
}

func bareName(name string) string {
	return strings.TrimLeft(strings.TrimSpace(name), "*&")
}

// fixArtifacts repairs the nesting extractors get wrong: lists inside paragraphs
// become siblings of the paragraph, and definition lists inside bullet list items
// move out to the member body.
func fixArtifacts(content *doctree.Node) {
	for _, c := range slices.Clone(content.Children) {
		blocks := []*doctree.Node{c}
		if c.Tag == docmodel.TagParagraph {
			blocks = splitParagraph(c)
		}
		// A list moved out of a paragraph may itself carry definition lists.
		for _, b := range blocks {
			if b.Tag == docmodel.TagBulletList || b.Tag == docmodel.TagEnumeratedList {
				hoistDefinitionLists(b)
			}
		}
	}
}

var nestedBlocks = []string{docmodel.TagBulletList, docmodel.TagEnumeratedList, "definition_list", "field_list"}

// splitParagraph moves block children out of a paragraph and returns the nodes
// now standing in its place. Inline content on either side stays in paragraphs
// of its own.
func splitParagraph(p *doctree.Node) []*doctree.Node {
	if !slices.ContainsFunc(p.Children, func(c *doctree.Node) bool { return slices.Contains(nestedBlocks, c.Tag) }) {
		return []*doctree.Node{p}
	}
	var out []*doctree.Node
	cur := doctree.New(docmodel.TagParagraph)
	cur.Text = p.Text
	flush := func() {
		if strings.TrimSpace(cur.TextContent()) != "" {
			cur.Text = strings.TrimLeft(cur.Text, " ")
			out = append(out, cur)
		}
		cur = doctree.New(docmodel.TagParagraph)
	}
	for _, c := range slices.Clone(p.Children) {
		if slices.Contains(nestedBlocks, c.Tag) {
			flush()
			tail := c.Tail
			c.Tail = ""
			c.Detach()
			out = append(out, c)
			cur.Text = tail
			continue
		}
		c.Detach()
		cur.Append(c)
	}
	flush()
	p.ReplaceWith(out...)
	return out
}

// hoistDefinitionLists moves definition lists found directly in list items, or in
// a paragraph of a list item, to follow the list.
func hoistDefinitionLists(list *doctree.Node) {
	var hoisted []*doctree.Node
	for _, li := range list.ChildrenByTag(docmodel.TagListItem) {
		for _, c := range slices.Clone(li.Children) {
			switch c.Tag {
			case "definition_list":
				c.Tail = ""
				c.Detach()
				hoisted = append(hoisted, c)
			case docmodel.TagParagraph:
				for _, dl := range c.ChildrenByTag("definition_list") {
					dl.Remove()
					hoisted = append(hoisted, dl)
				}
			}
		}
		if len(li.Children) == 0 && strings.TrimSpace(li.Text) == "" {
			li.Remove()
		}
	}
	if len(hoisted) == 0 {
		return
	}
	parent := list.Parent()
	at := list.Index() + 1
	if len(list.Children) == 0 {
		list.Remove()
		at--
	}
	parent.Insert(at, hoisted...)
}
