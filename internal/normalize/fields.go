package normalize

import (
	"slices"
	"strings"

	"git.home.luguber.info/inful/hugoify/internal/docmodel"
	"git.home.luguber.info/inful/hugoify/internal/doctree"
	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
)

// fieldTarget is where a labeled field's body ends up.
type fieldTarget int

const (
	targetParams fieldTarget = iota + 1
	targetExceptions
	targetReturnValue
	targetReturnType
	targetDescription
	// converter fields naming a single parameter or exception
	targetParamDesc
	targetParamType
	targetException
)

var fieldLabels = map[string]fieldTarget{
	"parameters":  targetParams,
	"arguments":   targetParams,
	"exceptions":  targetExceptions,
	"raises":      targetExceptions,
	"throws":      targetExceptions,
	"return":      targetReturnValue,
	"returns":     targetReturnValue,
	"rtype":       targetReturnType,
	"return type": targetReturnType,
	"note":        targetDescription,
	"notes":       targetDescription,
	"see also":    targetDescription,
	"warning":     targetDescription,
	"warnings":    targetDescription,
	"example":     targetDescription,
	"examples":    targetDescription,
}

var argFieldLabels = map[string]fieldTarget{
	"param":  targetParamDesc,
	"type":   targetParamType,
	"raises": targetException,
}

// classifyLabel maps a field label to its target. arg is set for converter fields
// such as "param src".
func classifyLabel(label string, dialect Dialect) (target fieldTarget, arg string, ok bool) {
	label = strings.ToLower(strings.TrimSuffix(collapse(label), ":"))
	if t, found := fieldLabels[label]; found {
		if t == targetReturnType && label == "return type" && dialect != DialectPython {
			return 0, "", false
		}
		return t, "", true
	}
	kind, rest, hasArg := strings.Cut(label, " ")
	if t, found := argFieldLabels[kind]; found && hasArg {
		return t, strings.TrimSpace(rest), true
	}
	return 0, "", false
}

// field is one labeled block of member documentation.
type field struct {
	label string
	body  []*doctree.Node
	node  *doctree.Node
}

// fieldsOf reads the fields carried by a field_list or definition_list.
func fieldsOf(list *doctree.Node) []field {
	var out []field
	switch list.Tag {
	case "field_list":
		for _, f := range list.ChildrenByTag("field") {
			name := f.Child("field_name")
			body := f.Child("field_body")
			fd := field{node: f}
			if name != nil {
				fd.label = name.TextContent()
			}
			if body != nil {
				fd.body = slices.Clone(body.Children)
			}
			out = append(out, fd)
		}
	case "definition_list":
		for _, item := range list.ChildrenByTag("definition_list_item") {
			term := item.Child("term")
			def := item.Child("definition")
			fd := field{node: item}
			if term != nil {
				fd.label = term.TextContent()
			}
			if def != nil {
				fd.body = slices.Clone(def.Children)
			}
			out = append(out, fd)
		}
	}
	return out
}

// memberDocs accumulates the canonical pieces of one member body.
type memberDocs struct {
	description []*doctree.Node
	params      []*doctree.Node
	exceptions  []*doctree.Node
	returnValue []*doctree.Node
	returnType  []*doctree.Node
}

func (m *memberDocs) param(name string) *doctree.Node {
	for _, p := range m.params {
		if paramName(p) == name {
			return p
		}
	}
	p := newParam(name, "", nil)
	m.params = append(m.params, p)
	return p
}

// addField files one field's body under its target.
func (m *memberDocs) addField(f field, dialect Dialect, parent *doctree.Node) error {
	target, arg, ok := classifyLabel(f.label, dialect)
	if !ok {
		return errors.UnknownTagError("field:"+collapse(f.label)).
			At(f.node, parent).
			WithContext("label", collapse(f.label)).
			Build()
	}
	switch target {
	case targetParams:
		for _, item := range itemsOf(f.body) {
			m.params = append(m.params, parseParamItem(item))
		}
	case targetExceptions:
		for _, item := range itemsOf(f.body) {
			m.exceptions = append(m.exceptions, parseExceptionItem(item))
		}
	case targetReturnValue:
		m.returnValue = append(m.returnValue, f.body...)
	case targetReturnType:
		m.returnType = append(m.returnType, f.body...)
	case targetDescription:
		m.description = append(m.description, strongParagraph(f.label))
		m.description = append(m.description, f.body...)
	case targetParamDesc:
		setChildBlocks(m.param(arg), docmodel.TagParamDesc, f.body)
	case targetParamType:
		setChildText(m.param(arg), docmodel.TagParamType, blockText(f.body))
	case targetException:
		m.exceptions = append(m.exceptions, newException(arg, f.body))
	}
	return nil
}

// itemsOf splits a field body into items: one per list item when the body is a
// list, else the whole body as a single item.
func itemsOf(body []*doctree.Node) [][]*doctree.Node {
	var lists []*doctree.Node
	for _, b := range body {
		if b.Tag == docmodel.TagBulletList || b.Tag == docmodel.TagEnumeratedList {
			lists = append(lists, b)
		}
	}
	if len(lists) != 1 || len(body) != 1 {
		if len(body) == 0 {
			return nil
		}
		return [][]*doctree.Node{body}
	}
	var items [][]*doctree.Node
	for _, li := range lists[0].ChildrenByTag(docmodel.TagListItem) {
		items = append(items, slices.Clone(li.Children))
	}
	return items
}

var nameMarkup = []string{docmodel.TagLiteralStrong, docmodel.TagStrong, docmodel.TagLiteral}

// itemSeparator divides a documented name and type from the description.
const itemSeparator = " – "

// splitItem reads "name (type) – description" from an item. The name must be
// marked up at the start of the first paragraph; without it ok is false.
// Fragments between name and separator are concatenated and become the type.
func splitItem(item []*doctree.Node) (name, typ string, desc []*doctree.Node, ok bool) {
	if len(item) == 0 || item[0].Tag != docmodel.TagParagraph {
		return "", "", item, false
	}
	p := item[0]
	if strings.TrimSpace(p.Text) != "" || len(p.Children) == 0 || !slices.Contains(nameMarkup, p.Children[0].Tag) {
		return "", "", item, false
	}
	name = collapse(p.Children[0].TextContent())

	// Fragments after the name, each a node (whose text counts as type) and its tail.
	var typeText strings.Builder
	rest := doctree.New(docmodel.TagParagraph)
	found := false
	frags := p.Children[1:]
	tail := p.Children[0].Tail
	for i := -1; i < len(frags); i++ {
		if i >= 0 {
			if found {
				rest.Append(frags[i].Clone())
				continue
			}
			typeText.WriteString(frags[i].TextContent())
			tail = frags[i].Tail
		}
		if found {
			continue
		}
		if before, after, cut := strings.Cut(tail, itemSeparator); cut {
			typeText.WriteString(before)
			rest.Text = strings.TrimLeft(after, " ")
			found = true
			continue
		}
		typeText.WriteString(tail)
	}
	// Clones carry their tails; keep them as the paragraph's inline text.
	desc = append(desc, item[1:]...)
	if found {
		if rest.Text != "" || len(rest.Children) > 0 {
			desc = append([]*doctree.Node{rest}, desc...)
		}
		return name, stripParens(typeText.String()), desc, true
	}
	remainder := collapse(typeText.String())
	if strings.HasPrefix(remainder, "(") && strings.HasSuffix(remainder, ")") {
		return name, stripParens(remainder), desc, true
	}
	if remainder != "" {
		desc = append([]*doctree.Node{doctree.NewText(docmodel.TagParagraph, strings.TrimLeft(remainder, "–- "))}, desc...)
	}
	return name, "", desc, true
}

func stripParens(s string) string {
	s = collapse(s)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

func parseParamItem(item []*doctree.Node) *doctree.Node {
	name, typ, desc, ok := splitItem(item)
	if !ok {
		return newParam("", "", item)
	}
	return newParam(name, typ, desc)
}

func parseExceptionItem(item []*doctree.Node) *doctree.Node {
	name, typ, desc, ok := splitItem(item)
	if !ok {
		return newException("", item)
	}
	if name == "" {
		name = typ
	}
	return newException(name, desc)
}

func newParam(name, typ string, desc []*doctree.Node) *doctree.Node {
	p := doctree.New(docmodel.TagParam)
	p.Append(
		doctree.NewText(docmodel.TagParamName, name),
		doctree.NewText(docmodel.TagParamType, typ),
	)
	d := doctree.New(docmodel.TagParamDesc)
	d.Append(detached(desc)...)
	p.Append(d)
	return p
}

func newException(name string, desc []*doctree.Node) *doctree.Node {
	e := doctree.New(docmodel.TagException)
	e.Append(doctree.NewText(docmodel.TagExceptionName, name))
	d := doctree.New(docmodel.TagExceptionDesc)
	d.Append(detached(desc)...)
	e.Append(d)
	return e
}

// detached clears the tails of nodes about to become block children.
func detached(nodes []*doctree.Node) []*doctree.Node {
	for _, n := range nodes {
		n.Tail = ""
	}
	return nodes
}

func paramName(p *doctree.Node) string {
	if n := p.Child(docmodel.TagParamName); n != nil {
		return n.TextContent()
	}
	return ""
}

func childText(n *doctree.Node, tag string) string {
	if c := n.Child(tag); c != nil {
		return c.TextContent()
	}
	return ""
}

func setChildText(n *doctree.Node, tag, text string) {
	c := n.Child(tag)
	if c == nil {
		c = doctree.New(tag)
		n.Append(c)
	}
	c.Children = nil
	c.Text = text
}

func setChildBlocks(n *doctree.Node, tag string, blocks []*doctree.Node) {
	c := n.Child(tag)
	if c == nil {
		c = doctree.New(tag)
		n.Append(c)
	}
	for _, old := range slices.Clone(c.Children) {
		old.Detach()
	}
	c.Text = ""
	c.Append(detached(blocks)...)
}

func blockText(blocks []*doctree.Node) string {
	var parts []string
	for _, b := range blocks {
		parts = append(parts, b.TextContent())
	}
	return collapse(strings.Join(parts, " "))
}
