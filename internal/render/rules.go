package render

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/hugoify/internal/docmodel"
	"git.home.luguber.info/inful/hugoify/internal/doctree"
)

// headingTag is the placeholder element for headings. Serialize replaces it
// with a Hugo heading once anchors are assigned.
const headingTag = "heading"

// Attributes carried by heading placeholders.
const (
	attrLevel  = "level"
	attrAnchor = "anchor"
)

// Output class labels.
const (
	labelSignature      = "signature"
	labelAnnotation     = "annotation"
	labelAddName        = "addname"
	labelName           = "name"
	labelDefault        = "default-val"
	labelReturns        = "returns"
	labelRef            = "pointer-ref"
	labelParamList      = "param-list"
	labelParam          = "param"
	labelType           = "type"
	labelBody           = "body"
	labelDescription    = "description"
	labelParameters     = "parameters"
	labelParamItem      = "param-item"
	labelExceptions     = "exceptions"
	labelExceptionItem  = "exc-item"
	labelReturnValue    = "return-value"
	labelReturnType     = "return-type"
	labelMethod         = "method"
	labelAttribute      = "attribute"
	labelClass          = "class"
	labelTitleReference = "title-reference"
	labelContext        = "function-context"
)

func defaultRules() map[string]Rule {
	rules := map[string]Rule{
		docmodel.TagSection:         renderSection,
		docmodel.TagFunctionContext: renderFunctionContext,
		docmodel.TagSignature:       renderSignature,
		docmodel.TagContent:         renderContent,

		docmodel.TagAnnotation:    span(labelAnnotation),
		docmodel.TagReturns:       span(labelReturns),
		docmodel.TagAddName:       span(labelAddName),
		docmodel.TagName:          span(labelName),
		docmodel.TagType:          span(labelType),
		docmodel.TagRef:           span(labelRef),
		docmodel.TagDefaultValue:  span(labelDefault),
		docmodel.TagParameterList: renderParameterList,
		docmodel.TagParameter:     renderParameter,

		docmodel.TagDescription:   container("div", labelDescription),
		docmodel.TagParamList:     renderItemList("Parameters", labelParameters),
		docmodel.TagExceptionList: renderItemList("Exceptions", labelExceptions),
		docmodel.TagParam:         renderParam,
		docmodel.TagException:     renderException,
		docmodel.TagParamName:     span(labelName),
		docmodel.TagParamType:     span(labelType),
		docmodel.TagParamDesc:     container("div", labelDescription),
		docmodel.TagExceptionName: span(labelName),
		docmodel.TagExceptionDesc: container("div", labelDescription),
		docmodel.TagReturnValue:   renderReturnValue,
		docmodel.TagReturnType:    renderReturnType,

		docmodel.TagParagraph:       inline("p", "paragraph"),
		docmodel.TagBulletList:      list("ul", "bullet-list"),
		docmodel.TagEnumeratedList:  list("ol", "enumerated-list"),
		docmodel.TagListItem:        renderListItem,
		docmodel.TagEmphasis:        inline("em", "emphasis"),
		docmodel.TagStrong:          inline("strong", "strong"),
		docmodel.TagLiteral:         inline("code", "literal"),
		docmodel.TagLiteralStrong:   inline("code", "literal-strong"),
		docmodel.TagLiteralEmphasis: inline("code", "literal-emphasis"),
		docmodel.TagTitleReference:  inline("span", labelTitleReference),
		docmodel.TagReference:       renderReference,
		docmodel.TagLiteralBlock:    renderLiteralBlock,
	}

	members := map[string]string{
		docmodel.ObjFunction:       labelMethod,
		docmodel.ObjMethod:         labelMethod,
		docmodel.ObjAttribute:      labelAttribute,
		docmodel.ObjMember:         labelAttribute,
		docmodel.ObjVariable:       labelAttribute,
		docmodel.ObjClass:          labelClass,
		docmodel.ObjExceptionClass: labelClass,
		docmodel.ObjStruct:         labelClass,
		docmodel.ObjEnum:           "enum",
		docmodel.ObjEnumerator:     "enumerator",
		docmodel.ObjTypedef:        "typedef",
		docmodel.ObjMacro:          "macro",
	}
	for objtype, label := range members {
		rules[docmodel.TagDesc+":"+objtype] = member(label, objtype)
	}
	return rules
}

// heading builds a heading placeholder one level below ctx. Anchored headings
// get an id from Serialize.
func heading(ctx Context, label string, anchored bool, kids []*html.Node) []*html.Node {
	attrs := []html.Attribute{{Key: attrLevel, Val: strconv.Itoa(ctx.HeadingLevel + 1)}}
	if anchored {
		attrs = append(attrs, html.Attribute{Key: attrAnchor, Val: "true"})
	}
	h := element(headingTag, ctx.Classes(label), attrs...)
	return block(ctx, h, kids)
}

func span(label string) Rule {
	return inline("span", label)
}

func inline(tag, label string) Rule {
	return func(r *Renderer, ctx Context, n *doctree.Node) []*html.Node {
		el := appendAll(element(tag, ctx.Classes(label)), r.Inline(ctx.WithLabel(label), n))
		if blockTags[tag] {
			return []*html.Node{hang(ctx), el}
		}
		return []*html.Node{el}
	}
}

func container(tag, label string) Rule {
	return func(r *Renderer, ctx Context, n *doctree.Node) []*html.Node {
		kids := r.Children(ctx.WithLabel(label), n)
		if len(kids) == 0 {
			return nil
		}
		return block(ctx, element(tag, ctx.Classes(label)), kids)
	}
}

func list(tag, label string) Rule {
	return func(r *Renderer, ctx Context, n *doctree.Node) []*html.Node {
		return block(ctx, element(tag, ctx.Classes(label)), r.Children(ctx.WithLabel(label).Indented(), n))
	}
}

func renderSection(r *Renderer, ctx Context, n *doctree.Node) []*html.Node {
	id := docmodel.SectionOf(n)
	label := string(id)
	child := ctx.WithLabel(label)
	kids := heading(child, "section-title", true, []*html.Node{text(id.Title())})
	kids = append(kids, r.Children(child.Nested(), n)...)
	return block(ctx, element("div", ctx.Classes(label)), kids)
}

// renderFunctionContext groups functions under their rubric. The default
// context has no heading and no wrapper.
func renderFunctionContext(r *Renderer, ctx Context, n *doctree.Node) []*html.Node {
	name := strings.TrimSpace(n.Attr("name"))
	if name == "" {
		return r.Children(ctx, n)
	}
	child := ctx.WithLabel(labelContext)
	kids := heading(child, "context-title", true, []*html.Node{text(name)})
	kids = append(kids, r.Children(child.Nested(), n)...)
	return block(ctx, element("div", ctx.Classes(labelContext)), kids)
}

func member(label, objtype string) Rule {
	return func(r *Renderer, ctx Context, n *doctree.Node) []*html.Node {
		el := element("div", ctx.Classes(label))
		if objtype != label {
			el.Attr = append(el.Attr, html.Attribute{Key: "data-objtype", Val: objtype})
		}
		return block(ctx, el, r.Children(ctx.WithLabel(label), n))
	}
}

// renderSignature emits the member heading. Pieces are separated by a space,
// except that an addname is glued to the name, the parameter list is glued to
// what precedes it, and a return annotation after the name gets an arrow.
func renderSignature(r *Renderer, ctx Context, n *doctree.Node) []*html.Node {
	child := ctx.WithLabel(labelSignature)
	var kids []*html.Node
	var prev string
	seenName := false
	for _, c := range n.Children {
		rendered := r.Node(child, c)
		if len(rendered) == 0 {
			continue
		}
		if prev != "" {
			switch {
			case prev == docmodel.TagAddName, c.Tag == docmodel.TagParameterList:
			case c.Tag == docmodel.TagReturns && seenName:
				kids = append(kids, text(" → "))
			default:
				kids = append(kids, text(" "))
			}
		}
		kids = append(kids, rendered...)
		prev = c.Tag
		if c.Tag == docmodel.TagName {
			seenName = true
		}
	}
	return heading(ctx, labelSignature, true, kids)
}

// renderContent emits the member body one heading level down. An empty body
// emits nothing, so the member is heading-only.
func renderContent(r *Renderer, ctx Context, n *doctree.Node) []*html.Node {
	kids := r.Children(ctx.WithLabel(labelBody).Nested(), n)
	if len(kids) == 0 {
		return nil
	}
	return block(ctx, element("div", ctx.Classes(labelBody)), kids)
}

func renderParameterList(r *Renderer, ctx Context, n *doctree.Node) []*html.Node {
	el := element("span", ctx.Classes(labelParamList))
	child := ctx.WithLabel(labelParamList)
	var params [][]*html.Node
	for _, c := range n.Children {
		if rendered := r.Node(child, c); len(rendered) > 0 {
			params = append(params, rendered)
		}
	}
	if len(params) == 0 {
		el.AppendChild(text("()"))
		return []*html.Node{el}
	}
	el.AppendChild(text("( "))
	for i, p := range params {
		if i > 0 {
			el.AppendChild(text(", "))
		}
		appendAll(el, p)
	}
	el.AppendChild(text(" )"))
	return []*html.Node{el}
}

// renderParameter joins the parameter parts: a reference glyph is glued to the
// name and a default follows an equals sign.
func renderParameter(r *Renderer, ctx Context, n *doctree.Node) []*html.Node {
	el := element("span", ctx.Classes(labelParam))
	child := ctx.WithLabel(labelParam)
	var prev string
	for _, c := range n.Children {
		rendered := r.Node(child, c)
		if len(rendered) == 0 {
			continue
		}
		switch {
		case c.Tag == docmodel.TagDefaultValue:
			el.AppendChild(text("="))
		case prev == "", prev == docmodel.TagRef:
		default:
			el.AppendChild(text(" "))
		}
		appendAll(el, rendered)
		prev = c.Tag
	}
	return []*html.Node{el}
}

func renderItemList(title, label string) Rule {
	return func(r *Renderer, ctx Context, n *doctree.Node) []*html.Node {
		if len(n.Children) == 0 {
			return nil
		}
		child := ctx.WithLabel(label)
		kids := heading(child, label+"-title", false, []*html.Node{text(title)})
		ul := element("ul", child.Classes("items"))
		kids = append(kids, block(child, ul, r.Children(child.WithLabel("items").Indented(), n))...)
		return block(ctx, element("div", ctx.Classes(label)), kids)
	}
}

// renderParam renders "name (type)=default" followed by the description.
func renderParam(r *Renderer, ctx Context, n *doctree.Node) []*html.Node {
	child := ctx.WithLabel(labelParamItem)
	var kids []*html.Node
	kids = append(kids, r.Node(child, n.Child(docmodel.TagParamName))...)
	if t := n.Child(docmodel.TagParamType); t != nil && strings.TrimSpace(t.TextContent()) != "" {
		kids = append(kids, text(" ("))
		kids = append(kids, r.Node(child, t)...)
		kids = append(kids, text(")"))
	}
	if d := n.Child(docmodel.TagDefaultValue); d != nil {
		kids = append(kids, text("="))
		kids = append(kids, r.Node(child, d)...)
	}
	kids = append(kids, descriptionPart(r, child, n.Child(docmodel.TagParamDesc))...)
	for _, c := range n.Children {
		switch c.Tag {
		case docmodel.TagParamName, docmodel.TagParamType, docmodel.TagDefaultValue, docmodel.TagParamDesc:
		default:
			kids = append(kids, r.Node(child, c)...)
		}
	}
	return block(ctx, element("li", ctx.Classes(labelParamItem)), kids)
}

func renderException(r *Renderer, ctx Context, n *doctree.Node) []*html.Node {
	child := ctx.WithLabel(labelExceptionItem)
	var kids []*html.Node
	kids = append(kids, r.Node(child, n.Child(docmodel.TagExceptionName))...)
	kids = append(kids, descriptionPart(r, child, n.Child(docmodel.TagExceptionDesc))...)
	for _, c := range n.Children {
		if c.Tag != docmodel.TagExceptionName && c.Tag != docmodel.TagExceptionDesc {
			kids = append(kids, r.Node(child, c)...)
		}
	}
	return block(ctx, element("li", ctx.Classes(labelExceptionItem)), kids)
}

func descriptionPart(r *Renderer, ctx Context, d *doctree.Node) []*html.Node {
	if d == nil {
		return nil
	}
	rendered := r.Node(ctx, d)
	if len(rendered) == 0 {
		return nil
	}
	return append([]*html.Node{text(" – ")}, rendered...)
}

// renderReturnValue pulls a sibling return_type into the returns block.
func renderReturnValue(r *Renderer, ctx Context, n *doctree.Node) []*html.Node {
	var rtype *doctree.Node
	if p := n.Parent(); p != nil {
		if rtype = p.Child(docmodel.TagReturnType); rtype != nil {
			rtype.Detach()
		}
	}
	child := ctx.WithLabel(labelReturnValue)
	kids := heading(child, labelReturnValue+"-title", false, []*html.Node{text("Returns")})
	kids = append(kids, r.Children(child.Nested(), n)...)
	if rtype != nil {
		kids = append(kids, r.Node(child.Nested(), rtype)...)
	}
	return block(ctx, element("div", ctx.Classes(labelReturnValue)), kids)
}

func renderReturnType(r *Renderer, ctx Context, n *doctree.Node) []*html.Node {
	child := ctx.WithLabel(labelReturnType)
	kids := heading(child, labelReturnType+"-title", false, []*html.Node{text("Return type")})
	kids = append(kids, r.Children(child.Nested(), n)...)
	return block(ctx, element("div", ctx.Classes(labelReturnType)), kids)
}

// renderListItem unwraps a lone paragraph so simple items stay on one line.
func renderListItem(r *Renderer, ctx Context, n *doctree.Node) []*html.Node {
	const label = "list-item"
	child := ctx.WithLabel(label)
	var kids []*html.Node
	if len(n.Children) == 1 && n.Children[0].Tag == docmodel.TagParagraph && strings.TrimSpace(n.Text) == "" {
		kids = r.Inline(child, n.Children[0])
	} else {
		kids = r.Inline(child, n)
	}
	return block(ctx, element("li", ctx.Classes(label)), kids)
}

func renderReference(r *Renderer, ctx Context, n *doctree.Node) []*html.Node {
	const label = "reference"
	var attrs []html.Attribute
	if uri := n.Attr("refuri"); uri != "" {
		attrs = append(attrs, html.Attribute{Key: "href", Val: uri})
	}
	el := element("a", ctx.Classes(label), attrs...)
	return []*html.Node{appendAll(el, r.Inline(ctx.WithLabel(label), n))}
}

func renderLiteralBlock(_ *Renderer, ctx Context, n *doctree.Node) []*html.Node {
	const label = "literal-block"
	code := element("code", "")
	code.AppendChild(text(n.TextContent()))
	pre := element("pre", ctx.Classes(label))
	pre.AppendChild(code)
	return []*html.Node{hang(ctx), pre}
}
