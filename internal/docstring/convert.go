package docstring

import (
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/hugoify/internal/doctree"
)

// Convert turns a docstring into description blocks followed by a field_list,
// using the docutils vocabulary: paragraph, bullet_list, enumerated_list,
// list_item, field_list, field, field_name, field_body, literal, emphasis, strong
// and title_reference. It has no side effects.
func Convert(raw string) ([]*doctree.Node, error) {
	doc, err := Split(raw)
	if err != nil {
		return nil, err
	}
	blocks := Blocks(doc.Description)
	if len(doc.Fields) == 0 {
		return blocks, nil
	}
	list := doctree.New("field_list")
	for _, f := range doc.Fields {
		field := doctree.New("field")
		field.Append(doctree.NewText("field_name", f.Name()))
		body := doctree.New("field_body")
		body.Append(Blocks(f.Body)...)
		field.Append(body)
		list.Append(field)
	}
	return append(blocks, list), nil
}

// Blocks parses prose into block nodes.
func Blocks(prose string) []*doctree.Node {
	if strings.TrimSpace(prose) == "" {
		return nil
	}
	src := []byte(prose)
	root := goldmark.New().Parser().Parse(text.NewReader(src))
	c := converter{src: src}
	return c.blocks(root)
}

type converter struct {
	src []byte
}

func (c converter) blocks(parent gmast.Node) []*doctree.Node {
	var out []*doctree.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		out = append(out, c.block(n)...)
	}
	return out
}

func (c converter) block(n gmast.Node) []*doctree.Node {
	switch node := n.(type) {
	case *gmast.Paragraph, *gmast.TextBlock:
		p := doctree.New("paragraph")
		c.inlines(p, node)
		return []*doctree.Node{p}
	case *gmast.Heading:
		p := doctree.New("paragraph")
		strong := doctree.New("strong")
		c.inlines(strong, node)
		p.Append(strong)
		return []*doctree.Node{p}
	case *gmast.List:
		tag := "bullet_list"
		if node.IsOrdered() {
			tag = "enumerated_list"
		}
		list := doctree.New(tag)
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			li := doctree.New("list_item")
			li.Append(c.blocks(item)...)
			list.Append(li)
		}
		return []*doctree.Node{list}
	case *gmast.FencedCodeBlock, *gmast.CodeBlock:
		return []*doctree.Node{doctree.NewText("literal_block", c.lines(node))}
	case *gmast.HTMLBlock:
		return []*doctree.Node{doctree.NewText("paragraph", strings.TrimSpace(c.lines(node)))}
	case *gmast.Blockquote:
		return c.blocks(node)
	case *gmast.ThematicBreak:
		return nil
	default:
		return c.blocks(node)
	}
}

func (c converter) lines(n gmast.Node) string {
	var b strings.Builder
	segs := n.Lines()
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		b.Write(seg.Value(c.src))
	}
	return strings.TrimRight(b.String(), "\n")
}

// inlines appends the inline content of n to dst as mixed text and child nodes.
func (c converter) inlines(dst *doctree.Node, n gmast.Node) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch node := child.(type) {
		case *gmast.Text:
			dst.AppendText(string(node.Segment.Value(c.src)))
			if node.SoftLineBreak() || node.HardLineBreak() {
				dst.AppendText(" ")
			}
		case *gmast.String:
			dst.AppendText(string(node.Value))
		case *gmast.Emphasis:
			tag := "emphasis"
			if node.Level >= 2 {
				tag = "strong"
			}
			el := doctree.New(tag)
			c.inlines(el, node)
			dst.Append(el)
		case *gmast.CodeSpan:
			el := doctree.New(c.codeSpanTag(node))
			c.inlines(el, node)
			dst.Append(el)
		case *gmast.AutoLink:
			dst.AppendText(string(node.URL(c.src)))
		case *gmast.RawHTML:
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				dst.AppendText(string(seg.Value(c.src)))
			}
		default:
			// Links, images and unknown inlines keep only their text.
			c.inlines(dst, node)
		}
	}
}

// codeSpanTag distinguishes ``literal`` from `title reference` by the number of
// backticks that open the span.
func (c converter) codeSpanTag(n *gmast.CodeSpan) string {
	first, ok := n.FirstChild().(*gmast.Text)
	if !ok {
		return "literal"
	}
	start := first.Segment.Start
	for start > 0 && c.src[start-1] == ' ' {
		start--
	}
	ticks := 0
	for i := start - 1; i >= 0 && c.src[i] == '`'; i-- {
		ticks++
	}
	if ticks == 1 {
		return "title_reference"
	}
	return "literal"
}
