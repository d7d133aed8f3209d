// Package doctree holds the tree primitive shared by raw extractor output and the
// canonical document model.
//
// A Node carries a tag, attributes, ordered children, leading text and a tail: the
// text that follows the node and precedes its next sibling. Mixed content
// such as "see <literal>x</literal> below" is therefore a paragraph with Text "see ",
// one literal child with Text "x", and that child's Tail " below".
package doctree

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Node is a single element of a documentation tree.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Children []*Node
	Text     string
	Tail     string

	parent *Node
}

// New creates a detached node with the given tag and optional key/value attribute pairs.
func New(tag string, kv ...string) *Node {
	n := &Node{Tag: tag}
	for i := 0; i+1 < len(kv); i += 2 {
		n.SetAttr(kv[i], kv[i+1])
	}
	return n
}

// NewText creates a detached node whose only content is text.
func NewText(tag, text string, kv ...string) *Node {
	n := New(tag, kv...)
	n.Text = text
	return n
}

// Parent returns the node's parent, or nil for a root or detached node.
func (n *Node) Parent() *Node { return n.parent }

// Attr returns the attribute value, or "" when unset.
func (n *Node) Attr(key string) string {
	if n.Attrs == nil {
		return ""
	}
	return n.Attrs[key]
}

// HasAttr reports whether the attribute is set, even to an empty value.
func (n *Node) HasAttr(key string) bool {
	_, ok := n.Attrs[key]
	return ok
}

// SetAttr sets an attribute value.
func (n *Node) SetAttr(key, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[key] = value
}

// DelAttr removes an attribute.
func (n *Node) DelAttr(key string) {
	delete(n.Attrs, key)
}

// Append adds children at the end, detaching them from any previous parent.
func (n *Node) Append(children ...*Node) {
	for _, c := range children {
		c.Detach()
		c.parent = n
		n.Children = append(n.Children, c)
	}
}

// Insert adds children starting at index i.
func (n *Node) Insert(i int, children ...*Node) {
	for _, c := range children {
		if c.parent == n && c.Index() < i {
			i--
		}
		c.Detach()
		c.parent = n
	}
	if i > len(n.Children) {
		i = len(n.Children)
	}
	n.Children = slices.Insert(n.Children, i, children...)
}

// Index returns the position of n among its siblings, or -1 when detached.
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}
	return slices.Index(n.parent.Children, n)
}

// Detach removes n from its parent. The tail stays with n.
func (n *Node) Detach() *Node {
	if n.parent == nil {
		return n
	}
	if i := n.Index(); i >= 0 {
		n.parent.Children = slices.Delete(n.parent.Children, i, i+1)
	}
	n.parent = nil
	return n
}

// Remove detaches n and re-homes its tail onto the preceding sibling or the parent
// text, so surrounding prose is kept.
func (n *Node) Remove() {
	if n.parent == nil {
		return
	}
	p := n.parent
	i := n.Index()
	if n.Tail != "" {
		if i > 0 {
			p.Children[i-1].Tail += n.Tail
		} else {
			p.Text += n.Tail
		}
	}
	n.Tail = ""
	n.Detach()
}

// ReplaceWith puts nodes at n's position and detaches n. The tail of n is carried
// over to the last replacement node, or kept in the surrounding text when there is none.
func (n *Node) ReplaceWith(nodes ...*Node) {
	p := n.parent
	if p == nil {
		return
	}
	if len(nodes) == 0 {
		n.Remove()
		return
	}
	i := n.Index()
	tail := n.Tail
	n.Tail = ""
	n.Detach()
	p.Insert(i, nodes...)
	nodes[len(nodes)-1].Tail += tail
}

// Unwrap replaces n with its children, keeping n's text and tail in place.
func (n *Node) Unwrap() {
	p := n.parent
	if p == nil {
		return
	}
	i := n.Index()
	if n.Text != "" {
		if i > 0 {
			p.Children[i-1].Tail += n.Text
		} else {
			p.Text += n.Text
		}
	}
	children := slices.Clone(n.Children)
	tail := n.Tail
	n.Tail = ""
	n.Text = ""
	n.Detach()
	p.Insert(i, children...)
	switch {
	case tail == "":
	case len(children) > 0:
		children[len(children)-1].Tail += tail
	case i > 0:
		p.Children[i-1].Tail += tail
	default:
		p.Text += tail
	}
}

// AppendText adds text after the last child, or to the node text when it has none.
func (n *Node) AppendText(s string) {
	if len(n.Children) == 0 {
		n.Text += s
		return
	}
	n.Children[len(n.Children)-1].Tail += s
}

// Clone returns a deep copy of n without a parent.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Tag: n.Tag, Text: n.Text, Tail: n.Tail}
	if n.Attrs != nil {
		c.Attrs = maps.Clone(n.Attrs)
	}
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			cc := child.Clone()
			cc.parent = c
			c.Children[i] = cc
		}
	}
	return c
}

// TextContent returns the concatenated text of n and its descendants, excluding n's tail.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	b.WriteString(n.Text)
	for _, c := range n.Children {
		c.writeText(b)
		b.WriteString(c.Tail)
	}
}

// String returns a short description used in diagnostics, e.g. <desc objtype="class">.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(n.Tag)
	for _, k := range slices.Sorted(maps.Keys(n.Attrs)) {
		fmt.Fprintf(&b, " %s=%q", k, n.Attrs[k])
	}
	b.WriteByte('>')
	return b.String()
}

// Equal reports whether two trees have the same tags, attributes, text and shape.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Tag != b.Tag || a.Text != b.Text || a.Tail != b.Tail || len(a.Children) != len(b.Children) {
		return false
	}
	if len(a.Attrs) != len(b.Attrs) || !maps.Equal(a.Attrs, b.Attrs) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}
