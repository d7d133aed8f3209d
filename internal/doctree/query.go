package doctree

import "slices"

// Walk visits n and its descendants in document order. Returning false from fn skips
// the node's children. The child list is snapshotted, so fn may detach the node
// it is visiting.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range slices.Clone(n.Children) {
		c.Walk(fn)
	}
}

// FindAll returns every descendant (n excluded) matching pred, in document order.
func (n *Node) FindAll(pred func(*Node) bool) []*Node {
	var out []*Node
	for _, c := range n.Children {
		c.Walk(func(x *Node) bool {
			if pred(x) {
				out = append(out, x)
			}
			return true
		})
	}
	return out
}

// FindTag returns every descendant with one of the given tags.
func (n *Node) FindTag(tags ...string) []*Node {
	return n.FindAll(func(x *Node) bool { return slices.Contains(tags, x.Tag) })
}

// Child returns the first direct child with the tag, or nil.
func (n *Node) Child(tag string) *Node {
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// ChildrenByTag returns the direct children with the tag.
func (n *Node) ChildrenByTag(tag string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// Ancestor returns the nearest ancestor with the tag, or nil.
func (n *Node) Ancestor(tag string) *Node {
	for p := n.parent; p != nil; p = p.parent {
		if p.Tag == tag {
			return p
		}
	}
	return nil
}

// PrevSibling returns the preceding sibling, or nil.
func (n *Node) PrevSibling() *Node {
	if i := n.Index(); i > 0 {
		return n.parent.Children[i-1]
	}
	return nil
}

// NextSibling returns the following sibling, or nil.
func (n *Node) NextSibling() *Node {
	if i := n.Index(); i >= 0 && i+1 < len(n.parent.Children) {
		return n.parent.Children[i+1]
	}
	return nil
}

// Is reports whether the node has the tag and, when objtype is given, that objtype.
func (n *Node) Is(tag string, objtype ...string) bool {
	if n == nil || n.Tag != tag {
		return false
	}
	return len(objtype) == 0 || slices.Contains(objtype, n.Attr("objtype"))
}
