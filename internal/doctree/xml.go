package doctree

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// Parse decodes an XML document into a tree. Comments, processing instructions and
// the DOCTYPE are skipped.
func Parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	dec.Entity = xml.HTMLEntity

	var root *Node
	var stack []*Node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Tag: t.Name.Local}
			for _, a := range t.Attr {
				n.SetAttr(attrName(a.Name), a.Value)
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("decode xml: multiple root elements")
				}
				root = n
			} else {
				stack[len(stack)-1].Append(n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("decode xml: unbalanced </%s>", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			stack[len(stack)-1].AppendText(string(t))
		}
	}
	if root == nil {
		return nil, fmt.Errorf("decode xml: empty document")
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("decode xml: unclosed <%s>", stack[len(stack)-1].Tag)
	}
	return root, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

// MustParse parses a literal tree and panics on error. Intended for tests and fixtures.
func MustParse(s string) *Node {
	n, err := ParseString(s)
	if err != nil {
		panic(err)
	}
	return n
}

func attrName(name xml.Name) string {
	switch name.Space {
	case "":
		return name.Local
	case xmlNamespace, "xml":
		return "xml:" + name.Local
	default:
		return name.Space + ":" + name.Local
	}
}

// Encode writes the tree as XML with attributes in sorted order.
func Encode(w io.Writer, n *Node) error {
	bw := bufio.NewWriter(w)
	encode(bw, n)
	return bw.Flush()
}

// XML returns the tree encoded as a string.
func (n *Node) XML() string {
	var b strings.Builder
	_ = Encode(&b, n)
	return b.String()
}

func encode(w *bufio.Writer, n *Node) {
	w.WriteByte('<')
	w.WriteString(n.Tag)
	for _, k := range slices.Sorted(maps.Keys(n.Attrs)) {
		w.WriteByte(' ')
		w.WriteString(k)
		w.WriteString(`="`)
		_ = xml.EscapeText(w, []byte(n.Attrs[k]))
		w.WriteByte('"')
	}
	if n.Text == "" && len(n.Children) == 0 {
		w.WriteString("/>")
	} else {
		w.WriteByte('>')
		_ = xml.EscapeText(w, []byte(n.Text))
		for _, c := range n.Children {
			encode(w, c)
			_ = xml.EscapeText(w, []byte(c.Tail))
		}
		w.WriteString("</")
		w.WriteString(n.Tag)
		w.WriteByte('>')
	}
}
