// Package render lowers a canonical document tree into HTML-flavoured markup for
// Hugo pages.
//
// The Renderer walks the tree depth first and looks up a Rule for every node in a
// dispatch table keyed by "tag:objtype" (falling back to "tag"). Rules return
// x/net/html nodes which are spliced into the parent's output at the position of
// the source node. A node without a rule is reported once as a warning and its
// subtree is dropped; rendering of its siblings continues.
//
// Serialize turns the output into page text: it assigns heading anchors,
// applies text fixes and replaces heading placeholders with Hugo headings.
package render

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/hugoify/internal/docmodel"
	"git.home.luguber.info/inful/hugoify/internal/doctree"
	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
	"git.home.luguber.info/inful/hugoify/internal/logfields"
)

// DefaultMaxDepth bounds recursion on pathological input.
const DefaultMaxDepth = 256

// Rule lowers one canonical node into zero, one or many output nodes.
type Rule func(r *Renderer, ctx Context, n *doctree.Node) []*html.Node

// Options configures a Renderer.
type Options struct {
	// WarnOnce reports a missing rule only the first time its key is seen
	// within a document. Every occurrence still drops its subtree.
	WarnOnce bool
	// MaxDepth is the deepest nesting rendered before the document is rejected.
	MaxDepth int
	Logger   *slog.Logger
}

// Diagnostics collects the recoverable problems of one render.
type Diagnostics struct {
	Warnings []*errors.ClassifiedError
	seen     map[string]int
}

// Count is the number of reported warnings.
func (d *Diagnostics) Count() int { return len(d.Warnings) }

// Occurrences is how many times key was missing, reported or not.
func (d *Diagnostics) Occurrences(key string) int { return d.seen[key] }

// Output is a rendered document.
type Output struct {
	Nodes       []*html.Node
	Diagnostics *Diagnostics
}

// Renderer holds the dispatch table. A Renderer renders one document at a time
// and is not safe for concurrent use.
type Renderer struct {
	opts  Options
	rules map[string]Rule

	depth int
	diag  *Diagnostics
	err   error
}

// New builds a Renderer with the canonical rule set.
func New(opts Options) *Renderer {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Renderer{opts: opts, rules: defaultRules()}
}

// Has reports whether a rule is registered for key.
func (r *Renderer) Has(key string) bool {
	_, ok := r.rules[key]
	return ok
}

// Render lowers a canonical document. The document is copied first, so rules
// may rearrange their input without touching the caller's tree.
func (r *Renderer) Render(doc *doctree.Node) (*Output, error) {
	if doc == nil || doc.Tag != docmodel.TagDocument {
		return nil, errors.StructuralError("render input is not a document").At(doc, nil).Build()
	}
	doc = doc.Clone()
	r.depth = 0
	r.err = nil
	r.diag = &Diagnostics{seen: make(map[string]int)}

	ctx := RootContext()
	var nodes []*html.Node
	for _, sec := range doc.Children {
		nodes = append(nodes, r.Node(ctx, sec)...)
	}
	if r.err != nil {
		return nil, r.err
	}
	if r.depth != 0 {
		return nil, errors.InternalError(fmt.Sprintf("render scope depth %d after document", r.depth)).Build()
	}
	return &Output{Nodes: nodes, Diagnostics: r.diag}, nil
}

// Node renders a single node through the dispatch table.
func (r *Renderer) Node(ctx Context, n *doctree.Node) []*html.Node {
	if n == nil {
		return nil
	}
	defer r.enter(n)()
	if r.err != nil {
		return nil
	}
	rule, key := r.lookup(n)
	if rule == nil {
		r.warn(ctx, n, key)
		return nil
	}
	return rule(r, ctx, n)
}

// Children renders the children of n in order, without n's own text. A child
// moved away by an earlier sibling's rule is skipped.
func (r *Renderer) Children(ctx Context, n *doctree.Node) []*html.Node {
	var out []*html.Node
	for _, c := range slices.Clone(n.Children) {
		if c.Parent() != n {
			continue
		}
		out = append(out, r.Node(ctx, c)...)
	}
	return out
}

// Inline renders mixed content: n's text, then each child followed by its tail.
func (r *Renderer) Inline(ctx Context, n *doctree.Node) []*html.Node {
	var out []*html.Node
	if n.Text != "" {
		out = append(out, text(n.Text))
	}
	for _, c := range n.Children {
		out = append(out, r.Node(ctx, c)...)
		if c.Tail != "" {
			out = append(out, text(c.Tail))
		}
	}
	return out
}

func (r *Renderer) lookup(n *doctree.Node) (Rule, string) {
	key := n.Tag
	if objtype := n.Attr("objtype"); objtype != "" {
		key = n.Tag + ":" + objtype
		if rule, ok := r.rules[key]; ok {
			return rule, key
		}
	}
	return r.rules[n.Tag], key
}

func (r *Renderer) enter(n *doctree.Node) func() {
	r.depth++
	if r.depth > r.opts.MaxDepth && r.err == nil {
		r.err = at(errors.StructuralError(fmt.Sprintf("nesting exceeds %d levels", r.opts.MaxDepth)), n).Build()
	}
	return func() { r.depth-- }
}

func (r *Renderer) warn(ctx Context, n *doctree.Node, key string) {
	r.diag.seen[key]++
	if r.opts.WarnOnce && r.diag.seen[key] > 1 {
		return
	}
	w := at(errors.UnknownTagError(key).Warning(), n).
		WithContext("path", ctx.Path()).
		Build()
	r.diag.Warnings = append(r.diag.Warnings, w)
	r.opts.Logger.Warn("No render rule, dropping element",
		logfields.Tag(key),
		slog.String("path", ctx.Path()))
}

func at(b *errors.ErrorBuilder, n *doctree.Node) *errors.ErrorBuilder {
	if n == nil {
		return b
	}
	if p := n.Parent(); p != nil {
		return b.At(n, p)
	}
	return b.At(n, nil)
}

// element creates an output element with its class attribute.
func element(tag, class string, attrs ...html.Attribute) *html.Node {
	el := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	if class != "" {
		el.Attr = append(el.Attr, html.Attribute{Key: "class", Val: class})
	}
	el.Attr = append(el.Attr, attrs...)
	return el
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func appendAll(parent *html.Node, nodes []*html.Node) *html.Node {
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	return parent
}

var blockTags = map[string]bool{
	"div": true, "p": true, "ul": true, "ol": true, "li": true, "pre": true, headingTag: true,
}

func isBlock(n *html.Node) bool {
	return n.Type == html.ElementNode && blockTags[n.Data]
}

// hang returns the line break and indentation placed before a block element.
func hang(ctx Context) *html.Node {
	return text("\n" + strings.Repeat("  ", ctx.IndentLevel))
}

// block fills a block element and returns it preceded by its hanging indent.
// A closing line break is added when the element holds other blocks.
func block(ctx Context, el *html.Node, kids []*html.Node) []*html.Node {
	appendAll(el, kids)
	for _, k := range kids {
		if isBlock(k) {
			el.AppendChild(hang(ctx))
			break
		}
	}
	return []*html.Node{hang(ctx), el}
}
