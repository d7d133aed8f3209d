package render

import (
	"slices"
	"strings"
)

// Context is the per-scope render state. It is a value: a rule derives the
// context for its children with the With* methods and never changes its own.
type Context struct {
	// HeadingLevel is the level of the enclosing heading; a heading opened in
	// this scope uses HeadingLevel+1.
	HeadingLevel int
	// IndentLevel counts enclosing list scopes and drives the hanging indent
	// of block elements in the serialized output.
	IndentLevel int
	// ClassPath is the stack of semantic labels of the enclosing elements.
	ClassPath []string
}

// RootContext is the context a document is rendered in. Section headings come
// out at level 2, leaving level 1 to the page title.
func RootContext() Context {
	return Context{HeadingLevel: 1}
}

// WithLabel returns the context for the children of an element labelled label.
func (c Context) WithLabel(label string) Context {
	c.ClassPath = append(slices.Clip(c.ClassPath), label)
	return c
}

// Nested returns the context for content below a heading.
func (c Context) Nested() Context {
	c.HeadingLevel++
	return c
}

// Indented returns the context for the items of a list.
func (c Context) Indented() Context {
	c.IndentLevel++
	return c
}

// Parent is the innermost label, or "" at the root.
func (c Context) Parent() string {
	if len(c.ClassPath) == 0 {
		return ""
	}
	return c.ClassPath[len(c.ClassPath)-1]
}

// Classes computes the class attribute for an element labelled label:
// the label itself plus parent__label when there is a parent.
func (c Context) Classes(label string) string {
	parent := c.Parent()
	if parent == "" || parent == label {
		return label
	}
	return label + " " + parent + "__" + label
}

// Path renders the class path for diagnostics, e.g. "class/body/method".
func (c Context) Path() string {
	return strings.Join(c.ClassPath, "/")
}
