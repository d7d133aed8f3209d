package docmodel

import (
	"slices"

	"git.home.luguber.info/inful/hugoify/internal/doctree"
)

// NewDocument returns an empty canonical root.
func NewDocument(dialect, title string) *doctree.Node {
	return doctree.New(TagDocument, "dialect", dialect, "title", title)
}

// NewSection returns an empty section node.
func NewSection(id SectionID) *doctree.Node {
	return doctree.New(TagSection, "id", string(id))
}

// SectionOf returns the id of a section node.
func SectionOf(n *doctree.Node) SectionID {
	return SectionID(n.Attr("id"))
}

// Sections returns the section children of a document in their current order.
func Sections(doc *doctree.Node) []*doctree.Node {
	return doc.ChildrenByTag(TagSection)
}

// Section returns the section with the id, or nil.
func Section(doc *doctree.Node, id SectionID) *doctree.Node {
	for _, s := range Sections(doc) {
		if SectionOf(s) == id {
			return s
		}
	}
	return nil
}

// SortSections reorders the section children of doc into SectionOrder and drops
// empty sections. Non-section children keep their relative order after the sections.
func SortSections(doc *doctree.Node) {
	var sections, rest []*doctree.Node
	for _, c := range doc.Children {
		if c.Tag == TagSection {
			if len(c.Children) > 0 {
				sections = append(sections, c)
			}
			continue
		}
		rest = append(rest, c)
	}
	slices.SortStableFunc(sections, func(a, b *doctree.Node) int {
		return SectionOf(a).Rank() - SectionOf(b).Rank()
	})
	for _, c := range slices.Clone(doc.Children) {
		c.Detach()
	}
	doc.Append(sections...)
	doc.Append(rest...)
}

// InOrder reports whether the document's sections follow SectionOrder.
func InOrder(doc *doctree.Node) bool {
	last := -1
	for _, s := range Sections(doc) {
		r := SectionOf(s).Rank()
		if r < last {
			return false
		}
		last = r
	}
	return true
}
