package normalize

import (
	"slices"
	"strings"

	"git.home.luguber.info/inful/hugoify/internal/docmodel"
	"git.home.luguber.info/inful/hugoify/internal/doctree"
	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
)

// noiseAttrs never carry meaning for the rendered page.
var noiseAttrs = []string{"noemph", "xml:space", "add_permalink", "is_multiline", "noindex"}

// droppedTags are removed wherever they appear.
var droppedTags = []string{"index", "comment", "system_message", "problematic"}

// transparentTags are replaced by their children.
var transparentTags = []string{"pending_xref", "desc_inline", "compact_paragraph"}

var admonitionLabels = map[string]string{
	"note":      "Note",
	"seealso":   "See also",
	"warning":   "Warning",
	"tip":       "Tip",
	"important": "Important",
	"attention": "Attention",
	"caution":   "Caution",
	"danger":    "Danger",
	"error":     "Error",
	"hint":      "Hint",
}

// contentBlocks may appear directly inside desc_content.
var contentBlocks = []string{
	docmodel.TagParagraph, docmodel.TagBulletList, docmodel.TagEnumeratedList,
	docmodel.TagLiteralBlock, "definition_list", "field_list", docmodel.TagDesc,
}

// adapt performs the dialect-agnostic cleanup: it turns the raw extractor tree
// into a document root holding the body section's children.
func adapt(raw *doctree.Node, env *Env) (*doctree.Node, error) {
	dialect, err := DetectDialect(raw)
	if err != nil {
		return nil, err
	}
	env.Dialect = dialect

	body := bodySection(raw)
	if t := body.Child("title"); t != nil {
		env.Title = collapse(t.TextContent())
		t.Remove()
	}
	doc := docmodel.NewDocument(dialect.String(), env.Title)
	doc.Append(slices.Clone(body.Children)...)

	trimLayout(doc)
	flattenSubsections(doc)
	stripNoise(doc)
	if err := expandVerbatim(doc, env.Options.Convert); err != nil {
		return nil, err
	}
	collapseParagraphs(doc)
	for _, line := range doc.FindTag("desc_signature_line") {
		line.Unwrap()
	}
	for _, sig := range doc.FindTag(docmodel.TagSignature) {
		if ids := strings.Fields(sig.Attr("ids")); len(ids) > 0 {
			sig.SetAttr("ids", ids[len(ids)-1])
		}
	}
	tidyTerms(doc)
	unwrapBlockParagraphs(doc)
	extractAbstract(doc, dialect)
	if err := checkContent(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// flattenSubsections merges nested prose sections into the body; their titles
// become bold paragraphs.
func flattenSubsections(doc *doctree.Node) {
	for {
		sec := doc.Child(docmodel.TagSection)
		if sec == nil {
			return
		}
		if t := sec.Child("title"); t != nil {
			t.ReplaceWith(strongParagraph(t.TextContent()))
		}
		sec.Unwrap()
	}
}

func stripNoise(doc *doctree.Node) {
	doc.Walk(func(n *doctree.Node) bool {
		if slices.Contains(droppedTags, n.Tag) {
			n.Remove()
			return false
		}
		for _, a := range noiseAttrs {
			n.DelAttr(a)
		}
		return true
	})
	// Targets are anchors; only signature targets carry information (C++ return types).
	for _, t := range doc.FindTag("target") {
		if t.Ancestor(docmodel.TagSignature) == nil {
			t.Remove()
		}
	}
	for _, n := range doc.FindAll(isTransparent) {
		n.Unwrap()
	}
}

func isTransparent(n *doctree.Node) bool {
	if slices.Contains(transparentTags, n.Tag) {
		return true
	}
	return n.Tag == "inline" && !hasClass(n, "default_value")
}

func hasClass(n *doctree.Node, class string) bool {
	return slices.Contains(strings.Fields(n.Attr("classes")), class)
}

// expandVerbatim replaces docstring blocks with the converter's output. A verbatim
// block that is the only content of its paragraph replaces the paragraph.
func expandVerbatim(doc *doctree.Node, convert ConvertFunc) error {
	for _, v := range doc.FindTag("verbatim") {
		nodes, err := convert(v.TextContent())
		if err != nil {
			if ce, ok := errors.AsClassified(err); ok {
				return errors.WrapError(err, ce.Category(), "failed to convert docstring").
					At(v, v.Parent()).
					Fatal().
					Build()
			}
			return errors.ParsingError("failed to convert docstring").
				At(v, v.Parent()).
				WithContext("cause", err.Error()).
				Build()
		}
		target := v
		if p := v.Parent(); p != nil && p.Tag == docmodel.TagParagraph && len(p.Children) == 1 &&
			strings.TrimSpace(p.Text) == "" && strings.TrimSpace(v.Tail) == "" {
			target = p
		}
		target.ReplaceWith(nodes...)
	}
	return nil
}

// collapseParagraphs joins hard-wrapped paragraph text into single lines.
func collapseParagraphs(doc *doctree.Node) {
	for _, p := range doc.FindTag(docmodel.TagParagraph) {
		if len(p.Children) == 0 {
			p.Text = collapse(p.Text)
			continue
		}
		p.Text = joinLines(p.Text)
		for _, c := range p.Children {
			c.Tail = joinLines(c.Tail)
		}
	}
}

// collapse reduces all whitespace runs to single spaces and trims the ends.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// joinLines replaces each line break, and the indentation around it, with one space.
// Text without line breaks is returned unchanged so inline spacing survives.
func joinLines(s string) string {
	if !strings.Contains(s, "\n") {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.Join(lines, " ")
}

// tidyTerms unwraps the lone strong or emphasis span docutils puts inside
// definition terms, then trims the term text.
func tidyTerms(doc *doctree.Node) {
	for _, term := range doc.FindTag("term") {
		if len(term.Children) >= 2 {
			continue
		}
		for _, c := range slices.Clone(term.Children) {
			if c.Tag == docmodel.TagStrong || c.Tag == docmodel.TagEmphasis {
				c.Unwrap()
			}
		}
		if len(term.Children) == 0 {
			term.Text = strings.TrimSpace(term.Text)
		} else {
			term.Text = strings.TrimLeft(term.Text, " \t\n")
		}
	}
}

var blockTags = []string{
	docmodel.TagParagraph, docmodel.TagBulletList, docmodel.TagEnumeratedList,
	docmodel.TagLiteralBlock, "definition_list", "field_list", "block_quote",
}

// unwrapBlockParagraphs replaces paragraphs with no text of their own, holding
// only block content, by that content.
func unwrapBlockParagraphs(doc *doctree.Node) {
	for _, p := range doc.FindTag(docmodel.TagParagraph) {
		if len(p.Children) == 0 || strings.TrimSpace(p.Text) != "" {
			continue
		}
		onlyBlocks := true
		for _, c := range p.Children {
			if !slices.Contains(blockTags, c.Tag) || strings.TrimSpace(c.Tail) != "" {
				onlyBlocks = false
				break
			}
		}
		if onlyBlocks {
			p.Unwrap()
		}
	}
}

// extractAbstract moves the prose preceding the first member into the abstract
// section. Definition lists there hold author metadata and are dropped.
func extractAbstract(doc *doctree.Node, dialect Dialect) {
	stop := firstMember(doc, dialect)
	abstract := docmodel.NewSection(docmodel.SectionAbstract)
	for _, c := range slices.Clone(doc.Children) {
		if c == stop {
			break
		}
		switch {
		case c.Tag == "definition_list":
			c.Remove()
		case docmodel.IsDescriptionBlock(c.Tag):
			c.Tail = ""
			abstract.Append(c)
		}
	}
	doc.Insert(0, abstract)
}

func firstMember(doc *doctree.Node, dialect Dialect) *doctree.Node {
	if dialect == DialectC {
		if c := doc.Child("container"); c != nil {
			return c
		}
	}
	return doc.Child(docmodel.TagDesc)
}

// checkContent validates the children of every member body, unwrapping the
// layout wrappers it knows.
func checkContent(doc *doctree.Node) error {
	for _, content := range doc.FindTag(docmodel.TagContent) {
		for i := 0; i < len(content.Children); i++ {
			c := content.Children[i]
			switch {
			case slices.Contains(contentBlocks, c.Tag):
			case c.Tag == "rubric":
				c.ReplaceWith(strongParagraph(c.TextContent()))
			case c.Tag == "container":
				// Breathe groups class members under a rubric such as "Public Functions".
				for _, r := range c.ChildrenByTag("rubric") {
					r.Remove()
				}
				c.Unwrap()
				i--
			case c.Tag == "block_quote":
				c.Unwrap()
				i--
			case admonitionLabels[c.Tag] != "":
				label := strongParagraph(admonitionLabels[c.Tag])
				c.Insert(0, label)
				c.Unwrap()
				i--
			default:
				return errors.StructuralError("unsupported block in member body").
					At(c, content).
					WithContext("tag", c.Tag).
					Build()
			}
		}
	}
	return nil
}

func strongParagraph(text string) *doctree.Node {
	p := doctree.New(docmodel.TagParagraph)
	p.Append(doctree.NewText(docmodel.TagStrong, collapse(text)))
	return p
}
