package normalize

import (
	"regexp"
	"slices"
	"strings"

	"git.home.luguber.info/inful/hugoify/internal/docmodel"
	"git.home.luguber.info/inful/hugoify/internal/doctree"
)

var (
	qualifiers = []string{"const", "volatile"}
	refGlyphs  = regexp.MustCompile(`^[*&]+$`)
	lexeme     = regexp.MustCompile(`[*&]+|[^\s*&]+`)
	identifier = regexp.MustCompile(`^[A-Za-z_]\w*$`)
)

// nameHints mark elements whose text is the declared parameter name.
var nameHints = []string{docmodel.TagEmphasis, docmodel.TagName, "desc_sig_name"}

// typeHints mark elements whose text is a whole type name.
var typeHints = []string{docmodel.TagType, "desc_sig_keyword_type", "desc_sig_keyword"}

// typeKeywords are C and C++ words that only ever appear in the type of a
// parameter, never as its name.
var typeKeywords = []string{
	"auto", "bool", "char", "char16_t", "char32_t", "char8_t", "class", "double", "enum",
	"float", "int", "long", "short", "signed", "struct", "typename", "union", "unsigned",
	"void", "wchar_t",
}

// tagKeywords introduce a tag name, which belongs to the type.
var tagKeywords = []string{"class", "enum", "struct", "typename", "union"}

// referenceToType replaces a cross-reference around a parameter type by plain
// desc_type text. Leading whitespace of the tail collapses to one space; trailing
// whitespace is dropped.
func referenceToType(ref *doctree.Node) {
	title := ref.Attr("reftitle")
	if title == "" {
		title = ref.TextContent()
	}
	t := doctree.NewText(docmodel.TagType, title)
	tail := strings.TrimLeft(ref.Tail, " \t\n")
	if len(tail) < len(ref.Tail) {
		tail = " " + tail
	}
	tail = strings.TrimRight(tail, " \t\n")
	ref.Tail = ""
	ref.ReplaceWith(t)
	t.Tail = tail
}

type paramToken struct {
	text string
	hint string
}

// tokenizeParameter splits a C or C++ parameter into qualifier annotation, type,
// pointer/reference glyphs, name and default value. Macro parameters are untyped,
// so a lone word is their name.
func tokenizeParameter(p *doctree.Node, untyped bool) *doctree.Node {
	for _, ref := range p.FindTag(docmodel.TagReference) {
		referenceToType(ref)
	}

	var segments []paramToken
	segments = append(segments, paramToken{text: p.Text})
	for _, c := range p.Children {
		hint := c.Tag
		if c.Tag == "inline" || c.Tag == docmodel.TagDefaultValue {
			hint = docmodel.TagDefaultValue
		}
		segments = append(segments, paramToken{text: c.TextContent(), hint: hint}, paramToken{text: c.Tail})
	}

	var tokens []paramToken
	var def []string
	inDefault := false
	for _, seg := range segments {
		if inDefault || seg.hint == docmodel.TagDefaultValue {
			inDefault = true
			def = append(def, seg.text)
			continue
		}
		text := seg.text
		if before, after, ok := strings.Cut(text, "="); ok {
			text = before
			def = append(def, after)
			inDefault = true
		}
		switch {
		case strings.TrimSpace(text) == "":
		case seg.hint != "" && !strings.HasPrefix(seg.hint, "desc_sig_punctuation"):
			tokens = append(tokens, paramToken{text: collapse(text), hint: seg.hint})
		default:
			for _, lx := range lexeme.FindAllString(text, -1) {
				tokens = append(tokens, paramToken{text: lx})
			}
		}
	}

	nameAt := paramNameIndex(tokens)
	if untyped && nameAt < 0 && len(tokens) == 1 {
		nameAt = 0
	}
	var annotation, typ []string
	var ref, name string
	for i, tok := range tokens {
		switch {
		case i == nameAt:
			name = tok.text
		case slices.Contains(qualifiers, tok.text):
			annotation = append(annotation, tok.text)
		case refGlyphs.MatchString(tok.text):
			ref += tok.text
		default:
			typ = append(typ, tok.text)
		}
	}
	return newParameter(
		strings.Join(annotation, " "),
		strings.Join(typ, " "),
		ref,
		name,
		collapse(strings.Join(def, "")),
	)
}

// paramNameIndex picks the declared name: the last name-hinted token, or else the
// last identifier when some other type token precedes it. -1 means unnamed.
//
// The identifier fallback only applies to plain-text parameters. Generators
// that mark up a parameter always mark its name, so marked-up text without a
// name hint is all type.
func paramNameIndex(tokens []paramToken) int {
	for i := len(tokens) - 1; i >= 0; i-- {
		if slices.Contains(nameHints, tokens[i].hint) {
			return i
		}
	}
	for _, tok := range tokens {
		if tok.hint != "" && !slices.Contains(typeHints, tok.hint) {
			return -1
		}
	}
	last := -1
	typed := 0
	for i, tok := range tokens {
		if slices.Contains(qualifiers, tok.text) || refGlyphs.MatchString(tok.text) {
			continue
		}
		typed++
		tagged := i > 0 && slices.Contains(tagKeywords, tokens[i-1].text)
		if identifier.MatchString(tok.text) && tok.hint == "" && !tagged && !slices.Contains(typeKeywords, tok.text) {
			last = i
		}
	}
	if typed < 2 || last < 0 {
		return -1
	}
	// The name is the final word; an identifier followed by more type text is part of the type.
	for i := last + 1; i < len(tokens); i++ {
		if !refGlyphs.MatchString(tokens[i].text) && !slices.Contains(qualifiers, tokens[i].text) {
			return -1
		}
	}
	return last
}

// pythonParameter reads "name: type = default" from a Python parameter.
func pythonParameter(p *doctree.Node) *doctree.Node {
	text := collapse(p.TextContent())
	before, def, _ := strings.Cut(text, "=")
	name, typ, _ := strings.Cut(before, ":")
	for _, dv := range p.FindAll(func(n *doctree.Node) bool {
		return n.Tag == docmodel.TagDefaultValue || (n.Tag == "inline" && hasClass(n, "default_value"))
	}) {
		def = dv.TextContent()
	}
	return newParameter(
		"",
		strings.TrimSpace(typ),
		"",
		strings.ReplaceAll(strings.TrimSpace(name), " ", ""),
		strings.TrimSpace(def),
	)
}
