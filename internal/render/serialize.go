package render

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// paramHashLen is the number of hex characters of the parameter hash kept in an anchor.
const paramHashLen = 8

var (
	idStripper = strings.NewReplacer(" ", "", "_", "", `\`, "")
	paramToken = regexp.MustCompile(`[(),]|[^\s(),]+`)

	headingPattern = regexp.MustCompile(`(?s)\s*<heading([^>]*)>(.*?)</heading>\s*`)
	attrPattern    = regexp.MustCompile(`([a-z][a-z-]*)="([^"]*)"`)

	closingQuotePair = regexp.MustCompile(`”([\w -]+?)”`)
	openingQuotePair = regexp.MustCompile(`“([\w -]+?)“`)
	singleQuotePair  = regexp.MustCompile(`’([\w -]+?)’`)
	quotedDefault    = regexp.MustCompile(`^'(.*)'$`)
)

const terminalPunctuation = ".!?:;"

// maxHeadingLevel is the deepest markdown heading. Deeper headings are written
// at this level.
const maxHeadingLevel = 6

// HeadingID builds the anchor for a heading from its plain tokens and, when the
// heading has a parameter list, the list's tokens. A nil params slice means
// there is no parameter list; an empty one is an empty list.
//
// Overloads are told apart by hashing the first four characters of every
// parameter token, so two overloads that only differ past that prefix collide.
func HeadingID(tokens, params []string) string {
	id := idStripper.Replace(strings.Join(tokens, ""))
	if params == nil {
		return id
	}
	var b strings.Builder
	for _, p := range params {
		b.WriteString(firstRunes(p, 4))
	}
	sum := sha256.Sum256([]byte(b.String()))
	return id + "-" + hex.EncodeToString(sum[:])[:paramHashLen]
}

func firstRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}

// Serialize assigns heading anchors, applies the text fixes and writes the
// page body. Anchors are unique across the nodes passed in one call.
func Serialize(nodes []*html.Node) (string, error) {
	anchors := newAnchorSet()
	for _, n := range nodes {
		walk(n, func(n *html.Node) {
			if n.Type == html.ElementNode && n.Data == headingTag && attr(n, attrAnchor) != "" {
				setAttr(n, "id", anchors.claim(headingID(n)))
				delAttr(n, attrAnchor)
			}
		})
		fixText(n)
	}

	var b strings.Builder
	for _, n := range nodes {
		if err := html.Render(&b, n); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
	}
	body := headingPattern.ReplaceAllStringFunc(b.String(), markdownHeading)
	return strings.TrimSpace(body) + "\n", nil
}

func headingID(h *html.Node) string {
	var tokens []string
	var params []string
	var visit func(n *html.Node, inList bool)
	visit = func(n *html.Node, inList bool) {
		if n.Type == html.TextNode {
			if inList {
				params = append(params, paramToken.FindAllString(n.Data, -1)...)
			} else {
				tokens = append(tokens, n.Data)
			}
			return
		}
		if n.Type == html.ElementNode && hasClass(n, labelParamList) {
			inList = true
			if params == nil {
				params = []string{}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c, inList)
		}
	}
	visit(h, false)
	return HeadingID(tokens, params)
}

type anchorSet map[string]int

func newAnchorSet() anchorSet { return anchorSet{} }

// claim returns id, or id-2, id-3 and so on when it is already taken.
func (s anchorSet) claim(id string) string {
	s[id]++
	if s[id] == 1 {
		return id
	}
	for n := s[id]; ; n++ {
		candidate := id + "-" + strconv.Itoa(n)
		if s[candidate] == 0 {
			s[candidate] = 1
			s[id] = n
			return candidate
		}
	}
}

// fixText applies the idempotent text fixes to a rendered subtree.
func fixText(root *html.Node) {
	walk(root, func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			n.Data = closingQuotePair.ReplaceAllString(n.Data, "“$1”")
			n.Data = openingQuotePair.ReplaceAllString(n.Data, "“$1”")
			n.Data = singleQuotePair.ReplaceAllString(n.Data, "‘$1’")
		case n.Type == html.ElementNode && hasClass(n, labelDefault):
			if t := n.FirstChild; t != nil && t.Type == html.TextNode && t.NextSibling == nil {
				t.Data = quotedDefault.ReplaceAllString(t.Data, `"$1"`)
			}
		case n.Type == html.ElementNode && n.Data == "p":
			terminate(n)
		}
	})
}

// terminate appends a full stop to a non-empty paragraph without terminal punctuation.
func terminate(p *html.Node) {
	content := strings.TrimRightFunc(textOf(p), unicode.IsSpace)
	if content == "" {
		return
	}
	last, _ := utf8.DecodeLastRuneInString(content)
	if strings.ContainsRune(terminalPunctuation, last) {
		return
	}
	if t := p.LastChild; t != nil && t.Type == html.TextNode {
		t.Data = strings.TrimRightFunc(t.Data, unicode.IsSpace) + "."
		return
	}
	p.AppendChild(text("."))
}

// idEscapes names the punctuation goldmark's heading attribute parser refuses in
// an id. Other refused bytes are written as hex.
var idEscapes = map[byte]string{
	'*': "ptr", '&': "ref", '<': "lt", '>': "gt", '[': "lb", ']': "rb",
	'(': "lp", ')': "rp", ',': "comma", '=': "eq", '~': "tilde", '+': "plus",
	'!': "not", '|': "or", '/': "slash", '%': "pct", '^': "xor", '?': "q",
	'\'': "quote", '"': "dquote", '{': "lc", '}': "rc", '@': "at", '#': "hash",
}

// attributeID makes an anchor safe for a {#id} block. Goldmark accepts
// letters, digits and the punctuation _ - : . in an id; every other ASCII
// punctuation byte becomes _name_. Anchors never contain underscores, so the
// escaping keeps distinct anchors distinct.
func attributeID(id string) string {
	var b strings.Builder
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c >= utf8.RuneSelf || c == '-' || c == ':' || c == '.' || c == '_' ||
			('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') {
			b.WriteByte(c)
			continue
		}
		name, ok := idEscapes[c]
		if !ok {
			name = fmt.Sprintf("x%02x", c)
		}
		b.WriteString("_" + name + "_")
	}
	return b.String()
}

// markdownHeading turns one heading placeholder into a Hugo heading with an
// attribute block carrying its id and classes.
func markdownHeading(match string) string {
	m := headingPattern.FindStringSubmatch(match)
	attrs := map[string]string{}
	for _, a := range attrPattern.FindAllStringSubmatch(m[1], -1) {
		attrs[a[1]] = html.UnescapeString(a[2])
	}
	level, err := strconv.Atoi(attrs[attrLevel])
	if err != nil || level < 1 {
		level = 1
	}
	if level > maxHeadingLevel {
		slog.Debug("Heading nested deeper than markdown allows, clamping",
			slog.Int("level", level),
			slog.String("heading", strings.TrimSpace(m[2])))
		level = maxHeadingLevel
	}

	var block []string
	if id := attrs["id"]; id != "" {
		block = append(block, "#"+attributeID(id))
	}
	for _, c := range strings.Fields(attrs["class"]) {
		block = append(block, "."+c)
	}
	line := strings.Repeat("#", level) + " " + strings.TrimSpace(m[2])
	if len(block) > 0 {
		line += " {" + strings.Join(block, " ") + "}"
	}
	return "\n\n" + line + "\n\n"
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func textOf(n *html.Node) string {
	var b strings.Builder
	walk(n, func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
	})
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func delAttr(n *html.Node, key string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
