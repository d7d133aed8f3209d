// Package docstring converts free-text docstrings into document tree fragments.
//
// Two docstring conventions are recognized: numpy-style sections ("Parameters"
// underlined with dashes) and reST field lines (":param x: ..."). Both are reduced
// to the same field kinds: param, type, raises, returns and rtype. Prose is parsed
// with goldmark, whose block and inline syntax covers the reST subset found in
// docstrings (paragraphs, lists, emphasis, strong and literals).
package docstring

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
)

// FieldKind identifies a docstring field.
type FieldKind string

const (
	FieldParam   FieldKind = "param"
	FieldType    FieldKind = "type"
	FieldRaises  FieldKind = "raises"
	FieldReturns FieldKind = "returns"
	FieldRType   FieldKind = "rtype"
)

// Field is one docstring field, e.g. {param, "src", "The source data."}.
type Field struct {
	Kind FieldKind
	Arg  string
	Body string
}

// Name renders the field label the way docutils does, e.g. "param src".
func (f Field) Name() string {
	if f.Arg == "" {
		return string(f.Kind)
	}
	return string(f.Kind) + " " + f.Arg
}

// Docstring is a split docstring: leading prose plus its fields in source order.
type Docstring struct {
	Description string
	Fields      []Field
}

var fieldAliases = map[string]FieldKind{
	"param":     FieldParam,
	"parameter": FieldParam,
	"arg":       FieldParam,
	"argument":  FieldParam,
	"key":       FieldParam,
	"keyword":   FieldParam,
	"type":      FieldType,
	"raises":    FieldRaises,
	"raise":     FieldRaises,
	"except":    FieldRaises,
	"exception": FieldRaises,
	"returns":   FieldReturns,
	"return":    FieldReturns,
	"rtype":     FieldRType,
}

// numpy section titles mapped to the field kind their entries produce.
var sectionKinds = map[string]FieldKind{
	"parameters":       FieldParam,
	"params":           FieldParam,
	"args":             FieldParam,
	"arguments":        FieldParam,
	"other parameters": FieldParam,
	"returns":          FieldReturns,
	"return":           FieldReturns,
	"raises":           FieldRaises,
	"raise":            FieldRaises,
	"exceptions":       FieldRaises,
}

// Sections kept as prose under a bold heading.
var proseSections = map[string]bool{
	"notes":    true,
	"note":     true,
	"examples": true,
	"example":  true,
	"see also": true,
	"warnings": true,
	"warning":  true,
}

var (
	fieldLine     = regexp.MustCompile(`^:([A-Za-z]+)(?:\s+([^:]+?))?:\s*(.*)$`)
	underlineLine = regexp.MustCompile(`^\s*-{3,}\s*$`)
)

// Split separates a docstring into prose and fields. An unrecognized field kind,
// whether a reST field or a numpy section, is a ParsingError.
func Split(text string) (*Docstring, error) {
	lines := strings.Split(cleandoc(text), "\n")
	doc := &Docstring{}
	var prose []string

	for i := 0; i < len(lines); {
		line := lines[i]

		if i+1 < len(lines) && strings.TrimSpace(line) != "" && underlineLine.MatchString(lines[i+1]) {
			title := strings.ToLower(strings.TrimSpace(line))
			body, next := sectionBody(lines, i+2)
			i = next
			if proseSections[title] {
				prose = append(prose, "", "**"+strings.TrimSpace(line)+"**", "")
				prose = append(prose, body...)
				continue
			}
			kind, ok := sectionKinds[title]
			if !ok {
				return nil, errors.ParsingError("unrecognized field kind " + quote(title)).
					WithContext("section", strings.TrimSpace(line)).
					Build()
			}
			doc.Fields = append(doc.Fields, sectionFields(kind, body)...)
			continue
		}

		if m := fieldLine.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			kind, ok := fieldAliases[strings.ToLower(m[1])]
			if !ok {
				return nil, errors.ParsingError("unrecognized field kind " + quote(m[1])).
					WithContext("line", strings.TrimSpace(line)).
					Build()
			}
			body := []string{m[3]}
			i++
			for i < len(lines) && isContinuation(lines[i]) {
				body = append(body, strings.TrimSpace(lines[i]))
				i++
			}
			doc.Fields = append(doc.Fields, Field{Kind: kind, Arg: strings.TrimSpace(m[2]), Body: strings.TrimSpace(strings.Join(body, " "))})
			continue
		}

		prose = append(prose, line)
		i++
	}

	doc.Description = strings.TrimSpace(strings.Join(prose, "\n"))
	return doc, nil
}

func quote(s string) string { return `"` + s + `"` }

// isContinuation reports whether a line continues the preceding reST field body.
func isContinuation(line string) bool {
	return line != "" && (line[0] == ' ' || line[0] == '\t')
}

// sectionBody collects lines up to the next numpy section title.
func sectionBody(lines []string, start int) ([]string, int) {
	end := start
	for end < len(lines) {
		if end+1 < len(lines) && strings.TrimSpace(lines[end]) != "" && underlineLine.MatchString(lines[end+1]) {
			break
		}
		end++
	}
	return lines[start:end], end
}

type entry struct {
	head string
	desc []string
}

// entries groups a numpy section body into unindented heads with indented descriptions.
func entries(body []string) []entry {
	var out []entry
	for _, line := range body {
		switch {
		case strings.TrimSpace(line) == "":
			if len(out) > 0 {
				out[len(out)-1].desc = append(out[len(out)-1].desc, "")
			}
		case isContinuation(line) && len(out) > 0:
			out[len(out)-1].desc = append(out[len(out)-1].desc, line)
		default:
			out = append(out, entry{head: strings.TrimSpace(line)})
		}
	}
	return out
}

func (e entry) description() string {
	return strings.TrimSpace(dedent(strings.Join(e.desc, "\n")))
}

func sectionFields(kind FieldKind, body []string) []Field {
	var out []Field
	for _, e := range entries(body) {
		name, typ, hasColon := strings.Cut(e.head, ":")
		name, typ = strings.TrimSpace(name), strings.TrimSpace(typ)
		switch kind {
		case FieldParam:
			if !hasColon {
				typ = ""
			}
			// "x, y : int" documents several parameters at once.
			for _, n := range strings.Split(name, ",") {
				n = strings.TrimSpace(n)
				if n == "" {
					continue
				}
				out = append(out, Field{Kind: FieldParam, Arg: n, Body: e.description()})
				if typ != "" {
					out = append(out, Field{Kind: FieldType, Arg: n, Body: typ})
				}
			}
		case FieldReturns:
			rtype := e.head
			if hasColon {
				rtype = typ
			}
			if desc := e.description(); desc != "" {
				out = append(out, Field{Kind: FieldReturns, Body: desc})
			}
			if rtype != "" {
				out = append(out, Field{Kind: FieldRType, Body: rtype})
			}
		case FieldRaises:
			out = append(out, Field{Kind: FieldRaises, Arg: e.head, Body: e.description()})
		}
	}
	return out
}

// dedent removes the common leading whitespace of all non-blank lines.
func dedent(text string) string {
	text = strings.ReplaceAll(text, "\t", "    ")
	lines := strings.Split(text, "\n")
	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " "))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, l := range lines {
		if len(l) >= indent && indent > 0 {
			lines[i] = l[indent:]
		} else if strings.TrimSpace(l) == "" {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}

// cleandoc dedents everything after the first line, which in a docstring
// usually starts right after the opening quotes.
func cleandoc(text string) string {
	first, rest, found := strings.Cut(strings.TrimLeft(text, "\n"), "\n")
	first = strings.TrimSpace(first)
	if !found {
		return first
	}
	return strings.Trim(first+"\n"+dedent(rest), "\n")
}
