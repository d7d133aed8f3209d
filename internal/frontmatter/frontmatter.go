// Package frontmatter splits, parses and writes the YAML block at the top of a
// generated Hugo page.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// ErrMissingClosingDelimiter indicates the page opens a front matter block
// that never closes.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Split separates the raw YAML (without delimiters) from the page body.
//
// A page that does not open with a delimiter line has no front matter: had is
// false and body is the whole input. Both LF and CRLF line endings are accepted.
func Split(content []byte) (raw []byte, body []byte, had bool, err error) {
	nl := newlineOf(content)
	open := []byte(delimiter + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}
	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}

	closing := []byte(nl + delimiter + nl)
	idx := bytes.Index(rest, closing)
	if idx < 0 {
		// A block closed at end of input has no trailing newline.
		if bytes.HasSuffix(rest, []byte(nl+delimiter)) {
			return rest[:len(rest)-len(delimiter)], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}
	return rest[:idx+len(nl)], rest[idx+len(closing):], true, nil
}

// Join writes raw YAML between delimiter lines, followed by body.
func Join(raw []byte, body []byte) []byte {
	out := make([]byte, 0, 2*len(delimiter)+2+len(raw)+len(body))
	out = append(out, delimiter+"\n"...)
	out = append(out, raw...)
	if len(raw) > 0 && raw[len(raw)-1] != '\n' {
		out = append(out, '\n')
	}
	out = append(out, delimiter+"\n"...)
	return append(out, body...)
}

// ParseYAML decodes raw front matter into a map. Empty input is an empty map.
func ParseYAML(raw []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func newlineOf(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
