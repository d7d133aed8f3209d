package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("<div class=\"abstract\"></div>\n")

	raw, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, raw)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	raw, body, had, err := Split([]byte("---\ntitle: C API\n---\n<!-- warning -->\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: C API\n"), raw)
	require.Equal(t, []byte("<!-- warning -->\n"), body)
}

func TestSplit_CRLF_SplitsFrontmatterAndBody(t *testing.T) {
	raw, body, had, err := Split([]byte("---\r\ntitle: x\r\n---\r\nbody\r\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: x\r\n"), raw)
	require.Equal(t, []byte("body\r\n"), body)
}

func TestSplit_EmptyBlock(t *testing.T) {
	raw, body, had, err := Split([]byte("---\n---\nbody\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, raw)
	require.Equal(t, []byte("body\n"), body)
}

func TestSplit_ClosedAtEndOfInput(t *testing.T) {
	raw, body, had, err := Split([]byte("---\ntitle: x\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: x\n"), raw)
	require.Empty(t, body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	_, _, had, err := Split([]byte("---\ntitle: x\nbody\n"))
	require.Error(t, err)
	require.False(t, had)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestJoin_RoundTrip(t *testing.T) {
	input := []byte("---\ntitle: x\n---\nbody\n")
	raw, body, _, err := Split(input)
	require.NoError(t, err)
	require.Equal(t, input, Join(raw, body))
}

func TestJoin_AddsMissingNewline(t *testing.T) {
	require.Equal(t, "---\ntitle: x\n---\nbody", string(Join([]byte("title: x"), []byte("body"))))
}

func TestParseYAML(t *testing.T) {
	fields, err := ParseYAML([]byte("title: C API\nweight: 0\n"))
	require.NoError(t, err)
	require.Equal(t, "C API", fields["title"])
	require.Equal(t, 0, fields["weight"])

	fields, err = ParseYAML(nil)
	require.NoError(t, err)
	require.Empty(t, fields)

	_, err = ParseYAML([]byte("title: [unclosed\n"))
	require.Error(t, err)
}

func TestSerializeYAML_EmptyMap_ReturnsEmpty(t *testing.T) {
	out, err := SerializeYAML(map[string]any{})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestSerializeYAML_SortedWithoutOrder(t *testing.T) {
	out, err := SerializeYAML(map[string]any{"weight": 0, "title": "x", "draft": false})
	require.NoError(t, err)
	require.Equal(t, "draft: false\ntitle: x\nweight: 0\n", string(out))
}

func TestSerializeYAML_OrderedKeysFirst(t *testing.T) {
	fields := map[string]any{
		"toc":         true,
		"title":       "C++ API Documentation",
		"images":      []string{},
		"fingerprint": "abc",
		"draft":       false,
	}
	out, err := SerializeYAML(fields, "title", "draft", "images", "toc", "missing")
	require.NoError(t, err)
	require.Equal(t, "title: C++ API Documentation\ndraft: false\nimages: []\ntoc: true\nfingerprint: abc\n", string(out))
}

func TestSerializeYAML_NestedMap_SortsKeys(t *testing.T) {
	out, err := SerializeYAML(map[string]any{"params": map[string]any{"b": 1, "a": "x"}})
	require.NoError(t, err)
	require.Equal(t, "params:\n    a: x\n    b: 1\n", string(out))
}
