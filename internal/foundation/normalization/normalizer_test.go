package normalization

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type format string

const (
	formatText format = "text"
	formatJSON format = "json"
)

func formats() map[string]format {
	return map[string]format{"text": formatText, "JSON": formatJSON}
}

func TestNormalizer_Normalize(t *testing.T) {
	n := NewNormalizer(formats(), formatText)

	assert.Equal(t, formatJSON, n.Normalize("  Json "))
	assert.Equal(t, formatText, n.Normalize("yaml"))
	assert.Equal(t, []string{"json", "text"}, n.ValidKeys())
	assert.True(t, n.Contains(formatJSON))
	assert.False(t, n.Contains(format("yaml")))
}

func TestNormalizer_NormalizeWithError(t *testing.T) {
	n := NewNormalizer(formats(), formatText)

	v, err := n.NormalizeWithError("TEXT")
	require.NoError(t, err)
	assert.Equal(t, formatText, v)

	_, err = n.NormalizeWithError("yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[json text]")
}

func TestWithFunc(t *testing.T) {
	n := WithFunc(formats(), formatText, strings.TrimSpace)
	assert.Equal(t, formatJSON, n.Normalize(" JSON"))
	assert.Equal(t, formatText, n.Normalize("json"))
}

func TestEnumNormalizer_NamesEnumInErrors(t *testing.T) {
	e := NewEnumNormalizer("log format", formats(), formatText)

	_, err := e.NormalizeWithValidation("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log format")
	assert.Equal(t, formatJSON, e.Normalize("json"))
}
