package docstring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
)

const numpyDoc = `Lock up to 512 bytes of data.

    The data is encrypted with the *module* key.

    Parameters
    ----------
    src : str
        The source data.
    dst : str, optional
        Where to write the result.

    Returns
    -------
    bytes
        The locked data.

    Raises
    ------
    ValueError
        If src is empty.
`

func TestSplit_Numpy(t *testing.T) {
	doc, err := Split(numpyDoc)
	require.NoError(t, err)

	assert.Equal(t, "Lock up to 512 bytes of data.\n\nThe data is encrypted with the *module* key.", doc.Description)
	assert.Equal(t, []Field{
		{Kind: FieldParam, Arg: "src", Body: "The source data."},
		{Kind: FieldType, Arg: "src", Body: "str"},
		{Kind: FieldParam, Arg: "dst", Body: "Where to write the result."},
		{Kind: FieldType, Arg: "dst", Body: "str, optional"},
		{Kind: FieldReturns, Body: "The locked data."},
		{Kind: FieldRType, Body: "bytes"},
		{Kind: FieldRaises, Arg: "ValueError", Body: "If src is empty."},
	}, doc.Fields)
}

func TestSplit_ReSTFields(t *testing.T) {
	doc, err := Split(`Compute a digest.

:param data: bytes to hash,
    possibly empty
:type data: bytes
:returns: the digest
:rtype: str
:raises KeyError: when the key is missing`)
	require.NoError(t, err)

	assert.Equal(t, "Compute a digest.", doc.Description)
	require.Len(t, doc.Fields, 5)
	assert.Equal(t, Field{Kind: FieldParam, Arg: "data", Body: "bytes to hash, possibly empty"}, doc.Fields[0])
	assert.Equal(t, "type data", doc.Fields[1].Name())
	assert.Equal(t, "returns", doc.Fields[2].Name())
	assert.Equal(t, Field{Kind: FieldRaises, Arg: "KeyError", Body: "when the key is missing"}, doc.Fields[4])
}

func TestSplit_UnknownFieldKind(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "reST field", in: "Text.\n\n:frobnicate x: nope"},
		{name: "numpy section", in: "Text.\n\nYields\n------\nint\n    Values."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split(tt.in)
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryParsing))
		})
	}
}

func TestSplit_ProseSectionsStayInDescription(t *testing.T) {
	doc, err := Split("Summary.\n\nNotes\n-----\nCalled rarely.")
	require.NoError(t, err)
	assert.Empty(t, doc.Fields)
	assert.Contains(t, doc.Description, "**Notes**")
	assert.Contains(t, doc.Description, "Called rarely.")
}

func TestBlocks_Inlines(t *testing.T) {
	blocks := Blocks("Use *care* with **force**, ``raw`` and `Ref`.")
	require.Len(t, blocks, 1)
	p := blocks[0]
	assert.Equal(t, "paragraph", p.Tag)
	assert.Equal(t, "Use ", p.Text)

	tags := make([]string, 0, len(p.Children))
	for _, c := range p.Children {
		tags = append(tags, c.Tag)
	}
	assert.Equal(t, []string{"emphasis", "strong", "literal", "title_reference"}, tags)
	assert.Equal(t, "raw", p.Children[2].TextContent())
	assert.Equal(t, "Use care with force, raw and Ref.", p.TextContent())
}

func TestBlocks_Lists(t *testing.T) {
	blocks := Blocks("Steps:\n\n1. first\n2. second\n\n- a\n- b")
	require.Len(t, blocks, 3)
	assert.Equal(t, "enumerated_list", blocks[1].Tag)
	assert.Equal(t, "bullet_list", blocks[2].Tag)
	require.Len(t, blocks[1].Children, 2)
	assert.Equal(t, "list_item", blocks[1].Children[0].Tag)
	assert.Equal(t, "first", blocks[1].Children[0].TextContent())
}

func TestConvert_BuildsFieldList(t *testing.T) {
	nodes, err := Convert(numpyDoc)
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	list := nodes[2]
	assert.Equal(t, "field_list", list.Tag)
	require.Len(t, list.Children, 7)
	first := list.Children[0]
	assert.Equal(t, "param src", first.Child("field_name").Text)
	assert.Equal(t, "The source data.", first.Child("field_body").TextContent())
}

func TestConvert_EmptyInput(t *testing.T) {
	nodes, err := Convert("   \n  ")
	require.NoError(t, err)
	assert.Empty(t, nodes)
}
