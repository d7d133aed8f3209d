package docmodel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/hugoify/internal/doctree"
	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
)

func TestSectionTitles(t *testing.T) {
	assert.Equal(t, "Introduction", SectionAbstract.Title())
	assert.Equal(t, "Exception Classes", SectionExceptionClasses.Title())
	assert.Equal(t, "Functions", SectionFunctions.Title())
}

func TestSortSections_FixedOrderAndDropsEmpty(t *testing.T) {
	doc := NewDocument("c++", "API")
	for _, id := range []SectionID{SectionFunctions, SectionClasses, SectionEnums, SectionAbstract, SectionDefines} {
		s := NewSection(id)
		if id != SectionEnums {
			s.Append(doctree.New(TagParagraph))
		}
		doc.Append(s)
	}
	require.False(t, InOrder(doc))

	SortSections(doc)

	var got []SectionID
	for _, s := range Sections(doc) {
		got = append(got, SectionOf(s))
	}
	assert.Equal(t, []SectionID{SectionAbstract, SectionDefines, SectionClasses, SectionFunctions}, got)
	assert.True(t, InOrder(doc))
	assert.Nil(t, Section(doc, SectionEnums))
}

func TestValidate(t *testing.T) {
	good := doctree.MustParse(`<document><section id="functions"><function_context name="">` +
		`<desc objtype="function"><desc_signature><desc_name>f</desc_name></desc_signature></desc>` +
		`</function_context></section></document>`)
	require.NoError(t, Validate(good))

	badTag := doctree.MustParse(`<document><section id="abstract"><table/></section></document>`)
	err := Validate(badTag)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryUnknownTag))

	badObj := doctree.MustParse(`<document><section id="classes"><desc objtype="widget"/></section></document>`)
	err = Validate(badObj)
	require.Error(t, err)
	classified, ok := errors.AsClassified(err)
	require.True(t, ok)
	tag, _ := classified.Context().GetString("tag")
	assert.Equal(t, "desc:widget", tag)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c_docs.xml")
	require.NoError(t, os.WriteFile(path, []byte(`<document><section names="c\ api"/></document>`), 0o600))

	root, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "document", root.Tag)

	_, err = ParseFile(filepath.Join(dir, "missing.xml"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))

	require.NoError(t, os.WriteFile(path, []byte(`<document>`), 0o600))
	_, err = ParseFile(path)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryStructural))
}
