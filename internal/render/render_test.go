package render

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/hugoify/internal/docmodel"
	"git.home.luguber.info/inful/hugoify/internal/doctree"
	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
	"git.home.luguber.info/inful/hugoify/internal/normalize"
)

const addFunction = `<desc objtype="function"><desc_signature ids="add">` +
	`<desc_returns>int</desc_returns><desc_name>add</desc_name>` +
	`<desc_parameterlist>` +
	`<desc_parameter><desc_type>int</desc_type><desc_name>a</desc_name></desc_parameter>` +
	`<desc_parameter><desc_type>int</desc_type><desc_name>b</desc_name></desc_parameter>` +
	`</desc_parameterlist></desc_signature></desc>`

func document(sections ...string) *doctree.Node {
	return doctree.MustParse(`<document dialect="c++" title="t">` + strings.Join(sections, "") + `</document>`)
}

func section(id string, members ...string) string {
	return `<section id="` + id + `">` + strings.Join(members, "") + `</section>`
}

func render(t *testing.T, doc *doctree.Node, opts Options) *Output {
	t.Helper()
	out, err := New(opts).Render(doc)
	require.NoError(t, err)
	return out
}

func findAll(nodes []*html.Node, pred func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	for _, n := range nodes {
		walk(n, func(n *html.Node) {
			if pred(n) {
				found = append(found, n)
			}
		})
	}
	return found
}

func byClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Type == html.ElementNode && hasClass(n, class) }
}

func shortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:8]
}

func TestEveryCanonicalTagHasARule(t *testing.T) {
	r := New(Options{})
	for _, tag := range docmodel.CanonicalTags() {
		if tag == docmodel.TagDocument || tag == docmodel.TagDesc {
			continue
		}
		assert.True(t, r.Has(tag), tag)
	}
	for _, objtype := range docmodel.MemberObjTypes() {
		assert.True(t, r.Has(docmodel.TagDesc+":"+objtype), objtype)
	}
}

func TestFunctionHeadingAndAnchor(t *testing.T) {
	out := render(t, document(section("functions", `<function_context name="">`+addFunction+`</function_context>`)), Options{})
	require.Zero(t, out.Diagnostics.Count())

	sigs := findAll(out.Nodes, byClass(labelSignature))
	require.Len(t, sigs, 1)
	assert.Equal(t, "int add( int a, int b )", textOf(sigs[0]))
	assert.Equal(t, "3", attr(sigs[0], attrLevel))

	want := "intadd-" + shortHash("(inta,intb)")
	assert.Equal(t, want, headingID(sigs[0]))

	page, err := Serialize(out.Nodes)
	require.NoError(t, err)
	assert.Contains(t, page, "\n### ")
	assert.Contains(t, page, "{#"+want+" .signature .method__signature}")
	assert.Contains(t, page, "## Functions {#Functions")
	assert.NotContains(t, page, "<heading")
}

func TestEmptyEnumeratorIsHeadingOnly(t *testing.T) {
	doc := document(section("structs",
		`<desc objtype="struct"><desc_signature ids="Value"><desc_annotation>struct</desc_annotation><desc_name>Value</desc_name></desc_signature>`+
			`<desc_content><desc objtype="enumerator"><desc_signature ids="Int"><desc_name>Int</desc_name></desc_signature><desc_content/></desc></desc_content></desc>`))
	out := render(t, doc, Options{})

	enumerators := findAll(out.Nodes, byClass("enumerator"))
	require.Len(t, enumerators, 1)
	assert.Len(t, findAll([]*html.Node{enumerators[0]}, byClass(labelSignature)), 1)
	assert.Empty(t, findAll([]*html.Node{enumerators[0]}, byClass(labelBody)))
}

func TestUnknownTagWarnsOnceAndKeepsSiblings(t *testing.T) {
	doc := document(section("functions", `<function_context name="">`+
		addFunction+`<frobnicate><paragraph>hidden</paragraph></frobnicate>`+addFunction+
		`</function_context>`))
	out := render(t, doc, Options{})

	require.Equal(t, 1, out.Diagnostics.Count())
	w := out.Diagnostics.Warnings[0]
	assert.True(t, w.IsCategory(errors.CategoryUnknownTag))
	assert.True(t, w.IsSeverity(errors.SeverityWarning))
	tag, _ := w.Context().GetString("tag")
	assert.Equal(t, "frobnicate", tag)

	assert.Len(t, findAll(out.Nodes, byClass(labelSignature)), 2)
	for _, n := range out.Nodes {
		assert.NotContains(t, textOf(n), "hidden")
	}
}

func TestWarnOnceDedupesPerKey(t *testing.T) {
	doc := document(section("abstract", `<frobnicate/><paragraph>kept</paragraph><frobnicate/><desc objtype="widget"/>`))

	out := render(t, doc, Options{WarnOnce: true})
	assert.Equal(t, 2, out.Diagnostics.Count())
	assert.Equal(t, 2, out.Diagnostics.Occurrences("frobnicate"))
	assert.Equal(t, 1, out.Diagnostics.Occurrences("desc:widget"))

	out = render(t, doc, Options{})
	assert.Equal(t, 3, out.Diagnostics.Count())
}

func TestReturnValueNestsReturnType(t *testing.T) {
	doc := document(section("functions", `<function_context name="">`+
		`<desc objtype="function"><desc_signature ids="get"><desc_name>get</desc_name><desc_parameterlist/></desc_signature>`+
		`<desc_content><return_value><paragraph>The value</paragraph></return_value><return_type><paragraph>int</paragraph></return_type></desc_content></desc>`+
		`</function_context>`))
	out := render(t, doc, Options{})

	returns := findAll(out.Nodes, byClass(labelReturnValue))
	require.Len(t, returns, 1)
	assert.Len(t, findAll([]*html.Node{returns[0]}, byClass(labelReturnType)), 1)
	assert.Len(t, findAll(out.Nodes, byClass(labelReturnType)), 1)

	content := doc.FindTag(docmodel.TagContent)[0]
	assert.NotNil(t, content.Child(docmodel.TagReturnType), "input tree must not change")
}

func TestEmptyParameterList(t *testing.T) {
	doc := document(section("functions", `<function_context name="">`+
		`<desc objtype="function"><desc_signature ids="init"><desc_returns>void</desc_returns><desc_name>init</desc_name><desc_parameterlist/></desc_signature></desc>`+
		`</function_context>`))
	out := render(t, doc, Options{})

	sigs := findAll(out.Nodes, byClass(labelSignature))
	require.Len(t, sigs, 1)
	assert.Equal(t, "void init()", textOf(sigs[0]))
	assert.Equal(t, "voidinit-"+shortHash("()"), headingID(sigs[0]))
}

func TestParameterParts(t *testing.T) {
	doc := document(section("functions", `<function_context name="">`+
		`<desc objtype="function"><desc_signature ids="push"><desc_returns>void</desc_returns><desc_name>push</desc_name><desc_parameterlist>`+
		`<desc_parameter><desc_annotation>const</desc_annotation><desc_type>Value</desc_type><desc_ref>&amp;</desc_ref><desc_name>v</desc_name></desc_parameter>`+
		`<desc_parameter><desc_name>n</desc_name><default_value>1</default_value></desc_parameter>`+
		`</desc_parameterlist></desc_signature></desc></function_context>`))
	out := render(t, doc, Options{})

	params := findAll(out.Nodes, byClass(labelParam))
	require.Len(t, params, 2)
	assert.Equal(t, "const Value &v", textOf(params[0]))
	assert.Equal(t, "n=1", textOf(params[1]))
}

func TestPythonReturnsAfterName(t *testing.T) {
	doc := document(section("classes",
		`<desc objtype="class"><desc_signature ids="Store"><desc_annotation>class</desc_annotation><desc_addname>zk.</desc_addname><desc_name>Store</desc_name></desc_signature>`+
			`<desc_content><desc objtype="method"><desc_signature ids="size"><desc_name>size</desc_name><desc_parameterlist/><desc_returns>int</desc_returns></desc_signature></desc></desc_content></desc>`))
	out := render(t, doc, Options{})

	sigs := findAll(out.Nodes, byClass(labelSignature))
	require.Len(t, sigs, 2)
	assert.Equal(t, "class zk.Store", textOf(sigs[0]))
	assert.Equal(t, "size() → int", textOf(sigs[1]))
	assert.Equal(t, "3", attr(sigs[0], attrLevel))
	assert.Equal(t, "4", attr(sigs[1], attrLevel))
}

func TestClassPathClasses(t *testing.T) {
	doc := document(section("functions", `<function_context name="Memory">`+addFunction+`</function_context>`))
	out := render(t, doc, Options{})

	names := findAll(out.Nodes, func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "class") == "name signature__name"
	})
	assert.Len(t, names, 1)
	assert.Len(t, findAll(out.Nodes, byClass("function-context")), 1)
	assert.Len(t, findAll(out.Nodes, byClass("method")), 1)
}

func TestContextIsAValue(t *testing.T) {
	base := RootContext().WithLabel("class")
	a := base.WithLabel("body")
	b := base.WithLabel("signature")

	assert.Equal(t, []string{"class", "body"}, a.ClassPath)
	assert.Equal(t, []string{"class", "signature"}, b.ClassPath)
	assert.Equal(t, []string{"class"}, base.ClassPath)
	assert.Equal(t, "name signature__name", b.Classes("name"))
	assert.Equal(t, "class", RootContext().Classes("class"))
	assert.Equal(t, 2, base.Nested().HeadingLevel)
	assert.Equal(t, 1, base.HeadingLevel)
}

func TestRenderRejectsDeepNesting(t *testing.T) {
	inner := "<paragraph>x</paragraph>"
	for range 10 {
		inner = "<bullet_list><list_item>" + inner + "</list_item></bullet_list>"
	}
	_, err := New(Options{MaxDepth: 8}).Render(document(section("abstract", inner)))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryStructural))
}

func TestRenderRejectsNonDocument(t *testing.T) {
	_, err := New(Options{}).Render(doctree.New("section"))
	require.Error(t, err)
}

func TestHeadingIDDeterministic(t *testing.T) {
	a := HeadingID([]string{"int", " ", "add"}, []string{"(", "int", "a", ",", "int", "b", ")"})
	b := HeadingID([]string{"int", " ", "add"}, []string{"(", "int", "a", ",", "int", "b", ")"})
	c := HeadingID([]string{"int", " ", "add"}, []string{"(", "long", "a", ",", "int", "b", ")"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, "MYDEFINE", HeadingID([]string{"MY_DEFINE"}, nil))
	assert.Equal(t, `ns::Typeptr`, HeadingID([]string{`ns::Type \ptr`}, nil))
}

func TestAttributeIDEscapesPunctuation(t *testing.T) {
	assert.Equal(t, "intadd-df801e61", attributeID("intadd-df801e61"))
	assert.Equal(t, "ns::Type", attributeID("ns::Type"))
	assert.Equal(t, "char_ptr_dup-df801e61", attributeID("char*dup-df801e61"))
	assert.Equal(t, "std::vector_lt_int_gt_get", attributeID("std::vector<int>get"))
	assert.Equal(t, "→List_lb_str_rb_", attributeID("→List[str]"))
	assert.Equal(t, "a_x24_b", attributeID("a$b"))
	assert.NotEqual(t, attributeID("a*b"), attributeID("a&b"))
}

func TestHeadingAnchorsSurviveGoldmark(t *testing.T) {
	md := goldmark.New(goldmark.WithParserOptions(parser.WithAttribute()))
	members := map[string]string{
		"pointer return": `<desc objtype="function"><desc_signature ids="dup">` +
			`<desc_returns>char</desc_returns><desc_ref>*</desc_ref><desc_name>dup</desc_name>` +
			`<desc_parameterlist><desc_parameter><desc_annotation>const</desc_annotation><desc_type>char</desc_type>` +
			`<desc_ref>*</desc_ref><desc_name>s</desc_name></desc_parameter></desc_parameterlist></desc_signature></desc>`,
		"template": `<desc objtype="function"><desc_signature ids="get">` +
			`<desc_returns>std::vector&lt;int&gt;</desc_returns><desc_name>get</desc_name>` +
			`<desc_parameterlist/></desc_signature></desc>`,
		"generic return": `<desc objtype="function"><desc_signature ids="names">` +
			`<desc_name>names</desc_name><desc_parameterlist/><desc_returns>List[str]</desc_returns></desc_signature></desc>`,
	}
	for name, m := range members {
		t.Run(name, func(t *testing.T) {
			out := render(t, document(section("functions", `<function_context name="">`+m+`</function_context>`)), Options{})
			page, err := Serialize(out.Nodes)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, md.Convert([]byte(page), &buf))
			rendered := buf.String()
			assert.NotContains(t, rendered, "{#")
			assert.Regexp(t, `<h3 id="[^"*&<>\[\]()]+"`, rendered)
		})
	}
}

func TestDeepHeadingsAreClampedAndLogged(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	h := element(headingTag, "", html.Attribute{Key: attrLevel, Val: "8"})
	h.AppendChild(text("Deep"))
	page, err := Serialize([]*html.Node{h})
	require.NoError(t, err)

	assert.Equal(t, "###### Deep\n", page)
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "level=8")
}

func TestDuplicateAnchorsGetSuffix(t *testing.T) {
	out := render(t, document(section("functions", `<function_context name="">`+addFunction+addFunction+addFunction+`</function_context>`)), Options{})
	page, err := Serialize(out.Nodes)
	require.NoError(t, err)

	id := "intadd-" + shortHash("(inta,intb)")
	assert.Contains(t, page, "{#"+id+" ")
	assert.Contains(t, page, "{#"+id+"-2 ")
	assert.Contains(t, page, "{#"+id+"-3 ")
}

func TestTextFixes(t *testing.T) {
	doc := document(section("abstract",
		`<paragraph>Opens the ”store” file</paragraph>`+
			`<paragraph>Already done.</paragraph>`+
			`<paragraph>Call <literal>open</literal></paragraph>`+
			`<paragraph>A ’quoted’ word</paragraph>`),
		section("functions", `<function_context name="">`+
			`<desc objtype="function"><desc_signature ids="f"><desc_name>f</desc_name><desc_parameterlist>`+
			`<desc_parameter><desc_name>mode</desc_name><default_value>'r'</default_value></desc_parameter>`+
			`</desc_parameterlist></desc_signature></desc></function_context>`))
	out := render(t, doc, Options{})
	page, err := Serialize(out.Nodes)
	require.NoError(t, err)

	assert.Contains(t, page, "Opens the “store” file.</p>")
	assert.Contains(t, page, "Already done.</p>")
	assert.NotContains(t, page, "done..")
	assert.Contains(t, page, `<code class="literal paragraph__literal">open</code>.</p>`)
	assert.Contains(t, page, "‘quoted’ word.")
	assert.Contains(t, page, "&#34;r&#34;")

	again := render(t, doc, Options{})
	fixText(again.Nodes[1])
	fixText(again.Nodes[1])
	assert.Equal(t, 1, strings.Count(textOf(again.Nodes[1]), "file."))
}

func TestRendersNormalizedFixtures(t *testing.T) {
	for _, name := range []string{"cpp_add.xml", "python_api.xml", "c_api.xml"} {
		t.Run(name, func(t *testing.T) {
			raw, err := docmodel.ParseFile(filepath.Join("..", "normalize", "testdata", name))
			require.NoError(t, err)
			res, err := normalize.New(normalize.DefaultOptions()).Run(raw)
			require.NoError(t, err)

			out := render(t, res.Tree, Options{})
			assert.Zero(t, out.Diagnostics.Count())

			page, err := Serialize(out.Nodes)
			require.NoError(t, err)
			assert.NotContains(t, page, "<heading")
			assert.Contains(t, page, "{#")
		})
	}
}
