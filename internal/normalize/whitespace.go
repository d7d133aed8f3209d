package normalize

import (
	"slices"
	"strings"

	"git.home.luguber.info/inful/hugoify/internal/docmodel"
	"git.home.luguber.info/inful/hugoify/internal/doctree"
)

// layoutTags hold only elements; any text directly inside them is indentation.
var layoutTags = []string{
	docmodel.TagDocument, docmodel.TagSection, docmodel.TagFunctionContext,
	docmodel.TagDesc, docmodel.TagContent, docmodel.TagParameterList,
	docmodel.TagParamList, docmodel.TagParam, docmodel.TagExceptionList, docmodel.TagException,
	docmodel.TagDescription, docmodel.TagReturnValue, docmodel.TagReturnType,
	docmodel.TagBulletList, docmodel.TagEnumeratedList, docmodel.TagListItem,
	"definition_list", "definition_list_item", "definition", "field_list", "field", "field_body",
	"container", "block_quote", "section",
}

// signatureTags are layout once the signature has been canonicalized.
var signatureTags = []string{docmodel.TagSignature, docmodel.TagParameter}

// trimLayout clears whitespace-only text in layout elements and whitespace-only
// tails of their children.
func trimLayout(root *doctree.Node, extra ...string) {
	root.Walk(func(n *doctree.Node) bool {
		if !slices.Contains(layoutTags, n.Tag) && !slices.Contains(extra, n.Tag) {
			return true
		}
		if strings.TrimSpace(n.Text) == "" {
			n.Text = ""
		}
		for _, c := range n.Children {
			if strings.TrimSpace(c.Tail) == "" {
				c.Tail = ""
			}
		}
		return true
	})
}
