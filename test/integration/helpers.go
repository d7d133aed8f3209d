package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/inful/mdfp"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/hugoify/internal/frontmatterops"
)

// ContentStructure is the golden view of an output directory.
type ContentStructure struct {
	Files map[string]ContentFile `json:"files"`
}

// ContentFile is one page with its front matter and its section outline.
type ContentFile struct {
	FrontMatter map[string]any `json:"frontmatter"`
	Sections    []string       `json:"sections"`
}

// sectionHeading matches a level two heading and captures its text without
// the attribute block.
var sectionHeading = regexp.MustCompile(`(?m)^## (.+?)(?: \{[^}]*\})?$`)

// copyFixtures copies the named XML fixtures into a fresh input directory.
func copyFixtures(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		// #nosec G304 -- test utility reading fixtures from testdata
		data, err := os.ReadFile(filepath.Join("..", "..", "internal", "normalize", "testdata", name))
		require.NoError(t, err, "failed to read fixture %s", name)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o600))
	}
	return dir
}

// normalizeFrontMatter drops the fields that change between runs and the
// fingerprint, which follows the body byte for byte.
func normalizeFrontMatter(fm map[string]any) {
	delete(fm, frontmatterops.KeyDate)
	delete(fm, frontmatterops.KeyLastmod)
	delete(fm, mdfp.FingerprintField)
}

func sectionOutline(body []byte) []string {
	var out []string
	for _, m := range sectionHeading.FindAllStringSubmatch(string(body), -1) {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}

// scanContent reads every page in outputDir into a ContentStructure.
func scanContent(t *testing.T, outputDir string) ContentStructure {
	t.Helper()
	pages, err := filepath.Glob(filepath.Join(outputDir, "*.md"))
	require.NoError(t, err)
	sort.Strings(pages)

	cs := ContentStructure{Files: map[string]ContentFile{}}
	for _, page := range pages {
		// #nosec G304 -- reading generated test output
		data, err := os.ReadFile(page)
		require.NoError(t, err)
		fm, body, had, err := frontmatterops.Read(data)
		require.NoError(t, err)
		require.True(t, had, "page %s has no front matter", page)
		normalizeFrontMatter(fm)

		cs.Files[filepath.Base(page)] = ContentFile{FrontMatter: fm, Sections: sectionOutline(body)}
	}
	return cs
}

// verifyContentStructure compares outputDir against a golden file. With
// update set the golden file is rewritten instead. A missing golden file fails.
func verifyContentStructure(t *testing.T, outputDir, goldenPath string, update bool) {
	t.Helper()
	actual := scanContent(t, outputDir)
	data, err := json.MarshalIndent(actual, "", "  ")
	require.NoError(t, err, "failed to marshal content structure")

	if update {
		require.NoError(t, os.MkdirAll(filepath.Dir(goldenPath), 0o750))
		require.NoError(t, os.WriteFile(goldenPath, append(data, '\n'), 0o600))
		t.Logf("Updated golden file: %s", goldenPath)
		return
	}

	// #nosec G304 -- test utility reading golden file from testdata
	goldenData, err := os.ReadFile(goldenPath)
	require.NoError(t, err, "failed to read golden file %s; run with -update-golden to create it", goldenPath)

	// Both sides go through JSON so numbers and lists compare alike.
	var expected, got any
	require.NoError(t, json.Unmarshal(goldenData, &expected))
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, expected, got, "content structure differs from %s", goldenPath)
}
