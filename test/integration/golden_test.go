package integration

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/hugoify/internal/build"
	"git.home.luguber.info/inful/hugoify/internal/frontmatterops"
)

var updateGolden = flag.Bool("update-golden", false, "Update golden files")

var headingIDs = regexp.MustCompile(`(?m)^#{1,6} .*\{#([^ }]+)`)

func runBuild(t *testing.T, in, out string) *build.Result {
	t.Helper()
	res, err := build.NewService().Run(context.Background(), build.Options{
		InputDir:  in,
		OutputDir: out,
		Trigger:   "test",
	})
	require.NoError(t, err)
	return res
}

// TestGolden_AllDialects converts one document per dialect and compares the
// result with the recorded output.
func TestGolden_AllDialects(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping golden test in short mode")
	}
	in := copyFixtures(t, "c_api.xml", "cpp_add.xml", "python_api.xml")
	out := t.TempDir()

	res := runBuild(t, in, out)
	require.Len(t, res.Files, 3)
	for _, f := range res.Files {
		assert.Equal(t, frontmatterops.StatusNew, f.Status, f.File)
	}

	verifyContentStructure(t, out, "../testdata/golden/all-dialects.json", *updateGolden)
}

// TestGolden_RebuildIsStable runs the same input twice: the second run must
// leave every page byte for byte as it was.
func TestGolden_RebuildIsStable(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping golden test in short mode")
	}
	in := copyFixtures(t, "c_api.xml", "cpp_add.xml", "python_api.xml")
	out := t.TempDir()

	runBuild(t, in, out)
	first := snapshot(t, out)

	res := runBuild(t, in, out)
	for _, f := range res.Files {
		assert.Equal(t, frontmatterops.StatusUnchanged, f.Status, f.File)
	}
	assert.Equal(t, first, snapshot(t, out))
}

// TestGolden_PageShape checks what every generated page has in common.
func TestGolden_PageShape(t *testing.T) {
	in := copyFixtures(t, "c_api.xml", "cpp_add.xml", "python_api.xml")
	out := t.TempDir()
	runBuild(t, in, out)

	for name, content := range snapshot(t, out) {
		fm, body, had, err := frontmatterops.Read([]byte(content))
		require.NoError(t, err, name)
		require.True(t, had, name)

		assert.NotEmpty(t, fm[frontmatterops.KeyTitle], name)
		assert.NotEmpty(t, fm[frontmatterops.KeyDescription], name)
		assert.Equal(t, "docs", fm[frontmatterops.KeyType], name)
		assert.True(t, frontmatterops.Verify(fm, body), "%s fails its own fingerprint", name)
		assert.True(t, strings.HasPrefix(string(body), build.PageEditWarning), name)

		seen := map[string]bool{}
		for _, m := range headingIDs.FindAllStringSubmatch(string(body), -1) {
			assert.False(t, seen[m[1]], "%s: duplicate heading id %s", name, m[1])
			seen[m[1]] = true
		}
	}
}

func snapshot(t *testing.T, dir string) map[string]string {
	t.Helper()
	pages, err := filepath.Glob(filepath.Join(dir, "*.md"))
	require.NoError(t, err)
	out := make(map[string]string, len(pages))
	for _, p := range pages {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		out[filepath.Base(p)] = string(data)
	}
	return out
}
