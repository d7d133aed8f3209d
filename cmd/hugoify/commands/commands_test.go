package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/hugoify/internal/eventstore"
	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("hugoify"), kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)

	var out bytes.Buffer
	err = ctx.Run(&Global{Out: &out}, &cli)
	return out.String(), err
}

func inputWith(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if content == "" {
			data, err := os.ReadFile(filepath.Join("..", "..", "..", "internal", "normalize", "testdata", name))
			require.NoError(t, err)
			content = string(data)
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func TestBuild_WritesPagesAndMetrics(t *testing.T) {
	in := inputWith(t, map[string]string{"cpp_add.xml": ""})
	out := filepath.Join(t.TempDir(), "docs")
	metricsFile := filepath.Join(t.TempDir(), "hugoify.prom")

	stdout, err := run(t, "build", "-i", in, "-o", out, "--metrics-file", metricsFile, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Processed 1 documents")
	assert.Contains(t, stdout, "1 new")

	assert.FileExists(t, filepath.Join(out, "cpp_add.md"))
	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "hugoify_")
}

func TestBuild_IsDefaultCommand(t *testing.T) {
	in := inputWith(t, map[string]string{"cpp_add.xml": ""})
	out := filepath.Join(t.TempDir(), "docs")

	_, err := run(t, "-i", in, "-o", out, "--log-level", "error")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "cpp_add.md"))
}

func TestBuild_ReportsFailures(t *testing.T) {
	in := inputWith(t, map[string]string{
		"cpp_add.xml": "",
		"broken.xml":  "<document><section>",
	})
	out := filepath.Join(t.TempDir(), "docs")

	stdout, err := run(t, "build", "-i", in, "-o", out, "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, stdout, "1 failed")
	assert.Contains(t, err.Error(), "1 of 2 documents failed")

	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.NotEqual(t, errors.CategoryInternal, ce.Category())
	assert.FileExists(t, filepath.Join(out, "cpp_add.md"))
}

func TestBuild_RejectsSameInputAndOutput(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "build", "-i", dir, "-o", dir)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestHistory_ListsRecordedRuns(t *testing.T) {
	in := inputWith(t, map[string]string{"cpp_add.xml": ""})
	out := filepath.Join(t.TempDir(), "docs")
	db := filepath.Join(t.TempDir(), "history.db")

	_, err := run(t, "build", "-i", in, "-o", out, "--history-db", db, "--log-level", "error")
	require.NoError(t, err)
	_, err = run(t, "build", "-i", in, "-o", out, "--history-db", db, "--log-level", "error")
	require.NoError(t, err)

	stdout, err := run(t, "history", "--history-db", db, "--json", "--log-level", "error")
	require.NoError(t, err)
	var runs []eventstore.RunSummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &runs))
	require.Len(t, runs, 2)
	assert.Equal(t, eventstore.RunStatusCompleted, runs[0].Status)
	assert.Equal(t, 1, runs[0].Counts["UNCHANGED"])
	assert.Equal(t, 1, runs[1].Counts["NEW"])

	table, err := run(t, "history", "--history-db", db, "-n", "1", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, table, "STATUS")
	assert.Contains(t, table, "unchanged=1")
	assert.NotContains(t, table, "new=1")
}

func TestHistory_RequiresDatabase(t *testing.T) {
	_, err := run(t, "history", "--log-level", "error")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestExceptionSuffixHelpNamesCPP(t *testing.T) {
	field, ok := reflect.TypeOf(RunFlags{}).FieldByName("ExceptionSuffix")
	require.True(t, ok)
	help := field.Tag.Get("help")
	assert.Contains(t, help, "C++")
	assert.NotContains(t, help, "Python")
}
