package build

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
)

const (
	inputExt        = ".xml"
	outputExt       = ".md"
	generatedPrefix = "GENERATED_"
)

// OutputName maps an input file name to its page name: a GENERATED_ prefix is
// dropped and the extension becomes .md.
func OutputName(input string) string {
	base := strings.TrimPrefix(filepath.Base(input), generatedPrefix)
	return strings.TrimSuffix(base, filepath.Ext(base)) + outputExt
}

// Discover lists the XML trees directly inside dir, sorted by name.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read input directory").
			WithContext("path", dir).
			Build()
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), inputExt) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	slices.Sort(files)
	return files, nil
}
