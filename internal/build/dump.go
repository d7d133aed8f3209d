package build

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"

	"git.home.luguber.info/inful/hugoify/internal/doctree"
	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
)

// stageDumps collects the tree after each normalization stage and writes them
// next to the page as <page>.<n>-<stage>.xml. Disabled dumps ignore everything.
type stageDumps struct {
	page    string
	enabled bool
	trees   []stageDump
}

type stageDump struct {
	stage string
	xml   []byte
}

func newStageDumps(page string, enabled bool) *stageDumps {
	return &stageDumps{page: page, enabled: enabled}
}

// observe serializes tree right away, since later stages work on copies and
// the observed tree must not be retained.
func (d *stageDumps) observe(stage string, tree *doctree.Node, err error) {
	if !d.enabled || tree == nil {
		return
	}
	var buf bytes.Buffer
	if err != nil {
		fmt.Fprintf(&buf, "<!-- stage failed: %s -->\n", strings.ReplaceAll(err.Error(), "--", "- -"))
	}
	if encErr := doctree.Encode(&buf, tree); encErr != nil {
		return
	}
	d.trees = append(d.trees, stageDump{stage: stage, xml: buf.Bytes()})
}

// path returns the dump file for the n-th stage.
func (d *stageDumps) path(n int, stage string) string {
	return fmt.Sprintf("%s.%d-%s.xml", d.page, n, stage)
}

// flush writes every collected dump.
func (d *stageDumps) flush() error {
	var result *multierror.Error
	for i, t := range d.trees {
		if err := os.WriteFile(d.path(i+1, t.stage), t.xml, 0o644); err != nil {
			result = multierror.Append(result, errors.WrapError(err, errors.CategoryFileSystem, "failed to write stage dump").
				WithContext("stage", t.stage).
				Build())
		}
	}
	d.trees = nil
	return result.ErrorOrNil()
}
