package build

import (
	"os"
	"strings"
	"time"

	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
	"git.home.luguber.info/inful/hugoify/internal/frontmatterops"
)

// PageEditWarning follows the front matter of every generated page.
const PageEditWarning = `
<!--

################################################################################

WARNING: DO NOT EDIT THIS PAGE MANUALLY!

################################################################################

This template should only be used for automatically-generated API documentation.

DO NOT edit the content of this page manually, as it will be overwritten
the next time the API documentation is automatically updated.

################################################################################

WARNING: DO NOT EDIT THIS PAGE MANUALLY!

################################################################################

//-->

`

// page is a composed output page before it is written.
type page struct {
	path   string
	fields map[string]any
	body   []byte
	status frontmatterops.Status
}

// composePage stamps the page and classifies it against the file at path.
func composePage(path string, info frontmatterops.PageInfo, markup string) (*page, error) {
	p := &page{
		path:   path,
		fields: frontmatterops.BaseFields(info),
		body:   []byte(PageEditWarning + strings.TrimLeft(markup, "\n")),
	}
	fp, err := frontmatterops.Stamp(p.fields, p.body)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to fingerprint page").Build()
	}

	previous, prevBody, err := readPrevious(path)
	if err != nil {
		return nil, err
	}
	p.status = frontmatterops.Classify(previous, fp)
	if p.status == frontmatterops.StatusUnchanged && !frontmatterops.Verify(previous, prevBody) {
		p.status = frontmatterops.StatusChanged
	}
	if p.status == frontmatterops.StatusChanged {
		frontmatterops.KeepDate(p.fields, previous)
	}
	return p, nil
}

// readPrevious returns the front matter and body of the existing page, nil
// fields when there is none. A page whose front matter cannot be read counts
// as changed.
func readPrevious(path string) (map[string]any, []byte, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read existing page").
			WithContext("path", path).
			Build()
	}
	fields, body, _, err := frontmatterops.Read(content)
	if err != nil || fields == nil {
		return map[string]any{}, nil, nil
	}
	return fields, body, nil
}

// write stores the page unless it is unchanged.
func (p *page) write() error {
	if p.status == frontmatterops.StatusUnchanged {
		return nil
	}
	content, err := frontmatterops.Write(p.fields, p.body)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to serialize front matter").Build()
	}
	if err := os.WriteFile(p.path, content, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write page").
			WithContext("path", p.path).
			Build()
	}
	return nil
}

func pageInfo(stem, title, description string, now time.Time) frontmatterops.PageInfo {
	return frontmatterops.PageInfo{Stem: stem, Title: title, Description: description, Now: now}
}
