package frontmatterops

import (
	"fmt"
	"strings"
	"time"

	"github.com/inful/mdfp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Front matter keys written on every page.
const (
	KeyTitle       = "title"
	KeyDescription = "description"
	KeyDate        = "date"
	KeyLastmod     = "lastmod"
	KeyDraft       = "draft"
	KeyImages      = "images"
	KeyType        = "type"
	KeyLayout      = "layout"
	KeyWeight      = "weight"
	KeyTOC         = "toc"
)

// DateLayout is the Hugo date format used for date and lastmod.
const DateLayout = "2006-01-02T15:04:05-07:00"

// Order is the order keys are written in.
var Order = []string{
	KeyTitle, KeyDescription, KeyDate, KeyLastmod, KeyDraft, KeyImages,
	KeyType, KeyLayout, KeyWeight, KeyTOC, mdfp.FingerprintField,
}

var titleCaser = cases.Title(language.English)

// LanguageLabel derives the language shown in titles from an output file stem:
// the part before the first underscore, with "cpp" spelled C++.
func LanguageLabel(stem string) string {
	lang, _, _ := strings.Cut(stem, "_")
	lang = strings.ToLower(strings.TrimSpace(lang))
	switch lang {
	case "":
		return "API"
	case "cpp", "c++":
		return "C++"
	}
	return titleCaser.String(lang)
}

// PageInfo is what a page's base fields are built from.
type PageInfo struct {
	// Stem is the output file name without extension.
	Stem        string
	Title       string
	Description string
	Now         time.Time
}

// BaseFields builds the front matter of a generated page. A missing title or
// description falls back to one naming the language.
func BaseFields(p PageInfo) map[string]any {
	lang := LanguageLabel(p.Stem)
	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = fmt.Sprintf("%s API Documentation", lang)
	}
	description := strings.TrimSpace(p.Description)
	if description == "" {
		description = fmt.Sprintf("This is the official documentation for the %s API library.", lang)
	}
	stamp := p.Now.Format(DateLayout)
	return map[string]any{
		KeyTitle:       title,
		KeyDescription: description,
		KeyDate:        stamp,
		KeyLastmod:     stamp,
		KeyDraft:       false,
		KeyImages:      []string{},
		KeyType:        "docs",
		KeyLayout:      "single",
		KeyWeight:      0,
		KeyTOC:         true,
	}
}

// KeepDate carries the date of a previous version of the page over, so a
// regenerated page only moves lastmod.
func KeepDate(fields, previous map[string]any) (changed bool) {
	if previous == nil {
		return false
	}
	old, ok := previous[KeyDate].(string)
	if !ok || strings.TrimSpace(old) == "" || fields[KeyDate] == old {
		return false
	}
	fields[KeyDate] = old
	return true
}
