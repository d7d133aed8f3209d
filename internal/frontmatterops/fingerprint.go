package frontmatterops

import (
	"errors"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/hugoify/internal/frontmatter"
)

// Status classifies a page against the version already on disk.
type Status string

const (
	StatusNew       Status = "NEW"
	StatusChanged   Status = "CHANGED"
	StatusUnchanged Status = "UNCHANGED"
)

// volatileKeys never take part in the fingerprint: they change on every run
// without the page content changing.
var volatileKeys = map[string]bool{
	mdfp.FingerprintField: true,
	KeyDate:               true,
	KeyLastmod:            true,
}

// ComputeFingerprint hashes the page body together with the stable front
// matter fields, serialized sorted with LF newlines.
func ComputeFingerprint(fields map[string]any, body []byte) (string, error) {
	if fields == nil {
		return "", errors.New("fields map is nil")
	}
	stable := make(map[string]any, len(fields))
	for k, v := range fields {
		if !volatileKeys[k] {
			stable[k] = v
		}
	}
	raw, err := frontmatter.SerializeYAML(stable)
	if err != nil {
		return "", err
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(raw), "\n"), string(body)), nil
}

// Stamp computes the fingerprint and stores it in fields.
func Stamp(fields map[string]any, body []byte) (string, error) {
	fp, err := ComputeFingerprint(fields, body)
	if err != nil {
		return "", err
	}
	fields[mdfp.FingerprintField] = fp
	return fp, nil
}

// Classify compares a freshly stamped fingerprint with the fields of the page
// on disk; previous is nil when there is no such page.
func Classify(previous map[string]any, fingerprint string) Status {
	if previous == nil {
		return StatusNew
	}
	if old, _ := previous[mdfp.FingerprintField].(string); strings.TrimSpace(old) == fingerprint {
		return StatusUnchanged
	}
	return StatusChanged
}

// Verify reports whether the stored fingerprint of a page still matches its
// fields and body. A page edited by hand after generation fails verification.
func Verify(fields map[string]any, body []byte) bool {
	stored, _ := fields[mdfp.FingerprintField].(string)
	if strings.TrimSpace(stored) == "" {
		return false
	}
	actual, err := ComputeFingerprint(fields, body)
	return err == nil && actual == strings.TrimSpace(stored)
}
