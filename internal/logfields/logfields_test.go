package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"RunID", KeyRunID, "r1", RunID("r1")},
		{"File", KeyFile, "python.xml", File("python.xml")},
		{"Output", KeyOutput, "python.md", Output("python.md")},
		{"Dialect", KeyDialect, "c++", Dialect("c++")},
		{"Stage", KeyStage, "adapt", Stage("adapt")},
		{"Tag", KeyTag, "desc", Tag("desc")},
		{"ObjType", KeyObjType, "method", ObjType("method")},
		{"Status", KeyStatus, "NEW", Status("NEW")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if tc.attr.Value.String() != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %s", tc.name, tc.attrVal, tc.attr.Value.String())
		}
	}
}

func TestNumericHelpers(t *testing.T) {
	if a := Warnings(3); a.Key != KeyWarnings || a.Value.Int64() != 3 {
		t.Fatalf("unexpected warnings attr %v", a)
	}
	if a := Count(2); a.Key != KeyCount || a.Value.Int64() != 2 {
		t.Fatalf("unexpected count attr %v", a)
	}
	if a := DurationMS(1.5); a.Key != KeyDurationMS || a.Value.Float64() != 1.5 {
		t.Fatalf("unexpected duration attr %v", a)
	}
}

func TestErrorHelper(t *testing.T) {
	if a := Error(nil); a.Value.String() != "" {
		t.Fatalf("expected empty error value, got %q", a.Value.String())
	}
	if a := Error(errors.New("boom")); a.Value.String() != "boom" {
		t.Fatalf("expected boom, got %q", a.Value.String())
	}
}
