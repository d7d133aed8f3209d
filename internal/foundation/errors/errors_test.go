package errors

import (
	"errors"
	"fmt"
	"testing"
)

type fakeNode string

func (n fakeNode) String() string { return string(n) }

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "hugoify.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		file, exists := err.Context().GetString("file")
		if !exists || file != "hugoify.yaml" {
			t.Errorf("expected context file=hugoify.yaml, got %v", file)
		}
	})

	t.Run("Tree errors carry node and parent", func(t *testing.T) {
		err := StructuralError("unexpected child").
			At(fakeNode("<table>"), fakeNode("<desc_content>")).
			Build()

		if !err.IsFatal() {
			t.Error("expected structural error to be fatal")
		}
		if err.Node() != fakeNode("<table>") {
			t.Errorf("expected node to be recorded, got %v", err.Node())
		}
		if err.Parent() != fakeNode("<desc_content>") {
			t.Errorf("expected parent to be recorded, got %v", err.Parent())
		}
		want := "[structural:fatal] unexpected child at <table> (parent <desc_content>)"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})

	t.Run("Unknown tag records the tag", func(t *testing.T) {
		err := UnknownTagError("desc:widget").Build()
		tag, ok := err.Context().GetString("tag")
		if !ok || tag != "desc:widget" {
			t.Errorf("expected tag context, got %q", tag)
		}
	})
}

func TestErrorDetectionThroughWrapping(t *testing.T) {
	inner := ParsingError("unrecognized field kind \"note\"").Build()
	wrapped := fmt.Errorf("convert docstring: %w", inner)

	if !IsClassified(wrapped) {
		t.Fatal("expected wrapped error to be classified")
	}
	if !HasCategory(wrapped, CategoryParsing) {
		t.Error("expected parsing category")
	}
	if GetCategory(errors.New("plain")) != CategoryInternal {
		t.Error("expected unclassified errors to map to internal")
	}
	if GetSeverity(errors.New("plain")) != SeverityError {
		t.Error("expected unclassified errors to map to error severity")
	}
}

func TestErrorBuilderWrap(t *testing.T) {
	original := errors.New("permission denied")
	err := WrapError(original, CategoryFileSystem, "write output").
		Warning().
		WithContext("path", "out/python.md").
		Build()

	if !errors.Is(err, original) {
		t.Error("expected error to wrap original error")
	}
	if err.Severity() != SeverityWarning {
		t.Errorf("expected warning severity, got %s", err.Severity())
	}
	if !errors.Is(err, NewError(CategoryFileSystem, "write output").Build()) {
		t.Error("expected Is to match on category and message")
	}
}
