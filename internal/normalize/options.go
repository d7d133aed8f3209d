package normalize

import (
	"time"

	"git.home.luguber.info/inful/hugoify/internal/docstring"
	"git.home.luguber.info/inful/hugoify/internal/doctree"
)

// DefaultExceptionSuffix marks C++ classes that document exceptions.
const DefaultExceptionSuffix = "Exception"

// ConvertFunc turns docstring text into tree fragments.
type ConvertFunc func(text string) ([]*doctree.Node, error)

// StageObserver is told about every finished stage. The tree must not be modified.
type StageObserver func(stage string, tree *doctree.Node, elapsed time.Duration, err error)

// Options configure one pipeline run. There is no package-level state; every
// tunable travels in this value.
type Options struct {
	// ExceptionSuffix is the C++ class-name suffix that marks exception classes.
	ExceptionSuffix string
	// Convert expands verbatim docstring blocks. Defaults to docstring.Convert.
	Convert ConvertFunc
	// Observer, when set, receives each stage's output tree.
	Observer StageObserver
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		ExceptionSuffix: DefaultExceptionSuffix,
		Convert:         docstring.Convert,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ExceptionSuffix == "" {
		o.ExceptionSuffix = d.ExceptionSuffix
	}
	if o.Convert == nil {
		o.Convert = d.Convert
	}
	return o
}
