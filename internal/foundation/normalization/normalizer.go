// Package normalization maps loosely written configuration strings onto typed
// enumerations.
package normalization

import (
	"fmt"
	"slices"
	"strings"
)

// Func canonicalises a raw string before lookup.
type Func func(string) string

// Fold trims surrounding space and lower-cases.
func Fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Normalizer converts strings to values of an enumeration.
type Normalizer[T comparable] struct {
	fold         Func
	values       map[string]T
	defaultValue T
	keys         []string
}

// NewNormalizer builds a Normalizer that folds input with Fold.
func NewNormalizer[T comparable](values map[string]T, defaultValue T) *Normalizer[T] {
	return WithFunc(values, defaultValue, Fold)
}

// WithFunc builds a Normalizer with a custom canonicalisation.
func WithFunc[T comparable](values map[string]T, defaultValue T, fold Func) *Normalizer[T] {
	n := &Normalizer[T]{
		fold:         fold,
		values:       make(map[string]T, len(values)),
		defaultValue: defaultValue,
	}
	for k, v := range values {
		key := fold(k)
		n.values[key] = v
		n.keys = append(n.keys, key)
	}
	slices.Sort(n.keys)
	return n
}

// Normalize returns the value for raw, or the default when raw is unknown.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.values[n.fold(raw)]; ok {
		return v
	}
	return n.defaultValue
}

// NormalizeWithError returns the value for raw or an error listing the valid keys.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	if v, ok := n.values[n.fold(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q, valid options: %v", raw, n.keys)
}

// Contains reports whether value is one of the enumeration's values.
func (n *Normalizer[T]) Contains(value T) bool {
	for _, v := range n.values {
		if v == value {
			return true
		}
	}
	return false
}

// ValidKeys returns the accepted spellings, sorted.
func (n *Normalizer[T]) ValidKeys() []string {
	return slices.Clone(n.keys)
}

// EnumNormalizer is a Normalizer that names its enumeration in errors.
type EnumNormalizer[T comparable] struct {
	*Normalizer[T]
	name string
}

// NewEnumNormalizer builds an EnumNormalizer called name.
func NewEnumNormalizer[T comparable](name string, values map[string]T, defaultValue T) *EnumNormalizer[T] {
	return &EnumNormalizer[T]{Normalizer: NewNormalizer(values, defaultValue), name: name}
}

// NormalizeWithValidation is NormalizeWithError with the enumeration's name in the error.
func (e *EnumNormalizer[T]) NormalizeWithValidation(raw string) (T, error) {
	v, err := e.NormalizeWithError(raw)
	if err != nil {
		return v, fmt.Errorf("invalid %s: %w", e.name, err)
	}
	return v, nil
}
