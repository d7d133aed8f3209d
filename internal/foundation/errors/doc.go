// Package errors provides classified error primitives used across hugoify.
//
// Three categories describe document faults:
//   - CategoryStructural: the tree shape violates an assumed invariant
//   - CategoryUnknownTag: a tag has no handling rule
//   - CategoryParsing: the docstring converter met an unrecognized field kind
//
// Tree errors record the offending node and its parent:
//
//	err := errors.StructuralError("unexpected child of desc_content").
//		At(child, parent).
//		Build()
package errors
