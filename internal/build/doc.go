// Package build runs a hugoify batch: every XML tree in the input directory is
// normalized, rendered and written as a Hugo page in the output directory.
//
// Documents are processed one after another and fail independently. A failed
// document leaves its previous page untouched; the failures of a run are
// aggregated into the error Run returns.
package build
