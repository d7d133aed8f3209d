// Package metrics records build observations behind a Recorder interface.
//
// Components default to NoopRecorder, so callers never nil-check. A build that
// was given a metrics file uses PrometheusRecorder and writes the registry in
// the node_exporter textfile format once the batch ends.
package metrics
