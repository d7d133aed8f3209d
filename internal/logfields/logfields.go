package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyFile       = "file"
	KeyOutput     = "output"
	KeyDialect    = "dialect"
	KeyStage      = "stage"
	KeyTag        = "tag"
	KeyObjType    = "objtype"
	KeyStatus     = "status"
	KeyWarnings   = "warnings"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func File(path string) slog.Attr      { return slog.String(KeyFile, path) }
func Output(path string) slog.Attr    { return slog.String(KeyOutput, path) }
func Dialect(d string) slog.Attr      { return slog.String(KeyDialect, d) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Tag(tag string) slog.Attr        { return slog.String(KeyTag, tag) }
func ObjType(t string) slog.Attr      { return slog.String(KeyObjType, t) }
func Status(s string) slog.Attr       { return slog.String(KeyStatus, s) }
func Warnings(n int) slog.Attr        { return slog.Int(KeyWarnings, n) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
