package logger

import (
	"log/slog"
	"time"
)

// Standard field keys. Every package logs through these so records from the
// API, the runner and the cleaner can be joined on the same names.
const (
	// Tracing
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// HTTP
	KeyRequestID = "request_id"
	KeyClientIP  = "client_ip"
	KeySubject   = "subject" // authenticated token subject
	KeyMethod    = "method"
	KeyPath      = "path"
	KeyStatus    = "status"

	// Catalog
	KeyTagID            = "tag_id"
	KeyTagLabel         = "tag_label"
	KeyTagIDs           = "tag_ids"
	KeyReleaseProfileID = "release_profile_id"
	KeyAutoTagID        = "auto_tag_id"

	// Housekeeping
	KeyHousekeeper = "housekeeper"
	KeyRunID       = "run_id"
	KeySourceName  = "source"
	KeyDryRun      = "dry_run"
	KeyReferenced  = "referenced"
	KeyDeleted     = "deleted"
	KeyCount       = "count"
	KeyInterval    = "interval"

	KeyDurationMs = "duration_ms"
	KeyError      = "error"
)

// Method returns a slog.Attr for an HTTP method.
func Method(m string) slog.Attr { return slog.String(KeyMethod, m) }

// Path returns a slog.Attr for a request path.
func Path(p string) slog.Attr { return slog.String(KeyPath, p) }

// Status returns a slog.Attr for an HTTP status code.
func Status(code int) slog.Attr { return slog.Int(KeyStatus, code) }

// TagID returns a slog.Attr for a tag identifier.
func TagID(id uint) slog.Attr { return slog.Uint64(KeyTagID, uint64(id)) }

// TagLabel returns a slog.Attr for a tag label.
func TagLabel(label string) slog.Attr { return slog.String(KeyTagLabel, label) }

// ReleaseProfileID returns a slog.Attr for a release profile identifier.
func ReleaseProfileID(id uint) slog.Attr { return slog.Uint64(KeyReleaseProfileID, uint64(id)) }

// AutoTagID returns a slog.Attr for an auto-tagging rule identifier.
func AutoTagID(id uint) slog.Attr { return slog.Uint64(KeyAutoTagID, uint64(id)) }

// Housekeeper returns a slog.Attr for a housekeeping task name.
func Housekeeper(name string) slog.Attr { return slog.String(KeyHousekeeper, name) }

// SourceName returns a slog.Attr for a tag reference source.
func SourceName(name string) slog.Attr { return slog.String(KeySourceName, name) }

// DryRun returns a slog.Attr for the dry-run flag.
func DryRun(dryRun bool) slog.Attr { return slog.Bool(KeyDryRun, dryRun) }

// Count returns a slog.Attr for a generic count.
func Count(n int) slog.Attr { return slog.Int(KeyCount, n) }

// Deleted returns a slog.Attr for removed rows.
func Deleted(n int) slog.Attr { return slog.Int(KeyDeleted, n) }

// Interval returns a slog.Attr for a scheduler interval.
func Interval(d time.Duration) slog.Attr { return slog.Duration(KeyInterval, d) }

// DurationMs returns a slog.Attr for a duration in milliseconds.
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Err returns a slog.Attr for err. A nil error yields an empty attribute,
// which slog drops.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
