package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for catalog and housekeeping operations.
const (
	// ========================================================================
	// API attributes
	// ========================================================================
	AttrClientIP  = "client.ip"
	AttrRequestID = "http.request_id"
	AttrSubject   = "auth.subject"

	// ========================================================================
	// Catalog attributes
	// ========================================================================
	AttrTagID     = "tag.id"
	AttrTagCount  = "tag.count"
	AttrStoreType = "store.type"

	// ========================================================================
	// Housekeeping attributes
	// ========================================================================
	AttrHousekeeper    = "housekeeping.name"
	AttrRunID          = "housekeeping.run_id"
	AttrDryRun         = "housekeeping.dry_run"
	AttrSource         = "housekeeping.source"
	AttrTagsScanned    = "housekeeping.tags_scanned"
	AttrTagsReferenced = "housekeeping.tags_referenced"
	AttrTagsDeleted    = "housekeeping.tags_deleted"
)

// Span names.
// Format: <component>.<operation>
const (
	SpanHousekeepingRun   = "housekeeping.run"
	SpanHousekeeperClean  = "housekeeping.clean"
	SpanSourceQuery       = "housekeeping.source"
	SpanStoreAllTagIDs    = "store.all_tag_ids"
	SpanStoreDeleteTags   = "store.delete_tags"
	SpanStoreListProfiles = "store.list_release_profiles"
	SpanStoreListAutoTags = "store.list_auto_tags"
)

// ClientIP returns an attribute for client IP address
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// RequestID returns an attribute for the HTTP request ID
func RequestID(id string) attribute.KeyValue {
	return attribute.String(AttrRequestID, id)
}

// Subject returns an attribute for the authenticated subject
func Subject(sub string) attribute.KeyValue {
	return attribute.String(AttrSubject, sub)
}

// TagID returns an attribute for a tag identifier
func TagID(id uint) attribute.KeyValue {
	return attribute.Int64(AttrTagID, int64(id))
}

// TagCount returns an attribute for a number of tags
func TagCount(n int) attribute.KeyValue {
	return attribute.Int(AttrTagCount, n)
}

// StoreType returns an attribute for the database backend
func StoreType(t string) attribute.KeyValue {
	return attribute.String(AttrStoreType, t)
}

// Housekeeper returns an attribute for the housekeeping task name
func Housekeeper(name string) attribute.KeyValue {
	return attribute.String(AttrHousekeeper, name)
}

// RunID returns an attribute for the housekeeping run ID
func RunID(id string) attribute.KeyValue {
	return attribute.String(AttrRunID, id)
}

// DryRun returns an attribute for the dry-run flag
func DryRun(dryRun bool) attribute.KeyValue {
	return attribute.Bool(AttrDryRun, dryRun)
}

// Source returns an attribute for a tag reference source name
func Source(name string) attribute.KeyValue {
	return attribute.String(AttrSource, name)
}

// TagsScanned returns an attribute for the number of catalog tags examined
func TagsScanned(n int) attribute.KeyValue {
	return attribute.Int(AttrTagsScanned, n)
}

// TagsReferenced returns an attribute for the number of referenced tags
func TagsReferenced(n int) attribute.KeyValue {
	return attribute.Int(AttrTagsReferenced, n)
}

// TagsDeleted returns an attribute for the number of deleted tags
func TagsDeleted(n int) attribute.KeyValue {
	return attribute.Int(AttrTagsDeleted, n)
}

// StartHousekeepingSpan starts the span wrapping one housekeeper execution
// inside a run.
func StartHousekeepingSpan(ctx context.Context, housekeeper, runID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{Housekeeper(housekeeper), RunID(runID)}, attrs...)
	return StartSpan(ctx, SpanHousekeeperClean,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(allAttrs...),
	)
}

// StartSourceSpan starts a span for one tag reference source query.
func StartSourceSpan(ctx context.Context, source string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{Source(source)}, attrs...)
	return StartSpan(ctx, SpanSourceQuery,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(allAttrs...),
	)
}

// StartStoreSpan starts a span for a store operation.
func StartStoreSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}
