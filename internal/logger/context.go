package logger

import (
	"context"
	"time"
)

type contextKey struct{}

// LogContext holds request- or run-scoped fields that the *Ctx functions
// prepend to every record. Values are copied on modification, so a
// LogContext stored in a context is never mutated.
type LogContext struct {
	TraceID     string    // OpenTelemetry trace ID
	SpanID      string    // OpenTelemetry span ID
	RequestID   string    // HTTP request ID (chi middleware)
	ClientIP    string    // API client address (without port)
	Subject     string    // Authenticated API subject
	Housekeeper string    // Housekeeping task name (unused_tags, run_history)
	RunID       string    // Housekeeping run ID
	StartTime   time.Time // For duration calculation
}

// WithContext returns a new context carrying lc.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, contextKey{}, lc)
}

// FromContext returns the LogContext carried by ctx, or nil.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(contextKey{}).(*LogContext)
	return lc
}

// NewLogContext creates a LogContext starting now.
func NewLogContext() *LogContext {
	return &LogContext{StartTime: time.Now()}
}

// Clone returns a copy of lc. Cloning nil yields an empty LogContext.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return &LogContext{}
	}
	c := *lc
	return &c
}

// WithRequest returns a copy carrying the HTTP request identity.
func (lc *LogContext) WithRequest(requestID, clientIP string) *LogContext {
	c := lc.Clone()
	c.RequestID, c.ClientIP = requestID, clientIP
	return c
}

// WithSubject returns a copy carrying the authenticated subject.
func (lc *LogContext) WithSubject(subject string) *LogContext {
	c := lc.Clone()
	c.Subject = subject
	return c
}

// WithRun returns a copy scoped to one housekeeping run.
func (lc *LogContext) WithRun(housekeeper, runID string) *LogContext {
	c := lc.Clone()
	c.Housekeeper, c.RunID = housekeeper, runID
	return c
}

// WithTrace returns a copy carrying the trace and span IDs.
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	c := lc.Clone()
	c.TraceID, c.SpanID = traceID, spanID
	return c
}

// DurationMs returns the milliseconds elapsed since StartTime.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return Duration(lc.StartTime)
}

// attrs returns the non-empty fields as slog key/value pairs.
func (lc *LogContext) attrs() []any {
	fields := [...]struct{ key, val string }{
		{KeyTraceID, lc.TraceID},
		{KeySpanID, lc.SpanID},
		{KeyRequestID, lc.RequestID},
		{KeyClientIP, lc.ClientIP},
		{KeySubject, lc.Subject},
		{KeyHousekeeper, lc.Housekeeper},
		{KeyRunID, lc.RunID},
	}
	args := make([]any, 0, 2*len(fields))
	for _, f := range fields {
		if f.val != "" {
			args = append(args, f.key, f.val)
		}
	}
	return args
}
