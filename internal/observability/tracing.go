package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Span is a lightweight in-process timing record. It carries just enough
// structure for the request middleware to log slow or failing report
// requests with a stable trace identity.
type Span struct {
	TraceID   string
	SpanID    string
	ParentID  string
	Operation string
	Started   time.Time
	Elapsed   time.Duration
	Tags      map[string]string
	Err       error
}

type spanContextKey struct{}

// StartSpan opens a span under any span already present on the context,
// inheriting its trace ID.
func StartSpan(ctx context.Context, operation string) (context.Context, *Span) {
	span := &Span{
		SpanID:    uuid.NewString(),
		Operation: operation,
		Started:   time.Now(),
		Tags:      make(map[string]string),
	}

	if parent := SpanFrom(ctx); parent != nil {
		span.TraceID = parent.TraceID
		span.ParentID = parent.SpanID
	} else {
		span.TraceID = uuid.NewString()
	}

	return context.WithValue(ctx, spanContextKey{}, span), span
}

// Finish records the span duration and logs failed spans.
func (s *Span) Finish() {
	s.Elapsed = time.Since(s.Started)

	if s.Err != nil {
		slog.Warn("span finished with error",
			"operation", s.Operation,
			"trace_id", s.TraceID,
			"duration", s.Elapsed,
			"error", s.Err,
		)
	}
}

func (s *Span) SetTag(key, value string) {
	s.Tags[key] = value
}

func (s *Span) SetError(err error) {
	s.Err = err
}

// SpanFrom returns the span on the context, or nil.
func SpanFrom(ctx context.Context) *Span {
	span, _ := ctx.Value(spanContextKey{}).(*Span)
	return span
}
