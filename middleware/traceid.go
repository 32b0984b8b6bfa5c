package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

const (
	TraceIDKey    = "trace_id"
	TraceIDHeader = "X-Trace-ID"
)

type traceCtxKey struct{}

// TraceID tags every request with a trace id, echoed in the response header
// and carried on both the Gin context and the request context. A caller
// supplied id is kept when it is a short printable token; otherwise a ULID
// is minted so ids sort by arrival.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := cleanID(c.GetHeader(TraceIDHeader))
		if id == "" {
			id = ulid.Make().String()
		}
		c.Set(TraceIDKey, id)
		c.Header(TraceIDHeader, id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), traceCtxKey{}, id))
		c.Next()
	}
}

// GetTraceID returns the trace id of the request, or "".
func GetTraceID(c *gin.Context) string {
	return c.GetString(TraceIDKey)
}

// TraceIDFrom returns the trace id stored on ctx by TraceID, or "".
func TraceIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(traceCtxKey{}).(string)
	return id
}
