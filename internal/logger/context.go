package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context.
//
// ATF threads this through both cores: HookCore attaches/detaches carry
// InternalID and ConnID (when driven over the TCP API), MemCore expression
// evaluation carries Expr and TargetProcess.
type LogContext struct {
	TraceID       string // OpenTelemetry trace ID
	SpanID        string // OpenTelemetry span ID
	ConnID        uint64 // MessageServer client/connection ID
	RPCID         uint32 // wire rpcID being serviced
	TargetProcess string // process image name RemoteReader is attached to
	Expr          string // MemCore expression text being evaluated
	InternalID    int32  // HookCore internalID being attached/detached
	StartTime     time.Time
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext for a given target process.
func NewLogContext(targetProcess string) *LogContext {
	return &LogContext{
		TargetProcess: targetProcess,
		StartTime:     time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithConn returns a copy with the connection/rpc identity set
func (lc *LogContext) WithConn(connID uint64, rpcID uint32) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.ConnID = connID
		clone.RPCID = rpcID
	}
	return clone
}

// WithExpr returns a copy with the expression text set
func (lc *LogContext) WithExpr(expr string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Expr = expr
	}
	return clone
}

// WithInternalID returns a copy with the HookCore internalID set
func (lc *LogContext) WithInternalID(internalID int32) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.InternalID = internalID
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
