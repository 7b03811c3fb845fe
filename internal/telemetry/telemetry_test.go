package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "atf", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.ServiceVersion)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Enabled = false

	shutdown, err := Init(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	// Should be able to call shutdown without error
	err = shutdown(ctx)
	assert.NoError(t, err)

	// Should not be enabled
	assert.False(t, IsEnabled())
}

func TestTracerReturnsNoOp(t *testing.T) {
	// Reset state
	tracer = nil
	enabled = false

	// Without initialization, should return no-op tracer
	tr := Tracer()
	require.NotNil(t, tr)
}

func TestStartSpan(t *testing.T) {
	ctx := context.Background()

	// Even without initialization, StartSpan should work (no-op)
	newCtx, span := StartSpan(ctx, "test.operation")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)

	// Should be able to end the span
	span.End()
}

func TestSpanFromContext(t *testing.T) {
	ctx := context.Background()

	// Should return a span even without active span
	span := SpanFromContext(ctx)
	require.NotNil(t, span)
}

func TestAddEvent(t *testing.T) {
	ctx := context.Background()

	// Should not panic with no active span
	require.NotPanics(t, func() {
		AddEvent(ctx, "test.event")
	})
}

func TestRecordError(t *testing.T) {
	ctx := context.Background()

	// Should not panic with nil error
	require.NotPanics(t, func() {
		RecordError(ctx, nil)
	})

	// Should not panic with error
	require.NotPanics(t, func() {
		RecordError(ctx, errors.New("test error"))
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Ok, "success")
	})

	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Error, "failed")
	})
}

func TestSetAttributes(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	require.NotPanics(t, func() {
		SetAttributes(ctx, RemoteAddr("192.168.1.1:9000"))
	})
}

func TestTraceID(t *testing.T) {
	ctx := context.Background()

	// Without active span, should return empty string
	traceID := TraceID(ctx)
	assert.Equal(t, "", traceID)
}

func TestSpanID(t *testing.T) {
	ctx := context.Background()

	// Without active span, should return empty string
	spanID := SpanID(ctx)
	assert.Equal(t, "", spanID)
}

func TestAttributeHelpers(t *testing.T) {
	t.Run("ConnID", func(t *testing.T) {
		attr := ConnID(7)
		assert.Equal(t, AttrConnID, string(attr.Key))
		assert.Equal(t, int64(7), attr.Value.AsInt64())
	})

	t.Run("RemoteAddr", func(t *testing.T) {
		attr := RemoteAddr("192.168.1.100:12345")
		assert.Equal(t, AttrRemoteAddr, string(attr.Key))
		assert.Equal(t, "192.168.1.100:12345", attr.Value.AsString())
	})

	t.Run("RPCID", func(t *testing.T) {
		attr := RPCID(0x12345678)
		assert.Equal(t, AttrRPCID, string(attr.Key))
		assert.Equal(t, int64(0x12345678), attr.Value.AsInt64())
	})

	t.Run("InternalID", func(t *testing.T) {
		attr := InternalID(42)
		assert.Equal(t, AttrInternalID, string(attr.Key))
		assert.Equal(t, int64(42), attr.Value.AsInt64())
	})

	t.Run("FuncName", func(t *testing.T) {
		attr := FuncName("CMyClass::Update")
		assert.Equal(t, AttrFuncName, string(attr.Key))
		assert.Equal(t, "CMyClass::Update", attr.Value.AsString())
	})

	t.Run("HandlerAddr", func(t *testing.T) {
		attr := HandlerAddr(0x1000)
		assert.Equal(t, AttrHandlerAddr, string(attr.Key))
		assert.Equal(t, "0x1000", attr.Value.AsString())
	})

	t.Run("HookMode", func(t *testing.T) {
		attr := HookMode("hook")
		assert.Equal(t, AttrHookMode, string(attr.Key))
		assert.Equal(t, "hook", attr.Value.AsString())
	})

	t.Run("HookState", func(t *testing.T) {
		attr := HookState("OK")
		assert.Equal(t, AttrHookState, string(attr.Key))
		assert.Equal(t, "OK", attr.Value.AsString())
	})

	t.Run("HandlerCount", func(t *testing.T) {
		attr := HandlerCount(3)
		assert.Equal(t, AttrHandlerCount, string(attr.Key))
		assert.Equal(t, int64(3), attr.Value.AsInt64())
	})

	t.Run("TargetProcess", func(t *testing.T) {
		attr := TargetProcess("notepad.exe")
		assert.Equal(t, AttrTargetProcess, string(attr.Key))
		assert.Equal(t, "notepad.exe", attr.Value.AsString())
	})

	t.Run("PID", func(t *testing.T) {
		attr := PID(1234)
		assert.Equal(t, AttrPID, string(attr.Key))
		assert.Equal(t, int64(1234), attr.Value.AsInt64())
	})

	t.Run("Expr", func(t *testing.T) {
		attr := Expr("player.health")
		assert.Equal(t, AttrExpr, string(attr.Key))
		assert.Equal(t, "player.health", attr.Value.AsString())
	})

	t.Run("Address", func(t *testing.T) {
		attr := Address(0x1000)
		assert.Equal(t, AttrAddress, string(attr.Key))
		assert.Equal(t, "0x1000", attr.Value.AsString())
	})

	t.Run("ByteSize", func(t *testing.T) {
		attr := ByteSize(4096)
		assert.Equal(t, AttrByteSize, string(attr.Key))
		assert.Equal(t, int64(4096), attr.Value.AsInt64())
	})

	t.Run("Status", func(t *testing.T) {
		attr := Status(0)
		assert.Equal(t, AttrStatus, string(attr.Key))
		assert.Equal(t, int64(0), attr.Value.AsInt64())
	})
}

func TestStartHookSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartHookSpan(ctx, SpanHookAttach, 42)
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	// With additional attributes
	newCtx2, span2 := StartHookSpan(ctx, SpanHookDetach, 42, HookMode("hook"))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}

func TestStartMemSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartMemSpan(ctx, "notepad.exe")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	// With additional attributes
	newCtx2, span2 := StartMemSpan(ctx, "notepad.exe", ByteSize(8))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}

func TestStartExprSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartExprSpan(ctx, SpanExprEval, "player.health")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}
