package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for ATF operations.
// These follow OpenTelemetry semantic conventions where applicable.
const (
	// ========================================================================
	// MessageServer / connection attributes
	// ========================================================================
	AttrConnID     = "server.conn_id"
	AttrRemoteAddr = "server.remote_addr"
	AttrRPCID      = "server.rpc_id"
	AttrFrameLen   = "server.frame_len"
	AttrWorkerID   = "server.worker_id"

	// ========================================================================
	// HookCore attributes
	// ========================================================================
	AttrInternalID   = "hook.internal_id"
	AttrFuncID       = "hook.func_id"
	AttrFuncName     = "hook.func_name"
	AttrHandlerAddr  = "hook.handler_addr"
	AttrDetourAddr   = "hook.detour_addr"
	AttrOriginalAddr = "hook.original_addr"
	AttrHookMode     = "hook.mode"
	AttrHookState    = "hook.state"
	AttrHandlerCount = "hook.handler_count"

	// ========================================================================
	// MemCore attributes
	// ========================================================================
	AttrTargetProcess = "mem.target_process"
	AttrPID           = "mem.pid"
	AttrExpr          = "expr.text"
	AttrNamePath      = "expr.name_path"
	AttrNodeID        = "reflect.node_id"
	AttrNodeKind      = "reflect.node_kind"
	AttrAddress       = "mem.address"
	AttrBaseAddress   = "mem.base_address"
	AttrByteSize      = "mem.byte_size"
	AttrModule        = "mem.module"

	// ========================================================================
	// Operation status attributes
	// ========================================================================
	AttrStatus    = "op.status"
	AttrStatusMsg = "op.status_msg"
	AttrErrorCode = "op.error_code"
)

// Span names for ATF operations.
// Format: <component>.<operation>
const (
	// HookCore
	SpanHookAttach    = "hook.attach"
	SpanHookDetach    = "hook.detach"
	SpanHookDetachAll = "hook.detach_all"
	SpanHookInstall   = "hook.install"

	// MemCore
	SpanMemRead   = "mem.read"
	SpanExprParse = "expr.parse"
	SpanExprBuild = "expr.build"
	SpanExprEval  = "expr.eval"

	// MessageServer
	SpanServerAccept  = "server.accept"
	SpanServerRequest = "server.request"
	SpanServerDispatch = "server.dispatch"
)

// ConnID returns an attribute for the MessageServer connection ID.
func ConnID(id uint64) attribute.KeyValue {
	return attribute.Int64(AttrConnID, int64(id))
}

// RemoteAddr returns an attribute for the TCP peer address.
func RemoteAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrRemoteAddr, addr)
}

// RPCID returns an attribute for the wire rpcID.
func RPCID(id uint32) attribute.KeyValue {
	return attribute.Int64(AttrRPCID, int64(id))
}

// FrameLen returns an attribute for a frame's payload length.
func FrameLen(n uint32) attribute.KeyValue {
	return attribute.Int64(AttrFrameLen, int64(n))
}

// WorkerID returns an attribute for a worker-pool goroutine index.
func WorkerID(n int) attribute.KeyValue {
	return attribute.Int(AttrWorkerID, n)
}

// InternalID returns an attribute for a HookCore internal identifier.
func InternalID(id int32) attribute.KeyValue {
	return attribute.Int64(AttrInternalID, int64(id))
}

// FuncID returns an attribute for a reflection catalogue function ID.
func FuncID(id uint32) attribute.KeyValue {
	return attribute.Int64(AttrFuncID, int64(id))
}

// FuncName returns an attribute for a resolved function name.
func FuncName(name string) attribute.KeyValue {
	return attribute.String(AttrFuncName, name)
}

// HandlerAddr returns an attribute for an attached handler address.
func HandlerAddr(addr uint64) attribute.KeyValue {
	return attribute.String(AttrHandlerAddr, fmt.Sprintf("0x%x", addr))
}

// DetourAddr returns an attribute for an installed detour address.
func DetourAddr(addr uint64) attribute.KeyValue {
	return attribute.String(AttrDetourAddr, fmt.Sprintf("0x%x", addr))
}

// OriginalAddr returns an attribute for an original function entry address.
func OriginalAddr(addr uint64) attribute.KeyValue {
	return attribute.String(AttrOriginalAddr, fmt.Sprintf("0x%x", addr))
}

// HookMode returns an attribute for the hook mode (pre, hook, post).
func HookMode(mode string) attribute.KeyValue {
	return attribute.String(AttrHookMode, mode)
}

// HookState returns an attribute for the resulting EnumHookState.
func HookState(state string) attribute.KeyValue {
	return attribute.String(AttrHookState, state)
}

// HandlerCount returns an attribute for handler list length after mutation.
func HandlerCount(n int) attribute.KeyValue {
	return attribute.Int(AttrHandlerCount, n)
}

// TargetProcess returns an attribute for the inspected process image name.
func TargetProcess(name string) attribute.KeyValue {
	return attribute.String(AttrTargetProcess, name)
}

// PID returns an attribute for the target process ID.
func PID(pid int32) attribute.KeyValue {
	return attribute.Int64(AttrPID, int64(pid))
}

// Expr returns an attribute for expression text.
func Expr(expr string) attribute.KeyValue {
	return attribute.String(AttrExpr, expr)
}

// NamePath returns an attribute for a slash-joined view name path.
func NamePath(path string) attribute.KeyValue {
	return attribute.String(AttrNamePath, path)
}

// NodeID returns an attribute for a reflection catalogue node ID.
func NodeID(id uint32) attribute.KeyValue {
	return attribute.Int64(AttrNodeID, int64(id))
}

// NodeKind returns an attribute for a resolved type node's kind.
func NodeKind(kind string) attribute.KeyValue {
	return attribute.String(AttrNodeKind, kind)
}

// Address returns an attribute for a resolved remote memory address.
func Address(addr uint64) attribute.KeyValue {
	return attribute.String(AttrAddress, fmt.Sprintf("0x%x", addr))
}

// BaseAddress returns an attribute for a module base-address override.
func BaseAddress(addr uint64) attribute.KeyValue {
	return attribute.String(AttrBaseAddress, fmt.Sprintf("0x%x", addr))
}

// ByteSize returns an attribute for a size in bytes.
func ByteSize(n uint32) attribute.KeyValue {
	return attribute.Int64(AttrByteSize, int64(n))
}

// Module returns an attribute for a target module/image name.
func Module(name string) attribute.KeyValue {
	return attribute.String(AttrModule, name)
}

// Status returns an attribute for a generic operation status code.
func Status(status int) attribute.KeyValue {
	return attribute.Int(AttrStatus, status)
}

// StatusMsg returns an attribute for a human-readable status message.
func StatusMsg(msg string) attribute.KeyValue {
	return attribute.String(AttrStatusMsg, msg)
}

// ErrorCode returns an attribute for a categorical error code.
func ErrorCode(code string) attribute.KeyValue {
	return attribute.String(AttrErrorCode, code)
}

// StartHookSpan starts a span for a HookCore attach/detach operation.
func StartHookSpan(ctx context.Context, spanName string, internalID int32, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{InternalID(internalID)}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, spanName, trace.WithAttributes(allAttrs...))
}

// StartMemSpan starts a span for a MemCore remote-memory read.
func StartMemSpan(ctx context.Context, target string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{TargetProcess(target)}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, SpanMemRead, trace.WithAttributes(allAttrs...))
}

// StartExprSpan starts a span for a MemCore expression pipeline stage.
func StartExprSpan(ctx context.Context, spanName, expr string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{Expr(expr)}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, spanName, trace.WithAttributes(allAttrs...))
}

// StartServerSpan starts a span for a MessageServer connection operation.
func StartServerSpan(ctx context.Context, spanName string, connID uint64, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{ConnID(connID)}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, spanName, trace.WithAttributes(allAttrs...))
}
