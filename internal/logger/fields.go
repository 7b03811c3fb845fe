package logger

import "log/slog"

// Standard field keys for structured logging.
// Use these keys consistently across all log statements for log aggregation and querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// MessageServer / wire protocol
	// ========================================================================
	KeyConnID     = "conn_id"     // MessageServer client connection identifier
	KeyRPCID      = "rpc_id"      // wire rpcID correlating request/response frames
	KeyRemoteAddr = "remote_addr" // TCP peer address
	KeyFrameLen   = "frame_len"   // length-prefixed frame payload size
	KeyQueueDepth = "queue_depth" // inbound request queue depth
	KeyWorkerID   = "worker_id"   // worker-pool goroutine index
	KeyNumWorkers = "num_workers" // configured worker-pool size

	// ========================================================================
	// HookCore
	// ========================================================================
	KeyInternalID   = "internal_id"   // stable per-function internal identifier
	KeyFuncID       = "func_id"       // reflection catalogue function ID
	KeyFuncName     = "func_name"     // resolved function name
	KeyHandlerAddr  = "handler_addr"  // attached handler function pointer
	KeyDetourAddr   = "detour_addr"   // installed detour trampoline address
	KeyOriginalAddr = "original_addr" // original function entry address
	KeyHookMode     = "hook_mode"     // pre-observer, hook, or post-observer
	KeyHookState    = "hook_state"    // EnumHookState result of an attach/detach
	KeyHandlerCount = "handler_count" // number of handlers in a list after mutation

	// ========================================================================
	// MemCore
	// ========================================================================
	KeyTargetProcess = "target_process" // process image name being inspected
	KeyPID           = "pid"            // target process ID
	KeyExpr          = "expr"           // expression text being compiled/evaluated
	KeyNamePath      = "name_path"      // slash-joined view name path (a/b/c)
	KeyNodeID        = "node_id"        // reflection catalogue node ID
	KeyNodeKind      = "node_kind"      // NodeKind of a resolved type node
	KeyAddress       = "address"        // resolved remote memory address
	KeyBaseAddress   = "base_address"   // module base address override
	KeyByteSize      = "byte_size"      // size in bytes of a read or type
	KeyModule        = "module"         // target module/image name

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // operation duration in milliseconds
	KeyError      = "error"       // error message
	KeyErrorCode  = "error_code"  // categorical error code
	KeySource     = "source"      // originating subsystem
	KeyOperation  = "operation"   // sub-operation type for complex operations
	KeyComponent  = "component"   // component name (hookcore, memcore, server, ...)
	KeyVersion    = "version"     // ATF build/API version
	KeyAttempt    = "attempt"     // retry attempt number
	KeyMaxRetries = "max_retries" // maximum retry attempts
)

// ----------------------------------------------------------------------------
// Distributed Tracing
// ----------------------------------------------------------------------------

func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }
func SpanID(id string) slog.Attr  { return slog.String(KeySpanID, id) }

// ----------------------------------------------------------------------------
// MessageServer / wire protocol
// ----------------------------------------------------------------------------

func ConnID(id uint64) slog.Attr    { return slog.Uint64(KeyConnID, id) }
func RPCID(id uint32) slog.Attr     { return slog.Any(KeyRPCID, id) }
func RemoteAddr(a string) slog.Attr { return slog.String(KeyRemoteAddr, a) }
func FrameLen(n uint32) slog.Attr   { return slog.Any(KeyFrameLen, n) }
func QueueDepth(n int) slog.Attr    { return slog.Int(KeyQueueDepth, n) }
func WorkerID(n int) slog.Attr      { return slog.Int(KeyWorkerID, n) }
func NumWorkers(n int) slog.Attr    { return slog.Int(KeyNumWorkers, n) }

// ----------------------------------------------------------------------------
// HookCore
// ----------------------------------------------------------------------------

func InternalID(id int32) slog.Attr      { return slog.Any(KeyInternalID, id) }
func FuncID(id uint32) slog.Attr         { return slog.Any(KeyFuncID, id) }
func FuncName(name string) slog.Attr     { return slog.String(KeyFuncName, name) }
func HandlerAddr(addr uint64) slog.Attr  { return slog.Uint64(KeyHandlerAddr, addr) }
func DetourAddr(addr uint64) slog.Attr   { return slog.Uint64(KeyDetourAddr, addr) }
func OriginalAddr(addr uint64) slog.Attr { return slog.Uint64(KeyOriginalAddr, addr) }
func HookMode(mode string) slog.Attr     { return slog.String(KeyHookMode, mode) }
func HookState(state string) slog.Attr   { return slog.String(KeyHookState, state) }
func HandlerCount(n int) slog.Attr       { return slog.Int(KeyHandlerCount, n) }

// ----------------------------------------------------------------------------
// MemCore
// ----------------------------------------------------------------------------

func TargetProcess(name string) slog.Attr { return slog.String(KeyTargetProcess, name) }
func PID(pid int32) slog.Attr             { return slog.Any(KeyPID, pid) }
func Expr(expr string) slog.Attr          { return slog.String(KeyExpr, expr) }
func NamePath(path string) slog.Attr      { return slog.String(KeyNamePath, path) }
func NodeID(id uint32) slog.Attr          { return slog.Any(KeyNodeID, id) }
func NodeKind(kind string) slog.Attr      { return slog.String(KeyNodeKind, kind) }
func Address(addr uint64) slog.Attr       { return slog.Uint64(KeyAddress, addr) }
func BaseAddress(addr uint64) slog.Attr   { return slog.Uint64(KeyBaseAddress, addr) }
func ByteSize(n uint32) slog.Attr         { return slog.Any(KeyByteSize, n) }
func Module(name string) slog.Attr        { return slog.String(KeyModule, name) }

// ----------------------------------------------------------------------------
// Operation Metadata
// ----------------------------------------------------------------------------

func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Err returns a slog.Attr for an error, or a zero Attr (omitted by slog) if nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

func ErrorCode(code string) slog.Attr { return slog.String(KeyErrorCode, code) }
func Source(src string) slog.Attr     { return slog.String(KeySource, src) }
func Operation(op string) slog.Attr   { return slog.String(KeyOperation, op) }
func Component(name string) slog.Attr { return slog.String(KeyComponent, name) }
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func Attempt(n int) slog.Attr         { return slog.Int(KeyAttempt, n) }
func MaxRetries(n int) slog.Attr      { return slog.Int(KeyMaxRetries, n) }
