package hook

import (
	"fmt"
	"sync"
	"time"

	"github.com/atfkit/atf/internal/logger"
	"github.com/atfkit/atf/pkg/metrics"
)

// AttachRecord remembers one successful attach so a view can enumerate or
// unwind its own handlers without the caller having to track mode/address
// pairs itself.
type AttachRecord struct {
	Mode        HookMode
	HandlerAddr uint64
	FuncID      uint32
	FuncName    string
	NamePath    NamePath
}

// groupResolver is the piece of HookRoot a HookView needs: mapping an
// internal function id to its HandlerGroup and resolved name.
type groupResolver interface {
	groupFor(funcID uint32) (*HandlerGroup, string, EnumHookState)
	rootSignature() (Signature, bool)
	hookMetrics() metrics.HookMetrics
}

// HookView is one node of the hook tree. Every attach/detach call is
// gated by its own AccessFlags and walks up to the shared HandlerGroup
// registry owned by the tree's HookRoot. A view's own mutex only guards
// its bookkeeping list (attached); it never holds that lock while calling
// into a HandlerGroup, so there is no reentrant-locking requirement here
// -- a design choice that sidesteps Go's lack of a recursive mutex rather
// than emulating one (see DESIGN.md).
type HookView struct {
	name     string
	namePath NamePath
	access   AccessFlags
	resolver groupResolver
	parent   *HookView

	mu       sync.Mutex
	attached []AttachRecord

	informCallback func(AttachRecord, EnumHookState)
}

func newHookView(resolver groupResolver, parent *HookView, name string, access AccessFlags) *HookView {
	var parentPath NamePath
	if parent != nil {
		parentPath = parent.namePath
	}
	return &HookView{
		name:     name,
		namePath: parentPath.Append(name),
		access:   access,
		resolver: resolver,
		parent:   parent,
	}
}

// CreateView returns a child view. The child's access is masked by the
// parent's -- a child can only ever be as permissive as its parent, never
// more.
func (v *HookView) CreateView(name string, access AccessFlags) *HookView {
	return newHookView(v.resolver, v, name, access&v.access)
}

// OnChange registers a callback informed of every attach/detach this view
// performs, successful or not. Passing nil clears it.
func (v *HookView) OnChange(fn func(AttachRecord, EnumHookState)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.informCallback = fn
}

// Name returns this view's own name.
func (v *HookView) Name() string { return v.name }

// Path returns the full name chain from the tree root to this view.
func (v *HookView) Path() NamePath { return v.namePath }

// Attach places handlerAddr on funcID's mode list, installing the
// function's detour on demand. It fails ErrorAccess if this view's flags
// don't permit mode, and ErrorAlreadyExists if this view already has
// handlerAddr attached under any mode -- an AttachRecord is unique by
// handlerAddr within a single view, independent of mode.
func (v *HookView) Attach(funcID uint32, mode HookMode, handlerAddr uint64) (EnumHookState, uint64) {
	return v.attachChecked(nil, funcID, mode, handlerAddr)
}

// AttachVersioned is Attach for a caller (e.g. a plugin loaded from a
// separately compiled binary, reached over the TCP API) reporting its own
// build signature, which must match the tree's root signature end-to-end.
func (v *HookView) AttachVersioned(callerSig Signature, funcID uint32, mode HookMode, handlerAddr uint64) (EnumHookState, uint64) {
	return v.attachChecked(&callerSig, funcID, mode, handlerAddr)
}

func (v *HookView) attachChecked(callerSig *Signature, funcID uint32, mode HookMode, handlerAddr uint64) (EnumHookState, uint64) {
	start := time.Now()
	state, gate := v.attachCheckedUntimed(callerSig, funcID, mode, handlerAddr)
	if m := v.resolver.hookMetrics(); m != nil {
		errCode := ""
		if state != Done {
			errCode = state.String()
		}
		m.RecordAttach(mode.String(), time.Since(start), errCode)
	}
	return state, gate
}

func (v *HookView) attachCheckedUntimed(callerSig *Signature, funcID uint32, mode HookMode, handlerAddr uint64) (EnumHookState, uint64) {
	if callerSig != nil {
		if rootSig, ok := v.resolver.rootSignature(); ok {
			if state, compatible := rootSig.Compatible(*callerSig); !compatible {
				v.inform(AttachRecord{Mode: mode, HandlerAddr: handlerAddr, FuncID: funcID}, state)
				return state, 0
			}
		}
	}

	if !v.access.Permits(mode) {
		v.inform(AttachRecord{Mode: mode, HandlerAddr: handlerAddr, FuncID: funcID}, ErrorAccess)
		return ErrorAccess, 0
	}

	v.mu.Lock()
	for _, r := range v.attached {
		if r.HandlerAddr == handlerAddr {
			v.mu.Unlock()
			v.inform(AttachRecord{Mode: mode, HandlerAddr: handlerAddr, FuncID: funcID}, ErrorAlreadyExists)
			return ErrorAlreadyExists, 0
		}
	}
	v.mu.Unlock()

	group, name, state := v.resolver.groupFor(funcID)
	if state != Done {
		v.inform(AttachRecord{Mode: mode, HandlerAddr: handlerAddr, FuncID: funcID}, state)
		return state, 0
	}

	rec := AttachRecord{Mode: mode, HandlerAddr: handlerAddr, FuncID: funcID, FuncName: name, NamePath: v.namePath}

	result, gate := group.Attach(mode, handlerAddr)
	if result == Done {
		v.mu.Lock()
		v.attached = append(v.attached, rec)
		v.mu.Unlock()
	}
	v.inform(rec, result)
	return result, gate
}

// Detach looks up handlerAddr in this view's own AttachRecords first
// (ErrorNotFound if absent here, regardless of whether some other view
// holds it), then removes it from funcID's mode list.
func (v *HookView) Detach(funcID uint32, mode HookMode, handlerAddr uint64) EnumHookState {
	result := v.detachUntimed(funcID, mode, handlerAddr)
	if m := v.resolver.hookMetrics(); m != nil {
		errCode := ""
		if result != Done {
			errCode = result.String()
		}
		m.RecordDetach(errCode)
	}
	return result
}

func (v *HookView) detachUntimed(funcID uint32, mode HookMode, handlerAddr uint64) EnumHookState {
	v.mu.Lock()
	found := false
	for _, r := range v.attached {
		if r.HandlerAddr == handlerAddr {
			found = true
			break
		}
	}
	v.mu.Unlock()
	if !found {
		return ErrorNotFound
	}

	group, name, state := v.resolver.groupFor(funcID)
	if state != Done {
		return state
	}

	rec := AttachRecord{Mode: mode, HandlerAddr: handlerAddr, FuncID: funcID, FuncName: name, NamePath: v.namePath}

	result := group.Detach(mode, handlerAddr)
	if result == Done {
		v.mu.Lock()
		for i, r := range v.attached {
			if r.FuncID == funcID && r.Mode == mode && r.HandlerAddr == handlerAddr {
				v.attached = append(v.attached[:i], v.attached[i+1:]...)
				break
			}
		}
		v.mu.Unlock()
	}
	v.inform(rec, result)
	return result
}

// detachAll unwinds every handler this view currently owns, stopping at
// the first failure. It is intentionally unexported: per the source's own
// open question, "detach everything" is a convenience a view performs on
// itself, never a HookMode a caller can address directly -- exposing it
// as one would let an unrelated caller silently nuke every handler of
// every mode in one call.
func (v *HookView) detachAll() EnumHookState {
	v.mu.Lock()
	snapshot := make([]AttachRecord, len(v.attached))
	copy(snapshot, v.attached)
	v.mu.Unlock()

	removed := 0
	defer func() {
		if m := v.resolver.hookMetrics(); m != nil {
			m.RecordDetachAll(removed)
		}
	}()

	for _, rec := range snapshot {
		if st := v.detachUntimed(rec.FuncID, rec.Mode, rec.HandlerAddr); st != Done {
			return st
		}
		removed++
	}
	return Done
}

// Close detaches every handler owned by this view. It is the exported
// entry point for tearing a view down.
func (v *HookView) Close() EnumHookState {
	return v.detachAll()
}

// inform fires this view's own OnChange callback, then walks up to every
// ancestor in turn and fires theirs too -- spec's "a separate inform
// callback is fanned out down the tree after each successful or failed
// operation" / step 7 ("the view walks up to parents to let them invoke
// their inform callback").
func (v *HookView) inform(rec AttachRecord, state EnumHookState) {
	logger.Debug("hook attempt",
		logger.NamePath(v.namePath.String()),
		logger.FuncID(rec.FuncID),
		logger.FuncName(rec.FuncName),
		logger.HandlerAddr(rec.HandlerAddr),
		logger.HookMode(rec.Mode.String()),
		logger.HookState(state.String()),
	)

	for view := v; view != nil; view = view.parent {
		view.mu.Lock()
		cb := view.informCallback
		view.mu.Unlock()
		if cb != nil {
			cb(rec, state)
		}
	}
}

// Rows returns a snapshot of this view's attach records, in attach order,
// for a caller (e.g. a CLI table renderer) to format.
func (v *HookView) Rows() []AttachRecord {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]AttachRecord, len(v.attached))
	copy(out, v.attached)
	return out
}

// InfoText renders a plain-text summary of this view's attached handlers,
// one line per record.
func (v *HookView) InfoText() string {
	rows := v.Rows()
	if len(rows) == 0 {
		return fmt.Sprintf("%s: no handlers attached", v.namePath.String())
	}
	out := ""
	for _, r := range rows {
		out += fmt.Sprintf("%s: %s @ 0x%x [%s]\n", v.namePath.String(), r.FuncName, r.HandlerAddr, r.Mode)
	}
	return out
}
