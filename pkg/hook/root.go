package hook

import (
	"sync"

	"github.com/atfkit/atf/pkg/metrics"
	reflectcat "github.com/atfkit/atf/pkg/reflect"
)

// funcCatalogue is the slice of ReflectionCatalogue that HookRoot depends
// on: resolving an internal function id to its FuncInfo. Expressed as an
// interface so tests can stand in a fake without building a full
// Catalogue.
type funcCatalogue interface {
	FuncInfo(id int) reflectcat.FuncInfo
	FuncCount() int
}

// HookRoot is the terminal HookView: its attach/detach bind directly into
// the per-function HandlerGroup registry, using the installer callback
// registered once via SetInstaller. It is a single process-wide instance;
// every other HookView in the tree is a descendant created through
// CreateView.
type HookRoot struct {
	*HookView

	catalogue funcCatalogue
	signature Signature
	hasSig    bool
	metrics   metrics.HookMetrics

	mu     sync.Mutex
	groups map[uint32]*HandlerGroup

	installerMu sync.Mutex
	installer   Installer
}

// NewHookRoot constructs the process-wide hook tree root over catalogue,
// with full access and the empty name path. m may be nil to disable
// metrics collection.
func NewHookRoot(catalogue funcCatalogue, m metrics.HookMetrics) *HookRoot {
	root := &HookRoot{
		catalogue: catalogue,
		groups:    make(map[uint32]*HandlerGroup),
		metrics:   m,
	}
	root.HookView = newHookView(root, nil, "", AllAccess)
	return root
}

// SetSignature records the build signature that every AttachVersioned
// caller must match. Without a signature set, version checks are skipped
// -- only in-process callers using the plain Attach are expected then.
func (r *HookRoot) SetSignature(sig Signature) {
	r.signature = sig
	r.hasSig = true
}

func (r *HookRoot) rootSignature() (Signature, bool) {
	return r.signature, r.hasSig
}

func (r *HookRoot) hookMetrics() metrics.HookMetrics {
	return r.metrics
}

// SetInstaller registers the OS-specific trampoline installer used to
// place every detour from here on. Intended to be called exactly once,
// at startup, before any Attach.
func (r *HookRoot) SetInstaller(installer Installer) {
	r.installerMu.Lock()
	defer r.installerMu.Unlock()
	r.installer = installer
}

// groupFor implements groupResolver: resolves funcID to a FuncInfo via
// the catalogue (ErrorInternal if invalid, matching funcInfo(id) returning
// {valid:false}) and lazily creates the function's HandlerGroup.
func (r *HookRoot) groupFor(funcID uint32) (*HandlerGroup, string, EnumHookState) {
	info := r.catalogue.FuncInfo(int(funcID))
	if !info.Valid {
		return nil, "", ErrorInternal
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	group, ok := r.groups[funcID]
	if !ok {
		r.installerMu.Lock()
		installer := r.installer
		r.installerMu.Unlock()
		if installer == nil {
			return nil, info.Name, ErrorInternal
		}
		group = NewHandlerGroup(funcID, info.Address, installer, r.metrics)
		r.groups[funcID] = group
	}
	return group, info.Name, Done
}

// GateAddr returns the dispatch-gate address currently installed for
// funcID, or 0 if no detour has been placed for it yet.
func (r *HookRoot) GateAddr(funcID uint32) uint64 {
	r.mu.Lock()
	group, ok := r.groups[funcID]
	r.mu.Unlock()
	if !ok {
		return 0
	}
	group.mu.Lock()
	defer group.mu.Unlock()
	return group.gateAddr
}

// HandlersFor returns a snapshot of the handler addresses attached to
// funcID under mode, or nil if the function has no HandlerGroup yet.
func (r *HookRoot) HandlersFor(funcID uint32, mode HookMode) []uint64 {
	r.mu.Lock()
	group, ok := r.groups[funcID]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return group.Handlers(mode)
}
