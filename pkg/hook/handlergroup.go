package hook

import (
	"sync"
	"time"

	"github.com/atfkit/atf/internal/logger"
	"github.com/atfkit/atf/pkg/metrics"
)

// HookRequest describes the function a HandlerGroup wants detoured.
type HookRequest struct {
	FuncAddr uint64
}

// HookResult carries back the trampoline ("gate") address the caller must
// dispatch handlers through once a function is detoured.
type HookResult struct {
	GateAddr uint64
}

// Installer places the single machine-code detour backing a HandlerGroup.
// It is supplied by HookRoot, which is the only layer that knows how to
// patch a prologue -- HandlerGroup itself never touches process memory.
// It stands in for the platform's trampoline installer, registered once
// process-wide via HookRoot.SetInstaller.
type Installer interface {
	Install(req HookRequest) (HookResult, error)
}

// InstallerFunc adapts a plain function to the Installer interface, the
// same way http.HandlerFunc adapts a function to http.Handler.
type InstallerFunc func(HookRequest) (HookResult, error)

func (f InstallerFunc) Install(req HookRequest) (HookResult, error) { return f(req) }

// HandlerGroup owns the three HandlerLists (pre-observer, hook,
// post-observer) for a single function and the single detour installed on
// its behalf. Resolution: the installer is always called before any
// speculative list insert, and the insert only happens once Install
// succeeds -- a failed install leaves the group exactly as it was, never
// half-attached.
type HandlerGroup struct {
	mu        sync.Mutex
	funcID    uint32
	funcAddr  uint64
	installer Installer
	installed bool
	gateAddr  uint64
	lists     [3]HandlerList
	total     int
	metrics   metrics.HookMetrics
}

func NewHandlerGroup(funcID uint32, funcAddr uint64, installer Installer, m metrics.HookMetrics) *HandlerGroup {
	return &HandlerGroup{funcID: funcID, funcAddr: funcAddr, installer: installer, metrics: m}
}

// Attach installs the detour on demand (first attach for this function)
// and pushes handlerAddr onto mode's list. It refuses a handler address
// already present under the same mode.
func (g *HandlerGroup) Attach(mode HookMode, handlerAddr uint64) (EnumHookState, uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, existing := range g.lists[mode].Snapshot() {
		if existing == handlerAddr {
			return ErrorAlreadyExists, 0
		}
	}

	if !g.installed {
		start := time.Now()
		res, err := g.installer.Install(HookRequest{FuncAddr: g.funcAddr})
		if g.metrics != nil {
			errCode := ""
			if err != nil {
				errCode = "install_failed"
			}
			g.metrics.RecordInstall(time.Since(start), errCode)
		}
		if err != nil {
			logger.Warn("detour install failed", logger.FuncID(g.funcID), logger.OriginalAddr(g.funcAddr), logger.Err(err))
			return ErrorInternal, 0
		}
		g.installed = true
		g.gateAddr = res.GateAddr
		logger.Info("detour installed", logger.FuncID(g.funcID), logger.OriginalAddr(g.funcAddr), logger.DetourAddr(res.GateAddr))
	}

	g.lists[mode].Push(handlerAddr)
	g.total++
	if g.metrics != nil {
		g.metrics.SetHandlerCount(g.funcID, g.total)
	}
	return Done, g.gateAddr
}

// Detach removes handlerAddr from mode's list. The detour itself is
// never uninstalled once placed, even if the group drops to zero
// handlers -- it stays resident for the rest of the process, matching
// the gate's role as a permanent dispatch point for the function.
func (g *HandlerGroup) Detach(mode HookMode, handlerAddr uint64) EnumHookState {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.lists[mode].Remove(handlerAddr) {
		return ErrorNotFound
	}
	g.total--
	if g.metrics != nil {
		g.metrics.SetHandlerCount(g.funcID, g.total)
	}
	return Done
}

// Count reports how many handlers remain attached across all three modes.
func (g *HandlerGroup) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.total
}

// Handlers returns a snapshot of the handler addresses currently attached
// under mode.
func (g *HandlerGroup) Handlers(mode HookMode) []uint64 {
	return g.lists[mode].Snapshot()
}
