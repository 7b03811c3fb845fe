package commands

import (
	"github.com/atfkit/atf/pkg/hook"
)

// stubInstaller stands in for the OS-specific trampoline installer: a
// platform collaborator explicitly out of scope (spec.md §1) that ATF
// expects to be supplied by the host process linking HookCore in. It
// synthesises a deterministic gate address so HookCore's attach/detach
// bookkeeping can be exercised end-to-end from the CLI without a real
// in-process code patcher.
var stubInstaller = hook.InstallerFunc(func(req hook.HookRequest) (hook.HookResult, error) {
	return hook.HookResult{GateAddr: req.FuncAddr + 0x10000}, nil
})
