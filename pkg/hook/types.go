// Package hook implements HookCore: a hierarchical, thread-safe manager
// that attaches, enumerates and detaches pre-observer/hook/post-observer
// handlers per instrumented function, guaranteeing a single active detour
// per function regardless of how many handlers are attached.
package hook

import "strings"

// EnumHookState is the result taxonomy every attach/detach operation
// returns. A parent never downgrades a child's result -- it either
// propagates it unchanged or maps it to a stricter error.
type EnumHookState int

const (
	Done EnumHookState = iota
	ErrorInternal
	ErrorAlreadyExists
	ErrorNotFound
	ErrorInvalidHookAddr
	ErrorAccess
	ErrorDifferentATFSignature
	ErrorDifferentHookVersion
)

func (s EnumHookState) String() string {
	switch s {
	case Done:
		return "Done"
	case ErrorInternal:
		return "ErrorInternal"
	case ErrorAlreadyExists:
		return "ErrorAlreadyExists"
	case ErrorNotFound:
		return "ErrorNotFound"
	case ErrorInvalidHookAddr:
		return "ErrorInvalidHookAddr"
	case ErrorAccess:
		return "ErrorAccess"
	case ErrorDifferentATFSignature:
		return "ErrorDifferentATFSignature"
	case ErrorDifferentHookVersion:
		return "ErrorDifferentHookVersion"
	default:
		return "Unknown"
	}
}

// HookMode selects which of a function's three HandlerLists an attach or
// detach targets. DetachAll is deliberately not a member of this enum --
// per the source's own ambiguity, it stays an unexported HookView method,
// never a dispatchable mode (see DESIGN.md).
type HookMode int

const (
	ObserverBefore HookMode = iota
	Hook
	ObserverAfter
)

func (m HookMode) String() string {
	switch m {
	case ObserverBefore:
		return "ObserverBefore"
	case Hook:
		return "Hook"
	case ObserverAfter:
		return "ObserverAfter"
	default:
		return "Unknown"
	}
}

// AccessFlags is a composable bitset gating which HookMode a view may
// attach/detach.
type AccessFlags uint8

const (
	AttachHook AccessFlags = 1 << iota
	AttachObsBfr
	AttachObsAfr

	AllAccess = AttachHook | AttachObsBfr | AttachObsAfr
)

// Permits reports whether flags grants access for mode.
func (flags AccessFlags) Permits(mode HookMode) bool {
	switch mode {
	case Hook:
		return flags&AttachHook != 0
	case ObserverBefore:
		return flags&AttachObsBfr != 0
	case ObserverAfter:
		return flags&AttachObsAfr != 0
	default:
		return false
	}
}

// Signature is the process-wide ATF build signature and Hook protocol
// version checked end-to-end up the view tree before any attach/detach is
// allowed to proceed; it rejects cross-build hook managers.
type Signature struct {
	ATFSignature uint64
	HookMajor    uint16
	HookMinor    uint16
}

// Compatible reports whether other matches this signature's ATF build
// number and hook-version major/minor.
func (s Signature) Compatible(other Signature) (EnumHookState, bool) {
	if s.ATFSignature != other.ATFSignature {
		return ErrorDifferentATFSignature, false
	}
	if s.HookMajor != other.HookMajor || s.HookMinor != other.HookMinor {
		return ErrorDifferentHookVersion, false
	}
	return Done, true
}

// NamePath is the slash-joined chain of non-empty view names from
// root to leaf, built the same way the original TNameList::buildName() did.
type NamePath []string

func (p NamePath) String() string {
	return strings.Join([]string(p), "/")
}

// Append returns a new NamePath with name appended, skipping empty names.
func (p NamePath) Append(name string) NamePath {
	if name == "" {
		return p
	}
	out := make(NamePath, len(p), len(p)+1)
	copy(out, p)
	return append(out, name)
}
