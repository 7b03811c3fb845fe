package hook

import "sync/atomic"

// HandlerList is a lock-free, copy-on-write list of handler addresses for
// one function and one HookMode. Readers (the gate trampoline, in the real
// runtime) load the current slice atomically and never block; writers
// build a new backing array and swap it in. The old array is left for the
// garbage collector -- there is no in-place mutation to race against.
type HandlerList struct {
	slots atomic.Pointer[[]uint64]
}

// Snapshot returns the current handler addresses, outermost-first. The
// returned slice must not be mutated by the caller.
func (l *HandlerList) Snapshot() []uint64 {
	p := l.slots.Load()
	if p == nil {
		return nil
	}
	return *p
}

// Len reports the current handler count.
func (l *HandlerList) Len() int {
	return len(l.Snapshot())
}

// Push appends addr to the front of the list (most recently attached runs
// first) via copy-build-swap, and reports the new length.
func (l *HandlerList) Push(addr uint64) int {
	for {
		old := l.slots.Load()
		var oldSlice []uint64
		if old != nil {
			oldSlice = *old
		}
		next := make([]uint64, 0, len(oldSlice)+1)
		next = append(next, addr)
		next = append(next, oldSlice...)
		if l.slots.CompareAndSwap(old, &next) {
			return len(next)
		}
	}
}

// Remove deletes the first occurrence of addr, reporting whether it was
// found.
func (l *HandlerList) Remove(addr uint64) bool {
	for {
		old := l.slots.Load()
		var oldSlice []uint64
		if old != nil {
			oldSlice = *old
		}
		idx := -1
		for i, v := range oldSlice {
			if v == addr {
				idx = i
				break
			}
		}
		if idx == -1 {
			return false
		}
		next := make([]uint64, 0, len(oldSlice)-1)
		next = append(next, oldSlice[:idx]...)
		next = append(next, oldSlice[idx+1:]...)
		if l.slots.CompareAndSwap(old, &next) {
			return true
		}
	}
}
