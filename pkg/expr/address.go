package expr

// StepKind discriminates one AddressProgram step.
type StepKind int

const (
	StepAbs StepKind = iota
	StepAbsModule
	StepRelAdd
	StepRelSub
	StepDeRef
)

// Step is one arithmetic/dereference step in an AddressProgram.
type Step struct {
	Kind  StepKind
	Value uint64
}

// AddressProgram is evaluated left-to-right over a running address,
// starting at zero, with a moduleBase parameter and a dereference callback.
type AddressProgram []Step

// WithStep returns a new program with step appended; callers never mutate a
// shared program in place.
func (p AddressProgram) WithStep(step Step) AddressProgram {
	out := make(AddressProgram, len(p), len(p)+1)
	copy(out, p)
	return append(out, step)
}

// Evaluate walks the program, calling deref(addr) for each DeRef step. deref
// is expected to read 8 bytes at addr and reinterpret them as little-endian
// u64 -- RemoteReader supplies the concrete implementation.
func (p AddressProgram) Evaluate(moduleBase uint64, deref func(addr uint64) (uint64, error)) (uint64, error) {
	var addr uint64
	for _, step := range p {
		switch step.Kind {
		case StepAbs:
			addr = step.Value
		case StepAbsModule:
			addr = moduleBase + step.Value
		case StepRelAdd:
			addr += step.Value
		case StepRelSub:
			addr -= step.Value
		case StepDeRef:
			v, err := deref(addr)
			if err != nil {
				return 0, err
			}
			addr = v
		}
	}
	return addr, nil
}
