package expr

import (
	"fmt"

	reflectcat "github.com/atfkit/atf/pkg/reflect"
)

// StateKind discriminates an ExprState. Only LValue and Address are
// terminal acceptance states; Type is transient, used while parsing casts.
type StateKind int

const (
	StateLValue StateKind = iota
	StateAddress
	StateType
)

func (k StateKind) String() string {
	switch k {
	case StateLValue:
		return "l-value"
	case StateAddress:
		return "address"
	case StateType:
		return "type"
	default:
		return "unknown"
	}
}

// State is the Builder's working value: a type-node stack top (Nodes' last
// element; kept as a slice to mirror the source's "back()" access), a
// stateKind, and the AddressProgram accumulated so far.
type State struct {
	Kind    StateKind
	Nodes   []reflectcat.TypeNode
	Program AddressProgram
}

func (s State) back() reflectcat.TypeNode {
	if len(s.Nodes) == 0 {
		return reflectcat.TypeNode{}
	}
	return s.Nodes[len(s.Nodes)-1]
}

// Result is a successful Build: the final state plus the element TypeNode
// the caller should read/dump. Node is invalid for a bare ConstNumber
// expression ("42"), which callers must render in raw address mode.
type Result struct {
	Kind    StateKind
	Node    reflectcat.TypeNode
	Program AddressProgram
}

// Build folds ops over a stack of ExprStates against cat, resolving
// GlobalIdent through cat's NodesByName and synthesising Pointer/Array nodes
// through cat's extension overlay for &, [], reinterpret_cast and *.
func Build(ops []Opcode, cat *reflectcat.ExtendedCatalogue, baseAddressExpected uint64) (Result, error) {
	b := &builder{cat: cat, baseAddressExpected: baseAddressExpected}
	for _, op := range ops {
		if err := b.step(op); err != nil {
			return Result{}, err
		}
	}
	if len(b.stack) != 1 {
		return Result{}, fmt.Errorf("Unexpected token")
	}
	final := b.stack[0]
	if final.Kind != StateLValue && final.Kind != StateAddress {
		return Result{}, fmt.Errorf("Invalid expr(final is type, expected l-value/address).")
	}
	return Result{Kind: final.Kind, Node: final.back(), Program: final.Program}, nil
}

type builder struct {
	cat                 *reflectcat.ExtendedCatalogue
	baseAddressExpected uint64
	stack               []State
}

func (b *builder) push(s State) {
	b.stack = append(b.stack, s)
}

func (b *builder) pop() (State, bool) {
	if len(b.stack) == 0 {
		return State{}, false
	}
	s := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return s, true
}

func (b *builder) step(op Opcode) error {
	switch op.Kind {
	case OpGlobalIdent:
		return b.globalIdent(op.Name)
	case OpFetchMember:
		return b.fetchMember(op.Name)
	case OpFetchMemberDeRef:
		return b.fetchMemberDeRef(op.Name)
	case OpFetchArray:
		return b.fetchArray(op.Num)
	case OpGetRef:
		return b.getRef()
	case OpDeRef:
		return b.deRef()
	case OpTypePointer:
		return b.typePointer()
	case OpDecltype:
		return b.decltype_()
	case OpReinterpretCast:
		return b.reinterpretCast()
	case OpConstNumber:
		b.push(State{Kind: StateAddress, Program: AddressProgram{{Kind: StepAbs, Value: op.Num}}})
		return nil
	default:
		return fmt.Errorf("Unexpected token")
	}
}

func (b *builder) globalIdent(name string) error {
	node, ok := b.cat.Base().NodesByName()[name]
	if !ok {
		return fmt.Errorf("Global ident '%s' not found", name)
	}

	s := State{Kind: StateType, Nodes: []reflectcat.TypeNode{node}}
	if node.Kind == reflectcat.KindVar || node.Kind == reflectcat.KindStaticDataMemberField {
		elem := b.cat.Node(node.ElementTypeID)
		s = State{
			Kind:    StateLValue,
			Nodes:   []reflectcat.TypeNode{elem},
			Program: AddressProgram{{Kind: StepAbsModule, Value: node.Address - b.baseAddressExpected}},
		}
	}
	b.push(s)
	return nil
}

func (b *builder) fetchMember(name string) error {
	s, ok := b.pop()
	if !ok || s.Kind != StateLValue {
		return fmt.Errorf("Invalid fetch member, '%s' requires an l-value", name)
	}
	return b.fetchMemberOn(s, name)
}

// fetchMemberOn finds field `name` among s's back-node's fields (the node
// must be Struct/Class/Union), appends RelAdd(offset), and pushes the
// field's element type as a new LValue.
func (b *builder) fetchMemberOn(s State, name string) error {
	back := s.back()
	if !back.Kind.IsAggregate() {
		return fmt.Errorf("Invalid fetch member, '%s' is not a struct/class/union", name)
	}

	var field reflectcat.TypeNode
	found := false
	b.cat.EachField(back, func(f reflectcat.TypeNode) bool {
		if f.Name == name {
			field = f
			found = true
			return false
		}
		return true
	})
	if !found {
		return fmt.Errorf("Invalid fetch member, no field named '%s'", name)
	}

	elem := b.cat.Node(field.ElementTypeID)
	b.push(State{
		Kind:    StateLValue,
		Nodes:   []reflectcat.TypeNode{elem},
		Program: s.Program.WithStep(Step{Kind: StepRelAdd, Value: field.Offset}),
	})
	return nil
}

func (b *builder) fetchMemberDeRef(name string) error {
	s, ok := b.pop()
	if !ok || (s.Kind != StateLValue && s.Kind != StateAddress) {
		return fmt.Errorf("Invalid fetch dereference, '%s' requires an l-value or address", name)
	}
	back := s.back()
	if back.Kind != reflectcat.KindPointer {
		return fmt.Errorf("Invalid fetch dereference, '%s' requires a pointer", name)
	}

	prog := s.Program
	if s.Kind == StateLValue {
		prog = prog.WithStep(Step{Kind: StepDeRef})
	}
	structNode := b.cat.Node(back.ElementTypeID)
	mid := State{Kind: StateLValue, Nodes: []reflectcat.TypeNode{structNode}, Program: prog}
	return b.fetchMemberOn(mid, name)
}

func (b *builder) fetchArray(k uint64) error {
	s, ok := b.pop()
	if !ok {
		return fmt.Errorf("Invalid fetch array, no operand")
	}
	back := s.back()

	if s.Kind == StateType {
		arr := b.cat.NewArray(back.ID, k)
		b.push(State{Kind: StateType, Nodes: []reflectcat.TypeNode{arr}})
		return nil
	}

	switch back.Kind {
	case reflectcat.KindArray:
		elem := b.cat.Node(back.ElementTypeID)
		count := uint64(0)
		if elem.Size > 0 {
			count = back.Size / elem.Size
		}
		if k >= count {
			return fmt.Errorf("Invalid fetch array, invalid index [%d], have array count %d.", k, count)
		}
		b.push(State{
			Kind:    s.Kind,
			Nodes:   []reflectcat.TypeNode{elem},
			Program: s.Program.WithStep(Step{Kind: StepRelAdd, Value: k * elem.Size}),
		})
		return nil

	case reflectcat.KindPointer:
		prog := s.Program
		if s.Kind == StateLValue {
			prog = prog.WithStep(Step{Kind: StepDeRef})
		}
		elem := b.cat.Node(back.ElementTypeID)
		prog = prog.WithStep(Step{Kind: StepRelAdd, Value: k * elem.Size})
		b.push(State{Kind: StateLValue, Nodes: []reflectcat.TypeNode{elem}, Program: prog})
		return nil

	default:
		return fmt.Errorf("Invalid fetch array, not an array or pointer")
	}
}

func (b *builder) getRef() error {
	s, ok := b.pop()
	if !ok || s.Kind != StateLValue {
		return fmt.Errorf("Invalid get reference, expected an l-value")
	}
	ptr := b.cat.NewPointer(s.back().ID)
	b.push(State{Kind: StateAddress, Nodes: []reflectcat.TypeNode{ptr}, Program: s.Program})
	return nil
}

func (b *builder) deRef() error {
	s, ok := b.pop()
	if !ok || (s.Kind != StateLValue && s.Kind != StateAddress) {
		return fmt.Errorf("Invalid dereference, expected an l-value or address")
	}
	back := s.back()
	if back.Kind != reflectcat.KindPointer {
		return fmt.Errorf("Invalid dereference, expected a pointer")
	}
	prog := s.Program
	if s.Kind == StateLValue {
		prog = prog.WithStep(Step{Kind: StepDeRef})
	}
	elem := b.cat.Node(back.ElementTypeID)
	b.push(State{Kind: StateLValue, Nodes: []reflectcat.TypeNode{elem}, Program: prog})
	return nil
}

func (b *builder) typePointer() error {
	s, ok := b.pop()
	if !ok || s.Kind != StateType {
		return fmt.Errorf("Invalid type pointer, expected a type")
	}
	ptr := b.cat.NewPointer(s.back().ID)
	b.push(State{Kind: StateType, Nodes: []reflectcat.TypeNode{ptr}})
	return nil
}

func (b *builder) decltype_() error {
	s, ok := b.pop()
	if !ok || (s.Kind != StateLValue && s.Kind != StateAddress) {
		return fmt.Errorf("Invalid decltype, expected an l-value or address")
	}
	b.push(State{Kind: StateType, Nodes: s.Nodes})
	return nil
}

func (b *builder) reinterpretCast() error {
	rhs, ok := b.pop()
	if !ok || (rhs.Kind != StateLValue && rhs.Kind != StateAddress) {
		return fmt.Errorf("Invalid reinterpret_cast, expected an l-value or address operand")
	}
	lhs, ok := b.pop()
	if !ok || lhs.Kind != StateType || lhs.back().Kind != reflectcat.KindPointer {
		return fmt.Errorf("Invalid reinterpret_cast, expected a pointer type")
	}
	b.push(State{Kind: rhs.Kind, Nodes: []reflectcat.TypeNode{lhs.back()}, Program: rhs.Program})
	return nil
}
