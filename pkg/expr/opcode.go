package expr

// OpKind enumerates the opcodes the Parser emits and the Builder folds.
type OpKind int

const (
	OpGlobalIdent OpKind = iota
	OpGetRef
	OpDeRef
	OpFetchMember
	OpFetchMemberDeRef
	OpFetchArray
	OpTypePointer
	OpReinterpretCast
	OpDecltype
	OpConstNumber
)

// Opcode is one parsed operation. Name carries the identifier for
// GlobalIdent/FetchMember/FetchMemberDeRef; Num carries the index for
// FetchArray and the literal value for ConstNumber.
type Opcode struct {
	Kind OpKind
	Name string
	Num  uint64
}
