package reflect

import "fmt"

// TypeString reconstructs a type's display name the way the original
// dumpStructType did: scalars/structs render by name, pointers as "T*",
// arrays as "T[N]", and bitfields as "T : {start:bits}".
func TypeString(resolver NodeResolver, node TypeNode) string {
	switch node.Kind {
	case KindScalar, KindStruct, KindClass, KindUnion, KindVoid:
		if node.Name != "" {
			return node.Name
		}
		return node.Kind.String()
	case KindPointer:
		elem := resolver.Node(node.ElementTypeID)
		return TypeString(resolver, elem) + "*"
	case KindArray:
		elem := resolver.Node(node.ElementTypeID)
		count := uint64(0)
		if elem.Size > 0 {
			count = node.Size / elem.Size
		}
		return fmt.Sprintf("%s[%d]", TypeString(resolver, elem), count)
	case KindBitfield:
		elem := resolver.Node(node.ElementTypeID)
		return fmt.Sprintf("%s : {%d:%d}", TypeString(resolver, elem), node.StartingPosition, node.Bits)
	case KindDataMemberField, KindStaticDataMemberField, KindVar:
		elem := resolver.Node(node.ElementTypeID)
		return TypeString(resolver, elem)
	default:
		return node.Kind.String()
	}
}
