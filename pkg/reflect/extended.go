package reflect

// ExtendedCatalogue is a per-evaluation overlay holding synthesised
// Pointer/Array nodes created by the expression Builder's `&`, `[]`, `*` and
// reinterpret_cast handling. Synthetic IDs start at SyntheticBase and never
// persist past the evaluation that created them.
type ExtendedCatalogue struct {
	base      *Catalogue
	synthetic map[uint32]TypeNode
	nextID    uint32
}

// NewExtendedCatalogue wraps base with an empty synthetic overlay.
func NewExtendedCatalogue(base *Catalogue) *ExtendedCatalogue {
	return &ExtendedCatalogue{
		base:      base,
		synthetic: make(map[uint32]TypeNode),
		nextID:    SyntheticBase,
	}
}

// Node resolves ids at or above SyntheticBase against the synthetic overlay
// and ids below SyntheticBase against the base catalogue.
func (e *ExtendedCatalogue) Node(id uint32) TypeNode {
	if id >= SyntheticBase {
		if n, ok := e.synthetic[id]; ok {
			return n
		}
		return TypeNode{}
	}
	return e.base.Node(id)
}

// EachField delegates to the base catalogue; synthetic nodes are always
// Pointer or Array, never aggregates, so there is nothing to iterate there.
func (e *ExtendedCatalogue) EachField(node TypeNode, fn func(TypeNode) bool) {
	if node.ID >= SyntheticBase {
		return
	}
	e.base.EachField(node, fn)
}

// NewPointer synthesises a Pointer node over elementTypeID.
func (e *ExtendedCatalogue) NewPointer(elementTypeID uint32) TypeNode {
	n := TypeNode{
		Valid:         true,
		ID:            e.allocID(),
		Kind:          KindPointer,
		Size:          8,
		ElementTypeID: elementTypeID,
	}
	e.synthetic[n.ID] = n
	return n
}

// NewArray synthesises an Array node of count elements over elementTypeID.
func (e *ExtendedCatalogue) NewArray(elementTypeID uint32, count uint64) TypeNode {
	elem := e.Node(elementTypeID)
	n := TypeNode{
		Valid:         true,
		ID:            e.allocID(),
		Kind:          KindArray,
		Size:          elem.Size * count,
		ElementTypeID: elementTypeID,
	}
	e.synthetic[n.ID] = n
	return n
}

func (e *ExtendedCatalogue) allocID() uint32 {
	id := e.nextID
	e.nextID++
	return id
}

// Base returns the wrapped catalogue, for lookups NodesByName/EachFunc that
// only ever operate on real catalogue data.
func (e *ExtendedCatalogue) Base() *Catalogue {
	return e.base
}
