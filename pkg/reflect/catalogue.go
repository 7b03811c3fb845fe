package reflect

import (
	"encoding/binary"
	"sync"
)

// FuncInfo describes one instrumentable function. Built from parallel arrays
// (address list, is-static bitset, is-method bitset) plus the name list, all
// fixed for the process lifetime.
type FuncInfo struct {
	Valid      bool
	InternalID uint32
	IsStatic   bool
	IsMethod   bool
	Address    uint64
	Name       string
}

// nodeRecordSize is the byte-packed, fixed-width layout of one TypeNode
// record in the node blob:
//
//	[0]     kind    uint8
//	[1:5]   nameID  uint32 LE  (0 = no name)
//	[5:13]  size    uint64 LE
//	[13:21] a       uint64 LE  (fieldStartID | elementTypeID, see decodeNode)
//	[21:29] b       uint64 LE  (fieldCount | offset | address | bits<<8|start)
//
// Reads are explicit little-endian field-by-field; there is no struct
// reinterpretation of the blob.
const nodeRecordSize = 29

// Catalogue is the read-only reflection catalogue: function descriptors and
// the type-node graph. It is immutable after construction except for the
// lazily built name index, which is guarded by sync.Once.
type Catalogue struct {
	funcAddr     []uint64
	funcIsStatic []byte // one bit per func
	funcIsMethod []byte
	funcNames    []string

	nodeBlob    []byte
	nodeOffsets []uint32
	names       []string // index by NameID

	namesOnce sync.Once
	namesMap  map[string]TypeNode
}

// NewCatalogue builds a Catalogue over the four parallel function arrays and
// the packed node blob with its offset table. names is indexed by NameID as
// stored in Var/StaticDataMemberField/DataMemberField records and by the
// node-level nameID embedded in each record.
func NewCatalogue(funcAddr []uint64, funcIsStatic, funcIsMethod []byte, funcNames []string, nodeBlob []byte, nodeOffsets []uint32, names []string) *Catalogue {
	return &Catalogue{
		funcAddr:     funcAddr,
		funcIsStatic: funcIsStatic,
		funcIsMethod: funcIsMethod,
		funcNames:    funcNames,
		nodeBlob:     nodeBlob,
		nodeOffsets:  nodeOffsets,
		names:        names,
	}
}

func bitSet(bits []byte, i int) bool {
	byteIdx := i / 8
	if byteIdx < 0 || byteIdx >= len(bits) {
		return false
	}
	return bits[byteIdx]&(1<<uint(i%8)) != 0
}

// FuncInfo returns the descriptor for internalID, or {Valid:false} if id is
// out of [0, funcCount).
func (c *Catalogue) FuncInfo(id int) FuncInfo {
	if id < 0 || id >= len(c.funcAddr) {
		return FuncInfo{Valid: false}
	}
	name := ""
	if id < len(c.funcNames) {
		name = c.funcNames[id]
	}
	return FuncInfo{
		Valid:      true,
		InternalID: uint32(id),
		IsStatic:   bitSet(c.funcIsStatic, id),
		IsMethod:   bitSet(c.funcIsMethod, id),
		Address:    c.funcAddr[id],
		Name:       name,
	}
}

// FuncCount returns the number of function descriptors in the catalogue.
func (c *Catalogue) FuncCount() int {
	return len(c.funcAddr)
}

// EachFunc iterates all valid FuncInfos in ID order, stopping early if fn
// returns false.
func (c *Catalogue) EachFunc(fn func(FuncInfo) bool) {
	for i := range c.funcAddr {
		if !fn(c.FuncInfo(i)) {
			return
		}
	}
}

// Node decodes the packed record at offsets[id]. Returns {Valid:false} for
// id==0 or any id out of range.
func (c *Catalogue) Node(id uint32) TypeNode {
	if id == 0 || int(id) >= len(c.nodeOffsets) {
		return TypeNode{}
	}
	off := c.nodeOffsets[id]
	if int(off)+nodeRecordSize > len(c.nodeBlob) {
		return TypeNode{}
	}
	n := decodeNode(c.nodeBlob[off : off+nodeRecordSize])
	n.Valid = true
	n.ID = id
	n.Name = c.resolveName(n)
	return n
}

// NodeCount returns the number of node slots, including the reserved id 0.
func (c *Catalogue) NodeCount() int {
	return len(c.nodeOffsets)
}

// decodeNode reads one fixed-width record field by field via
// encoding/binary.LittleEndian, never by reinterpreting the byte slice as a
// Go struct -- the blob is byte-packed with no implied alignment.
func decodeNode(rec []byte) TypeNode {
	kind := NodeKind(rec[0])
	nameID := binary.LittleEndian.Uint32(rec[1:5])
	size := binary.LittleEndian.Uint64(rec[5:13])
	a := binary.LittleEndian.Uint64(rec[13:21])
	b := binary.LittleEndian.Uint64(rec[21:29])

	n := TypeNode{Kind: kind, Size: size, NameID: nameID}

	switch kind {
	case KindStruct, KindClass, KindUnion:
		n.FieldStartID = uint32(a)
		n.FieldCount = uint32(b)
	case KindBitfield:
		n.ElementTypeID = uint32(a)
		n.StartingPosition = uint8(b)
		n.Bits = uint8(b >> 8)
	case KindPointer, KindArray:
		n.ElementTypeID = uint32(a)
	case KindDataMemberField:
		n.ElementTypeID = uint32(a)
		n.Offset = b
	case KindVar, KindStaticDataMemberField:
		n.ElementTypeID = uint32(a)
		n.Address = b
	}
	return n
}

// resolveName looks the node's NameID up in the shared name table, with no
// per-kind switch: scalars and aggregates carry their declared type name and
// fields and vars their member name because that is what each record's
// nameID points at.
func (c *Catalogue) resolveName(n TypeNode) string {
	if int(n.NameID) >= len(c.names) {
		return ""
	}
	return c.names[n.NameID]
}

// EachNode iterates every valid node (ids 1..NodeCount-1), stopping early if
// fn returns false.
func (c *Catalogue) EachNode(fn func(TypeNode) bool) {
	for id := 1; id < len(c.nodeOffsets); id++ {
		n := c.Node(uint32(id))
		if !n.Valid {
			continue
		}
		if !fn(n) {
			return
		}
	}
}

// EachField iterates the contiguous field slice of a Struct/Class/Union node
// in catalogue order. No-op for any other kind.
func (c *Catalogue) EachField(node TypeNode, fn func(TypeNode) bool) {
	if !node.Kind.IsAggregate() {
		return
	}
	for i := uint32(0); i < node.FieldCount; i++ {
		field := c.Node(node.FieldStartID + i)
		if !field.Valid {
			continue
		}
		if !fn(field) {
			return
		}
	}
}

// NodesByName lazily builds, once, a map from non-empty node name to node.
// Built under sync.Once so concurrent first callers block on the same build
// rather than racing; subsequent calls are lock-free.
func (c *Catalogue) NodesByName() map[string]TypeNode {
	c.namesOnce.Do(func() {
		m := make(map[string]TypeNode)
		c.EachNode(func(n TypeNode) bool {
			if n.Name != "" {
				m[n.Name] = n
			}
			return true
		})
		c.namesMap = m
	})
	return c.namesMap
}
