package reflect

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeNodeRecord packs one fixed-width node record in the same layout
// decodeNode expects: kind(1) + nameID(4) + size(8) + a(8) + b(8).
func encodeNodeRecord(kind NodeKind, nameID uint32, size, a, b uint64) []byte {
	rec := make([]byte, nodeRecordSize)
	rec[0] = byte(kind)
	binary.LittleEndian.PutUint32(rec[1:5], nameID)
	binary.LittleEndian.PutUint64(rec[5:13], size)
	binary.LittleEndian.PutUint64(rec[13:21], a)
	binary.LittleEndian.PutUint64(rec[21:29], b)
	return rec
}

// buildTestCatalogue assembles a small node graph:
//
//	id 1: scalar int32_t
//	id 2: scalar bool
//	id 3: DataMemberField "count" -> id 1, offset 0
//	id 4: DataMemberField "flag" -> id 2, offset 4
//	id 5: struct "MyStruct" fields [3,4]
func buildTestCatalogue(t *testing.T) *Catalogue {
	t.Helper()
	names := []string{"", "count", "flag", "MyStruct", "int32_t", "bool"}

	records := [][]byte{
		nil, // id 0 reserved
		encodeNodeRecord(KindScalar, 4, 4, 0, 0),       // 1: int32_t
		encodeNodeRecord(KindScalar, 5, 1, 0, 0),       // 2: bool
		encodeNodeRecord(KindDataMemberField, 1, 4, 1, 0), // 3: count @ off 0
		encodeNodeRecord(KindDataMemberField, 2, 1, 2, 4), // 4: flag @ off 4
		encodeNodeRecord(KindStruct, 3, 8, 3, 2),          // 5: struct{count,flag}
	}

	var blob []byte
	offsets := make([]uint32, len(records))
	for i, rec := range records {
		offsets[i] = uint32(len(blob))
		if rec == nil {
			blob = append(blob, make([]byte, nodeRecordSize)...)
			continue
		}
		blob = append(blob, rec...)
	}

	funcAddr := []uint64{0x1000, 0x2000, 0x3000}
	funcIsStatic := []byte{0b101}
	funcIsMethod := []byte{0b010}
	funcNames := []string{"Foo", "Bar", "Baz"}

	return NewCatalogue(funcAddr, funcIsStatic, funcIsMethod, funcNames, blob, offsets, names)
}

func TestFuncInfo_Bounds(t *testing.T) {
	cat := buildTestCatalogue(t)

	fi := cat.FuncInfo(0)
	assert.True(t, fi.Valid)
	assert.True(t, fi.IsStatic)
	assert.False(t, fi.IsMethod)
	assert.Equal(t, "Foo", fi.Name)

	fi = cat.FuncInfo(1)
	assert.True(t, fi.Valid)
	assert.False(t, fi.IsStatic)
	assert.True(t, fi.IsMethod)

	assert.False(t, cat.FuncInfo(-1).Valid)
	assert.False(t, cat.FuncInfo(3).Valid)
	assert.False(t, cat.FuncInfo(1000).Valid)
}

func TestEachFunc_VisitsAllValid(t *testing.T) {
	cat := buildTestCatalogue(t)
	var seen []string
	cat.EachFunc(func(fi FuncInfo) bool {
		seen = append(seen, fi.Name)
		return true
	})
	assert.Equal(t, []string{"Foo", "Bar", "Baz"}, seen)
}

func TestNode_ZeroAndOutOfRangeInvalid(t *testing.T) {
	cat := buildTestCatalogue(t)
	assert.False(t, cat.Node(0).Valid)
	assert.False(t, cat.Node(uint32(cat.NodeCount())).Valid)
}

func TestNode_DecodesStruct(t *testing.T) {
	cat := buildTestCatalogue(t)
	n := cat.Node(5)
	require.True(t, n.Valid)
	assert.Equal(t, KindStruct, n.Kind)
	assert.Equal(t, "MyStruct", n.Name)
	assert.Equal(t, uint32(3), n.FieldStartID)
	assert.Equal(t, uint32(2), n.FieldCount)
}

func TestEachField_IteratesInCatalogueOrder(t *testing.T) {
	cat := buildTestCatalogue(t)
	strct := cat.Node(5)
	var names []string
	cat.EachField(strct, func(f TypeNode) bool {
		names = append(names, f.Name)
		return true
	})
	assert.Equal(t, []string{"count", "flag"}, names)
}

func TestEachField_NoopOnNonAggregate(t *testing.T) {
	cat := buildTestCatalogue(t)
	scalar := cat.Node(1)
	called := false
	cat.EachField(scalar, func(TypeNode) bool {
		called = true
		return true
	})
	assert.False(t, called)
}

func TestNodesByName_Bijection(t *testing.T) {
	cat := buildTestCatalogue(t)
	m1 := cat.NodesByName()
	m2 := cat.NodesByName()

	require.Contains(t, m1, "MyStruct")
	assert.Equal(t, m1["MyStruct"].ID, m2["MyStruct"].ID)
	assert.Equal(t, len(m1), len(m2))
}

func TestExtendedCatalogue_SyntheticPointer(t *testing.T) {
	cat := buildTestCatalogue(t)
	ext := NewExtendedCatalogue(cat)

	ptr := ext.NewPointer(1)
	assert.True(t, ptr.ID >= SyntheticBase)
	assert.Equal(t, KindPointer, ptr.Kind)
	assert.Equal(t, uint64(8), ptr.Size)

	got := ext.Node(ptr.ID)
	assert.Equal(t, ptr, got)

	// base lookups still pass through.
	base := ext.Node(1)
	assert.Equal(t, KindScalar, base.Kind)
}

func TestExtendedCatalogue_SyntheticArray(t *testing.T) {
	cat := buildTestCatalogue(t)
	ext := NewExtendedCatalogue(cat)

	arr := ext.NewArray(1, 4)
	assert.Equal(t, KindArray, arr.Kind)
	assert.Equal(t, uint64(16), arr.Size)
}
