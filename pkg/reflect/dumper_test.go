package reflect

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDump_StructJSON(t *testing.T) {
	cat := buildTestCatalogue(t)
	strct := cat.Node(5)

	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], 7)
	buf[4] = 1 // bool true

	d := NewDumper(cat, DumpOptions{JSON: true, Gap: "  "})
	out, err := d.Dump(strct, buf)
	require.NoError(t, err)
	assert.Contains(t, out, `"count": 7`)
	assert.Contains(t, out, `"flag": true`)
}

func TestDump_ScalarQuotingRules(t *testing.T) {
	cat := buildTestCatalogue(t)

	i64 := TypeNode{Valid: true, Kind: KindScalar, Name: "int64_t", Size: 8}
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, 42)

	d := NewDumper(cat, DumpOptions{JSON: true})
	out, err := d.Dump(i64, buf)
	require.NoError(t, err)
	assert.Equal(t, `"42"`, out)

	i32 := TypeNode{Valid: true, Kind: KindScalar, Name: "int32_t", Size: 4}
	buf32 := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf32, 7)
	out, err = d.Dump(i32, buf32)
	require.NoError(t, err)
	assert.Equal(t, "7", out)
}

func TestDump_UnknownScalarIsError(t *testing.T) {
	cat := buildTestCatalogue(t)
	bad := TypeNode{Valid: true, Kind: KindScalar, Name: "not_a_type", Size: 4}
	d := NewDumper(cat, DumpOptions{})
	_, err := d.Dump(bad, make([]byte, 4))
	assert.Error(t, err)
}

func TestDump_Pointer(t *testing.T) {
	cat := buildTestCatalogue(t)
	ptr := TypeNode{Valid: true, Kind: KindPointer, Size: 8, ElementTypeID: 1}
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, 0x2A)

	d := NewDumper(cat, DumpOptions{})
	out, err := d.Dump(ptr, buf)
	require.NoError(t, err)
	assert.Equal(t, `"0x000000000000002A"`, out)
}

func TestDump_CharArrayNullTerminated(t *testing.T) {
	cat := buildTestCatalogue(t)
	ext := NewExtendedCatalogue(cat)

	charNode := TypeNode{Valid: true, ID: SyntheticBase + 900, Kind: KindScalar, Name: "char", Size: 1}
	ext.synthetic[charNode.ID] = charNode
	arr := ext.NewArray(charNode.ID, 16)

	buf := make([]byte, 16)
	copy(buf, []byte("abc\x00garbagexxxx"))

	d := NewDumper(ext, DumpOptions{})
	out, err := d.Dump(arr, buf)
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, out)
}

func TestDump_Bitfield(t *testing.T) {
	cat := buildTestCatalogue(t)
	bf := TypeNode{Valid: true, Kind: KindBitfield, ElementTypeID: 1, StartingPosition: 4, Bits: 3}
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, 0b1011_0000) // bits [4:7) = 0b011 = 3

	d := NewDumper(cat, DumpOptions{})
	out, err := d.Dump(bf, buf)
	require.NoError(t, err)
	assert.Equal(t, "3", out)
}

func TestTypeString_PointerArrayBitfield(t *testing.T) {
	cat := buildTestCatalogue(t)
	i32 := cat.Node(1)
	assert.Equal(t, "int32_t", TypeString(cat, i32))

	ext := NewExtendedCatalogue(cat)
	ptr := ext.NewPointer(1)
	assert.Equal(t, "int32_t*", TypeString(ext, ptr))

	arr := ext.NewArray(1, 4)
	assert.Equal(t, "int32_t[4]", TypeString(ext, arr))

	bf := TypeNode{Kind: KindBitfield, ElementTypeID: 1, StartingPosition: 2, Bits: 5}
	assert.Equal(t, "int32_t : {2:5}", TypeString(cat, bf))
}
