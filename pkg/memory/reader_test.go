package memory

import (
	"encoding/binary"
	"testing"

	"github.com/atfkit/atf/pkg/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader backs RemoteReader with an in-memory map from address to bytes,
// for exercising ResolveAddress without touching a real process.
type fakeReader struct {
	mem map[uint64][]byte
}

func (f *fakeReader) ReadMemory(addr uint64, size int) ([]byte, error) {
	b, ok := f.mem[addr]
	if !ok || len(b) < size {
		return nil, assertShortRead{addr, size}
	}
	return b[:size], nil
}

func (f *fakeReader) ModuleBase() (uint64, error) { return 0x140000000, nil }

func (f *fakeReader) Close() error { return nil }

type assertShortRead struct {
	addr uint64
	size int
}

func (e assertShortRead) Error() string { return "no data at address" }

func newFakeRemoteReader(mem map[uint64][]byte) *RemoteReader {
	return &RemoteReader{target: "fake", reader: &fakeReader{mem: mem}}
}

func TestResolveAddress_AbsModuleOnly(t *testing.T) {
	rr := newFakeRemoteReader(nil)
	prog := expr.AddressProgram{{Kind: expr.StepAbsModule, Value: 0x100}}
	addr, err := rr.ResolveAddress(prog, 0x140000000)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x140000100), addr)
}

func TestResolveAddress_DeRefReadsLittleEndianU64(t *testing.T) {
	ptrBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(ptrBytes, 0x2000)

	rr := newFakeRemoteReader(map[uint64][]byte{0x1000: ptrBytes})
	prog := expr.AddressProgram{
		{Kind: expr.StepAbs, Value: 0x1000},
		{Kind: expr.StepDeRef},
		{Kind: expr.StepRelAdd, Value: 4},
	}
	addr, err := rr.ResolveAddress(prog, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x2004), addr)
}

func TestResolveAddress_DeRefFailurePropagates(t *testing.T) {
	rr := newFakeRemoteReader(nil)
	prog := expr.AddressProgram{
		{Kind: expr.StepAbs, Value: 0x9999},
		{Kind: expr.StepDeRef},
	}
	_, err := rr.ResolveAddress(prog, 0)
	assert.Error(t, err)
}

func TestReadMemory_WrapsErrorWithAddrAndSize(t *testing.T) {
	rr := newFakeRemoteReader(nil)
	_, err := rr.ReadMemory(0x42, 8)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0x42")
	assert.Contains(t, err.Error(), "(8)")
}
