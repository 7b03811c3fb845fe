//go:build linux

package memory

import (
	"os"
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsafePointerOf(p *[16]byte) unsafe.Pointer {
	return unsafe.Pointer(p)
}

func TestFindProcessByName_FindsSelf(t *testing.T) {
	comm, err := os.ReadFile("/proc/self/comm")
	require.NoError(t, err)
	name := string(comm)
	for len(name) > 0 && (name[len(name)-1] == '\n' || name[len(name)-1] == ' ') {
		name = name[:len(name)-1]
	}

	pid, err := findProcessByName(name)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestFindProcessByName_NotFound(t *testing.T) {
	_, err := findProcessByName("definitely-not-a-real-process-name-xyz")
	assert.ErrorIs(t, err, ErrProcessNotFound)
}

var probeBuf = [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}

func TestLinuxReader_ReadMemorySelf(t *testing.T) {
	r := &linuxReader{pid: os.Getpid()}
	defer r.Close()

	addr := uint64(uintptr(unsafePointerOf(&probeBuf)))
	data, err := r.ReadMemory(addr, len(probeBuf))
	require.NoError(t, err)
	assert.Equal(t, probeBuf[:], data)
}

func TestLinuxReader_ModuleBaseFindsSelfExecutable(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)

	r := &linuxReader{pid: os.Getpid(), target: exe[strings.LastIndex(exe, "/")+1:]}
	defer r.Close()

	base, err := r.ModuleBase()
	require.NoError(t, err)
	assert.NotZero(t, base)
}

func TestLinuxReader_ModuleBaseNotFound(t *testing.T) {
	r := &linuxReader{pid: os.Getpid(), target: "definitely-not-a-mapped-image-xyz"}
	_, err := r.ModuleBase()
	assert.Error(t, err)
}
