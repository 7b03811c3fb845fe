// Package memory implements RemoteReader: locating a target process by
// image name and reading its memory read-only, driving the AddressProgram
// dereference steps produced by pkg/expr's Builder.
package memory

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/atfkit/atf/pkg/expr"
	"github.com/atfkit/atf/pkg/metrics"
)

// Reader attaches to a single target process and reads its memory. The
// platform-specific implementation (reader_linux.go) backs it with
// process_vm_readv; reader_unsupported.go stubs it out elsewhere.
type Reader interface {
	// ReadMemory reads size bytes at addr from the target's address space.
	// An incomplete read is an error, never a short result.
	ReadMemory(addr uint64, size int) ([]byte, error)
	// ModuleBase returns the target's main image load address, used when
	// the caller doesn't pin one explicitly via --base-address.
	ModuleBase() (uint64, error)
	// Close releases any handle held on the target process.
	Close() error
}

// RemoteReader wraps a platform Reader with metrics and the
// AddressProgram-evaluation convenience RemoteReader.ResolveAddress needs.
type RemoteReader struct {
	target string
	reader Reader
	m      metrics.MemMetrics
}

// New locates the single process named target and opens it read-only.
// Fails with ErrProcessNotFound or ErrMultipleProcesses if the image name
// doesn't resolve to exactly one process.
func New(ctx context.Context, target string, m metrics.MemMetrics) (*RemoteReader, error) {
	reader, err := openReader(ctx, target)
	if err != nil {
		return nil, err
	}
	return &RemoteReader{target: target, reader: reader, m: m}, nil
}

// ReadMemory reads size bytes at addr, recording a MemMetrics observation.
func (r *RemoteReader) ReadMemory(addr uint64, size int) ([]byte, error) {
	start := time.Now()
	data, err := r.reader.ReadMemory(addr, size)
	if r.m != nil {
		code := ""
		if err != nil {
			code = "error"
		}
		r.m.RecordRead(r.target, uint32(size), time.Since(start), code)
	}
	if err != nil {
		return nil, fmt.Errorf("[%#x(%d)] %w", addr, size, err)
	}
	return data, nil
}

// ResolveAddress evaluates program against moduleBase, reading 8 bytes and
// reinterpreting them as little-endian u64 for every DeRef step.
func (r *RemoteReader) ResolveAddress(program expr.AddressProgram, moduleBase uint64) (uint64, error) {
	return program.Evaluate(moduleBase, func(addr uint64) (uint64, error) {
		b, err := r.ReadMemory(addr, 8)
		if err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint64(b), nil
	})
}

// ModuleBase returns the target's main image load address.
func (r *RemoteReader) ModuleBase() (uint64, error) {
	return r.reader.ModuleBase()
}

// Close releases the underlying process handle.
func (r *RemoteReader) Close() error {
	return r.reader.Close()
}
