//go:build !linux

// reader_unsupported.go stubs RemoteReader on platforms without
// process_vm_readv. ATF's memory inspector targets Linux; other platforms
// build but fail at open time.

package memory

import "context"

type unsupportedReader struct{}

func openReader(ctx context.Context, target string) (Reader, error) {
	return nil, ErrUnsupportedPlatform
}

func (unsupportedReader) ReadMemory(addr uint64, size int) ([]byte, error) {
	return nil, ErrUnsupportedPlatform
}

func (unsupportedReader) ModuleBase() (uint64, error) {
	return 0, ErrUnsupportedPlatform
}

func (unsupportedReader) Close() error {
	return nil
}
