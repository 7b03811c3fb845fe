package memory

import "errors"

var (
	// ErrProcessNotFound means zero processes matched the requested image name.
	ErrProcessNotFound = errors.New("target process not found")
	// ErrMultipleProcesses means more than one process matched the requested
	// image name -- RemoteReader refuses to guess which one to attach to.
	ErrMultipleProcesses = errors.New("multiple processes match target image name")
	// ErrUnsupportedPlatform is returned by the reader on any OS other than
	// Linux, where process_vm_readv is unavailable.
	ErrUnsupportedPlatform = errors.New("remote memory reading is only supported on linux")
)
