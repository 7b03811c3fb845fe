package reflect

import (
	"encoding/binary"
	"fmt"
	"math"
)

// scalarDecoder renders the bytes of a named scalar. Keyed by name, each
// entry carrying its byte size, rather than dispatched on Go type -- the source relies on C++ template
// specialisation over scalar names, and the design notes call for replacing
// that with a fixed table that rejects unknown names instead of guessing
// from size alone.
type scalarDecoder struct {
	size   int
	decode func(b []byte) string
	// quoted reports whether this scalar is wrapped in quotes in JSON mode.
	// bool is never quoted (renders as the bare literal true/false).
	quoted bool
}

var scalarTable = map[string]scalarDecoder{
	"bool": {1, func(b []byte) string {
		if b[0] != 0 {
			return "true"
		}
		return "false"
	}, false},
	"int8_t": {1, func(b []byte) string {
		return fmt.Sprintf("%d", int8(b[0]))
	}, true},
	"uint8_t": {1, func(b []byte) string {
		return fmt.Sprintf("%d", b[0])
	}, true},
	"int16_t": {2, func(b []byte) string {
		return fmt.Sprintf("%d", int16(binary.LittleEndian.Uint16(b)))
	}, true},
	"uint16_t": {2, func(b []byte) string {
		return fmt.Sprintf("%d", binary.LittleEndian.Uint16(b))
	}, true},
	"int32_t": {4, func(b []byte) string {
		return fmt.Sprintf("%d", int32(binary.LittleEndian.Uint32(b)))
	}, false},
	"uint32_t": {4, func(b []byte) string {
		return fmt.Sprintf("%d", binary.LittleEndian.Uint32(b))
	}, false},
	"int64_t": {8, func(b []byte) string {
		return fmt.Sprintf("%d", int64(binary.LittleEndian.Uint64(b)))
	}, true},
	"uint64_t": {8, func(b []byte) string {
		return fmt.Sprintf("%d", binary.LittleEndian.Uint64(b))
	}, true},
	"float32_t": {4, func(b []byte) string {
		return fmt.Sprintf("%g", math.Float32frombits(binary.LittleEndian.Uint32(b)))
	}, false},
	"float64_t": {8, func(b []byte) string {
		return fmt.Sprintf("%g", math.Float64frombits(binary.LittleEndian.Uint64(b)))
	}, false},
}

// ScalarDecode renders the scalar named name from the leading bytes of b.
// Returns an error for any name not in the fixed table or a buffer too
// short for the scalar's declared size.
func ScalarDecode(name string, b []byte) (text string, quoted bool, err error) {
	dec, ok := scalarTable[name]
	if !ok {
		return "", false, fmt.Errorf("unknown scalar %q", name)
	}
	if len(b) < dec.size {
		return "", false, fmt.Errorf("short buffer for scalar %q: need %d, have %d", name, dec.size, len(b))
	}
	return dec.decode(b), dec.quoted, nil
}

// ScalarKnown reports whether name has a registered decoder.
func ScalarKnown(name string) bool {
	_, ok := scalarTable[name]
	return ok
}
