// Package server implements the TCP front end: a length-prefixed framing
// protocol, a fixed-size worker pool draining a single inbound request
// queue, and per-connection goroutines that preserve send order.
package server

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// maxFrameSize bounds a single frame's payload, guarding against a
// corrupt or hostile length prefix forcing an unbounded allocation.
const maxFrameSize = 1 << 20 // 1 MiB

var errFrameTooLarge = errors.New("server: frame exceeds maximum size")

// ReadFrame reads one length-prefixed frame from r: a 4-byte little-endian
// length (counting itself) followed by length-4 bytes of payload.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	total := binary.LittleEndian.Uint32(lenBuf[:])
	if total < 4 {
		return nil, fmt.Errorf("server: invalid frame length %d", total)
	}
	if total > maxFrameSize {
		return nil, errFrameTooLarge
	}

	payload := make([]byte, total-4)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// WriteFrame writes payload to w prefixed with its 4-byte little-endian
// total length (payload length + 4).
func WriteFrame(w io.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)+4))
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := bw.Write(payload); err != nil {
		return err
	}
	return bw.Flush()
}

// Command IDs carried in every frame's payload header.
const (
	CmdReqReadMemory uint32 = 1
	CmdResReadMemory uint32 = 2
)

// Request is the decoded payload of a ReqReadMemory frame:
// { u32 cmdID; u32 rpcID; char code[]; } with code null-terminated.
type Request struct {
	CmdID uint32
	RPCID uint32
	Code  string
}

// DecodeRequest parses a request frame payload.
func DecodeRequest(payload []byte) (Request, error) {
	if len(payload) < 8 {
		return Request{}, fmt.Errorf("server: request payload too short (%d bytes)", len(payload))
	}
	cmdID := binary.LittleEndian.Uint32(payload[0:4])
	rpcID := binary.LittleEndian.Uint32(payload[4:8])

	rest := payload[8:]
	nul := indexNul(rest)
	if nul < 0 {
		return Request{}, errors.New("server: request code is not null-terminated")
	}
	return Request{CmdID: cmdID, RPCID: rpcID, Code: string(rest[:nul])}, nil
}

// Response is the payload of a ResReadMemory frame: the header reused from
// the request, plus a null-terminated output string prefixed with '#' on
// error.
type Response struct {
	RPCID   uint32
	Output  string
	IsError bool
}

// EncodeResponse builds a response frame payload.
func EncodeResponse(resp Response) []byte {
	text := resp.Output
	if resp.IsError {
		text = "#" + text
	}

	buf := make([]byte, 8+len(text)+1)
	binary.LittleEndian.PutUint32(buf[0:4], CmdResReadMemory)
	binary.LittleEndian.PutUint32(buf[4:8], resp.RPCID)
	copy(buf[8:], text)
	buf[len(buf)-1] = 0
	return buf
}

func indexNul(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}
