package server

import (
	"context"
	"encoding/binary"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoHandler struct{}

func (echoHandler) Handle(ctx context.Context, code string) (string, error) {
	if code == "fail" {
		return "", errors.New("boom")
	}
	return "echo:" + code, nil
}

func startTestServer(t *testing.T) (*Server, func()) {
	t.Helper()
	srv := New(Config{Host: "127.0.0.1", Port: 0, NumWorkers: 2, Handler: echoHandler{}})

	ready := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		srv.Serve(ctx)
	}()

	// Poll until the listener is bound.
	for i := 0; i < 100; i++ {
		if srv.Addr() != "" {
			close(ready)
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	<-ready

	return srv, func() {
		cancel()
		srv.Stop()
	}
}

func sendRequest(t *testing.T, conn net.Conn, rpcID uint32, code string) Response {
	t.Helper()
	require.NoError(t, WriteFrame(conn, encodeRequest(CmdReqReadMemory, rpcID, code)))

	payload, err := ReadFrame(conn)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(payload), 8)
	gotRPC := binary.LittleEndian.Uint32(payload[4:8])
	text, err := parseResponse(payload)
	require.NoError(t, err)

	isErr := len(text) > 0 && text[0] == '#'
	if isErr {
		text = text[1:]
	}
	return Response{RPCID: gotRPC, Output: text, IsError: isErr}
}

func TestServer_RequestResponseRoundTrip(t *testing.T) {
	srv, stop := startTestServer(t)
	defer stop()

	conn, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	defer conn.Close()

	resp := sendRequest(t, conn, 1, "gConfig.count")
	assert.False(t, resp.IsError)
	assert.Equal(t, "echo:gConfig.count", resp.Output)
	assert.Equal(t, uint32(1), resp.RPCID)
}

func TestServer_ErrorResponseIsHashPrefixed(t *testing.T) {
	srv, stop := startTestServer(t)
	defer stop()

	conn, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	defer conn.Close()

	resp := sendRequest(t, conn, 2, "fail")
	assert.True(t, resp.IsError)
	assert.Equal(t, "boom", resp.Output)
}

func TestServer_PerConnectionOrderPreserved(t *testing.T) {
	srv, stop := startTestServer(t)
	defer stop()

	conn, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	defer conn.Close()

	for i := uint32(1); i <= 5; i++ {
		require.NoError(t, WriteFrame(conn, encodeRequest(CmdReqReadMemory, i, "x")))
	}
	for i := uint32(1); i <= 5; i++ {
		payload, err := ReadFrame(conn)
		require.NoError(t, err)
		gotRPC := binary.LittleEndian.Uint32(payload[4:8])
		assert.Equal(t, i, gotRPC, "responses on one connection must arrive in request order")
	}
}

func TestServer_MultipleClientsConcurrently(t *testing.T) {
	srv, stop := startTestServer(t)
	defer stop()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			conn, err := net.Dial("tcp", srv.Addr())
			if !assert.NoError(t, err) {
				return
			}
			defer conn.Close()
			resp := sendRequest(t, conn, uint32(n), "gList[0].id")
			assert.Equal(t, "echo:gList[0].id", resp.Output)
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
