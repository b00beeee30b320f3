package health

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/nettest"

	"drift_server/internal/core/response"
	"drift_server/internal/shared/types"
)

// replyServer answers every connection with reply after reading the request.
func replyServer(t *testing.T, reply []byte) string {
	t.Helper()
	ln, err := nettest.NewLocalListener("tcp")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Read(make([]byte, 1024))
			conn.Write(reply)
			conn.Close()
		}
	}()
	return ln.Addr().String()
}

func TestProbe_ExactPayload(t *testing.T) {
	addr := replyServer(t, response.Default())

	r := New(2*time.Second, response.Default()).Probe(context.Background(), addr)
	require.NoError(t, r.Err)
	assert.Equal(t, types.StatusUp, r.Status)
	assert.Greater(t, r.Latency, time.Duration(0))
}

func TestProbe_PayloadMismatch(t *testing.T) {
	addr := replyServer(t, []byte("HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nhi"))

	r := New(2*time.Second, response.Default()).Probe(context.Background(), addr)
	assert.Equal(t, types.StatusDown, r.Status)
	assert.Error(t, r.Err)
}

func TestProbe_LooseAcceptsAny200(t *testing.T) {
	addr := replyServer(t, []byte("HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nhi"))

	r := New(2*time.Second, nil).Probe(context.Background(), addr)
	assert.Equal(t, types.StatusUp, r.Status)
}

func TestProbe_LooseRejectsNon200(t *testing.T) {
	addr := replyServer(t, []byte("HTTP/1.1 503 Service Unavailable\r\n\r\n"))

	r := New(2*time.Second, nil).Probe(context.Background(), addr)
	assert.Equal(t, types.StatusDown, r.Status)
}

func TestProbe_ConnectionRefused(t *testing.T) {
	ln, err := nettest.NewLocalListener("tcp")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	r := New(time.Second, nil).Probe(context.Background(), addr)
	assert.Equal(t, types.StatusDown, r.Status)
	assert.Error(t, r.Err)
}

func TestProbe_TimesOutOnSilentServer(t *testing.T) {
	ln, err := nettest.NewLocalListener("tcp")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		io.Copy(io.Discard, conn)
	}()

	start := time.Now()
	r := New(200*time.Millisecond, nil).Probe(context.Background(), ln.Addr().String())
	assert.Equal(t, types.StatusDown, r.Status)
	var netErr net.Error
	require.ErrorAs(t, r.Err, &netErr)
	assert.True(t, netErr.Timeout())
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestCheck_MultipleTargets(t *testing.T) {
	good := replyServer(t, response.Default())
	bad := replyServer(t, []byte("nope"))

	results := New(2*time.Second, response.Default()).Check(context.Background(), []string{good, bad})
	require.Len(t, results, 2)
	assert.Equal(t, types.StatusUp, results[good].Status)
	assert.Equal(t, types.StatusDown, results[bad].Status)
}

func TestHealthStatusString(t *testing.T) {
	assert.Equal(t, "UP", types.StatusUp.String())
	assert.Equal(t, "DOWN", types.StatusDown.String())
	assert.Equal(t, "UNKNOWN", types.StatusUnknown.String())
}
