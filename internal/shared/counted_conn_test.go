package shared

import (
	"bytes"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pipeConn struct {
	r      io.Reader
	w      bytes.Buffer
	closed bool
}

func (p *pipeConn) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p *pipeConn) Write(b []byte) (int, error) { return p.w.Write(b) }
func (p *pipeConn) Close() error                { p.closed = true; return nil }

type failingConn struct{ pipeConn }

func (f *failingConn) Write(b []byte) (int, error) { return 2, errors.New("broken pipe") }

func TestCountedConn(t *testing.T) {
	var in, out atomic.Uint64
	raw := &pipeConn{r: bytes.NewReader([]byte("GET / HTTP/1.1\r\n\r\n"))}
	conn := NewCountedConn(raw, &in, &out)

	buf := make([]byte, 8)
	n, err := conn.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, 8, n)

	_, err = conn.Write([]byte("hello"))
	assert.NoError(t, err)

	assert.Equal(t, uint64(8), in.Load())
	assert.Equal(t, uint64(5), out.Load())
	assert.Equal(t, "hello", raw.w.String())

	assert.NoError(t, conn.Close())
	assert.True(t, raw.closed)
}

func TestCountedConn_CountsPartialWrite(t *testing.T) {
	var in, out atomic.Uint64
	conn := NewCountedConn(&failingConn{}, &in, &out)

	n, err := conn.Write([]byte("hello"))
	assert.Error(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, uint64(2), out.Load())
}

func TestCountedConn_ReadEOFNotCounted(t *testing.T) {
	var in, out atomic.Uint64
	conn := NewCountedConn(&pipeConn{r: bytes.NewReader(nil)}, &in, &out)

	n, err := conn.Read(make([]byte, 4))
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)
	assert.Zero(t, in.Load())
}
