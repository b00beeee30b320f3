// FILE: internal/shared/counted_conn.go
package shared

import (
	"io"
	"sync/atomic"
)

// CountedConn 是一个连接包装器，用于原子地统计读入和写出的字节数。
// The server hands it its own counters, which end up in Server.Stats and in
// the "Accept loop stopped." line logged at shutdown.
type CountedConn struct {
	io.ReadWriteCloser
	bytesIn  *atomic.Uint64
	bytesOut *atomic.Uint64
}

// NewCountedConn 创建一个新的 CountedConn 实例。
func NewCountedConn(conn io.ReadWriteCloser, bytesIn, bytesOut *atomic.Uint64) *CountedConn {
	return &CountedConn{
		ReadWriteCloser: conn,
		bytesIn:         bytesIn,
		bytesOut:        bytesOut,
	}
}

// Read 从底层连接读取数据，并增加读入计数。
func (c *CountedConn) Read(b []byte) (int, error) {
	n, err := c.ReadWriteCloser.Read(b)
	if n > 0 {
		c.bytesIn.Add(uint64(n))
	}
	return n, err
}

// Write 将数据写入底层连接，并增加写出计数。
func (c *CountedConn) Write(b []byte) (int, error) {
	n, err := c.ReadWriteCloser.Write(b)
	if n > 0 {
		c.bytesOut.Add(uint64(n))
	}
	return n, err
}
