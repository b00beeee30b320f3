//go:build !unix

package rawsock

import "errors"

var errUnsupported = errors.New("raw socket listener is not supported on this platform")

// Listen 在非Unix系统上的存根实现
func Listen(opts Options) (*Listener, error) {
	return nil, errUnsupported
}

func (l *Listener) Accept() (*Conn, error) { return nil, ErrClosed }
func (l *Listener) Shutdown() error        { return errUnsupported }
func (l *Listener) Close() error           { return nil }

func (c *Conn) Read(p []byte) (int, error)  { return 0, errUnsupported }
func (c *Conn) Write(p []byte) (int, error) { return 0, errUnsupported }
func (c *Conn) Shutdown() error             { return nil }
func (c *Conn) Close() error                { return nil }
