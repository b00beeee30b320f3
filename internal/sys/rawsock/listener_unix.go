//go:build unix

package rawsock

import (
	"fmt"
	"io"
	"time"

	"golang.org/x/sys/unix"

	"drift_server/internal/shared/errors"
	"drift_server/internal/shared/logger"
)

// Listen walks a new socket through CREATED -> OPTIONS_SET -> BOUND -> LISTENING.
// Socket, bind and listen failures close the descriptor and return an error
// tagged with the failing stage. Option failures are logged and ignored.
func Listen(opts Options) (*Listener, error) {
	if opts.Backlog <= 0 {
		opts.Backlog = DefaultBacklog
	}

	fd, err := socket()
	if err != nil {
		return nil, errors.NewError("failed to create AF_INET6 stream socket").Prefix("socket").Base(err)
	}
	l := &Listener{fd: fd, port: opts.Port, state: StateCreated, opts: opts}

	// A rejected option still leaves a usable socket, so setup continues.
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, 0); err != nil {
		logger.Warn().Err(err).Str("option", "IPV6_V6ONLY").Msg("Failed to enable dual-stack mode, continuing")
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		logger.Warn().Err(err).Str("option", "SO_REUSEADDR").Msg("Failed to enable address reuse, continuing")
	}
	l.setState(StateOptionsSet)

	// The zero Addr is the IPv6 wildcard; x/sys converts Port to network byte order.
	if err := unix.Bind(fd, &unix.SockaddrInet6{Port: opts.Port}); err != nil {
		unix.Close(fd)
		return nil, errors.NewError("failed to bind [::]:", opts.Port).Prefix("bind").Base(err)
	}
	l.setState(StateBound)

	if bound, err := unix.Getsockname(fd); err == nil {
		if sa6, ok := bound.(*unix.SockaddrInet6); ok {
			l.port = sa6.Port
		}
	}

	if err := unix.Listen(fd, opts.Backlog); err != nil {
		unix.Close(fd)
		return nil, errors.NewError("failed to listen with backlog ", opts.Backlog).Prefix("listen").Base(err)
	}
	l.setState(StateListening)

	return l, nil
}

// Accept blocks until a client connects. The peer address is discarded.
// Errors that concern the listening socket itself wrap ErrClosed; anything
// else is a per-connection failure and the caller may simply retry.
func (l *Listener) Accept() (*Conn, error) {
	l.mu.Lock()
	fd, state := l.fd, l.state
	l.mu.Unlock()
	if state != StateListening {
		return nil, ErrClosed
	}

	nfd, err := accept(fd)
	if err != nil {
		switch err {
		case unix.EBADF, unix.EINVAL, unix.ENOTSOCK, unix.EOPNOTSUPP:
			return nil, fmt.Errorf("%w: %w", ErrClosed, err)
		}
		return nil, errors.NewError("accept failed").Base(err)
	}

	if l.opts.ReadTimeout > 0 {
		setTimeout(nfd, unix.SO_RCVTIMEO, l.opts.ReadTimeout)
	}
	if l.opts.WriteTimeout > 0 {
		setTimeout(nfd, unix.SO_SNDTIMEO, l.opts.WriteTimeout)
	}
	return &Conn{fd: nfd}, nil
}

// Shutdown disables the listening socket without releasing the descriptor.
// On Linux this wakes a blocked Accept, which then reports ErrClosed.
func (l *Listener) Shutdown() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateClosed {
		return nil
	}
	if err := unix.Shutdown(l.fd, unix.SHUT_RDWR); err != nil {
		return errors.NewError("failed to shut down listener").Prefix("shutdown").Base(err)
	}
	return nil
}

// Close shuts the socket down and releases the descriptor. It is idempotent.
func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateClosed {
		return nil
	}
	l.state = StateClosed

	unix.Shutdown(l.fd, unix.SHUT_RDWR)
	err := unix.Close(l.fd)
	l.fd = -1
	if err != nil {
		return errors.NewError("failed to close listener").Prefix("close").Base(err)
	}
	return nil
}

func setTimeout(fd, opt int, d time.Duration) {
	tv := unix.NsecToTimeval(d.Nanoseconds())
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, opt, &tv); err != nil {
		logger.Debug().Err(err).Int("option", opt).Msg("Failed to set client socket timeout")
	}
}

// Read performs one read(2). A peer that closed its side yields io.EOF.
func (c *Conn) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		n, err := unix.Read(c.fd, p)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, errors.NewError("read failed").Base(err)
		}
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
}

// Write sends all of p, issuing further sends after a short write.
func (c *Conn) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := send(c.fd, p[written:])
		if n > 0 {
			written += n
		}
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return written, errors.NewError("write failed").Base(err)
		}
		if n == 0 {
			return written, io.ErrShortWrite
		}
	}
	return written, nil
}

// Shutdown disables both directions without releasing the descriptor.
// A Read or Write blocked on the connection returns.
func (c *Conn) Shutdown() error {
	if c.fd < 0 {
		return nil
	}
	if err := unix.Shutdown(c.fd, unix.SHUT_RDWR); err != nil {
		return errors.NewError("shutdown failed").Base(err)
	}
	return nil
}

// Close releases the client descriptor. It is idempotent.
func (c *Conn) Close() error {
	if c.fd < 0 {
		return nil
	}
	err := unix.Close(c.fd)
	c.fd = -1
	if err != nil {
		return errors.NewError("close failed").Base(err)
	}
	return nil
}
