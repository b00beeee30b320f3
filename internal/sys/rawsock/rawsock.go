// Package rawsock implements a dual-stack TCP listener directly on top of the
// operating system socket calls, without the net package's poller.
//
// Every call blocks the calling goroutine's thread. A Listener and the Conns
// it returns are meant to be driven from a single goroutine; only Shutdown and
// Close may be called from another one.
package rawsock

import (
	"errors"
	"sync"
	"time"
)

// State represents the setup state of a listening socket
type State int

const (
	StateCreated State = iota
	StateOptionsSet
	StateBound
	StateListening
	StateClosed
)

// String returns the string representation of the socket state
func (s State) String() string {
	states := []string{"CREATED", "OPTIONS_SET", "BOUND", "LISTENING", "CLOSED"}
	if s >= 0 && int(s) < len(states) {
		return states[s]
	}
	return "UNKNOWN"
}

// DefaultBacklog is the accept queue depth used when Options.Backlog is not set.
const DefaultBacklog = 128

// ErrClosed is returned by Accept once the listening socket itself is unusable,
// either because it was shut down or closed or because the kernel rejected it.
var ErrClosed = errors.New("rawsock: listener closed")

// Options configures Listen.
type Options struct {
	// Port to bind on the IPv6 wildcard address. 0 picks an ephemeral port.
	Port    int
	Backlog int

	// Client socket timeouts, applied with SO_RCVTIMEO / SO_SNDTIMEO after
	// accept. Zero leaves the socket fully blocking.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Listener is a bound, passive dual-stack stream socket.
type Listener struct {
	mu    sync.Mutex
	fd    int
	port  int
	state State
	opts  Options
}

// State returns the current setup state of the listener.
func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Port returns the bound port, resolved when Options.Port was 0.
func (l *Listener) Port() int {
	return l.port
}

func (l *Listener) setState(newState State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = newState
}

// Conn is an accepted client socket.
type Conn struct {
	fd int
}
