package server

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"drift_server/internal/core/response"
	"drift_server/internal/shared"
	"drift_server/internal/shared/logger"
	"drift_server/internal/shared/types"
	"drift_server/internal/sys/rawsock"
)

// DefaultBufferSize is the capacity of the request buffer.
const DefaultBufferSize = 1024

// ErrServing is returned when Serve is called while another Serve is running.
// The request buffer is shared by every connection, so only one loop may use it.
var ErrServing = errors.New("server: already serving")

// Listener is the accept side of a listening socket.
// An Accept error wrapping rawsock.ErrClosed ends the loop; any other error
// is retried immediately.
type Listener interface {
	Accept() (io.ReadWriteCloser, error)
	Shutdown() error
}

type rawListener struct {
	ln *rawsock.Listener
}

// RawListener adapts a rawsock.Listener to Listener.
func RawListener(ln *rawsock.Listener) Listener {
	return rawListener{ln: ln}
}

func (r rawListener) Accept() (io.ReadWriteCloser, error) {
	conn, err := r.ln.Accept()
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (r rawListener) Shutdown() error {
	return r.ln.Shutdown()
}

// shutdowner is implemented by connections that can be woken from a blocked
// Read or Write without releasing them.
type shutdowner interface {
	Shutdown() error
}

// Options configures a Server.
type Options struct {
	BufferSize int
	// Payload is written verbatim to every client. Defaults to response.Default().
	Payload []byte
}

// Server answers every connection with the same payload, one connection at a time.
type Server struct {
	listener Listener
	payload  []byte
	buf      []byte
	log      zerolog.Logger
	serving  atomic.Bool

	// mu guards the connection being served and the stopping flag.
	mu       sync.Mutex
	active   io.ReadWriteCloser
	stopping bool

	connections  atomic.Uint64
	acceptErrors atomic.Uint64
	bytesIn      atomic.Uint64
	bytesOut     atomic.Uint64
}

func New(listener Listener, opts Options) *Server {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	payload := opts.Payload
	if payload == nil {
		payload = response.Default()
	}
	return &Server{
		listener: listener,
		payload:  payload,
		buf:      make([]byte, opts.BufferSize),
		log:      logger.WithComponent("server"),
	}
}

// Serve runs the accept loop until the listener fails at the socket level.
// Cancelling ctx shuts down the listener and the connection being served, so
// a silent client cannot hold the loop; Serve then returns nil. A listener
// failure without cancellation is returned to the caller.
func (s *Server) Serve(ctx context.Context) error {
	if !s.serving.CompareAndSwap(false, true) {
		return ErrServing
	}
	defer s.serving.Store(false)

	s.mu.Lock()
	s.stopping = false
	s.mu.Unlock()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			s.interrupt()
		case <-stop:
		}
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, rawsock.ErrClosed) {
				if ctx.Err() != nil {
					s.log.Info().Msg("Listener is closing.")
					return nil
				}
				return err
			}
			s.acceptErrors.Add(1)
			s.log.Debug().Err(err).Msg("Failed to accept connection, retrying")
			continue
		}
		s.handleConnection(conn)
	}
}

// interrupt wakes the loop from a blocked accept and from a blocked
// read or write on the connection being served.
func (s *Server) interrupt() {
	s.mu.Lock()
	s.stopping = true
	if s.active != nil {
		s.shutdownConn(s.active)
	}
	s.mu.Unlock()

	if err := s.listener.Shutdown(); err != nil {
		s.log.Debug().Err(err).Msg("Listener shutdown failed")
	}
}

// track marks conn as the connection being served. A connection accepted
// after cancellation is shut down straight away. Must be paired with untrack
// before conn is closed.
func (s *Server) track(conn io.ReadWriteCloser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = conn
	if s.stopping {
		s.shutdownConn(conn)
	}
}

func (s *Server) untrack() {
	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()
}

// shutdownConn is called with s.mu held.
func (s *Server) shutdownConn(conn io.ReadWriteCloser) {
	sd, ok := conn.(shutdowner)
	if !ok {
		return
	}
	if err := sd.Shutdown(); err != nil {
		s.log.Debug().Err(err).Msg("Connection shutdown failed")
	}
}

// handleConnection owns conn and always closes it.
func (s *Server) handleConnection(conn io.ReadWriteCloser) {
	counted := shared.NewCountedConn(conn, &s.bytesIn, &s.bytesOut)
	defer counted.Close()
	s.track(conn)
	defer s.untrack()
	s.connections.Add(1)

	l := s.log.With().Str("conn_id", uuid.NewString()).Logger()

	// The request is never parsed; its size and errors only reach the log.
	n, err := counted.Read(s.buf)
	if err != nil {
		l.Debug().Err(err).Msg("Request read failed, replying anyway")
	} else {
		l.Debug().Int("bytes", n).Msg("Request read")
	}

	if _, err := counted.Write(s.payload); err != nil {
		l.Debug().Err(err).Msg("Response write failed")
		return
	}
	l.Debug().Int("bytes", len(s.payload)).Msg("Response sent")
}

// Stats returns a snapshot of the loop counters.
func (s *Server) Stats() types.Stats {
	return types.Stats{
		Connections:  s.connections.Load(),
		AcceptErrors: s.acceptErrors.Load(),
		BytesIn:      s.bytesIn.Load(),
		BytesOut:     s.bytesOut.Load(),
	}
}
