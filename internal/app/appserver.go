package app

import (
	"context"
	"fmt"
	"sync"

	"drift_server/internal/core/server"
	"drift_server/internal/shared/logger"
	"drift_server/internal/shared/types"
	"drift_server/internal/sys/rawsock"
)

// listenAddress is the IPv6 wildcard every listener binds to.
const listenAddress = "[::]"

// AppServer is the application's main struct. It owns the listening socket
// for the life of the process.
type AppServer struct {
	cfg     *types.Config
	payload []byte

	listener *rawsock.Listener
	server   *server.Server

	stopOnce sync.Once
}

// New validates the response settings and prepares an AppServer. No socket
// is created until InitializeListener.
func New(cfg *types.Config) (*AppServer, error) {
	payload, err := buildPayload(cfg)
	if err != nil {
		return nil, err
	}
	return &AppServer{
		cfg:     cfg,
		payload: payload,
	}, nil
}

// InitializeListener 负责创建并监听套接字，但不阻塞。
// 它返回实际监听的端口号。
func (s *AppServer) InitializeListener() (int, error) {
	if s.listener != nil {
		return 0, fmt.Errorf("listener already initialized")
	}
	ln, err := rawsock.Listen(listenerOptions(s.cfg))
	if err != nil {
		return 0, err
	}
	s.listener = ln
	s.server = server.New(server.RawListener(ln), serverOptions(s.cfg, s.payload))

	logger.Info().
		Str("address", listenAddress).
		Int("port", ln.Port()).
		Str("state", ln.State().String()).
		Msgf(">>> Drift is listening on %s:%d", listenAddress, ln.Port())

	return ln.Port(), nil
}

// Serve 启动阻塞的 accept 循环。必须在 InitializeListener 之后调用。
// The listener is closed when Serve returns.
func (s *AppServer) Serve(ctx context.Context) error {
	if s.server == nil {
		return fmt.Errorf("serve called before InitializeListener")
	}
	defer s.Stop()

	err := s.server.Serve(ctx)
	s.logStats()
	return err
}

// Run sets the listener up and serves until ctx is cancelled or the listener fails.
func (s *AppServer) Run(ctx context.Context) error {
	if _, err := s.InitializeListener(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Stop releases the listening socket.
func (s *AppServer) Stop() {
	s.stopOnce.Do(func() {
		if s.listener == nil {
			return
		}
		if err := s.listener.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close listener")
		}
	})
}
