package app

import (
	"drift_server/internal/shared/logger"
	"drift_server/internal/shared/types"
)

// Stats returns the accept loop counters.
func (s *AppServer) Stats() types.Stats {
	if s.server == nil {
		return types.Stats{}
	}
	return s.server.Stats()
}

func (s *AppServer) logStats() {
	stats := s.Stats()
	logger.Info().
		Uint64("connections", stats.Connections).
		Uint64("accept_errors", stats.AcceptErrors).
		Uint64("bytes_in", stats.BytesIn).
		Uint64("bytes_out", stats.BytesOut).
		Msg("Accept loop stopped.")
}
