package app

import (
	"time"

	"drift_server/internal/core/response"
	"drift_server/internal/core/server"
	"drift_server/internal/shared/types"
	"drift_server/internal/sys/rawsock"
)

// buildPayload renders the response once; every connection gets these bytes.
func buildPayload(cfg *types.Config) ([]byte, error) {
	return response.Build(cfg.ResponseConf.ContentType, cfg.ResponseConf.Message)
}

func listenerOptions(cfg *types.Config) rawsock.Options {
	return rawsock.Options{
		Port:         cfg.ListenerConf.Port,
		Backlog:      cfg.ListenerConf.Backlog,
		ReadTimeout:  time.Duration(cfg.ListenerConf.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.ListenerConf.WriteTimeoutMs) * time.Millisecond,
	}
}

func serverOptions(cfg *types.Config, payload []byte) server.Options {
	return server.Options{
		BufferSize: cfg.ListenerConf.BufferSize,
		Payload:    payload,
	}
}
