package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"drift_server/internal/core/health"
	"drift_server/internal/core/response"
	"drift_server/internal/shared/config"
	"drift_server/internal/shared/logger"
	"drift_server/internal/shared/types"
)

func main() {
	configDir := pflag.String("configdir", "configs", "Path to config directory")
	timeout := pflag.DurationP("timeout", "t", 3*time.Second, "Per-target probe timeout")
	loose := pflag.Bool("loose", false, "Accept any 'HTTP/1.1 200' reply instead of the exact payload")
	verbose := pflag.BoolP("verbose", "v", false, "Log every probe")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [host:port ...]\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	cfg := types.DefaultConfig()
	if err := config.LoadIni(cfg, filepath.Join(*configDir, "drift.ini")); err != nil {
		fmt.Fprintf(os.Stdout, "Fatal: %v\n", err)
		os.Exit(1)
	}

	logConf := types.LogConf{Level: "info", Output: "stdout", Format: "console"}
	if *verbose {
		logConf.Level = "debug"
	}
	if err := logger.Init(logConf); err != nil {
		fmt.Fprintf(os.Stdout, "Fatal: %v\n", err)
		os.Exit(1)
	}

	var expected []byte
	if !*loose {
		payload, err := response.Build(cfg.ContentType, cfg.Message)
		if err != nil {
			logger.Fatal().Err(err).Msg("Invalid response configuration")
		}
		expected = payload
	}

	targets := pflag.Args()
	if len(targets) == 0 {
		targets = []string{net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.Port))}
	}

	results := health.New(*timeout, expected).Check(context.Background(), targets)

	sort.Strings(targets)
	healthy := true
	for _, target := range targets {
		r := results[target]
		if r.Status == types.StatusUp {
			logger.Info().Str("target", target).Str("status", r.Status.String()).Dur("latency", r.Latency).Msg("Probe passed")
			continue
		}
		healthy = false
		logger.Error().Str("target", target).Str("status", r.Status.String()).Err(r.Err).Msg("Probe failed")
	}
	if !healthy {
		os.Exit(1)
	}
}
