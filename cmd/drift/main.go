package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"drift_server/internal/app"
	"drift_server/internal/shared/config"
	"drift_server/internal/shared/errors"
	"drift_server/internal/shared/logger"
	"drift_server/internal/shared/types"
)

func main() {
	configDir := pflag.String("configdir", "configs", "Path to config directory")
	port := pflag.IntP("port", "p", -1, "Listen port, overrides drift.ini and $PORT")
	pflag.Parse()

	iniPath := filepath.Join(*configDir, "drift.ini")

	// 1. 加载 .ini 配置
	cfg := types.DefaultConfig()
	if err := config.LoadIni(cfg, iniPath); err != nil {
		// Use standard fmt before logger is initialized.
		fmt.Fprintf(os.Stdout, "Fatal: Failed to load config file '%s': %v\n", iniPath, err)
		os.Exit(1)
	}
	if *port >= 0 {
		cfg.Port = *port
		if err := config.Validate(cfg); err != nil {
			fmt.Fprintf(os.Stdout, "Fatal: %v\n", err)
			os.Exit(1)
		}
	}

	// 1.1 初始化日志系统
	if err := logger.Init(cfg.LogConf); err != nil {
		fmt.Fprintf(os.Stdout, "Fatal: Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// 2. 创建并运行服务器
	appServer, err := app.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid response configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// After the first signal, default handling is restored so a second one kills the process.
	go func() {
		<-ctx.Done()
		stop()
	}()

	if err := appServer.Run(ctx); err != nil {
		logger.Fatal().Err(err).Str("cause", errors.Cause(err).Error()).Msg("Drift listener failed")
	}
	logger.Info().Msg("Drift stopped.")
}
