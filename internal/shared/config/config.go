package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"drift_server/internal/shared/types"
)

// LoadIni 加载 drift.ini 配置文件并覆盖 cfg 中的默认值。
// A missing file leaves the defaults in place.
func LoadIni(cfg *types.Config, fileName string) error {
	iniFile, err := ini.LoadSources(ini.LoadOptions{Loose: true}, fileName)
	if err != nil {
		return err
	}
	if err := iniFile.MapTo(cfg); err != nil {
		return err
	}
	overrideFromEnvInt(&cfg.ListenerConf.Port, "PORT")
	overrideFromEnvString(&cfg.LogConf.Level, "LOG_LEVEL")
	return Validate(cfg)
}

// Validate rejects settings the listener cannot start with.
func Validate(cfg *types.Config) error {
	l := cfg.ListenerConf
	if l.Port < 0 || l.Port > 65535 {
		return fmt.Errorf("listener port %d out of range", l.Port)
	}
	if l.Backlog <= 0 {
		return fmt.Errorf("listener backlog must be positive, got %d", l.Backlog)
	}
	if l.BufferSize <= 0 {
		return fmt.Errorf("listener buffer_size must be positive, got %d", l.BufferSize)
	}
	if l.ReadTimeoutMs < 0 || l.WriteTimeoutMs < 0 {
		return fmt.Errorf("listener timeouts must not be negative")
	}

	switch strings.ToLower(cfg.LogConf.Output) {
	case "", "stdout", "stderr":
	default:
		return fmt.Errorf("unknown log output %q", cfg.LogConf.Output)
	}
	switch strings.ToLower(cfg.LogConf.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", cfg.LogConf.Format)
	}
	return nil
}

func overrideFromEnvInt(target *int, envName string) {
	envValue := os.Getenv(envName)
	if envValue != "" {
		if intValue, err := strconv.Atoi(envValue); err == nil {
			*target = intValue
		}
	}
}

func overrideFromEnvString(target *string, envName string) {
	if envValue := os.Getenv(envName); envValue != "" {
		*target = envValue
	}
}
