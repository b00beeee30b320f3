package types

// ListenerConf 包含监听套接字和接收缓冲区的配置
type ListenerConf struct {
	Port           int `ini:"port"`
	Backlog        int `ini:"backlog"`
	BufferSize     int `ini:"buffer_size"`
	ReadTimeoutMs  int `ini:"read_timeout_ms"`  // 0 disables SO_RCVTIMEO
	WriteTimeoutMs int `ini:"write_timeout_ms"` // 0 disables SO_SNDTIMEO
}

// ResponseConf describes the fixed reply sent to every client.
type ResponseConf struct {
	ContentType string `ini:"content_type"`
	Message     string `ini:"message"`
}

// LogConf contains logging specific configuration
type LogConf struct {
	Level  string `ini:"level"`
	Output string `ini:"output"` // "stdout" or "stderr"
	Format string `ini:"format"` // "console" or "json"
}

// Config 是 drift 的统一配置结构体
type Config struct {
	ListenerConf `ini:"listener"`
	ResponseConf `ini:"response"`
	LogConf      `ini:"log"`
}

// DefaultConfig returns the settings of the reference build.
func DefaultConfig() *Config {
	return &Config{
		ListenerConf: ListenerConf{
			Port:       8080,
			Backlog:    128,
			BufferSize: 1024,
		},
		ResponseConf: ResponseConf{
			ContentType: "text/plain",
			Message:     "Hello from Drift on ARM64!",
		},
		LogConf: LogConf{
			Level:  "info",
			Output: "stdout",
			Format: "console",
		},
	}
}
