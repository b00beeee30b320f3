package health

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"drift_server/internal/shared/logger"
	"drift_server/internal/shared/types"
)

// probeRequest is what a plain HTTP client would send; the server ignores it.
var probeRequest = []byte("GET / HTTP/1.1\r\nHost: drift\r\nUser-Agent: driftprobe\r\n\r\n")

// maxLooseRead bounds how much of an unexpected reply is read.
const maxLooseRead = 64 << 10

var statusLine = []byte("HTTP/1.1 200 ")

// Result is the outcome of probing one target.
type Result struct {
	Target  string
	Status  types.HealthStatus
	Latency time.Duration
	Err     error
}

// Checker 负责对运行中的监听器进行健康检查。
type Checker struct {
	timeout  time.Duration
	expected []byte
}

// New 创建一个新的 Checker 实例。
// With a nil expected payload any "HTTP/1.1 200" reply counts as healthy.
func New(timeout time.Duration, expected []byte) *Checker {
	return &Checker{
		timeout:  timeout,
		expected: expected,
	}
}

// Probe connects to target, sends one request and reads until the server
// closes the connection.
func (c *Checker) Probe(ctx context.Context, target string) Result {
	result := Result{Target: target, Status: types.StatusDown}
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", target)
	if err != nil {
		result.Err = fmt.Errorf("dial %s: %w", target, err)
		return result
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if _, err := conn.Write(probeRequest); err != nil {
		result.Err = fmt.Errorf("send request: %w", err)
		return result
	}

	limit := int64(maxLooseRead)
	if c.expected != nil {
		limit = int64(len(c.expected)) + 1
	}
	reply, err := io.ReadAll(io.LimitReader(conn, limit))
	result.Latency = time.Since(start)
	if err != nil {
		result.Err = fmt.Errorf("read reply: %w", err)
		return result
	}

	if c.expected != nil {
		if !bytes.Equal(reply, c.expected) {
			result.Err = fmt.Errorf("unexpected reply of %d bytes (want %d)", len(reply), len(c.expected))
			return result
		}
	} else if !bytes.HasPrefix(reply, statusLine) {
		result.Err = fmt.Errorf("reply does not start with %q", statusLine)
		return result
	}

	result.Status = types.StatusUp
	return result
}

// Check 对传入的目标地址进行并发健康检查。
func (c *Checker) Check(ctx context.Context, targets []string) map[string]Result {
	results := make(map[string]Result, len(targets))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, target := range targets {
		wg.Add(1)
		go func(target string) {
			defer wg.Done()

			r := c.Probe(ctx, target)
			logFields := logger.Debug().Str("target", target).Dur("latency", r.Latency)
			if r.Status == types.StatusUp {
				logFields.Msg("HealthCheck: Check passed.")
			} else {
				logFields.Err(r.Err).Msg("HealthCheck: Check failed.")
			}

			mu.Lock()
			results[target] = r
			mu.Unlock()
		}(target)
	}
	wg.Wait()

	return results
}
