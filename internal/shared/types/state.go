package types

// HealthStatus is the outcome of a probe against a running listener.
type HealthStatus int

const (
	StatusUnknown HealthStatus = iota
	StatusUp
	StatusDown
)

func (s HealthStatus) String() string {
	switch s {
	case StatusUp:
		return "UP"
	case StatusDown:
		return "DOWN"
	default:
		return "UNKNOWN"
	}
}

// Stats holds the counters of the accept loop.
type Stats struct {
	Connections  uint64 `json:"connections"`
	AcceptErrors uint64 `json:"acceptErrors"`
	BytesIn      uint64 `json:"bytesIn"`
	BytesOut     uint64 `json:"bytesOut"`
}
