package propagation

import "time"

// Config collects the propagation owner-thread's tunables. All are
// process-wide configuration; changing them at runtime is not supported.
type Config struct {
	// BufferCapacity is operation_announcement_buffer_capacity: the
	// pending-batch size that forces an immediate flush.
	BufferCapacity int

	// FlushInterval is operation_announcement_interval: the maximum time
	// a batch waits before being flushed regardless of size.
	FlushInterval time.Duration

	// MaxOperationsPerMessage chunks each peer announcement.
	MaxOperationsPerMessage int

	// MaxPropagationTime bounds how long a retention group is kept
	// available to serve on request.
	MaxPropagationTime time.Duration

	// MaxOpsKeptForPropagation bounds the total number of ids held
	// across all retention groups.
	MaxOpsKeptForPropagation int

	// PerPeerCacheSize bounds each peer's dedup LRU of operation-id
	// prefixes.
	PerPeerCacheSize int

	// PrefixLength is the byte length used for compact operation-id
	// announcements (message.OperationPrefix).
	PrefixLength int

	// Now overrides the wall-clock source; nil uses time.Now.
	Now func() time.Time
}

// DefaultConfig returns conservative defaults for local development.
func DefaultConfig() Config {
	return Config{
		BufferCapacity:           512,
		FlushInterval:            500 * time.Millisecond,
		MaxOperationsPerMessage:  1024,
		MaxPropagationTime:       30 * time.Second,
		MaxOpsKeptForPropagation: 100_000,
		PerPeerCacheSize:         100_000,
		PrefixLength:             8,
	}
}

func (c Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
