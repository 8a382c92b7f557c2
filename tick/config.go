package tick

// Config configures the tick handler.
type Config struct {
	ThreadCount uint8
}

// DefaultConfig returns a two-thread configuration, matching the
// sequencer package's DefaultConfig.
func DefaultConfig() Config {
	return Config{ThreadCount: 2}
}
