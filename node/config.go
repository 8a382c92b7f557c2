// Package node wires the sequencer, tick handler, and propagation loop
// together into a single runnable process, the way the teacher's node
// package wires blockchain/RPC/Engine-API/P2P/TxPool (pkg/node/config.go,
// pkg/node/lifecycle.go).
package node

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds all configuration for a massa-node process.
type Config struct {
	// DataDir is the root directory for all data storage.
	DataDir string

	// Name is a human-readable node identifier (used in logs).
	Name string

	// ThreadCount is the number of parallel block-producing lanes.
	ThreadCount uint8

	// T0 is the duration of one full period across all threads.
	T0 time.Duration

	// GenesisTimestamp is wall-clock time zero for slot (0,0).
	GenesisTimestamp time.Time

	// CursorDelay is subtracted from now() before converting to a slot,
	// giving producers a safety margin (§4.3).
	CursorDelay time.Duration

	// LastStartPeriod anchors the fallback slot used before genesis.
	LastStartPeriod uint64

	// PropagationBufferCapacity is operation_announcement_buffer_capacity.
	PropagationBufferCapacity int

	// PropagationFlushInterval is operation_announcement_interval.
	PropagationFlushInterval time.Duration

	// MaxOperationsPerMessage chunks per-peer announcements.
	MaxOperationsPerMessage int

	// MaxOperationsPropagationTime bounds retention group age.
	MaxOperationsPropagationTime time.Duration

	// MaxOpsKeptForPropagation bounds total retained operation ids.
	MaxOpsKeptForPropagation int

	// PeerPrefixCacheSize bounds each peer's dedup LRU.
	PeerPrefixCacheSize int

	// OperationPrefixLength is the byte length used for compact
	// operation-id announcements.
	OperationPrefixLength int

	// Verbosity controls numeric log level (0=silent .. 5=trace).
	Verbosity int

	// Metrics enables the metrics collection subsystem.
	Metrics bool

	// Now overrides the wall-clock source; nil uses time.Now. Exposed
	// for deterministic tests, mirroring sequencer.Config.Now.
	Now func() time.Time
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:     defaultDataDir(),
		Name:        "massa-node",
		ThreadCount: 32,
		T0:          16 * time.Second,

		PropagationBufferCapacity:    512,
		PropagationFlushInterval:     500 * time.Millisecond,
		MaxOperationsPerMessage:      1024,
		MaxOperationsPropagationTime: 30 * time.Second,
		MaxOpsKeptForPropagation:     100_000,
		PeerPrefixCacheSize:          100_000,
		OperationPrefixLength:        8,

		Verbosity: 3,
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".massa-node"
	}
	return filepath.Join(home, ".massa-node")
}

// Validate checks configuration values for correctness.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("config: datadir must not be empty")
	}
	if c.ThreadCount == 0 {
		return errors.New("config: thread count must be > 0")
	}
	if c.T0 <= 0 {
		return errors.New("config: t0 must be positive")
	}
	if c.PropagationBufferCapacity <= 0 {
		return fmt.Errorf("config: invalid propagation buffer capacity: %d", c.PropagationBufferCapacity)
	}
	if c.MaxOperationsPerMessage <= 0 {
		return fmt.Errorf("config: invalid max operations per message: %d", c.MaxOperationsPerMessage)
	}
	if c.Verbosity < 0 || c.Verbosity > 5 {
		return fmt.Errorf("config: verbosity must be 0-5, got %d", c.Verbosity)
	}
	return nil
}

// VerbosityToLogLevel converts a numeric verbosity level to a log level
// string, matching the teacher's node.VerbosityToLogLevel mapping.
func VerbosityToLogLevel(v int) string {
	switch {
	case v <= 0:
		return "silent"
	case v == 1:
		return "error"
	case v == 2:
		return "warn"
	case v == 3:
		return "info"
	case v == 4:
		return "debug"
	default:
		return "trace"
	}
}

// dataDirSubdirs lists subdirectories created inside the data directory.
var dataDirSubdirs = []string{"sequencer", "operations"}

// InitDataDir creates the data directory and its standard subdirectories
// if they do not already exist.
func (c *Config) InitDataDir() error {
	if c.DataDir == "" {
		return errors.New("config: datadir must not be empty")
	}
	if err := os.MkdirAll(c.DataDir, 0700); err != nil {
		return fmt.Errorf("config: create datadir: %w", err)
	}
	for _, sub := range dataDirSubdirs {
		dir := filepath.Join(c.DataDir, sub)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("config: create %s: %w", sub, err)
		}
	}
	return nil
}

func (c *Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
