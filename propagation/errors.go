package propagation

import "errors"

var (
	// ErrClosed is returned by calls made after Close.
	ErrClosed = errors.New("propagation: closed")

	// ErrPeerDisconnected should be wrapped by a Sender implementation's
	// send error to signal that the peer is gone. The owner thread aborts
	// that peer's announcement for the current cycle and purges its cache
	// at the next refresh tick, rather than treating it as fatal.
	ErrPeerDisconnected = errors.New("propagation: peer disconnected")
)
