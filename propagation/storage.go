package propagation

import (
	"sync"

	"github.com/Roshan0045/massa/message"
)

// Storage is the reference-counted handle the propagation owner thread
// uses to keep operations alive for as long as they may still need to be
// announced to a peer. It abstracts whatever pool actually owns operation
// bytes; propagation only needs to pin and release by id.
type Storage interface {
	Acquire(ids []message.OperationID)
	Release(ids []message.OperationID)
}

// MapStorage is a minimal in-memory reference-counted Storage, sufficient
// for tests and for a single-process node where operations are otherwise
// held in one shared pool keyed by id.
type MapStorage struct {
	mu   sync.Mutex
	refs map[message.OperationID]int
}

func NewMapStorage() *MapStorage {
	return &MapStorage{refs: make(map[message.OperationID]int)}
}

func (m *MapStorage) Acquire(ids []message.OperationID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		m.refs[id]++
	}
}

func (m *MapStorage) Release(ids []message.OperationID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		n, ok := m.refs[id]
		if !ok {
			continue
		}
		if n <= 1 {
			delete(m.refs, id)
		} else {
			m.refs[id] = n - 1
		}
	}
}

// RefCount reports the current reference count for id, for tests.
func (m *MapStorage) RefCount(id message.OperationID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refs[id]
}
