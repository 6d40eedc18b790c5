package artifact

import (
	"context"
	"sync"

	"github.com/HamzaTakiX/Blockchain-project/model"
)

// MemoryStore is an in-process content-addressed store for development and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[ContentID][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[ContentID][]byte)}
}

func (m *MemoryStore) Store(ctx context.Context, data []byte) (ContentID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, err := ComputeID(data)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[id]; !ok {
		m.blobs[id] = append([]byte(nil), data...)
	}
	return id, nil
}

func (m *MemoryStore) Fetch(ctx context.Context, id ContentID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[id]
	if !ok {
		return nil, model.Errorf(model.KindNotFound, "content '%s' not found", id)
	}
	return append([]byte(nil), data...), nil
}

// Len returns the number of distinct blobs held.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
