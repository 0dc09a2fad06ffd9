package storage

import (
	"context"
	"sync"
)

// Memory is a map-backed Store used by tests and as a scratch target.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

func NewMemory() *Memory {
	data := make(map[string]map[string][]byte, len(Collections))
	for _, c := range Collections {
		data[c] = map[string][]byte{}
	}
	return &Memory{data: data}
}

func (m *Memory) GetAll(_ context.Context, collection string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs, ok := m.data[collection]
	if !ok {
		return nil, ErrUnknownCollection
	}
	out := make(map[string][]byte, len(docs))
	for k, v := range docs {
		out[k] = append([]byte(nil), v...)
	}
	return out, nil
}

func (m *Memory) Get(_ context.Context, collection, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs, ok := m.data[collection]
	if !ok {
		return nil, false, ErrUnknownCollection
	}
	doc, ok := docs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), doc...), true, nil
}

func (m *Memory) Put(_ context.Context, collection, key string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs, ok := m.data[collection]
	if !ok {
		return ErrUnknownCollection
	}
	docs[key] = append([]byte(nil), doc...)
	return nil
}

func (m *Memory) Delete(_ context.Context, collection, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs, ok := m.data[collection]
	if !ok {
		return ErrUnknownCollection
	}
	delete(docs, key)
	return nil
}

func (m *Memory) Close() error { return nil }
