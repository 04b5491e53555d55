package storage

import (
	"context"
	"io"
	"sync"
)

// Memory 进程内实现，测试和本地联调用
type Memory struct {
	BaseURL string

	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func NewMemory(baseURL string) *Memory {
	return &Memory{BaseURL: baseURL, objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *Memory) Upload(ctx context.Context, obj Object) (string, error) {
	if err := validate(obj); err != nil {
		return "", err
	}
	b, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[obj.Key()] = b
	m.types[obj.Key()] = obj.ContentType
	return m.BaseURL + "/" + obj.Key(), nil
}

func (m *Memory) Get(key string) ([]byte, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, m.types[key], ok
}

func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}
