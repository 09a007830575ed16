package store

import (
	"context"
	"sync"
	"time"
)

// Memory keeps rooms in process. Rooms are held encoded so callers never
// share a board with the store.
type Memory struct {
	mu       sync.RWMutex
	rooms    map[string][]byte
	archives map[string][]string
}

func NewMemory() *Memory {
	return &Memory{rooms: make(map[string][]byte), archives: make(map[string][]string)}
}

func (m *Memory) Load(_ context.Context, name string) (*Room, error) {
	key, err := Key(name)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	data, ok := m.rooms[key]
	m.mu.RUnlock()
	if !ok {
		return newRoom(name), nil
	}
	return decode(data)
}

func (m *Memory) Save(_ context.Context, r *Room) error {
	key, err := Key(r.Name)
	if err != nil {
		return err
	}
	r.UpdatedAt = time.Now().UTC()
	data, err := encode(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[key] = data
	return nil
}

func (m *Memory) PushArchive(_ context.Context, name, pbn string) error {
	key, err := Key(name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archives[key] = trim(append([]string{pbn}, m.archives[key]...))
	return nil
}

func (m *Memory) Archive(_ context.Context, name string) ([]string, error) {
	key, err := Key(name)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string{}, m.archives[key]...), nil
}

func (m *Memory) ReplaceArchive(_ context.Context, name string, boards []string) error {
	key, err := Key(name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archives[key] = trim(append([]string{}, boards...))
	return nil
}

func (m *Memory) Close() error { return nil }
