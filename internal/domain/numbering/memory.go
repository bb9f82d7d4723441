package numbering

import (
	"context"
	"sync"
)

// MemoryStore es un CounterStore en memoria (tests y modo sin base de datos).
type MemoryStore struct {
	mu   sync.Mutex
	last map[string]int64
}

// NewMemoryStore construye el almacén vacío.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{last: make(map[string]int64)}
}

// Load devuelve el último valor asignado de la serie (0 si no existe).
func (s *MemoryStore) Load(_ context.Context, series string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[series], nil
}

// Save guarda el último valor asignado.
func (s *MemoryStore) Save(_ context.Context, series string, last int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[series] = last
	return nil
}
