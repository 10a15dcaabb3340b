// Package store provides call-record persistence adapters. The real
// backend lives in the CRUD service; this in-memory implementation
// keeps the signaling layer self-contained and feeds the introspection
// API.
package store

import (
	"fmt"
	"sync"

	"github.com/mkraev/chime/internal/domain"
)

type Memory struct {
	mu    sync.RWMutex
	calls map[domain.CallID]domain.Call
	order []domain.CallID
}

func NewMemory() *Memory {
	return &Memory{calls: make(map[domain.CallID]domain.Call)}
}

func (m *Memory) CreateCallRecord(call domain.Call) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.calls[call.ID]; !ok {
		m.order = append(m.order, call.ID)
	}
	m.calls[call.ID] = call
	return nil
}

func (m *Memory) UpdateCallStatus(call domain.Call) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.calls[call.ID]; !ok {
		return fmt.Errorf("unknown call %s", call.ID)
	}
	m.calls[call.ID] = call
	return nil
}

func (m *Memory) ListCalls() []domain.Call {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Call, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.calls[id])
	}
	return out
}
