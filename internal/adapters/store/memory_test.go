package store

import (
	"testing"

	"github.com/mkraev/chime/internal/domain"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	m := NewMemory()

	call := domain.Call{ID: "call-1", Caller: "alice", Receiver: "bob", Type: domain.CallAudio, State: domain.CallInitiated}
	if err := m.CreateCallRecord(call); err != nil {
		t.Fatalf("create: %v", err)
	}

	call.State = domain.CallCompleted
	if err := m.UpdateCallStatus(call); err != nil {
		t.Fatalf("update: %v", err)
	}

	calls := m.ListCalls()
	if len(calls) != 1 {
		t.Fatalf("list = %d calls; want 1", len(calls))
	}
	if calls[0].State != domain.CallCompleted {
		t.Fatalf("state = %s; want completed", calls[0].State)
	}

	if err := m.UpdateCallStatus(domain.Call{ID: "missing"}); err == nil {
		t.Fatal("updating an unknown call must fail")
	}
}

func TestMemoryStorePreservesInsertionOrder(t *testing.T) {
	m := NewMemory()
	for _, id := range []domain.CallID{"a", "b", "c"} {
		if err := m.CreateCallRecord(domain.Call{ID: id}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	calls := m.ListCalls()
	if len(calls) != 3 || calls[0].ID != "a" || calls[2].ID != "c" {
		t.Fatalf("order = %v", calls)
	}
}
