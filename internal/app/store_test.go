package app

import (
	"context"
	"testing"
	"time"

	"github.com/mkraev/chime/internal/adapters/store"
	"github.com/mkraev/chime/internal/domain"
)

func TestCallWriterPersistsTransitions(t *testing.T) {
	mem := store.NewMemory()
	w := NewCallWriter(mem)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	c := NewCalls(0, w)
	c.OfferRouted("alice", "bob", "", domain.CallAudio)
	c.AnswerRouted("bob", "alice", "")
	c.End("alice", "bob", "")

	deadline := time.Now().Add(time.Second)
	for {
		calls := mem.ListCalls()
		if len(calls) == 1 && calls[0].State == domain.CallCompleted {
			if calls[0].StartedAt.IsZero() || calls[0].EndedAt.IsZero() {
				t.Fatalf("persisted call missing timestamps: %+v", calls[0])
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("store never converged, calls = %+v", calls)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
