package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mkraev/chime/internal/domain"
)

// CallStore is the persistence collaborator for call records. It is
// consumed through CallWriter so a slow store can never block routing.
type CallStore interface {
	CreateCallRecord(call domain.Call) error
	UpdateCallStatus(call domain.Call) error
}

type callOp struct {
	create bool
	call   domain.Call
}

// CallWriter is a single-writer queue in front of a CallStore.
// Enqueueing never blocks; on overflow the record is dropped and
// logged, the call state machine stays authoritative in memory.
type CallWriter struct {
	store CallStore
	ops   chan callOp
}

func NewCallWriter(store CallStore) *CallWriter {
	return &CallWriter{
		store: store,
		ops:   make(chan callOp, 256),
	}
}

func (w *CallWriter) Created(call domain.Call) { w.enqueue(callOp{create: true, call: call}) }
func (w *CallWriter) Updated(call domain.Call) { w.enqueue(callOp{call: call}) }

func (w *CallWriter) enqueue(op callOp) {
	select {
	case w.ops <- op:
	default:
		log.Warn().Str("module", "app.callwriter").Str("call", string(op.call.ID)).Msg("queue full, record dropped")
	}
}

func (w *CallWriter) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.callwriter").Msg("writer stopped")
			return
		case op := <-w.ops:
			var err error
			if op.create {
				err = w.store.CreateCallRecord(op.call)
			} else {
				err = w.store.UpdateCallStatus(op.call)
			}
			if err != nil {
				log.Error().Err(err).Str("module", "app.callwriter").Str("call", string(op.call.ID)).Msg("store write failed")
			}
		}
	}
}
