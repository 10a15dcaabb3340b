package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mkraev/chime/internal/domain"
)

// callKey identifies the one active call a pairing or room may have.
type callKey string

func directKey(a, b domain.UserID) callKey {
	if b < a {
		a, b = b, a
	}
	return callKey("user:" + string(a) + "|" + string(b))
}

func roomCallKey(rid domain.RoomID) callKey {
	return callKey("room:" + string(rid))
}

type callEntry struct {
	call  domain.Call
	timer *time.Timer
}

// Calls drives the call lifecycle state machine. Transitions come only
// from signaling and lifecycle events; terminal calls are dropped from
// the active set, which makes late events natural no-ops.
type Calls struct {
	mu          sync.Mutex
	active      map[callKey]*callEntry
	ringTimeout time.Duration
	writer      *CallWriter
	onTimeout   func(call domain.Call)
}

// NewCalls builds the manager. ringTimeout zero disables the ringing
// deadline. writer may be nil when no persistence is attached.
func NewCalls(ringTimeout time.Duration, writer *CallWriter) *Calls {
	return &Calls{
		active:      make(map[callKey]*callEntry),
		ringTimeout: ringTimeout,
		writer:      writer,
	}
}

// SetTimeoutHandler registers the callback fired (outside the lock)
// when a ringing call expires unanswered.
func (c *Calls) SetTimeoutHandler(f func(call domain.Call)) {
	c.onTimeout = f
}

// OfferRouted records a successfully delivered offer: creates the
// CallSession if the pairing/room has none and advances it to ringing.
func (c *Calls) OfferRouted(caller, receiver domain.UserID, room domain.RoomID, ctype domain.CallType) (domain.Call, bool) {
	key := c.keyFor(caller, receiver, room)

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.active[key]; ok {
		return entry.call, false
	}

	now := time.Now()
	call := domain.Call{
		ID:        domain.NewCallID(),
		Caller:    caller,
		Receiver:  receiver,
		Room:      room,
		Type:      ctype,
		State:     domain.CallInitiated,
		CreatedAt: now,
	}
	entry := &callEntry{call: call}
	c.active[key] = entry
	if c.writer != nil {
		c.writer.Created(call)
	}

	// Delivery already succeeded, so the peer is reachable.
	c.transitionLocked(key, entry, domain.CallRinging)
	c.armTimerLocked(key, entry)
	return entry.call, true
}

// AnswerRouted records a successfully delivered answer.
func (c *Calls) AnswerRouted(answerer, caller domain.UserID, room domain.RoomID) (domain.Call, bool) {
	key := c.keyFor(answerer, caller, room)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.active[key]
	if !ok {
		return domain.Call{}, false
	}
	if !c.transitionLocked(key, entry, domain.CallOngoing) {
		return entry.call, false
	}
	entry.call.StartedAt = time.Now()
	if c.writer != nil {
		c.writer.Updated(entry.call)
	}
	return entry.call, true
}

// End handles an explicit end-call from either party. A receiver
// hanging up while ringing is a rejection; the caller abandoning the
// ring is a miss; hanging up an ongoing call completes it.
func (c *Calls) End(ender domain.UserID, other domain.UserID, room domain.RoomID) (domain.Call, bool) {
	key := c.keyFor(ender, other, room)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.active[key]
	if !ok {
		return domain.Call{}, false
	}
	var to domain.CallState
	switch entry.call.State {
	case domain.CallRinging, domain.CallInitiated:
		if ender == entry.call.Caller {
			to = domain.CallMissed
		} else {
			to = domain.CallRejected
		}
	case domain.CallOngoing:
		to = domain.CallCompleted
	default:
		return entry.call, false
	}
	if !c.transitionLocked(key, entry, to) {
		return entry.call, false
	}
	return entry.call, true
}

// PeerGone terminates every active direct call involving the user:
// ringing becomes missed, ongoing becomes completed. Returns the calls
// that transitioned so the other parties can be notified.
func (c *Calls) PeerGone(uid domain.UserID) []domain.Call {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []domain.Call
	for key, entry := range c.active {
		if entry.call.Caller != uid && entry.call.Receiver != uid {
			continue
		}
		if c.terminateLocked(key, entry) {
			out = append(out, entry.call)
		}
	}
	return out
}

// RoomGone terminates the room's call, if any, once its membership is
// empty.
func (c *Calls) RoomGone(rid domain.RoomID) (domain.Call, bool) {
	key := roomCallKey(rid)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.active[key]
	if !ok {
		return domain.Call{}, false
	}
	if !c.terminateLocked(key, entry) {
		return entry.call, false
	}
	return entry.call, true
}

// Lookup returns the active call for a pairing or room, if any.
func (c *Calls) Lookup(a, b domain.UserID, room domain.RoomID) (domain.Call, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.active[c.keyFor(a, b, room)]; ok {
		return entry.call, true
	}
	return domain.Call{}, false
}

func (c *Calls) keyFor(a, b domain.UserID, room domain.RoomID) callKey {
	if room != "" {
		return roomCallKey(room)
	}
	return directKey(a, b)
}

func (c *Calls) terminateLocked(key callKey, entry *callEntry) bool {
	switch entry.call.State {
	case domain.CallInitiated, domain.CallRinging:
		return c.transitionLocked(key, entry, domain.CallMissed)
	case domain.CallOngoing:
		return c.transitionLocked(key, entry, domain.CallCompleted)
	}
	return false
}

func (c *Calls) transitionLocked(key callKey, entry *callEntry, to domain.CallState) bool {
	from := entry.call.State
	if !from.CanTransition(to) {
		log.Debug().Str("module", "app.calls").Str("call", string(entry.call.ID)).
			Str("from", string(from)).Str("to", string(to)).Msg("transition ignored")
		return false
	}
	entry.call.State = to
	if entry.timer != nil {
		entry.timer.Stop()
		entry.timer = nil
	}
	if to.Terminal() {
		entry.call.EndedAt = time.Now()
		if !entry.call.StartedAt.IsZero() {
			entry.call.Duration = int(entry.call.EndedAt.Sub(entry.call.StartedAt).Seconds())
		}
		delete(c.active, key)
	}
	if c.writer != nil {
		c.writer.Updated(entry.call)
	}
	log.Info().Str("module", "app.calls").Str("call", string(entry.call.ID)).
		Str("from", string(from)).Str("to", string(to)).Msg("call transition")
	return true
}

func (c *Calls) armTimerLocked(key callKey, entry *callEntry) {
	if c.ringTimeout <= 0 {
		return
	}
	id := entry.call.ID
	entry.timer = time.AfterFunc(c.ringTimeout, func() {
		c.expire(key, id)
	})
}

func (c *Calls) expire(key callKey, id domain.CallID) {
	c.mu.Lock()
	entry, ok := c.active[key]
	if !ok || entry.call.ID != id || entry.call.State != domain.CallRinging {
		c.mu.Unlock()
		return
	}
	c.transitionLocked(key, entry, domain.CallMissed)
	call := entry.call
	c.mu.Unlock()

	log.Info().Str("module", "app.calls").Str("call", string(call.ID)).Msg("ring timeout")
	if c.onTimeout != nil {
		c.onTimeout(call)
	}
}
