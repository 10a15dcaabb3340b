package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mkraev/chime/internal/core"
	"github.com/mkraev/chime/internal/domain"
)

// sessionEntry is one live transport connection plus whatever identity
// and room membership it has accumulated. Owned exclusively by Presence;
// nothing outside this file touches the maps.
type sessionEntry struct {
	userID domain.UserID // empty until register
	sig    core.SignalConnection
	rooms  map[domain.RoomID]struct{}
}

// Presence owns the mapping from logical user identity to the single
// live connection that makes that user "online". At most one live
// binding per user: a second registration supersedes the first.
type Presence struct {
	mu     sync.RWMutex
	byConn map[core.ConnID]*sessionEntry
	byUser map[domain.UserID]core.ConnID
}

func NewPresence() *Presence {
	return &Presence{
		byConn: make(map[core.ConnID]*sessionEntry),
		byUser: make(map[domain.UserID]core.ConnID),
	}
}

// RegisterResult tells the caller what a Register call displaced, so it
// can decide whom to notify.
type RegisterResult struct {
	// Superseded is set when another connection held this user; it is no
	// longer addressable by the user id but its transport stays open.
	Superseded   core.SignalConnection
	SupersededID core.ConnID
	// Released is the user id this connection was previously bound to,
	// when a connection re-registers under a different identity.
	Released domain.UserID
	// Refreshed means the binding already existed exactly as requested.
	Refreshed bool
}

func (p *Presence) Connect(id core.ConnID, sig core.SignalConnection) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byConn[id] = &sessionEntry{
		sig:   sig,
		rooms: make(map[domain.RoomID]struct{}),
	}
	log.Info().Str("module", "app.presence").Str("conn", string(id)).Msg("connection opened")
}

func (p *Presence) Register(id core.ConnID, uid domain.UserID) (RegisterResult, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.byConn[id]
	if !ok {
		return RegisterResult{}, false
	}

	var res RegisterResult
	if entry.userID == uid {
		res.Refreshed = true
		return res, true
	}
	if entry.userID != "" {
		// Re-register under a new identity: drop the old binding first.
		if p.byUser[entry.userID] == id {
			delete(p.byUser, entry.userID)
			res.Released = entry.userID
		}
	}
	if prev, held := p.byUser[uid]; held && prev != id {
		if old, alive := p.byConn[prev]; alive {
			old.userID = ""
			res.Superseded = old.sig
			res.SupersededID = prev
		}
	}
	entry.userID = uid
	p.byUser[uid] = id
	log.Info().Str("module", "app.presence").Str("conn", string(id)).Str("user", string(uid)).Msg("user registered")
	return res, true
}

// Lookup resolves a user to its live connection. Absence is a normal
// outcome: the user is offline.
func (p *Presence) Lookup(uid domain.UserID) (core.ConnID, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	id, ok := p.byUser[uid]
	return id, ok
}

func (p *Presence) SignalOf(id core.ConnID) (core.SignalConnection, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if e, ok := p.byConn[id]; ok {
		return e.sig, true
	}
	return nil, false
}

func (p *Presence) UserOf(id core.ConnID) (domain.UserID, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if e, ok := p.byConn[id]; ok && e.userID != "" {
		return e.userID, true
	}
	return "", false
}

// Unregister removes the user binding only if it still points at this
// connection, so a superseded session cannot evict its successor.
func (p *Presence) Unregister(id core.ConnID) (domain.UserID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.byConn[id]
	if !ok || entry.userID == "" {
		return "", false
	}
	uid := entry.userID
	if p.byUser[uid] != id {
		return "", false
	}
	delete(p.byUser, uid)
	entry.userID = ""
	log.Info().Str("module", "app.presence").Str("conn", string(id)).Str("user", string(uid)).Msg("user unregistered")
	return uid, true
}

// Disconnect destroys the session and returns what it owned so the
// orchestrator can cascade cleanup.
func (p *Presence) Disconnect(id core.ConnID) (domain.UserID, []domain.RoomID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.byConn[id]
	if !ok {
		return "", nil, false
	}
	uid := entry.userID
	if uid != "" && p.byUser[uid] == id {
		delete(p.byUser, uid)
	} else {
		uid = ""
	}
	rooms := make([]domain.RoomID, 0, len(entry.rooms))
	for rid := range entry.rooms {
		rooms = append(rooms, rid)
	}
	delete(p.byConn, id)
	log.Info().Str("module", "app.presence").Str("conn", string(id)).Str("user", string(uid)).Msg("connection closed")
	return uid, rooms, true
}

func (p *Presence) TrackJoin(id core.ConnID, rid domain.RoomID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.byConn[id]; ok {
		e.rooms[rid] = struct{}{}
	}
}

func (p *Presence) TrackLeave(id core.ConnID, rid domain.RoomID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.byConn[id]; ok {
		delete(e.rooms, rid)
	}
}

// Peers returns every live connection except the given one. Used for
// best-effort presence broadcasts.
func (p *Presence) Peers(except core.ConnID) []core.SignalConnection {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]core.SignalConnection, 0, len(p.byConn))
	for id, e := range p.byConn {
		if id == except {
			continue
		}
		out = append(out, e.sig)
	}
	return out
}

func (p *Presence) Online() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byUser)
}
