package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mkraev/chime/internal/core"
	"github.com/mkraev/chime/internal/domain"
)

type roomEntry struct {
	room    domain.Room
	members map[core.ConnID]struct{}
}

// Rooms owns the room-id → member-set mapping. Rooms are created lazily
// on first join and destroyed when the last member leaves.
type Rooms struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*roomEntry
}

func NewRooms() *Rooms {
	return &Rooms{rooms: make(map[domain.RoomID]*roomEntry)}
}

// Join is idempotent and returns the resulting member set so the caller
// can fan out a peer-joined notice to the others.
func (r *Rooms) Join(rid domain.RoomID, id core.ConnID) []core.ConnID {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.rooms[rid]
	if !ok {
		entry = &roomEntry{
			room:    domain.Room{ID: rid, CreatedAt: time.Now()},
			members: make(map[core.ConnID]struct{}),
		}
		r.rooms[rid] = entry
		log.Info().Str("module", "app.rooms").Str("room", string(rid)).Msg("room created")
	}
	entry.members[id] = struct{}{}
	log.Info().Str("module", "app.rooms").Str("room", string(rid)).Str("conn", string(id)).Msg("member joined")
	return membersLocked(entry)
}

// Leave removes the member and reports whether the room became empty
// and was deleted, so call teardown can run.
func (r *Rooms) Leave(rid domain.RoomID, id core.ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.rooms[rid]
	if !ok {
		return false
	}
	if _, member := entry.members[id]; !member {
		return false
	}
	delete(entry.members, id)
	log.Info().Str("module", "app.rooms").Str("room", string(rid)).Str("conn", string(id)).Msg("member left")
	if len(entry.members) == 0 {
		delete(r.rooms, rid)
		log.Info().Str("module", "app.rooms").Str("room", string(rid)).Msg("room deleted")
		return true
	}
	return false
}

// MembersExcept is the broadcast target set for room-scoped signaling:
// everyone in the room except the sender.
func (r *Rooms) MembersExcept(rid domain.RoomID, id core.ConnID) []core.ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.rooms[rid]
	if !ok {
		return nil
	}
	out := make([]core.ConnID, 0, len(entry.members))
	for m := range entry.members {
		if m == id {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (r *Rooms) Has(rid domain.RoomID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[rid]
	return ok
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"member_count"`
	CreatedAt   time.Time     `json:"created_at"`
}

func (r *Rooms) List() []RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RoomInfo, 0, len(r.rooms))
	for rid, e := range r.rooms {
		out = append(out, RoomInfo{ID: rid, MemberCount: len(e.members), CreatedAt: e.room.CreatedAt})
	}
	return out
}

func membersLocked(e *roomEntry) []core.ConnID {
	out := make([]core.ConnID, 0, len(e.members))
	for m := range e.members {
		out = append(out, m)
	}
	return out
}
