package app

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mkraev/chime/internal/core"
	"github.com/mkraev/chime/internal/domain"
)

var (
	// ErrTargetOffline is the observable "drop" outcome for a direct
	// relay whose target holds no live connection. Surfaced to the
	// sender, never swallowed.
	ErrTargetOffline = errors.New("target offline")
	// ErrNotRegistered means the sender has not bound a user identity
	// yet, so it cannot originate addressed signaling.
	ErrNotRegistered = errors.New("connection not registered")
	// ErrUnknownConnection means the transport session is already gone.
	ErrUnknownConnection = errors.New("unknown connection")
)

// Target addresses a relay: exactly one of User or Room is set. A 1:1
// call is just a degenerate two-member fanout, so both dialects share
// one resolution path.
type Target struct {
	User domain.UserID
	Room domain.RoomID
}

func (t Target) IsRoom() bool { return t.Room != "" }

// Orchestrator wires presence, rooms and calls together. It owns the
// connection lifecycle (connect/register/disconnect cascades) and the
// relay fanout; components never reach into each other's maps.
type Orchestrator struct {
	// lifecycle serializes connect/register/join/disconnect cascades so
	// no reader observes a half-cleaned connection. Relay paths only
	// take component read locks.
	lifecycle sync.Mutex

	Presence   *Presence
	Rooms      *Rooms
	Calls      *Calls
	ICEServers []domain.ICEServer
}

func NewOrchestrator(p *Presence, r *Rooms, c *Calls, ice []domain.ICEServer) *Orchestrator {
	o := &Orchestrator{Presence: p, Rooms: r, Calls: c, ICEServers: ice}
	c.SetTimeoutHandler(o.onRingTimeout)
	return o
}

// OnConnect allocates the transport session; no user identity yet.
func (o *Orchestrator) OnConnect(id core.ConnID, sig core.SignalConnection) {
	o.lifecycle.Lock()
	defer o.lifecycle.Unlock()
	o.Presence.Connect(id, sig)
}

// OnRegister binds the user identity and broadcasts presence. A repeat
// registration of the same pair is an idempotent refresh; a second
// connection for the same user supersedes the first.
func (o *Orchestrator) OnRegister(id core.ConnID, uid domain.UserID) error {
	o.lifecycle.Lock()
	defer o.lifecycle.Unlock()

	res, ok := o.Presence.Register(id, uid)
	if !ok {
		return ErrUnknownConnection
	}
	if res.Refreshed {
		return nil
	}
	if res.Superseded != nil {
		send(res.Superseded, core.SessionSuperseded{Type: "session-superseded", UserID: uid})
	}
	if res.Released != "" {
		o.broadcast(id, core.UserOffline{Type: "user-offline", UserID: res.Released})
	}
	o.broadcast(id, core.UserOnline{Type: "user-online", UserID: uid})
	return nil
}

// OnDisconnect cascades cleanup: the registry entry dies first so
// routing observes "offline" immediately, then every joined room is
// left, then affected calls are terminated and peers notified.
func (o *Orchestrator) OnDisconnect(id core.ConnID) {
	o.lifecycle.Lock()
	defer o.lifecycle.Unlock()

	uid, joined, ok := o.Presence.Disconnect(id)
	if !ok {
		return
	}
	for _, rid := range joined {
		if o.Rooms.Leave(rid, id) {
			o.Calls.RoomGone(rid)
		}
	}
	if uid == "" {
		return
	}
	for _, call := range o.Calls.PeerGone(uid) {
		ended := core.CallEnded{Type: "call-ended", EndedBy: uid}
		if call.Room != "" {
			for _, m := range o.Rooms.MembersExcept(call.Room, id) {
				if sig, alive := o.Presence.SignalOf(m); alive {
					send(sig, ended)
				}
			}
			continue
		}
		other := call.Caller
		if other == uid {
			other = call.Receiver
		}
		if other != "" {
			o.sendToUser(other, ended)
		}
	}
	o.broadcast(id, core.UserOffline{Type: "user-offline", UserID: uid})
}

// JoinRoom adds the connection to the room and fans out peer-joined to
// the members that were already there.
func (o *Orchestrator) JoinRoom(id core.ConnID, rid domain.RoomID) error {
	o.lifecycle.Lock()
	defer o.lifecycle.Unlock()

	sig, ok := o.Presence.SignalOf(id)
	if !ok {
		return ErrUnknownConnection
	}
	uid, _ := o.Presence.UserOf(id)

	o.Rooms.Join(rid, id)
	o.Presence.TrackJoin(id, rid)

	notice := core.PeerJoined{Type: "peer-joined", UserID: uid, ConnectionID: id}
	for _, m := range o.Rooms.MembersExcept(rid, id) {
		if peer, alive := o.Presence.SignalOf(m); alive {
			send(peer, notice)
		}
	}
	send(sig, core.ICEServers{Type: "ice-servers", Servers: o.ICEServers})
	return nil
}

// LeaveRoom removes the connection from the room; an emptied room tears
// down its call.
func (o *Orchestrator) LeaveRoom(id core.ConnID, rid domain.RoomID) {
	o.lifecycle.Lock()
	defer o.lifecycle.Unlock()
	o.leaveRoomLocked(id, rid)
}

func (o *Orchestrator) leaveRoomLocked(id core.ConnID, rid domain.RoomID) {
	o.Presence.TrackLeave(id, rid)
	if o.Rooms.Leave(rid, id) {
		o.Calls.RoomGone(rid)
	}
}

// RelayOffer forwards the offer verbatim and, on successful delivery,
// creates/advances the call session to ringing.
func (o *Orchestrator) RelayOffer(id core.ConnID, t Target, sdpOffer string, ctype domain.CallType) error {
	from, ok := o.Presence.UserOf(id)
	if !ok {
		return ErrNotRegistered
	}
	ev := core.OfferEvent{Type: "offer", From: from, SDPOffer: sdpOffer, CallType: ctype}
	res, err := o.fanout(id, t, ev)
	if err != nil {
		return err
	}
	// A room offer that reached no member never rang anything; without
	// this check a solo caller would ring an empty room indefinitely.
	if t.IsRoom() && res.SentTo == 0 {
		return ErrTargetOffline
	}
	o.Calls.OfferRouted(from, t.User, t.Room, ctype)
	return nil
}

// RelayAnswer forwards the answer and advances the call to ongoing.
func (o *Orchestrator) RelayAnswer(id core.ConnID, t Target, sdpAnswer string) error {
	from, ok := o.Presence.UserOf(id)
	if !ok {
		return ErrNotRegistered
	}
	ev := core.AnswerEvent{Type: "answer", From: from, SDPAnswer: sdpAnswer}
	if _, err := o.fanout(id, t, ev); err != nil {
		return err
	}
	o.Calls.AnswerRouted(from, t.User, t.Room)
	return nil
}

// RelayCandidate forwards an ICE candidate. No call-state coupling:
// candidates may legally arrive before the offer/answer is acknowledged.
func (o *Orchestrator) RelayCandidate(id core.ConnID, t Target, candidate json.RawMessage) error {
	from, ok := o.Presence.UserOf(id)
	if !ok {
		return ErrNotRegistered
	}
	_, err := o.fanout(id, t, core.CandidateEvent{Type: "ice-candidate", From: from, Candidate: candidate})
	return err
}

func (o *Orchestrator) RelayMediaToggle(id core.ConnID, t Target, mediaKind string, enabled bool) error {
	from, ok := o.Presence.UserOf(id)
	if !ok {
		return ErrNotRegistered
	}
	_, err := o.fanout(id, t, core.MediaToggled{Type: "media-toggled", UserID: from, MediaKind: mediaKind, Enabled: enabled})
	return err
}

func (o *Orchestrator) RelayScreenShare(id core.ConnID, t Target, streamID string) error {
	from, ok := o.Presence.UserOf(id)
	if !ok {
		return ErrNotRegistered
	}
	_, err := o.fanout(id, t, core.ScreenSharing{Type: "screen-sharing", UserID: from, StreamID: streamID})
	return err
}

func (o *Orchestrator) RelayScreenShareStop(id core.ConnID, t Target) error {
	from, ok := o.Presence.UserOf(id)
	if !ok {
		return ErrNotRegistered
	}
	_, err := o.fanout(id, t, core.ScreenShareStopped{Type: "screen-share-stopped", UserID: from})
	return err
}

// EndCall forwards call-ended, drives the lifecycle transition and, for
// room calls, removes the sender from the room. The call transition
// runs even when the peer is already unreachable.
func (o *Orchestrator) EndCall(id core.ConnID, t Target) error {
	from, ok := o.Presence.UserOf(id)
	if !ok {
		return ErrNotRegistered
	}
	_, deliveryErr := o.fanout(id, t, core.CallEnded{Type: "call-ended", EndedBy: from})
	o.Calls.End(from, t.User, t.Room)
	if t.IsRoom() {
		o.lifecycle.Lock()
		o.leaveRoomLocked(id, t.Room)
		o.lifecycle.Unlock()
	}
	return deliveryErr
}

// Typing relays a typing indicator to a single peer.
func (o *Orchestrator) Typing(id core.ConnID, target domain.UserID, isTyping bool) error {
	from, ok := o.Presence.UserOf(id)
	if !ok {
		return ErrNotRegistered
	}
	_, err := o.fanout(id, Target{User: target}, core.UserTyping{Type: "user-typing", From: from, IsTyping: isTyping})
	return err
}

// PrivateMessage relays a direct chat message to a connected peer.
// Nothing is stored here; history is the persistence layer's problem.
func (o *Orchestrator) PrivateMessage(id core.ConnID, target domain.UserID, message, messageType string) error {
	from, ok := o.Presence.UserOf(id)
	if !ok {
		return ErrNotRegistered
	}
	ev := core.NewMessage{
		Type:        "new-message",
		From:        from,
		Message:     message,
		MessageType: messageType,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	_, err := o.fanout(id, Target{User: target}, ev)
	return err
}

// MessageRead relays a read receipt back to the message's sender.
func (o *Orchestrator) MessageRead(id core.ConnID, target domain.UserID, messageID string) error {
	from, ok := o.Presence.UserOf(id)
	if !ok {
		return ErrNotRegistered
	}
	ev := core.MessageReadReceipt{Type: "message-read-receipt", MessageID: messageID, ReaderID: from}
	_, err := o.fanout(id, Target{User: target}, ev)
	return err
}

// fanout resolves the target to its live connections and delivers in
// fire-and-forget fashion, reporting how many peers it reached. Direct
// misses are an error; an empty room fanout is a normal zero-delivery
// outcome the caller can inspect.
func (o *Orchestrator) fanout(from core.ConnID, t Target, ev any) (core.PublishResult, error) {
	var res core.PublishResult
	if t.IsRoom() {
		for _, m := range o.Rooms.MembersExcept(t.Room, from) {
			sig, ok := o.Presence.SignalOf(m)
			if !ok {
				res.Dropped++
				continue
			}
			if send(sig, ev) {
				res.SentTo++
			} else {
				res.Dropped++
			}
		}
		return res, nil
	}
	cid, ok := o.Presence.Lookup(t.User)
	if !ok {
		return res, ErrTargetOffline
	}
	sig, ok := o.Presence.SignalOf(cid)
	if !ok {
		return res, ErrTargetOffline
	}
	if send(sig, ev) {
		res.SentTo++
	} else {
		res.Dropped++
	}
	return res, nil
}

func (o *Orchestrator) onRingTimeout(call domain.Call) {
	if call.Room != "" {
		ended := core.CallEnded{Type: "call-ended", EndedBy: call.Caller}
		for _, m := range o.Rooms.MembersExcept(call.Room, "") {
			if sig, ok := o.Presence.SignalOf(m); ok {
				send(sig, ended)
			}
		}
		return
	}
	o.sendToUser(call.Caller, core.CallEnded{Type: "call-ended", EndedBy: call.Receiver})
}

func (o *Orchestrator) sendToUser(uid domain.UserID, ev any) bool {
	cid, ok := o.Presence.Lookup(uid)
	if !ok {
		return false
	}
	sig, ok := o.Presence.SignalOf(cid)
	if !ok {
		return false
	}
	return send(sig, ev)
}

func (o *Orchestrator) broadcast(except core.ConnID, ev any) {
	for _, sig := range o.Presence.Peers(except) {
		send(sig, ev)
	}
}

func send(sig core.SignalConnection, ev any) bool {
	f, err := core.Encode(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "app.orchestrator").Msg("encode event")
		return false
	}
	if err := sig.TrySend(f); err != nil {
		log.Warn().Err(err).Str("module", "app.orchestrator").Msg("send dropped")
		return false
	}
	return true
}
