package domain

import (
	"time"

	"github.com/google/uuid"
)

type CallID string

func NewCallID() CallID { return CallID(uuid.NewString()) }

type CallType string

const (
	CallAudio CallType = "audio"
	CallVideo CallType = "video"
)

func ParseCallType(raw string) (CallType, bool) {
	switch CallType(raw) {
	case CallAudio, CallVideo:
		return CallType(raw), true
	}
	return "", false
}

type CallState string

const (
	CallInitiated CallState = "initiated"
	CallRinging   CallState = "ringing"
	CallOngoing   CallState = "ongoing"
	CallCompleted CallState = "completed"
	CallMissed    CallState = "missed"
	CallRejected  CallState = "rejected"
)

// AllowedTransitions is the full call lifecycle. Terminal states have
// no outgoing edges; events against them are no-ops, not errors.
var AllowedTransitions = map[CallState]map[CallState]struct{}{
	CallInitiated: {
		CallRinging: {},
		CallMissed:  {},
	},
	CallRinging: {
		CallOngoing:  {},
		CallMissed:   {},
		CallRejected: {},
	},
	CallOngoing: {
		CallCompleted: {},
	},
}

func (s CallState) Terminal() bool {
	switch s {
	case CallCompleted, CallMissed, CallRejected:
		return true
	}
	return false
}

func (s CallState) CanTransition(to CallState) bool {
	_, ok := AllowedTransitions[s][to]
	return ok
}

// Call tracks one signaling session from first offer to a terminal
// state. Direct calls carry Receiver; room calls carry Room instead.
type Call struct {
	ID        CallID    `json:"id"`
	Caller    UserID    `json:"caller_id"`
	Receiver  UserID    `json:"receiver_id,omitempty"`
	Room      RoomID    `json:"room_id,omitempty"`
	Type      CallType  `json:"call_type"`
	State     CallState `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	StartedAt time.Time `json:"started_at,omitzero"`
	EndedAt   time.Time `json:"ended_at,omitzero"`
	Duration  int       `json:"duration_seconds"`
}
