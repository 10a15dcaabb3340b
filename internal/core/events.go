package core

import (
	"encoding/json"

	"github.com/mkraev/chime/internal/domain"
)

// Server→client signaling events. These are wire DTOs only: no
// transport fields, no behavior. Every event is a flat JSON object
// with a "type" discriminator, matching the client protocol.

type UserOnline struct {
	Type   string        `json:"type"`
	UserID domain.UserID `json:"userId"`
}

type UserOffline struct {
	Type   string        `json:"type"`
	UserID domain.UserID `json:"userId"`
}

type SessionSuperseded struct {
	Type   string        `json:"type"`
	UserID domain.UserID `json:"userId"`
}

type ICEServers struct {
	Type    string             `json:"type"`
	Servers []domain.ICEServer `json:"iceServers"`
}

type PeerJoined struct {
	Type         string        `json:"type"`
	UserID       domain.UserID `json:"userId"`
	ConnectionID ConnID        `json:"connectionId"`
}

type OfferEvent struct {
	Type     string          `json:"type"`
	From     domain.UserID   `json:"from"`
	SDPOffer string          `json:"sdpOffer"`
	CallType domain.CallType `json:"callType"`
}

type AnswerEvent struct {
	Type      string        `json:"type"`
	From      domain.UserID `json:"from"`
	SDPAnswer string        `json:"sdpAnswer"`
}

type CandidateEvent struct {
	Type      string          `json:"type"`
	From      domain.UserID   `json:"from"`
	Candidate json.RawMessage `json:"candidate"`
}

type MediaToggled struct {
	Type      string        `json:"type"`
	UserID    domain.UserID `json:"userId"`
	MediaKind string        `json:"mediaKind"`
	Enabled   bool          `json:"enabled"`
}

type ScreenSharing struct {
	Type     string        `json:"type"`
	UserID   domain.UserID `json:"userId"`
	StreamID string        `json:"streamId"`
}

type ScreenShareStopped struct {
	Type   string        `json:"type"`
	UserID domain.UserID `json:"userId"`
}

type CallEnded struct {
	Type    string        `json:"type"`
	EndedBy domain.UserID `json:"endedBy"`
}

type TargetOffline struct {
	Type         string        `json:"type"`
	OriginalType string        `json:"originalType"`
	Target       domain.UserID `json:"target"`
}

type UserTyping struct {
	Type     string        `json:"type"`
	From     domain.UserID `json:"from"`
	IsTyping bool          `json:"isTyping"`
}

type NewMessage struct {
	Type        string        `json:"type"`
	From        domain.UserID `json:"from"`
	Message     string        `json:"message"`
	MessageType string        `json:"messageType,omitempty"`
	Timestamp   string        `json:"timestamp"`
}

type MessageReadReceipt struct {
	Type      string        `json:"type"`
	MessageID string        `json:"messageId"`
	ReaderID  domain.UserID `json:"readerId"`
}

// Encode marshals an event into a transport frame.
func Encode(v any) (Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Frame(b), nil
}
