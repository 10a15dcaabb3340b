package signal

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"github.com/mkraev/chime/internal/app"
	"github.com/mkraev/chime/internal/domain"
)

// Inbound payloads. A payload missing a required field is rejected at
// this boundary and never forwarded.

var validate = validator.New()

func decode[T any](data []byte) (T, error) {
	var p T
	if err := json.Unmarshal(data, &p); err != nil {
		return p, err
	}
	if err := validate.Struct(p); err != nil {
		return p, err
	}
	return p, nil
}

// Addressed is embedded by every relayed payload: exactly one of
// target (user id) or roomId selects the resolution mode.
type Addressed struct {
	Target string `json:"target" validate:"required_without=RoomID"`
	RoomID string `json:"roomId" validate:"required_without=Target"`
}

func (a Addressed) target() app.Target {
	if a.RoomID != "" {
		return app.Target{Room: domain.RoomID(a.RoomID)}
	}
	return app.Target{User: domain.UserID(a.Target)}
}

type registerPayload struct {
	UserID string `json:"userId" validate:"required"`
}

type joinRoomPayload struct {
	RoomID string `json:"roomId" validate:"required"`
	UserID string `json:"userId"`
}

type offerPayload struct {
	Addressed
	SDPOffer string `json:"sdpOffer" validate:"required"`
	CallType string `json:"callType" validate:"required,oneof=audio video"`
}

type answerPayload struct {
	Addressed
	SDPAnswer string `json:"sdpAnswer" validate:"required"`
}

type candidatePayload struct {
	Addressed
	Candidate json.RawMessage `json:"candidate" validate:"required"`
}

type mediaTogglePayload struct {
	Addressed
	MediaKind string `json:"mediaKind" validate:"required,oneof=audio video"`
	Enabled   *bool  `json:"enabled" validate:"required"`
}

type screenSharePayload struct {
	Addressed
	StreamID string `json:"streamId" validate:"required"`
}

type stopScreenSharePayload struct {
	Addressed
}

type endCallPayload struct {
	Addressed
}

type typingPayload struct {
	Target   string `json:"target" validate:"required"`
	IsTyping *bool  `json:"isTyping" validate:"required"`
}

type messageReadPayload struct {
	ContactID string `json:"contactId" validate:"required"`
	MessageID string `json:"messageId" validate:"required"`
}

type privateMessagePayload struct {
	Target      string `json:"target" validate:"required"`
	Message     string `json:"message" validate:"required"`
	MessageType string `json:"messageType" validate:"omitempty,oneof=text image video file audio"`
}
