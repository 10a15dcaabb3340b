package signal

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/mkraev/chime/internal/app"
	"github.com/mkraev/chime/internal/core"
	"github.com/mkraev/chime/internal/domain"
)

func (ctl *SignalWSController) handleRegister(
	id core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	p, err := decode[registerPayload](data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad register payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	uid, err := domain.ParseUserID(p.UserID)
	if err != nil {
		ctl.sendError(conn, "invalid_user_id")
		return
	}

	log.Info().Str("module", "signal").Str("conn", string(id)).Str("user", string(uid)).Msg("register")
	if err := ctl.Orch.OnRegister(id, uid); err != nil {
		ctl.sendError(conn, "register_failed")
		return
	}
	ctl.sendJSON(conn, map[string]any{
		"type":   "registered",
		"userId": uid,
	})
}

func (ctl *SignalWSController) handleTyping(
	id core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	p, err := decode[typingPayload](data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad typing payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	// Typing indicators to an offline peer vanish quietly; surfacing an
	// error for every keystroke would just be noise.
	if err := ctl.Orch.Typing(id, domain.UserID(p.Target), *p.IsTyping); err != nil && !errors.Is(err, app.ErrTargetOffline) {
		ctl.relayError(conn, "typing", p.Target, err)
	}
}

func (ctl *SignalWSController) handleMessageRead(
	id core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	p, err := decode[messageReadPayload](data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad message-read payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	// A receipt for an offline contact vanishes quietly, same as typing;
	// the message simply stays unread on their side.
	if err := ctl.Orch.MessageRead(id, domain.UserID(p.ContactID), p.MessageID); err != nil && !errors.Is(err, app.ErrTargetOffline) {
		ctl.relayError(conn, "message-read", p.ContactID, err)
	}
}

func (ctl *SignalWSController) handlePrivateMessage(
	id core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	p, err := decode[privateMessagePayload](data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad private-message payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if err := ctl.Orch.PrivateMessage(id, domain.UserID(p.Target), p.Message, p.MessageType); err != nil {
		ctl.relayError(conn, "private-message", p.Target, err)
	}
}
