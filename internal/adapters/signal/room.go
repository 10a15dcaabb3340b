package signal

import (
	"github.com/rs/zerolog/log"

	"github.com/mkraev/chime/internal/core"
	"github.com/mkraev/chime/internal/domain"
)

func (ctl *SignalWSController) handleJoinRoom(
	id core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	p, err := decode[joinRoomPayload](data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join-room payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	// join-room carries the user id so a client can join in one round
	// trip; registering twice is an idempotent refresh.
	if p.UserID != "" {
		if uid, err := domain.ParseUserID(p.UserID); err == nil {
			if err := ctl.Orch.OnRegister(id, uid); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Str("user", string(uid)).Msg("join-room register failed")
			}
		} else {
			log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("join-room bad user id")
		}
	}

	log.Info().Str("module", "signal").Str("conn", string(id)).Str("room", p.RoomID).Msg("join-room")
	if err := ctl.Orch.JoinRoom(id, domain.RoomID(p.RoomID)); err != nil {
		ctl.sendError(conn, "join_failed")
	}
}
