package signal

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/mkraev/chime/internal/app"
	"github.com/mkraev/chime/internal/core"
	"github.com/mkraev/chime/internal/domain"
)

// relayError surfaces a routing failure to the sender. An offline
// direct target becomes an explicit target-offline event carrying the
// original message type, per the error contract.
func (ctl *SignalWSController) relayError(conn *WsSignalConn, originalType, target string, err error) {
	switch {
	case errors.Is(err, app.ErrTargetOffline):
		ctl.sendJSON(conn, core.TargetOffline{
			Type:         "target-offline",
			OriginalType: originalType,
			Target:       domain.UserID(target),
		})
	case errors.Is(err, app.ErrNotRegistered):
		ctl.sendError(conn, "not_registered")
	default:
		log.Error().Err(err).Str("module", "signal").Str("type", originalType).Msg("relay failed")
		ctl.sendError(conn, "relay_failed")
	}
}

func (ctl *SignalWSController) handleOffer(
	id core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	p, err := decode[offerPayload](data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad offer payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	ctype, _ := domain.ParseCallType(p.CallType)
	if err := ctl.Orch.RelayOffer(id, p.target(), p.SDPOffer, ctype); err != nil {
		ctl.relayError(conn, "offer", p.Target, err)
	}
}

func (ctl *SignalWSController) handleAnswer(
	id core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	p, err := decode[answerPayload](data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad answer payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if err := ctl.Orch.RelayAnswer(id, p.target(), p.SDPAnswer); err != nil {
		ctl.relayError(conn, "answer", p.Target, err)
	}
}

func (ctl *SignalWSController) handleCandidate(
	id core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	p, err := decode[candidatePayload](data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad candidate payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if err := ctl.Orch.RelayCandidate(id, p.target(), p.Candidate); err != nil {
		ctl.relayError(conn, "ice-candidate", p.Target, err)
	}
}

func (ctl *SignalWSController) handleMediaToggle(
	id core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	p, err := decode[mediaTogglePayload](data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad media-toggle payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if err := ctl.Orch.RelayMediaToggle(id, p.target(), p.MediaKind, *p.Enabled); err != nil {
		ctl.relayError(conn, "media-toggle", p.Target, err)
	}
}

func (ctl *SignalWSController) handleScreenShare(
	id core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	p, err := decode[screenSharePayload](data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad screen-share payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if err := ctl.Orch.RelayScreenShare(id, p.target(), p.StreamID); err != nil {
		ctl.relayError(conn, "screen-share", p.Target, err)
	}
}

func (ctl *SignalWSController) handleStopScreenShare(
	id core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	p, err := decode[stopScreenSharePayload](data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad stop-screen-share payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if err := ctl.Orch.RelayScreenShareStop(id, p.target()); err != nil {
		ctl.relayError(conn, "stop-screen-share", p.Target, err)
	}
}

func (ctl *SignalWSController) handleEndCall(
	id core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	p, err := decode[endCallPayload](data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad end-call payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if err := ctl.Orch.EndCall(id, p.target()); err != nil {
		ctl.relayError(conn, "end-call", p.Target, err)
	}
}
