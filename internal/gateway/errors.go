package gateway

import (
	"errors"

	"github.com/pranavnigade123/drawzzl-backend/internal/engine"
)

var (
	errRoomFull       = errors.New("gateway: room is full")
	errUnknownSession = errors.New("gateway: unknown session")
	errNotHost        = errors.New("gateway: caller is not the host")
	errWrongPhase     = errors.New("gateway: operation not valid in the current phase")
)

// engineErrorMessage turns an engine sentinel error into the single-line
// offender-only message spec §7 calls for; errors are never broadcast.
func engineErrorMessage(err error) string {
	switch err {
	case engine.ErrNotHost:
		return "only the host may do that"
	case engine.ErrNotDrawer:
		return "only the current drawer may do that"
	case engine.ErrNotEnoughPlayers:
		return "need at least two players to start"
	case engine.ErrWrongPhase:
		return "not valid in the current phase"
	case engine.ErrUnknownWord:
		return "word is not one of the offered choices"
	case engine.ErrRoomNotFound:
		return "room not found"
	default:
		return "could not complete request"
	}
}
