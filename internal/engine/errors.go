package engine

import "errors"

var (
	ErrNotHost          = errors.New("engine: caller is not the host")
	ErrNotDrawer        = errors.New("engine: caller is not the current drawer")
	ErrNotEnoughPlayers = errors.New("engine: need at least two players to start")
	ErrWrongPhase       = errors.New("engine: operation not valid in the current phase")
	ErrUnknownWord      = errors.New("engine: word is not one of the offered choices")
	ErrRoomNotFound     = errors.New("engine: room not found")
)
