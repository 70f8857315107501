package engine

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pranavnigade123/drawzzl-backend/internal/hint"
	"github.com/pranavnigade123/drawzzl-backend/internal/model"
)

// CorrectGuessPayload is the broadcast body for EventCorrectGuess.
type CorrectGuessPayload struct {
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
	Points    int    `json:"points"`
}

// computeScore implements spec §4.1's scoring contract: points decay in
// 5-second plateaus from maxPoints down to a floor of minPoints.
func computeScore(remainingSeconds int) int {
	step := (remainingSeconds / 5) * 5
	points := maxPoints * step / turnSeconds
	if points < minPoints {
		points = minPoints
	}
	return points
}

// Guess evaluates one inbound guess/chat event against the room's current
// word (spec §4.1 "Guess evaluation"). It never returns an error for a
// merely-wrong guess; only a failure to load the room is surfaced.
func (e *Engine) Guess(ctx context.Context, roomID, sessionID, name, raw string) error {
	room, err := e.store.Load(ctx, roomID)
	if err != nil {
		return err
	}
	if room.Phase != model.PhaseDrawing {
		// Guessing outside DRAWING is just chat.
		e.broadcastChat(ctx, roomID, sessionID, name, raw)
		return nil
	}

	drawer, hasDrawer := room.Drawer()
	isDrawer := hasDrawer && drawer.SessionID == sessionID

	normalizedGuess := hint.Normalize(raw)
	normalizedWord := hint.Normalize(room.CurrentWord)

	if normalizedGuess != "" && normalizedGuess == normalizedWord {
		if !isDrawer {
			e.awardCorrectGuess(ctx, roomID, sessionID, name, room)
		}
		// Exact matches are never echoed as chat text — doing so would
		// spoil the word for everyone still guessing (spec §4.1).
		return nil
	}

	if !isDrawer && len(normalizedWord) >= 3 {
		if hint.Levenshtein(normalizedGuess, normalizedWord) == 1 {
			e.broadcaster.SendTo(roomID, sessionID, Event{
				Type:    EventCloseGuess,
				Payload: "You're very close!",
			})
		}
	}

	e.broadcastChat(ctx, roomID, sessionID, name, raw)
	return nil
}

// Chat broadcasts a plain chat message with no word-match evaluation — the
// "chat" inbound event is distinct from "guess" in spec §6's wire
// vocabulary.
func (e *Engine) Chat(ctx context.Context, roomID, sessionID, name, msg string) {
	e.broadcastChat(ctx, roomID, sessionID, name, msg)
}

func (e *Engine) broadcastChat(ctx context.Context, roomID, sessionID, name, msg string) {
	entry := model.ChatEntry{SessionID: sessionID, Name: name, Msg: msg, Ts: time.Now()}
	// Broadcast before persisting: chat fan-out tolerates the store write
	// failing (spec §4.3 "fire-and-forget for draw/chat broadcasts").
	e.broadcaster.BroadcastRoom(roomID, Event{Type: EventChat, Payload: entry})
	if err := e.store.AppendChat(ctx, roomID, entry); err != nil {
		log.Warn().Err(err).Str("roomId", roomID).Msg("engine: chat persist failed, broadcast already sent")
	}
}

// awardCorrectGuess broadcasts the scoring event before persisting the
// credit, relying on the store's conditional ApplyCorrectGuess for the
// single-award invariant (spec §5).
func (e *Engine) awardCorrectGuess(ctx context.Context, roomID, sessionID, name string, room *model.Room) {
	if _, already := room.CorrectGuessers[sessionID]; already {
		return
	}

	remaining := int(math.Ceil(time.Until(room.TurnEndsAt).Seconds()))
	if remaining < 0 {
		remaining = 0
	}
	points := computeScore(remaining)

	e.broadcaster.BroadcastRoom(roomID, Event{
		Type:    EventCorrectGuess,
		Payload: CorrectGuessPayload{SessionID: sessionID, Name: name, Points: points},
	})

	credited, err := e.store.ApplyCorrectGuess(ctx, roomID, sessionID, points)
	if err != nil {
		log.Error().Err(err).Str("roomId", roomID).Str("sessionId", sessionID).Msg("engine: correct-guess persist failed")
		return
	}
	if !credited {
		// A racing duplicate already scored this session this turn; the
		// broadcast already carried the right point value, so nothing
		// further to do (idempotent at the store per spec §5).
		return
	}
}
