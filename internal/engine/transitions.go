package engine

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pranavnigade123/drawzzl-backend/internal/hint"
	"github.com/pranavnigade123/drawzzl-backend/internal/model"
	"github.com/pranavnigade123/drawzzl-backend/internal/wordbank"
)

// StartGame moves a room LOBBY -> CHOOSING: only the host may call it, and
// only with at least two players present (spec §4.1 "startGame").
func (e *Engine) StartGame(ctx context.Context, roomID, sessionID string) error {
	lock := e.lockFor(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := e.store.UpdateRoom(ctx, roomID, func(r *model.Room) error {
		if r.Phase != model.PhaseLobby {
			return ErrWrongPhase
		}
		host, ok := r.Host()
		if !ok || host.SessionID != sessionID {
			return ErrNotHost
		}
		if len(r.Players) < model.MinPlayers {
			return ErrNotEnoughPlayers
		}
		r.Round = 1
		r.DrawerIndex = 0
		for i := range r.Players {
			r.Players[i].Score = 0
		}
		r.GameStarted = true
		r.LastActivity = time.Now()
		return nil
	})
	if err != nil {
		return err
	}

	e.broadcaster.BroadcastRoom(roomID, Event{Type: EventGameStarted, Payload: room.Round})
	return e.enterChoosing(ctx, roomID)
}

// SelectWord commits the drawer's pick from the candidates offered for the
// current turn (spec §4.1 "wordSelected").
func (e *Engine) SelectWord(ctx context.Context, roomID, sessionID, word string) error {
	lock := e.lockFor(roomID)
	lock.Lock()
	defer lock.Unlock()

	e.clearWordDeadline(roomID)
	return e.commitWordSelection(ctx, roomID, sessionID, word)
}

// enterChoosing starts a new turn's CHOOSING phase: it resets per-turn
// state, offers the drawer a fresh set of word candidates, and arms the
// 8-second auto-pick deadline (spec §4.1 "Word selection"). Callers must
// already hold the room's lock.
func (e *Engine) enterChoosing(ctx context.Context, roomID string) error {
	room, err := e.store.UpdateRoom(ctx, roomID, func(r *model.Room) error {
		r.Phase = model.PhaseChoosing
		r.CurrentWord = ""
		r.RevealedLetters = map[int]struct{}{}
		r.CorrectGuessers = map[string]struct{}{}
		r.RoundPoints = map[string]int{}
		r.ClampDrawerIndex()
		r.LastActivity = time.Now()
		return nil
	})
	if err != nil {
		return err
	}

	drawer, ok := room.Drawer()
	if !ok {
		return ErrRoomNotFound
	}

	if err := e.store.ClearDrawing(ctx, roomID); err != nil {
		log.Warn().Err(err).Str("roomId", roomID).Msg("engine: clearing canvas snapshot failed")
	}

	candidates := e.generateCandidates(room)
	e.setWordChoices(roomID, candidates)

	e.broadcaster.SendTo(roomID, drawer.SessionID, Event{Type: EventSelectWord, Payload: candidates})
	e.broadcaster.BroadcastRoomExcept(roomID, drawer.SessionID, Event{
		Type:    EventDrawerSelecting,
		Payload: drawer.Name,
	})

	deadline, cancel := context.WithCancel(context.Background())
	e.setWordDeadline(roomID, cancel)
	go e.waitForWordSelection(deadline, roomID, candidates)
	return nil
}

func (e *Engine) waitForWordSelection(ctx context.Context, roomID string, candidates []string) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(choosingWindow):
	}
	if len(candidates) == 0 {
		return
	}
	lock := e.lockFor(roomID)
	lock.Lock()
	defer lock.Unlock()
	word := candidates[rand.Intn(len(candidates))]
	if err := e.commitWordSelection(context.Background(), roomID, "", word); err != nil && err != ErrWrongPhase {
		log.Warn().Err(err).Str("roomId", roomID).Msg("engine: auto word selection failed")
	}
}

// commitWordSelection applies a word pick, whether chosen by the drawer
// (sessionID non-empty, validated against the offered candidates) or
// auto-picked on timeout (sessionID empty). Callers must hold the room's
// lock.
func (e *Engine) commitWordSelection(ctx context.Context, roomID, sessionID, word string) error {
	if sessionID != "" {
		choices := e.getWordChoices(roomID)
		found := false
		for _, c := range choices {
			if c == word {
				found = true
				break
			}
		}
		if !found {
			return ErrUnknownWord
		}
	}

	room, err := e.store.UpdateRoom(ctx, roomID, func(r *model.Room) error {
		if r.Phase != model.PhaseChoosing {
			return ErrWrongPhase
		}
		if sessionID != "" {
			drawer, ok := r.Drawer()
			if !ok || drawer.SessionID != sessionID {
				return ErrNotDrawer
			}
		}
		r.CurrentWord = word
		r.Phase = model.PhaseDrawing
		r.TurnEndsAt = time.Now().Add(time.Duration(r.DrawTime) * time.Second)
		r.LastActivity = time.Now()
		return nil
	})
	if err != nil {
		return err
	}

	e.clearWordChoices(roomID)

	drawer, ok := room.Drawer()
	if !ok {
		return ErrRoomNotFound
	}
	e.broadcaster.SendTo(roomID, drawer.SessionID, Event{Type: EventYourWord, Payload: word})
	mask := hint.MaskWord(word, room.RevealedLetters)
	e.broadcaster.BroadcastRoomExcept(roomID, drawer.SessionID, Event{Type: EventHintUpdate, Payload: mask})
	return nil
}

func (e *Engine) clearWordChoices(roomID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.wordChoices, roomID)
}

// generateCandidates builds the word-offer list for a turn, mixing custom
// words in at CustomWordProbability percent when the room has any, and
// otherwise weighting difficulty tiers 20/40/40 easy/medium/hard (spec §4.1
// "Word selection" leaves the exact weighting to the implementation).
func (e *Engine) generateCandidates(room *model.Room) []string {
	count := room.WordCount
	if count < model.MinWordCount {
		count = model.MinWordCount
	}
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		if len(room.CustomWords) > 0 && rand.Intn(100) < room.CustomWordProbability {
			out = append(out, e.words.SampleCustom(room.CustomWords))
			continue
		}
		out = append(out, e.words.SampleWord(weightedDifficulty()))
	}
	return out
}

func weightedDifficulty() wordbank.Difficulty {
	n := rand.Intn(100)
	switch {
	case n < 20:
		return wordbank.Easy
	case n < 60:
		return wordbank.Medium
	default:
		return wordbank.Hard
	}
}

// tick drives the per-second heartbeat for a room in DRAWING (spec §4.1
// "Tick loop"): it broadcasts the countdown, reveals hints at their
// thresholds, and triggers endTurn once time runs out or everyone eligible
// has guessed correctly.
func (e *Engine) tick(roomID string) {
	ctx := context.Background()
	room, err := e.store.Load(ctx, roomID)
	if err != nil {
		return
	}
	if room.Phase != model.PhaseDrawing {
		return
	}

	remaining := secondsRemaining(room.TurnEndsAt)
	e.broadcaster.BroadcastRoom(roomID, Event{Type: EventTick, Payload: remaining})

	e.maybeRevealHint(ctx, roomID, room, remaining)

	eligible := len(room.EligibleGuessers())
	allGuessed := eligible > 0 && len(room.CorrectGuessers) >= eligible
	if remaining <= 0 || allGuessed {
		e.endTurn(roomID)
	}
}

func secondsRemaining(deadline time.Time) int {
	remaining := int(math.Ceil(time.Until(deadline).Seconds()))
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// maybeRevealHint implements the two-reveal schedule from spec §4.1: one
// letter uncovered at floor(drawTime/2) seconds remaining (if that's still
// above the second threshold), and one more at the 15-second mark.
func (e *Engine) maybeRevealHint(ctx context.Context, roomID string, snapshot *model.Room, remaining int) {
	half := snapshot.DrawTime / 2
	needFirst := len(snapshot.RevealedLetters) == 0 && remaining <= half && remaining > secondHintAt
	needSecond := len(snapshot.RevealedLetters) < maxReveals(half) && remaining <= secondHintAt
	if !needFirst && !needSecond {
		return
	}

	room, err := e.store.UpdateRoom(ctx, roomID, func(r *model.Room) error {
		if r.Phase != model.PhaseDrawing {
			return ErrWrongPhase
		}
		rem := secondsRemaining(r.TurnEndsAt)
		half2 := r.DrawTime / 2
		doFirst := len(r.RevealedLetters) == 0 && rem <= half2 && rem > secondHintAt
		doSecond := len(r.RevealedLetters) < maxReveals(half2) && rem <= secondHintAt
		if !doFirst && !doSecond {
			return nil
		}
		revealOneLetter(r)
		return nil
	})
	if err != nil {
		if err != ErrWrongPhase {
			log.Warn().Err(err).Str("roomId", roomID).Msg("engine: hint reveal failed")
		}
		return
	}
	mask := hint.MaskWord(room.CurrentWord, room.RevealedLetters)
	drawer, ok := room.Drawer()
	if !ok {
		return
	}
	e.broadcaster.BroadcastRoomExcept(roomID, drawer.SessionID, Event{Type: EventHintUpdate, Payload: mask})
}

// maxReveals is the total number of letters a turn reveals: two, or only the
// 15-second one when half the draw time is not above secondHintAt.
func maxReveals(half int) int {
	if half <= secondHintAt {
		return 1
	}
	return 2
}

func revealOneLetter(r *model.Room) {
	runes := []rune(r.CurrentWord)
	hidden := make([]int, 0, len(runes))
	for i := range runes {
		if _, ok := r.RevealedLetters[i]; !ok {
			hidden = append(hidden, i)
		}
	}
	if len(hidden) == 0 {
		return
	}
	r.RevealedLetters[hidden[rand.Intn(len(hidden))]] = struct{}{}
}

// endTurn closes out a DRAWING turn: it awards the drawer a bonus for every
// correct guesser, moves the room to INTERMISSION, and schedules the next
// turn (spec §4.1 "Transitions"). Guarded by the end-turn-in-progress flag
// so a tick-triggered call and an all-guessed-triggered call can never both
// run it.
func (e *Engine) endTurn(roomID string) {
	if !e.tryBeginEndTurn(roomID) {
		return
	}
	defer e.clearEndTurn(roomID)

	lock := e.lockFor(roomID)
	lock.Lock()
	defer lock.Unlock()

	ctx := context.Background()
	var finalWord string
	var bonus int

	room, err := e.store.UpdateRoom(ctx, roomID, func(r *model.Room) error {
		if r.Phase != model.PhaseDrawing {
			return ErrWrongPhase
		}
		finalWord = r.CurrentWord
		bonus = drawerBonusPerGuess * len(r.CorrectGuessers)
		if idx := r.DrawerIndex; bonus > 0 && idx >= 0 && idx < len(r.Players) {
			r.Players[idx].Score += bonus
			sessID := r.Players[idx].SessionID
			r.RoundPoints[sessID] = r.RoundPoints[sessID] + bonus
		}
		r.CurrentWord = ""
		r.Phase = model.PhaseIntermission
		r.LastActivity = time.Now()
		return nil
	})
	if err != nil {
		if err != ErrWrongPhase {
			log.Warn().Err(err).Str("roomId", roomID).Msg("engine: end turn failed")
		}
		return
	}

	e.broadcaster.BroadcastRoom(roomID, Event{
		Type: EventTurnEnded,
		Payload: TurnEndedPayload{
			Word:            finalWord,
			Players:         room.Players,
			CorrectGuessers: guesserList(room.CorrectGuessers),
			DrawerBonus:     bonus,
		},
	})

	go e.afterIntermission(roomID)
}

// TurnEndedPayload is the broadcast body for EventTurnEnded.
type TurnEndedPayload struct {
	Word            string         `json:"word"`
	Players         []model.Player `json:"players"`
	CorrectGuessers []string       `json:"correctGuessers"`
	DrawerBonus     int            `json:"drawerBonus"`
}

func guesserList(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func (e *Engine) afterIntermission(roomID string) {
	time.Sleep(intermissionWindow)
	e.advanceRound(roomID)
}

// advanceRound rotates the drawer, bumps Round when the rotation wraps to
// the first player, and either starts the next CHOOSING phase or ends the
// game once Round exceeds MaxRounds (spec §4.1 "Transitions").
func (e *Engine) advanceRound(roomID string) {
	lock := e.lockFor(roomID)
	lock.Lock()
	defer lock.Unlock()

	ctx := context.Background()
	room, err := e.store.UpdateRoom(ctx, roomID, func(r *model.Room) error {
		if r.Phase != model.PhaseIntermission {
			return ErrWrongPhase
		}
		if len(r.Players) == 0 {
			r.DrawerIndex = 0
			return nil
		}
		next, wrapped := r.NextDrawerIndex(r.DrawerIndex)
		r.DrawerIndex = next
		if wrapped {
			r.Round++
		}
		clampRound(r)
		return nil
	})
	if err != nil {
		if err != ErrWrongPhase {
			log.Warn().Err(err).Str("roomId", roomID).Msg("engine: advance round failed")
		}
		return
	}

	if len(room.Players) == 0 || room.Round > room.MaxRounds {
		e.finishGame(roomID)
		return
	}
	if err := e.enterChoosing(ctx, roomID); err != nil {
		log.Warn().Err(err).Str("roomId", roomID).Msg("engine: entering next choosing phase failed")
	}
}

func (e *Engine) finishGame(roomID string) {
	ctx := context.Background()
	room, err := e.store.UpdateRoom(ctx, roomID, func(r *model.Room) error {
		r.Phase = model.PhaseGameOver
		r.GameStarted = false
		r.CurrentWord = ""
		r.LastActivity = time.Now()
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("roomId", roomID).Msg("engine: finishing game failed")
		return
	}
	e.broadcaster.BroadcastRoom(roomID, Event{Type: EventGameOver, Payload: room.Players})
}
