// Package engine implements the per-room turn engine state machine
// (spec §4.1): round progression, drawer rotation, word selection, timed
// drawing phases with progressive hints, scoring, and end-of-turn
// bookkeeping. It is modeled as a single process-level Engine value owning
// the ambient per-room maps (timers, end-turn flags, word-choice
// deadlines) spec §9 calls for, the same way the teacher's lobby/room
// actors own their channel and timer maps.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pranavnigade123/drawzzl-backend/internal/model"
	"github.com/pranavnigade123/drawzzl-backend/internal/wordbank"
)

// RoomStore is the subset of store.Store the engine depends on, kept as an
// interface so the state machine can be driven in tests without a live
// database (the teacher's services depend on interfaces like AuthService
// for the same reason).
type RoomStore interface {
	Load(ctx context.Context, roomID string) (*model.Room, error)
	UpdateRoom(ctx context.Context, roomID string, fn func(*model.Room) error) (*model.Room, error)
	AppendChat(ctx context.Context, roomID string, entry model.ChatEntry) error
	ApplyCorrectGuess(ctx context.Context, roomID, sessionID string, pointsDelta int) (bool, error)
	ClearDrawing(ctx context.Context, roomID string) error
}

// Engine drives every room's state machine. One Engine instance serves
// the whole process.
type Engine struct {
	store       RoomStore
	words       wordbank.Source
	broadcaster Broadcaster

	mu           sync.Mutex
	roomLocks    map[string]*sync.Mutex
	tickCancel   map[string]context.CancelFunc
	wordDeadline map[string]context.CancelFunc
	endTurnFlag  map[string]bool
	wordChoices  map[string][]string
}

// New wires an Engine to its store, word source, and fan-out.
func New(st RoomStore, words wordbank.Source, broadcaster Broadcaster) *Engine {
	return &Engine{
		store:        st,
		words:        words,
		broadcaster:  broadcaster,
		roomLocks:    make(map[string]*sync.Mutex),
		tickCancel:   make(map[string]context.CancelFunc),
		wordDeadline: make(map[string]context.CancelFunc),
		endTurnFlag:  make(map[string]bool),
		wordChoices:  make(map[string][]string),
	}
}

func (e *Engine) lockFor(roomID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.roomLocks[roomID]
	if !ok {
		l = &sync.Mutex{}
		e.roomLocks[roomID] = l
	}
	return l
}

// StartRoomLoop starts the room's 1-second tick heartbeat. Idempotent:
// calling it twice for the same room replaces the previous ticker, first
// cancelling it, matching spec §5's "one interval per room; strictly
// cleared before a new one starts."
func (e *Engine) StartRoomLoop(roomID string) {
	e.mu.Lock()
	if cancel, ok := e.tickCancel[roomID]; ok {
		cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.tickCancel[roomID] = cancel
	e.mu.Unlock()

	go e.runTicker(ctx, roomID)
}

func (e *Engine) runTicker(ctx context.Context, roomID string) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A single tick's failure must never kill the loop (spec §4.1
			// "Tick loop" / §7 TickFault).
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Error().Str("roomId", roomID).Interface("panic", r).Msg("engine: tick panicked, continuing")
					}
				}()
				e.tick(roomID)
			}()
		}
	}
}

// StopRoom cancels the room's tick and word-selection timers and clears
// its end-turn flag. Called on room deletion (spec §4.4/§5 "Cancellation").
func (e *Engine) StopRoom(roomID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cancel, ok := e.tickCancel[roomID]; ok {
		cancel()
		delete(e.tickCancel, roomID)
	}
	if cancel, ok := e.wordDeadline[roomID]; ok {
		cancel()
		delete(e.wordDeadline, roomID)
	}
	delete(e.endTurnFlag, roomID)
	delete(e.roomLocks, roomID)
	delete(e.wordChoices, roomID)
}

func (e *Engine) setWordChoices(roomID string, words []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.wordChoices[roomID] = words
}

func (e *Engine) getWordChoices(roomID string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wordChoices[roomID]
}

func (e *Engine) setWordDeadline(roomID string, cancel context.CancelFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if old, ok := e.wordDeadline[roomID]; ok {
		old()
	}
	e.wordDeadline[roomID] = cancel
}

func (e *Engine) clearWordDeadline(roomID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cancel, ok := e.wordDeadline[roomID]; ok {
		cancel()
		delete(e.wordDeadline, roomID)
	}
}

// tryBeginEndTurn implements the end-turn-in-progress guard from spec §5:
// re-entrant end attempts are dropped while the flag is set.
func (e *Engine) tryBeginEndTurn(roomID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.endTurnFlag[roomID] {
		return false
	}
	e.endTurnFlag[roomID] = true
	return true
}

func (e *Engine) clearEndTurn(roomID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.endTurnFlag, roomID)
}

func clampRound(r *model.Room) {
	if r.Round > r.MaxRounds+1 {
		r.Round = r.MaxRounds + 1
	}
}
