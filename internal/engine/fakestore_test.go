package engine

import (
	"context"
	"sync"

	"github.com/pranavnigade123/drawzzl-backend/internal/model"
)

// fakeStore is an in-memory RoomStore double, standing in for the
// teacher's MockPlayer/MockLobby-style testify mocks — here a plain fake
// since the store's behavior (optimistic versioning) is easier to model
// directly than to stub call-by-call.
type fakeStore struct {
	mu    sync.Mutex
	rooms map[string]*model.Room
}

func newFakeStore(rooms ...*model.Room) *fakeStore {
	fs := &fakeStore{rooms: make(map[string]*model.Room)}
	for _, r := range rooms {
		cp := *r
		fs.rooms[r.RoomID] = &cp
	}
	return fs
}

func (fs *fakeStore) Load(ctx context.Context, roomID string) (*model.Room, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	r, ok := fs.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	cp := *r
	cp.Players = append([]model.Player(nil), r.Players...)
	cp.RevealedLetters = copySet(r.RevealedLetters)
	cp.CorrectGuessers = copySet(r.CorrectGuessers)
	cp.RoundPoints = copyIntMap(r.RoundPoints)
	return &cp, nil
}

func copySet(m map[int]struct{}) map[int]struct{} {
	out := make(map[int]struct{}, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	return out
}

func copyIntMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (fs *fakeStore) UpdateRoom(ctx context.Context, roomID string, fn func(*model.Room) error) (*model.Room, error) {
	room, err := fs.Load(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if err := fn(room); err != nil {
		return nil, err
	}
	fs.mu.Lock()
	room.Version++
	cp := *room
	fs.rooms[roomID] = &cp
	fs.mu.Unlock()
	return room, nil
}

func (fs *fakeStore) AppendChat(ctx context.Context, roomID string, entry model.ChatEntry) error {
	_, err := fs.UpdateRoom(ctx, roomID, func(r *model.Room) error {
		r.Chat = append(r.Chat, entry)
		if len(r.Chat) > model.MaxChatHistory {
			r.Chat = r.Chat[len(r.Chat)-model.MaxChatHistory:]
		}
		return nil
	})
	return err
}

func (fs *fakeStore) ApplyCorrectGuess(ctx context.Context, roomID, sessionID string, pointsDelta int) (bool, error) {
	var credited bool
	_, err := fs.UpdateRoom(ctx, roomID, func(r *model.Room) error {
		if _, already := r.CorrectGuessers[sessionID]; already {
			credited = false
			return nil
		}
		r.CorrectGuessers[sessionID] = struct{}{}
		r.RoundPoints[sessionID] += pointsDelta
		if idx := r.PlayerIndex(sessionID); idx >= 0 {
			r.Players[idx].Score += pointsDelta
		}
		credited = true
		return nil
	})
	return credited, err
}

func (fs *fakeStore) ClearDrawing(ctx context.Context, roomID string) error {
	_, err := fs.UpdateRoom(ctx, roomID, func(r *model.Room) error {
		r.CurrentDrawing = nil
		return nil
	})
	return err
}

// fakeBroadcaster records every event fanned out, standing in for the
// gateway's Broadcaster implementation.
type fakeBroadcaster struct {
	mu   sync.Mutex
	all  []Event
	sent map[string][]Event // sessionId -> events sent only to them
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{sent: make(map[string][]Event)}
}

func (fb *fakeBroadcaster) BroadcastRoom(roomID string, ev Event) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.all = append(fb.all, ev)
}

func (fb *fakeBroadcaster) BroadcastRoomExcept(roomID, exceptSessionID string, ev Event) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.all = append(fb.all, ev)
}

func (fb *fakeBroadcaster) SendTo(roomID, sessionID string, ev Event) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.sent[sessionID] = append(fb.sent[sessionID], ev)
}

func (fb *fakeBroadcaster) eventsOfType(t string) []Event {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	var out []Event
	for _, ev := range fb.all {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func (fb *fakeBroadcaster) sentTo(sessionID string) []Event {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]Event(nil), fb.sent[sessionID]...)
}
