package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pranavnigade123/drawzzl-backend/internal/engine"
	"github.com/pranavnigade123/drawzzl-backend/internal/hint"
	"github.com/pranavnigade123/drawzzl-backend/internal/idgen"
	"github.com/pranavnigade123/drawzzl-backend/internal/model"
	"github.com/pranavnigade123/drawzzl-backend/internal/store"
	"github.com/pranavnigade123/drawzzl-backend/internal/validate"
)

const requestTimeout = 5 * time.Second

// requireMember rejects an inbound event whose roomId does not match the
// room cn is currently registered to (spec §6: every roomId-bearing event
// "is rejected if the caller is not a member").
func (g *Gateway) requireMember(cn *conn, roomID string) bool {
	if cn.roomID == "" || roomID != cn.roomID {
		g.sendError(cn, "not a member of this room")
		return false
	}
	return true
}

func (g *Gateway) dispatch(cn *conn, env inboundEnvelope) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	switch env.Type {
	case "createRoom":
		g.handleCreateRoom(ctx, cn, env.Payload)
	case "joinRoom":
		g.handleJoinRoom(ctx, cn, env.Payload)
	case "reconnectToRoom":
		g.handleReconnect(ctx, cn, env.Payload)
	case "updateSettings":
		g.handleUpdateSettings(ctx, cn, env.Payload)
	case "startGame":
		g.handleStartGame(ctx, cn, env.Payload)
	case "wordSelected":
		g.handleWordSelected(ctx, cn, env.Payload)
	case "draw":
		g.handleDraw(ctx, cn, env.Payload)
	case "clearCanvas":
		g.handleClearCanvas(ctx, cn, env.Payload)
	case "chat":
		g.handleChat(ctx, cn, env.Payload)
	case "guess":
		g.handleGuess(ctx, cn, env.Payload)
	default:
		g.sendError(cn, "unknown event")
	}
}

func (g *Gateway) handleCreateRoom(ctx context.Context, cn *conn, raw json.RawMessage) {
	var p createRoomPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		g.sendError(cn, "malformed createRoom payload")
		return
	}
	name, err := validate.Name(g.moderator, p.PlayerName)
	if err != nil {
		g.sendError(cn, "invalid name")
		return
	}
	sessionID := p.SessionID
	if sessionID == "" {
		sessionID = idgen.NewSessionID()
	}

	roomID := g.roomIDs.Generate()
	player := model.Player{
		SocketID: cn.socketID, SessionID: sessionID, Name: name, Avatar: p.Avatar,
		IsConnected: true, LastSeen: time.Now(),
	}
	room := model.NewRoom(roomID, player)
	room.Private = p.Private

	if err := g.store.Save(ctx, room, 0); err != nil {
		g.roomIDs.Release(roomID)
		log.Error().Err(err).Msg("gateway: create room failed")
		g.sendError(cn, "could not create room")
		return
	}

	g.register(cn, roomID, sessionID)
	g.engine.StartRoomLoop(roomID)

	g.sendEvent(cn, engine.Event{Type: "roomCreated", Payload: map[string]string{"roomId": roomID, "sessionId": sessionID}})
}

func (g *Gateway) handleJoinRoom(ctx context.Context, cn *conn, raw json.RawMessage) {
	var p joinRoomPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		g.sendError(cn, "malformed joinRoom payload")
		return
	}
	name, err := validate.Name(g.moderator, p.PlayerName)
	if err != nil {
		g.sendError(cn, "invalid name")
		return
	}
	sessionID := p.SessionID
	if sessionID == "" {
		sessionID = idgen.NewSessionID()
	}

	player := model.Player{
		SocketID: cn.socketID, SessionID: sessionID, Name: name, Avatar: p.Avatar,
		IsConnected: true, LastSeen: time.Now(),
	}

	room, err := g.store.UpdateRoom(ctx, p.RoomID, func(r *model.Room) error {
		if len(r.Players) >= r.MaxPlayers {
			return errRoomFull
		}
		r.Players = append(r.Players, player)
		r.LastActivity = time.Now()
		return nil
	})
	if err == store.ErrNotFound {
		g.sendError(cn, "room not found")
		return
	}
	if err == errRoomFull {
		g.sendError(cn, "room is full")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("gateway: join room failed")
		g.sendError(cn, "could not join room")
		return
	}

	g.register(cn, p.RoomID, sessionID)
	g.sendEvent(cn, engine.Event{Type: "roomJoined", Payload: map[string]string{"roomId": p.RoomID, "sessionId": sessionID}})
	g.BroadcastRoom(p.RoomID, engine.Event{Type: engine.EventPlayerJoined, Payload: room.Players})
}

func (g *Gateway) handleReconnect(ctx context.Context, cn *conn, raw json.RawMessage) {
	var p reconnectPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		g.sendError(cn, "malformed reconnectToRoom payload")
		return
	}

	room, err := g.store.UpdateRoom(ctx, p.RoomID, func(r *model.Room) error {
		idx := r.PlayerIndex(p.SessionID)
		if idx < 0 {
			return errUnknownSession
		}
		r.Players[idx].SocketID = cn.socketID
		r.Players[idx].IsConnected = true
		r.Players[idx].LastSeen = time.Now()
		r.LastActivity = time.Now()
		return nil
	})
	if err == store.ErrNotFound {
		g.sendError(cn, "room not found")
		return
	}
	if err == errUnknownSession {
		g.sendError(cn, "unknown session")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("gateway: reconnect failed")
		g.sendError(cn, "could not reconnect")
		return
	}

	g.register(cn, p.RoomID, p.SessionID)

	wordHint := ""
	if room.Phase == model.PhaseDrawing {
		drawer, ok := room.Drawer()
		if ok && drawer.SessionID == p.SessionID {
			wordHint = room.CurrentWord
		} else {
			wordHint = hint.MaskWord(room.CurrentWord, room.RevealedLetters)
		}
	}
	state := gameStatePayload{
		RoomID: p.RoomID, Phase: room.Phase.String(), TimeLeft: secondsUntil(room.TurnEndsAt),
		WordHint: wordHint, Players: room.Players, CurrentDrawing: room.CurrentDrawing, Chat: room.Chat,
	}
	g.sendEvent(cn, engine.Event{Type: "reconnectionSuccess", Payload: state})
	g.BroadcastRoomExcept(p.RoomID, p.SessionID, engine.Event{Type: engine.EventPlayerReconnected, Payload: p.SessionID})
}

func secondsUntil(t time.Time) int {
	remaining := int(time.Until(t).Seconds())
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

func (g *Gateway) handleUpdateSettings(ctx context.Context, cn *conn, raw json.RawMessage) {
	var p updateSettingsPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		g.sendError(cn, "malformed updateSettings payload")
		return
	}

	room, err := g.store.UpdateRoom(ctx, p.RoomID, func(r *model.Room) error {
		host, ok := r.Host()
		if !ok || host.SessionID != cn.sessionID {
			return errNotHost
		}
		if r.Phase != model.PhaseLobby {
			return errWrongPhase
		}
		applySettings(r, p.Settings)
		r.LastActivity = time.Now()
		return nil
	})
	if err == store.ErrNotFound {
		g.sendError(cn, "room not found")
		return
	}
	if err == errNotHost {
		g.sendError(cn, "only the host may change settings")
		return
	}
	if err == errWrongPhase {
		g.sendError(cn, "settings can only change before the game starts")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("gateway: update settings failed")
		g.sendError(cn, "could not update settings")
		return
	}

	g.BroadcastRoom(p.RoomID, engine.Event{Type: engine.EventSettingsUpdated, Payload: room})
}

func (g *Gateway) handleStartGame(ctx context.Context, cn *conn, raw json.RawMessage) {
	var p roomOnlyPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		g.sendError(cn, "malformed startGame payload")
		return
	}
	if err := g.engine.StartGame(ctx, p.RoomID, cn.sessionID); err != nil {
		g.sendError(cn, engineErrorMessage(err))
	}
}

func (g *Gateway) handleWordSelected(ctx context.Context, cn *conn, raw json.RawMessage) {
	var p wordSelectedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		g.sendError(cn, "malformed wordSelected payload")
		return
	}
	if err := g.engine.SelectWord(ctx, p.RoomID, cn.sessionID, p.Word); err != nil {
		g.sendError(cn, engineErrorMessage(err))
	}
}

func (g *Gateway) handleDraw(ctx context.Context, cn *conn, raw json.RawMessage) {
	var p drawPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return
	}
	if !g.requireMember(cn, p.RoomID) {
		return
	}
	g.BroadcastRoomExcept(p.RoomID, cn.sessionID, engine.Event{Type: engine.EventDraw, Payload: p.Lines})
	if err := g.store.AppendDrawing(ctx, p.RoomID, []byte(p.Lines)); err != nil {
		log.Warn().Err(err).Str("roomId", p.RoomID).Msg("gateway: persisting draw snapshot failed")
	}
}

func (g *Gateway) handleClearCanvas(ctx context.Context, cn *conn, raw json.RawMessage) {
	var p roomOnlyPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return
	}
	if !g.requireMember(cn, p.RoomID) {
		return
	}
	g.BroadcastRoom(p.RoomID, engine.Event{Type: engine.EventClearCanvas, Payload: nil})
	if err := g.store.ClearDrawing(ctx, p.RoomID); err != nil {
		log.Warn().Err(err).Str("roomId", p.RoomID).Msg("gateway: clearing canvas failed")
	}
}

func (g *Gateway) handleChat(ctx context.Context, cn *conn, raw json.RawMessage) {
	var p chatPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		g.sendError(cn, "malformed chat payload")
		return
	}
	if !g.requireMember(cn, p.RoomID) {
		return
	}
	name, err := validate.Name(g.moderator, p.Name)
	if err != nil {
		g.sendError(cn, "invalid name")
		return
	}
	msg, err := validate.Msg(g.moderator, p.Msg)
	if err != nil {
		g.sendError(cn, "message rejected")
		return
	}
	g.engine.Chat(ctx, p.RoomID, cn.sessionID, name, msg)
}

func (g *Gateway) handleGuess(ctx context.Context, cn *conn, raw json.RawMessage) {
	var p guessPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		g.sendError(cn, "malformed guess payload")
		return
	}
	if !g.requireMember(cn, p.RoomID) {
		return
	}
	name, err := validate.Name(g.moderator, p.Name)
	if err != nil {
		g.sendError(cn, "invalid name")
		return
	}
	guess, err := validate.Guess(g.moderator, p.Guess)
	if err != nil {
		g.sendError(cn, "guess rejected")
		return
	}
	if err := g.engine.Guess(ctx, p.RoomID, cn.sessionID, name, guess); err != nil {
		g.sendError(cn, engineErrorMessage(err))
	}
}

func (g *Gateway) onPlayerDisconnected(ctx context.Context, roomID, sessionID string) {
	var wasHost bool
	room, err := g.store.UpdateRoom(ctx, roomID, func(r *model.Room) error {
		host, ok := r.Host()
		wasHost = ok && host.SessionID == sessionID
		idx := r.PlayerIndex(sessionID)
		if idx < 0 {
			return nil
		}
		r.Players[idx].IsConnected = false
		r.Players[idx].LastSeen = time.Now()
		r.LastActivity = time.Now()
		return nil
	})
	if err != nil {
		if err != store.ErrNotFound {
			log.Warn().Err(err).Str("roomId", roomID).Msg("gateway: marking disconnect failed")
		}
		return
	}

	g.BroadcastRoom(roomID, engine.Event{Type: engine.EventPlayerDisconnected, Payload: sessionID})

	if newHost, ok := room.Host(); ok && wasHost && newHost.SessionID != sessionID {
		g.BroadcastRoom(roomID, engine.Event{Type: engine.EventHostChanged, Payload: newHost.SessionID})
	}
}
