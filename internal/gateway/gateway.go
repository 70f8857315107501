// Package gateway is the connection-oriented façade in front of the turn
// engine (spec §4.2): it owns socket<->session binding, rate limiting,
// input validation, and room-scoped fan-out, and implements
// engine.Broadcaster so the engine never touches a socket directly.
// Grounded on the teacher's game/handlers.go + game/websocket.go
// (upgrade-then-read-loop shape) and game/interfaces.go's NetworkSession
// seam, generalized from the teacher's per-lobby actor to a plain
// mutex-guarded registry per spec §5's admissible realizations.
package gateway

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pranavnigade123/drawzzl-backend/internal/engine"
	"github.com/pranavnigade123/drawzzl-backend/internal/idgen"
	"github.com/pranavnigade123/drawzzl-backend/internal/ratelimit"
	"github.com/pranavnigade123/drawzzl-backend/internal/store"
	"github.com/pranavnigade123/drawzzl-backend/internal/transport"
	"github.com/pranavnigade123/drawzzl-backend/internal/validate"
)

const writeQueueDepth = 64
const pingInterval = 30 * time.Second

// Gateway binds sockets to sessions/rooms and fans engine events back out.
type Gateway struct {
	engine    *engine.Engine
	store     *store.Store
	limiter   *ratelimit.Limiter
	moderator validate.Moderator
	roomIDs   *idgen.RoomIDGenerator

	mu       sync.Mutex
	rooms    map[string]map[string]*conn // roomID -> sessionID -> conn
	bySocket map[string]*conn
}

// conn is one live socket's gateway-side bookkeeping.
type conn struct {
	socketID  string
	sessionID string
	roomID    string
	session   transport.Session
	send      chan []byte
	closeOnce sync.Once
}

// New builds a Gateway without its Engine wired yet — Engine and Gateway
// each need a reference to the other (the engine calls back through
// Broadcaster), so construction is two steps: New, then SetEngine once the
// Engine exists.
func New(st *store.Store, limiter *ratelimit.Limiter, mod validate.Moderator, roomIDs *idgen.RoomIDGenerator) *Gateway {
	return &Gateway{
		store:     st,
		limiter:   limiter,
		moderator: mod,
		roomIDs:   roomIDs,
		rooms:     make(map[string]map[string]*conn),
		bySocket:  make(map[string]*conn),
	}
}

// SetEngine completes construction once the Engine has been built with
// this Gateway as its Broadcaster.
func (g *Gateway) SetEngine(eng *engine.Engine) {
	g.engine = eng
}

// HandleWS upgrades the request and runs the connection's lifecycle until
// it disconnects.
func (g *Gateway) HandleWS(c *gin.Context) {
	cn := &conn{
		socketID: uuid.NewString(), // volatile socket identity, distinct from sessionId
		send:     make(chan []byte, writeQueueDepth),
	}

	ws, err := transport.Upgrade(c.Writer, c.Request, func() { g.touchActivity(cn) })
	if err != nil {
		log.Warn().Err(err).Msg("gateway: websocket upgrade failed")
		return
	}
	cn.session = ws

	g.mu.Lock()
	g.bySocket[cn.socketID] = cn
	g.mu.Unlock()

	go g.writePump(cn)
	g.readPump(cn)
}

func (g *Gateway) writePump(cn *conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case data, ok := <-cn.send:
			if !ok {
				return
			}
			if err := cn.session.Write(data); err != nil {
				return
			}
		case <-ticker.C:
			if err := cn.session.Ping(); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) readPump(cn *conn) {
	defer g.handleDisconnect(cn)
	for {
		raw, err := cn.session.Read()
		if err != nil {
			return
		}
		var env inboundEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			g.sendError(cn, "malformed message")
			continue
		}
		if !g.rateLimitOK(cn, env.Type) {
			g.sendError(cn, "rate limit exceeded")
			continue
		}
		g.dispatch(cn, env)
	}
}

func (g *Gateway) rateLimitOK(cn *conn, eventType string) bool {
	var kind ratelimit.Kind
	switch eventType {
	case "draw":
		kind = ratelimit.Draw
	case "chat", "guess":
		kind = ratelimit.ChatOrGuess
	default:
		return true
	}
	return g.limiter.Allow(cn.socketID, kind)
}

// register binds cn to a room/session pair so broadcasts can reach it.
func (g *Gateway) register(cn *conn, roomID, sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cn.roomID != "" {
		if members, ok := g.rooms[cn.roomID]; ok {
			delete(members, cn.sessionID)
		}
	}
	cn.roomID = roomID
	cn.sessionID = sessionID
	members, ok := g.rooms[roomID]
	if !ok {
		members = make(map[string]*conn)
		g.rooms[roomID] = members
	}
	members[sessionID] = cn
}

func (g *Gateway) handleDisconnect(cn *conn) {
	g.mu.Lock()
	delete(g.bySocket, cn.socketID)
	roomID, sessionID := cn.roomID, cn.sessionID
	if roomID != "" {
		if members, ok := g.rooms[roomID]; ok {
			delete(members, sessionID)
			if len(members) == 0 {
				delete(g.rooms, roomID)
			}
		}
	}
	g.mu.Unlock()

	cn.closeOnce.Do(func() { close(cn.send) })
	g.limiter.Release(cn.socketID)

	if roomID == "" || sessionID == "" {
		return
	}
	g.onPlayerDisconnected(context.Background(), roomID, sessionID)
}

// touchActivity marks cn's room as active without a full mutation, so a
// connection that stays joined but quiet (no draw/chat/guess for a while)
// isn't swept as idle by the sweeper (spec §4.3 "touchActivity", §4.4).
// Fired from the transport layer's pong handler.
func (g *Gateway) touchActivity(cn *conn) {
	g.mu.Lock()
	roomID := cn.roomID
	g.mu.Unlock()
	if roomID == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := g.store.TouchActivity(ctx, roomID); err != nil {
			log.Warn().Err(err).Str("roomId", roomID).Msg("gateway: touch activity failed")
		}
	}()
}

func (g *Gateway) sendEvent(cn *conn, ev engine.Event) {
	data, err := json.Marshal(outboundEnvelope{Type: ev.Type, Payload: ev.Payload})
	if err != nil {
		log.Error().Err(err).Str("type", ev.Type).Msg("gateway: marshal outbound event failed")
		return
	}
	select {
	case cn.send <- data:
	default:
		log.Warn().Str("socketId", cn.socketID).Msg("gateway: slow consumer, dropping frame")
	}
}

func (g *Gateway) sendError(cn *conn, message string) {
	g.sendEvent(cn, engine.Event{Type: engine.EventError, Payload: map[string]string{"message": message}})
}

// BroadcastRoom implements engine.Broadcaster.
func (g *Gateway) BroadcastRoom(roomID string, ev engine.Event) {
	for _, cn := range g.roomMembers(roomID) {
		g.sendEvent(cn, ev)
	}
}

// BroadcastRoomExcept implements engine.Broadcaster.
func (g *Gateway) BroadcastRoomExcept(roomID, exceptSessionID string, ev engine.Event) {
	for _, cn := range g.roomMembers(roomID) {
		if cn.sessionID == exceptSessionID {
			continue
		}
		g.sendEvent(cn, ev)
	}
}

// SendTo implements engine.Broadcaster.
func (g *Gateway) SendTo(roomID, sessionID string, ev engine.Event) {
	g.mu.Lock()
	members := g.rooms[roomID]
	var cn *conn
	if members != nil {
		cn = members[sessionID]
	}
	g.mu.Unlock()
	if cn != nil {
		g.sendEvent(cn, ev)
	}
}

func (g *Gateway) roomMembers(roomID string) []*conn {
	g.mu.Lock()
	defer g.mu.Unlock()
	members := g.rooms[roomID]
	out := make([]*conn, 0, len(members))
	for _, cn := range members {
		out = append(out, cn)
	}
	return out
}

// LiveSocketIDs is used by the rate-limit sweeper to drop stale buckets.
func (g *Gateway) LiveSocketIDs() map[string]struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]struct{}, len(g.bySocket))
	for id := range g.bySocket {
		out[id] = struct{}{}
	}
	return out
}

// ActiveRoomCount reports the number of rooms with at least one live socket, for
// the health surface's rooms.active.
func (g *Gateway) ActiveRoomCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}
