package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestPlayer(sessionID string, connected bool) Player {
	return Player{SessionID: sessionID, SocketID: "sock_" + sessionID, Name: sessionID, IsConnected: connected}
}

func TestNewRoom_Defaults(t *testing.T) {
	r := NewRoom("ABC123", newTestPlayer("s1", true))
	assert.Equal(t, PhaseLobby, r.Phase)
	assert.Equal(t, 1, r.Round)
	assert.Equal(t, DefaultMaxPlayers, r.MaxPlayers)
	assert.Equal(t, DefaultRounds, r.MaxRounds)
	assert.Equal(t, DefaultDrawSeconds, r.DrawTime)
	assert.Len(t, r.Players, 1)
}

func TestRoom_ClampDrawerIndex(t *testing.T) {
	r := NewRoom("ABC123", newTestPlayer("s1", true))
	r.Players = append(r.Players, newTestPlayer("s2", true))
	r.DrawerIndex = 5
	r.ClampDrawerIndex()
	assert.Equal(t, 1, r.DrawerIndex)

	r.DrawerIndex = -1
	r.ClampDrawerIndex()
	assert.Equal(t, 0, r.DrawerIndex)
}

func TestRoom_ClampDrawerIndex_NoPlayers(t *testing.T) {
	r := &Room{}
	r.DrawerIndex = 3
	r.ClampDrawerIndex()
	assert.Equal(t, 0, r.DrawerIndex)
}

func TestRoom_Host_FirstConnected(t *testing.T) {
	r := NewRoom("ABC123", newTestPlayer("s1", false))
	r.Players = append(r.Players, newTestPlayer("s2", true))
	host, ok := r.Host()
	assert.True(t, ok)
	assert.Equal(t, "s2", host.SessionID)
}

func TestRoom_Host_FallsBackWhenNoneConnected(t *testing.T) {
	r := NewRoom("ABC123", newTestPlayer("s1", false))
	host, ok := r.Host()
	assert.True(t, ok)
	assert.Equal(t, "s1", host.SessionID)
}

func TestRoom_Host_EmptyRoom(t *testing.T) {
	r := &Room{}
	_, ok := r.Host()
	assert.False(t, ok)
}

func TestRoom_PlayerIndex(t *testing.T) {
	r := NewRoom("ABC123", newTestPlayer("s1", true))
	r.Players = append(r.Players, newTestPlayer("s2", true))
	assert.Equal(t, 1, r.PlayerIndex("s2"))
	assert.Equal(t, -1, r.PlayerIndex("nope"))
}

func TestRoom_NextDrawerIndex_SkipsDisconnected(t *testing.T) {
	r := NewRoom("ABC123", newTestPlayer("s1", true))
	r.Players = append(r.Players, newTestPlayer("s2", false), newTestPlayer("s3", true))

	idx, wrapped := r.NextDrawerIndex(0)
	assert.Equal(t, 2, idx)
	assert.False(t, wrapped)
}

func TestRoom_NextDrawerIndex_WrapsAround(t *testing.T) {
	r := NewRoom("ABC123", newTestPlayer("s1", true))
	r.Players = append(r.Players, newTestPlayer("s2", true))

	idx, wrapped := r.NextDrawerIndex(1)
	assert.Equal(t, 0, idx)
	assert.True(t, wrapped)
}

func TestRoom_EligibleGuessers_ExcludesDrawerAndDisconnected(t *testing.T) {
	r := NewRoom("ABC123", newTestPlayer("s1", true))
	r.Players = append(r.Players, newTestPlayer("s2", true), newTestPlayer("s3", false))
	r.DrawerIndex = 0

	guessers := r.EligibleGuessers()
	assert.Len(t, guessers, 1)
	assert.Equal(t, "s2", guessers[0].SessionID)
}

func TestRoom_ConnectedCount(t *testing.T) {
	r := NewRoom("ABC123", newTestPlayer("s1", true))
	r.Players = append(r.Players, newTestPlayer("s2", false), newTestPlayer("s3", true))
	assert.Equal(t, 2, r.ConnectedCount())
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "lobby", PhaseLobby.String())
	assert.Equal(t, "drawing", PhaseDrawing.String())
	assert.Equal(t, "unknown", Phase(99).String())
}
