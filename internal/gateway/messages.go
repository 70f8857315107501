package gateway

import (
	"encoding/json"

	"github.com/pranavnigade123/drawzzl-backend/internal/model"
)

// inboundEnvelope is the tagged-union wire shape spec §9 calls for, in
// place of the loose/dynamic message shapes it flags: a closed event name
// plus a raw payload decoded once the name is known.
type inboundEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundEnvelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type createRoomPayload struct {
	PlayerName string       `json:"playerName"`
	Avatar     model.Avatar `json:"avatar"`
	SessionID  string       `json:"sessionId"`
	Private    bool         `json:"private"`
}

type joinRoomPayload struct {
	RoomID     string       `json:"roomId"`
	PlayerName string       `json:"playerName"`
	Avatar     model.Avatar `json:"avatar"`
	SessionID  string       `json:"sessionId"`
}

type reconnectPayload struct {
	SessionID string `json:"sessionId"`
	RoomID    string `json:"roomId"`
}

type settingsPatch struct {
	MaxPlayers            *int     `json:"maxPlayers"`
	MaxRounds             *int     `json:"maxRounds"`
	DrawTime              *int     `json:"drawTime"`
	WordCount             *int     `json:"wordCount"`
	CustomWords           []string `json:"customWords"`
	CustomWordProbability *int     `json:"customWordProbability"`
	Private               *bool    `json:"private"`
}

type updateSettingsPayload struct {
	RoomID   string        `json:"roomId"`
	Settings settingsPatch `json:"settings"`
}

type roomOnlyPayload struct {
	RoomID string `json:"roomId"`
}

type wordSelectedPayload struct {
	RoomID string `json:"roomId"`
	Word   string `json:"word"`
}

type drawPayload struct {
	RoomID string          `json:"roomId"`
	Lines  json.RawMessage `json:"lines"`
}

type chatPayload struct {
	RoomID string `json:"roomId"`
	Msg    string `json:"msg"`
	Name   string `json:"name"`
}

type guessPayload struct {
	RoomID string `json:"roomId"`
	Guess  string `json:"guess"`
	Name   string `json:"name"`
}

// gameStatePayload is the body of reconnectionSuccess (spec §8 "Idempotent
// reconnect").
type gameStatePayload struct {
	RoomID         string         `json:"roomId"`
	Phase          string         `json:"phase"`
	TimeLeft       int            `json:"timeLeft"`
	WordHint       string         `json:"wordHint"`
	Players        []model.Player `json:"players"`
	CurrentDrawing [][]byte       `json:"currentDrawing"`
	Chat           []model.ChatEntry `json:"chat"`
}
