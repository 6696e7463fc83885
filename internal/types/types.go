package types

import (
	"github.com/DoyleJ11/battleship-backend/internal/registry"
	"github.com/DoyleJ11/battleship-backend/internal/session"
)

// ClientMessage is every client-to-server socket event.
//
// Types: "createGame", "joinGame", "joinGameByCode", "spectateGame",
// "placeShip", "fireShot", "timeout", "surrender", "chat".
type ClientMessage struct {
	Type         string `json:"type"`
	SessionID    string `json:"session_id,omitempty"`
	JoinCode     string `json:"join_code,omitempty"`
	PlayerID     string `json:"player_id,omitempty"`
	SinglePlayer bool   `json:"single_player,omitempty"`
	Difficulty   string `json:"difficulty,omitempty"`
	ShipKind     string `json:"ship_kind,omitempty"`
	Orientation  string `json:"orientation,omitempty"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Text         string `json:"text,omitempty"`
}

// ServerMessage is every server-to-client socket event.
//
// Types: "gameCreated", "gameUpdated", "shotResult", "chat",
// "gameListUpdate", "error".
type ServerMessage struct {
	Type      string               `json:"type"`
	SessionID string               `json:"session_id,omitempty"`
	JoinCode  string               `json:"join_code,omitempty"`
	PlayerID  string               `json:"player_id,omitempty"`
	Snapshot  *session.Snapshot    `json:"snapshot,omitempty"`
	Shot      *session.ShotOutcome `json:"shot,omitempty"`
	Chat      *session.ChatNote    `json:"chat,omitempty"`
	Games     []registry.Summary   `json:"games,omitempty"`
	Error     string               `json:"error,omitempty"`
}
