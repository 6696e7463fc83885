package session

import (
	"github.com/DoyleJ11/battleship-backend/internal/game"
)

type Msg interface{ isSessionMsg() }

// FromClient carries one match command from a connection. The client id lets
// rejections go back to the offending connection only.
type FromClient struct {
	ClientID string
	Cmd      game.Command
}

func (FromClient) isSessionMsg() {}

// Join subscribes a player connection to the session room.
type Join struct {
	ClientID string
	PlayerID string
	Outbox   chan Outbound
}

func (Join) isSessionMsg() {}

// Spectate subscribes a read-only connection. Spectators get the fully
// redacted view of both boards.
type Spectate struct {
	ClientID string
	Outbox   chan Outbound
}

func (Spectate) isSessionMsg() {}

type Leave struct{ ClientID string }

func (Leave) isSessionMsg() {}

// Chat relays a message to everyone in the room. Nothing is stored.
type Chat struct {
	ClientID string
	From     string
	Text     string
}

func (Chat) isSessionMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isSessionMsg() {}

// Do runs one command synchronously: the request/response mirror of
// FromClient, used by the HTTP surface. Broadcasts still fan out as usual.
type Do struct {
	Cmd   game.Command
	Reply chan error
}

func (Do) isSessionMsg() {}

// GetSnapshot fetches the redacted view for one viewer.
type GetSnapshot struct {
	ViewerID string
	Reply    chan *Snapshot
}

func (GetSnapshot) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

// timerFired and aiFire are the session's own deferred callbacks re-entering
// the serialized loop. The generation drops fires that were superseded before
// delivery.
type timerFired struct{ gen int }

func (timerFired) isSessionMsg() {}

type aiFire struct{ gen int }

func (aiFire) isSessionMsg() {}

// Outbound is one server-to-client publication. Exactly one field is set.
type Outbound struct {
	Snapshot *Snapshot    `json:"snapshot,omitempty"`
	Shot     *ShotOutcome `json:"shot,omitempty"`
	Chat     *ChatNote    `json:"chat,omitempty"`
	Err      string       `json:"error,omitempty"`
}

type ShotOutcome struct {
	ShooterID string        `json:"shooter_id"`
	X         int           `json:"x"`
	Y         int           `json:"y"`
	Hit       bool          `json:"hit"`
	Sunk      game.ShipKind `json:"sunk,omitempty"`
	GameOver  bool          `json:"game_over"`
}

type ChatNote struct {
	From string `json:"from"`
	Text string `json:"text"`
}

// View reflects internal state for tests without data races.
type View struct {
	Version    int
	NumClients int
	State      game.State
}

// Result is handed to the registry when a match finishes.
type Result struct {
	SessionID    string
	WinnerID     string
	LoserID      string
	SinglePlayer bool
	Reason       string
	WinnerShots  int
	LoserShots   int
}
