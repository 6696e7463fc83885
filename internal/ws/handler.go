// Package ws is the socket transport: it maps inbound client events onto
// session commands and writes everything the room publishes back out, plus a
// periodic lobby list refresh.
package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/DoyleJ11/battleship-backend/internal/ai"
	"github.com/DoyleJ11/battleship-backend/internal/game"
	"github.com/DoyleJ11/battleship-backend/internal/registry"
	"github.com/DoyleJ11/battleship-backend/internal/session"
	"github.com/DoyleJ11/battleship-backend/internal/types"
)

const outboxSize = 16
const writeTimeout = 3 * time.Second
const idleTimeout = 5 * time.Minute

func Handler(reg *registry.Registry, lobbyRefresh time.Duration, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		c := &conn2session{
			reg:      reg,
			conn:     conn,
			clientID: randID(8),
			out:      make(chan session.Outbound, outboxSize),
			logger:   logger,
		}
		c.run(r.Context(), lobbyRefresh)
	}
}

// conn2session is the per-connection state: which session (if any) this socket
// is attached to, and as which player.
type conn2session struct {
	reg      *registry.Registry
	conn     *websocket.Conn
	clientID string
	playerID string
	sess     *session.Session
	out      chan session.Outbound
	logger   *zap.Logger
}

func (c *conn2session) run(ctx context.Context, lobbyRefresh time.Duration) {
	writeCtx, writeCancel := context.WithCancel(ctx)
	defer writeCancel()
	go c.writer(writeCtx, lobbyRefresh)

	defer func() {
		if c.sess != nil {
			c.sess.Send(session.Leave{ClientID: c.clientID})
		}
	}()

	for {
		readCtx, cancel := context.WithTimeout(ctx, idleTimeout)
		_, data, err := c.conn.Read(readCtx)
		cancel()
		if err != nil {
			return
		}

		var cm types.ClientMessage
		if err := json.Unmarshal(data, &cm); err != nil {
			c.writeMsg(ctx, types.ServerMessage{Type: "error", Error: "bad json"})
			continue
		}
		c.handle(ctx, cm)
	}
}

// writer drains the room outbox and ticks the lobby list. It owns all writes
// to the socket.
func (c *conn2session) writer(ctx context.Context, lobbyRefresh time.Duration) {
	ticker := time.NewTicker(lobbyRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case out, ok := <-c.out:
			if !ok {
				// Dropped by the session (slow consumer) or session shut
				// down; nothing sensible left to do with this socket.
				c.conn.Close(websocket.StatusGoingAway, "room closed")
				return
			}
			c.writeMsg(ctx, toServerMessage(out))

		case <-ticker.C:
			reply := make(chan []registry.Summary, 1)
			c.reg.Inbox() <- registry.List{Reply: reply}
			select {
			case games := <-reply:
				c.writeMsg(ctx, types.ServerMessage{Type: "gameListUpdate", Games: games})
			case <-ctx.Done():
				return
			}
		}
	}
}

func toServerMessage(out session.Outbound) types.ServerMessage {
	switch {
	case out.Snapshot != nil:
		return types.ServerMessage{Type: "gameUpdated", Snapshot: out.Snapshot}
	case out.Shot != nil:
		return types.ServerMessage{Type: "shotResult", Shot: out.Shot}
	case out.Chat != nil:
		return types.ServerMessage{Type: "chat", Chat: out.Chat}
	default:
		return types.ServerMessage{Type: "error", Error: out.Err}
	}
}

func (c *conn2session) handle(ctx context.Context, cm types.ClientMessage) {
	switch cm.Type {
	case "createGame":
		if c.sess != nil {
			c.writeMsg(ctx, types.ServerMessage{Type: "error", Error: "already in a session"})
			return
		}
		reply := make(chan registry.Created, 1)
		c.reg.Inbox() <- registry.Create{
			SinglePlayer: cm.SinglePlayer,
			PlayerID:     cm.PlayerID,
			Difficulty:   parseDifficulty(cm.Difficulty),
			Reply:        reply,
		}
		created := <-reply
		if created.Session == nil {
			c.writeMsg(ctx, types.ServerMessage{Type: "error", Error: "could not create game"})
			return
		}
		// The registry already put the host in the match; attach with that
		// exact identity rather than minting a second one.
		c.attach(created.Session, created.Host, false)
		c.writeMsg(ctx, types.ServerMessage{
			Type:      "gameCreated",
			SessionID: created.Session.ID(),
			JoinCode:  created.Session.JoinCode(),
			PlayerID:  c.playerID,
		})

	case "joinGame":
		c.join(ctx, c.lookup(registry.Get{ID: cm.SessionID}), cm.PlayerID, "session not found")

	case "joinGameByCode":
		c.join(ctx, c.lookup(registry.GetByCode{Code: cm.JoinCode}), cm.PlayerID, "invalid join code")

	case "spectateGame":
		sess := c.lookup(registry.Get{ID: cm.SessionID})
		if sess == nil {
			c.writeMsg(ctx, types.ServerMessage{Type: "error", Error: "session not found"})
			return
		}
		if c.sess != nil {
			c.writeMsg(ctx, types.ServerMessage{Type: "error", Error: "already in a session"})
			return
		}
		c.sess = sess
		c.send(ctx, session.Spectate{ClientID: c.clientID, Outbox: c.out})

	case "placeShip":
		if !c.requirePlayer(ctx) {
			return
		}
		kind, ok := parseShipKind(cm.ShipKind)
		if !ok {
			c.writeMsg(ctx, types.ServerMessage{Type: "error", Error: "unknown ship kind"})
			return
		}
		c.send(ctx, session.FromClient{ClientID: c.clientID, Cmd: game.Command{
			Type:        game.CmdPlaceShip,
			PlayerID:    c.playerID,
			Kind:        kind,
			Origin:      game.Coordinate{X: cm.X, Y: cm.Y},
			Orientation: parseOrientation(cm.Orientation),
		}})

	case "fireShot":
		if !c.requirePlayer(ctx) {
			return
		}
		c.send(ctx, session.FromClient{ClientID: c.clientID, Cmd: game.Command{
			Type:     game.CmdFireShot,
			PlayerID: c.playerID,
			Target:   game.Coordinate{X: cm.X, Y: cm.Y},
		}})

	case "timeout":
		// Client-reported expiry. The session runs its own clock; the engine
		// only honors a report from the player actually on turn, so the worst
		// a client can do here is give up its own turn early.
		if !c.requirePlayer(ctx) {
			return
		}
		c.send(ctx, session.FromClient{ClientID: c.clientID, Cmd: game.Command{
			Type:     game.CmdShotTimeout,
			PlayerID: c.playerID,
		}})

	case "surrender":
		if !c.requirePlayer(ctx) {
			return
		}
		c.send(ctx, session.FromClient{ClientID: c.clientID, Cmd: game.Command{
			Type:     game.CmdSurrender,
			PlayerID: c.playerID,
		}})

	case "chat":
		if !c.requirePlayer(ctx) {
			return
		}
		c.send(ctx, session.Chat{ClientID: c.clientID, From: c.playerID, Text: cm.Text})

	default:
		c.writeMsg(ctx, types.ServerMessage{Type: "error", Error: "unknown type"})
	}
}

func (c *conn2session) join(ctx context.Context, sess *session.Session, playerID, missing string) {
	if sess == nil {
		c.writeMsg(ctx, types.ServerMessage{Type: "error", Error: missing})
		return
	}
	if c.sess != nil {
		c.writeMsg(ctx, types.ServerMessage{Type: "error", Error: "already in a session"})
		return
	}
	c.attach(sess, c.reg.NewPlayer(context.Background(), playerID), true)
}

// attach subscribes this socket as the given player. For a joiner the engine
// also gets a CmdJoin; if the room turned out to be full the join rejection
// comes back on this socket only.
func (c *conn2session) attach(sess *session.Session, player *game.Player, sendJoin bool) {
	c.sess = sess
	c.playerID = player.ID
	sess.Send(session.Join{ClientID: c.clientID, PlayerID: player.ID, Outbox: c.out})
	if sendJoin {
		sess.Send(session.FromClient{ClientID: c.clientID, Cmd: game.Command{
			Type:   game.CmdJoin,
			Player: player,
		}})
	}
}

func (c *conn2session) lookup(msg registry.Msg) *session.Session {
	reply := make(chan *session.Session, 1)
	switch m := msg.(type) {
	case registry.Get:
		m.Reply = reply
		c.reg.Inbox() <- m
	case registry.GetByCode:
		m.Reply = reply
		c.reg.Inbox() <- m
	default:
		return nil
	}
	return <-reply
}

// requirePlayer gates the commands only a seated player may issue; spectators
// and unattached sockets get a targeted error.
func (c *conn2session) requirePlayer(ctx context.Context) bool {
	if c.sess == nil {
		c.writeMsg(ctx, types.ServerMessage{Type: "error", Error: "not in a session"})
		return false
	}
	if c.playerID == "" {
		c.writeMsg(ctx, types.ServerMessage{Type: "error", Error: "spectators cannot play"})
		return false
	}
	return true
}

func (c *conn2session) send(ctx context.Context, msg session.Msg) {
	if !c.sess.Send(msg) {
		c.writeMsg(ctx, types.ServerMessage{Type: "error", Error: "game is closed"})
	}
}

func (c *conn2session) writeMsg(ctx context.Context, msg types.ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("marshal server message", zap.Error(err))
		return
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = c.conn.Write(wctx, websocket.MessageText, payload)
}

func parseShipKind(kind string) (game.ShipKind, bool) {
	k := game.ShipKind(kind)
	if _, ok := game.FleetCatalog[k]; !ok {
		return "", false
	}
	return k, true
}

func parseOrientation(o string) game.Orientation {
	if o == string(game.Vertical) {
		return game.Vertical
	}
	return game.Horizontal
}

func parseDifficulty(d string) ai.Difficulty {
	switch d {
	case string(ai.Easy), string(ai.Medium), string(ai.Hard):
		return ai.Difficulty(d)
	default:
		return ""
	}
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
