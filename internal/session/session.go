// Package session runs one Battleship match as an actor: a single goroutine
// owns the authoritative state. Every mutation (socket commands, timer
// fires, AI moves) goes through its inbox, so nothing ever interleaves.
package session

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/battleship-backend/internal/ai"
	"github.com/DoyleJ11/battleship-backend/internal/game"
)

type Config struct {
	SetupTimeout time.Duration
	ShotTimeout  time.Duration
	ThinkMin     time.Duration
	ThinkMax     time.Duration
	Difficulty   ai.Difficulty
}

func (c *Config) withDefaults() {
	if c.SetupTimeout <= 0 {
		c.SetupTimeout = 60 * time.Second
	}
	if c.ShotTimeout <= 0 {
		c.ShotTimeout = 30 * time.Second
	}
	if c.ThinkMin <= 0 {
		c.ThinkMin = 500 * time.Millisecond
	}
	if c.ThinkMax <= c.ThinkMin {
		c.ThinkMax = c.ThinkMin + 1500*time.Millisecond
	}
	if c.Difficulty == "" {
		c.Difficulty = ai.Medium
	}
}

type client struct {
	playerID string // empty for spectators
	outbox   chan Outbound
}

type Session struct {
	id       string
	joinCode string
	cfg      Config

	inbox   chan Msg
	state   game.State
	version int
	clients map[string]client

	rng    *rand.Rand
	logger *zap.Logger

	// onFinished fires once, from inside the loop, when the match completes.
	// The registry uses it to record the result and schedule the reap.
	onFinished func(Result)

	aiID   string
	aiKnow *ai.Knowledge

	timerGen int
	ctx      context.Context
	cancel   context.CancelFunc
}

// New starts the session goroutine. In single-player mode the AI opponent is
// attached immediately with an auto-placed fleet and the setup timer is armed;
// in versus mode the setup timer waits for the second player.
func New(parent context.Context, id, joinCode string, host *game.Player, singlePlayer bool, cfg Config, logger *zap.Logger, onFinished func(Result)) *Session {
	cfg.withDefaults()
	ctx, cancel := context.WithCancel(parent)

	s := &Session{
		id:         id,
		joinCode:   joinCode,
		cfg:        cfg,
		inbox:      make(chan Msg, 64),
		state:      game.NewState(singlePlayer, host),
		clients:    make(map[string]client),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:     logger.With(zap.String("session", id)),
		onFinished: onFinished,
		ctx:        ctx,
		cancel:     cancel,
	}

	if singlePlayer {
		bot := game.NewPlayer("ai:"+id, "Admiral Auto")
		bot.IsAI = true
		game.AutoPlaceFleet(bot, s.rng)
		s.state.Players = append(s.state.Players, bot)
		s.aiID = bot.ID
		s.aiKnow = ai.NewKnowledge()
		s.armTimer(s.cfg.SetupTimeout)
	}

	go s.loop()
	return s
}

func (s *Session) ID() string       { return s.id }
func (s *Session) JoinCode() string { return s.joinCode }

// Inbox is how the transport and the registry talk to the session.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Done closes once the session loop has stopped accepting messages.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

// Send delivers a message unless the session already shut down. Late messages
// from sockets that outlive the room would otherwise pile up in a buffer
// nothing drains, and eventually block the sender.
func (s *Session) Send(m Msg) bool {
	select {
	case <-s.ctx.Done():
		return false
	default:
	}
	select {
	case s.inbox <- m:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Join:
				s.clients[msg.ClientID] = client{playerID: msg.PlayerID, outbox: msg.Outbox}
				msg.Outbox <- Outbound{Snapshot: s.snapshotFor(msg.PlayerID)}

			case Spectate:
				s.clients[msg.ClientID] = client{outbox: msg.Outbox}
				msg.Outbox <- Outbound{Snapshot: s.snapshotFor("")}

			case Leave:
				s.handleLeave(msg.ClientID)

			case FromClient:
				s.apply(msg.Cmd, msg.ClientID)

			case Do:
				msg.Reply <- s.apply(msg.Cmd, "")

			case GetSnapshot:
				msg.Reply <- s.snapshotFor(msg.ViewerID)

			case Chat:
				s.broadcast(func(string) Outbound {
					return Outbound{Chat: &ChatNote{From: msg.From, Text: msg.Text}}
				})

			case timerFired:
				s.handleTimer(msg.gen)

			case aiFire:
				s.handleAIFire(msg.gen)

			case GetState:
				msg.Reply <- View{
					Version:    s.version,
					NumClients: len(s.clients),
					State:      s.state,
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

// apply runs one command through the pure engine. A rejection goes back to
// the originating connection only; everyone else sees nothing.
func (s *Session) apply(cmd game.Command, clientID string) error {
	events, newState, err := game.Apply(s.state, cmd, s.rng)
	if err != nil {
		if clientID != "" {
			s.sendTo(clientID, Outbound{Err: err.Error()})
		}
		return err
	}
	if len(events) == 0 {
		return nil
	}
	s.state = newState
	s.version++
	s.react(events)
	return nil
}

// react turns engine events into fan-out and timer work.
func (s *Session) react(events []game.Event) {
	for _, evt := range events {
		switch evt.Type {
		case game.EvtPlayerJoined:
			// Room is full: both fleets go on the setup clock.
			s.armTimer(s.cfg.SetupTimeout)

		case game.EvtShotResolved:
			outcome := &ShotOutcome{
				ShooterID: evt.PlayerID,
				X:         evt.Target.X,
				Y:         evt.Target.Y,
				Hit:       evt.Hit,
				Sunk:      evt.SunkKind,
				GameOver:  evt.GameOver,
			}
			s.broadcast(func(string) Outbound { return Outbound{Shot: outcome} })
			s.recordAIShot(evt)

		case game.EvtMatchStarted, game.EvtTurnAdvanced:
			// armed below, once, off the final state

		case game.EvtMatchCompleted:
			s.stopTimers()
			if s.onFinished != nil {
				s.onFinished(s.result(evt))
				s.onFinished = nil
			}
		}
	}

	s.broadcast(func(viewerID string) Outbound {
		return Outbound{Snapshot: s.snapshotFor(viewerID)}
	})

	if s.state.Phase == game.PhasePlaying {
		s.armTimer(s.cfg.ShotTimeout)
		if s.state.CurrentTurn == s.aiID && s.aiID != "" {
			s.scheduleAIFire()
		}
	}
}

// recordAIShot folds the AI's own resolved shots back into its knowledge.
func (s *Session) recordAIShot(evt game.Event) {
	if s.aiKnow == nil || evt.PlayerID != s.aiID {
		return
	}
	s.aiKnow.Record(evt.Target, evt.Hit)
	if evt.SunkKind == "" {
		return
	}
	defender := s.state.Opponent(s.aiID)
	for _, ship := range defender.Fleet {
		if ship.Kind == evt.SunkKind {
			s.aiKnow.RecordSunk(ship.Positions)
			break
		}
	}
}

func (s *Session) handleLeave(clientID string) {
	c, ok := s.clients[clientID]
	if !ok {
		return
	}
	delete(s.clients, clientID)
	if c.playerID == "" {
		return
	}
	// A player dropping mid-game forfeits. During setup there is nothing to
	// forfeit yet: once the last player connection is gone the session is
	// abandoned and the registry tears it down, join code included.
	if s.state.Phase == game.PhaseSetup {
		if s.playerClients() == 0 && s.onFinished != nil {
			s.stopTimers()
			s.onFinished(Result{
				SessionID:    s.id,
				SinglePlayer: s.state.SinglePlayer,
				Reason:       "abandoned",
			})
			s.onFinished = nil
		}
		return
	}
	s.apply(game.Command{Type: game.CmdDisconnect, PlayerID: c.playerID}, "")
}

// playerClients counts connections that belong to a player, not a spectator.
func (s *Session) playerClients() int {
	n := 0
	for _, c := range s.clients {
		if c.playerID != "" {
			n++
		}
	}
	return n
}

func (s *Session) handleTimer(gen int) {
	if gen != s.timerGen {
		return // superseded before delivery
	}
	switch s.state.Phase {
	case game.PhaseSetup:
		s.apply(game.Command{Type: game.CmdSetupTimeout}, "")
		if s.state.Phase == game.PhaseSetup {
			// still waiting on a second player
			s.armTimer(s.cfg.SetupTimeout)
		}
	case game.PhasePlaying:
		s.logger.Debug("shot timer expired, auto-firing", zap.String("player", s.state.CurrentTurn))
		s.apply(game.Command{Type: game.CmdShotTimeout}, "")
	}
}

func (s *Session) handleAIFire(gen int) {
	if gen != s.timerGen {
		return
	}
	if s.state.Phase != game.PhasePlaying || s.state.CurrentTurn != s.aiID {
		return
	}
	target := ai.NextShot(s.cfg.Difficulty, s.aiKnow, s.rng)
	s.apply(game.Command{Type: game.CmdFireShot, PlayerID: s.aiID, Target: target}, "")
}

// armTimer replaces any outstanding deferred fire. Bumping the generation is
// what cancels: a stale fire still arrives but carries the old generation.
func (s *Session) armTimer(d time.Duration) {
	s.timerGen++
	gen := s.timerGen
	time.AfterFunc(d, func() {
		select {
		case s.inbox <- timerFired{gen: gen}:
		case <-s.ctx.Done():
		}
	})
}

func (s *Session) scheduleAIFire() {
	gen := s.timerGen
	delay := s.cfg.ThinkMin + time.Duration(s.rng.Int63n(int64(s.cfg.ThinkMax-s.cfg.ThinkMin)))
	time.AfterFunc(delay, func() {
		select {
		case s.inbox <- aiFire{gen: gen}:
		case <-s.ctx.Done():
		}
	})
}

func (s *Session) stopTimers() {
	s.timerGen++
}

func (s *Session) result(evt game.Event) Result {
	winner := s.state.Winner
	loser := ""
	winnerShots, loserShots := 0, 0
	for _, p := range s.state.Players {
		if p.ID == winner {
			winnerShots = len(p.Shots)
		} else {
			loser = p.ID
			loserShots = len(p.Shots)
		}
	}
	return Result{
		SessionID:    s.id,
		WinnerID:     winner,
		LoserID:      loser,
		SinglePlayer: s.state.SinglePlayer,
		Reason:       evt.Reason,
		WinnerShots:  winnerShots,
		LoserShots:   loserShots,
	}
}

func (s *Session) sendTo(clientID string, out Outbound) {
	c, ok := s.clients[clientID]
	if !ok {
		return
	}
	select {
	case c.outbox <- out:
	default:
		close(c.outbox)
		delete(s.clients, clientID)
	}
}

// broadcast fans out to every room member, building the payload per viewer so
// redaction stays viewer-specific. Slow clients are dropped, same as a full
// socket buffer would drop them.
func (s *Session) broadcast(build func(viewerID string) Outbound) {
	for id, c := range s.clients {
		select {
		case c.outbox <- build(c.playerID):
		default:
			close(c.outbox)
			delete(s.clients, id)
		}
	}
}

func (s *Session) shutdown() {
	s.stopTimers()
	for id, c := range s.clients {
		close(c.outbox)
		delete(s.clients, id)
	}
	s.cancel()
}
