// Package registry owns the process-wide table of live match sessions and the
// join-code directory. Like each session, it is an actor: creates, lookups,
// and removals all pass through one loop, so the map and the code index never
// race.
package registry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/battleship-backend/internal/ai"
	"github.com/DoyleJ11/battleship-backend/internal/game"
	"github.com/DoyleJ11/battleship-backend/internal/identity"
	"github.com/DoyleJ11/battleship-backend/internal/session"
	"github.com/DoyleJ11/battleship-backend/internal/store"
)

type Msg interface{ isRegistryMsg() }

type Create struct {
	SinglePlayer bool
	PlayerID     string
	Difficulty   ai.Difficulty
	Reply        chan Created
}

// Created carries the new session together with the host player actually
// registered in it, so the transport attaches with the same identity instead
// of minting a second one.
type Created struct {
	Session *session.Session
	Host    *game.Player
}

type Get struct {
	ID    string
	Reply chan *session.Session
}

type GetByCode struct {
	Code  string
	Reply chan *session.Session
}

type List struct {
	Reply chan []Summary
}

type Remove struct{ ID string }

type Shutdown struct{}

// finished is the session's completion callback re-entering the loop.
type finished struct{ res session.Result }

func (Create) isRegistryMsg()    {}
func (Get) isRegistryMsg()       {}
func (GetByCode) isRegistryMsg() {}
func (List) isRegistryMsg()      {}
func (Remove) isRegistryMsg()    {}
func (Shutdown) isRegistryMsg()  {}
func (finished) isRegistryMsg()  {}

// Summary is one lobby-browser row.
type Summary struct {
	ID           string     `json:"id"`
	JoinCode     string     `json:"join_code,omitempty"`
	Phase        game.Phase `json:"phase"`
	SinglePlayer bool       `json:"single_player"`
	Players      []string   `json:"players"`
	Occupancy    int        `json:"occupancy"`
}

type Config struct {
	Session     session.Config
	FinishedTTL time.Duration
}

type Registry struct {
	inbox    chan Msg
	sessions map[string]*session.Session
	codes    map[string]string // join code -> session id
	cfg      Config
	store    store.ResultStore
	resolver identity.Resolver
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(parent context.Context, cfg Config, st store.ResultStore, resolver identity.Resolver, logger *zap.Logger) *Registry {
	if cfg.FinishedTTL <= 0 {
		cfg.FinishedTTL = 60 * time.Second
	}
	if st == nil {
		st = store.Nop{}
	}
	if resolver == nil {
		resolver = identity.Static{}
	}
	ctx, cancel := context.WithCancel(parent)
	r := &Registry{
		inbox:    make(chan Msg, 64),
		sessions: make(map[string]*session.Session),
		codes:    make(map[string]string),
		cfg:      cfg,
		store:    st,
		resolver: resolver,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
	go r.loop()
	return r
}

func (r *Registry) Inbox() chan<- Msg { return r.inbox }

// NewPlayer resolves a display name for a player id, minting an id when the
// client did not bring one.
func (r *Registry) NewPlayer(ctx context.Context, playerID string) *game.Player {
	if playerID == "" {
		playerID = uuid.NewString()
	}
	name, err := r.resolver.DisplayName(ctx, playerID)
	if err != nil || name == "" {
		name = identity.Fallback(playerID)
	}
	return game.NewPlayer(playerID, name)
}

func (r *Registry) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Create:
				msg.Reply <- r.create(msg)

			case Get:
				msg.Reply <- r.sessions[msg.ID] // may be nil

			case GetByCode:
				if id, ok := r.codes[msg.Code]; ok {
					msg.Reply <- r.sessions[id]
				} else {
					msg.Reply <- nil
				}

			case List:
				msg.Reply <- r.list()

			case Remove:
				r.remove(msg.ID)

			case finished:
				r.handleFinished(msg.res)

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Registry) create(msg Create) Created {
	id := uuid.NewString()
	joinCode := ""
	if !msg.SinglePlayer {
		code, err := r.uniqueCode()
		if err != nil {
			r.logger.Error("join code generation failed", zap.Error(err))
			return Created{}
		}
		joinCode = code
	}

	host := r.NewPlayer(r.ctx, msg.PlayerID)
	cfg := r.cfg.Session
	if msg.Difficulty != "" {
		cfg.Difficulty = msg.Difficulty
	}
	sess := session.New(r.ctx, id, joinCode, host, msg.SinglePlayer, cfg, r.logger, func(res session.Result) {
		// Sent from inside the session loop; detach so a busy registry can
		// never stall the session (or deadlock a List waiting on it).
		go func() {
			select {
			case r.inbox <- finished{res: res}:
			case <-r.ctx.Done():
			}
		}()
	})

	r.sessions[id] = sess
	if joinCode != "" {
		r.codes[joinCode] = id
	}
	r.logger.Info("session created",
		zap.String("session", id),
		zap.Bool("single_player", msg.SinglePlayer),
		zap.String("join_code", joinCode))
	return Created{Session: sess, Host: host}
}

func (r *Registry) list() []Summary {
	out := make([]Summary, 0, len(r.sessions))
	for _, sess := range r.sessions {
		reply := make(chan session.View, 1)
		if !sess.Send(session.GetState{Reply: reply}) {
			continue // torn down under us; the reap will clear the entry
		}
		var view session.View
		select {
		case view = <-reply:
		case <-sess.Done():
			continue
		}

		sum := Summary{
			ID:           sess.ID(),
			JoinCode:     sess.JoinCode(),
			Phase:        view.State.Phase,
			SinglePlayer: view.State.SinglePlayer,
			Occupancy:    len(view.State.Players),
		}
		for _, p := range view.State.Players {
			sum.Players = append(sum.Players, p.DisplayName)
		}
		out = append(out, sum)
	}
	return out
}

// handleFinished records the match result and leaves the session around for a
// grace period so late clients can still fetch the final state. A session
// abandoned during setup has no result to keep: it is torn down right away so
// zombie rooms never linger in the lobby list or the code index.
func (r *Registry) handleFinished(res session.Result) {
	if res.WinnerID == "" {
		r.remove(res.SessionID)
		return
	}

	st := r.store
	logger := r.logger
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Record(ctx, store.MatchResult{
			SessionID:    res.SessionID,
			WinnerID:     res.WinnerID,
			LoserID:      res.LoserID,
			SinglePlayer: res.SinglePlayer,
			Reason:       res.Reason,
			WinnerShots:  res.WinnerShots,
			LoserShots:   res.LoserShots,
			FinishedAt:   time.Now(),
		}); err != nil {
			logger.Warn("match result not recorded", zap.String("session", res.SessionID), zap.Error(err))
		}
	}()

	id := res.SessionID
	time.AfterFunc(r.cfg.FinishedTTL, func() {
		select {
		case r.inbox <- Remove{ID: id}:
		case <-r.ctx.Done():
		}
	})
}

func (r *Registry) remove(id string) {
	sess, ok := r.sessions[id]
	if !ok {
		// A reap can race a shutdown that already cleared the table. Expected
		// to be rare; log and move on.
		r.logger.Debug("remove for unknown session", zap.String("session", id))
		return
	}
	delete(r.sessions, id)
	if sess.JoinCode() != "" {
		delete(r.codes, sess.JoinCode())
	}
	sess.Send(session.Shutdown{})
	r.logger.Info("session removed", zap.String("session", id))
}

func (r *Registry) shutdown() {
	for id, sess := range r.sessions {
		sess.Send(session.Shutdown{})
		delete(r.sessions, id)
	}
	clear(r.codes)
	r.cancel()
}
