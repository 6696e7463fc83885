package game

import (
	"errors"
	"math/rand"
)

var ErrNotYourTurn = errors.New("not your turn")
var ErrAlreadyFired = errors.New("already fired at that cell")
var ErrWrongPhase = errors.New("wrong phase for that command")
var ErrMatchCompleted = errors.New("match already completed")
var ErrSessionFull = errors.New("session already has two players")
var ErrNotInMatch = errors.New("player not in this match")
var ErrUnsupportedCommand = errors.New("unsupported command")

type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

type State struct {
	Phase        Phase
	SinglePlayer bool
	Players      []*Player
	CurrentTurn  string
	Winner       string
}

func NewState(singlePlayer bool, p1 *Player) State {
	return State{
		Phase:        PhaseSetup,
		SinglePlayer: singlePlayer,
		Players:      []*Player{p1},
	}
}

type CommandType string

const (
	CmdJoin         CommandType = "Join"
	CmdPlaceShip    CommandType = "PlaceShip"
	CmdFireShot     CommandType = "FireShot"
	CmdSetupTimeout CommandType = "SetupTimeout"
	CmdShotTimeout  CommandType = "ShotTimeout"
	CmdSurrender    CommandType = "Surrender"
	CmdDisconnect   CommandType = "Disconnect"
)

type Command struct {
	Type        CommandType
	PlayerID    string
	Player      *Player // Join only
	Kind        ShipKind
	Origin      Coordinate
	Orientation Orientation
	Target      Coordinate
}

type EventType string

const (
	EvtPlayerJoined   EventType = "PlayerJoined"
	EvtShipPlaced     EventType = "ShipPlaced"
	EvtMatchStarted   EventType = "MatchStarted"
	EvtShotResolved   EventType = "ShotResolved"
	EvtTurnAdvanced   EventType = "TurnAdvanced"
	EvtMatchCompleted EventType = "MatchCompleted"
)

type Event struct {
	Type     EventType
	PlayerID string
	Kind     ShipKind
	Target   Coordinate
	Hit      bool
	SunkKind ShipKind
	GameOver bool
	Winner   string
	Reason   string
}

// Apply runs one command against a match snapshot and returns the events it
// produced plus the successor state. Rejections return the input state
// untouched; the rng is only consulted by the timeout commands (auto-fill and
// auto-fire). Callers serialize: one Apply at a time per match.
func Apply(s State, cmd Command, rng *rand.Rand) ([]Event, State, error) {
	if s.Phase == PhaseFinished && cmd.Type != CmdDisconnect {
		return nil, s, ErrMatchCompleted
	}

	switch cmd.Type {
	case CmdJoin:
		if s.Phase != PhaseSetup {
			return nil, s, ErrWrongPhase
		}
		if len(s.Players) >= 2 {
			return nil, s, ErrSessionFull
		}
		ns := s.clone()
		ns.Players = append(ns.Players, cmd.Player)
		return []Event{{Type: EvtPlayerJoined, PlayerID: cmd.Player.ID}}, ns, nil

	case CmdPlaceShip:
		if s.Phase != PhaseSetup {
			return nil, s, ErrWrongPhase
		}
		ns := s.clone()
		p := ns.playerByID(cmd.PlayerID)
		if p == nil {
			return nil, s, ErrNotInMatch
		}
		if err := PlaceShip(p, cmd.Kind, cmd.Origin, cmd.Orientation); err != nil {
			return nil, s, err
		}
		events := []Event{{Type: EvtShipPlaced, PlayerID: cmd.PlayerID, Kind: cmd.Kind}}
		if ns.readyToPlay() {
			events = append(events, ns.start()...)
		}
		return events, ns, nil

	case CmdSetupTimeout:
		if s.Phase != PhaseSetup {
			return nil, s, ErrWrongPhase
		}
		ns := s.clone()
		for _, p := range ns.Players {
			if !p.FleetComplete() {
				AutoPlaceFleet(p, rng)
			}
		}
		if !ns.readyToPlay() {
			// Second player never showed up; stay in setup.
			return nil, s, nil
		}
		return ns.start(), ns, nil

	case CmdFireShot:
		return applyShot(s, cmd.PlayerID, cmd.Target)

	case CmdShotTimeout:
		if s.Phase != PhasePlaying {
			return nil, s, ErrWrongPhase
		}
		// Only the server clock (no PlayerID) or the on-turn player may report
		// the shot timer; an opponent must not be able to burn someone's turn.
		if cmd.PlayerID != "" && cmd.PlayerID != s.CurrentTurn {
			return nil, s, ErrNotYourTurn
		}
		// The on-turn player ran out the clock: fire a random unfired cell on
		// their behalf so the match keeps moving.
		shooter := s.playerByID(s.CurrentTurn)
		target, ok := randomUnfired(shooter, rng)
		if !ok {
			return nil, s, nil
		}
		return applyShot(s, s.CurrentTurn, target)

	case CmdSurrender:
		return applyForfeit(s, cmd.PlayerID, "surrender")

	case CmdDisconnect:
		if s.Phase == PhaseFinished {
			return nil, s, nil
		}
		return applyForfeit(s, cmd.PlayerID, "disconnect")

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

func applyShot(s State, playerID string, target Coordinate) ([]Event, State, error) {
	if s.Phase != PhasePlaying {
		return nil, s, ErrWrongPhase
	}
	if playerID != s.CurrentTurn {
		return nil, s, ErrNotYourTurn
	}
	shooter := s.playerByID(playerID)
	if shooter == nil {
		return nil, s, ErrNotInMatch
	}
	if !target.InBounds() {
		return nil, s, ErrOutOfBounds
	}
	if _, fired := shooter.Shots[target]; fired {
		return nil, s, ErrAlreadyFired
	}

	ns := s.clone()
	shooter = ns.playerByID(playerID)
	defender := ns.Opponent(playerID)
	res := Resolve(defender.Fleet, target)

	shooter.Shots[target] = res.Hit
	if res.Hit {
		defender.Board.set(target, CellHit)
	} else {
		defender.Board.set(target, CellMiss)
	}

	evt := Event{
		Type:     EvtShotResolved,
		PlayerID: playerID,
		Target:   target,
		Hit:      res.Hit,
		GameOver: res.AllSunk,
	}
	if res.SunkShip != nil {
		evt.SunkKind = res.SunkShip.Kind
	}
	events := []Event{evt}

	if res.AllSunk {
		ns.Phase = PhaseFinished
		ns.Winner = playerID
		ns.CurrentTurn = ""
		events = append(events, Event{Type: EvtMatchCompleted, Winner: playerID, Reason: "all ships sunk"})
		return events, ns, nil
	}

	ns.CurrentTurn = defender.ID
	events = append(events, Event{Type: EvtTurnAdvanced, PlayerID: defender.ID})
	return events, ns, nil
}

func applyForfeit(s State, playerID string, reason string) ([]Event, State, error) {
	loser := s.playerByID(playerID)
	if loser == nil {
		return nil, s, ErrNotInMatch
	}
	// A forfeit only awards a win once play actually started; a session
	// abandoned during setup is simply dissolved by the registry.
	if s.Phase != PhasePlaying {
		return nil, s, ErrWrongPhase
	}
	ns := s.clone()
	winner := ns.Opponent(playerID)
	ns.Phase = PhaseFinished
	ns.Winner = winner.ID
	ns.CurrentTurn = ""
	return []Event{{Type: EvtMatchCompleted, Winner: winner.ID, Reason: reason}}, ns, nil
}

func (s State) clone() State {
	ns := s
	ns.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		ns.Players[i] = p.clone()
	}
	return ns
}

func (s *State) playerByID(id string) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Opponent returns the other player, nil if there isn't one yet.
func (s *State) Opponent(id string) *Player {
	for _, p := range s.Players {
		if p.ID != id {
			return p
		}
	}
	return nil
}

func (s *State) readyToPlay() bool {
	if len(s.Players) != 2 {
		return false
	}
	for _, p := range s.Players {
		if !p.FleetComplete() {
			return false
		}
	}
	return true
}

func (s *State) start() []Event {
	s.Phase = PhasePlaying
	s.CurrentTurn = s.Players[0].ID
	return []Event{
		{Type: EvtMatchStarted},
		{Type: EvtTurnAdvanced, PlayerID: s.CurrentTurn},
	}
}

func randomUnfired(p *Player, rng *rand.Rand) (Coordinate, bool) {
	var open []Coordinate
	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			c := Coordinate{X: x, Y: y}
			if _, fired := p.Shots[c]; !fired {
				open = append(open, c)
			}
		}
	}
	if len(open) == 0 {
		return Coordinate{}, false
	}
	return open[rng.Intn(len(open))], true
}
