package session

import (
	"github.com/DoyleJ11/battleship-backend/internal/game"
)

// Snapshot is the public-safe session state pushed to one viewer. Redaction
// happens here and nowhere else: a viewer sees their own board in full and any
// other board with unsunk ships hidden.
type Snapshot struct {
	ID           string        `json:"id"`
	JoinCode     string        `json:"join_code,omitempty"`
	Phase        game.Phase    `json:"phase"`
	SinglePlayer bool          `json:"single_player"`
	CurrentTurn  string        `json:"current_turn,omitempty"`
	Winner       string        `json:"winner,omitempty"`
	Version      int           `json:"version"`
	Players      []PlayerView  `json:"players"`
}

type PlayerView struct {
	ID          string                                 `json:"id"`
	DisplayName string                                 `json:"display_name"`
	Ready       bool                                   `json:"ready"`
	Grid        [game.GridSize][game.GridSize]game.CellState `json:"grid"`
	Ships       []game.Ship                            `json:"ships,omitempty"`
}

// snapshotFor builds the view for one viewer. viewerID is empty for
// spectators, which redacts every board.
func (s *Session) snapshotFor(viewerID string) *Snapshot {
	snap := &Snapshot{
		ID:           s.id,
		JoinCode:     s.joinCode,
		Phase:        s.state.Phase,
		SinglePlayer: s.state.SinglePlayer,
		CurrentTurn:  s.state.CurrentTurn,
		Winner:       s.state.Winner,
		Version:      s.version,
	}
	for _, p := range s.state.Players {
		snap.Players = append(snap.Players, playerView(p, p.ID == viewerID || s.state.Phase == game.PhaseFinished))
	}
	return snap
}

func playerView(p *game.Player, revealed bool) PlayerView {
	v := PlayerView{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Ready:       p.FleetComplete(),
	}
	if revealed {
		v.Grid = p.Board
		v.Ships = append([]game.Ship(nil), p.Fleet...)
		return v
	}
	// Hidden view: hits and misses only, plus the ships already on the bottom.
	for y := 0; y < game.GridSize; y++ {
		for x := 0; x < game.GridSize; x++ {
			switch p.Board[y][x] {
			case game.CellHit, game.CellMiss:
				v.Grid[y][x] = p.Board[y][x]
			default:
				v.Grid[y][x] = game.CellEmpty
			}
		}
	}
	for _, ship := range p.Fleet {
		if ship.Sunk {
			v.Ships = append(v.Ships, ship)
		}
	}
	return v
}
