package game

// GridSize is the side length of every board. The classic rules are 10x10 and
// nothing in the engine is parameterized on anything else.
const GridSize = 10

type CellState uint8

const (
	CellEmpty CellState = iota
	CellShip
	CellHit
	CellMiss
)

type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Coordinate) InBounds() bool {
	return c.X >= 0 && c.X < GridSize && c.Y >= 0 && c.Y < GridSize
}

// Neighbors returns the in-bounds orthogonal neighbors (N/E/S/W) of c.
func (c Coordinate) Neighbors() []Coordinate {
	candidates := []Coordinate{
		{X: c.X, Y: c.Y - 1},
		{X: c.X + 1, Y: c.Y},
		{X: c.X, Y: c.Y + 1},
		{X: c.X - 1, Y: c.Y},
	}
	out := candidates[:0]
	for _, n := range candidates {
		if n.InBounds() {
			out = append(out, n)
		}
	}
	return out
}

type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

type ShipKind string

const (
	Carrier    ShipKind = "carrier"
	Battleship ShipKind = "battleship"
	Cruiser    ShipKind = "cruiser"
	Submarine  ShipKind = "submarine"
	Destroyer  ShipKind = "destroyer"
)

// FleetCatalog is the canonical fleet: every player places exactly these five
// ships. FleetOrder fixes the iteration order (maps don't).
var FleetCatalog = map[ShipKind]int{
	Carrier:    5,
	Battleship: 4,
	Cruiser:    3,
	Submarine:  3,
	Destroyer:  2,
}

var FleetOrder = []ShipKind{Carrier, Battleship, Cruiser, Submarine, Destroyer}

// CellsOf is the single source of truth for how a ship occupies cells: size
// consecutive coordinates starting at origin, extending right or down. Returns
// false for a kind not in the catalog. Cells may be out of bounds; that is the
// validator's problem, not this function's.
func CellsOf(kind ShipKind, origin Coordinate, o Orientation) ([]Coordinate, bool) {
	size, ok := FleetCatalog[kind]
	if !ok {
		return nil, false
	}
	cells := make([]Coordinate, size)
	for i := 0; i < size; i++ {
		if o == Vertical {
			cells[i] = Coordinate{X: origin.X, Y: origin.Y + i}
		} else {
			cells[i] = Coordinate{X: origin.X + i, Y: origin.Y}
		}
	}
	return cells, true
}

type Ship struct {
	Kind        ShipKind     `json:"kind"`
	Size        int          `json:"size"`
	Orientation Orientation  `json:"orientation"`
	Positions   []Coordinate `json:"positions"`
	HitCount    int          `json:"hit_count"`
	Sunk        bool         `json:"sunk"`

	// autoPlaced marks ships the engine placed itself, so a failed random
	// fleet layout can be retried without discarding player-placed ships.
	autoPlaced bool
}

func (s *Ship) Occupies(c Coordinate) bool {
	for _, p := range s.Positions {
		if p == c {
			return true
		}
	}
	return false
}

// Board is a player's own 10x10 grid: their ships plus the opponent's recorded
// shots against them.
type Board [GridSize][GridSize]CellState

func (b *Board) At(c Coordinate) CellState { return b[c.Y][c.X] }

func (b *Board) set(c Coordinate, s CellState) { b[c.Y][c.X] = s }

type Player struct {
	ID          string
	DisplayName string
	IsAI        bool
	Fleet       []Ship
	Board       Board
	// Shots records every cell this player has fired at on the opponent's
	// board, true for a hit. Owned by the match; exposed to the opponent only
	// as hit/miss marks.
	Shots map[Coordinate]bool
}

func NewPlayer(id, displayName string) *Player {
	return &Player{
		ID:          id,
		DisplayName: displayName,
		Shots:       make(map[Coordinate]bool),
	}
}

func (p *Player) FleetComplete() bool {
	return len(p.Fleet) == len(FleetCatalog)
}

func (p *Player) shipPlaced(kind ShipKind) bool {
	for i := range p.Fleet {
		if p.Fleet[i].Kind == kind {
			return true
		}
	}
	return false
}

func (p *Player) clone() *Player {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Fleet = make([]Ship, len(p.Fleet))
	for i, s := range p.Fleet {
		cp.Fleet[i] = s
		cp.Fleet[i].Positions = append([]Coordinate(nil), s.Positions...)
	}
	cp.Shots = make(map[Coordinate]bool, len(p.Shots))
	for c, hit := range p.Shots {
		cp.Shots[c] = hit
	}
	return &cp
}
