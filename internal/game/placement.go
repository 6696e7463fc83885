package game

import (
	"errors"
	"math/rand"
)

var ErrOutOfBounds = errors.New("placement out of bounds")
var ErrOverlap = errors.New("placement overlaps another ship")
var ErrSizeMismatch = errors.New("placement size mismatch")
var ErrShipAlreadyPlaced = errors.New("ship already placed")
var ErrUnknownShip = errors.New("unknown ship kind")

// ValidatePlacement checks a candidate set of cells against one board. Checks
// run in a fixed order so rejections are stable: bounds, then overlap, then
// size. Pure over the board snapshot; the caller mutates on success.
func ValidatePlacement(b *Board, cells []Coordinate, size int) error {
	for _, c := range cells {
		if !c.InBounds() {
			return ErrOutOfBounds
		}
	}
	for _, c := range cells {
		if b.At(c) == CellShip {
			return ErrOverlap
		}
	}
	if len(cells) != size {
		return ErrSizeMismatch
	}
	return nil
}

// PlaceShip validates and commits one ship onto the player's own board.
// Rejections leave the player untouched.
func PlaceShip(p *Player, kind ShipKind, origin Coordinate, o Orientation) error {
	cells, ok := CellsOf(kind, origin, o)
	if !ok {
		return ErrUnknownShip
	}
	if p.shipPlaced(kind) {
		return ErrShipAlreadyPlaced
	}
	if err := ValidatePlacement(&p.Board, cells, FleetCatalog[kind]); err != nil {
		return err
	}
	for _, c := range cells {
		p.Board.set(c, CellShip)
	}
	p.Fleet = append(p.Fleet, Ship{
		Kind:        kind,
		Size:        FleetCatalog[kind],
		Orientation: o,
		Positions:   cells,
	})
	return nil
}

// placementAttempts bounds the random samples per ship before the whole fleet
// is restarted from scratch. The fixed fleet always fits on a 10x10 board, so
// the restart loop terminates almost surely; the bound just keeps a single
// unlucky ship from spinning forever against a crowded board.
const placementAttempts = 120

// AutoPlaceFleet fills in every ship the player has not placed yet, keeping
// any ships already on the board. Used for AI fleets, the "randomize" button,
// and setup-timeout auto-fill.
func AutoPlaceFleet(p *Player, rng *rand.Rand) {
	for {
		if tryAutoPlace(p, rng) {
			return
		}
		// Exhausted attempts on some ship: throw away the auto-placed ships
		// and try again. Player-placed ships stay.
		manual := p.Fleet
		p.Fleet = nil
		p.Board = Board{}
		for _, s := range manual {
			if !s.autoPlaced {
				_ = PlaceShip(p, s.Kind, s.Positions[0], s.Orientation)
			}
		}
	}
}

func tryAutoPlace(p *Player, rng *rand.Rand) bool {
	for _, kind := range FleetOrder {
		if p.shipPlaced(kind) {
			continue
		}
		placed := false
		for attempt := 0; attempt < placementAttempts; attempt++ {
			origin := Coordinate{X: rng.Intn(GridSize), Y: rng.Intn(GridSize)}
			o := Horizontal
			if rng.Intn(2) == 1 {
				o = Vertical
			}
			if err := PlaceShip(p, kind, origin, o); err == nil {
				p.Fleet[len(p.Fleet)-1].autoPlaced = true
				placed = true
				break
			}
		}
		if !placed {
			return false
		}
	}
	return true
}
