package game

import (
	"errors"
	"math/rand"
	"testing"
)

func TestPlaceShip(t *testing.T) {
	cases := []struct {
		name    string
		setup   func(p *Player)
		kind    ShipKind
		origin  Coordinate
		o       Orientation
		wantErr error
	}{
		{
			name:   "destroyer at origin",
			kind:   Destroyer,
			origin: Coordinate{X: 0, Y: 0},
			o:      Horizontal,
		},
		{
			name:    "carrier off the right edge",
			kind:    Carrier,
			origin:  Coordinate{X: 6, Y: 0},
			o:       Horizontal,
			wantErr: ErrOutOfBounds,
		},
		{
			name:    "battleship off the bottom edge",
			kind:    Battleship,
			origin:  Coordinate{X: 0, Y: 7},
			o:       Vertical,
			wantErr: ErrOutOfBounds,
		},
		{
			name: "vertical ship crossing the destroyer",
			setup: func(p *Player) {
				if err := PlaceShip(p, Destroyer, Coordinate{X: 0, Y: 0}, Horizontal); err != nil {
					t.Fatalf("setup placement failed: %v", err)
				}
			},
			kind:    Cruiser,
			origin:  Coordinate{X: 1, Y: 0},
			o:       Vertical,
			wantErr: ErrOverlap,
		},
		{
			name: "same ship twice",
			setup: func(p *Player) {
				if err := PlaceShip(p, Destroyer, Coordinate{X: 0, Y: 0}, Horizontal); err != nil {
					t.Fatalf("setup placement failed: %v", err)
				}
			},
			kind:    Destroyer,
			origin:  Coordinate{X: 5, Y: 5},
			o:       Horizontal,
			wantErr: ErrShipAlreadyPlaced,
		},
		{
			name:    "unknown kind",
			kind:    ShipKind("canoe"),
			origin:  Coordinate{X: 0, Y: 0},
			o:       Horizontal,
			wantErr: ErrUnknownShip,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPlayer("p1", "P1")
			if tc.setup != nil {
				tc.setup(p)
			}
			before := len(p.Fleet)
			err := PlaceShip(p, tc.kind, tc.origin, tc.o)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("got %v, want %v", err, tc.wantErr)
				}
				if len(p.Fleet) != before {
					t.Fatalf("rejected placement changed the fleet")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			ship := p.Fleet[len(p.Fleet)-1]
			if len(ship.Positions) != FleetCatalog[tc.kind] {
				t.Fatalf("ship occupies %d cells, want %d", len(ship.Positions), FleetCatalog[tc.kind])
			}
			for _, c := range ship.Positions {
				if p.Board.At(c) != CellShip {
					t.Errorf("board cell %v not marked as ship", c)
				}
			}
		})
	}
}

func TestValidatePlacementSizeMismatch(t *testing.T) {
	var b Board
	cells := []Coordinate{{X: 0, Y: 0}} // destroyer needs two
	if err := ValidatePlacement(&b, cells, FleetCatalog[Destroyer]); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("got %v, want ErrSizeMismatch", err)
	}
}

func TestValidatePlacementCheckOrder(t *testing.T) {
	// Out of bounds outranks overlap outranks size.
	var b Board
	b[0][0] = CellShip
	cells := []Coordinate{{X: 0, Y: 0}, {X: -1, Y: 0}}
	if err := ValidatePlacement(&b, cells, 5); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("got %v, want ErrOutOfBounds first", err)
	}
	cells = []Coordinate{{X: 0, Y: 0}}
	if err := ValidatePlacement(&b, cells, 5); !errors.Is(err, ErrOverlap) {
		t.Fatalf("got %v, want ErrOverlap before size", err)
	}
}

func TestAutoPlaceFleetTerminatesWithValidLayout(t *testing.T) {
	for seed := int64(0); seed < 25; seed++ {
		rng := rand.New(rand.NewSource(seed))
		p := NewPlayer("p1", "P1")
		AutoPlaceFleet(p, rng)

		if !p.FleetComplete() {
			t.Fatalf("seed %d: fleet incomplete: %d ships", seed, len(p.Fleet))
		}
		seen := map[Coordinate]bool{}
		for _, ship := range p.Fleet {
			for _, c := range ship.Positions {
				if !c.InBounds() {
					t.Fatalf("seed %d: %s out of bounds at %v", seed, ship.Kind, c)
				}
				if seen[c] {
					t.Fatalf("seed %d: overlap at %v", seed, c)
				}
				seen[c] = true
			}
		}
	}
}

func TestAutoPlaceFleetKeepsManualShips(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := NewPlayer("p1", "P1")
	if err := PlaceShip(p, Carrier, Coordinate{X: 0, Y: 0}, Horizontal); err != nil {
		t.Fatalf("manual placement failed: %v", err)
	}
	AutoPlaceFleet(p, rng)

	if !p.FleetComplete() {
		t.Fatalf("fleet incomplete after auto-fill")
	}
	carrier := p.Fleet[0]
	if carrier.Kind != Carrier || carrier.Positions[0] != (Coordinate{X: 0, Y: 0}) {
		t.Fatalf("manual carrier moved: %+v", carrier)
	}
}
