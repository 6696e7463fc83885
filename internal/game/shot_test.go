package game

import "testing"

func destroyerFleet(t *testing.T) []Ship {
	t.Helper()
	cells, ok := CellsOf(Destroyer, Coordinate{X: 0, Y: 0}, Horizontal)
	if !ok {
		t.Fatalf("catalog lookup failed")
	}
	return []Ship{{Kind: Destroyer, Size: 2, Orientation: Horizontal, Positions: cells}}
}

func TestResolveHitThenSink(t *testing.T) {
	fleet := destroyerFleet(t)

	res := Resolve(fleet, Coordinate{X: 0, Y: 0})
	if !res.Hit || res.SunkShip != nil || res.AllSunk {
		t.Fatalf("first shot: got %+v, want hit only", res)
	}

	res = Resolve(fleet, Coordinate{X: 1, Y: 0})
	if !res.Hit {
		t.Fatalf("second shot missed")
	}
	if res.SunkShip == nil || res.SunkShip.Kind != Destroyer {
		t.Fatalf("second shot should sink the destroyer, got %+v", res)
	}
	if !res.AllSunk {
		t.Fatalf("lone destroyer sunk but AllSunk false")
	}
}

func TestResolveMiss(t *testing.T) {
	fleet := destroyerFleet(t)
	res := Resolve(fleet, Coordinate{X: 5, Y: 5})
	if res.Hit || res.SunkShip != nil || res.AllSunk {
		t.Fatalf("got %+v, want clean miss", res)
	}
}

func TestResolveDeterministic(t *testing.T) {
	a := destroyerFleet(t)
	b := destroyerFleet(t)
	target := Coordinate{X: 1, Y: 0}
	ra := Resolve(a, target)
	rb := Resolve(b, target)
	if ra.Hit != rb.Hit || ra.AllSunk != rb.AllSunk || (ra.SunkShip == nil) != (rb.SunkShip == nil) {
		t.Fatalf("identical inputs diverged: %+v vs %+v", ra, rb)
	}
}

// sunk must track hitCount == size after every resolve.
func TestSunkInvariant(t *testing.T) {
	rng := newTestRNG(7)
	p := NewPlayer("p", "P")
	AutoPlaceFleet(p, rng)

	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			Resolve(p.Fleet, Coordinate{X: x, Y: y})
			for i := range p.Fleet {
				s := &p.Fleet[i]
				if s.Sunk != (s.HitCount == s.Size) {
					t.Fatalf("%s: sunk=%v with %d/%d hits", s.Kind, s.Sunk, s.HitCount, s.Size)
				}
			}
		}
	}
	if !allSunk(p.Fleet) {
		t.Fatalf("every cell shot but fleet not all sunk")
	}
}

func TestAllSunkEmptyFleetIsFalse(t *testing.T) {
	if allSunk(nil) {
		t.Fatalf("empty fleet must not count as sunk")
	}
}
