package game

import "testing"

func TestFleetCatalog(t *testing.T) {
	want := map[ShipKind]int{
		Carrier:    5,
		Battleship: 4,
		Cruiser:    3,
		Submarine:  3,
		Destroyer:  2,
	}
	if len(FleetCatalog) != len(want) {
		t.Fatalf("catalog has %d ships, want %d", len(FleetCatalog), len(want))
	}
	for kind, size := range want {
		if FleetCatalog[kind] != size {
			t.Errorf("%s: size %d, want %d", kind, FleetCatalog[kind], size)
		}
	}
	if len(FleetOrder) != len(want) {
		t.Fatalf("FleetOrder has %d entries, want %d", len(FleetOrder), len(want))
	}
}

func TestCellsOf(t *testing.T) {
	cases := []struct {
		name   string
		kind   ShipKind
		origin Coordinate
		o      Orientation
		want   []Coordinate
		ok     bool
	}{
		{
			name:   "destroyer horizontal at origin",
			kind:   Destroyer,
			origin: Coordinate{X: 0, Y: 0},
			o:      Horizontal,
			want:   []Coordinate{{X: 0, Y: 0}, {X: 1, Y: 0}},
			ok:     true,
		},
		{
			name:   "cruiser vertical",
			kind:   Cruiser,
			origin: Coordinate{X: 4, Y: 2},
			o:      Vertical,
			want:   []Coordinate{{X: 4, Y: 2}, {X: 4, Y: 3}, {X: 4, Y: 4}},
			ok:     true,
		},
		{
			name:   "unknown kind",
			kind:   ShipKind("rowboat"),
			origin: Coordinate{},
			o:      Horizontal,
			ok:     false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cells, ok := CellsOf(tc.kind, tc.origin, tc.o)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if !ok {
				return
			}
			if len(cells) != len(tc.want) {
				t.Fatalf("got %d cells, want %d", len(cells), len(tc.want))
			}
			for i := range cells {
				if cells[i] != tc.want[i] {
					t.Errorf("cell %d = %v, want %v", i, cells[i], tc.want[i])
				}
			}
		})
	}
}

func TestNeighborsClippedAtEdges(t *testing.T) {
	corner := Coordinate{X: 0, Y: 0}
	if got := len(corner.Neighbors()); got != 2 {
		t.Fatalf("corner has %d neighbors, want 2", got)
	}
	center := Coordinate{X: 5, Y: 5}
	if got := len(center.Neighbors()); got != 4 {
		t.Fatalf("center has %d neighbors, want 4", got)
	}
}
