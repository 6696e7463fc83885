package game

type ShotResult struct {
	Hit      bool
	SunkShip *Ship
	AllSunk  bool
}

// Resolve applies one shot against the defender's fleet. The caller guarantees
// the target cell is fresh (refires are rejected upstream with ErrAlreadyFired),
// so a hit always increments the ship's hit count. Deterministic: no randomness
// anywhere in here. The whole scan touches at most 17 cells.
func Resolve(fleet []Ship, target Coordinate) ShotResult {
	var res ShotResult
	for i := range fleet {
		s := &fleet[i]
		if !s.Occupies(target) {
			continue
		}
		res.Hit = true
		s.HitCount++
		if s.HitCount == s.Size {
			s.Sunk = true
			res.SunkShip = s
		}
		break
	}
	res.AllSunk = allSunk(fleet)
	return res
}

func allSunk(fleet []Ship) bool {
	if len(fleet) == 0 {
		return false
	}
	for i := range fleet {
		if !fleet[i].Sunk {
			return false
		}
	}
	return true
}
