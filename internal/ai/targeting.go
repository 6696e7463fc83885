// Package ai selects the computer opponent's shots. Every strategy is a pure
// function over the AI's knowledge of the opponent's board; the match session
// owns the knowledge and updates it from resolved shots.
package ai

import (
	"math/rand"

	"github.com/DoyleJ11/battleship-backend/internal/game"
)

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Knowledge mirrors what a human player would infer from their own shots:
// which cells hit, which missed, which cells look worth following up, and how
// much of the enemy fleet is already on the bottom.
type Knowledge struct {
	Hits      map[game.Coordinate]bool
	Misses    map[game.Coordinate]bool
	SunkCells map[game.Coordinate]bool
	Targets   []game.Coordinate
	SunkShips int
}

func NewKnowledge() *Knowledge {
	return &Knowledge{
		Hits:      make(map[game.Coordinate]bool),
		Misses:    make(map[game.Coordinate]bool),
		SunkCells: make(map[game.Coordinate]bool),
	}
}

func (k *Knowledge) Tried(c game.Coordinate) bool {
	return k.Hits[c] || k.Misses[c]
}

// Record folds one resolved shot into the knowledge. A hit queues the untried
// orthogonal neighbors for follow-up.
func (k *Knowledge) Record(c game.Coordinate, hit bool) {
	if !hit {
		k.Misses[c] = true
		return
	}
	k.Hits[c] = true
	for _, n := range c.Neighbors() {
		if !k.Tried(n) {
			k.Targets = append(k.Targets, n)
		}
	}
}

// RecordSunk marks a finished ship. The follow-up queue is cleared: whatever
// it still held belonged to the ship that just went down.
func (k *Knowledge) RecordSunk(positions []game.Coordinate) {
	for _, c := range positions {
		k.SunkCells[c] = true
	}
	k.Targets = nil
	k.SunkShips++
}

// NextShot picks the AI's next target. It never returns a cell that was
// already fired at; with a full board it falls back to (0,0), which the match
// will reject, but a finished board means the match is already over.
func NextShot(d Difficulty, k *Knowledge, rng *rand.Rand) game.Coordinate {
	switch d {
	case Hard:
		return densityShot(k, rng)
	case Medium:
		return huntShot(k, rng)
	default:
		return randomShot(k, rng)
	}
}

func untried(k *Knowledge) []game.Coordinate {
	var open []game.Coordinate
	for y := 0; y < game.GridSize; y++ {
		for x := 0; x < game.GridSize; x++ {
			c := game.Coordinate{X: x, Y: y}
			if !k.Tried(c) {
				open = append(open, c)
			}
		}
	}
	return open
}

func randomShot(k *Knowledge, rng *rand.Rand) game.Coordinate {
	open := untried(k)
	if len(open) == 0 {
		return game.Coordinate{}
	}
	return open[rng.Intn(len(open))]
}

// huntShot prefers queued follow-up targets over random hunting whenever the
// queue is non-empty. Stale queue entries (tried since they were queued) are
// skipped.
func huntShot(k *Knowledge, rng *rand.Rand) game.Coordinate {
	for len(k.Targets) > 0 {
		c := k.Targets[len(k.Targets)-1]
		k.Targets = k.Targets[:len(k.Targets)-1]
		if !k.Tried(c) {
			return c
		}
	}
	return randomShot(k, rng)
}

// densityShot scores every untried cell by the number of ways any remaining
// ship length could lie through it horizontally or vertically without crossing
// a miss or a sunk cell, then fires at the best score, ties broken uniformly.
func densityShot(k *Knowledge, rng *rand.Rand) game.Coordinate {
	var best []game.Coordinate
	bestScore := -1
	for y := 0; y < game.GridSize; y++ {
		for x := 0; x < game.GridSize; x++ {
			c := game.Coordinate{X: x, Y: y}
			if k.Tried(c) {
				continue
			}
			score := cellScore(k, c)
			switch {
			case score > bestScore:
				bestScore = score
				best = best[:0]
				best = append(best, c)
			case score == bestScore:
				best = append(best, c)
			}
		}
	}
	if len(best) == 0 {
		return game.Coordinate{}
	}
	return best[rng.Intn(len(best))]
}

func cellScore(k *Knowledge, c game.Coordinate) int {
	score := 0
	for length := 2; length <= 5; length++ {
		for offset := 0; offset < length; offset++ {
			if runFits(k, game.Coordinate{X: c.X - offset, Y: c.Y}, length, true) {
				score++
			}
			if runFits(k, game.Coordinate{X: c.X, Y: c.Y - offset}, length, false) {
				score++
			}
		}
	}
	return score
}

func runFits(k *Knowledge, origin game.Coordinate, length int, horizontal bool) bool {
	for i := 0; i < length; i++ {
		c := origin
		if horizontal {
			c.X += i
		} else {
			c.Y += i
		}
		if !c.InBounds() || k.Misses[c] || k.SunkCells[c] {
			return false
		}
	}
	return true
}
