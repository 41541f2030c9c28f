package main

import (
	"github.com/wricardo/bomber-grid-game/game/engine"
)

// orthogonal moves never depend on the diagonal unlock
var orthogonal = []engine.Direction{engine.Up, engine.Down, engine.Left, engine.Right}

// KeyStrategy plans a route from the player to the key. Bricks on the route
// are blasted from the neighbouring cell: the player plants, detonates while
// standing on the bomb, then steps into the cleared cell.
type KeyStrategy struct {
	// BrickCost is how many moves a brick is worth when ranking routes
	BrickCost int
}

func NewKeyStrategy() *KeyStrategy {
	return &KeyStrategy{BrickCost: 3}
}

// Plan returns the commands that take the player to the key, or nil when
// no route exists
func (s *KeyStrategy) Plan(state *engine.GameState) []string {
	if state == nil || state.Status.Terminal() {
		return nil
	}

	path := s.route(state, state.Player.Pos, state.Key)
	if path == nil {
		return nil
	}

	var commands []string
	cur := state.Player.Pos
	for _, dir := range path {
		next := cur.Add(dir.Offset(), 1)
		if kindAt(state, next) == engine.Brick {
			commands = append(commands, string(engine.CommandPlant), string(engine.CommandDetonate))
		}
		commands = append(commands, string(dir))
		cur = next
	}
	return commands
}

// route runs a cheapest-path search over the four orthogonal directions.
// Walls, devices and villains block; bricks cost BrickCost extra moves.
func (s *KeyStrategy) route(state *engine.GameState, from, to engine.Position) []engine.Direction {
	type node struct {
		pos  engine.Position
		cost int
	}

	cost := map[engine.Position]int{from: 0}
	came := map[engine.Position]routeStep{}

	// Costs are small integers, so a bucket queue keeps the search ordered
	buckets := [][]node{{{pos: from}}}
	for c := 0; c < len(buckets); c++ {
		for i := 0; i < len(buckets[c]); i++ {
			n := buckets[c][i]
			if n.cost > cost[n.pos] {
				continue
			}
			if n.pos == to {
				return unwind(came, from, to)
			}

			for _, dir := range orthogonal {
				next := n.pos.Add(dir.Offset(), 1)
				weight, ok := s.weight(state, next)
				if !ok {
					continue
				}
				nc := n.cost + weight
				if old, seen := cost[next]; seen && old <= nc {
					continue
				}
				cost[next] = nc
				came[next] = routeStep{prev: n.pos, dir: dir}
				for len(buckets) <= nc {
					buckets = append(buckets, nil)
				}
				buckets[nc] = append(buckets[nc], node{pos: next, cost: nc})
			}
		}
	}
	return nil
}

// weight is the cost of entering p, false when p cannot be entered
func (s *KeyStrategy) weight(state *engine.GameState, p engine.Position) (int, bool) {
	switch kindAt(state, p) {
	case engine.Empty, engine.PowerUp, engine.Key:
		return 1, true
	case engine.Brick:
		return 1 + s.BrickCost, true
	}
	return 0, false
}

type routeStep struct {
	prev engine.Position
	dir  engine.Direction
}

func unwind(came map[engine.Position]routeStep, from, to engine.Position) []engine.Direction {
	var dirs []engine.Direction
	for cur := to; cur != from; cur = came[cur].prev {
		dirs = append(dirs, came[cur].dir)
	}
	for i, j := 0, len(dirs)-1; i < j; i, j = i+1, j-1 {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}
	return dirs
}

func kindAt(state *engine.GameState, p engine.Position) engine.CellKind {
	if p.Row < 0 || p.Row >= len(state.Grid) || p.Col < 0 || p.Col >= len(state.Grid[p.Row]) {
		return engine.Border
	}
	return state.Grid[p.Row][p.Col].Kind
}
