package engine

import (
	"fmt"
	"strings"
)

// move handles a Move command
func (e *GameEngine) move(direction Direction) Outcome {
	offset, ok := directionOffsets[direction]
	if !ok {
		return e.reject(fmt.Errorf("%w: %q", ErrInvalidDirection, direction), e.config.Messages.InvalidMove)
	}

	player := e.registry.Player()
	if direction.Diagonal() && e.config.DiagonalMovesRequireUnlock && !player.DiagonalBlast {
		return e.reject(ErrDiagonalLocked, e.config.Messages.DiagonalLocked)
	}

	target := player.Pos.Add(offset, 1)
	if !e.grid.IsPassable(target) {
		return e.reject(fmt.Errorf("%w: %s blocked at %s", ErrInvalidMove, direction, target.Label()), e.config.Messages.InvalidMove)
	}

	switch e.grid.kindAt(target) {
	case Villain:
		e.status = StatusPlayerDied
		return Outcome{Status: StatusPlayerDied, Message: e.config.Messages.VillainContact}
	case Key:
		e.status = StatusPlayerWon
		return Outcome{Status: StatusPlayerWon, Message: e.config.Messages.Victory}
	}

	out := Outcome{Status: StatusContinue, Message: fmt.Sprintf(e.config.Messages.Moved, target.Label())}

	if kind, ok := e.registry.PowerUpAt(target); ok {
		collectPower(player, kind)
		e.registry.Remove(target)
		out.Collected = &PowerUpState{Kind: kind, Pos: target}
		out.Message = fmt.Sprintf(e.config.Messages.PowerCollected, kind)
	}

	if err := e.registry.MovePlayer(target); err != nil {
		return e.reject(fmt.Errorf("%w: %v", ErrInvalidMove, err), e.config.Messages.InvalidMove)
	}
	return out
}

// collectPower applies a power-up to the player. Attributes only grow.
func collectPower(player *PlayerState, kind PowerKind) {
	switch kind {
	case RangeBoost:
		player.BombRange++
	case DiagonalUnlock:
		player.DiagonalBlast = true
	case ExtraDevice:
		player.DeviceCapacity++
	}
}

// plant handles a PlantDevice command
func (e *GameEngine) plant() Outcome {
	player := e.registry.Player()
	if e.registry.DeviceCount() >= player.DeviceCapacity {
		return e.reject(ErrCapacityReached, e.config.Messages.CapacityReached)
	}

	d := e.registry.AddDevice()
	return Outcome{
		Status:  StatusContinue,
		Message: fmt.Sprintf(e.config.Messages.DevicePlanted, d.Origin.Label()),
		Planted: &d,
	}
}

// CanMove checks if the player can move in the specified direction
func (e *GameEngine) CanMove(direction Direction) bool {
	if e.status.Terminal() {
		return false
	}
	offset, ok := directionOffsets[direction]
	if !ok {
		return false
	}
	player := e.registry.Player()
	if direction.Diagonal() && e.config.DiagonalMovesRequireUnlock && !player.DiagonalBlast {
		return false
	}
	return e.grid.IsPassable(player.Pos.Add(offset, 1))
}

// GetPossibleMoves returns all directions the player can move in
func (e *GameEngine) GetPossibleMoves() []string {
	var possible []string
	for _, d := range Directions {
		if e.CanMove(d) {
			possible = append(possible, string(d))
		}
	}
	return possible
}

// generateLocalView lists the 8 cells around the player, clockwise from north
func (e *GameEngine) generateLocalView() []SurroundingCell {
	pos := e.GetPlayerPosition()

	directions := []Offset{
		{-1, 0},  // North
		{-1, 1},  // North-East
		{0, 1},   // East
		{1, 1},   // South-East
		{1, 0},   // South
		{1, -1},  // South-West
		{0, -1},  // West
		{-1, -1}, // North-West
	}

	surroundings := make([]SurroundingCell, len(directions))
	for i, dir := range directions {
		p := pos.Add(dir, 1)
		kind := string(Wall) // out of bounds reads as wall
		if cell, err := e.grid.Cell(p); err == nil {
			kind = string(cell.Kind)
			if cell.Kind == PowerUp {
				kind = string(cell.Power)
			}
		}
		surroundings[i] = SurroundingCell{Row: p.Row, Col: p.Col, Kind: kind}
	}
	return surroundings
}

// localView3x3 renders the 3x3 neighbourhood with the player in the centre
func (e *GameEngine) localView3x3() []string {
	pos := e.GetPlayerPosition()
	lines := make([]string, 0, 3)
	for dr := -1; dr <= 1; dr++ {
		var row strings.Builder
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				row.WriteRune(GlyphPlayer)
				continue
			}
			p := Position{Row: pos.Row + dr, Col: pos.Col + dc}
			cell, err := e.grid.Cell(p)
			if err != nil {
				row.WriteRune(GlyphWall)
				continue
			}
			row.WriteRune(CellGlyph(cell))
		}
		lines = append(lines, row.String())
	}
	return lines
}
