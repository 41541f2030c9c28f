package engine

import (
	"errors"
	"fmt"
)

// Placement failures
var (
	ErrOutOfBounds = errors.New("position out of bounds")
	ErrBorder      = errors.New("position is on the label border")
	ErrWall        = errors.New("can't place element on wall")
	ErrOccupied    = errors.New("can't place element on occupied cell")
)

// Command rejections
var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidMove      = errors.New("invalid move")
	ErrDiagonalLocked   = errors.New("diagonal moves are locked")
	ErrCapacityReached  = errors.New("can't plant more bombs")
	ErrNoDevicePlanted  = errors.New("no bomb planted")
	ErrGameOver         = errors.New("game is over")
	ErrPlayerNotPlaced  = errors.New("player not placed")
)

// PlacementError reports why an entity could not be put on the grid
type PlacementError struct {
	Entity string
	Pos    Position
	Err    error
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("%s at %s: %v", e.Entity, e.Pos.Label(), e.Err)
}

func (e *PlacementError) Unwrap() error {
	return e.Err
}
