package engine

import "fmt"

// Grid is the square cell array. Index 0 of each axis is the label border,
// indices 1 and size-1 are the outer wall ring.
type Grid struct {
	size  int
	cells [][]Cell
}

// NewGrid builds the grid for a map of size n (side n+1) with its fixed walls
func NewGrid(n int) (*Grid, error) {
	if n < MinMapSize || n > MaxMapSize {
		return nil, fmt.Errorf("map size must be between %d and %d, got %d", MinMapSize, MaxMapSize, n)
	}

	size := n + 1
	cells := make([][]Cell, size)
	for r := range cells {
		cells[r] = make([]Cell, size)
		for c := range cells[r] {
			cells[r][c] = Cell{Kind: Empty}
		}
	}

	g := &Grid{size: size, cells: cells}
	g.addBorders()
	g.addWalls()
	return g, nil
}

func (g *Grid) addBorders() {
	for i := 0; i < g.size; i++ {
		g.cells[0][i] = Cell{Kind: Border}
		g.cells[i][0] = Cell{Kind: Border}
	}
}

func (g *Grid) addWalls() {
	last := g.size - 1

	// Outer ring
	for i := 1; i < g.size; i++ {
		g.cells[1][i] = Cell{Kind: Wall}
		g.cells[last][i] = Cell{Kind: Wall}
		g.cells[i][1] = Cell{Kind: Wall}
		g.cells[i][last] = Cell{Kind: Wall}
	}

	// Fixed inner pillars
	for r := 3; r < last; r += 2 {
		for c := 3; c < last; c += 2 {
			g.cells[r][c] = Cell{Kind: Wall}
		}
	}
}

// Size returns the side length of the grid, including the label border
func (g *Grid) Size() int {
	return g.size
}

// InBounds reports whether p addresses a cell of the array
func (g *Grid) InBounds(p Position) bool {
	return p.Row >= 0 && p.Col >= 0 && p.Row < g.size && p.Col < g.size
}

// InInterior reports whether p is strictly inside the outer wall ring
func (g *Grid) InInterior(p Position) bool {
	return p.Row > 1 && p.Col > 1 && p.Row < g.size-1 && p.Col < g.size-1
}

// Cell returns the cell at p
func (g *Grid) Cell(p Position) (Cell, error) {
	if !g.InBounds(p) {
		return Cell{}, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, p.Row, p.Col)
	}
	return g.cells[p.Row][p.Col], nil
}

// SetCell overwrites the cell at p
func (g *Grid) SetCell(p Position, cell Cell) error {
	if !g.InBounds(p) {
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, p.Row, p.Col)
	}
	g.cells[p.Row][p.Col] = cell
	return nil
}

// set is the unchecked writer for positions already known to be in bounds
func (g *Grid) set(p Position, cell Cell) {
	g.cells[p.Row][p.Col] = cell
}

// kindAt is the unchecked accessor for callers that already checked bounds
func (g *Grid) kindAt(p Position) CellKind {
	return g.cells[p.Row][p.Col].Kind
}

// CanPlace returns nil when an entity may be put at p. The error wraps
// ErrOutOfBounds, ErrBorder, ErrWall or ErrOccupied.
func (g *Grid) CanPlace(p Position) error {
	if !g.InBounds(p) {
		return ErrOutOfBounds
	}
	switch g.kindAt(p) {
	case Empty:
		return nil
	case Border:
		return ErrBorder
	case Wall:
		return ErrWall
	default:
		return ErrOccupied
	}
}

// IsPassable reports whether the player may step onto p
func (g *Grid) IsPassable(p Position) bool {
	if !g.InInterior(p) {
		return false
	}
	switch g.kindAt(p) {
	case Wall, Brick, Device:
		return false
	}
	return true
}

// Count returns the number of cells holding kind
func (g *Grid) Count(kind CellKind) int {
	count := 0
	for _, row := range g.cells {
		for _, cell := range row {
			if cell.Kind == kind {
				count++
			}
		}
	}
	return count
}

// Snapshot returns a deep copy of the cells
func (g *Grid) Snapshot() [][]Cell {
	out := make([][]Cell, g.size)
	for r := range g.cells {
		out[r] = make([]Cell, g.size)
		copy(out[r], g.cells[r])
	}
	return out
}
