package engine

import "strings"

// Glyphs used by the text view of the grid
const (
	GlyphEmpty    = ' '
	GlyphWall     = '*'
	GlyphPlayer   = 'P'
	GlyphVillain  = 'V'
	GlyphBrick    = 'B'
	GlyphKey      = 'K'
	GlyphDevice   = 'X'
	GlyphRange    = '1'
	GlyphDiagonal = '2'
	GlyphCapacity = '3'
	GlyphUnknown  = '?'
)

// CellGlyph maps a cell to its text glyph. Border cells have no glyph of
// their own; RenderRows writes their labels.
func CellGlyph(cell Cell) rune {
	switch cell.Kind {
	case Empty, Border:
		return GlyphEmpty
	case Wall:
		return GlyphWall
	case Player:
		return GlyphPlayer
	case Villain:
		return GlyphVillain
	case Brick:
		return GlyphBrick
	case Key:
		return GlyphKey
	case Device:
		return GlyphDevice
	case PowerUp:
		switch cell.Power {
		case RangeBoost:
			return GlyphRange
		case DiagonalUnlock:
			return GlyphDiagonal
		case ExtraDevice:
			return GlyphCapacity
		}
	}
	return GlyphUnknown
}

// borderLabel returns the letter for border index i (1 -> 'A')
func borderLabel(i int) rune {
	if i <= 0 {
		return ' '
	}
	return rune('A' + i - 1)
}

// RenderRows renders the grid one string per row, cells separated by a
// space, with the letter labels in row and column 0
func RenderRows(g *Grid) []string {
	rows := make([]string, 0, g.Size())
	for r := 0; r < g.Size(); r++ {
		var line strings.Builder
		for c := 0; c < g.Size(); c++ {
			if c > 0 {
				line.WriteByte(' ')
			}
			switch {
			case r == 0:
				line.WriteRune(borderLabel(c))
			case c == 0:
				line.WriteRune(borderLabel(r))
			default:
				line.WriteRune(CellGlyph(g.cells[r][c]))
			}
		}
		rows = append(rows, line.String())
	}
	return rows
}

// Render returns the whole grid as one block of text
func Render(g *Grid) string {
	return strings.Join(RenderRows(g), "\n")
}

// CountCellKind counts the cells of a snapshot holding kind
func CountCellKind(grid [][]Cell, kind CellKind) int {
	count := 0
	for _, row := range grid {
		for _, cell := range row {
			if cell.Kind == kind {
				count++
			}
		}
	}
	return count
}

// ChebyshevDistance is the number of 8-directional steps between two cells
func ChebyshevDistance(from, to Position) int {
	dr, dc := abs(from.Row-to.Row), abs(from.Col-to.Col)
	if dr > dc {
		return dr
	}
	return dc
}

// ShortestPath returns the number of moves from one cell to another over
// cells the player can enter, or -1 when unreachable. With throughBricks
// set, bricks count as passable (they can be blasted away).
func ShortestPath(g *Grid, from, to Position, throughBricks bool) int {
	passable := func(p Position) bool {
		if p == to {
			return g.InInterior(p) && g.kindAt(p) != Wall
		}
		if g.IsPassable(p) {
			return true
		}
		return throughBricks && g.InInterior(p) && g.kindAt(p) == Brick
	}

	dist := map[Position]int{from: 0}
	queue := []Position{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == to {
			return dist[cur]
		}
		for _, d := range Directions {
			next := cur.Add(d.Offset(), 1)
			if _, seen := dist[next]; seen || !passable(next) {
				continue
			}
			// Villains end the game; never path through one
			if next != to && g.kindAt(next) == Villain {
				continue
			}
			dist[next] = dist[cur] + 1
			queue = append(queue, next)
		}
	}
	return -1
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
