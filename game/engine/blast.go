package engine

import "fmt"

var (
	orthogonalRays = []Offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonalRays   = []Offset{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// BlastCells returns every candidate cell of a device's blast before bounds
// filtering: range cells per ray, four rays, eight when diagonal. Rays are
// not stopped by anything on the way.
func BlastCells(d DeviceState) []Position {
	rays := orthogonalRays
	if d.Diagonal {
		rays = append(append([]Offset{}, orthogonalRays...), diagonalRays...)
	}

	cells := make([]Position, 0, len(rays)*d.Range)
	for _, ray := range rays {
		for dist := 1; dist <= d.Range; dist++ {
			cells = append(cells, d.Origin.Add(ray, dist))
		}
	}
	return cells
}

// detonate handles a DetonateAll command
func (e *GameEngine) detonate() Outcome {
	if e.registry.DeviceCount() == 0 {
		return e.reject(ErrNoDevicePlanted, e.config.Messages.NoDevice)
	}

	out := Outcome{Status: StatusContinue, Devices: e.registry.Devices()}
	for _, d := range out.Devices {
		if died := e.resolveBlast(d, &out); died {
			e.status = StatusPlayerDied
			out.Status = StatusPlayerDied
			break
		}
	}

	e.registry.ClearDevices()
	if out.Status == StatusPlayerDied {
		out.Message = e.config.Messages.BlastDeath
	} else {
		out.Message = fmt.Sprintf(e.config.Messages.Detonated, len(out.Destroyed))
	}
	return out
}

// resolveBlast applies one device's blast and reports whether the player was
// hit. Processing stops at the player's cell.
func (e *GameEngine) resolveBlast(d DeviceState, out *Outcome) bool {
	size := e.grid.Size()
	for _, p := range BlastCells(d) {
		if p.Row <= 0 || p.Col <= 0 || p.Row >= size || p.Col >= size {
			continue
		}
		out.Blast = append(out.Blast, p)

		switch e.grid.kindAt(p) {
		case Brick, Villain, PowerUp:
			if kind, ok := e.registry.Remove(p); ok {
				out.Destroyed = append(out.Destroyed, Destruction{Pos: p, Kind: kind})
			}
		case Player:
			return true
		}
		// Wall, Device, Key and Empty cells are left alone
	}
	return false
}
