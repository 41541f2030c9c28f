package engine

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Registry tracks every entity bound to a grid cell. Each collection is
// keyed by position and keeps insertion order, so lookups are O(1) and
// listings are stable. Every mutation stamps the grid in the same call.
//
// Positions held by the registry passed a bounds check when they were
// placed, so later writes to them use the unchecked grid setter.
type Registry struct {
	grid *Grid

	player   *PlayerState
	key      *Position
	villains *orderedmap.OrderedMap[Position, struct{}]
	bricks   *orderedmap.OrderedMap[Position, struct{}]
	powerUps *orderedmap.OrderedMap[Position, PowerKind]

	devices      []DeviceState
	nextDeviceID int
}

// NewRegistry creates an empty registry over grid
func NewRegistry(grid *Grid) *Registry {
	return &Registry{
		grid:         grid,
		villains:     orderedmap.New[Position, struct{}](),
		bricks:       orderedmap.New[Position, struct{}](),
		powerUps:     orderedmap.New[Position, PowerKind](),
		nextDeviceID: 1,
	}
}

func (r *Registry) place(entity string, p Position, cell Cell) error {
	if err := r.grid.CanPlace(p); err != nil {
		return &PlacementError{Entity: entity, Pos: p, Err: err}
	}
	return r.grid.SetCell(p, cell)
}

// PlacePlayer puts the player on the grid
func (r *Registry) PlacePlayer(player PlayerState) error {
	if err := r.place("player", player.Pos, Cell{Kind: Player}); err != nil {
		return err
	}
	r.player = &player
	return nil
}

// PlaceKey puts the goal key on the grid
func (r *Registry) PlaceKey(p Position) error {
	if err := r.place("key", p, Cell{Kind: Key}); err != nil {
		return err
	}
	r.key = &p
	return nil
}

// AddVillain registers a villain at p
func (r *Registry) AddVillain(p Position) error {
	if err := r.place("villain", p, Cell{Kind: Villain}); err != nil {
		return err
	}
	r.villains.Set(p, struct{}{})
	return nil
}

// AddBrick registers a brick at p
func (r *Registry) AddBrick(p Position) error {
	if err := r.place("brick", p, Cell{Kind: Brick}); err != nil {
		return err
	}
	r.bricks.Set(p, struct{}{})
	return nil
}

// AddPowerUp registers a power-up of the given kind at p
func (r *Registry) AddPowerUp(kind PowerKind, p Position) error {
	if err := r.place("power-up "+string(kind), p, Cell{Kind: PowerUp, Power: kind}); err != nil {
		return err
	}
	r.powerUps.Set(p, kind)
	return nil
}

// Player returns the live player record, nil until placed
func (r *Registry) Player() *PlayerState {
	return r.player
}

// Key returns the key position
func (r *Registry) Key() (Position, bool) {
	if r.key == nil {
		return Position{}, false
	}
	return *r.key, true
}

// PowerUpAt returns the kind of the power-up at p
func (r *Registry) PowerUpAt(p Position) (PowerKind, bool) {
	return r.powerUps.Get(p)
}

// HasVillain reports whether a villain stands at p
func (r *Registry) HasVillain(p Position) bool {
	_, ok := r.villains.Get(p)
	return ok
}

// HasBrick reports whether a brick stands at p
func (r *Registry) HasBrick(p Position) bool {
	_, ok := r.bricks.Get(p)
	return ok
}

// Remove destroys the brick, villain or power-up at p and clears its cell.
// It returns the kind that was removed; other kinds are left untouched.
func (r *Registry) Remove(p Position) (CellKind, bool) {
	var removed CellKind
	if _, ok := r.villains.Delete(p); ok {
		removed = Villain
	} else if _, ok := r.bricks.Delete(p); ok {
		removed = Brick
	} else if _, ok := r.powerUps.Delete(p); ok {
		removed = PowerUp
	} else {
		return "", false
	}
	r.grid.set(p, Cell{Kind: Empty})
	return removed, true
}

// MovePlayer relocates the player. The old cell is cleared unless a device
// sits there. Nothing changes when to is off the grid.
func (r *Registry) MovePlayer(to Position) error {
	if !r.grid.InBounds(to) {
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, to.Row, to.Col)
	}
	from := r.player.Pos
	if r.grid.kindAt(from) != Device {
		r.grid.set(from, Cell{Kind: Empty})
	}
	r.grid.set(to, Cell{Kind: Player})
	r.player.Pos = to
	return nil
}

// AddDevice plants a device at the player's position using the player's
// current attributes
func (r *Registry) AddDevice() DeviceState {
	d := DeviceState{
		ID:       r.nextDeviceID,
		Origin:   r.player.Pos,
		Range:    r.player.BombRange,
		Diagonal: r.player.DiagonalBlast,
	}
	r.nextDeviceID++
	r.devices = append(r.devices, d)
	r.grid.set(d.Origin, Cell{Kind: Device})
	return d
}

// ClearDevices removes every active device. Device cells go back to Player
// when the player stands on them and to Empty otherwise.
func (r *Registry) ClearDevices() []DeviceState {
	cleared := r.devices
	for _, d := range cleared {
		if r.grid.kindAt(d.Origin) != Device {
			continue
		}
		if r.player != nil && r.player.Pos == d.Origin {
			r.grid.set(d.Origin, Cell{Kind: Player})
		} else {
			r.grid.set(d.Origin, Cell{Kind: Empty})
		}
	}
	r.devices = nil
	return cleared
}

// DeviceCount returns the number of active devices
func (r *Registry) DeviceCount() int {
	return len(r.devices)
}

// Devices returns a copy of the active devices in plant order
func (r *Registry) Devices() []DeviceState {
	out := make([]DeviceState, len(r.devices))
	copy(out, r.devices)
	return out
}

// Villains returns villain positions in placement order
func (r *Registry) Villains() []Position {
	return keys(r.villains)
}

// Bricks returns brick positions in placement order
func (r *Registry) Bricks() []Position {
	return keys(r.bricks)
}

// PowerUps returns the remaining power-ups in placement order
func (r *Registry) PowerUps() []PowerUpState {
	out := make([]PowerUpState, 0, r.powerUps.Len())
	for pair := r.powerUps.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, PowerUpState{Kind: pair.Value, Pos: pair.Key})
	}
	return out
}

func keys[V any](m *orderedmap.OrderedMap[Position, V]) []Position {
	out := make([]Position, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}
