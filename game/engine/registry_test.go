package engine

import (
	"errors"
	"testing"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	grid, err := NewGrid(8)
	if err != nil {
		t.Fatalf("Failed to create grid: %v", err)
	}
	return NewRegistry(grid)
}

func TestRegistry_Placement(t *testing.T) {
	r := newTestRegistry(t)

	if err := r.PlacePlayer(PlayerState{Pos: Position{2, 2}, BombRange: 1, DeviceCapacity: 1}); err != nil {
		t.Fatalf("PlacePlayer failed: %v", err)
	}
	if err := r.PlaceKey(Position{6, 6}); err != nil {
		t.Fatalf("PlaceKey failed: %v", err)
	}

	// Failed placements leave both grid and registry untouched
	err := r.AddVillain(Position{2, 2})
	var perr *PlacementError
	if !errors.As(err, &perr) || !errors.Is(err, ErrOccupied) {
		t.Fatalf("Expected occupied PlacementError, got %v", err)
	}
	if perr.Entity != "villain" || perr.Pos != (Position{2, 2}) {
		t.Errorf("Unexpected placement error details: %+v", perr)
	}
	if len(r.Villains()) != 0 {
		t.Error("Rejected villain should not be registered")
	}

	if err := r.AddBrick(Position{1, 4}); !errors.Is(err, ErrWall) {
		t.Errorf("Expected ErrWall, got %v", err)
	}
	if err := r.AddPowerUp(RangeBoost, Position{0, 4}); !errors.Is(err, ErrBorder) {
		t.Errorf("Expected ErrBorder, got %v", err)
	}

	if key, ok := r.Key(); !ok || key != (Position{6, 6}) {
		t.Errorf("Unexpected key %v (%v)", key, ok)
	}
	cell, _ := r.grid.Cell(Position{2, 2})
	if cell.Kind != Player {
		t.Errorf("Expected player cell, got %s", cell.Kind)
	}
}

func TestRegistry_OrderedListings(t *testing.T) {
	r := newTestRegistry(t)
	bricks := []Position{{6, 2}, {2, 4}, {4, 6}, {2, 6}}
	for _, b := range bricks {
		if err := r.AddBrick(b); err != nil {
			t.Fatalf("AddBrick(%v) failed: %v", b, err)
		}
	}

	got := r.Bricks()
	if len(got) != len(bricks) {
		t.Fatalf("Expected %d bricks, got %d", len(bricks), len(got))
	}
	for i := range bricks {
		if got[i] != bricks[i] {
			t.Errorf("Brick %d: expected %v, got %v", i, bricks[i], got[i])
		}
	}

	r.Remove(Position{2, 4})
	got = r.Bricks()
	if len(got) != 3 || got[1] != (Position{4, 6}) {
		t.Errorf("Removal should keep the remaining order, got %v", got)
	}
}

func TestRegistry_Remove(t *testing.T) {
	r := newTestRegistry(t)
	r.AddVillain(Position{2, 2})
	r.AddBrick(Position{2, 3})
	r.AddPowerUp(DiagonalUnlock, Position{2, 4})
	r.PlaceKey(Position{2, 5})

	tests := []struct {
		pos  Position
		kind CellKind
		ok   bool
	}{
		{Position{2, 2}, Villain, true},
		{Position{2, 3}, Brick, true},
		{Position{2, 4}, PowerUp, true},
		{Position{2, 5}, "", false}, // keys are indestructible
		{Position{1, 2}, "", false},
		{Position{2, 6}, "", false},
	}

	for _, test := range tests {
		kind, ok := r.Remove(test.pos)
		if kind != test.kind || ok != test.ok {
			t.Errorf("Remove(%v) = %s, %v; want %s, %v", test.pos, kind, ok, test.kind, test.ok)
		}
		if test.ok {
			cell, _ := r.grid.Cell(test.pos)
			if cell.Kind != Empty {
				t.Errorf("Removed cell %v should be empty, got %s", test.pos, cell.Kind)
			}
		}
	}

	cell, _ := r.grid.Cell(Position{2, 5})
	if cell.Kind != Key {
		t.Errorf("Key cell should be untouched, got %s", cell.Kind)
	}
	cell, _ = r.grid.Cell(Position{1, 2})
	if cell.Kind != Wall {
		t.Errorf("Wall cell should be untouched, got %s", cell.Kind)
	}
}

func TestRegistry_Devices(t *testing.T) {
	r := newTestRegistry(t)
	r.PlacePlayer(PlayerState{Pos: Position{2, 2}, BombRange: 2, DiagonalBlast: true, DeviceCapacity: 2})

	d1 := r.AddDevice()
	if d1.ID != 1 || d1.Origin != (Position{2, 2}) || d1.Range != 2 || !d1.Diagonal {
		t.Errorf("Unexpected device %+v", d1)
	}

	if err := r.MovePlayer(Position{2, 3}); err != nil {
		t.Fatalf("MovePlayer failed: %v", err)
	}
	cell, _ := r.grid.Cell(Position{2, 2})
	if cell.Kind != Device {
		t.Errorf("Device cell should survive the player leaving, got %s", cell.Kind)
	}

	r.Player().BombRange = 5
	d2 := r.AddDevice()
	if d2.ID != 2 || d2.Range != 5 {
		t.Errorf("Unexpected second device %+v", d2)
	}
	if r.Devices()[0].Range != 2 {
		t.Error("First device range must not follow the player")
	}

	// Player stands on d2; d1 is unattended
	cleared := r.ClearDevices()
	if len(cleared) != 2 || r.DeviceCount() != 0 {
		t.Fatalf("Expected 2 cleared and none left, got %d / %d", len(cleared), r.DeviceCount())
	}
	cell, _ = r.grid.Cell(Position{2, 2})
	if cell.Kind != Empty {
		t.Errorf("Unattended device cell should be empty, got %s", cell.Kind)
	}
	cell, _ = r.grid.Cell(Position{2, 3})
	if cell.Kind != Player {
		t.Errorf("Attended device cell should hold the player, got %s", cell.Kind)
	}
}

func TestRegistry_DevicesIsCopy(t *testing.T) {
	r := newTestRegistry(t)
	r.PlacePlayer(PlayerState{Pos: Position{2, 2}, BombRange: 1, DeviceCapacity: 1})
	r.AddDevice()

	devices := r.Devices()
	devices[0].Range = 9
	if r.Devices()[0].Range != 1 {
		t.Error("Devices should return a copy")
	}
}

func TestRegistry_MovePlayerOffGrid(t *testing.T) {
	r := newTestRegistry(t)
	r.PlacePlayer(PlayerState{Pos: Position{2, 2}, BombRange: 1, DeviceCapacity: 1})

	for _, to := range []Position{{-1, 2}, {2, 9}, {20, 20}} {
		if err := r.MovePlayer(to); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("MovePlayer(%v): expected ErrOutOfBounds, got %v", to, err)
		}
	}
	if r.Player().Pos != (Position{2, 2}) {
		t.Errorf("Player should not move, got %v", r.Player().Pos)
	}
	if cell, _ := r.grid.Cell(Position{2, 2}); cell.Kind != Player {
		t.Errorf("Player cell should be untouched, got %s", cell.Kind)
	}
}
