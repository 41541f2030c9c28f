package engine

import (
	"fmt"
	"strings"
)

// Offset is a unit step on the grid
type Offset struct {
	DRow int
	DCol int
}

// Direction names one of the eight movement directions
type Direction string

const (
	Up        Direction = "up"
	Down      Direction = "down"
	Left      Direction = "left"
	Right     Direction = "right"
	UpLeft    Direction = "up-left"
	DownLeft  Direction = "down-left"
	UpRight   Direction = "up-right"
	DownRight Direction = "down-right"
)

// Directions lists all movement directions, orthogonal first
var Directions = []Direction{Up, Down, Left, Right, UpLeft, DownLeft, UpRight, DownRight}

var directionOffsets = map[Direction]Offset{
	Up:        {-1, 0},
	Down:      {1, 0},
	Left:      {0, -1},
	Right:     {0, 1},
	UpLeft:    {-1, -1},
	DownLeft:  {1, -1},
	UpRight:   {-1, 1},
	DownRight: {1, 1},
}

// Keyboard letters W/S/A/D and Q/Z/E/C plus compass names
var directionAliases = map[string]Direction{
	"w": Up, "north": Up, "n": Up,
	"s": Down, "south": Down,
	"a": Left, "west": Left,
	"d": Right, "east": Right,
	"q": UpLeft, "north-west": UpLeft, "nw": UpLeft, "upleft": UpLeft,
	"z": DownLeft, "south-west": DownLeft, "sw": DownLeft, "downleft": DownLeft,
	"e": UpRight, "north-east": UpRight, "ne": UpRight, "upright": UpRight,
	"c": DownRight, "south-east": DownRight, "se": DownRight, "downright": DownRight,
}

// Offset returns the unit step for d
func (d Direction) Offset() Offset {
	return directionOffsets[d]
}

// Diagonal reports whether d moves on both axes
func (d Direction) Diagonal() bool {
	o := directionOffsets[d]
	return o.DRow != 0 && o.DCol != 0
}

// ParseDirection accepts direction names, keyboard letters and compass names
func ParseDirection(s string) (Direction, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "_", "-")
	if _, ok := directionOffsets[Direction(key)]; ok {
		return Direction(key), nil
	}
	if d, ok := directionAliases[key]; ok {
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// CommandKind is the type of a player command
type CommandKind string

const (
	CommandMove     CommandKind = "move"
	CommandPlant    CommandKind = "plant"
	CommandDetonate CommandKind = "detonate"
)

// Command is a parsed player command
type Command struct {
	Kind      CommandKind `json:"kind"`
	Direction Direction   `json:"direction,omitempty"`
}

// Move builds a move command
func Move(d Direction) Command {
	return Command{Kind: CommandMove, Direction: d}
}

// Plant builds a plant-device command
func Plant() Command {
	return Command{Kind: CommandPlant}
}

// Detonate builds a detonate-all command
func Detonate() Command {
	return Command{Kind: CommandDetonate}
}

func (c Command) String() string {
	if c.Kind == CommandMove {
		return string(c.Direction)
	}
	return string(c.Kind)
}

// ParseCommand parses a text command. Besides directions it understands
// "plant"/"bomb"/"x1" and "detonate"/"boom"/"x2".
func ParseCommand(s string) (Command, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case "plant", "bomb", "x1", "plant_device", "plant-device":
		return Plant(), nil
	case "detonate", "boom", "x2", "detonate_all", "detonate-all":
		return Detonate(), nil
	}
	d, err := ParseDirection(key)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, s)
	}
	return Move(d), nil
}
