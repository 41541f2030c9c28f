package engine

import "fmt"

// CellKind represents the occupant tag of a grid cell
type CellKind string

const (
	Empty   CellKind = "empty"
	Border  CellKind = "border" // label row/column 0
	Wall    CellKind = "wall"
	Player  CellKind = "player"
	Villain CellKind = "villain"
	Brick   CellKind = "brick"
	Key     CellKind = "key"
	Device  CellKind = "device"
	PowerUp CellKind = "power_up"

	// Validation constants
	MinMapSize           = 5
	MaxMapSize           = 26 // labels run A..Z
	DefaultBombRange     = 1
	DefaultDeviceLimit   = 1
	MaxBulkCommands      = 50
	WebSocketBufferSize  = 256
	UnreachableDistance  = 999999
	DefaultHistoryLimit  = 20
	MaxHistoryPageLength = 100
)

// PowerKind is the payload of a PowerUp cell
type PowerKind string

const (
	RangeBoost     PowerKind = "range_boost"
	DiagonalUnlock PowerKind = "diagonal_unlock"
	ExtraDevice    PowerKind = "extra_device"
)

// ParsePowerKind accepts the canonical names and the numeric codes 1, 2 and 3
func ParsePowerKind(s string) (PowerKind, error) {
	switch s {
	case string(RangeBoost), "1", "range":
		return RangeBoost, nil
	case string(DiagonalUnlock), "2", "diagonal":
		return DiagonalUnlock, nil
	case string(ExtraDevice), "3", "extra_bomb", "bomb":
		return ExtraDevice, nil
	}
	return "", fmt.Errorf("unknown power-up kind %q", s)
}

// Cell represents a single grid cell
type Cell struct {
	Kind  CellKind  `json:"kind"`
	Power PowerKind `json:"power,omitempty"` // set only when Kind == PowerUp
}

// Is reports whether the cell holds the given kind
func (c Cell) Is(kind CellKind) bool {
	return c.Kind == kind
}

// Position is a (row, col) pair; row/col 0 hold the border labels
type Position struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// Add offsets the position by dist steps along d
func (p Position) Add(d Offset, dist int) Position {
	return Position{Row: p.Row + d.DRow*dist, Col: p.Col + d.DCol*dist}
}

// Label renders the position in the two-letter border notation, e.g. (3,2) -> "CB"
func (p Position) Label() string {
	if p.Row < 1 || p.Col < 1 || p.Row > MaxMapSize || p.Col > MaxMapSize {
		return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
	}
	return string([]byte{byte('A' + p.Row - 1), byte('A' + p.Col - 1)})
}

func (p Position) String() string {
	return p.Label()
}

// ParseLabel is the inverse of Position.Label; lower case is accepted
func ParseLabel(label string) (Position, error) {
	if len(label) != 2 {
		return Position{}, fmt.Errorf("label %q must be two letters", label)
	}
	var rc [2]int
	for i := 0; i < 2; i++ {
		ch := label[i]
		if ch >= 'a' && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		if ch < 'A' || ch > 'Z' {
			return Position{}, fmt.Errorf("label %q contains non-letter %q", label, label[i])
		}
		rc[i] = int(ch-'A') + 1
	}
	return Position{Row: rc[0], Col: rc[1]}, nil
}

// PlayerState holds the player's position and upgradeable attributes
type PlayerState struct {
	Pos            Position `json:"pos"`
	BombRange      int      `json:"bomb_range"`
	DiagonalBlast  bool     `json:"diagonal_blast"`
	DeviceCapacity int      `json:"device_capacity"`
}

// DeviceState is a planted bomb. Range and Diagonal are copied from the
// player when planted and never change afterwards.
type DeviceState struct {
	ID       int      `json:"id"`
	Origin   Position `json:"origin"`
	Range    int      `json:"range"`
	Diagonal bool     `json:"diagonal"`
}

// PowerUpState is a power-up waiting on the grid
type PowerUpState struct {
	Kind PowerKind `json:"kind" yaml:"kind"`
	Pos  Position  `json:"pos" yaml:"pos"`
}

// Status is the session-level state of the command processor
type Status string

const (
	StatusContinue   Status = "continue"
	StatusRejected   Status = "rejected"
	StatusPlayerDied Status = "player_died"
	StatusPlayerWon  Status = "player_won"
)

// Terminal reports whether no further commands are accepted after s
func (s Status) Terminal() bool {
	return s == StatusPlayerDied || s == StatusPlayerWon
}

// SurroundingCell represents a cell with its absolute position
type SurroundingCell struct {
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Kind string `json:"kind"`
}

// GameState is a read-only snapshot of a game session
type GameState struct {
	Size        int                   `json:"size"` // grid side, map size + 1
	Grid        [][]Cell              `json:"grid"`
	Rows        []string              `json:"rows"` // rendered text view
	Player      PlayerState           `json:"player"`
	Key         Position              `json:"key"`
	Villains    []Position            `json:"villains"`
	Bricks      []Position            `json:"bricks"`
	PowerUps    []PowerUpState        `json:"power_ups"`
	Devices     []DeviceState         `json:"devices"`
	Status      Status                `json:"status"`
	Message     string                `json:"message"`
	GameOver    bool                  `json:"game_over"`
	Victory     bool                  `json:"victory"`
	ConfigName  string                `json:"config_name"`
	Diagnostics []string              `json:"diagnostics,omitempty"`
	History     []CommandHistoryEntry `json:"history"`
	TotalMoves  int                   `json:"total_moves"`

	// CurrentMoves holds only the commands since the last reset.
	CurrentMoves      []CommandHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                   `json:"current_moves_count"`

	// Computed helper views
	LocalView     []SurroundingCell `json:"local_view,omitempty"`
	LocalView3x3  []string          `json:"local_view_3x3,omitempty"`
	PossibleMoves []string          `json:"possible_moves,omitempty"`
}

// CommandHistoryEntry represents a single processed command
type CommandHistoryEntry struct {
	Action       string   `json:"action"`
	FromPosition Position `json:"from_position"`
	ToPosition   Position `json:"to_position"`
	Status       Status   `json:"status"`
	Reason       string   `json:"reason,omitempty"`
	Timestamp    int64    `json:"timestamp"`
	Success      bool     `json:"success"`
	MoveNumber   int      `json:"move_number"`
}
