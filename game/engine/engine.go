package engine

import (
	"errors"
	"fmt"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	Reset() (*GameState, error)
	Status() Status
	IsGameOver() bool
	IsVictory() bool
	GetPlayer() PlayerState
	GetPlayerPosition() Position

	// Commands
	Apply(cmd Command) Outcome
	Move(direction Direction) Outcome
	PlantDevice() Outcome
	DetonateAll() Outcome
	CanMove(direction Direction) bool
	GetPossibleMoves() []string

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []CommandHistoryEntry
	GetLastMove() *CommandHistoryEntry

	// Local view
	GetLocalView() []SurroundingCell
	Diagnostics() []error
}

// Outcome is the result of one command
type Outcome struct {
	Status    Status        `json:"status"`
	Reason    error         `json:"-"`
	Message   string        `json:"message"`
	From      Position      `json:"from"`
	To        Position      `json:"to"`
	Collected *PowerUpState `json:"collected,omitempty"`
	Planted   *DeviceState  `json:"planted,omitempty"`
	Blast     []Position    `json:"blast,omitempty"`
	Destroyed []Destruction `json:"destroyed,omitempty"`
	Devices   []DeviceState `json:"devices,omitempty"` // detonated devices
}

// Destruction records an entity removed by a blast
type Destruction struct {
	Pos  Position `json:"pos"`
	Kind CellKind `json:"kind"`
}

// Accepted reports whether the command changed the game
func (o Outcome) Accepted() bool {
	return o.Status != StatusRejected
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; callers serialize commands per session.
type GameEngine struct {
	config      *GameConfig
	grid        *Grid
	registry    *Registry
	status      Status
	message     string
	diagnostics []error

	history      []CommandHistoryEntry
	currentMoves []CommandHistoryEntry
}

// NewEngine creates a new game engine from a level. Failing to place the
// player or the key is fatal; other placement failures are kept as
// diagnostics unless the level asks for strict placement.
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	config.normalize()

	e := &GameEngine{config: config}
	if err := e.setup(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewGame builds a level from its parts
func NewGame(size int, playerStart, key Position, villains, bricks []Position, powerUps []PowerUpState) (*GameEngine, error) {
	return NewEngine(&GameConfig{
		Name:        "custom",
		MapSize:     size,
		PlayerStart: playerStart,
		Key:         key,
		Villains:    villains,
		Bricks:      bricks,
		PowerUps:    powerUps,
	})
}

// NewEngineWithDefaults creates a new game engine on the classic level
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultConfig())
	if err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return e
}

// setup builds a fresh grid and registry from the config
func (e *GameEngine) setup() error {
	grid, err := NewGrid(e.config.MapSize)
	if err != nil {
		return err
	}
	registry := NewRegistry(grid)

	player := PlayerState{
		Pos:            e.config.PlayerStart,
		BombRange:      e.config.StartingRange,
		DeviceCapacity: e.config.StartingCapacity,
	}
	if err := registry.PlacePlayer(player); err != nil {
		return err
	}
	if err := registry.PlaceKey(e.config.Key); err != nil {
		return err
	}

	var diagnostics []error
	for _, v := range e.config.Villains {
		if err := registry.AddVillain(v); err != nil {
			diagnostics = append(diagnostics, err)
		}
	}
	for _, b := range e.config.Bricks {
		if err := registry.AddBrick(b); err != nil {
			diagnostics = append(diagnostics, err)
		}
	}
	for _, p := range e.config.PowerUps {
		if err := registry.AddPowerUp(p.Kind, p.Pos); err != nil {
			diagnostics = append(diagnostics, err)
		}
	}
	if e.config.StrictPlacement && len(diagnostics) > 0 {
		return fmt.Errorf("strict placement: %w", errors.Join(diagnostics...))
	}

	e.grid = registry.grid
	e.registry = registry
	e.diagnostics = diagnostics
	e.status = StatusContinue
	e.message = e.config.Messages.Welcome
	return nil
}

// Grid exposes the grid store
func (e *GameEngine) Grid() *Grid {
	return e.grid
}

// Registry exposes the entity registry
func (e *GameEngine) Registry() *Registry {
	return e.registry
}

// Diagnostics returns the placement failures recorded during setup
func (e *GameEngine) Diagnostics() []error {
	return e.diagnostics
}

// Status returns the processor status
func (e *GameEngine) Status() Status {
	return e.status
}

// IsGameOver returns whether the game reached a terminal status
func (e *GameEngine) IsGameOver() bool {
	return e.status.Terminal()
}

// IsVictory returns whether the player has won
func (e *GameEngine) IsVictory() bool {
	return e.status == StatusPlayerWon
}

// GetPlayer returns a copy of the player record
func (e *GameEngine) GetPlayer() PlayerState {
	return *e.registry.Player()
}

// GetPlayerPosition returns the current player position
func (e *GameEngine) GetPlayerPosition() Position {
	return e.registry.Player().Pos
}

// Apply runs one command to completion and records it in the history
func (e *GameEngine) Apply(cmd Command) Outcome {
	from := e.GetPlayerPosition()

	var out Outcome
	switch {
	case e.status.Terminal():
		out = e.reject(ErrGameOver, e.config.Messages.GameOver)
	case cmd.Kind == CommandMove:
		out = e.move(cmd.Direction)
	case cmd.Kind == CommandPlant:
		out = e.plant()
	case cmd.Kind == CommandDetonate:
		out = e.detonate()
	default:
		out = e.reject(fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Kind), "Unknown command")
	}

	out.From = from
	out.To = e.GetPlayerPosition()
	e.message = out.Message
	e.addToHistory(cmd.String(), out)
	return out
}

// Move attempts to move the player in the specified direction
func (e *GameEngine) Move(direction Direction) Outcome {
	return e.Apply(Move(direction))
}

// PlantDevice plants a bomb at the player's position
func (e *GameEngine) PlantDevice() Outcome {
	return e.Apply(Plant())
}

// DetonateAll detonates every planted bomb at once
func (e *GameEngine) DetonateAll() Outcome {
	return e.Apply(Detonate())
}

// reject builds a no-op outcome
func (e *GameEngine) reject(reason error, message string) Outcome {
	return Outcome{Status: StatusRejected, Reason: reason, Message: message}
}

// Reset rebuilds the level from its config. History is cumulative across
// resets; only the current segment is cleared. On error the game is left
// as it was.
func (e *GameEngine) Reset() (*GameState, error) {
	if err := e.setup(); err != nil {
		return nil, fmt.Errorf("reset failed: %w", err)
	}
	e.currentMoves = nil
	return e.GetState(), nil
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig switches to a new level and starts it from scratch
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}
	config.normalize()

	prev := e.config
	e.config = config
	if err := e.setup(); err != nil {
		e.config = prev
		return err
	}
	e.history = nil
	e.currentMoves = nil
	return nil
}

// GetMoveHistory returns the complete command history
func (e *GameEngine) GetMoveHistory() []CommandHistoryEntry {
	return e.history
}

// GetLastMove returns the last command processed, or nil if none
func (e *GameEngine) GetLastMove() *CommandHistoryEntry {
	if len(e.history) == 0 {
		return nil
	}
	return &e.history[len(e.history)-1]
}

// GetLocalView returns the 8 cells around the player
func (e *GameEngine) GetLocalView() []SurroundingCell {
	return e.generateLocalView()
}

// GetState returns a read-only snapshot of the game
func (e *GameEngine) GetState() *GameState {
	key, _ := e.registry.Key()
	diagnostics := make([]string, 0, len(e.diagnostics))
	for _, d := range e.diagnostics {
		diagnostics = append(diagnostics, d.Error())
	}

	return &GameState{
		Size:              e.grid.Size(),
		Grid:              e.grid.Snapshot(),
		Rows:              RenderRows(e.grid),
		Player:            e.GetPlayer(),
		Key:               key,
		Villains:          e.registry.Villains(),
		Bricks:            e.registry.Bricks(),
		PowerUps:          e.registry.PowerUps(),
		Devices:           e.registry.Devices(),
		Status:            e.status,
		Message:           e.message,
		GameOver:          e.status.Terminal(),
		Victory:           e.status == StatusPlayerWon,
		ConfigName:        e.config.Name,
		Diagnostics:       diagnostics,
		History:           append([]CommandHistoryEntry{}, e.history...),
		TotalMoves:        len(e.history),
		CurrentMoves:      append([]CommandHistoryEntry{}, e.currentMoves...),
		CurrentMovesCount: len(e.currentMoves),
		LocalView:         e.generateLocalView(),
		LocalView3x3:      e.localView3x3(),
		PossibleMoves:     e.GetPossibleMoves(),
	}
}

// Snapshot is an alias of GetState for rendering callers
func (e *GameEngine) Snapshot() *GameState {
	return e.GetState()
}

// BulkApply runs commands in order, stopping after the first rejection or
// terminal outcome
func (e *GameEngine) BulkApply(cmds []Command) []Outcome {
	results := make([]Outcome, 0, len(cmds))
	for _, cmd := range cmds {
		if e.IsGameOver() {
			break
		}
		out := e.Apply(cmd)
		results = append(results, out)
		if !out.Accepted() {
			break
		}
	}
	return results
}

// addToHistory appends to both the cumulative and the current history
func (e *GameEngine) addToHistory(action string, out Outcome) {
	entry := CommandHistoryEntry{
		Action:       action,
		FromPosition: out.From,
		ToPosition:   out.To,
		Status:       out.Status,
		Timestamp:    time.Now().Unix(),
		Success:      out.Accepted(),
		MoveNumber:   len(e.history) + 1,
	}
	if out.Reason != nil {
		entry.Reason = out.Reason.Error()
	}
	e.history = append(e.history, entry)
	e.currentMoves = append(e.currentMoves, entry)
}
