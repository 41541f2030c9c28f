package service

import (
	"errors"
	"time"

	"github.com/wricardo/bomber-grid-game/game/engine"
)

// Errors shared by the service and its backing managers
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrInvalidCommand  = errors.New("invalid command")
)

// Event types reported in GameEvent.Type
const (
	EventMove       = "move"
	EventPowerUp    = "power_up"
	EventPlant      = "plant"
	EventDetonate   = "detonate"
	EventDestroyed  = "destroyed"
	EventPlayerDied = "player_died"
	EventVictory    = "victory"
	EventRejected   = "rejected"
	EventReset      = "reset"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// CommandResult contains the result of a single command
type CommandResult struct {
	Success     bool              `json:"success"`
	Command     string            `json:"command"`
	Status      engine.Status     `json:"status"`
	Reason      string            `json:"reason,omitempty"`
	GameState   *engine.GameState `json:"game_state"`
	Message     string            `json:"message"`
	Events      []GameEvent       `json:"events,omitempty"`
	Step        *StepInfo         `json:"step,omitempty"`
	AttemptedTo *AttemptInfo      `json:"attempted_to,omitempty"`
	Outcome     *engine.Outcome   `json:"outcome,omitempty"`
}

// BulkCommandResult contains the result of a command sequence
type BulkCommandResult struct {
	// Summary
	CommandsExecuted  int               `json:"commands_executed"`
	RequestedCommands int               `json:"requested_commands"`
	Success           bool              `json:"success"`
	GameState         *engine.GameState `json:"game_state"`
	Events            []GameEvent       `json:"events"`
	StoppedReason     string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode    string            `json:"stop_reason_code,omitempty"` // invalid_command|blocked|diagonal_locked|capacity_reached|no_device|game_over|player_died|victory
	StoppedOnCommand  int               `json:"stopped_on_command,omitempty"`
	Truncated         bool              `json:"truncated,omitempty"`
	Limit             int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos  engine.Position `json:"start_pos"`
	EndPos    engine.Position `json:"end_pos"`
	Destroyed int             `json:"destroyed"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Failure diagnostics
	AttemptedTo *AttemptInfo `json:"attempted_to,omitempty"`

	// Final status aids
	GameOver      bool     `json:"game_over"`
	GameOverCode  string   `json:"game_over_code,omitempty"`
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
	LocalView3x3  []string `json:"local_view_3x3,omitempty"`
}

// StepInfo is a compact record of one executed command
type StepInfo struct {
	Idx       int             `json:"idx"`
	Command   string          `json:"command"`
	From      engine.Position `json:"from"`
	To        engine.Position `json:"to"`
	Status    engine.Status   `json:"status"`
	Success   bool            `json:"success"`
	Collected string          `json:"collected,omitempty"`
	Planted   bool            `json:"planted,omitempty"`
	Destroyed int             `json:"destroyed,omitempty"`
	Victory   bool            `json:"victory,omitempty"`
	Died      bool            `json:"died,omitempty"`
}

// AttemptInfo details the target cell of a rejected move
type AttemptInfo struct {
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	Label    string `json:"label"`
	Kind     string `json:"kind"`
	Passable bool   `json:"passable"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures command history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated command history
type HistoryResponse struct {
	Moves       []engine.CommandHistoryEntry `json:"moves"`
	TotalMoves  int                          `json:"total_moves"`
	Page        int                          `json:"page"`
	PageSize    int                          `json:"page_size"`
	TotalPages  int                          `json:"total_pages"`
	HasNext     bool                         `json:"has_next"`
	HasPrevious bool                         `json:"has_previous"`
}

// ConfigInfo provides information about a level configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	MapSize     int    `json:"map_size"`
	Villains    int    `json:"villains"`
	Bricks      int    `json:"bricks"`
	PowerUps    int    `json:"power_ups"`
}
