package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Messages holds the player-facing texts of a level. Empty fields fall back
// to DefaultMessages.
type Messages struct {
	Welcome         string `json:"welcome" yaml:"welcome"`
	InvalidMove     string `json:"invalid_move" yaml:"invalid_move"`
	DiagonalLocked  string `json:"diagonal_locked" yaml:"diagonal_locked"`
	PowerCollected  string `json:"power_collected" yaml:"power_collected"` // %s: power kind
	DevicePlanted   string `json:"device_planted" yaml:"device_planted"`   // %s: position label
	CapacityReached string `json:"capacity_reached" yaml:"capacity_reached"`
	NoDevice        string `json:"no_device" yaml:"no_device"`
	Detonated       string `json:"detonated" yaml:"detonated"` // %d: destroyed count
	Moved           string `json:"moved" yaml:"moved"`         // %s: position label
	VillainContact  string `json:"villain_contact" yaml:"villain_contact"`
	BlastDeath      string `json:"blast_death" yaml:"blast_death"`
	Victory         string `json:"victory" yaml:"victory"`
	GameOver        string `json:"game_over" yaml:"game_over"`
}

// DefaultMessages mirrors the texts of the console version of the game
var DefaultMessages = Messages{
	Welcome:         "Find the key! Plant bombs to clear bricks and villains.",
	InvalidMove:     "Invalid move",
	DiagonalLocked:  "Diagonal moves need the diagonal power-up",
	PowerCollected:  "Collected power %s",
	DevicePlanted:   "Bomb planted at %s",
	CapacityReached: "Can't plant more bombs!",
	NoDevice:        "No bomb planted!",
	Detonated:       "Boom! %d destroyed",
	Moved:           "Moved to %s",
	VillainContact:  "Player Died!",
	BlastDeath:      "Player Died in Blast!",
	Victory:         "You Won!",
	GameOver:        "Game is over",
}

// GameConfig describes a level: map size and the starting layout of every
// entity. It is loaded from JSON or YAML.
type GameConfig struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	MapSize     int            `json:"map_size" yaml:"map_size"`
	PlayerStart Position       `json:"player_start" yaml:"player_start"`
	Key         Position       `json:"key" yaml:"key"`
	Villains    []Position     `json:"villains" yaml:"villains"`
	Bricks      []Position     `json:"bricks" yaml:"bricks"`
	PowerUps    []PowerUpState `json:"power_ups" yaml:"power_ups"`

	StartingRange    int `json:"starting_range,omitempty" yaml:"starting_range,omitempty"`
	StartingCapacity int `json:"starting_capacity,omitempty" yaml:"starting_capacity,omitempty"`

	DiagonalMovesRequireUnlock bool `json:"diagonal_moves_require_unlock,omitempty" yaml:"diagonal_moves_require_unlock,omitempty"`
	StrictPlacement            bool `json:"strict_placement,omitempty" yaml:"strict_placement,omitempty"`

	Messages Messages `json:"messages" yaml:"messages"`
}

// ValidateGameConfig validates a level for correctness. Occupancy conflicts
// are not checked here; they surface as placement diagnostics in NewEngine.
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	if config.MapSize < MinMapSize || config.MapSize > MaxMapSize {
		return fmt.Errorf("config validation: map_size must be between %d and %d, got %d", MinMapSize, MaxMapSize, config.MapSize)
	}

	if config.StartingRange < 0 {
		return fmt.Errorf("config validation: starting_range must be at least 1, got %d", config.StartingRange)
	}
	if config.StartingCapacity < 0 {
		return fmt.Errorf("config validation: starting_capacity must be at least 1, got %d", config.StartingCapacity)
	}

	// Player and key must be somewhere the player could stand
	last := config.MapSize
	inInterior := func(p Position) bool {
		return p.Row > 1 && p.Col > 1 && p.Row < last && p.Col < last
	}
	if !inInterior(config.PlayerStart) {
		return fmt.Errorf("config validation: player_start %s is outside the playable interior", config.PlayerStart.Label())
	}
	if !inInterior(config.Key) {
		return fmt.Errorf("config validation: key %s is outside the playable interior", config.Key.Label())
	}
	if config.PlayerStart == config.Key {
		return fmt.Errorf("config validation: player_start and key share cell %s", config.Key.Label())
	}

	for i, pu := range config.PowerUps {
		if _, err := ParsePowerKind(string(pu.Kind)); err != nil {
			return fmt.Errorf("config validation: power_ups[%d]: %v", i, err)
		}
	}

	for _, format := range []struct{ name, value string }{
		{"power_collected", config.Messages.PowerCollected},
		{"device_planted", config.Messages.DevicePlanted},
		{"moved", config.Messages.Moved},
	} {
		if format.value != "" && !strings.Contains(format.value, "%s") {
			return fmt.Errorf("config validation: messages.%s must contain %%s", format.name)
		}
	}
	if config.Messages.Detonated != "" && !strings.Contains(config.Messages.Detonated, "%d") {
		return fmt.Errorf("config validation: messages.detonated must contain %%d")
	}

	return nil
}

// normalize fills defaults and canonicalizes power-up kinds in place. It only
// writes fields that change, so normalized configs can be shared.
func (config *GameConfig) normalize() {
	if config.StartingRange == 0 {
		config.StartingRange = DefaultBombRange
	}
	if config.StartingCapacity == 0 {
		config.StartingCapacity = DefaultDeviceLimit
	}
	for i := range config.PowerUps {
		if kind, err := ParsePowerKind(string(config.PowerUps[i].Kind)); err == nil && kind != config.PowerUps[i].Kind {
			config.PowerUps[i].Kind = kind
		}
	}

	m := &config.Messages
	d := DefaultMessages
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&m.Welcome, d.Welcome)
	fill(&m.InvalidMove, d.InvalidMove)
	fill(&m.DiagonalLocked, d.DiagonalLocked)
	fill(&m.PowerCollected, d.PowerCollected)
	fill(&m.DevicePlanted, d.DevicePlanted)
	fill(&m.CapacityReached, d.CapacityReached)
	fill(&m.NoDevice, d.NoDevice)
	fill(&m.Detonated, d.Detonated)
	fill(&m.Moved, d.Moved)
	fill(&m.VillainContact, d.VillainContact)
	fill(&m.BlastDeath, d.BlastDeath)
	fill(&m.Victory, d.Victory)
	fill(&m.GameOver, d.GameOver)
}

// ParseGameConfig decodes a level. The format is picked from the file
// extension: .yaml and .yml are YAML, everything else JSON.
func ParseGameConfig(filename string, data []byte) (*GameConfig, error) {
	var config GameConfig
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}
	config.normalize()
	return &config, nil
}

// LoadGameConfig loads a level from a JSON or YAML file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	return ParseGameConfig(configPath, data)
}

// DefaultConfig returns the classic level: a 12x12 map with the player at
// CB and the key at FD
func DefaultConfig() *GameConfig {
	config := &GameConfig{
		Name:        "classic",
		Description: "The classic 12x12 map: bricks guard the key, one villain waits in the north",
		MapSize:     12,
		PlayerStart: Position{Row: 3, Col: 2},
		Key:         Position{Row: 6, Col: 4},
		Villains:    []Position{{Row: 2, Col: 8}},
		Bricks: []Position{
			{Row: 4, Col: 4},
			{Row: 10, Col: 10},
			{Row: 6, Col: 7},
			{Row: 8, Col: 3},
		},
		PowerUps: []PowerUpState{
			{Kind: RangeBoost, Pos: Position{Row: 5, Col: 2}},
			{Kind: DiagonalUnlock, Pos: Position{Row: 4, Col: 3}},
			{Kind: ExtraDevice, Pos: Position{Row: 5, Col: 4}},
		},
	}
	config.normalize()
	return config
}
