package main

import (
	"reflect"
	"testing"

	"github.com/wricardo/bomber-grid-game/game/engine"
)

func smallLevel() *engine.GameConfig {
	return &engine.GameConfig{
		Name:        "small",
		MapSize:     6,
		PlayerStart: engine.Position{Row: 2, Col: 2},
		Key:         engine.Position{Row: 4, Col: 4},
	}
}

var keyRing = []engine.Position{{Row: 3, Col: 4}, {Row: 4, Col: 3}, {Row: 4, Col: 5}, {Row: 5, Col: 4}}

// play runs a plan on a local engine and returns the final status
func play(t *testing.T, e *engine.GameEngine, plan []string) engine.Status {
	t.Helper()
	for i, text := range plan {
		cmd, err := engine.ParseCommand(text)
		if err != nil {
			t.Fatalf("Command %d %q does not parse: %v", i, text, err)
		}
		out := e.Apply(cmd)
		if !out.Accepted() {
			t.Fatalf("Command %d %q rejected: %v", i, text, out.Reason)
		}
	}
	return e.Status()
}

func TestKeyStrategy_Classic(t *testing.T) {
	e, err := engine.NewEngine(engine.DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	plan := NewKeyStrategy().Plan(e.GetState())
	expected := []string{"down", "down", "down", "right", "right"}
	if !reflect.DeepEqual(plan, expected) {
		t.Fatalf("Expected %v, got %v", expected, plan)
	}

	if status := play(t, e, plan); status != engine.StatusPlayerWon {
		t.Errorf("Expected the plan to win, got %s", status)
	}
}

func TestKeyStrategy_Plan(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *engine.GameConfig)
		length  int
		bombs   int
		winning bool
	}{
		{
			name:    "open map",
			modify:  func(c *engine.GameConfig) {},
			length:  4,
			winning: true,
		},
		{
			name:    "key in a brick cage",
			modify:  func(c *engine.GameConfig) { c.Bricks = keyRing },
			length:  6,
			bombs:   1,
			winning: true,
		},
		{
			name:   "key guarded by villains",
			modify: func(c *engine.GameConfig) { c.Villains = keyRing },
		},
		{
			name: "villain on the short route",
			modify: func(c *engine.GameConfig) {
				c.Villains = []engine.Position{{Row: 2, Col: 3}}
			},
			length:  4,
			winning: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := smallLevel()
			tt.modify(config)
			e, err := engine.NewEngine(config)
			if err != nil {
				t.Fatalf("Failed to create engine: %v", err)
			}

			plan := NewKeyStrategy().Plan(e.GetState())
			if !tt.winning {
				if plan != nil {
					t.Errorf("Expected no plan, got %v", plan)
				}
				return
			}

			if len(plan) != tt.length {
				t.Errorf("Expected %d commands, got %v", tt.length, plan)
			}
			bombs := 0
			for _, cmd := range plan {
				if cmd == string(engine.CommandPlant) {
					bombs++
				}
			}
			if bombs != tt.bombs {
				t.Errorf("Expected %d bombs, got %d in %v", tt.bombs, bombs, plan)
			}
			if status := play(t, e, plan); status != engine.StatusPlayerWon {
				t.Errorf("Expected the plan to win, got %s", status)
			}
		})
	}
}

func TestKeyStrategy_TerminalState(t *testing.T) {
	state := &engine.GameState{Status: engine.StatusPlayerDied}
	if plan := NewKeyStrategy().Plan(state); plan != nil {
		t.Errorf("Expected no plan after the game ended, got %v", plan)
	}
	if plan := NewKeyStrategy().Plan(nil); plan != nil {
		t.Errorf("Expected no plan without state, got %v", plan)
	}
}

func TestKindAt(t *testing.T) {
	e, err := engine.NewEngine(smallLevel())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	state := e.GetState()

	tests := []struct {
		pos      engine.Position
		expected engine.CellKind
	}{
		{engine.Position{Row: 2, Col: 2}, engine.Player},
		{engine.Position{Row: 3, Col: 3}, engine.Wall},
		{engine.Position{Row: 4, Col: 4}, engine.Key},
		{engine.Position{Row: 0, Col: 3}, engine.Border},
		{engine.Position{Row: -1, Col: 3}, engine.Border},
		{engine.Position{Row: 3, Col: 40}, engine.Border},
	}
	for _, tt := range tests {
		if got := kindAt(state, tt.pos); got != tt.expected {
			t.Errorf("kindAt(%v): expected %s, got %s", tt.pos, tt.expected, got)
		}
	}
}
