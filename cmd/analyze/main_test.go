package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/bomber-grid-game/game/engine"
)

func TestAnalyzeLevel_Classic(t *testing.T) {
	a, err := analyzeLevel(engine.DefaultConfig())
	if err != nil {
		t.Fatalf("analyzeLevel failed: %v", err)
	}

	if a.Name != "classic" || a.MapSize != 12 {
		t.Errorf("Unexpected header %s %d", a.Name, a.MapSize)
	}
	if a.Player != (engine.Position{Row: 3, Col: 2}) || a.Key != (engine.Position{Row: 6, Col: 4}) {
		t.Errorf("Unexpected player %v or key %v", a.Player, a.Key)
	}
	if a.Villains != 1 || a.Bricks != 4 || len(a.PowerUps) != 3 {
		t.Errorf("Unexpected counts: %d villains, %d bricks, %d power-ups", a.Villains, a.Bricks, len(a.PowerUps))
	}
	if a.KeyDistance != 3 {
		t.Errorf("Expected key distance 3, got %d", a.KeyDistance)
	}
	if a.KeyPath < a.KeyDistance {
		t.Errorf("Path %d cannot be shorter than the distance %d", a.KeyPath, a.KeyDistance)
	}
	if a.KeyPathBlasted < 0 || a.KeyPathBlasted > a.KeyPath {
		t.Errorf("Blasted path %d should not exceed the direct path %d", a.KeyPathBlasted, a.KeyPath)
	}
	if a.AdjacentVillains != 0 {
		t.Errorf("Expected no villain next to the start, got %d", a.AdjacentVillains)
	}
	if a.PowerUps[0].Path < 1 {
		t.Errorf("Expected the first power-up to be reachable, got %d", a.PowerUps[0].Path)
	}
}

func TestAnalyzeLevel(t *testing.T) {
	base := func() *engine.GameConfig {
		return &engine.GameConfig{
			Name:        "small",
			MapSize:     6,
			PlayerStart: engine.Position{Row: 2, Col: 2},
			Key:         engine.Position{Row: 4, Col: 4},
		}
	}
	ring := []engine.Position{{Row: 3, Col: 4}, {Row: 4, Col: 3}, {Row: 4, Col: 5}, {Row: 5, Col: 4}}

	tests := []struct {
		name        string
		modify      func(c *engine.GameConfig)
		keyPath     int
		blasted     int
		adjacent    int
		diagnostics int
	}{
		{
			name:    "open",
			modify:  func(c *engine.GameConfig) {},
			keyPath: 3,
			blasted: 3,
		},
		{
			name:    "bricks around the key",
			modify:  func(c *engine.GameConfig) { c.Bricks = ring },
			keyPath: -1,
			blasted: 3,
		},
		{
			name:     "villains around the key",
			modify:   func(c *engine.GameConfig) { c.Villains = ring },
			keyPath:  -1,
			blasted:  -1,
			adjacent: 0,
		},
		{
			name: "villain next to start",
			modify: func(c *engine.GameConfig) {
				c.Villains = []engine.Position{{Row: 3, Col: 2}}
			},
			keyPath:  3,
			blasted:  3,
			adjacent: 1,
		},
		{
			name: "skipped placement",
			modify: func(c *engine.GameConfig) {
				c.Bricks = []engine.Position{{Row: 3, Col: 3}}
			},
			keyPath:     3,
			blasted:     3,
			diagnostics: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := base()
			tt.modify(config)

			a, err := analyzeLevel(config)
			if err != nil {
				t.Fatalf("analyzeLevel failed: %v", err)
			}
			if a.KeyPath != tt.keyPath {
				t.Errorf("Expected key path %d, got %d", tt.keyPath, a.KeyPath)
			}
			if a.KeyPathBlasted != tt.blasted {
				t.Errorf("Expected blasted path %d, got %d", tt.blasted, a.KeyPathBlasted)
			}
			if a.AdjacentVillains != tt.adjacent {
				t.Errorf("Expected %d adjacent villains, got %d", tt.adjacent, a.AdjacentVillains)
			}
			if len(a.Diagnostics) != tt.diagnostics {
				t.Errorf("Expected %d diagnostics, got %v", tt.diagnostics, a.Diagnostics)
			}
		})
	}
}

func TestAnalyzeConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "small.yaml")
	level := `name: small
map_size: 6
player_start: {row: 2, col: 2}
key: {row: 4, col: 4}
bricks:
  - {row: 3, col: 4}
  - {row: 4, col: 3}
  - {row: 4, col: 5}
  - {row: 5, col: 4}
power_ups:
  - {kind: range, pos: {row: 2, col: 5}}
`
	if err := os.WriteFile(path, []byte(level), 0644); err != nil {
		t.Fatalf("Failed to write level: %v", err)
	}

	var out bytes.Buffer
	if err := analyzeConfig(&out, path); err != nil {
		t.Fatalf("analyzeConfig failed: %v", err)
	}

	expected := []string{
		"Name: small",
		"Map Size: 6 x 6",
		"Player Start: BB, Key: DD",
		"Villains: 0, Bricks: 4, Power-ups: 1",
		"Key distance (straight line): 2",
		"💣 Key needs bricks cleared: 3 moves",
		"Power-up range_boost at BE: 3 moves",
	}
	for _, want := range expected {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected %q in output:\n%s", want, out.String())
		}
	}
}

func TestAnalyzeConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(broken, []byte(`{"name": "test", invalid json}`), 0644); err != nil {
		t.Fatalf("Failed to write level: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "missing.json")},
		{"invalid json", broken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := analyzeConfig(&out, tt.path); err == nil {
				t.Error("Expected an error")
			}
			if out.Len() != 0 {
				t.Errorf("Expected no output on error, got %q", out.String())
			}
		})
	}
}
