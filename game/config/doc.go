// Package config provides level management for the Bomber Grid Game.
//
// The config package handles:
//   - Loading levels from JSON or YAML files in a config directory
//   - Caching parsed levels by ID (file name without extension)
//   - Default level selection
//   - Level discovery and listing
//   - Saving levels back to disk
//
// Level Format:
//
// A level names the map size, the player start, the key and the starting
// positions of villains, bricks and power-ups. Positions are row/column
// pairs on the bordered grid, where row and column 0 hold the labels and
// the first playable cell is (2,2). Optional fields set the starting bomb
// range and capacity and override the player-facing messages.
//
//	name: classic
//	map_size: 12
//	player_start: {row: 3, col: 2}
//	key: {row: 6, col: 4}
//	villains:
//	  - {row: 2, col: 8}
//	power_ups:
//	  - kind: range_boost
//	    pos: {row: 5, col: 2}
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	level, err := manager.LoadConfig("gauntlet")
//	levels, err := manager.ListConfigs()
//
// When the directory has no classic level, the first valid level becomes
// the default, and an empty directory falls back to the built-in classic
// level.
package config
