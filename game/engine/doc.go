// Package engine provides the core game logic for the Bomber Grid Game.
//
// The engine package implements the game mechanics including:
//   - A bordered square grid with fixed walls and coordinate labels
//   - An entity registry for the player, villains, bricks, power-ups and the key
//   - Eight-directional movement with power-up collection
//   - Bomb planting and simultaneous detonation with orthogonal or diagonal rays
//   - Level configuration loading (JSON or YAML) and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. Grid owns cell occupancy, Registry keeps the
// entity records in step with the grid, and GameState is the read-only
// snapshot handed to renderers.
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	game, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	out := game.Move(engine.Down)
//	out = game.PlantDevice()
//	out = game.DetonateAll()
//	state := game.GetState()
//
// Game Rules:
//
// The player wins by stepping onto the key and dies by stepping onto a
// villain or by standing in a blast ray. Bricks block movement until blown
// up. Power-ups raise the bomb range, unlock diagonal blasts or allow one more
// bomb on the field. Bombs keep the range they were planted with, and every
// bomb goes off at once on detonation.
package engine
