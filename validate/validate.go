// Command validate checks the level files (JSON or YAML) in a configs
// directory, ../configs by default. For each level it checks:
//   - the file parses and passes engine.ValidateGameConfig
//   - every entity can be placed (no occupancy conflicts, walls or borders)
//   - the key is reachable from the player start, at least once bricks are
//     blasted away
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/bomber-grid-game/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single level file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := engine.ParseGameConfig(filePath, data)
	if err != nil {
		result.fail("Invalid level: %v", err)
		return result
	}

	// Occupancy conflicts only show up when the entities are placed
	strict := *config
	strict.StrictPlacement = true
	e, err := engine.NewEngine(&strict)
	if err != nil {
		result.fail("Placement failed: %v", err)
		return result
	}

	reachability := validateConnectivity(e)
	if !reachability.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, reachability.Errors...)

	if result.Valid {
		state := e.GetState()
		result.info("Name: %s", config.Name)
		result.info("Map: %dx%d", config.MapSize, config.MapSize)
		result.info("Player: %s, Key: %s", config.PlayerStart.Label(), config.Key.Label())
		result.info("Villains: %d, Bricks: %d, Power-ups: %d", len(state.Villains), len(state.Bricks), len(state.PowerUps))
	}

	return result
}

// validateConnectivity checks that the key can be reached from the player
// start with 8-directional moves, going around villains. Bricks may stand in
// the way as long as a route exists once they are destroyed.
func validateConnectivity(e *engine.GameEngine) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	key, ok := e.Registry().Key()
	if !ok {
		result.fail("Cannot validate connectivity: no key placed")
		return result
	}
	start := e.GetPlayerPosition()

	direct := engine.ShortestPath(e.Grid(), start, key, false)
	blasted := engine.ShortestPath(e.Grid(), start, key, true)

	switch {
	case blasted < 0:
		result.fail("Connectivity failure: key %s unreachable from %s even without bricks", key.Label(), start.Label())
	case direct < 0:
		result.info("Connectivity: key %s needs bricks cleared (%d moves once open)", key.Label(), blasted)
	default:
		result.info("Connectivity: key %s reachable in %d moves", key.Label(), direct)
	}

	return result
}

// levelFiles lists the JSON and YAML files of dir in name order
func levelFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// main validates every level in the configs directory, printing a concise
// report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := levelFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
