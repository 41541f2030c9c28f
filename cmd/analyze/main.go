// Command analyze prints quick, human-readable heuristics about the level
// files in the project's configs directory: map size, entity counts, how far
// the key is from the player start, and whether the key and power-ups can be
// reached directly or only after bricks are blasted away.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/bomber-grid-game/game/engine"
)

// PowerUpReach is the walking distance from the start to one power-up
type PowerUpReach struct {
	Kind engine.PowerKind
	Pos  engine.Position
	Path int // -1 when unreachable without blasting
}

// Analysis summarizes one level
type Analysis struct {
	Name     string
	MapSize  int
	Player   engine.Position
	Key      engine.Position
	Villains int
	Bricks   int
	PowerUps []PowerUpReach

	OpenCells        int // empty interior cells at the start
	AdjacentVillains int // villains one step from the start
	KeyDistance      int // Chebyshev distance, ignoring obstacles
	KeyPath          int // moves to the key, -1 if blocked
	KeyPathBlasted   int // moves to the key once bricks are gone, -1 if never
	Diagnostics      []string
}

func main() {
	configDir := "configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, _ := filepath.Glob(filepath.Join(configDir, pattern))
		files = append(files, matches...)
	}
	sort.Strings(files)

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		if err := analyzeConfig(os.Stdout, file); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

// analyzeConfig loads a level file and prints its analysis to w
func analyzeConfig(w io.Writer, path string) error {
	config, err := engine.LoadGameConfig(path)
	if err != nil {
		return err
	}

	a, err := analyzeLevel(config)
	if err != nil {
		return err
	}
	printAnalysis(w, a)
	return nil
}

// analyzeLevel builds the level and measures it
func analyzeLevel(config *engine.GameConfig) (*Analysis, error) {
	e, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}

	state := e.GetState()
	grid := e.Grid()
	a := &Analysis{
		Name:        config.Name,
		MapSize:     config.MapSize,
		Player:      state.Player.Pos,
		Key:         state.Key,
		Villains:    len(state.Villains),
		Bricks:      len(state.Bricks),
		OpenCells:   engine.CountCellKind(state.Grid, engine.Empty),
		KeyDistance: engine.ChebyshevDistance(state.Player.Pos, state.Key),
		Diagnostics: state.Diagnostics,
	}

	a.KeyPath = engine.ShortestPath(grid, a.Player, a.Key, false)
	a.KeyPathBlasted = engine.ShortestPath(grid, a.Player, a.Key, true)

	for _, v := range state.Villains {
		if engine.ChebyshevDistance(a.Player, v) == 1 {
			a.AdjacentVillains++
		}
	}

	for _, p := range state.PowerUps {
		a.PowerUps = append(a.PowerUps, PowerUpReach{
			Kind: p.Kind,
			Pos:  p.Pos,
			Path: engine.ShortestPath(grid, a.Player, p.Pos, false),
		})
	}

	return a, nil
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Map Size: %d x %d\n", a.MapSize, a.MapSize)
	fmt.Fprintf(w, "Player Start: %s, Key: %s\n", a.Player.Label(), a.Key.Label())
	fmt.Fprintf(w, "Villains: %d, Bricks: %d, Power-ups: %d, Open cells: %d\n",
		a.Villains, a.Bricks, len(a.PowerUps), a.OpenCells)

	for _, d := range a.Diagnostics {
		fmt.Fprintf(w, "⚠️  Placement skipped: %s\n", d)
	}

	if a.AdjacentVillains > 0 {
		fmt.Fprintf(w, "⚠️  WARNING: %d villain(s) next to the player start\n", a.AdjacentVillains)
	}

	fmt.Fprintf(w, "Key distance (straight line): %d\n", a.KeyDistance)
	switch {
	case a.KeyPath >= 0:
		fmt.Fprintf(w, "✅ Key reachable in %d moves without bombs\n", a.KeyPath)
	case a.KeyPathBlasted >= 0:
		fmt.Fprintf(w, "💣 Key needs bricks cleared: %d moves once the way is open\n", a.KeyPathBlasted)
	default:
		fmt.Fprintf(w, "⚠️  CRITICAL: key is unreachable, even through bricks\n")
	}

	for _, p := range a.PowerUps {
		if p.Path >= 0 {
			fmt.Fprintf(w, "   Power-up %s at %s: %d moves\n", p.Kind, p.Pos.Label(), p.Path)
		} else {
			fmt.Fprintf(w, "   Power-up %s at %s: blocked\n", p.Kind, p.Pos.Label())
		}
	}
}
