// Command solver plays a level through the REST API: it plans a route to the
// key, blasts the bricks in the way and sends the commands in bulk batches,
// replanning whenever the server stops a batch early.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/bomber-grid-game/game/engine"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "solver",
		Usage: "Play a level to the key over the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL", Sources: cli.EnvVars("GAME_URL")},
			&cli.StringFlag{Name: "config", Usage: "Level config ID (default level when empty)"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.IntFlag{Name: "max-rounds", Value: 20, Usage: "Maximum planning rounds before giving up"},
			&cli.IntFlag{Name: "batch", Value: engine.MaxBulkCommands, Usage: "Commands per bulk request"},
			&cli.DurationFlag{Name: "delay", Usage: "Delay between bulk requests"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("v") {
				log.SetLevel(log.DebugLevel)
			}

			client := NewClient(cmd.String("url"))
			state, err := start(ctx, client, cmd.String("config"), cmd.String("continue"))
			if err != nil {
				return err
			}

			opts := solveOptions{
				MaxRounds: int(cmd.Int("max-rounds")),
				Batch:     int(cmd.Int("batch")),
				Delay:     cmd.Duration("delay"),
			}
			state, err = solve(ctx, client, NewKeyStrategy(), state, opts)
			if err != nil {
				return err
			}

			log.WithField("session", client.SessionID()).Infof("🎉 VICTORY! Key reached in %d moves", state.CurrentMovesCount)
			return nil
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.WithError(err).Fatal("Solver failed")
	}
}

// start resumes or creates a session and resets it to the level start
func start(ctx context.Context, client *Client, configID, sessionID string) (*engine.GameState, error) {
	resumed := false
	if sessionID != "" {
		if _, err := client.Resume(ctx, sessionID); err != nil {
			log.WithError(err).Warn("Failed to resume session, creating a new one")
		} else {
			resumed = true
			log.WithField("session", sessionID).Info("🔄 Resuming session")
		}
	}

	if !resumed {
		state, err := client.CreateSession(ctx, configID)
		if err != nil {
			return nil, err
		}
		log.WithFields(log.Fields{
			"session": client.SessionID(),
			"level":   state.ConfigName,
			"grid":    fmt.Sprintf("%dx%d", state.Size, state.Size),
		}).Info("✨ Session created")
	}

	state, err := client.Reset(ctx)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"player": state.Player.Pos.Label(),
		"key":    state.Key.Label(),
	}).Info("Game reset")
	return state, nil
}

type solveOptions struct {
	MaxRounds int
	Batch     int
	Delay     time.Duration
}

// solve plans and sends commands until the player wins, dies, or the plan
// runs out
func solve(ctx context.Context, client *Client, strategy *KeyStrategy, state *engine.GameState, opts solveOptions) (*engine.GameState, error) {
	if opts.Batch <= 0 || opts.Batch > engine.MaxBulkCommands {
		opts.Batch = engine.MaxBulkCommands
	}

	for round := 1; round <= opts.MaxRounds; round++ {
		switch state.Status {
		case engine.StatusPlayerWon:
			return state, nil
		case engine.StatusPlayerDied:
			return state, fmt.Errorf("player died at %s", state.Player.Pos.Label())
		}

		plan := strategy.Plan(state)
		if len(plan) == 0 {
			return state, fmt.Errorf("no route from %s to the key at %s", state.Player.Pos.Label(), state.Key.Label())
		}
		log.WithFields(log.Fields{"round": round, "commands": len(plan)}).Debug("Planned route")

		for len(plan) > 0 {
			n := opts.Batch
			if n > len(plan) {
				n = len(plan)
			}

			result, err := client.Bulk(ctx, plan[:n])
			if err != nil {
				return state, err
			}
			state = result.GameState
			log.WithFields(log.Fields{
				"exec": fmt.Sprintf("%d/%d", result.CommandsExecuted, result.RequestedCommands),
				"end":  result.EndPos.Label(),
				"stop": result.StopReasonCode,
			}).Debug("Batch sent")

			if result.StopReasonCode != "" {
				// Replan from wherever the batch stopped
				break
			}
			plan = plan[n:]

			if opts.Delay > 0 {
				select {
				case <-ctx.Done():
					return state, ctx.Err()
				case <-time.After(opts.Delay):
				}
			}
		}
	}

	if state.Status == engine.StatusPlayerWon {
		return state, nil
	}
	return state, fmt.Errorf("gave up after %d rounds", opts.MaxRounds)
}
