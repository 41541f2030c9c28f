package main

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wricardo/bomber-grid-game/api"
	"github.com/wricardo/bomber-grid-game/game/config"
	"github.com/wricardo/bomber-grid-game/game/engine"
	"github.com/wricardo/bomber-grid-game/game/service"
	"github.com/wricardo/bomber-grid-game/game/session"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	configs, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}

	cage := smallLevel()
	cage.Name = "cage"
	cage.Bricks = keyRing
	if err := configs.SaveConfig("cage", cage); err != nil {
		t.Fatalf("Failed to save level: %v", err)
	}

	guarded := smallLevel()
	guarded.Name = "guarded"
	guarded.Villains = keyRing
	if err := configs.SaveConfig("guarded", guarded); err != nil {
		t.Fatalf("Failed to save level: %v", err)
	}

	svc := service.NewGameService(session.NewManager(), configs)
	ts := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(ts.Close)
	return ts
}

func TestStart(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	client := NewClient(ts.URL)
	state, err := start(ctx, client, "cage", "")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if client.SessionID() == "" {
		t.Fatal("Expected a session to be created")
	}
	if state.Player.Pos != (engine.Position{Row: 2, Col: 2}) || state.Status != engine.StatusContinue {
		t.Errorf("Unexpected start state %v %s", state.Player.Pos, state.Status)
	}

	// Resuming keeps the session
	other := NewClient(ts.URL)
	if _, err := start(ctx, other, "", client.SessionID()); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if other.SessionID() != client.SessionID() {
		t.Errorf("Expected session %s, got %s", client.SessionID(), other.SessionID())
	}

	// An unknown session falls back to a new one
	fresh := NewClient(ts.URL)
	if _, err := start(ctx, fresh, "cage", "missing"); err != nil {
		t.Fatalf("start with unknown session failed: %v", err)
	}
	if fresh.SessionID() == "missing" || fresh.SessionID() == "" {
		t.Errorf("Expected a new session, got %q", fresh.SessionID())
	}
}

func TestSolve(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		level     string
		batch     int
		expectErr string
	}{
		{name: "default level", level: "", batch: engine.MaxBulkCommands},
		{name: "cage in small batches", level: "cage", batch: 2},
		{name: "guarded key", level: "guarded", batch: 10, expectErr: "no route"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(ts.URL)
			state, err := start(ctx, client, tt.level, "")
			if err != nil {
				t.Fatalf("start failed: %v", err)
			}

			state, err = solve(ctx, client, NewKeyStrategy(), state, solveOptions{MaxRounds: 5, Batch: tt.batch})
			if tt.expectErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.expectErr) {
					t.Fatalf("Expected error containing %q, got %v", tt.expectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("solve failed: %v", err)
			}
			if state.Status != engine.StatusPlayerWon {
				t.Errorf("Expected victory, got %s", state.Status)
			}

			// The server agrees
			remote, err := client.GetState(ctx)
			if err != nil {
				t.Fatalf("GetState failed: %v", err)
			}
			if !remote.Victory {
				t.Error("Expected the session to be won on the server")
			}
		})
	}
}

func TestClient_Errors(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	client := NewClient(ts.URL)
	if _, err := client.CreateSession(ctx, "nope"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Expected 404 for unknown level, got %v", err)
	}

	if _, err := client.Resume(ctx, "missing"); err == nil {
		t.Error("Expected error for unknown session")
	}

	unreachable := NewClient("http://127.0.0.1:1")
	if _, err := unreachable.CreateSession(ctx, ""); err == nil {
		t.Error("Expected error for unreachable server")
	}
}
