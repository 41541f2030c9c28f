package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/wricardo/bomber-grid-game/game/config"
	"github.com/wricardo/bomber-grid-game/game/engine"
	"github.com/wricardo/bomber-grid-game/game/service"
	"github.com/wricardo/bomber-grid-game/game/session"
	"github.com/wricardo/bomber-grid-game/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, configName string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Game Operations
	CommandFunc      func(ctx context.Context, sessionID, command string, reset bool) (*service.CommandResult, error)
	MoveFunc         func(ctx context.Context, sessionID, direction string, reset bool) (*service.CommandResult, error)
	PlantDeviceFunc  func(ctx context.Context, sessionID string) (*service.CommandResult, error)
	DetonateFunc     func(ctx context.Context, sessionID string) (*service.CommandResult, error)
	BulkCommandsFunc func(ctx context.Context, sessionID string, commands []string, reset bool) (*service.BulkCommandResult, error)
	ResetFunc        func(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameStateFunc   func(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)

	// Configuration
	ListConfigsFunc func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc  func(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfigFunc  func(ctx context.Context, configName string, config *engine.GameConfig) error
}

// Session Management
func (m *MockGameService) CreateSession(ctx context.Context, configName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, configName)
	}
	return &service.SessionInfo{
		ID:         "test-session",
		ConfigName: configName,
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{
		ID:         sessionID,
		ConfigName: "test-config",
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

// Game Operations
func (m *MockGameService) Command(ctx context.Context, sessionID, command string, reset bool) (*service.CommandResult, error) {
	if m.CommandFunc != nil {
		return m.CommandFunc(ctx, sessionID, command, reset)
	}
	return &service.CommandResult{Success: true, Command: command, GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) Move(ctx context.Context, sessionID, direction string, reset bool) (*service.CommandResult, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, sessionID, direction, reset)
	}
	return &service.CommandResult{Success: true, Command: direction, GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) PlantDevice(ctx context.Context, sessionID string) (*service.CommandResult, error) {
	if m.PlantDeviceFunc != nil {
		return m.PlantDeviceFunc(ctx, sessionID)
	}
	return &service.CommandResult{Success: true, Command: "plant", GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) Detonate(ctx context.Context, sessionID string) (*service.CommandResult, error) {
	if m.DetonateFunc != nil {
		return m.DetonateFunc(ctx, sessionID)
	}
	return &service.CommandResult{Success: true, Command: "detonate", GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) BulkCommands(ctx context.Context, sessionID string, commands []string, reset bool) (*service.BulkCommandResult, error) {
	if m.BulkCommandsFunc != nil {
		return m.BulkCommandsFunc(ctx, sessionID, commands, reset)
	}
	return &service.BulkCommandResult{
		Success:           true,
		CommandsExecuted:  len(commands),
		RequestedCommands: len(commands),
		GameState:         &engine.GameState{},
	}, nil
}

func (m *MockGameService) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

// Game State
func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) GetMoveHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetMoveHistoryFunc != nil {
		return m.GetMoveHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{
		Moves:    []engine.CommandHistoryEntry{},
		Page:     opts.Page,
		PageSize: opts.Limit,
	}, nil
}

// Configuration
func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	return engine.DefaultConfig(), nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, config)
	}
	return nil
}

func setupTestServer(t *testing.T, mockService service.GameService) (*Server, *websocket.Hub) {
	t.Helper()
	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return NewServer(mockService, hub), hub
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(server *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v (%s)", err, w.Body.String())
	}
}

func notFound(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	return nil, fmt.Errorf("session %q: %w", sessionID, service.ErrSessionNotFound)
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		createErr      error
		expectedStatus int
		expectedConfig string
	}{
		{"empty body", nil, nil, http.StatusCreated, ""},
		{"config_id", map[string]string{"config_id": "gauntlet"}, nil, http.StatusCreated, "gauntlet"},
		{"config_name alias", map[string]string{"config_name": "classic"}, nil, http.StatusCreated, "classic"},
		{"unknown config", map[string]string{"config_id": "nope"}, service.ErrConfigNotFound, http.StatusNotFound, "nope"},
		{"internal failure", nil, errors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotConfig string
			mock := &MockGameService{
				CreateSessionFunc: func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					gotConfig = configName
					if tt.createErr != nil {
						return nil, fmt.Errorf("create: %w", tt.createErr)
					}
					return &service.SessionInfo{ID: "ab12", ConfigName: configName}, nil
				},
			}
			server, _ := setupTestServer(t, mock)

			w := serve(server, makeRequest("POST", "/api/sessions", tt.body))
			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if gotConfig != tt.expectedConfig {
				t.Errorf("Expected config %q, got %q", tt.expectedConfig, gotConfig)
			}
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		server, _ := setupTestServer(t, &MockGameService{})
		req := httptest.NewRequest("POST", "/api/sessions", strings.NewReader("{not json"))
		if w := serve(server, req); w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mock := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-3 * time.Hour), LastAccessedAt: now.Add(-time.Minute)},
				{ID: "mid", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-time.Hour)},
				{ID: "new", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now},
			}, nil
		},
	}
	server, _ := setupTestServer(t, mock)

	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{"default accessed desc", "", []string{"new", "old", "mid"}},
		{"created asc", "?sort=created&order=asc", []string{"old", "mid", "new"}},
		{"limit", "?sort=created&limit=2", []string{"new", "mid"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(server, makeRequest("GET", "/api/sessions"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", w.Code)
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			if resp.Total != 3 || resp.Count != len(tt.expected) {
				t.Errorf("Expected count %d of 3, got %d of %d", len(tt.expected), resp.Count, resp.Total)
			}
			for i, id := range tt.expected {
				if resp.Sessions[i].ID != id {
					t.Errorf("Position %d: expected %s, got %s", i, id, resp.Sessions[i].ID)
				}
			}
		})
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "ab12" {
				return notFound(ctx, sessionID)
			}
			return &service.SessionInfo{ID: "ab12"}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID != "ab12" {
				return service.ErrSessionNotFound
			}
			return nil
		},
	}
	server, _ := setupTestServer(t, mock)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"GET", "/api/sessions/ab12", http.StatusOK},
		{"GET", "/api/sessions/zz99", http.StatusNotFound},
		{"DELETE", "/api/sessions/ab12", http.StatusOK},
		{"DELETE", "/api/sessions/zz99", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(server, makeRequest(tt.method, tt.path, nil))
			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
		})
	}
}

// Game Operation Tests

func TestCommandEndpoints(t *testing.T) {
	var calls []string
	record := func(name string) *service.CommandResult {
		calls = append(calls, name)
		return &service.CommandResult{Success: true, Command: name, GameState: &engine.GameState{}}
	}

	mock := &MockGameService{
		CommandFunc: func(ctx context.Context, sessionID, command string, reset bool) (*service.CommandResult, error) {
			if command == "fly" {
				return nil, fmt.Errorf("%w: fly", service.ErrInvalidCommand)
			}
			return record("command:" + command + fmt.Sprintf(":%v", reset)), nil
		},
		MoveFunc: func(ctx context.Context, sessionID, direction string, reset bool) (*service.CommandResult, error) {
			return record("move:" + direction), nil
		},
		PlantDeviceFunc: func(ctx context.Context, sessionID string) (*service.CommandResult, error) {
			return record("plant:" + sessionID), nil
		},
		DetonateFunc: func(ctx context.Context, sessionID string) (*service.CommandResult, error) {
			return record("detonate:" + sessionID), nil
		},
	}
	server, _ := setupTestServer(t, mock)

	tests := []struct {
		name     string
		path     string
		body     interface{}
		status   int
		wantCall string
	}{
		{"command", "/api/sessions/ab12/command", map[string]interface{}{"command": "x1", "reset": true}, http.StatusOK, "command:x1:true"},
		{"invalid command", "/api/sessions/ab12/command", map[string]string{"command": "fly"}, http.StatusBadRequest, ""},
		{"move", "/api/sessions/ab12/move", map[string]string{"direction": "up-left"}, http.StatusOK, "move:up-left"},
		{"plant", "/api/sessions/ab12/plant", nil, http.StatusOK, "plant:ab12"},
		{"detonate", "/api/sessions/ab12/detonate", nil, http.StatusOK, "detonate:ab12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls = nil
			w := serve(server, makeRequest("POST", tt.path, tt.body))
			if w.Code != tt.status {
				t.Fatalf("Expected status %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			if tt.wantCall == "" {
				if len(calls) != 0 {
					t.Errorf("Expected no service call, got %v", calls)
				}
				return
			}
			if len(calls) != 1 || calls[0] != tt.wantCall {
				t.Errorf("Expected call %q, got %v", tt.wantCall, calls)
			}
		})
	}
}

func TestMove_RejectedIsOK(t *testing.T) {
	mock := &MockGameService{
		MoveFunc: func(ctx context.Context, sessionID, direction string, reset bool) (*service.CommandResult, error) {
			return &service.CommandResult{
				Success:     false,
				Status:      engine.StatusRejected,
				Reason:      engine.ErrInvalidMove.Error(),
				GameState:   &engine.GameState{},
				AttemptedTo: &service.AttemptInfo{Row: 1, Col: 2, Kind: "wall"},
			}, nil
		},
	}
	server, _ := setupTestServer(t, mock)

	w := serve(server, makeRequest("POST", "/api/sessions/ab12/move", map[string]string{"direction": "up"}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var result service.CommandResult
	parseResponse(t, w, &result)
	if result.Success || result.AttemptedTo == nil || result.AttemptedTo.Kind != "wall" {
		t.Errorf("Expected rejected move with wall target, got %+v", result)
	}
}

func TestBulk(t *testing.T) {
	var got []string
	mock := &MockGameService{
		BulkCommandsFunc: func(ctx context.Context, sessionID string, commands []string, reset bool) (*service.BulkCommandResult, error) {
			got = commands
			return &service.BulkCommandResult{
				Success:           true,
				CommandsExecuted:  len(commands),
				RequestedCommands: len(commands),
				GameState:         &engine.GameState{},
			}, nil
		},
	}
	server, _ := setupTestServer(t, mock)

	for _, field := range []string{"commands", "moves"} {
		t.Run(field, func(t *testing.T) {
			body := map[string]interface{}{field: []string{"up", "plant", "boom"}}
			w := serve(server, makeRequest("POST", "/api/sessions/ab12/bulk", body))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", w.Code)
			}
			if len(got) != 3 || got[1] != "plant" {
				t.Errorf("Expected commands to be passed through, got %v", got)
			}
		})
	}
}

func TestReset(t *testing.T) {
	mock := &MockGameService{
		ResetFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			if sessionID == "missing" {
				return nil, service.ErrSessionNotFound
			}
			return &engine.GameState{Status: engine.StatusContinue}, nil
		},
	}
	server, _ := setupTestServer(t, mock)

	w := serve(server, makeRequest("POST", "/api/sessions/ab12/reset", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	parseResponse(t, w, &resp)
	if resp.State == nil || resp.State.Status != engine.StatusContinue {
		t.Errorf("Expected reset state, got %+v", resp)
	}

	if w := serve(server, makeRequest("POST", "/api/sessions/missing/reset", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		query    string
		expected service.HistoryOptions
	}{
		{"", service.HistoryOptions{Page: 1, Limit: engine.DefaultHistoryLimit, Order: "desc"}},
		{"?page=3&limit=5&order=asc", service.HistoryOptions{Page: 3, Limit: 5, Order: "asc"}},
		{"?page=-1&limit=abc&order=sideways", service.HistoryOptions{Page: 1, Limit: engine.DefaultHistoryLimit, Order: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got service.HistoryOptions
			mock := &MockGameService{
				GetMoveHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					got = opts
					return &service.HistoryResponse{}, nil
				},
			}
			server, _ := setupTestServer(t, mock)

			w := serve(server, makeRequest("GET", "/api/sessions/ab12/history"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", w.Code)
			}
			if got != tt.expected {
				t.Errorf("Expected options %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestGetBoard(t *testing.T) {
	mock := &MockGameService{
		GetGameStateFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			e, err := engine.NewEngine(engine.DefaultConfig())
			if err != nil {
				return nil, err
			}
			return e.GetState(), nil
		},
	}
	server, _ := setupTestServer(t, mock)

	w := serve(server, makeRequest("GET", "/api/sessions/ab12/board", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Expected text/plain, got %s", ct)
	}
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 14 {
		t.Fatalf("Expected 13 grid rows and a status line, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[13], "status=continue") {
		t.Errorf("Unexpected status line %q", lines[13])
	}
}

// Configuration Tests

func TestConfigs(t *testing.T) {
	var loaded string
	var saved *engine.GameConfig
	mock := &MockGameService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{{ConfigID: "classic", MapSize: 12}}, nil
		},
		LoadConfigFunc: func(ctx context.Context, configName string) (*engine.GameConfig, error) {
			loaded = configName
			if configName != "gauntlet" {
				return nil, service.ErrConfigNotFound
			}
			return engine.DefaultConfig(), nil
		},
		SaveConfigFunc: func(ctx context.Context, configName string, config *engine.GameConfig) error {
			saved = config
			return nil
		},
	}
	server, _ := setupTestServer(t, mock)

	t.Run("list", func(t *testing.T) {
		w := serve(server, makeRequest("GET", "/api/configs", nil))
		var configs []*service.ConfigInfo
		parseResponse(t, w, &configs)
		if len(configs) != 1 || configs[0].ConfigID != "classic" {
			t.Errorf("Unexpected configs: %+v", configs)
		}
	})

	t.Run("get strips extension", func(t *testing.T) {
		w := serve(server, makeRequest("GET", "/api/configs/gauntlet.yaml", nil))
		if w.Code != http.StatusOK || loaded != "gauntlet" {
			t.Errorf("Expected 200 for gauntlet, got %d (%s)", w.Code, loaded)
		}
	})

	t.Run("get unknown", func(t *testing.T) {
		w := serve(server, makeRequest("GET", "/api/configs/nope", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})

	t.Run("create", func(t *testing.T) {
		level := engine.DefaultConfig()
		level.Name = "copy"
		w := serve(server, makeRequest("POST", "/api/configs", level))
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
		if saved == nil || saved.MapSize != 12 {
			t.Errorf("Expected level to be saved, got %+v", saved)
		}
	})

	t.Run("create invalid", func(t *testing.T) {
		saved = nil
		w := serve(server, makeRequest("POST", "/api/configs", map[string]interface{}{"name": "tiny", "map_size": 2}))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
		if saved != nil {
			t.Error("Invalid level must not be saved")
		}
	})
}

func TestHealth(t *testing.T) {
	server, _ := setupTestServer(t, &MockGameService{})
	for _, path := range []string{"/health", "/api", "/api/health"} {
		if w := serve(server, makeRequest("GET", path, nil)); w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, w.Code)
		}
	}
}

// WebSocket Tests

func TestWebSocket(t *testing.T) {
	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "ab12" {
				return notFound(ctx, sessionID)
			}
			return &service.SessionInfo{ID: sessionID}, nil
		},
	}
	server, hub := setupTestServer(t, mock)
	ts := httptest.NewServer(server)
	defer ts.Close()

	t.Run("missing session param", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/ws")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/ws?session=zz99")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("receives command broadcast", func(t *testing.T) {
		wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=ab12"
		conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("Failed to connect: %v", err)
		}
		defer conn.Close()

		deadline := time.Now().Add(time.Second)
		for hub.ClientCount("ab12") != 1 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}

		w := serve(server, makeRequest("POST", "/api/sessions/ab12/plant", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}

		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to read message: %v", err)
		}
		var msg websocket.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("Failed to decode message: %v", err)
		}
		if msg.SessionID != "ab12" || msg.Event != websocket.EventStateUpdate {
			t.Errorf("Unexpected message: %+v", msg)
		}
	})
}

// End-to-end through the real service and managers

func TestServer_EndToEnd(t *testing.T) {
	configs, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	svc := service.NewGameService(session.NewManager(), configs)
	server, _ := setupTestServer(t, svc)

	w := serve(server, makeRequest("POST", "/api/sessions", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var info service.SessionInfo
	parseResponse(t, w, &info)
	base := "/api/sessions/" + info.ID

	// Classic start: pick up the range power-up two rows down, plant there
	// and walk out of the range-2 blast, which takes the power-up at (5,4)
	w = serve(server, makeRequest("POST", base+"/bulk", map[string]interface{}{
		"commands": []string{"down", "down", "plant", "down", "down", "down", "detonate"},
	}))
	var bulk service.BulkCommandResult
	parseResponse(t, w, &bulk)
	if !bulk.Success || bulk.CommandsExecuted != 7 || bulk.GameOver {
		t.Fatalf("Expected all 7 commands to run, got %+v", bulk)
	}
	if bulk.GameState.Player.BombRange != 2 {
		t.Errorf("Expected bomb range 2, got %d", bulk.GameState.Player.BombRange)
	}
	if bulk.Destroyed != 1 {
		t.Errorf("Expected 1 destroyed entity, got %d", bulk.Destroyed)
	}

	w = serve(server, makeRequest("POST", base+"/command", map[string]string{"command": "teleport"}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown command, got %d", w.Code)
	}

	w = serve(server, makeRequest("GET", base+"/history?limit=2", nil))
	var history service.HistoryResponse
	parseResponse(t, w, &history)
	if history.TotalMoves != 7 || len(history.Moves) != 2 || history.Moves[0].Action != "detonate" {
		t.Errorf("Unexpected history: %+v", history)
	}

	if w := serve(server, makeRequest("DELETE", base, nil)); w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on delete, got %d", w.Code)
	}
	if w := serve(server, makeRequest("GET", base+"/state", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", w.Code)
	}
}
