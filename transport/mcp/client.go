package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/bomber-grid-game/game/engine"
	"github.com/wricardo/bomber-grid-game/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Bomber Grid Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Bomber Grid Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Walk the player (P) onto the key (K). Villains (V) kill on contact, bricks (B)
block the way until a bomb (X) destroys them.

AVAILABLE TOOLS:
- create_session: Create a new game session
- list_sessions: List all active sessions
- get_session: Get session details
- game_state: Get current game state
- move: Single move in one of eight directions - requires intent explanation
- plant_device: Plant a bomb on the player's cell
- detonate: Detonate every planted bomb
- bulk_commands: Several commands at once - requires intent explanation
- reset_game: Reset to the level's initial layout
- command_history: View past commands
- list_configs: List available levels
- game_instructions: Full rules and glyph legend
- describe_cell: Details of one grid cell by row/col or label (e.g. "CB")

NOTE: The 'intent' parameter on move/bulk_commands is rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func intentProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Why you are making this move (rubber duck debugging)",
	}
}

func resetProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": "Reset the game before executing",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional level selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Level to play, see list_configs (optional, defaults to classic)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state with the rendered grid",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	directions := make([]string, len(engine.Directions))
	for i, d := range engine.Directions {
		directions[i] = string(d)
	}

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the player one cell in a direction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"description": "Direction to move",
					"enum":        directions,
				},
				"intent": intentProperty(),
				"reset":  resetProperty(),
			},
			Required: []string{"session_id", "direction", "intent"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "plant_device",
		Description: "Plant a bomb on the player's current cell",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"intent":     intentProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handlePlantDevice)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "detonate",
		Description: "Detonate every planted bomb at once",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"intent":     intentProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleDetonate)

	c.mcpServer.AddTool(mcp.Tool{
		Name: "bulk_commands",
		Description: fmt.Sprintf("Execute up to %d commands in order. Stops at the first rejected command or when the game ends. "+
			"Commands: directions (up, down-left, ...), plant, detonate.", engine.MaxBulkCommands),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"commands": map[string]interface{}{
					"type":        "array",
					"description": "Commands to execute in order",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"intent": intentProperty(),
				"reset":  resetProperty(),
			},
			Required: []string{"session_id", "commands", "intent"},
		},
	}, c.handleBulkCommands)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to the level's initial layout",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "command_history",
		Description: "Get the command history of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "number",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": fmt.Sprintf("Entries per page (default %d, max %d)", engine.DefaultHistoryLimit, engine.MaxHistoryPageLength),
				},
				"order": map[string]interface{}{
					"type":        "string",
					"description": "Sort order",
					"enum":        []string{"asc", "desc"},
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleCommandHistory)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available levels",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	// Help
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete rules, the grid legend and strategy tips",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe one grid cell, addressed by row/col or by its two-letter label",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"row": map[string]interface{}{
					"type":        "number",
					"description": "Row index (1 = top wall row A)",
				},
				"col": map[string]interface{}{
					"type":        "number",
					"description": "Column index (1 = left wall column A)",
				},
				"label": map[string]interface{}{
					"type":        "string",
					"description": "Two-letter label, row letter first (e.g. \"CB\" is row 3, column 2)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeHTTP accepts a single JSON-RPC message per POST request
func (c *Client) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	response := c.mcpServer.HandleMessage(r.Context(), body)
	if response == nil {
		// Notifications have no response
		w.WriteHeader(http.StatusAccepted)
		return
	}

	responseData, err := json.Marshal(response)
	if err != nil {
		log.WithError(err).Error("[MCP] failed to marshal response")
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(responseData)
}

// apiCall makes an HTTP call to the REST API
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"].(string); ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// arguments returns the tool call arguments, empty when none were sent
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)
	if configID == "" {
		configID, _ = args["config_name"].(string)
	}

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	if session.GameState != nil {
		result += "\n" + formatGameState(session.GameState)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, http.MethodGet, "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := ""
		if s.GameState != nil {
			status = fmt.Sprintf(", Status: %s", s.GameState.Status)
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Created: %s%s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"), status)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)
	reset, _ := args["reset"].(bool)
	logIntent(sessionID, "move", args)

	body := map[string]interface{}{
		"direction": direction,
		"reset":     reset,
	}

	return c.postCommand(ctx, sessionPath(sessionID, "/move"), body)
}

func (c *Client) handlePlantDevice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	logIntent(sessionID, "plant", args)

	return c.postCommand(ctx, sessionPath(sessionID, "/plant"), nil)
}

func (c *Client) handleDetonate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	logIntent(sessionID, "detonate", args)

	return c.postCommand(ctx, sessionPath(sessionID, "/detonate"), nil)
}

func (c *Client) postCommand(ctx context.Context, path string, body interface{}) (*mcp.CallToolResult, error) {
	var result service.CommandResult
	if err := c.apiCall(ctx, http.MethodPost, path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handleBulkCommands(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	reset, _ := args["reset"].(bool)
	logIntent(sessionID, "bulk", args)

	raw, _ := args["commands"].([]interface{})
	if raw == nil {
		// older agents send "moves"
		raw, _ = args["moves"].([]interface{})
	}
	commands := make([]string, 0, len(raw))
	for _, m := range raw {
		if cmd, ok := m.(string); ok {
			commands = append(commands, cmd)
		}
	}

	body := map[string]interface{}{
		"commands": commands,
		"reset":    reset,
	}

	var result service.BulkCommandResult
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/bulk"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkResult(sessionID, &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleCommandHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := args["page"].(float64); ok {
		params.Set("page", fmt.Sprintf("%d", int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		params.Set("limit", fmt.Sprintf("%d", int(limit)))
	}
	if order, ok := args["order"].(string); ok && order != "" {
		params.Set("order", order)
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatHistory(&history)

	// The current segment comes from the live state; history alone is still useful
	var state engine.GameState
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "/state"), nil, &state); err == nil {
		result += "\n" + formatCurrentSegment(&state)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, http.MethodGet, "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Levels:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Map: %dx%d, Villains: %d, Bricks: %d, Power-ups: %d\n\n",
			config.Name, config.ConfigID, config.Description,
			config.MapSize, config.MapSize, config.Villains, config.Bricks, config.PowerUps)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Bomber Grid Game - Complete Instructions
═══════════════════════════════════════

GAME OBJECTIVE:
Reach the key (K). The game ends immediately when the player steps onto the
key (victory), walks into a villain or is caught in a blast (death).

GRID LEGEND:
Row 0 and column 0 hold the letter labels. A cell is named by its row letter
followed by its column letter: "CB" is row 3, column 2.
• P = Player (you)
• K = Key - step on it to win
• V = Villain - stepping on it kills you
• B = Brick - blocks movement, destroyed by blasts
• X = Planted bomb - blocks movement until detonated
• * = Wall - the outer ring and the pillars inside; indestructible
• 1 = Power-up: +1 bomb range
• 2 = Power-up: diagonal blasts
• 3 = Power-up: +1 bomb capacity
• (space) = Empty floor

MOVEMENT COMMANDS:
• up, down, left, right (aliases: w, s, a, d)
• up-left, up-right, down-left, down-right (aliases: q, e, z, c)
A move into a wall, brick or bomb is rejected and nothing changes.
Some levels only allow diagonal moves after the diagonal power-up.

BOMBS:
• plant (aliases: bomb, x1) puts a bomb on your cell. You may hold as many
  planted bombs as your capacity allows (1 at the start).
• detonate (aliases: boom, x2) explodes every planted bomb at once.
• A blast reaches "range" cells in the four straight directions, and also
  along the diagonals once you have collected power-up 2.
• Blasts pass through walls without hurting them. They destroy bricks,
  villains and power-ups; walls, other bombs and the key are unharmed.
• Range and diagonal reach are fixed when the bomb is planted.
• A blast never hits its own bomb cell, so standing on the bomb is safe.
  If the blast reaches any other cell you stand on, you die.

POWER-UPS:
Walking onto a power-up collects it. Effects only ever grow.

STRATEGY:
1. Call game_state and read the grid row by row using the labels.
2. Use describe_cell whenever a glyph is unclear.
3. Before detonating, make sure you are outside every blast line: not on the
   same row or column within range (and not on a diagonal when diagonal
   blasts are unlocked).
4. Plan paths with bulk_commands. The sequence stops at the first rejected
   command, so check stop_reason_code and the step trace.
5. Villains never move. Blow them up or walk around them.

VICTORY CONDITIONS:
Step onto K. After victory or death every command is rejected until you
reset_game.

Good luck clearing the way to the key!`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	var pos engine.Position
	if label, ok := args["label"].(string); ok && label != "" {
		p, err := engine.ParseLabel(label)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		pos = p
	} else {
		row, rowOK := args["row"].(float64)
		col, colOK := args["col"].(float64)
		if !rowOK || !colOK {
			return mcp.NewToolResultError("Provide either label or both row and col"), nil
		}
		pos = engine.Position{Row: int(row), Col: int(col)}
	}

	var state engine.GameState
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	size := len(state.Grid)
	if pos.Row < 0 || pos.Row >= size || pos.Col < 0 || pos.Col >= size {
		return mcp.NewToolResultError(fmt.Sprintf("Cell (%d, %d) is out of bounds. Grid is %dx%d (0-%d for row and col)",
			pos.Row, pos.Col, size, size, size-1)), nil
	}

	return mcp.NewToolResultText(describeCell(&state, pos)), nil
}

// describeCell renders the details of one cell of state
func describeCell(state *engine.GameState, pos engine.Position) string {
	cell := state.Grid[pos.Row][pos.Col]
	glyph := string(engine.CellGlyph(cell))
	passable := false
	var description string

	switch cell.Kind {
	case engine.Border:
		description = "Label border - outside the playing field"
	case engine.Wall:
		description = "Wall - IMPASSABLE and indestructible"
	case engine.Empty:
		passable = true
		description = "Empty floor - safe to walk on"
	case engine.Player:
		passable = true
		description = "Your current position"
	case engine.Villain:
		passable = true
		description = "Villain - stepping here KILLS you; destroy it with a blast"
	case engine.Brick:
		description = "Brick - IMPASSABLE until destroyed by a blast"
	case engine.Key:
		passable = true
		description = "Key - step here to WIN"
	case engine.Device:
		description = "Planted bomb - IMPASSABLE until detonated"
	case engine.PowerUp:
		passable = true
		description = fmt.Sprintf("Power-up %s - walk here to collect it", cell.Power)
	default:
		description = "Unknown cell kind"
	}

	kind := string(cell.Kind)
	if cell.Kind == engine.PowerUp {
		kind += " (" + string(cell.Power) + ")"
	}

	var blast string
	for _, d := range state.Devices {
		for _, p := range append(engine.BlastCells(d), d.Origin) {
			if p == pos {
				blast += fmt.Sprintf("\n⚠️ Inside the blast of the bomb at %s", d.Origin.Label())
				break
			}
		}
	}

	return fmt.Sprintf(`Cell %s at (%d, %d):
━━━━━━━━━━━━━━━━━━━━━━━━
Glyph: '%s'
Kind: %s
Passable: %v
Description: %s%s`,
		pos.Label(), pos.Row, pos.Col,
		glyph,
		kind,
		passable,
		description,
		blast)
}

func logIntent(sessionID, tool string, args map[string]interface{}) {
	intent, _ := args["intent"].(string)
	log.WithFields(log.Fields{
		"session": sessionID,
		"tool":    tool,
		"intent":  intent,
	}).Debug("[MCP] tool call")
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\nLast accessed: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format(time.RFC3339),
		session.LastAccessedAt.Format(time.RFC3339),
		formatGameState(session.GameState))
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	p := state.Player
	fmt.Fprintf(&b, "Position: %s (%d,%d)\n", p.Pos.Label(), p.Pos.Row, p.Pos.Col)
	fmt.Fprintf(&b, "Bomb range: %d | Bombs: %d/%d | Diagonal blast: %s\n",
		p.BombRange, len(state.Devices), p.DeviceCapacity, yesNo(p.DiagonalBlast))
	fmt.Fprintf(&b, "Key: %s | Villains: %d | Bricks: %d | Power-ups: %d\n",
		state.Key.Label(), len(state.Villains), len(state.Bricks), len(state.PowerUps))
	fmt.Fprintf(&b, "Status: %s | Moves: %d\n", state.Status, state.CurrentMovesCount)

	if len(state.Devices) > 0 {
		parts := make([]string, len(state.Devices))
		for i, d := range state.Devices {
			parts[i] = fmt.Sprintf("%s r%d", d.Origin.Label(), d.Range)
			if d.Diagonal {
				parts[i] += "+diag"
			}
		}
		fmt.Fprintf(&b, "Planted: %s\n", strings.Join(parts, ", "))
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}
	for _, d := range state.Diagnostics {
		fmt.Fprintf(&b, "Warning: %s\n", d)
	}

	if state.Victory {
		b.WriteString("\n🎉 VICTORY!\n")
	} else if state.GameOver {
		b.WriteString("\n💀 GAME OVER\n")
	}

	if len(state.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "\nPossible moves: %s\n", strings.Join(state.PossibleMoves, ","))
	}

	if len(state.Rows) > 0 {
		b.WriteString("\nGrid:\n")
		for _, row := range state.Rows {
			b.WriteString(row)
			b.WriteString("\n")
		}
	}

	return b.String()
}

func formatCommandResult(result *service.CommandResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✓ %s accepted\n", result.Command)
	} else {
		fmt.Fprintf(&b, "✗ %s rejected", result.Command)
		if result.Reason != "" {
			fmt.Fprintf(&b, " (%s)", result.Reason)
		}
		b.WriteString("\n")
	}

	if result.Message != "" {
		fmt.Fprintf(&b, "%s\n", result.Message)
	}

	if result.Step != nil {
		b.WriteString(formatStepLine(*result.Step))
	}

	if result.AttemptedTo != nil {
		b.WriteString(formatAttempt(result.AttemptedTo))
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkResult(sessionID string, result *service.BulkCommandResult) string {
	var b strings.Builder

	// Session header
	size, configName := 0, ""
	if result.GameState != nil {
		size = result.GameState.Size
		configName = result.GameState.ConfigName
	}
	fmt.Fprintf(&b, "Session: %s • Config: %s • Grid: %dx%d\n", sessionID, configName, size, size)

	fmt.Fprintf(&b, "Executed %d/%d commands\n", result.CommandsExecuted, result.RequestedCommands)
	if result.Truncated {
		fmt.Fprintf(&b, "Truncated to the first %d commands\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped: %s", result.StoppedReason)
		if result.StopReasonCode != "" {
			fmt.Fprintf(&b, " [%s]", result.StopReasonCode)
		}
		if result.StoppedOnCommand > 0 {
			fmt.Fprintf(&b, " on command %d", result.StoppedOnCommand)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Moved %s → %s", result.StartPos.Label(), result.EndPos.Label())
	if result.Destroyed > 0 {
		fmt.Fprintf(&b, " • Destroyed %d", result.Destroyed)
	}
	b.WriteString("\n")

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps (this call):\n")
		for _, s := range result.Steps {
			b.WriteString(formatStepLine(s))
		}
	}

	if result.AttemptedTo != nil {
		b.WriteString("\n")
		b.WriteString(formatAttempt(result.AttemptedTo))
	}

	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	if len(result.LocalView3x3) > 0 {
		b.WriteString("\nLocal 3x3:\n")
		for _, line := range result.LocalView3x3 {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatStepLine(s service.StepInfo) string {
	mark := "✗"
	if s.Success {
		mark = "✓"
	}
	line := fmt.Sprintf("%2d. %s %s→%s %s", s.Idx, s.Command, s.From.Label(), s.To.Label(), mark)
	switch {
	case s.Collected != "":
		line += " collected " + s.Collected
	case s.Planted:
		line += " planted"
	case s.Destroyed > 0:
		line += fmt.Sprintf(" destroyed %d", s.Destroyed)
	}
	if s.Victory {
		line += " 🎉"
	}
	if s.Died {
		line += " 💀"
	}
	return line + "\n"
}

func formatAttempt(a *service.AttemptInfo) string {
	pass := "impassable"
	if a.Passable {
		pass = "passable"
	}
	return fmt.Sprintf("Blocked: attempted %s (%d,%d) kind=%s %s\n", a.Label, a.Row, a.Col, a.Kind, pass)
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Command History (Page %d/%d, Total: %d):\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, entry := range history.Moves {
		mark := "✓"
		if !entry.Success {
			mark = "✗"
		}
		fmt.Fprintf(&b, "#%d %s %s→%s %s %s", entry.MoveNumber, entry.Action,
			entry.FromPosition.Label(), entry.ToPosition.Label(), entry.Status, mark)
		if entry.Reason != "" {
			fmt.Fprintf(&b, " (%s)", entry.Reason)
		}
		b.WriteString("\n")
	}

	if history.HasNext {
		fmt.Fprintf(&b, "\nMore entries on page %d\n", history.Page+1)
	}
	return b.String()
}

// formatCurrentSegment summarizes the commands since the last reset
func formatCurrentSegment(state *engine.GameState) string {
	if state == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Current segment (since last reset): %d commands\n", state.CurrentMovesCount)
	if n := len(state.CurrentMoves); n > 0 {
		actions := make([]string, n)
		for i, entry := range state.CurrentMoves {
			actions[i] = entry.Action
		}
		fmt.Fprintf(&b, "Sequence: %s\n", strings.Join(actions, ","))
	}
	return b.String()
}
