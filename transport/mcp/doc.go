// Package mcp exposes the bomber grid game to AI agents over the Model
// Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API, and the JSON answer is rendered as text an agent can read.
//
// MCP Tools:
//   - create_session, list_sessions, get_session: session management
//   - game_state: full state with the labelled grid
//   - move: one step in any of the eight directions
//   - plant_device, detonate: bomb commands
//   - bulk_commands: up to 50 commands, stopping at the first rejection
//   - reset_game: restore the level's initial layout
//   - command_history: paginated history plus the current segment
//   - list_configs: available levels
//   - game_instructions: rules, legend and strategy
//   - describe_cell: one cell by row/col or two-letter label
//
// Tools that change the game take an "intent" argument. It is logged at
// debug level and otherwise ignored; explaining a move tends to improve it.
//
// Transport Modes:
//
//	// Stdio, for local MCP hosts
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP, one JSON-RPC message per POST
//	apiServer.Handle("/mcp", client)
package mcp
