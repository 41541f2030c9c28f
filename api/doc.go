// Package api provides the HTTP REST API for the bomber grid game.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id": "classic"}, optional)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Session details
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Full game state
//   - GET /api/sessions/{id}/board - Rendered grid as plain text
//   - POST /api/sessions/{id}/command - {"command": "up|plant|boom|...", "reset": false}
//   - POST /api/sessions/{id}/move - {"direction": "up-left", "reset": false}
//   - POST /api/sessions/{id}/plant - Plant a bomb on the player's cell
//   - POST /api/sessions/{id}/detonate - Detonate every planted bomb
//   - POST /api/sessions/{id}/bulk - {"commands": ["down", "plant", "up", "boom"], "reset": false}
//   - POST /api/sessions/{id}/reset - Restore the level's initial layout
//   - GET /api/sessions/{id}/history - ?page=1&limit=20&order=desc
//
// Configuration:
//   - GET /api/configs - List levels
//   - GET /api/configs/{name} - Load a level
//   - POST /api/configs - Validate and save a level
//
// Other:
//   - GET /ws?session={id} - WebSocket state push
//   - GET /health - Health check
//
// Responses:
//
// A command the engine rejects (blocked move, no bomb, game over) is a 200
// response with "success": false, a "reason", and for moves an
// "attempted_to" cell. Bulk responses stop at the first rejection or at the
// end of the game and report stop_reason_code, stopped_on_command, steps and
// possible_moves.
//
// Errors are JSON with an HTTP status code:
//
//	{"error": "session \"zz99\": session not found", "code": 404}
//
// Unknown sessions and levels are 404, unparsable commands and bodies 400,
// anything else 500.
package api
