// Package websocket pushes game state to browser and agent clients.
//
// A central Hub owns every connection. Clients join a session by connecting
// to /ws?session=<id>; after each accepted or rejected command the API
// broadcasts the new GameState, plus the events that produced it, to the
// clients of that session only.
//
// Message Protocol:
//
// Outgoing messages are JSON documents, one per frame:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}, "events": [...]}
//
// Clients do not send commands over the socket; they use the REST API or MCP
// tools. Incoming frames only keep the connection alive.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Concurrency:
//
// Registration, broadcast and client counts are handled on the Run goroutine.
// Broadcast calls never block: when the queue is full the message is dropped
// and logged, and a client whose own buffer is full is disconnected.
package websocket
